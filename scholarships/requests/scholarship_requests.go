package requests

type ApplyScholarshipRequest struct {
	ApplicationID string `json:"application_id" form:"application_id" validate:"required,uuid"`
	ScholarshipID string `json:"scholarship_id" form:"scholarship_id" validate:"required,uuid"`
}

type DecideScholarshipRequest struct {
	Action string `json:"action" form:"action" validate:"required"`
}
