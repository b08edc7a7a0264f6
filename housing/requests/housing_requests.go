package requests

type HousingRequest struct {
	RequestType string `json:"request_type" form:"request_type" validate:"required,oneof=apply vacate"`
}

type DecideHousingRequest struct {
	Action string `json:"action" form:"action" validate:"required"`
}

type AssignHousingRequest struct {
	StudentID string `json:"student_id" form:"student_id" validate:"required,uuid"`
	HousingID string `json:"housing_id" form:"housing_id" validate:"required,uuid"`
}
