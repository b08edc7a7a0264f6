package requests

type SubmitApplicationRequest struct {
	ProgramID string `json:"program_id" form:"program_id" validate:"required,uuid"`
}

// DecisionRequest is shared by every review endpoint in this slice.
type DecisionRequest struct {
	Action string `json:"action" form:"action" validate:"required"`
}
