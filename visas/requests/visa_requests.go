package requests

type VisaRequest struct {
	Country string `json:"country" form:"country" validate:"required,max=100"`
}

type DecideVisaRequest struct {
	Action string `json:"action" form:"action" validate:"required"`
}
