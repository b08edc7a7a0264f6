package requests

type DecideDocumentRequest struct {
	Action string `json:"action" form:"action" validate:"required"`
}
