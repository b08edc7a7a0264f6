package models

import (
	"strings"

	"study-abroad-backend/utils/apperrors"
)

// ReviewStatus is the lifecycle shared by applications, documents,
// scholarship applications, visas and housing requests.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "Pending"
	StatusApproved ReviewStatus = "Approved"
	StatusRejected ReviewStatus = "Rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further decision may be taken.
func (s ReviewStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is the reviewer command submitted as the "action" form value.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision validates a raw action at the request boundary.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", apperrors.NewValidationError("invalid action %q: must be approve or reject", raw)
}

// Status is the review status a decision leads to.
func (d Decision) Status() ReviewStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}
