package models

import (
	"strings"
	"time"

	dErrors "riskboard/pkg/domain-errors"
)

// PaperStatus is the review state of a working paper.
type PaperStatus string

const (
	PaperDraft    PaperStatus = "draft"
	PaperReview   PaperStatus = "review"
	PaperApproved PaperStatus = "approved"
)

func (s PaperStatus) Valid() bool {
	switch s {
	case PaperDraft, PaperReview, PaperApproved:
		return true
	}
	return false
}

// WorkingPaper is a unit of audit fieldwork evidence.
type WorkingPaper struct {
	ID        string      `json:"id"`
	AuditID   string      `json:"auditId"`
	Name      string      `json:"name"`
	Owner     string      `json:"owner"`
	Status    PaperStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// WorkingPaperInput is the create payload.
type WorkingPaperInput struct {
	AuditID string      `json:"auditId"`
	Name    string      `json:"name"`
	Owner   string      `json:"owner"`
	Status  PaperStatus `json:"status"`
}

// WorkingPaperStatusUpdate carries the only mutable field of a paper.
type WorkingPaperStatusUpdate struct {
	Status PaperStatus `json:"status"`
}

func (u WorkingPaperStatusUpdate) Validate() error {
	if u.Status == "" {
		return dErrors.New(dErrors.CodeBadRequest, "status: required")
	}
	if !u.Status.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", u.Status)
	}
	return nil
}

// WorkingPaperFilters narrows paper listings.
type WorkingPaperFilters struct {
	AuditID string
}

// NewWorkingPaper validates a working paper payload.
func NewWorkingPaper(input WorkingPaperInput) (WorkingPaper, error) {
	if strings.TrimSpace(input.AuditID) == "" {
		return WorkingPaper{}, dErrors.New(dErrors.CodeBadRequest, "auditId: required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return WorkingPaper{}, dErrors.New(dErrors.CodeBadRequest, "name: required")
	}
	if strings.TrimSpace(input.Owner) == "" {
		return WorkingPaper{}, dErrors.New(dErrors.CodeBadRequest, "owner: required")
	}
	status := input.Status
	if status == "" {
		status = PaperDraft
	}
	if !status.Valid() {
		return WorkingPaper{}, dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", input.Status)
	}
	return WorkingPaper{
		AuditID: strings.TrimSpace(input.AuditID),
		Name:    strings.TrimSpace(input.Name),
		Owner:   strings.TrimSpace(input.Owner),
		Status:  status,
	}, nil
}
