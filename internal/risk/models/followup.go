package models

import (
	"strings"
	"time"

	dErrors "riskboard/pkg/domain-errors"
)

// FollowUpStatus tracks a remediation action's progress.
type FollowUpStatus string

const (
	FollowUpPending    FollowUpStatus = "pending"
	FollowUpInProgress FollowUpStatus = "in-progress"
	FollowUpComplete   FollowUpStatus = "complete"
)

func (s FollowUpStatus) Valid() bool {
	switch s {
	case FollowUpPending, FollowUpInProgress, FollowUpComplete:
		return true
	}
	return false
}

// FollowUp is a tracked remediation action tied to a risk. The risk
// reference is a loose id; deleting a risk does not cascade here.
type FollowUp struct {
	ID        string         `json:"id"`
	RiskID    string         `json:"riskId"`
	Action    string         `json:"action"`
	Owner     string         `json:"owner"`
	DueDate   string         `json:"dueDate"`
	Status    FollowUpStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FollowUpInput is the create payload for a follow-up action.
type FollowUpInput struct {
	RiskID  string         `json:"riskId"`
	Action  string         `json:"action"`
	Owner   string         `json:"owner"`
	DueDate string         `json:"dueDate"`
	Status  FollowUpStatus `json:"status"`
}

// FollowUpFilters narrows follow-up listings.
type FollowUpFilters struct {
	RiskID string
}

// NewFollowUp validates a follow-up payload.
func NewFollowUp(input FollowUpInput) (FollowUp, error) {
	if strings.TrimSpace(input.RiskID) == "" {
		return FollowUp{}, dErrors.New(dErrors.CodeBadRequest, "riskId: required")
	}
	if strings.TrimSpace(input.Action) == "" {
		return FollowUp{}, dErrors.New(dErrors.CodeBadRequest, "action: required")
	}
	if strings.TrimSpace(input.Owner) == "" {
		return FollowUp{}, dErrors.New(dErrors.CodeBadRequest, "owner: required")
	}
	if _, err := ParseDate(input.DueDate); err != nil {
		return FollowUp{}, dErrors.Newf(dErrors.CodeBadRequest, "dueDate: invalid date %q", input.DueDate)
	}
	status := input.Status
	if status == "" {
		status = FollowUpPending
	}
	if !status.Valid() {
		return FollowUp{}, dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", input.Status)
	}
	return FollowUp{
		RiskID:  strings.TrimSpace(input.RiskID),
		Action:  strings.TrimSpace(input.Action),
		Owner:   strings.TrimSpace(input.Owner),
		DueDate: input.DueDate,
		Status:  status,
	}, nil
}
