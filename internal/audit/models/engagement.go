package models

import (
	"strings"
	"time"

	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
)

// EngagementStatus is the lifecycle state of an audit engagement.
type EngagementStatus string

const (
	EngagementPlanned    EngagementStatus = "planned"
	EngagementInProgress EngagementStatus = "in_progress"
	EngagementCompleted  EngagementStatus = "completed"
)

func (s EngagementStatus) Valid() bool {
	switch s {
	case EngagementPlanned, EngagementInProgress, EngagementCompleted:
		return true
	}
	return false
}

// Engagement is an audit engagement. RiskIDs are loose references to risks;
// no referential integrity is enforced across entities.
type Engagement struct {
	ID             string           `json:"id"`
	Code           string           `json:"code"`
	Title          string           `json:"title"`
	Owner          string           `json:"owner"`
	Scope          string           `json:"scope,omitempty"`
	Description    string           `json:"description,omitempty"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	Status         EngagementStatus `json:"status"`
	RiskIDs        []string         `json:"riskIds,omitempty"`
	Findings       []Finding        `json:"findings,omitempty"`
	ReadinessScore int              `json:"readinessScore"`
	Coverage       int              `json:"coverage"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// EngagementInput is the create payload.
type EngagementInput struct {
	Title       string           `json:"title"`
	Owner       string           `json:"owner"`
	Scope       string           `json:"scope"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Status      EngagementStatus `json:"status"`
	RiskIDs     []string         `json:"riskIds"`
}

// EngagementUpdate is the partial update payload. The end ≥ start refinement
// applies only when both dates are present in the same update.
type EngagementUpdate struct {
	Title       *string           `json:"title"`
	Owner       *string           `json:"owner"`
	Scope       *string           `json:"scope"`
	Description *string           `json:"description"`
	StartDate   *string           `json:"startDate"`
	EndDate     *string           `json:"endDate"`
	Status      *EngagementStatus `json:"status"`
	RiskIDs     []string          `json:"riskIds"`
}

// EngagementFilters narrows engagement listings.
type EngagementFilters struct {
	Status EngagementStatus
	Owner  string
}

func (f EngagementFilters) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", f.Status)
	}
	return nil
}

// NewEngagement validates a create payload. End date must not precede the
// start date.
func NewEngagement(input EngagementInput) (Engagement, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Engagement{}, dErrors.New(dErrors.CodeBadRequest, "title: required")
	}
	if strings.TrimSpace(input.Owner) == "" {
		return Engagement{}, dErrors.New(dErrors.CodeBadRequest, "owner: required")
	}
	start, err := riskmodels.ParseDate(input.StartDate)
	if err != nil {
		return Engagement{}, dErrors.Newf(dErrors.CodeBadRequest, "startDate: invalid date %q", input.StartDate)
	}
	end, err := riskmodels.ParseDate(input.EndDate)
	if err != nil {
		return Engagement{}, dErrors.Newf(dErrors.CodeBadRequest, "endDate: invalid date %q", input.EndDate)
	}
	if end.Before(start) {
		return Engagement{}, dErrors.New(dErrors.CodeBadRequest, "endDate: must not precede startDate")
	}

	status := input.Status
	if status == "" {
		status = EngagementPlanned
	}
	if !status.Valid() {
		return Engagement{}, dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", input.Status)
	}

	return Engagement{
		Title:       strings.TrimSpace(input.Title),
		Owner:       strings.TrimSpace(input.Owner),
		Scope:       input.Scope,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
		RiskIDs:     input.RiskIDs,
	}, nil
}

// Apply merges a partial update into the engagement. Fields not supplied are
// retained; the date-order refinement runs only when the update carries both
// dates.
func (e *Engagement) Apply(update EngagementUpdate) error {
	if update.StartDate != nil && update.EndDate != nil {
		start, err := riskmodels.ParseDate(*update.StartDate)
		if err != nil {
			return dErrors.Newf(dErrors.CodeBadRequest, "startDate: invalid date %q", *update.StartDate)
		}
		end, err := riskmodels.ParseDate(*update.EndDate)
		if err != nil {
			return dErrors.Newf(dErrors.CodeBadRequest, "endDate: invalid date %q", *update.EndDate)
		}
		if end.Before(start) {
			return dErrors.New(dErrors.CodeBadRequest, "endDate: must not precede startDate")
		}
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "title: must not be empty")
		}
		e.Title = strings.TrimSpace(*update.Title)
	}
	if update.Owner != nil {
		if strings.TrimSpace(*update.Owner) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "owner: must not be empty")
		}
		e.Owner = strings.TrimSpace(*update.Owner)
	}
	if update.Scope != nil {
		e.Scope = *update.Scope
	}
	if update.Description != nil {
		e.Description = *update.Description
	}
	if update.StartDate != nil {
		if _, err := riskmodels.ParseDate(*update.StartDate); err != nil {
			return dErrors.Newf(dErrors.CodeBadRequest, "startDate: invalid date %q", *update.StartDate)
		}
		e.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		if _, err := riskmodels.ParseDate(*update.EndDate); err != nil {
			return dErrors.Newf(dErrors.CodeBadRequest, "endDate: invalid date %q", *update.EndDate)
		}
		e.EndDate = *update.EndDate
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", *update.Status)
		}
		e.Status = *update.Status
	}
	if update.RiskIDs != nil {
		e.RiskIDs = update.RiskIDs
	}
	return nil
}
