package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
)

// Hours tolerates string-encoded decimals on the wire, matching the
// timesheet form.
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*h = Hours(v)
		return nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return fmt.Errorf("hours: empty string")
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("hours: not a number: %q", v)
		}
		*h = Hours(parsed)
		return nil
	case nil:
		*h = 0
		return nil
	default:
		return fmt.Errorf("hours: unsupported type %T", raw)
	}
}

// Timesheet is one auditor's time entry. The engagement reference is
// free-text, not a foreign key.
type Timesheet struct {
	ID          string    `json:"id"`
	Auditor     string    `json:"auditor"`
	Date        string    `json:"date"`
	Hours       float64   `json:"hours"`
	Engagement  string    `json:"engagement"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TimesheetInput is the create payload.
type TimesheetInput struct {
	Auditor     string `json:"auditor"`
	Date        string `json:"date"`
	Hours       Hours  `json:"hours"`
	Engagement  string `json:"engagement"`
	Description string `json:"description"`
}

// TimesheetFilters narrows timesheet listings.
type TimesheetFilters struct {
	Auditor string
}

// NewTimesheet validates a timesheet payload. Hours must be non-negative.
func NewTimesheet(input TimesheetInput) (Timesheet, error) {
	if strings.TrimSpace(input.Auditor) == "" {
		return Timesheet{}, dErrors.New(dErrors.CodeBadRequest, "auditor: required")
	}
	if _, err := riskmodels.ParseDate(input.Date); err != nil {
		return Timesheet{}, dErrors.Newf(dErrors.CodeBadRequest, "date: invalid date %q", input.Date)
	}
	if input.Hours < 0 {
		return Timesheet{}, dErrors.Newf(dErrors.CodeBadRequest, "hours: must be >= 0, got %v", float64(input.Hours))
	}
	if strings.TrimSpace(input.Engagement) == "" {
		return Timesheet{}, dErrors.New(dErrors.CodeBadRequest, "engagement: required")
	}
	return Timesheet{
		Auditor:     strings.TrimSpace(input.Auditor),
		Date:        input.Date,
		Hours:       float64(input.Hours),
		Engagement:  strings.TrimSpace(input.Engagement),
		Description: input.Description,
	}, nil
}
