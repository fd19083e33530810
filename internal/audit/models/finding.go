package models

import (
	"strings"

	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// FindingStatus tracks remediation progress on a finding.
type FindingStatus string

const (
	FindingOpen       FindingStatus = "open"
	FindingInProgress FindingStatus = "in_progress"
	FindingClosed     FindingStatus = "closed"
)

func (s FindingStatus) Valid() bool {
	switch s {
	case FindingOpen, FindingInProgress, FindingClosed:
		return true
	}
	return false
}

// Finding is a fieldwork observation owned by an engagement; embedded and
// copied on write, like controls on a risk.
type Finding struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	Remediation string        `json:"remediation,omitempty"`
	Owner       string        `json:"owner,omitempty"`
	DueDate     string        `json:"dueDate,omitempty"`
	Status      FindingStatus `json:"status"`
}

// FindingInput is the payload for attaching a finding to an engagement.
type FindingInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	Remediation string        `json:"remediation"`
	Owner       string        `json:"owner"`
	DueDate     string        `json:"dueDate"`
	Status      FindingStatus `json:"status"`
}

// NewFinding validates a finding payload.
func NewFinding(input FindingInput) (Finding, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Finding{}, dErrors.New(dErrors.CodeBadRequest, "title: required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return Finding{}, dErrors.New(dErrors.CodeBadRequest, "description: required")
	}

	severity := input.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	if !severity.Valid() {
		return Finding{}, dErrors.Newf(dErrors.CodeBadRequest, "severity: invalid value %q", input.Severity)
	}

	status := input.Status
	if status == "" {
		status = FindingOpen
	}
	if !status.Valid() {
		return Finding{}, dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", input.Status)
	}

	if input.DueDate != "" {
		if _, err := riskmodels.ParseDate(input.DueDate); err != nil {
			return Finding{}, dErrors.Newf(dErrors.CodeBadRequest, "dueDate: invalid date %q", input.DueDate)
		}
	}

	return Finding{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Severity:    severity,
		Remediation: input.Remediation,
		Owner:       input.Owner,
		DueDate:     input.DueDate,
		Status:      status,
	}, nil
}
