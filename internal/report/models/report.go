package models

import (
	"time"

	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
)

// ReportStatus is draft until the report is issued.
type ReportStatus string

const (
	ReportDraft  ReportStatus = "draft"
	ReportIssued ReportStatus = "issued"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportDraft, ReportIssued:
		return true
	}
	return false
}

// Report is a persisted snapshot of aggregated risk and audit metrics.
// Content is the serialized snapshot; regeneration overwrites it in place,
// reports are never versioned.
type Report struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Owner      string       `json:"owner"`
	Status     ReportStatus `json:"status"`
	IssuedDate string       `json:"issuedDate,omitempty"`
	Content    string       `json:"content,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ReportFilters narrows report listings. Owner matches as a substring.
type ReportFilters struct {
	Status ReportStatus
	Owner  string
}

func (f ReportFilters) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", f.Status)
	}
	return nil
}

// AuditOverview is the audit half of a snapshot.
type AuditOverview struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// RiskReport is the aggregated snapshot joining the risk summary with the
// audit overview.
type RiskReport struct {
	GeneratedAt           time.Time          `json:"generatedAt"`
	RiskSummary           riskmodels.Summary `json:"riskSummary"`
	AuditOverview         AuditOverview      `json:"auditOverview"`
	AverageResidualScore  float64            `json:"averageResidualScore"`
	AverageAuditReadiness float64            `json:"averageAuditReadiness"`
	OpenRisks             int                `json:"openRisks"`
	CompletedAudits       int                `json:"completedAudits"`
}
