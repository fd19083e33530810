package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "riskboard/pkg/domain-errors"
)

// RiskStatus is the lifecycle state of a risk entry.
type RiskStatus string

const (
	RiskStatusOpen      RiskStatus = "open"
	RiskStatusMitigated RiskStatus = "mitigated"
	RiskStatusClosed    RiskStatus = "closed"
)

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskStatusOpen, RiskStatusMitigated, RiskStatusClosed:
		return true
	}
	return false
}

// ControlStatus describes how well a mitigating control performs.
type ControlStatus string

const (
	ControlEffective        ControlStatus = "effective"
	ControlNeedsImprovement ControlStatus = "needs_improvement"
	ControlIneffective      ControlStatus = "ineffective"
)

func (s ControlStatus) Valid() bool {
	switch s {
	case ControlEffective, ControlNeedsImprovement, ControlIneffective:
		return true
	}
	return false
}

// Control is a mitigating measure owned by a risk. Controls are embedded and
// copied on write, never independently addressable.
type Control struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Owner       string        `json:"owner"`
	Description string        `json:"description,omitempty"`
	Status      ControlStatus `json:"status"`
}

// Risk is the canonical risk entry.
//
// Invariants:
//   - InherentRisk and ResidualRisk are 1–25; ResidualRisk defaults to
//     InherentRisk when unset.
//   - InherentImpact and InherentLikelihood, when present, are 1–5 and feed
//     the COSO residual recomputation; residual ≤ inherent is NOT enforced
//     (controls may be illustrative only).
//   - Severity is derived from ResidualRisk and never accepted from input.
//   - Risks are never hard-deleted.
type Risk struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category"`
	Owner              string     `json:"owner"`
	Status             RiskStatus `json:"status"`
	InherentImpact     int        `json:"inherentImpact,omitempty"`
	InherentLikelihood int        `json:"inherentLikelihood,omitempty"`
	InherentRisk       int        `json:"inherentRisk"`
	ResidualRisk       int        `json:"residualRisk"`
	Appetite           int        `json:"appetite,omitempty"`
	Severity           string     `json:"severity"`
	ReportedOn         string     `json:"reportedOn,omitempty"`
	Controls           []Control  `json:"controls,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// RiskInput is the create payload. Numeric fields coerce string-encoded
// numbers; validation stops at the first violated constraint.
type RiskInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Owner              string     `json:"owner"`
	Status             RiskStatus `json:"status"`
	InherentImpact     Score      `json:"inherentImpact"`
	InherentLikelihood Score      `json:"inherentLikelihood"`
	InherentRisk       Score      `json:"inherentRisk"`
	ResidualRisk       Score      `json:"residualRisk"`
	Appetite           Score      `json:"appetite"`
	ReportedOn         string     `json:"reportedOn"`
	Controls           []Control  `json:"controls"`
}

// RiskUpdate is the partial update payload. Nil means "field not supplied";
// supplied fields are validated with the same bounds as creation.
type RiskUpdate struct {
	Title              *string     `json:"title"`
	Description        *string     `json:"description"`
	Category           *string     `json:"category"`
	Owner              *string     `json:"owner"`
	Status             *RiskStatus `json:"status"`
	InherentImpact     *Score      `json:"inherentImpact"`
	InherentLikelihood *Score      `json:"inherentLikelihood"`
	InherentRisk       *Score      `json:"inherentRisk"`
	ResidualRisk       *Score      `json:"residualRisk"`
	Appetite           *Score      `json:"appetite"`
	ReportedOn         *string     `json:"reportedOn"`
	Controls           []Control   `json:"controls"`
}

// RiskFilters narrows risk listings.
type RiskFilters struct {
	Status RiskStatus
	Owner  string
}

func (f RiskFilters) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", f.Status)
	}
	return nil
}

// NewRisk validates a create payload and returns the normalized risk.
// ResidualRisk defaults to InherentRisk; when impact and likelihood are both
// present the COSO path recomputes the residual from them and the controls.
func NewRisk(input RiskInput) (Risk, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Risk{}, dErrors.New(dErrors.CodeBadRequest, "title: required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return Risk{}, dErrors.New(dErrors.CodeBadRequest, "category: required")
	}
	if strings.TrimSpace(input.Owner) == "" {
		return Risk{}, dErrors.New(dErrors.CodeBadRequest, "owner: required")
	}

	status := input.Status
	if status == "" {
		status = RiskStatusOpen
	}
	if !status.Valid() {
		return Risk{}, dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", input.Status)
	}

	impact, likelihood := int(input.InherentImpact), int(input.InherentLikelihood)
	if err := optionalBounded("inherentImpact", impact, 1, 5); err != nil {
		return Risk{}, err
	}
	if err := optionalBounded("inherentLikelihood", likelihood, 1, 5); err != nil {
		return Risk{}, err
	}

	inherent := int(input.InherentRisk)
	if inherent == 0 && impact > 0 && likelihood > 0 {
		inherent = impact * likelihood
	}
	if err := bounded("inherentRisk", inherent, 1, 25); err != nil {
		return Risk{}, err
	}

	residual := int(input.ResidualRisk)
	if residual == 0 {
		residual = inherent
	} else if err := bounded("residualRisk", residual, 1, 25); err != nil {
		return Risk{}, err
	}

	if err := optionalBounded("appetite", int(input.Appetite), 1, 25); err != nil {
		return Risk{}, err
	}

	reportedOn := strings.TrimSpace(input.ReportedOn)
	if reportedOn != "" {
		if _, err := ParseDate(reportedOn); err != nil {
			return Risk{}, dErrors.Newf(dErrors.CodeBadRequest, "reportedOn: invalid date %q", reportedOn)
		}
	}

	controls, err := validateControls(input.Controls)
	if err != nil {
		return Risk{}, err
	}

	risk := Risk{
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Category:           strings.TrimSpace(input.Category),
		Owner:              strings.TrimSpace(input.Owner),
		Status:             status,
		InherentImpact:     impact,
		InherentLikelihood: likelihood,
		InherentRisk:       inherent,
		ResidualRisk:       residual,
		Appetite:           int(input.Appetite),
		ReportedOn:         reportedOn,
		Controls:           controls,
	}
	risk.Recompute()
	return risk, nil
}

// Apply merges a validated partial update into the risk. Fields not supplied
// are retained. Derived fields are recomputed by the caller via Recompute.
func (r *Risk) Apply(update RiskUpdate) error {
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "title: must not be empty")
		}
		r.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		r.Description = *update.Description
	}
	if update.Category != nil {
		if strings.TrimSpace(*update.Category) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "category: must not be empty")
		}
		r.Category = strings.TrimSpace(*update.Category)
	}
	if update.Owner != nil {
		if strings.TrimSpace(*update.Owner) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "owner: must not be empty")
		}
		r.Owner = strings.TrimSpace(*update.Owner)
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return dErrors.Newf(dErrors.CodeBadRequest, "status: invalid value %q", *update.Status)
		}
		r.Status = *update.Status
	}
	if update.InherentImpact != nil {
		if err := bounded("inherentImpact", int(*update.InherentImpact), 1, 5); err != nil {
			return err
		}
		r.InherentImpact = int(*update.InherentImpact)
	}
	if update.InherentLikelihood != nil {
		if err := bounded("inherentLikelihood", int(*update.InherentLikelihood), 1, 5); err != nil {
			return err
		}
		r.InherentLikelihood = int(*update.InherentLikelihood)
	}
	if update.InherentRisk != nil {
		if err := bounded("inherentRisk", int(*update.InherentRisk), 1, 25); err != nil {
			return err
		}
		r.InherentRisk = int(*update.InherentRisk)
	}
	if update.ResidualRisk != nil {
		if err := bounded("residualRisk", int(*update.ResidualRisk), 1, 25); err != nil {
			return err
		}
		r.ResidualRisk = int(*update.ResidualRisk)
	}
	if update.Appetite != nil {
		if err := bounded("appetite", int(*update.Appetite), 1, 25); err != nil {
			return err
		}
		r.Appetite = int(*update.Appetite)
	}
	if update.ReportedOn != nil {
		reportedOn := strings.TrimSpace(*update.ReportedOn)
		if reportedOn != "" {
			if _, err := ParseDate(reportedOn); err != nil {
				return dErrors.Newf(dErrors.CodeBadRequest, "reportedOn: invalid date %q", reportedOn)
			}
		}
		r.ReportedOn = reportedOn
	}
	if update.Controls != nil {
		controls, err := validateControls(update.Controls)
		if err != nil {
			return err
		}
		r.Controls = controls
	}
	return nil
}

// Recompute refreshes derived fields after a mutation: the COSO residual
// when impact×likelihood is in play, and the severity bucket.
func (r *Risk) Recompute() {
	if r.InherentImpact > 0 && r.InherentLikelihood > 0 {
		r.ResidualRisk = ResidualScore(r.InherentImpact, r.InherentLikelihood, r.Controls)
	}
	r.Severity = ClassifyScore(r.ResidualRisk)
}

func validateControls(controls []Control) ([]Control, error) {
	if len(controls) == 0 {
		return nil, nil
	}
	out := make([]Control, 0, len(controls))
	for i, control := range controls {
		if strings.TrimSpace(control.Name) == "" {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "controls[%d].name: required", i)
		}
		if strings.TrimSpace(control.Owner) == "" {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "controls[%d].owner: required", i)
		}
		if control.Status == "" {
			control.Status = ControlEffective
		}
		if !control.Status.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "controls[%d].status: invalid value %q", i, control.Status)
		}
		out = append(out, control)
	}
	return out, nil
}

func bounded(field string, value, lo, hi int) error {
	if value < lo || value > hi {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s: must be between %d and %d, got %d", field, lo, hi, value)
	}
	return nil
}

func optionalBounded(field string, value, lo, hi int) error {
	if value == 0 {
		return nil
	}
	return bounded(field, value, lo, hi)
}

// ParseDate accepts the date shapes the dashboard sends: plain dates and
// RFC 3339 timestamps.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
