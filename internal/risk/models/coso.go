package models

// Severity buckets for residual scores. Thresholds: high ≥ 16, medium ≥ 9.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// HighResidualThreshold is the score at which a risk warrants a focused
// review engagement.
const HighResidualThreshold = 16

// ClassifyScore buckets a residual score.
func ClassifyScore(score int) string {
	switch {
	case score >= HighResidualThreshold:
		return SeverityHigh
	case score >= 9:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ResidualScore applies the COSO-style heuristic: inherent exposure is
// impact × likelihood, each effective control subtracts one point, each
// ineffective control adds one, needs_improvement is neutral. Floored at 0.
func ResidualScore(impact, likelihood int, controls []Control) int {
	score := impact * likelihood
	for _, control := range controls {
		switch control.Status {
		case ControlEffective:
			score--
		case ControlIneffective:
			score++
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// ControlEnvironment rates the aggregate control posture of a risk.
func ControlEnvironment(controls []Control) string {
	if len(controls) == 0 {
		return "insufficient"
	}
	effective := 0
	for _, control := range controls {
		if control.Status == ControlEffective {
			effective++
		}
	}
	ratio := float64(effective) / float64(len(controls))
	switch {
	case ratio > 0.7:
		return "strong"
	case ratio > 0.4:
		return "moderate"
	default:
		return "weak"
	}
}
