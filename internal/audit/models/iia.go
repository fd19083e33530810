package models

// Readiness scores an engagement against the IIA-standards heuristic:
// status weight × 10, minus a penalty per finding by severity, floored at 0.
// The weights mirror how far along the engagement is; a completed review
// with clean findings scores 30.
func Readiness(e Engagement) int {
	statusScore := map[EngagementStatus]int{
		EngagementPlanned:    1,
		EngagementInProgress: 2,
		EngagementCompleted:  3,
	}[e.Status]

	penalty := 0
	for _, finding := range e.Findings {
		switch finding.Severity {
		case SeverityCritical:
			penalty += 4
		case SeverityHigh:
			penalty += 3
		case SeverityMedium:
			penalty += 2
		default:
			penalty++
		}
	}

	score := statusScore*10 - penalty
	if score < 0 {
		return 0
	}
	return score
}
