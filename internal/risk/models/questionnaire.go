package models

import (
	"fmt"
	"strings"

	dErrors "riskboard/pkg/domain-errors"
)

// QuestionnaireResponses are the raw answers from the risk identification
// questionnaire. Scores arrive string-encoded from the dashboard form.
type QuestionnaireResponses struct {
	Owner        string `json:"owner"`
	RiskCategory string `json:"riskCategory"`
	Likelihood   Score  `json:"likelihood"`
	Impact       Score  `json:"impact"`
	Description  string `json:"description"`
	Controls     string `json:"controls"`
}

// QuestionnaireSubmission wraps responses with an optional target risk id.
// With an id the submission updates that risk; without, it creates a new one.
type QuestionnaireSubmission struct {
	RiskID    string                 `json:"riskId"`
	Responses QuestionnaireResponses `json:"responses"`
}

// RiskFromQuestionnaire validates the submission and derives the risk input:
// inherent = likelihood × impact, title synthesized from category and owner.
func RiskFromQuestionnaire(submission QuestionnaireSubmission) (RiskInput, error) {
	responses := submission.Responses
	if strings.TrimSpace(responses.Owner) == "" {
		return RiskInput{}, dErrors.New(dErrors.CodeBadRequest, "responses.owner: required")
	}
	if strings.TrimSpace(responses.RiskCategory) == "" {
		return RiskInput{}, dErrors.New(dErrors.CodeBadRequest, "responses.riskCategory: required")
	}
	if strings.TrimSpace(responses.Description) == "" {
		return RiskInput{}, dErrors.New(dErrors.CodeBadRequest, "responses.description: required")
	}
	if err := bounded("responses.likelihood", int(responses.Likelihood), 1, 5); err != nil {
		return RiskInput{}, err
	}
	if err := bounded("responses.impact", int(responses.Impact), 1, 5); err != nil {
		return RiskInput{}, err
	}

	inherent := Score(int(responses.Likelihood) * int(responses.Impact))
	return RiskInput{
		Title:        fmt.Sprintf("%s risk - %s", strings.TrimSpace(responses.RiskCategory), strings.TrimSpace(responses.Owner)),
		Category:     strings.TrimSpace(responses.RiskCategory),
		Owner:        strings.TrimSpace(responses.Owner),
		InherentRisk: inherent,
		ResidualRisk: inherent,
		Status:       RiskStatusOpen,
		Description:  strings.TrimSpace(responses.Description),
	}, nil
}

// TrendPoint is one month of the trailing risk intake trend.
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Summary aggregates the current risk register: bucket counts sum to
// TotalRisks, Trend covers the trailing six months with zero-filled gaps.
type Summary struct {
	TotalRisks  int          `json:"totalRisks"`
	HighRisks   int          `json:"highRisks"`
	MediumRisks int          `json:"mediumRisks"`
	LowRisks    int          `json:"lowRisks"`
	Trend       []TrendPoint `json:"trend"`
}
