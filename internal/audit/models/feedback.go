package models

import (
	"strings"
	"time"

	dErrors "riskboard/pkg/domain-errors"
)

// Feedback is a stakeholder rating for an engagement.
type Feedback struct {
	ID           string    `json:"id"`
	EngagementID string    `json:"engagementId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FeedbackInput is the submission payload; the engagement id comes from the
// route.
type FeedbackInput struct {
	EngagementID string `json:"engagementId"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// NewFeedback validates a feedback payload. Comment defaults to empty.
func NewFeedback(input FeedbackInput) (Feedback, error) {
	if strings.TrimSpace(input.EngagementID) == "" {
		return Feedback{}, dErrors.New(dErrors.CodeBadRequest, "engagementId: required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return Feedback{}, dErrors.Newf(dErrors.CodeBadRequest, "rating: must be between 1 and 5, got %d", input.Rating)
	}
	return Feedback{
		EngagementID: strings.TrimSpace(input.EngagementID),
		Rating:       input.Rating,
		Comment:      input.Comment,
	}, nil
}
