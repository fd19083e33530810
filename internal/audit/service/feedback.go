package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"riskboard/internal/audit/models"
	"riskboard/internal/audit/store"
	"riskboard/internal/events"
	dErrors "riskboard/pkg/domain-errors"
	"riskboard/pkg/platform/sentinel"
)

// FeedbackService records stakeholder feedback against engagements.
type FeedbackService struct {
	store  store.Store
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedback constructs the feedback service.
func NewFeedback(st store.Store, bus *events.Bus, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		store:  st,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and persists feedback for an existing engagement, then
// announces it.
func (s *FeedbackService) Submit(ctx context.Context, input models.FeedbackInput) (models.Feedback, error) {
	feedback, err := models.NewFeedback(input)
	if err != nil {
		return models.Feedback{}, err
	}

	if _, err := s.store.Get(ctx, feedback.EngagementID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Feedback{}, dErrors.Newf(dErrors.CodeNotFound, "audit %s not found", feedback.EngagementID)
		}
		return models.Feedback{}, dErrors.Wrap(err, dErrors.CodeInternal, "load audit")
	}

	feedback.ID = uuid.NewString()
	feedback.CreatedAt = s.now()

	if err := s.store.CreateFeedback(ctx, feedback); err != nil {
		return models.Feedback{}, dErrors.Wrap(err, dErrors.CodeInternal, "store feedback")
	}
	s.bus.Publish(events.FeedbackReceived, feedback)
	s.logger.Info("feedback received", "engagementId", feedback.EngagementID, "rating", feedback.Rating)
	return feedback, nil
}
