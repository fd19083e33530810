package store

import (
	"context"

	"riskboard/internal/risk/models"
)

// Store persists risks and their follow-up actions. Implementations return
// sentinel.ErrNotFound when an id does not resolve; validation happens above
// this layer.
type Store interface {
	List(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error)
	Get(ctx context.Context, id string) (models.Risk, error)
	Create(ctx context.Context, risk models.Risk) error
	// Update replaces the stored record with the already-merged risk.
	Update(ctx context.Context, risk models.Risk) error

	ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error)
	CreateFollowUp(ctx context.Context, followUp models.FollowUp) error
}
