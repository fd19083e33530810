package store

import (
	"context"

	"riskboard/internal/report/models"
)

// Store persists report snapshots. Implementations return
// sentinel.ErrNotFound when an id does not resolve.
type Store interface {
	List(ctx context.Context, filters models.ReportFilters) ([]models.Report, error)
	Get(ctx context.Context, id string) (models.Report, error)
	Create(ctx context.Context, report models.Report) error
	Update(ctx context.Context, report models.Report) error
}
