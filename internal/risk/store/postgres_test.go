package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskboard/internal/risk/models"
	"riskboard/pkg/platform/sentinel"
)

var riskCols = []string{
	"id", "title", "description", "category", "owner", "status",
	"inherent_impact", "inherent_likelihood", "inherent_risk", "residual_risk",
	"appetite", "severity", "reported_on", "controls", "created_at", "updated_at",
}

func riskRow(id string, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(riskCols).AddRow(
		id, "Data loss", "", "technology", "Ana", "open",
		4, 5, 20, 18, 0, "high", "2026-02-01",
		[]byte(`[{"name":"Backups","owner":"Ana","status":"effective"}]`),
		createdAt, createdAt,
	)
}

func TestPostgresGetScansControls(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM risks WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(riskRow("r1", created))

	risk, err := NewPostgres(db).Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Data loss", risk.Title)
	assert.Equal(t, models.RiskStatusOpen, risk.Status)
	require.Len(t, risk.Controls, 1)
	assert.Equal(t, "Backups", risk.Controls[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM risks WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(riskCols))

	_, err = NewPostgres(db).Get(context.Background(), "missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM risks WHERE status = \$1 AND owner ILIKE \$2 ORDER BY created_at DESC, id`).
		WithArgs("open", "%ana%").
		WillReturnRows(riskRow("r1", created))

	risks, err := NewPostgres(db).List(context.Background(), models.RiskFilters{
		Status: models.RiskStatusOpen,
		Owner:  "ana",
	})
	require.NoError(t, err)
	require.Len(t, risks, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE risks SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgres(db).Update(context.Background(), models.Risk{ID: "missing"})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO risks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	err = NewPostgres(db).Create(context.Background(), models.Risk{
		ID:           "r1",
		Title:        "Data loss",
		Category:     "technology",
		Owner:        "Ana",
		Status:       models.RiskStatusOpen,
		InherentRisk: 20,
		ResidualRisk: 18,
		Severity:     models.SeverityHigh,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
