//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskboard/internal/platform/postgres"
	"riskboard/internal/risk/models"
	"riskboard/internal/risk/store"
	"riskboard/pkg/platform/sentinel"
	"riskboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "risks", "follow_ups"))
}

func (s *PostgresStoreSuite) risk(id, title string, createdAt time.Time) models.Risk {
	return models.Risk{
		ID:           id,
		Title:        title,
		Category:     "operational",
		Owner:        "Ana",
		Status:       models.RiskStatusOpen,
		InherentRisk: 12,
		ResidualRisk: 12,
		Severity:     "medium",
		Controls: []models.Control{
			{ID: "c-1", Name: "Access review", Owner: "Ana", Status: models.ControlEffective},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()
	created := s.risk("r-1", "Vendor concentration", time.Now().UTC().Truncate(time.Millisecond))

	s.Require().NoError(s.store.Create(ctx, created))

	got, err := s.store.Get(ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(created.Title, got.Title)
	s.Require().Len(got.Controls, 1)
	s.Equal(models.ControlEffective, got.Controls[0].Status)
	s.WithinDuration(created.CreatedAt, got.CreatedAt, time.Second)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC()
	s.Require().NoError(s.store.Create(ctx, s.risk("r-old", "old", base.Add(-time.Hour))))
	s.Require().NoError(s.store.Create(ctx, s.risk("r-new", "new", base)))

	risks, err := s.store.List(ctx, models.RiskFilters{})
	s.Require().NoError(err)
	s.Require().Len(risks, 2)
	s.Equal("r-new", risks[0].ID)
	s.Equal("r-old", risks[1].ID)
}

func (s *PostgresStoreSuite) TestListFiltersByOwnerSubstring() {
	ctx := context.Background()
	r := s.risk("r-1", "a", time.Now().UTC())
	r.Owner = "Ana Martins"
	s.Require().NoError(s.store.Create(ctx, r))

	risks, err := s.store.List(ctx, models.RiskFilters{Owner: "martins"})
	s.Require().NoError(err)
	s.Len(risks, 1)

	risks, err = s.store.List(ctx, models.RiskFilters{Owner: "zzz"})
	s.Require().NoError(err)
	s.Empty(risks)
}

func (s *PostgresStoreSuite) TestUpdatePersistsMergedRecord() {
	ctx := context.Background()
	r := s.risk("r-1", "before", time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, r))

	r.Title = "after"
	r.Status = models.RiskStatusMitigated
	r.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Update(ctx, r))

	got, err := s.store.Get(ctx, "r-1")
	s.Require().NoError(err)
	s.Equal("after", got.Title)
	s.Equal(models.RiskStatusMitigated, got.Status)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	err := s.store.Update(context.Background(), s.risk("ghost", "x", time.Now().UTC()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFollowUpsOrderByDueDate() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.CreateFollowUp(ctx, models.FollowUp{
		ID: "f-later", RiskID: "r-1", Action: "later", Owner: "Ana",
		DueDate: "2026-12-01", Status: models.FollowUpPending, CreatedAt: now,
	}))
	s.Require().NoError(s.store.CreateFollowUp(ctx, models.FollowUp{
		ID: "f-sooner", RiskID: "r-1", Action: "sooner", Owner: "Ana",
		DueDate: "2026-09-01", Status: models.FollowUpPending, CreatedAt: now,
	}))

	followUps, err := s.store.ListFollowUps(ctx, models.FollowUpFilters{RiskID: "r-1"})
	s.Require().NoError(err)
	s.Require().Len(followUps, 2)
	s.Equal("f-sooner", followUps[0].ID)

	followUps, err = s.store.ListFollowUps(ctx, models.FollowUpFilters{RiskID: "other"})
	s.Require().NoError(err)
	s.Empty(followUps)
}
