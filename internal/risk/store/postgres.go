package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"riskboard/internal/risk/models"
	"riskboard/pkg/platform/sentinel"
)

const riskColumns = `id, title, description, category, owner, status,
	inherent_impact, inherent_likelihood, inherent_risk, residual_risk,
	appetite, severity, reported_on, controls, created_at, updated_at`

// PostgresStore persists risks and follow-ups in PostgreSQL. Controls are
// stored as a JSONB document on the risk row, mirroring their embedded,
// copy-on-write semantics.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed risk store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error) {
	query := `SELECT ` + riskColumns + ` FROM risks`
	var (
		clauses []string
		args    []any
	)
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Owner != "" {
		args = append(args, "%"+filters.Owner+"%")
		clauses = append(clauses, fmt.Sprintf("owner ILIKE $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	out := make([]models.Risk, 0)
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("list risks: %w", err)
		}
		out = append(out, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Risk, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+riskColumns+` FROM risks WHERE id = $1`, id)
	risk, err := scanRisk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Risk{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Risk{}, fmt.Errorf("get risk: %w", err)
	}
	return risk, nil
}

func (s *PostgresStore) Create(ctx context.Context, risk models.Risk) error {
	controls, err := json.Marshal(controlsOrEmpty(risk.Controls))
	if err != nil {
		return fmt.Errorf("create risk: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO risks (`+riskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		risk.ID, risk.Title, risk.Description, risk.Category, risk.Owner, string(risk.Status),
		risk.InherentImpact, risk.InherentLikelihood, risk.InherentRisk, risk.ResidualRisk,
		risk.Appetite, risk.Severity, risk.ReportedOn, controls, risk.CreatedAt, risk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create risk: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, risk models.Risk) error {
	controls, err := json.Marshal(controlsOrEmpty(risk.Controls))
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE risks SET
		title = $2, description = $3, category = $4, owner = $5, status = $6,
		inherent_impact = $7, inherent_likelihood = $8, inherent_risk = $9,
		residual_risk = $10, appetite = $11, severity = $12, reported_on = $13,
		controls = $14, updated_at = $15
		WHERE id = $1`,
		risk.ID, risk.Title, risk.Description, risk.Category, risk.Owner, string(risk.Status),
		risk.InherentImpact, risk.InherentLikelihood, risk.InherentRisk, risk.ResidualRisk,
		risk.Appetite, risk.Severity, risk.ReportedOn, controls, risk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error) {
	query := `SELECT id, risk_id, action, owner, due_date, status, created_at FROM follow_ups`
	var args []any
	if filters.RiskID != "" {
		query += " WHERE risk_id = $1"
		args = append(args, filters.RiskID)
	}
	query += " ORDER BY due_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	out := make([]models.FollowUp, 0)
	for rows.Next() {
		var fu models.FollowUp
		var status string
		if err := rows.Scan(&fu.ID, &fu.RiskID, &fu.Action, &fu.Owner, &fu.DueDate, &status, &fu.CreatedAt); err != nil {
			return nil, fmt.Errorf("list follow-ups: %w", err)
		}
		fu.Status = models.FollowUpStatus(status)
		out = append(out, fu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateFollowUp(ctx context.Context, followUp models.FollowUp) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO follow_ups (id, risk_id, action, owner, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		followUp.ID, followUp.RiskID, followUp.Action, followUp.Owner, followUp.DueDate,
		string(followUp.Status), followUp.CreatedAt)
	if err != nil {
		return fmt.Errorf("create follow-up: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRisk(row rowScanner) (models.Risk, error) {
	var (
		risk     models.Risk
		status   string
		controls []byte
	)
	err := row.Scan(&risk.ID, &risk.Title, &risk.Description, &risk.Category, &risk.Owner, &status,
		&risk.InherentImpact, &risk.InherentLikelihood, &risk.InherentRisk, &risk.ResidualRisk,
		&risk.Appetite, &risk.Severity, &risk.ReportedOn, &controls, &risk.CreatedAt, &risk.UpdatedAt)
	if err != nil {
		return models.Risk{}, err
	}
	risk.Status = models.RiskStatus(status)
	if len(controls) > 0 {
		if err := json.Unmarshal(controls, &risk.Controls); err != nil {
			return models.Risk{}, fmt.Errorf("decode controls: %w", err)
		}
	}
	if len(risk.Controls) == 0 {
		risk.Controls = nil
	}
	return risk, nil
}

func controlsOrEmpty(controls []models.Control) []models.Control {
	if controls == nil {
		return []models.Control{}
	}
	return controls
}
