package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"riskboard/internal/report/models"
	"riskboard/pkg/platform/sentinel"
)

const reportColumns = `id, title, owner, status, issued_date, content, created_at, updated_at`

// PostgresStore persists reports in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed report store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, filters models.ReportFilters) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
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
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("list reports: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (s *PostgresStore) Create(ctx context.Context, report models.Report) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID, report.Title, report.Owner, string(report.Status),
		report.IssuedDate, report.Content, report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, report models.Report) error {
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET
		title = $2, owner = $3, status = $4, issued_date = $5, content = $6, updated_at = $7
		WHERE id = $1`,
		report.ID, report.Title, report.Owner, string(report.Status),
		report.IssuedDate, report.Content, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		report models.Report
		status string
	)
	err := row.Scan(&report.ID, &report.Title, &report.Owner, &status,
		&report.IssuedDate, &report.Content, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return models.Report{}, err
	}
	report.Status = models.ReportStatus(status)
	return report, nil
}
