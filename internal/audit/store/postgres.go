package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"riskboard/internal/audit/models"
	"riskboard/pkg/platform/sentinel"
)

const auditColumns = `id, code, title, owner, scope, description, start_date,
	end_date, status, risk_ids, findings, readiness_score, coverage,
	created_at, updated_at`

// PostgresStore persists engagements, timesheets, working papers, and
// feedback in PostgreSQL. Risk references and findings are stored as JSONB
// documents on the engagement row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error) {
	query := `SELECT ` + auditColumns + ` FROM audits`
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
	query += " ORDER BY start_date DESC, created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	out := make([]models.Engagement, 0)
	for rows.Next() {
		engagement, err := scanEngagement(rows)
		if err != nil {
			return nil, fmt.Errorf("list audits: %w", err)
		}
		out = append(out, engagement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Engagement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM audits WHERE id = $1`, id)
	engagement, err := scanEngagement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Engagement{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Engagement{}, fmt.Errorf("get audit: %w", err)
	}
	return engagement, nil
}

func (s *PostgresStore) Create(ctx context.Context, engagement models.Engagement) error {
	riskIDs, findings, err := marshalEmbedded(engagement)
	if err != nil {
		return fmt.Errorf("create audit: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO audits (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		engagement.ID, engagement.Code, engagement.Title, engagement.Owner, engagement.Scope,
		engagement.Description, engagement.StartDate, engagement.EndDate, string(engagement.Status),
		riskIDs, findings, engagement.ReadinessScore, engagement.Coverage,
		engagement.CreatedAt, engagement.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, engagement models.Engagement) error {
	riskIDs, findings, err := marshalEmbedded(engagement)
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE audits SET
		code = $2, title = $3, owner = $4, scope = $5, description = $6,
		start_date = $7, end_date = $8, status = $9, risk_ids = $10,
		findings = $11, readiness_score = $12, coverage = $13, updated_at = $14
		WHERE id = $1`,
		engagement.ID, engagement.Code, engagement.Title, engagement.Owner, engagement.Scope,
		engagement.Description, engagement.StartDate, engagement.EndDate, string(engagement.Status),
		riskIDs, findings, engagement.ReadinessScore, engagement.Coverage, engagement.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error) {
	query := `SELECT id, auditor, entry_date, hours, engagement, description, created_at FROM timesheets`
	var args []any
	if filters.Auditor != "" {
		query += " WHERE auditor ILIKE $1"
		args = append(args, filters.Auditor)
	}
	query += " ORDER BY entry_date DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	defer rows.Close()

	out := make([]models.Timesheet, 0)
	for rows.Next() {
		var ts models.Timesheet
		if err := rows.Scan(&ts.ID, &ts.Auditor, &ts.Date, &ts.Hours, &ts.Engagement, &ts.Description, &ts.CreatedAt); err != nil {
			return nil, fmt.Errorf("list timesheets: %w", err)
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateTimesheet(ctx context.Context, timesheet models.Timesheet) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO timesheets (id, auditor, entry_date, hours, engagement, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		timesheet.ID, timesheet.Auditor, timesheet.Date, timesheet.Hours,
		timesheet.Engagement, timesheet.Description, timesheet.CreatedAt)
	if err != nil {
		return fmt.Errorf("create timesheet: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error) {
	query := `SELECT id, audit_id, name, owner, status, updated_at FROM working_papers`
	var args []any
	if filters.AuditID != "" {
		query += " WHERE audit_id = $1"
		args = append(args, filters.AuditID)
	}
	query += " ORDER BY updated_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list working papers: %w", err)
	}
	defer rows.Close()

	out := make([]models.WorkingPaper, 0)
	for rows.Next() {
		wp, err := scanWorkingPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("list working papers: %w", err)
		}
		out = append(out, wp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list working papers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetWorkingPaper(ctx context.Context, id string) (models.WorkingPaper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, audit_id, name, owner, status, updated_at FROM working_papers WHERE id = $1`, id)
	wp, err := scanWorkingPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkingPaper{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.WorkingPaper{}, fmt.Errorf("get working paper: %w", err)
	}
	return wp, nil
}

func (s *PostgresStore) CreateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO working_papers (id, audit_id, name, owner, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		paper.ID, paper.AuditID, paper.Name, paper.Owner, string(paper.Status), paper.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create working paper: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	res, err := s.db.ExecContext(ctx, `UPDATE working_papers SET audit_id = $2, name = $3, owner = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		paper.ID, paper.AuditID, paper.Name, paper.Owner, string(paper.Status), paper.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update working paper: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update working paper: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateFeedback(ctx context.Context, feedback models.Feedback) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO feedback (id, engagement_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		feedback.ID, feedback.EngagementID, feedback.Rating, feedback.Comment, feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEngagement(row rowScanner) (models.Engagement, error) {
	var (
		e        models.Engagement
		status   string
		riskIDs  []byte
		findings []byte
	)
	err := row.Scan(&e.ID, &e.Code, &e.Title, &e.Owner, &e.Scope, &e.Description,
		&e.StartDate, &e.EndDate, &status, &riskIDs, &findings,
		&e.ReadinessScore, &e.Coverage, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.Engagement{}, err
	}
	e.Status = models.EngagementStatus(status)
	if len(riskIDs) > 0 {
		if err := json.Unmarshal(riskIDs, &e.RiskIDs); err != nil {
			return models.Engagement{}, fmt.Errorf("decode risk ids: %w", err)
		}
	}
	if len(findings) > 0 {
		if err := json.Unmarshal(findings, &e.Findings); err != nil {
			return models.Engagement{}, fmt.Errorf("decode findings: %w", err)
		}
	}
	if len(e.RiskIDs) == 0 {
		e.RiskIDs = nil
	}
	if len(e.Findings) == 0 {
		e.Findings = nil
	}
	return e, nil
}

func scanWorkingPaper(row rowScanner) (models.WorkingPaper, error) {
	var (
		wp     models.WorkingPaper
		status string
	)
	if err := row.Scan(&wp.ID, &wp.AuditID, &wp.Name, &wp.Owner, &status, &wp.UpdatedAt); err != nil {
		return models.WorkingPaper{}, err
	}
	wp.Status = models.PaperStatus(status)
	return wp, nil
}

func marshalEmbedded(e models.Engagement) ([]byte, []byte, error) {
	riskIDs := e.RiskIDs
	if riskIDs == nil {
		riskIDs = []string{}
	}
	findings := e.Findings
	if findings == nil {
		findings = []models.Finding{}
	}
	riskIDsJSON, err := json.Marshal(riskIDs)
	if err != nil {
		return nil, nil, err
	}
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return nil, nil, err
	}
	return riskIDsJSON, findingsJSON, nil
}
