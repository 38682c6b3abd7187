// Package postgres provides Postgres-backed persistence for workflows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aera-dev/aera/internal/workflow"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements workflow.Store over pgx.
type Store struct {
	pool dbConn
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool dbConn) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const workflowColumns = `id, user_id, url, prompt, frequency, notify_type, email, last_run, status, created_at, updated_at`

// ListActive returns every workflow eligible for scheduling.
func (s *Store) ListActive(ctx context.Context) ([]workflow.Workflow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE status = $1 ORDER BY created_at`,
		string(workflow.StatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list active workflows: %w", err)
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

// GetByUser returns a user's workflows, newest first.
func (s *Store) GetByUser(ctx context.Context, userID string) ([]workflow.Workflow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user workflows: %w", err)
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

// Create inserts a workflow row.
func (s *Store) Create(ctx context.Context, wf workflow.Workflow) (workflow.Workflow, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO workflows (`+workflowColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+workflowColumns,
		wf.ID, wf.UserID, wf.URL, wf.Prompt, string(wf.Frequency), string(wf.NotifyType),
		nullable(wf.Email), wf.LastRun, string(wf.Status), wf.CreatedAt, wf.UpdatedAt,
	)
	created, err := scanWorkflow(row)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("create workflow: %w", translateErr(err))
	}
	return created, nil
}

// Update applies the non-nil fields, last-write-wins.
func (s *Store) Update(ctx context.Context, id string, update workflow.Update) (workflow.Workflow, error) {
	var status *string
	if update.Status != nil {
		v := string(*update.Status)
		status = &v
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE workflows
		 SET last_run = COALESCE($2, last_run),
		     status = COALESCE($3, status),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+workflowColumns,
		id, update.LastRun, status,
	)
	updated, err := scanWorkflow(row)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("update workflow: %w", translateErr(err))
	}
	return updated, nil
}

// Delete removes a workflow; result rows cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete workflow: %w", workflow.ErrNotFound)
	}
	return nil
}

// CreateResult inserts a result row.
func (s *Store) CreateResult(ctx context.Context, result workflow.Result) (workflow.Result, error) {
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return workflow.Result{}, fmt.Errorf("marshal result metadata: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO workflow_results (id, workflow_id, summary, metadata, timestamp, seen)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, workflow_id, summary, metadata, timestamp, seen`,
		result.ID, result.WorkflowID, result.Summary, metadata, result.Timestamp, result.Seen,
	)
	created, err := scanResult(row)
	if err != nil {
		return workflow.Result{}, fmt.Errorf("create result: %w", translateErr(err))
	}
	return created, nil
}

// ListResults returns a workflow's results, newest first.
func (s *Store) ListResults(ctx context.Context, workflowID string) ([]workflow.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, workflow_id, summary, metadata, timestamp, seen
		 FROM workflow_results WHERE workflow_id = $1 ORDER BY timestamp DESC`,
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []workflow.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// MarkResultSeen flips the seen flag on one result.
func (s *Store) MarkResultSeen(ctx context.Context, resultID string) (workflow.Result, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE workflow_results SET seen = TRUE WHERE id = $1
		 RETURNING id, workflow_id, summary, metadata, timestamp, seen`,
		resultID,
	)
	result, err := scanResult(row)
	if err != nil {
		return workflow.Result{}, fmt.Errorf("mark result seen: %w", translateErr(err))
	}
	return result, nil
}

// translateErr maps driver errors onto the workflow store sentinels.
func translateErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return workflow.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return workflow.ErrExists
	}
	return err
}

func scanWorkflows(rows pgx.Rows) ([]workflow.Workflow, error) {
	var workflows []workflow.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return workflows, nil
}

func scanWorkflow(row pgx.Row) (workflow.Workflow, error) {
	var (
		wf        workflow.Workflow
		frequency string
		notify    string
		status    string
		email     *string
	)
	err := row.Scan(
		&wf.ID, &wf.UserID, &wf.URL, &wf.Prompt, &frequency, &notify,
		&email, &wf.LastRun, &status, &wf.CreatedAt, &wf.UpdatedAt,
	)
	if err != nil {
		return workflow.Workflow{}, err
	}
	wf.Frequency = workflow.Frequency(frequency)
	wf.NotifyType = workflow.NotifyType(notify)
	wf.Status = workflow.Status(status)
	if email != nil {
		wf.Email = *email
	}
	return wf, nil
}

func scanResult(row pgx.Row) (workflow.Result, error) {
	var (
		result   workflow.Result
		metadata []byte
	)
	err := row.Scan(&result.ID, &result.WorkflowID, &result.Summary, &metadata, &result.Timestamp, &result.Seen)
	if err != nil {
		return workflow.Result{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &result.Metadata); err != nil {
			return workflow.Result{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return result, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
