// File path: internal/catalog/catalog.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/legacyforge/migrator/internal/common"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("catalog: record not found")

// Catalog is the durable store for jobs and their derived records. It backs
// the REST surface across process restarts; the in-memory session map remains
// the authority while a job is running.
type Catalog struct {
	db *sqlx.DB
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		repo_url TEXT NOT NULL,
		branch TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		current_stage TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		metrics TEXT NOT NULL DEFAULT '{}',
		checkpoints TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		started_at TIMESTAMP,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS programs (
		job_id TEXT NOT NULL,
		name TEXT NOT NULL,
		relative_path TEXT NOT NULL,
		extension TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		lines_of_code INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (job_id, relative_path)
	)`,
	`CREATE TABLE IF NOT EXISTS artifacts (
		job_id TEXT NOT NULL,
		program_name TEXT NOT NULL,
		class_name TEXT NOT NULL,
		package TEXT NOT NULL,
		path TEXT NOT NULL,
		source_relative_path TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (job_id, program_name)
	)`,
	`CREATE TABLE IF NOT EXISTS validations (
		job_id TEXT PRIMARY KEY,
		passed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chunks (
		job_id TEXT NOT NULL,
		program_name TEXT NOT NULL,
		seq INTEGER NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (job_id, program_name, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_chunks_job ON chunks (job_id)`,
}

// Open opens (creating if needed) the catalog database at path and applies
// the schema.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	catalog := &Catalog{db: db}
	if err := catalog.applySchema(); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("catalog: opened", "path", path)
	return catalog, nil
}

func (c *Catalog) applySchema() error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// JobRecord is the persisted job row. Metrics and Checkpoints are stored as
// JSON columns.
type JobRecord struct {
	ID           string         `db:"id" json:"id"`
	RepoURL      string         `db:"repo_url" json:"repo_url"`
	Branch       string         `db:"branch" json:"branch,omitempty"`
	Status       string         `db:"status" json:"status"`
	Progress     int            `db:"progress" json:"progress"`
	CurrentStage string         `db:"current_stage" json:"current_stage,omitempty"`
	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	Metrics      map[string]int `db:"-" json:"metrics,omitempty"`
	Checkpoints  []Checkpoint   `db:"-" json:"checkpoints,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	StartedAt    *time.Time     `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time     `db:"completed_at" json:"completed_at,omitempty"`

	MetricsJSON     string `db:"metrics" json:"-"`
	CheckpointsJSON string `db:"checkpoints" json:"-"`
}

// Checkpoint is one progress milestone in a job's history.
type Checkpoint struct {
	Stage    string    `json:"stage"`
	Progress int       `json:"progress"`
	At       time.Time `json:"at"`
}

// SaveJob upserts one job row.
func (c *Catalog) SaveJob(ctx context.Context, record JobRecord) error {
	metrics, err := json.Marshal(orEmptyMetrics(record.Metrics))
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	checkpoints, err := json.Marshal(orEmptyCheckpoints(record.Checkpoints))
	if err != nil {
		return fmt.Errorf("encode checkpoints: %w", err)
	}
	record.MetricsJSON = string(metrics)
	record.CheckpointsJSON = string(checkpoints)
	_, err = c.db.NamedExecContext(ctx, `INSERT INTO jobs
		(id, repo_url, branch, status, progress, current_stage, error_message, metrics, checkpoints, created_at, started_at, completed_at)
		VALUES (:id, :repo_url, :branch, :status, :progress, :current_stage, :error_message, :metrics, :checkpoints, :created_at, :started_at, :completed_at)
		ON CONFLICT(id) DO UPDATE SET
		status = excluded.status, progress = excluded.progress,
		current_stage = excluded.current_stage, error_message = excluded.error_message,
		metrics = excluded.metrics, checkpoints = excluded.checkpoints,
		started_at = excluded.started_at, completed_at = excluded.completed_at`, record)
	if err != nil {
		return fmt.Errorf("save job %s: %w", record.ID, err)
	}
	return nil
}

// GetJob loads one job row by id.
func (c *Catalog) GetJob(ctx context.Context, id string) (JobRecord, error) {
	var record JobRecord
	err := c.db.GetContext(ctx, &record, `SELECT * FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return JobRecord{}, ErrNotFound
	}
	if err != nil {
		return JobRecord{}, fmt.Errorf("load job %s: %w", id, err)
	}
	decodeJobColumns(&record)
	return record, nil
}

// ListJobs returns every job row, newest first.
func (c *Catalog) ListJobs(ctx context.Context) ([]JobRecord, error) {
	var records []JobRecord
	if err := c.db.SelectContext(ctx, &records, `SELECT * FROM jobs ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	for i := range records {
		decodeJobColumns(&records[i])
	}
	return records, nil
}

func decodeJobColumns(record *JobRecord) {
	record.Metrics = map[string]int{}
	record.Checkpoints = []Checkpoint{}
	if record.MetricsJSON != "" {
		if err := json.Unmarshal([]byte(record.MetricsJSON), &record.Metrics); err != nil {
			common.Logger().Warn("catalog: bad metrics column", "job", record.ID, "error", err)
		}
	}
	if record.CheckpointsJSON != "" {
		if err := json.Unmarshal([]byte(record.CheckpointsJSON), &record.Checkpoints); err != nil {
			common.Logger().Warn("catalog: bad checkpoints column", "job", record.ID, "error", err)
		}
	}
}

func orEmptyMetrics(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func orEmptyCheckpoints(c []Checkpoint) []Checkpoint {
	if c == nil {
		return []Checkpoint{}
	}
	return c
}
