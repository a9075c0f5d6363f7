// File path: internal/catalog/records.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProgramRecord is one discovered source program.
type ProgramRecord struct {
	JobID        string `db:"job_id" json:"-"`
	Name         string `db:"name" json:"name"`
	RelativePath string `db:"relative_path" json:"relative_path"`
	Extension    string `db:"extension" json:"extension"`
	SizeBytes    int64  `db:"size_bytes" json:"size_bytes"`
	LinesOfCode  int    `db:"lines_of_code" json:"lines_of_code"`
}

// ReplacePrograms replaces a job's program inventory in one transaction.
func (c *Catalog) ReplacePrograms(ctx context.Context, jobID string, programs []ProgramRecord) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin programs transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM programs WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear programs for %s: %w", jobID, err)
	}
	for i := range programs {
		programs[i].JobID = jobID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO programs
			(job_id, name, relative_path, extension, size_bytes, lines_of_code)
			VALUES (:job_id, :name, :relative_path, :extension, :size_bytes, :lines_of_code)`, programs[i]); err != nil {
			return fmt.Errorf("insert program %s: %w", programs[i].RelativePath, err)
		}
	}
	return tx.Commit()
}

// ListPrograms returns a job's program inventory.
func (c *Catalog) ListPrograms(ctx context.Context, jobID string) ([]ProgramRecord, error) {
	var records []ProgramRecord
	if err := c.db.SelectContext(ctx, &records,
		`SELECT * FROM programs WHERE job_id = ? ORDER BY relative_path`, jobID); err != nil {
		return nil, fmt.Errorf("list programs for %s: %w", jobID, err)
	}
	return records, nil
}

// ArtifactRecord is one generated source unit.
type ArtifactRecord struct {
	JobID              string `db:"job_id" json:"-"`
	ProgramName        string `db:"program_name" json:"program_name"`
	ClassName          string `db:"class_name" json:"class_name"`
	Package            string `db:"package" json:"package"`
	Path               string `db:"path" json:"path"`
	SourceRelativePath string `db:"source_relative_path" json:"source_relative_path,omitempty"`
}

// ReplaceArtifacts replaces a job's artifact records in one transaction.
func (c *Catalog) ReplaceArtifacts(ctx context.Context, jobID string, artifacts []ArtifactRecord) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin artifacts transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear artifacts for %s: %w", jobID, err)
	}
	for i := range artifacts {
		artifacts[i].JobID = jobID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO artifacts
			(job_id, program_name, class_name, package, path, source_relative_path)
			VALUES (:job_id, :program_name, :class_name, :package, :path, :source_relative_path)`, artifacts[i]); err != nil {
			return fmt.Errorf("insert artifact %s: %w", artifacts[i].ProgramName, err)
		}
	}
	return tx.Commit()
}

// ListArtifacts returns a job's artifact records.
func (c *Catalog) ListArtifacts(ctx context.Context, jobID string) ([]ArtifactRecord, error) {
	var records []ArtifactRecord
	if err := c.db.SelectContext(ctx, &records,
		`SELECT * FROM artifacts WHERE job_id = ? ORDER BY program_name`, jobID); err != nil {
		return nil, fmt.Errorf("list artifacts for %s: %w", jobID, err)
	}
	return records, nil
}

// ValidationRecord is the persisted job-level validation summary. Detail is
// the full per-program result map as JSON.
type ValidationRecord struct {
	JobID     string    `db:"job_id" json:"-"`
	Passed    int       `db:"passed" json:"passed"`
	Failed    int       `db:"failed" json:"failed"`
	Success   bool      `db:"success" json:"success"`
	Detail    string    `db:"detail" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SaveValidation upserts a job's validation summary. detail is serialized to
// the JSON column.
func (c *Catalog) SaveValidation(ctx context.Context, jobID string, passed, failed int, success bool, detail any) error {
	encoded, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode validation detail: %w", err)
	}
	record := ValidationRecord{
		JobID: jobID, Passed: passed, Failed: failed, Success: success,
		Detail: string(encoded), CreatedAt: time.Now().UTC(),
	}
	if _, err := c.db.NamedExecContext(ctx, `INSERT INTO validations
		(job_id, passed, failed, success, detail, created_at)
		VALUES (:job_id, :passed, :failed, :success, :detail, :created_at)
		ON CONFLICT(job_id) DO UPDATE SET
		passed = excluded.passed, failed = excluded.failed,
		success = excluded.success, detail = excluded.detail,
		created_at = excluded.created_at`, record); err != nil {
		return fmt.Errorf("save validation for %s: %w", jobID, err)
	}
	return nil
}

// GetValidation loads a job's validation summary.
func (c *Catalog) GetValidation(ctx context.Context, jobID string) (ValidationRecord, error) {
	var record ValidationRecord
	err := c.db.GetContext(ctx, &record, `SELECT * FROM validations WHERE job_id = ?`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return ValidationRecord{}, ErrNotFound
	}
	if err != nil {
		return ValidationRecord{}, fmt.Errorf("load validation for %s: %w", jobID, err)
	}
	return record, nil
}

// ChunkRecord is one indexed source fragment.
type ChunkRecord struct {
	JobID       string `db:"job_id" json:"-"`
	ProgramName string `db:"program_name" json:"program_name"`
	Seq         int    `db:"seq" json:"seq"`
	Content     string `db:"content" json:"content"`
}

// ReplaceChunks replaces a job's indexed chunks in one transaction.
func (c *Catalog) ReplaceChunks(ctx context.Context, jobID string, chunks []ChunkRecord) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunks transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear chunks for %s: %w", jobID, err)
	}
	for i := range chunks {
		chunks[i].JobID = jobID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO chunks
			(job_id, program_name, seq, content)
			VALUES (:job_id, :program_name, :seq, :content)`, chunks[i]); err != nil {
			return fmt.Errorf("insert chunk %s/%d: %w", chunks[i].ProgramName, chunks[i].Seq, err)
		}
	}
	return tx.Commit()
}

// CountChunks returns a job's indexed chunk count.
func (c *Catalog) CountChunks(ctx context.Context, jobID string) (int, error) {
	var count int
	if err := c.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chunks WHERE job_id = ?`, jobID); err != nil {
		return 0, fmt.Errorf("count chunks for %s: %w", jobID, err)
	}
	return count, nil
}
