// File path: internal/pipeline/transitions.go
package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/common"
)

var errNoPrograms = errors.New("pipeline: no COBOL programs found in repository")

// begin moves a pending job to running and records the first checkpoint.
// StartedAt is write-once.
func (m *Manager) begin(sess *session) {
	sess.mu.Lock()
	sess.state.Status = StatusRunning
	if sess.state.StartedAt == nil {
		now := time.Now().UTC()
		sess.state.StartedAt = &now
	}
	sess.state.CurrentStage = "fetch"
	sess.state.Progress = progressFetch
	sess.state.Checkpoints = append(sess.state.Checkpoints, catalog.Checkpoint{
		Stage: "fetch", Progress: progressFetch, At: time.Now().UTC(),
	})
	snapshot := cloneState(sess.state)
	sess.mu.Unlock()
	m.persist(snapshot)
}

// checkpoint records a completed stage milestone. Terminal jobs ignore late
// checkpoints from their runner.
func (m *Manager) checkpoint(sess *session, stage string, progress int) {
	sess.mu.Lock()
	if sess.state.Status.IsTerminal() {
		sess.mu.Unlock()
		return
	}
	sess.state.CurrentStage = stage
	sess.state.Progress = progress
	sess.state.Checkpoints = append(sess.state.Checkpoints, catalog.Checkpoint{
		Stage: stage, Progress: progress, At: time.Now().UTC(),
	})
	snapshot := cloneState(sess.state)
	sess.mu.Unlock()
	m.persist(snapshot)
	common.Logger().Info("pipeline: stage complete",
		"job", snapshot.ID, "stage", stage, "progress", progress)
}

// fail moves a job to the failed terminal state. The transition is one-shot:
// a job already terminal keeps its first outcome.
func (m *Manager) fail(sess *session, stage string, err error) {
	sess.mu.Lock()
	if sess.state.Status.IsTerminal() {
		sess.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	sess.state.Status = StatusFailed
	sess.state.CurrentStage = stage
	sess.state.ErrorMessage = err.Error()
	if sess.state.CompletedAt == nil {
		sess.state.CompletedAt = &now
	}
	snapshot := cloneState(sess.state)
	sess.mu.Unlock()
	m.persist(snapshot)
	common.Logger().Error("pipeline: job failed",
		"job", snapshot.ID, "stage", stage, "error", err)
}

// complete moves a job to the completed terminal state with its final
// metrics and the 100% checkpoint.
func (m *Manager) complete(sess *session, metrics map[string]int) {
	sess.mu.Lock()
	if sess.state.Status.IsTerminal() {
		sess.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	sess.state.Status = StatusCompleted
	sess.state.CurrentStage = "completed"
	sess.state.Progress = progressComplete
	sess.state.Metrics = metrics
	if sess.state.CompletedAt == nil {
		sess.state.CompletedAt = &now
	}
	sess.state.Checkpoints = append(sess.state.Checkpoints, catalog.Checkpoint{
		Stage: "completed", Progress: progressComplete, At: now,
	})
	snapshot := cloneState(sess.state)
	sess.mu.Unlock()
	m.persist(snapshot)
}

// cancelled checks the run context at a stage boundary and, when the job was
// cancelled, applies the terminal transition.
func (m *Manager) cancelled(ctx context.Context, sess *session) bool {
	if ctx.Err() == nil {
		return false
	}
	sess.mu.Lock()
	if sess.state.Status.IsTerminal() {
		sess.mu.Unlock()
		return true
	}
	now := time.Now().UTC()
	sess.state.Status = StatusCancelled
	if sess.state.CompletedAt == nil {
		sess.state.CompletedAt = &now
	}
	snapshot := cloneState(sess.state)
	sess.mu.Unlock()
	m.persist(snapshot)
	common.Logger().Info("pipeline: job cancelled", "job", snapshot.ID,
		"stage", snapshot.CurrentStage)
	return true
}

func readArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeArtifact(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
