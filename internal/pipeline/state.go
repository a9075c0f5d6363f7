// File path: internal/pipeline/state.go
package pipeline

import (
	"time"

	"github.com/legacyforge/migrator/internal/catalog"
)

// Status is a job's lifecycle state. Completed, Failed, and Cancelled are
// terminal: once reached, no further transition is applied. Reviewing is
// reserved for external actors; the runner itself only moves a job through
// Pending, Running, and a terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusReviewing Status = "reviewing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// JobState is the externally visible snapshot of one migration job.
type JobState struct {
	ID           string               `json:"id"`
	RepoURL      string               `json:"repo_url"`
	Branch       string               `json:"branch,omitempty"`
	Commit       string               `json:"commit,omitempty"`
	Status       Status               `json:"status"`
	Progress     int                  `json:"progress"`
	CurrentStage string               `json:"current_stage,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Metrics      map[string]int       `json:"metrics,omitempty"`
	Checkpoints  []catalog.Checkpoint `json:"checkpoints,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	StartedAt    *time.Time           `json:"started_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
}

// cloneState deep-copies a job state so readers never observe a snapshot
// mutated by the runner.
func cloneState(state JobState) JobState {
	out := state
	if state.Metrics != nil {
		out.Metrics = make(map[string]int, len(state.Metrics))
		for k, v := range state.Metrics {
			out.Metrics[k] = v
		}
	}
	if state.Checkpoints != nil {
		out.Checkpoints = make([]catalog.Checkpoint, len(state.Checkpoints))
		copy(out.Checkpoints, state.Checkpoints)
	}
	if state.StartedAt != nil {
		started := *state.StartedAt
		out.StartedAt = &started
	}
	if state.CompletedAt != nil {
		completed := *state.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

func toRecord(state JobState) catalog.JobRecord {
	return catalog.JobRecord{
		ID:           state.ID,
		RepoURL:      state.RepoURL,
		Branch:       state.Branch,
		Status:       string(state.Status),
		Progress:     state.Progress,
		CurrentStage: state.CurrentStage,
		ErrorMessage: state.ErrorMessage,
		Metrics:      state.Metrics,
		Checkpoints:  state.Checkpoints,
		CreatedAt:    state.CreatedAt,
		StartedAt:    state.StartedAt,
		CompletedAt:  state.CompletedAt,
	}
}

func fromRecord(record catalog.JobRecord) JobState {
	return JobState{
		ID:           record.ID,
		RepoURL:      record.RepoURL,
		Branch:       record.Branch,
		Status:       Status(record.Status),
		Progress:     record.Progress,
		CurrentStage: record.CurrentStage,
		ErrorMessage: record.ErrorMessage,
		Metrics:      record.Metrics,
		Checkpoints:  record.Checkpoints,
		CreatedAt:    record.CreatedAt,
		StartedAt:    record.StartedAt,
		CompletedAt:  record.CompletedAt,
	}
}
