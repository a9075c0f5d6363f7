// File path: internal/pipeline/manager.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/config"
	"github.com/legacyforge/migrator/internal/generator"
	"github.com/legacyforge/migrator/internal/improver"
	"github.com/legacyforge/migrator/internal/index"
	"github.com/legacyforge/migrator/internal/repository"
	"github.com/legacyforge/migrator/internal/validator"
)

var (
	// ErrJobNotFound is returned when a job id matches no session or record.
	ErrJobNotFound = errors.New("pipeline: job not found")
	// ErrJobFinished is returned when a cancel targets a terminal job.
	ErrJobFinished = errors.New("pipeline: job already finished")
	// ErrInvalidRequest is returned when a submission is malformed.
	ErrInvalidRequest = errors.New("pipeline: invalid request")
)

// session is the runtime record for one job: its mutable state plus the
// stage outputs the API serves while the process is alive.
type session struct {
	mu         sync.Mutex
	state      JobState
	cancel     context.CancelFunc
	artifacts  map[string]generator.Artifact
	testPaths  map[string]string
	validation *validator.Result
}

// Manager owns the job sessions and drives one runner goroutine per job.
type Manager struct {
	cfg      config.Config
	store    *catalog.Catalog
	fetcher  *repository.Fetcher
	indexer  *index.Indexer
	improver improver.Provider

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(cfg config.Config, store *catalog.Catalog) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		fetcher:  repository.NewFetcher(cfg.ReposDir),
		indexer:  index.New(store),
		improver: improver.NewFromEnv(cfg.ImproverModel, cfg.ImproverTimeout),
		sessions: make(map[string]*session),
	}
}

// SubmitRequest describes one migration job submission.
type SubmitRequest struct {
	RepoURL  string   `json:"repo_url"`
	Branch   string   `json:"branch,omitempty"`
	Selected []string `json:"selected,omitempty"`
}

// Submit registers a job and starts its runner. The returned snapshot is the
// initial pending state.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (JobState, error) {
	repoURL := strings.TrimSpace(req.RepoURL)
	if repoURL == "" {
		return JobState{}, fmt.Errorf("%w: repo_url is required", ErrInvalidRequest)
	}
	state := JobState{
		ID:          uuid.NewString(),
		RepoURL:     repoURL,
		Branch:      strings.TrimSpace(req.Branch),
		Status:      StatusPending,
		Metrics:     map[string]int{},
		Checkpoints: []catalog.Checkpoint{},
		CreatedAt:   time.Now().UTC(),
	}
	runCtx, cancel := context.WithCancel(context.Background())
	sess := &session{state: state, cancel: cancel}

	m.mu.Lock()
	m.sessions[state.ID] = sess
	m.mu.Unlock()

	m.persist(state)
	common.Logger().Info("pipeline: job submitted",
		"job", state.ID, "repo", repoURL, "branch", state.Branch)
	go m.run(runCtx, sess, req.Selected)
	return cloneState(state), nil
}

// Get returns a job snapshot, falling back to the catalog for jobs from
// earlier process lifetimes.
func (m *Manager) Get(ctx context.Context, jobID string) (JobState, error) {
	if sess := m.session(jobID); sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return cloneState(sess.state), nil
	}
	record, err := m.store.GetJob(ctx, jobID)
	if errors.Is(err, catalog.ErrNotFound) {
		return JobState{}, ErrJobNotFound
	}
	if err != nil {
		return JobState{}, err
	}
	return fromRecord(record), nil
}

// List returns every known job, newest first, from the catalog.
func (m *Manager) List(ctx context.Context) ([]JobState, error) {
	records, err := m.store.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]JobState, 0, len(records))
	for _, record := range records {
		// Prefer the live snapshot when the job is resident.
		if sess := m.session(record.ID); sess != nil {
			sess.mu.Lock()
			states = append(states, cloneState(sess.state))
			sess.mu.Unlock()
			continue
		}
		states = append(states, fromRecord(record))
	}
	return states, nil
}

// Cancel requests cancellation of a running job. Terminal jobs are rejected.
// Stage boundaries are the cancellation points: the in-flight stage finishes
// before the runner observes the cancel.
func (m *Manager) Cancel(jobID string) (JobState, error) {
	sess := m.session(jobID)
	if sess == nil {
		return JobState{}, ErrJobNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Status.IsTerminal() {
		return JobState{}, ErrJobFinished
	}
	sess.cancel()
	common.Logger().Info("pipeline: cancellation requested", "job", jobID)
	return cloneState(sess.state), nil
}

// Artifacts returns a job's generated artifacts, from memory when resident
// or rebuilt from the catalog otherwise.
func (m *Manager) Artifacts(ctx context.Context, jobID string) (map[string]generator.Artifact, error) {
	if sess := m.session(jobID); sess != nil {
		sess.mu.Lock()
		resident := sess.artifacts
		sess.mu.Unlock()
		if resident != nil {
			out := make(map[string]generator.Artifact, len(resident))
			for k, v := range resident {
				out[k] = v
			}
			return out, nil
		}
	}
	if _, err := m.Get(ctx, jobID); err != nil {
		return nil, err
	}
	records, err := m.store.ListArtifacts(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		// Records can be lost while files survive; rebuild from disk.
		if rescanned := generator.Rescan(m.outputDir(jobID), m.cfg.GeneratedPackage); len(rescanned) > 0 {
			return rescanned, nil
		}
	}
	artifacts := make(map[string]generator.Artifact, len(records))
	for _, record := range records {
		artifacts[record.ProgramName] = generator.Artifact{
			Path:               record.Path,
			ClassName:          record.ClassName,
			Package:            record.Package,
			SourceRelativePath: record.SourceRelativePath,
		}
	}
	return artifacts, nil
}

// Validation returns a job's validation summary.
func (m *Manager) Validation(ctx context.Context, jobID string) (validator.Result, error) {
	if sess := m.session(jobID); sess != nil {
		sess.mu.Lock()
		resident := sess.validation
		sess.mu.Unlock()
		if resident != nil {
			return *resident, nil
		}
	}
	if _, err := m.Get(ctx, jobID); err != nil {
		return validator.Result{}, err
	}
	record, err := m.store.GetValidation(ctx, jobID)
	if errors.Is(err, catalog.ErrNotFound) {
		return validator.Result{}, ErrJobNotFound
	}
	if err != nil {
		return validator.Result{}, err
	}
	return validator.Result{
		Results: map[string]validator.ProgramResult{},
		Passed:  record.Passed,
		Failed:  record.Failed,
		Success: record.Success,
	}, nil
}

func (m *Manager) session(jobID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[jobID]
}

// persist mirrors a snapshot into the catalog. Persistence is best-effort:
// the in-memory session stays authoritative while the job is resident.
func (m *Manager) persist(state JobState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.SaveJob(ctx, toRecord(state)); err != nil {
		common.Logger().Warn("pipeline: job persist failed", "job", state.ID, "error", err)
	}
}

func (m *Manager) outputDir(jobID string) string {
	return filepath.Join(m.cfg.ArtifactsDir, jobID, "src")
}

func (m *Manager) testDir(jobID string) string {
	return filepath.Join(m.cfg.ArtifactsDir, jobID, "tests")
}
