// File path: internal/pipeline/runner.go
package pipeline

import (
	"context"
	"time"

	"github.com/legacyforge/migrator/internal/analyzer"
	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/generator"
	"github.com/legacyforge/migrator/internal/inventory"
	"github.com/legacyforge/migrator/internal/testgen"
	"github.com/legacyforge/migrator/internal/validator"
)

// Stage progress milestones, recorded at stage entry (100 at completion).
// Every job that completes reports exactly this checkpoint sequence.
const (
	progressFetch     = 0
	progressDiscovery = 10
	progressAnalysis  = 30
	progressTranslate = 50
	progressTestGen   = 70
	progressValidate  = 85
	progressComplete  = 100
)

// run drives one job through the stage sequence. Fetch, discovery,
// translation, and test generation failures are fatal; indexing, refinement,
// and validation outcomes are advisory. Cancellation is observed at stage
// boundaries.
func (m *Manager) run(ctx context.Context, sess *session, selected []string) {
	logger := common.Logger()
	jobID := sess.state.ID

	m.begin(sess)

	checkout, err := m.fetcher.Fetch(ctx, jobID, sess.state.RepoURL, sess.state.Branch)
	if err != nil {
		m.fail(sess, "fetch", err)
		return
	}
	sess.mu.Lock()
	sess.state.Commit = checkout.Commit
	sess.mu.Unlock()
	if m.cancelled(ctx, sess) {
		return
	}

	m.checkpoint(sess, "discovery", progressDiscovery)
	scanner := inventory.NewScanner(m.cfg.SourceExtensions, m.cfg.CopybookExtensions, m.cfg.JCLExtensions)
	programs, summary, err := scanner.Scan(ctx, checkout.Path, selected)
	if err != nil {
		m.fail(sess, "discovery", err)
		return
	}
	if len(programs) == 0 {
		m.fail(sess, "discovery", errNoPrograms)
		return
	}
	m.persistPrograms(jobID, programs)
	if m.cancelled(ctx, sess) {
		return
	}

	m.checkpoint(sess, "analysis", progressAnalysis)
	models := m.analyzeAll(ctx, programs)
	if m.cancelled(ctx, sess) {
		return
	}

	m.checkpoint(sess, "translation", progressTranslate)
	gen := generator.New(m.cfg.GeneratedPackage, m.cfg.TargetStack)
	genResult, err := gen.Generate(ctx, m.outputDir(jobID), programs, models)
	if err != nil {
		m.fail(sess, "translation", err)
		return
	}
	sess.mu.Lock()
	sess.artifacts = genResult.Artifacts
	sess.mu.Unlock()
	m.persistArtifacts(jobID, genResult.Artifacts)
	if m.cancelled(ctx, sess) {
		return
	}

	refined := m.refineAdvisory(ctx, genResult.Artifacts)
	chunks := m.indexAdvisory(ctx, jobID, genResult.Artifacts)
	if m.cancelled(ctx, sess) {
		return
	}

	m.checkpoint(sess, "test-generation", progressTestGen)
	tg := testgen.New(m.cfg.GeneratedPackage)
	testResult, err := tg.Generate(ctx, m.testDir(jobID), genResult.Artifacts)
	if err != nil {
		m.fail(sess, "test-generation", err)
		return
	}
	sess.mu.Lock()
	sess.testPaths = testResult.TestPaths
	sess.mu.Unlock()
	if m.cancelled(ctx, sess) {
		return
	}

	m.checkpoint(sess, "validation", progressValidate)
	valResult := m.validateAdvisory(ctx, jobID, genResult.Artifacts, testResult.TestPaths)

	metrics := map[string]int{
		"programs_total":    summary.Programs,
		"copybooks":         summary.Copybooks,
		"jcl_files":         summary.JCLFiles,
		"translated":        genResult.Translated,
		"skipped":           genResult.Skipped,
		"failed":            genResult.Failed,
		"chunks_indexed":    chunks,
		"refined":           refined,
		"tests_generated":   testResult.Generated,
		"validation_passed": valResult.Passed,
		"validation_failed": valResult.Failed,
	}
	m.complete(sess, metrics)
	logger.Info("pipeline: job complete", "job", jobID,
		"translated", genResult.Translated, "validation_success", valResult.Success)
}

// analyzeAll extracts one structural model per program, keyed by both the
// program name and its relative path. Unreadable programs get no model and
// fall through to the placeholder in the generator.
func (m *Manager) analyzeAll(ctx context.Context, programs []inventory.ProgramDescriptor) map[string]*analyzer.StructuralModel {
	anl := analyzer.New()
	models := make(map[string]*analyzer.StructuralModel, len(programs))
	for _, program := range programs {
		model, err := anl.AnalyzeFile(ctx, program.Path)
		if err != nil || model == nil {
			continue
		}
		if program.Name != "" {
			models[program.Name] = model
		}
		if program.RelativePath != "" {
			models[program.RelativePath] = model
		}
	}
	return models
}

// indexAdvisory chunks and stores the generated sources. Failures are
// logged only.
func (m *Manager) indexAdvisory(ctx context.Context, jobID string, artifacts map[string]generator.Artifact) int {
	chunks, err := m.indexer.Index(ctx, jobID, artifacts)
	if err != nil {
		common.Logger().Warn("pipeline: indexing failed, continuing", "job", jobID, "error", err)
		return 0
	}
	return chunks
}

// refineAdvisory passes each artifact through the refinement provider.
// Refined output replaces the artifact only when it still passes the
// structural check; every failure keeps the original file.
func (m *Manager) refineAdvisory(ctx context.Context, artifacts map[string]generator.Artifact) int {
	logger := common.Logger()
	if m.improver.Name() == "noop" {
		return 0
	}
	refined := 0
	for name, artifact := range artifacts {
		if ctx.Err() != nil {
			return refined
		}
		source, err := readArtifact(artifact.Path)
		if err != nil {
			logger.Warn("pipeline: refinement read failed", "program", name, "error", err)
			continue
		}
		improved, err := m.improver.Refine(ctx, artifact.ClassName, source)
		if err != nil {
			logger.Warn("pipeline: refinement failed, keeping original", "program", name, "error", err)
			continue
		}
		if !validator.CheckSource(improved) {
			logger.Warn("pipeline: refined output failed structural check, keeping original", "program", name)
			continue
		}
		if err := writeArtifact(artifact.Path, improved); err != nil {
			logger.Warn("pipeline: refinement write failed", "program", name, "error", err)
			continue
		}
		refined++
	}
	return refined
}

// validateAdvisory checks the generated sources and records the summary.
// The job completes whether or not validation succeeds.
func (m *Manager) validateAdvisory(ctx context.Context, jobID string, artifacts map[string]generator.Artifact, testPaths map[string]string) validator.Result {
	val := validator.New(m.cfg.ValidationPassFloor)
	result, err := val.Validate(ctx, artifacts, testPaths)
	if err != nil {
		common.Logger().Warn("pipeline: validation aborted", "job", jobID, "error", err)
		return validator.Result{Results: map[string]validator.ProgramResult{}}
	}
	sess := m.session(jobID)
	if sess != nil {
		sess.mu.Lock()
		sess.validation = &result
		sess.mu.Unlock()
	}
	persistCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.SaveValidation(persistCtx, jobID, result.Passed, result.Failed, result.Success, result.Results); err != nil {
		common.Logger().Warn("pipeline: validation persist failed", "job", jobID, "error", err)
	}
	if !result.Success {
		common.Logger().Warn("pipeline: validation below pass floor",
			"job", jobID, "passed", result.Passed, "failed", result.Failed)
	}
	return result
}

func (m *Manager) persistPrograms(jobID string, programs []inventory.ProgramDescriptor) {
	records := make([]catalog.ProgramRecord, 0, len(programs))
	for _, program := range programs {
		records = append(records, catalog.ProgramRecord{
			Name:         program.Name,
			RelativePath: program.RelativePath,
			Extension:    program.Extension,
			SizeBytes:    program.SizeBytes,
			LinesOfCode:  program.LinesOfCode,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.ReplacePrograms(ctx, jobID, records); err != nil {
		common.Logger().Warn("pipeline: program persist failed", "job", jobID, "error", err)
	}
}

func (m *Manager) persistArtifacts(jobID string, artifacts map[string]generator.Artifact) {
	records := make([]catalog.ArtifactRecord, 0, len(artifacts))
	for name, artifact := range artifacts {
		records = append(records, catalog.ArtifactRecord{
			ProgramName:        name,
			ClassName:          artifact.ClassName,
			Package:            artifact.Package,
			Path:               artifact.Path,
			SourceRelativePath: artifact.SourceRelativePath,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.ReplaceArtifacts(ctx, jobID, records); err != nil {
		common.Logger().Warn("pipeline: artifact persist failed", "job", jobID, "error", err)
	}
}
