// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config carries every tunable the migration pipeline needs. It is built once
// at startup and passed by value into the pipeline manager; nothing in the
// pipeline mutates process-wide settings.
type Config struct {
	DataDir      string
	ReposDir     string
	ArtifactsDir string
	CatalogPath  string

	SourceExtensions   []string
	CopybookExtensions []string
	JCLExtensions      []string

	TargetStack      string
	GeneratedPackage string

	// ValidationPassFloor is the minimum number of programs that must pass
	// validation for the job-level validation result to be reported as
	// successful. The historic policy is "at least one".
	ValidationPassFloor int

	ImproverModel   string
	ImproverTimeout time.Duration
}

// DefaultConfig returns the baseline configuration used when no overrides are
// supplied.
func DefaultConfig() Config {
	dataDir := filepath.Join("data")
	return Config{
		DataDir:             dataDir,
		ReposDir:            filepath.Join(dataDir, "repos"),
		ArtifactsDir:        filepath.Join(dataDir, "artifacts"),
		CatalogPath:         filepath.Join(dataDir, "catalog.db"),
		SourceExtensions:    []string{".cbl", ".cob", ".cobol"},
		CopybookExtensions:  []string{".cpy", ".copy"},
		JCLExtensions:       []string{".jcl"},
		TargetStack:         "springboot",
		GeneratedPackage:    "com.migration.cobol",
		ValidationPassFloor: 1,
		ImproverModel:       "gpt-4.1-mini",
		ImproverTimeout:     60 * time.Second,
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_DATA_DIR")); value != "" {
		cfg.DataDir = value
		cfg.ReposDir = filepath.Join(value, "repos")
		cfg.ArtifactsDir = filepath.Join(value, "artifacts")
		cfg.CatalogPath = filepath.Join(value, "catalog.db")
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_REPOS_DIR")); value != "" {
		cfg.ReposDir = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_ARTIFACTS_DIR")); value != "" {
		cfg.ArtifactsDir = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_CATALOG_PATH")); value != "" {
		cfg.CatalogPath = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_TARGET_STACK")); value != "" {
		cfg.TargetStack = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_GENERATED_PACKAGE")); value != "" {
		cfg.GeneratedPackage = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_VALIDATION_PASS_FLOOR")); value != "" {
		floor, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MIGRATOR_VALIDATION_PASS_FLOOR: %w", err)
		}
		if floor < 0 {
			floor = 0
		}
		cfg.ValidationPassFloor = floor
	}
	if value := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); value != "" {
		cfg.ImproverModel = value
	}
	if value := strings.TrimSpace(os.Getenv("MIGRATOR_IMPROVER_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MIGRATOR_IMPROVER_TIMEOUT: %w", err)
		}
		cfg.ImproverTimeout = dur
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(cfg.ReposDir) == "" {
		cfg.ReposDir = defaults.ReposDir
	}
	if strings.TrimSpace(cfg.ArtifactsDir) == "" {
		cfg.ArtifactsDir = defaults.ArtifactsDir
	}
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		cfg.CatalogPath = defaults.CatalogPath
	}
	if len(cfg.SourceExtensions) == 0 {
		cfg.SourceExtensions = defaults.SourceExtensions
	}
	if len(cfg.CopybookExtensions) == 0 {
		cfg.CopybookExtensions = defaults.CopybookExtensions
	}
	if len(cfg.JCLExtensions) == 0 {
		cfg.JCLExtensions = defaults.JCLExtensions
	}
	if strings.TrimSpace(cfg.TargetStack) == "" {
		cfg.TargetStack = defaults.TargetStack
	}
	if strings.TrimSpace(cfg.GeneratedPackage) == "" {
		cfg.GeneratedPackage = defaults.GeneratedPackage
	}
	if cfg.ImproverTimeout <= 0 {
		cfg.ImproverTimeout = defaults.ImproverTimeout
	}
	if strings.TrimSpace(cfg.ImproverModel) == "" {
		cfg.ImproverModel = defaults.ImproverModel
	}
	return cfg
}

// Validate reports configuration problems that would prevent a pipeline run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ArtifactsDir) == "" {
		return fmt.Errorf("artifacts directory required")
	}
	if strings.TrimSpace(c.ReposDir) == "" {
		return fmt.Errorf("repos directory required")
	}
	if strings.TrimSpace(c.CatalogPath) == "" {
		return fmt.Errorf("catalog path required")
	}
	if len(c.SourceExtensions) == 0 {
		return fmt.Errorf("at least one source extension required")
	}
	if c.ValidationPassFloor < 0 {
		return fmt.Errorf("validation pass floor must be non-negative")
	}
	return nil
}
