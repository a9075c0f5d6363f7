// File path: internal/config/config_test.go
package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TargetStack != "springboot" {
		t.Fatalf("target stack = %q", cfg.TargetStack)
	}
	if cfg.GeneratedPackage != "com.migration.cobol" {
		t.Fatalf("generated package = %q", cfg.GeneratedPackage)
	}
	if cfg.ValidationPassFloor != 1 {
		t.Fatalf("validation pass floor = %d, want 1", cfg.ValidationPassFloor)
	}
	if len(cfg.SourceExtensions) == 0 || cfg.SourceExtensions[0] != ".cbl" {
		t.Fatalf("source extensions = %v", cfg.SourceExtensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MIGRATOR_DATA_DIR", "/tmp/migrator-data")
	t.Setenv("MIGRATOR_TARGET_STACK", "quarkus")
	t.Setenv("MIGRATOR_VALIDATION_PASS_FLOOR", "3")
	t.Setenv("MIGRATOR_IMPROVER_TIMEOUT", "90s")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataDir != "/tmp/migrator-data" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.CatalogPath != "/tmp/migrator-data/catalog.db" {
		t.Fatalf("catalog path = %q", cfg.CatalogPath)
	}
	if cfg.TargetStack != "quarkus" {
		t.Fatalf("target stack = %q", cfg.TargetStack)
	}
	if cfg.ValidationPassFloor != 3 {
		t.Fatalf("pass floor = %d", cfg.ValidationPassFloor)
	}
	if cfg.ImproverTimeout != 90*time.Second {
		t.Fatalf("improver timeout = %v", cfg.ImproverTimeout)
	}
	if cfg.ImproverModel != "gpt-4o" {
		t.Fatalf("improver model = %q", cfg.ImproverModel)
	}
}

func TestLoadConfigBadFloor(t *testing.T) {
	t.Setenv("MIGRATOR_VALIDATION_PASS_FLOOR", "lots")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsMissingDirs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArtifactsDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing artifacts dir")
	}
}
