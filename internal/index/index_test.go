// File path: internal/index/index_test.go
package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/generator"
)

func TestIndexStoresChunks(t *testing.T) {
	dir := t.TempDir()
	store, err := catalog.Open(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	source := "package a;\npublic class CALC {\n" +
		strings.Repeat("    private int field = 0;\n", 200) + "}\n"
	path := filepath.Join(dir, "CALC.java")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	artifacts := map[string]generator.Artifact{"calc": {Path: path, ClassName: "CALC"}}
	count, err := New(store).Index(context.Background(), "job-1", artifacts)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if count < 2 {
		t.Fatalf("chunk count = %d, want overlapping chunks for a long source", count)
	}
	stored, err := store.CountChunks(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if stored != count {
		t.Fatalf("stored = %d, reported = %d", stored, count)
	}
}

func TestIndexSkipsUnreadableArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := catalog.Open(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	artifacts := map[string]generator.Artifact{
		"ghost": {Path: filepath.Join(dir, "missing.java"), ClassName: "GHOST"},
	}
	count, err := New(store).Index(context.Background(), "job-1", artifacts)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}
