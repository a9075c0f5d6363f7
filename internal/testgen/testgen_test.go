// File path: internal/testgen/testgen_test.go
package testgen

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/legacyforge/migrator/internal/generator"
	"github.com/legacyforge/migrator/internal/validator"
)

func TestGenerateWritesJUnitStubs(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string]generator.Artifact{
		"calc":    {ClassName: "CALC", Package: "com.migration.cobol"},
		"billing": {ClassName: "BILLING", Package: "com.migration.cobol"},
	}

	result, err := New("com.migration.cobol").Generate(context.Background(), dir, artifacts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Generated != 2 || result.Failed != 0 {
		t.Fatalf("counts = %+v", result)
	}

	path, ok := result.TestPaths["calc"]
	if !ok {
		t.Fatalf("missing test path, got %v", result.TestPaths)
	}
	if !strings.HasSuffix(path, "CALCTest.java") {
		t.Fatalf("test path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read test: %v", err)
	}
	source := string(data)
	for _, want := range []string{
		"package com.migration.cobol;",
		"import org.junit.jupiter.api.Test;",
		"public class CALCTest {",
		"new CALC()",
		"assertDoesNotThrow(program::execute)",
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("test source missing %q:\n%s", want, source)
		}
	}
	if !validator.CheckSource(source) {
		t.Fatal("generated test does not pass the structural check")
	}
}
