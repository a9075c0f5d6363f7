// File path: internal/testgen/testgen.go
package testgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/generator"
)

// Generator emits one JUnit test class per translated artifact. The tests
// exercise instantiation and the entry point only; behavioral assertions
// require translated procedure bodies, which are still stubs.
type Generator struct {
	Package string
}

func New(pkg string) *Generator {
	return &Generator{Package: pkg}
}

// Result maps program name to the written test file path.
type Result struct {
	TestPaths map[string]string `json:"test_paths"`
	OutputDir string            `json:"output_dir"`
	Generated int               `json:"generated"`
	Failed    int               `json:"failed"`
}

// Generate writes a <ClassName>Test.java next to each artifact under
// outputDir. A failed write is counted and skipped; the batch continues.
func (g *Generator) Generate(ctx context.Context, outputDir string, artifacts map[string]generator.Artifact) (Result, error) {
	logger := common.Logger()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create test directory: %w", err)
	}
	result := Result{TestPaths: make(map[string]string, len(artifacts)), OutputDir: outputDir}
	for name, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		source := g.renderTest(artifact.ClassName)
		outPath := filepath.Join(outputDir, artifact.ClassName+"Test.java")
		if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
			logger.Error("testgen: write failed", "program", name, "error", err)
			result.Failed++
			continue
		}
		result.TestPaths[name] = outPath
		result.Generated++
	}
	logger.Info("testgen: test generation complete",
		"generated", result.Generated, "failed", result.Failed)
	return result, nil
}

func (g *Generator) renderTest(className string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s;\n\n", g.Package)
	b.WriteString("import org.junit.jupiter.api.Test;\n")
	b.WriteString("import static org.junit.jupiter.api.Assertions.*;\n\n")
	fmt.Fprintf(&b, "/**\n * Smoke tests for the migrated %s program.\n */\n", className)
	fmt.Fprintf(&b, "public class %sTest {\n\n", className)
	b.WriteString("    @Test\n")
	b.WriteString("    public void instantiates() {\n")
	fmt.Fprintf(&b, "        %s program = new %s();\n", className, className)
	b.WriteString("        assertNotNull(program);\n    }\n\n")
	b.WriteString("    @Test\n")
	b.WriteString("    public void executesWithoutError() {\n")
	fmt.Fprintf(&b, "        %s program = new %s();\n", className, className)
	b.WriteString("        assertDoesNotThrow(program::execute);\n    }\n}\n")
	return b.String()
}
