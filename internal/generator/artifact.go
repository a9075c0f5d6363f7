// File path: internal/generator/artifact.go
package generator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/legacyforge/migrator/internal/common"
)

// Artifact describes one generated source unit and its back-reference to the
// originating program. Immutable once created.
type Artifact struct {
	Path               string `json:"path"`
	ClassName          string `json:"class_name"`
	Package            string `json:"package"`
	SourcePath         string `json:"source_path,omitempty"`
	SourceRelativePath string `json:"source_relative_path,omitempty"`
}

// Rescan rebuilds minimal artifact records from the files present in a job's
// output directory. This is the recovery path used when the in-memory
// artifact map is lost; the source back-references cannot be recovered.
func Rescan(outputDir, pkg string) map[string]Artifact {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		common.Logger().Warn("generator: rescan failed", "dir", outputDir, "error", err)
		return nil
	}
	artifacts := make(map[string]Artifact)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".java") {
			continue
		}
		className := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		artifacts[className] = Artifact{
			Path:      filepath.Join(outputDir, entry.Name()),
			ClassName: className,
			Package:   pkg,
		}
	}
	return artifacts
}
