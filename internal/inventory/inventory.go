// File path: internal/inventory/inventory.go
package inventory

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/legacyforge/migrator/internal/common"
)

// ProgramDescriptor identifies one discovered COBOL source file. Descriptors
// are immutable once produced by Scan.
type ProgramDescriptor struct {
	Path         string   `json:"path"`
	RelativePath string   `json:"relative_path"`
	Name         string   `json:"name"`
	Extension    string   `json:"extension"`
	SizeBytes    int64    `json:"size_bytes"`
	LinesOfCode  int      `json:"lines_of_code"`
	Copybooks    []string `json:"copybooks,omitempty"`
}

// Summary aggregates counts from a repository scan.
type Summary struct {
	Programs  int `json:"total_programs"`
	Copybooks int `json:"total_copybooks"`
	JCLFiles  int `json:"total_jcl"`
}

// Scanner walks a checked-out repository and produces the program inventory.
type Scanner struct {
	SourceExtensions   []string
	CopybookExtensions []string
	JCLExtensions      []string
}

// NewScanner builds a scanner for the provided extension sets.
func NewScanner(source, copybook, jcl []string) *Scanner {
	return &Scanner{
		SourceExtensions:   source,
		CopybookExtensions: copybook,
		JCLExtensions:      jcl,
	}
}

// Scan walks repoPath and returns descriptors for every COBOL program file,
// honoring an optional selected-program filter (matched case-insensitively
// against the relative path or the bare file name). Copybook and JCL files
// are only counted.
func (s *Scanner) Scan(ctx context.Context, repoPath string, selected []string) ([]ProgramDescriptor, Summary, error) {
	logger := common.Logger()
	normalized := make(map[string]struct{}, len(selected))
	for _, sel := range selected {
		trimmed := strings.ToLower(strings.TrimSpace(sel))
		if trimmed != "" {
			normalized[trimmed] = struct{}{}
		}
	}

	var programs []ProgramDescriptor
	var summary Summary
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		switch {
		case hasAnySuffix(lower, s.CopybookExtensions):
			summary.Copybooks++
			return nil
		case hasAnySuffix(lower, s.JCLExtensions):
			summary.JCLFiles++
			return nil
		case !hasAnySuffix(lower, s.SourceExtensions):
			return nil
		}
		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			rel = d.Name()
		}
		if len(normalized) > 0 {
			_, byRel := normalized[strings.ToLower(rel)]
			_, byName := normalized[lower]
			if !byRel && !byName {
				return nil
			}
		}
		info, err := d.Info()
		if err != nil {
			logger.Warn("inventory: stat failed", "path", path, "error", err)
			return nil
		}
		ext := filepath.Ext(d.Name())
		programs = append(programs, ProgramDescriptor{
			Path:         path,
			RelativePath: rel,
			Name:         strings.TrimSuffix(d.Name(), ext),
			Extension:    ext,
			SizeBytes:    info.Size(),
			LinesOfCode:  countLinesOfCode(path),
			Copybooks:    extractCopybooks(path),
		})
		return nil
	})
	if err != nil {
		return nil, Summary{}, err
	}
	summary.Programs = len(programs)
	logger.Info("inventory: scan complete",
		"programs", summary.Programs, "copybooks", summary.Copybooks, "jcl", summary.JCLFiles)
	return programs, summary, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func countLinesOfCode(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()
	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	return count
}

// extractCopybooks pulls COPY statement targets so downstream tooling can see
// copybook dependencies per program.
func extractCopybooks(path string) []string {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()
	var copybooks []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		upper := strings.ToUpper(scanner.Text())
		if !strings.Contains(upper, " COPY ") {
			continue
		}
		parts := strings.Fields(strings.ReplaceAll(strings.TrimSpace(upper), ".", ""))
		for i, part := range parts {
			if part == "COPY" && i+1 < len(parts) {
				name := parts[i+1]
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					copybooks = append(copybooks, name)
				}
			}
		}
	}
	return copybooks
}
