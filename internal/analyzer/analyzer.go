// File path: internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/legacyforge/migrator/internal/common"
)

var (
	programIDRe   = regexp.MustCompile(`(?i)PROGRAM-ID\.\s*([A-Z0-9-]+)`)
	divisionRe    = regexp.MustCompile(`(?i)(IDENTIFICATION|ENVIRONMENT|DATA|PROCEDURE)\s+DIVISION`)
	workingViewRe = regexp.MustCompile(`(?is)WORKING-STORAGE\s+SECTION\.(.*?)(?:PROCEDURE\s+DIVISION|$)`)
	dataItemRe    = regexp.MustCompile(`(?im)^[ \t]*(\d{2})[ \t]+(\S+)[ \t]+PIC[ \t]+([^\s.]+)(?:[ \t]+VALUE[ \t]+([^.]+))?`)
	procedureRe   = regexp.MustCompile(`(?is)PROCEDURE\s+DIVISION\.(.*)$`)
	paragraphRe   = regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Z0-9-]+)\.`)
	fileCtrlRe    = regexp.MustCompile(`(?is)FILE-CONTROL\.(.*?)(?:DATA\s+DIVISION|$)`)
	selectRe      = regexp.MustCompile(`(?i)SELECT\s+(\S+)\s+ASSIGN\s+TO\s+(\S+)`)
)

// statementKeywords must never be mistaken for paragraph declarations.
var statementKeywords = map[string]struct{}{
	"STOP": {}, "DISPLAY": {}, "MOVE": {}, "ADD": {}, "COMPUTE": {},
	"PERFORM": {}, "IF": {}, "ELSE": {}, "END-IF": {},
}

// Analyzer extracts a StructuralModel from raw COBOL source. It is a
// best-effort pattern scanner, not a grammar parser: lines that do not match
// the expected shapes are ignored.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeFile reads and analyzes one program file. An unreadable file yields
// a nil model (the caller substitutes the placeholder); it never aborts the
// batch.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*StructuralModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		common.Logger().Warn("analyzer: unreadable source", "path", path, "error", err)
		return nil, err
	}
	fallback := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return a.Analyze(data, fallback), nil
}

// Analyze extracts the structural model from raw bytes. Decoding is UTF-8
// best-effort: invalid sequences are replaced, never fatal. fallbackName is
// used when the source declares no PROGRAM-ID.
func (a *Analyzer) Analyze(data []byte, fallbackName string) *StructuralModel {
	content := strings.ToValidUTF8(string(data), "�")
	model := &StructuralModel{
		ProgramID:    extractProgramID(content),
		Divisions:    extractDivisions(content),
		DataItems:    extractDataItems(content),
		Procedures:   extractProcedures(content),
		FileControls: extractFileControls(content),
	}
	if model.ProgramID == "UNKNOWN" && strings.TrimSpace(fallbackName) != "" {
		model.ProgramID = strings.ToUpper(strings.TrimSpace(fallbackName))
	}
	return model
}

func extractProgramID(content string) string {
	match := programIDRe.FindStringSubmatch(content)
	if len(match) < 2 {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.TrimSpace(match[1]))
}

func extractDivisions(content string) []string {
	var divisions []string
	seen := make(map[string]struct{})
	for _, match := range divisionRe.FindAllStringSubmatch(content, -1) {
		name := strings.ToUpper(match[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		divisions = append(divisions, name)
	}
	return divisions
}

func extractDataItems(content string) []DataItem {
	section := workingViewRe.FindStringSubmatch(content)
	if len(section) < 2 {
		return nil
	}
	var items []DataItem
	for _, match := range dataItemRe.FindAllStringSubmatch(section[1], -1) {
		pic := match[3]
		item := DataItem{
			Level:        match[1],
			Name:         match[2],
			Picture:      pic,
			InferredType: InferType(pic),
		}
		if match[4] != "" {
			item.Value = strings.TrimSpace(match[4])
		}
		items = append(items, item)
	}
	return items
}

func extractProcedures(content string) []ProcedureRef {
	section := procedureRe.FindStringSubmatch(content)
	if len(section) < 2 {
		return nil
	}
	var procedures []ProcedureRef
	seen := make(map[string]struct{})
	for _, match := range paragraphRe.FindAllStringSubmatch(section[1], -1) {
		name := strings.ToUpper(strings.TrimSpace(match[1]))
		if _, keyword := statementKeywords[name]; keyword {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		procedures = append(procedures, ProcedureRef{Name: name, Kind: "paragraph"})
	}
	return procedures
}

func extractFileControls(content string) []FileControlEntry {
	section := fileCtrlRe.FindStringSubmatch(content)
	if len(section) < 2 {
		return nil
	}
	var entries []FileControlEntry
	for _, match := range selectRe.FindAllStringSubmatch(section[1], -1) {
		entries = append(entries, FileControlEntry{
			FileName: strings.ToUpper(strings.TrimSpace(match[1])),
			AssignTo: strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(match[2])), "."),
		})
	}
	return entries
}
