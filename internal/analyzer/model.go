// File path: internal/analyzer/model.go
package analyzer

import "strings"

// InferredType is the target primitive family derived from a PIC clause.
type InferredType string

const (
	TypeString       InferredType = "string"
	TypeShortInteger InferredType = "shortInteger"
	TypeInteger      InferredType = "integer"
	TypeLongInteger  InferredType = "longInteger"
	TypeDecimal      InferredType = "decimal"
)

// DataItem is one WORKING-STORAGE declaration. InferredType is computed once
// at extraction time; consumers must never re-derive it from Picture.
type DataItem struct {
	Level        string       `json:"level"`
	Name         string       `json:"name"`
	Picture      string       `json:"picture"`
	Value        string       `json:"value,omitempty"`
	InferredType InferredType `json:"inferred_type"`
}

// ProcedureRef names a paragraph in the PROCEDURE DIVISION. Order of
// appearance is preserved into generated output.
type ProcedureRef struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// FileControlEntry records a SELECT ... ASSIGN TO pair. Dependency metadata
// only; code generation does not consume it.
type FileControlEntry struct {
	FileName string `json:"file_name"`
	AssignTo string `json:"assign_to"`
}

// StructuralModel is the extracted shape of one program. It is created by the
// Analyzer and read-only afterwards.
type StructuralModel struct {
	ProgramID    string             `json:"program_id"`
	Divisions    []string           `json:"divisions"`
	DataItems    []DataItem         `json:"data_items"`
	Procedures   []ProcedureRef     `json:"procedures"`
	FileControls []FileControlEntry `json:"file_controls"`
}

// Placeholder returns the empty model substituted when analysis produced
// nothing usable; generation must still succeed on it. The program name is
// normalized the same way declared PROGRAM-IDs are.
func Placeholder(programName string) *StructuralModel {
	return &StructuralModel{
		ProgramID:    strings.ToUpper(strings.TrimSpace(programName)),
		Divisions:    []string{},
		DataItems:    []DataItem{},
		Procedures:   []ProcedureRef{},
		FileControls: []FileControlEntry{},
	}
}
