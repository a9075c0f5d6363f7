// File path: internal/analyzer/analyzer_test.go
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const calcSource = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. CALC.
       ENVIRONMENT DIVISION.
       DATA DIVISION.
       WORKING-STORAGE SECTION.
       01 WS-RESULT PIC 9(6) VALUE ZERO.
       01 WS-NAME PIC X(20) VALUE 'PAYROLL'.
       01 WS-RATE PIC 9(3)V99.
       PROCEDURE DIVISION.
       MAIN-PARA.
           PERFORM COMPUTE-PARA.
           STOP RUN.
       COMPUTE-PARA.
           COMPUTE WS-RESULT = 1 + 2.
           DISPLAY WS-RESULT.
`

func TestAnalyzeExtractsStructuralModel(t *testing.T) {
	model := New().Analyze([]byte(calcSource), "fallback")
	if model.ProgramID != "CALC" {
		t.Fatalf("program id = %q, want CALC", model.ProgramID)
	}
	wantDivisions := []string{"IDENTIFICATION", "ENVIRONMENT", "DATA", "PROCEDURE"}
	if len(model.Divisions) != len(wantDivisions) {
		t.Fatalf("divisions = %v, want %v", model.Divisions, wantDivisions)
	}
	for i, want := range wantDivisions {
		if model.Divisions[i] != want {
			t.Fatalf("division[%d] = %q, want %q", i, model.Divisions[i], want)
		}
	}

	if len(model.DataItems) != 3 {
		t.Fatalf("data items = %d, want 3", len(model.DataItems))
	}
	result := model.DataItems[0]
	if result.Name != "WS-RESULT" || result.Picture != "9(6)" || result.Value != "ZERO" {
		t.Fatalf("unexpected first data item: %+v", result)
	}
	if result.InferredType != TypeInteger {
		t.Fatalf("WS-RESULT inferred type = %q, want %q", result.InferredType, TypeInteger)
	}
	if model.DataItems[1].InferredType != TypeString {
		t.Fatalf("WS-NAME inferred type = %q, want string", model.DataItems[1].InferredType)
	}
	if model.DataItems[2].InferredType != TypeDecimal {
		t.Fatalf("WS-RATE inferred type = %q, want decimal", model.DataItems[2].InferredType)
	}

	if len(model.Procedures) != 2 {
		t.Fatalf("procedures = %+v, want MAIN-PARA and COMPUTE-PARA", model.Procedures)
	}
	if model.Procedures[0].Name != "MAIN-PARA" || model.Procedures[1].Name != "COMPUTE-PARA" {
		t.Fatalf("procedure order = %+v", model.Procedures)
	}
}

func TestAnalyzeFallbackProgramName(t *testing.T) {
	model := New().Analyze([]byte("       DISPLAY 'HELLO'.\n"), "billing")
	if model.ProgramID != "BILLING" {
		t.Fatalf("program id = %q, want BILLING", model.ProgramID)
	}
}

func TestAnalyzeStatementKeywordsNotParagraphs(t *testing.T) {
	source := `       PROGRAM-ID. LOOPY.
       PROCEDURE DIVISION.
       MAIN-PARA.
       IF.
       DISPLAY.
       END-IF.
`
	model := New().Analyze([]byte(source), "")
	if len(model.Procedures) != 1 || model.Procedures[0].Name != "MAIN-PARA" {
		t.Fatalf("procedures = %+v, want only MAIN-PARA", model.Procedures)
	}
}

func TestAnalyzeInvalidUTF8DoesNotFail(t *testing.T) {
	data := append([]byte("       PROGRAM-ID. RAW.\n"), 0xff, 0xfe)
	model := New().Analyze(data, "")
	if model.ProgramID != "RAW" {
		t.Fatalf("program id = %q, want RAW", model.ProgramID)
	}
}

func TestAnalyzeFileUnreadable(t *testing.T) {
	model, err := New().AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.cbl"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if model != nil {
		t.Fatalf("expected nil model, got %+v", model)
	}
}

func TestAnalyzeFileReadsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.cbl")
	if err := os.WriteFile(path, []byte(calcSource), 0o644); err != nil {
		t.Fatal(err)
	}
	model, err := New().AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze file: %v", err)
	}
	if model.ProgramID != "CALC" {
		t.Fatalf("program id = %q, want CALC", model.ProgramID)
	}
}

func TestFileControlExtraction(t *testing.T) {
	source := `       PROGRAM-ID. FILES.
       ENVIRONMENT DIVISION.
       INPUT-OUTPUT SECTION.
       FILE-CONTROL.
           SELECT IN-FILE ASSIGN TO 'INPUT.DAT'.
       DATA DIVISION.
`
	model := New().Analyze([]byte(source), "")
	if len(model.FileControls) != 1 {
		t.Fatalf("file controls = %+v, want one entry", model.FileControls)
	}
	if model.FileControls[0].FileName != "IN-FILE" {
		t.Fatalf("file name = %q", model.FileControls[0].FileName)
	}
}
