// File path: internal/generator/generator.go
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/legacyforge/migrator/internal/analyzer"
	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/inventory"
)

// Generator emits one Java source unit per program. The target stack hint is
// advisory: a single template family is used regardless of its value.
type Generator struct {
	Package     string
	TargetStack string
}

func New(pkg, targetStack string) *Generator {
	return &Generator{Package: pkg, TargetStack: targetStack}
}

// Result summarizes a generation stage run.
type Result struct {
	Artifacts  map[string]Artifact `json:"artifacts"`
	OutputDir  string              `json:"output_dir"`
	Translated int                 `json:"translated"`
	Skipped    int                 `json:"skipped"`
	Failed     int                 `json:"failed"`
}

// Generate translates every program into outputDir. A program with no
// resolvable name is skipped and counted; a program with no structural model
// gets the placeholder model. One program's failure never blocks another's.
//
// Known gap: two programs resolving to the same class name share one output
// path and the later write wins; no disambiguation is attempted.
func (g *Generator) Generate(ctx context.Context, outputDir string, programs []inventory.ProgramDescriptor, models map[string]*analyzer.StructuralModel) (Result, error) {
	logger := common.Logger()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}
	result := Result{Artifacts: make(map[string]Artifact, len(programs)), OutputDir: outputDir}
	for _, program := range programs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		name := resolveProgramName(program)
		if name == "" {
			logger.Warn("generator: program without identifiable name skipped",
				"path", program.Path)
			result.Skipped++
			continue
		}
		model := resolveModel(program, name, models)
		if model == nil {
			logger.Warn("generator: no structural model, using placeholder", "program", name)
			model = analyzer.Placeholder(name)
		}
		className := model.ProgramID
		if strings.TrimSpace(className) == "" {
			className = name
		}
		source := g.renderClass(className, model)
		outPath := filepath.Join(outputDir, className+".java")
		if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
			logger.Error("generator: write failed", "program", name, "error", err)
			result.Failed++
			continue
		}
		result.Artifacts[name] = Artifact{
			Path:               outPath,
			ClassName:          className,
			Package:            g.Package,
			SourcePath:         program.Path,
			SourceRelativePath: program.RelativePath,
		}
		result.Translated++
	}
	logger.Info("generator: translation complete",
		"translated", result.Translated, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// resolveProgramName falls back from the declared name to the relative and
// absolute path stems.
func resolveProgramName(program inventory.ProgramDescriptor) string {
	if name := strings.TrimSpace(program.Name); name != "" {
		return name
	}
	if rel := strings.TrimSpace(program.RelativePath); rel != "" {
		return stem(rel)
	}
	if abs := strings.TrimSpace(program.Path); abs != "" {
		return stem(abs)
	}
	return ""
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveModel looks the model up under every key the analysis stage might
// have used for this program.
func resolveModel(program inventory.ProgramDescriptor, name string, models map[string]*analyzer.StructuralModel) *analyzer.StructuralModel {
	if len(models) == 0 {
		return nil
	}
	keys := []string{
		name, strings.ToUpper(name), strings.ToLower(name),
		program.RelativePath, filepath.Base(program.RelativePath), stem(program.RelativePath),
		program.Path, filepath.Base(program.Path), stem(program.Path),
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if model, ok := models[key]; ok && model != nil {
			return model
		}
	}
	return nil
}

// renderClass emits the full Java source unit: fields, entry point, stub
// methods in procedure order, and accessor pairs in field order. Output is
// always brace- and paren-balanced.
func (g *Generator) renderClass(className string, model *analyzer.StructuralModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s;\n\n", g.Package)
	b.WriteString("import java.math.BigDecimal;\n")
	b.WriteString("import java.util.logging.Logger;\n\n")
	fmt.Fprintf(&b, "/**\n * Migrated from COBOL program: %s\n * Auto-generated by the legacy migration pipeline.\n */\n", className)
	fmt.Fprintf(&b, "public class %s {\n\n", className)
	fmt.Fprintf(&b, "    private static final Logger logger = Logger.getLogger(%s.class.getName());\n\n", className)

	b.WriteString("    // Data items from WORKING-STORAGE SECTION\n")
	for _, item := range model.DataItems {
		b.WriteString("    " + fieldDeclaration(item) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "    /**\n     * Main entry point\n     */\n")
	fmt.Fprintf(&b, "    public static void main(String[] args) {\n")
	fmt.Fprintf(&b, "        %s program = new %s();\n", className, className)
	b.WriteString("        program.execute();\n    }\n\n")

	fmt.Fprintf(&b, "    /**\n     * Execute main logic\n     */\n")
	b.WriteString("    public void execute() {\n")
	fmt.Fprintf(&b, "        logger.info(\"Starting %s execution\");\n", className)
	b.WriteString("        mainLogic();\n")
	fmt.Fprintf(&b, "        logger.info(\"Completed %s execution\");\n", className)
	b.WriteString("    }\n\n")

	procedureNames := make([]string, 0, len(model.Procedures))
	for _, proc := range model.Procedures {
		procedureNames = append(procedureNames, proc.Name)
	}
	fmt.Fprintf(&b, "    /**\n     * Main logic translated from the PROCEDURE DIVISION.\n     */\n")
	b.WriteString("    private void mainLogic() {\n")
	fmt.Fprintf(&b, "        // Original COBOL procedures: %s\n", strings.Join(procedureNames, ", "))
	b.WriteString("        logger.info(\"Main logic executed\");\n    }\n\n")

	for _, proc := range model.Procedures {
		methodName := MapIdentifier(proc.Name)
		fmt.Fprintf(&b, "    /**\n     * Procedure: %s\n     */\n", proc.Name)
		fmt.Fprintf(&b, "    private void %s() {\n", methodName)
		fmt.Fprintf(&b, "        // TODO: translate %s logic\n", proc.Name)
		fmt.Fprintf(&b, "        logger.info(\"Executing %s\");\n", methodName)
		b.WriteString("    }\n\n")
	}

	b.WriteString("    // Getters and Setters\n")
	for _, item := range model.DataItems {
		fieldName := MapIdentifier(item.Name)
		fieldType := javaType(item.InferredType)
		accessor := capitalize(fieldName)
		fmt.Fprintf(&b, "    public %s get%s() {\n        return %s;\n    }\n\n", fieldType, accessor, fieldName)
		fmt.Fprintf(&b, "    public void set%s(%s %s) {\n        this.%s = %s;\n    }\n\n", accessor, fieldType, fieldName, fieldName, fieldName)
	}

	b.WriteString("}\n")
	return b.String()
}

func fieldDeclaration(item analyzer.DataItem) string {
	fieldName := MapIdentifier(item.Name)
	fieldType := javaType(item.InferredType)
	if strings.TrimSpace(item.Value) != "" {
		switch item.InferredType {
		case analyzer.TypeString:
			return fmt.Sprintf("private %s %s = \"%s\";", fieldType, fieldName, cleanStringLiteral(item.Value))
		case analyzer.TypeShortInteger, analyzer.TypeInteger, analyzer.TypeLongInteger:
			return fmt.Sprintf("private %s %s = %s;", fieldType, fieldName, cleanIntegerLiteral(item.Value))
		case analyzer.TypeDecimal:
			return fmt.Sprintf("private %s %s = new BigDecimal(\"%s\");", fieldType, fieldName, cleanDecimalLiteral(item.Value))
		}
	}
	switch item.InferredType {
	case analyzer.TypeString:
		return fmt.Sprintf("private %s %s = \"\";", fieldType, fieldName)
	case analyzer.TypeDecimal:
		return fmt.Sprintf("private %s %s = BigDecimal.ZERO;", fieldType, fieldName)
	default:
		return fmt.Sprintf("private %s %s = 0;", fieldType, fieldName)
	}
}
