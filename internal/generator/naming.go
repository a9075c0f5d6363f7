// File path: internal/generator/naming.go
package generator

import (
	"strings"

	"github.com/legacyforge/migrator/internal/analyzer"
)

// workingStoragePrefix is the conventional WORKING-STORAGE name prefix that
// is dropped during identifier mapping.
const workingStoragePrefix = "WS-"

// MapIdentifier converts a COBOL identifier to Java camelCase:
// WS-CUSTOMER-NAME becomes customerName. The mapping is idempotent.
func MapIdentifier(cobolName string) string {
	name := strings.TrimPrefix(cobolName, workingStoragePrefix)
	parts := strings.Split(strings.ToLower(name), "-")
	if len(parts) == 0 {
		return strings.ToLower(name)
	}
	var builder strings.Builder
	builder.WriteString(parts[0])
	for _, part := range parts[1:] {
		builder.WriteString(capitalize(part))
	}
	return builder.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// javaType maps an inferred type family to the emitted Java type.
func javaType(t analyzer.InferredType) string {
	switch t {
	case analyzer.TypeShortInteger:
		return "short"
	case analyzer.TypeInteger:
		return "int"
	case analyzer.TypeLongInteger:
		return "long"
	case analyzer.TypeDecimal:
		return "BigDecimal"
	default:
		return "String"
	}
}

// cleanStringLiteral strips surrounding quote characters from a COBOL VALUE
// literal.
func cleanStringLiteral(value string) string {
	return strings.Trim(strings.TrimSpace(value), "'\"")
}

// cleanIntegerLiteral keeps only digit characters; a literal with none (such
// as the figurative constant ZERO) collapses to the default 0.
func cleanIntegerLiteral(value string) string {
	var builder strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	if builder.Len() == 0 {
		return "0"
	}
	return builder.String()
}

// cleanDecimalLiteral keeps digits and the decimal point.
func cleanDecimalLiteral(value string) string {
	var builder strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			builder.WriteRune(r)
		}
	}
	if builder.Len() == 0 {
		return "0"
	}
	return builder.String()
}
