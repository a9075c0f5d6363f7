// File path: internal/generator/naming_test.go
package generator

import (
	"testing"

	"github.com/legacyforge/migrator/internal/analyzer"
)

func TestMapIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"WS-CUSTOMER-NAME", "customerName"},
		{"WS-RESULT", "result"},
		{"WS-TOTAL-AMOUNT-DUE", "totalAmountDue"},
		{"COUNTER", "counter"},
		{"MAIN-PARA", "mainPara"},
	}
	for _, tc := range cases {
		if got := MapIdentifier(tc.in); got != tc.want {
			t.Fatalf("MapIdentifier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Idempotency holds for prefix-free inputs with no separator: the second
// application only lowercases, which the first already did.
func TestMapIdentifierIdempotentComposed(t *testing.T) {
	names := []string{"customerName", "result", "totalAmountDue", "already"}
	for _, name := range names {
		once := MapIdentifier(name)
		if twice := MapIdentifier(once); twice != once {
			t.Fatalf("MapIdentifier not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}

func TestJavaType(t *testing.T) {
	cases := map[analyzer.InferredType]string{
		analyzer.TypeShortInteger: "short",
		analyzer.TypeInteger:      "int",
		analyzer.TypeLongInteger:  "long",
		analyzer.TypeDecimal:      "BigDecimal",
		analyzer.TypeString:       "String",
	}
	for in, want := range cases {
		if got := javaType(in); got != want {
			t.Fatalf("javaType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLiteralCleanup(t *testing.T) {
	if got := cleanStringLiteral("'PAYROLL'"); got != "PAYROLL" {
		t.Fatalf("cleanStringLiteral = %q", got)
	}
	if got := cleanIntegerLiteral("ZERO"); got != "0" {
		t.Fatalf("cleanIntegerLiteral(ZERO) = %q", got)
	}
	if got := cleanIntegerLiteral("42"); got != "42" {
		t.Fatalf("cleanIntegerLiteral(42) = %q", got)
	}
	if got := cleanDecimalLiteral("12.50"); got != "12.50" {
		t.Fatalf("cleanDecimalLiteral = %q", got)
	}
	if got := cleanDecimalLiteral("ZEROES"); got != "0" {
		t.Fatalf("cleanDecimalLiteral(ZEROES) = %q", got)
	}
}
