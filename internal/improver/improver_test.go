// File path: internal/improver/improver_test.go
package improver

import (
	"context"
	"testing"
	"time"
)

func TestNewFromEnvWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	provider := NewFromEnv("gpt-4.1-mini", time.Minute)
	if provider.Name() != "noop" {
		t.Fatalf("provider = %q, want noop", provider.Name())
	}
	source := "package a;\npublic class X { }\n"
	refined, err := provider.Refine(context.Background(), "X", source)
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if refined != source {
		t.Fatal("noop provider must return source unchanged")
	}
}

func TestNewFromEnvWithKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	provider := NewFromEnv("gpt-4.1-mini", time.Minute)
	if provider.Name() != "openai" {
		t.Fatalf("provider = %q, want openai", provider.Name())
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "public class X { }", "public class X { }"},
		{"java fence", "```java\npublic class X { }\n```", "public class X { }"},
		{"bare fence", "```\npublic class X { }\n```", "public class X { }"},
		{"surrounding whitespace", "  ```java\npublic class X { }\n```  ", "public class X { }"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Fatalf("%s: stripCodeFences = %q, want %q", tc.name, got, tc.want)
		}
	}
}
