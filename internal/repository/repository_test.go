// File path: internal/repository/repository_test.go
package repository

import (
	"context"
	"testing"
)

func TestFetchLocalDirectoryPassthrough(t *testing.T) {
	source := t.TempDir()
	fetcher := NewFetcher(t.TempDir())
	checkout, err := fetcher.Fetch(context.Background(), "job-1", source, "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !checkout.Local {
		t.Fatal("local source not flagged")
	}
	if checkout.Path != source {
		t.Fatalf("path = %q, want %q", checkout.Path, source)
	}
	if checkout.Commit != "" {
		t.Fatalf("commit = %q, want empty for local source", checkout.Commit)
	}
}

func TestFetchMissingSourceFails(t *testing.T) {
	fetcher := NewFetcher(t.TempDir())
	if _, err := fetcher.Fetch(context.Background(), "job-1", "/does/not/exist", ""); err == nil {
		t.Fatal("expected clone error for missing source")
	}
}

func TestTokenAuth(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITLAB_TOKEN", "")
	if auth := tokenAuth("https://example.com/repo.git"); auth != nil {
		t.Fatal("no token set, auth should be nil")
	}

	t.Setenv("GITHUB_TOKEN", "gh-token")
	auth := tokenAuth("https://example.com/repo.git")
	if auth == nil || auth.Password != "gh-token" {
		t.Fatalf("auth = %+v", auth)
	}
	if auth := tokenAuth("git@example.com:repo.git"); auth != nil {
		t.Fatal("non-HTTP transport should not receive token auth")
	}
}
