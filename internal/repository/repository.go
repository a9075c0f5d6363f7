// File path: internal/repository/repository.go
package repository

import (
	"context"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/legacyforge/migrator/internal/common"
)

// Fetcher materializes a job's source tree on local disk. Remote URLs are
// cloned with go-git; a path that already exists on disk is used in place
// without copying.
type Fetcher struct {
	// BaseDir is the parent directory for per-job clones.
	BaseDir string
}

func NewFetcher(baseDir string) *Fetcher {
	return &Fetcher{BaseDir: baseDir}
}

// Checkout is the result of a fetch: where the tree lives and which commit
// it is at. Commit is empty for local-directory sources.
type Checkout struct {
	Path   string `json:"path"`
	Commit string `json:"commit,omitempty"`
	Local  bool   `json:"local"`
}

// Fetch makes repoURL available under a job-keyed directory. When branch is
// set the clone targets that branch and falls back to the remote default if
// the branch does not exist. GITHUB_TOKEN or GITLAB_TOKEN, when set, is used
// for HTTPS auth.
func (f *Fetcher) Fetch(ctx context.Context, jobID, repoURL, branch string) (Checkout, error) {
	logger := common.Logger()
	if info, err := os.Stat(repoURL); err == nil && info.IsDir() {
		logger.Info("repository: using local source directory", "path", repoURL)
		return Checkout{Path: repoURL, Local: true}, nil
	}
	dest := fmt.Sprintf("%s/%s", strings.TrimRight(f.BaseDir, "/"), jobID)
	if err := os.RemoveAll(dest); err != nil {
		return Checkout{}, fmt.Errorf("clean clone directory: %w", err)
	}
	options := &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
		Auth:  tokenAuth(repoURL),
	}
	if branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(branch)
		options.SingleBranch = true
	}
	repo, err := git.PlainCloneContext(ctx, dest, false, options)
	if err != nil && branch != "" {
		// The requested branch may not exist; retry on the remote default.
		logger.Warn("repository: branch clone failed, retrying default branch",
			"repo", repoURL, "branch", branch, "error", err)
		if cleanErr := os.RemoveAll(dest); cleanErr != nil {
			return Checkout{}, fmt.Errorf("clean clone directory: %w", cleanErr)
		}
		options.ReferenceName = ""
		options.SingleBranch = false
		repo, err = git.PlainCloneContext(ctx, dest, false, options)
	}
	if err != nil {
		return Checkout{}, fmt.Errorf("clone %s: %w", repoURL, err)
	}
	head, err := repo.Head()
	if err != nil {
		return Checkout{}, fmt.Errorf("resolve HEAD for %s: %w", repoURL, err)
	}
	commit := head.Hash().String()
	logger.Info("repository: clone complete", "repo", repoURL, "commit", commit)
	return Checkout{Path: dest, Commit: commit}, nil
}

// tokenAuth builds HTTPS credentials from the environment. The username is a
// placeholder; hosts authenticate on the token alone.
func tokenAuth(repoURL string) *http.BasicAuth {
	if !strings.HasPrefix(repoURL, "http") {
		return nil
	}
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITLAB_TOKEN")
	}
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: token}
}
