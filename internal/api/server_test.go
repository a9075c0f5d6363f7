// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/config"
	"github.com/legacyforge/migrator/internal/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = root
	cfg.ReposDir = filepath.Join(root, "repos")
	cfg.ArtifactsDir = filepath.Join(root, "artifacts")
	cfg.CatalogPath = filepath.Join(root, "catalog.db")
	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	server := httptest.NewServer(NewServer(pipeline.NewManager(cfg, store)).Router())
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	repo := t.TempDir()
	source := "       PROGRAM-ID. CALC.\n       PROCEDURE DIVISION.\n       MAIN-PARA.\n           STOP RUN.\n"
	if err := os.WriteFile(filepath.Join(repo, "calc.cbl"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	payload, _ := json.Marshal(map[string]string{"repo_url": repo})
	resp, err := http.Post(server.URL+"/api/jobs", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	var submitted pipeline.JobState
	decodeBody(t, resp, &submitted)
	if submitted.ID == "" {
		t.Fatal("submit returned no job id")
	}

	var final pipeline.JobState
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(server.URL + "/api/jobs/" + submitted.ID)
		if err != nil {
			t.Fatalf("get request: %v", err)
		}
		decodeBody(t, resp, &final)
		if final.Status.IsTerminal() {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if final.Status != pipeline.StatusCompleted {
		t.Fatalf("status = %q (error %q)", final.Status, final.ErrorMessage)
	}

	resp, err = http.Get(server.URL + "/api/jobs/" + submitted.ID + "/artifacts")
	if err != nil {
		t.Fatalf("artifacts request: %v", err)
	}
	var artifacts struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &artifacts)
	if artifacts.Count != 1 {
		t.Fatalf("artifact count = %d", artifacts.Count)
	}

	resp, err = http.Get(server.URL + "/api/jobs/" + submitted.ID + "/validation")
	if err != nil {
		t.Fatalf("validation request: %v", err)
	}
	var validation struct {
		Passed  int  `json:"passed"`
		Success bool `json:"success"`
	}
	decodeBody(t, resp, &validation)
	if !validation.Success || validation.Passed != 1 {
		t.Fatalf("validation = %+v", validation)
	}

	resp, err = http.Get(server.URL + "/api/jobs")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &list)
	if list.Count != 1 {
		t.Fatalf("list count = %d", list.Count)
	}
}

func TestSubmitValidation(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Post(server.URL+"/api/jobs", "application/json", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/api/jobs", "application/json", bytes.NewReader([]byte(`not json`)))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownJobReturns404(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/jobs/nope")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
