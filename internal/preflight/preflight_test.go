package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"aircheck/internal/config"
	"aircheck/internal/preflight"
)

func TestCheckDirectoryAccessCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	result := preflight.CheckDirectoryAccess("Output root", path)
	if !result.Passed {
		t.Fatalf("result = %+v", result)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := preflight.CheckFreeSpace("disk", dir, 0); !r.Passed {
		t.Errorf("disabled check must pass: %+v", r)
	}
	// An absurd requirement has to fail on any test machine.
	if r := preflight.CheckFreeSpace("disk", dir, 1<<20); r.Passed {
		t.Errorf("impossible requirement passed: %+v", r)
	}
	if r := preflight.CheckFreeSpace("disk", filepath.Join(dir, "missing"), 1); r.Passed {
		t.Errorf("missing path passed: %+v", r)
	}
}

func TestCheckCatalog(t *testing.T) {
	dir := t.TempDir()
	missing := preflight.CheckCatalog("catalog", filepath.Join(dir, "catalog.db"))
	if missing.Passed {
		t.Errorf("missing catalog passed: %+v", missing)
	}

	path := filepath.Join(dir, "catalog.db")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := preflight.CheckCatalog("catalog", path); !r.Passed {
		t.Errorf("existing catalog failed: %+v", r)
	}
	if r := preflight.CheckCatalog("catalog", dir); r.Passed {
		t.Errorf("directory accepted as catalog: %+v", r)
	}
}

func TestCheckTTS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if r := preflight.CheckTTS(context.Background(), "tts", server.URL, 5); !r.Passed {
		t.Errorf("healthy service failed: %+v", r)
	}
	if r := preflight.CheckTTS(context.Background(), "tts", "", 5); r.Passed {
		t.Errorf("missing url passed: %+v", r)
	}
}

func TestCheckLLMRequiresKey(t *testing.T) {
	r := preflight.CheckLLM(context.Background(), "llm", config.LLMConfig{Model: "gpt-4o-mini"})
	if r.Passed || r.Detail != "API key missing" {
		t.Errorf("result = %+v", r)
	}
}

func TestAllPassed(t *testing.T) {
	passing := []preflight.Result{{Passed: true}, {Passed: true}}
	if !preflight.AllPassed(passing) {
		t.Error("all-passing set reported as failing")
	}
	if preflight.AllPassed([]preflight.Result{{Passed: true}, {}}) {
		t.Error("failing set reported as passing")
	}
}
