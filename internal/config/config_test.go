package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aircheck/internal/config"
	"aircheck/internal/content"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if len(cfg.Station.DJs) != 2 {
		t.Fatalf("expected two default djs, got %d", len(cfg.Station.DJs))
	}
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
root_dir = "` + filepath.Join(dir, "out") + `"
catalog_db = "` + filepath.Join(dir, "catalog.db") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[audit]
backend = "llm"
max_rounds = 1

[llm]
api_key = "test-key"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Audit.Backend != "llm" || cfg.Audit.MaxRounds != 1 {
		t.Fatalf("file values not applied: %+v", cfg.Audit)
	}
	// Defaults survive for untouched sections.
	if cfg.TTS.BaseURL == "" || len(cfg.Schedule.TimeMinutes) != 2 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	// Audit connection falls back to [llm].
	if got := cfg.AuditLLM(); got.APIKey != "test-key" {
		t.Fatalf("AuditLLM fallback = %+v", got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
	if cfg.Station.Name == "" {
		t.Fatal("expected defaults")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad backend", func(c *config.Config) { c.Audit.Backend = "oracle" }, "audit.backend"},
		{"rounds range", func(c *config.Config) { c.Audit.MaxRounds = 9 }, "max_rounds"},
		{"no djs", func(c *config.Config) { c.Station.DJs = nil }, "station.djs"},
		{"dup dj", func(c *config.Config) { c.Station.DJs[1].ID = c.Station.DJs[0].ID }, "duplicate dj"},
		{"minute range", func(c *config.Config) { c.Schedule.TimeMinutes = []int{90} }, "time_minutes"},
		{"unknown criteria type", func(c *config.Config) { c.Criteria = map[string][]string{"jingle": {"tone"}} }, "unknown content type"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q missing %q", tc.name, err, tc.want)
		}
	}
}

func TestPoliciesMergeOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Criteria = map[string][]string{"intro": {"tone", "energy"}}
	cfg.Limits = map[string]config.Limits{"intro": {MaxWords: 25}}

	policies := cfg.Policies()
	intro := policies.Get(content.TypeIntro)
	if len(intro.Criteria) != 2 || intro.Criteria[1] != "energy" {
		t.Fatalf("criteria override not applied: %+v", intro)
	}
	if intro.MaxWords != 25 {
		t.Fatalf("limits override not applied: %+v", intro)
	}
	if intro.MinWords == 0 {
		t.Fatal("default min_words must survive")
	}
	// Untouched types keep defaults.
	outro := policies.Get(content.TypeOutro)
	if outro.Criteria[0] != "past_tense" {
		t.Fatalf("outro defaults lost: %+v", outro)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample must exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample must validate: %v", err)
	}
}
