package main

import (
	"testing"

	"aircheck/internal/content"
	"aircheck/internal/testsupport"
)

func TestBuildRunOptions(t *testing.T) {
	opts, err := buildRunOptions([]string{"intro", "Weather"}, []string{"julie"}, 5, "audit", true, false)
	if err != nil {
		t.Fatalf("buildRunOptions: %v", err)
	}
	if len(opts.Types) != 2 || opts.Types[0] != content.TypeIntro || opts.Types[1] != content.TypeWeather {
		t.Errorf("types = %v", opts.Types)
	}
	if opts.Stage != "audit" || !opts.SkipAudio || opts.Limit != 5 {
		t.Errorf("opts = %+v", opts)
	}

	if _, err := buildRunOptions([]string{"jingle"}, nil, 0, "", false, false); err == nil {
		t.Error("expected unknown content type to be rejected")
	}
	if _, err := buildRunOptions(nil, nil, 0, "render", false, false); err == nil {
		t.Error("expected unknown stage to be rejected")
	}
}

func TestStatusCommandFreshWorkspace(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Checkpoint")
	requireContains(t, out, "no summary yet")
}

func TestResetCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"reset", "audit"}, env.configPath)
	if err != nil {
		t.Fatalf("reset audit: %v", err)
	}
	requireContains(t, out, "Cleared checkpoint progress for audit")

	if _, _, err := runCLI(t, []string{"reset", "everything"}, env.configPath); err == nil {
		t.Fatal("expected invalid reset target to be rejected")
	}
}

func TestCatalogCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.SeedCatalog(t, env.cfg.Paths.CatalogDB, testsupport.SwingEraSongs())

	out, _, err := runCLI(t, []string{"catalog", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	requireContains(t, out, "Cass Daley")
	requireContains(t, out, "2 of 3 song(s)")
}
