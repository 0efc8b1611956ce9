// Package testsupport builds fixtures shared by the package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"aircheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. The audit backend defaults to rules so no network is needed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RootDir = filepath.Join(base, "output")
	cfg.Paths.CatalogDB = filepath.Join(base, "catalog.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "test"
	cfg.Audit.Backend = "rules"
	cfg.Preflight.MinFreeGiB = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAuditBackend overrides the audit backend on the test config.
func WithAuditBackend(backend string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audit.Backend = backend
	}
}

// WithMaxRounds overrides the regeneration bound on the test config.
func WithMaxRounds(rounds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audit.MaxRounds = rounds
	}
}
