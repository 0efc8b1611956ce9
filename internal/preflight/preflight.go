// Package preflight runs the readiness checks a batch depends on
// before any work starts: directories, disk space, the catalog, and
// the backends.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"aircheck/internal/config"
	"aircheck/internal/services/llm"
	"aircheck/internal/services/tts"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// AllPassed reports whether every check in the set passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// RunAll executes the checks applicable to the given configuration.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Output root", cfg.Paths.RootDir),
		CheckFreeSpace("Free disk space", cfg.Paths.RootDir, float64(cfg.Preflight.MinFreeGiB)),
		CheckCatalog("Song catalog", cfg.Paths.CatalogDB),
		CheckLLM(ctx, "Text backend", cfg.GetLLM()),
		CheckTTS(ctx, "Speech service", cfg.TTS.BaseURL, cfg.TTS.TimeoutSeconds),
	}
	if cfg.Audit.Backend == "llm" && auditUsesDistinctLLM(cfg) {
		results = append(results, CheckLLM(ctx, "Audit backend", cfg.AuditLLM()))
	}
	return results
}

// CheckDirectoryAccess verifies the directory exists (creating it when
// missing) and is readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem under path has at least
// minGiB available. A minimum of zero disables the check.
func CheckFreeSpace(name, path string, minGiB float64) Result {
	if minGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}
	freeGiB := float64(stat.Bavail*uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	detail := fmt.Sprintf("%.1f GiB free, %.1f GiB required", freeGiB, minGiB)
	if freeGiB < minGiB {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckCatalog verifies the catalog database file exists.
func CheckCatalog(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is a directory", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckLLM verifies the completion API is reachable and the key works.
// Single attempt, no retries; a slow check should fail fast.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeBackendError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTTS verifies the speech service health endpoint responds.
func CheckTTS(ctx context.Context, name, baseURL string, timeoutSeconds int) Result {
	if baseURL == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := tts.NewClient(baseURL, time.Duration(timeoutSeconds)*time.Second)
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeBackendError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// auditUsesDistinctLLM reports whether the audit backend resolves to a
// different endpoint than the generation backend. When identical, the
// generation check already covers it.
func auditUsesDistinctLLM(cfg *config.Config) bool {
	gen := cfg.GetLLM()
	aud := cfg.AuditLLM()
	return gen.APIKey != aud.APIKey || gen.BaseURL != aud.BaseURL
}

func summarizeBackendError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (service unreachable)"
	}
	return err.Error()
}
