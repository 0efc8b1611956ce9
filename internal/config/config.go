package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"aircheck/internal/content"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RootDir   string `toml:"root_dir"`
	CatalogDB string `toml:"catalog_db"`
	LogDir    string `toml:"log_dir"`
}

// LLM contains shared text-generation backend connection settings.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
}

// Audit contains quality-evaluation settings. Connection fields fall back to
// [llm] when not explicitly configured.
type Audit struct {
	Backend        string  `toml:"backend"` // "llm" or "rules"
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRounds      int     `toml:"max_rounds"`
	PassThreshold  float64 `toml:"pass_threshold"`
}

// TTS contains text-to-speech service settings.
type TTS struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
	Language       string  `toml:"language"`
}

// DJ describes one station personality.
type DJ struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	VoiceRef string `toml:"voice_ref"`
	Style    string `toml:"style"`
}

// Station describes the simulated station and its DJ roster.
type Station struct {
	Name string `toml:"name"`
	DJs  []DJ   `toml:"djs"`
}

// Schedule enumerates the time and weather slots the pipeline produces.
type Schedule struct {
	TimeMinutes       []int    `toml:"time_minutes"`
	WeatherHours      []int    `toml:"weather_hours"`
	WeatherConditions []string `toml:"weather_conditions"`
}

// Limits overrides word bounds for one content type.
type Limits struct {
	MinWords int `toml:"min_words"`
	MaxWords int `toml:"max_words"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Preflight contains startup check thresholds.
type Preflight struct {
	MinFreeGiB int `toml:"min_free_gib"`
}

// Config encapsulates all configuration values for aircheck.
//
// Sections by subsystem:
//   - Paths: output root, catalog database, log directory
//   - LLM: text-generation backend connection
//   - Audit: quality-evaluation backend and regeneration bounds
//   - TTS: speech-synthesis service connection
//   - Station: station identity and DJ roster
//   - Schedule: time/weather slot enumeration
//   - Criteria/Limits: per-content-type audit policy overrides
//   - Logging: log format and level
//   - Preflight: startup check thresholds
type Config struct {
	Paths     Paths               `toml:"paths"`
	LLM       LLM                 `toml:"llm"`
	Audit     Audit               `toml:"audit"`
	TTS       TTS                 `toml:"tts"`
	Station   Station             `toml:"station"`
	Schedule  Schedule            `toml:"schedule"`
	Criteria  map[string][]string `toml:"criteria"`
	Limits    map[string]Limits   `toml:"limits"`
	Logging   Logging             `toml:"logging"`
	Preflight Preflight           `toml:"preflight"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aircheck/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists the
// defaults are returned, with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aircheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RootDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
		return err
	}
	if c.Paths.CatalogDB, err = expandPath(c.Paths.CatalogDB); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	for i := range c.Station.DJs {
		c.Station.DJs[i].ID = strings.ToLower(strings.TrimSpace(c.Station.DJs[i].ID))
	}
	c.Audit.Backend = strings.ToLower(strings.TrimSpace(c.Audit.Backend))
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains resolved text-backend connection settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Temperature    float64
}

// GetLLM returns the shared text-generation connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		Temperature:    c.LLM.Temperature,
	}
}

// AuditLLM returns the quality-evaluation connection settings, falling back
// to [llm] for anything not explicitly configured.
func (c *Config) AuditLLM() LLMConfig {
	cfg := LLMConfig{
		APIKey:         strings.TrimSpace(c.Audit.APIKey),
		BaseURL:        strings.TrimSpace(c.Audit.BaseURL),
		Model:          strings.TrimSpace(c.Audit.Model),
		TimeoutSeconds: c.Audit.TimeoutSeconds,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(c.LLM.APIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	}
	if cfg.Model == "" {
		cfg.Model = strings.TrimSpace(c.LLM.Model)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = c.LLM.TimeoutSeconds
	}
	return cfg
}

// DJByID returns the configured DJ with the given identifier.
func (c *Config) DJByID(id string) (DJ, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, dj := range c.Station.DJs {
		if dj.ID == id {
			return dj, true
		}
	}
	return DJ{}, false
}

// DJIDs returns the configured DJ identifiers in roster order.
func (c *Config) DJIDs() []string {
	ids := make([]string, 0, len(c.Station.DJs))
	for _, dj := range c.Station.DJs {
		ids = append(ids, dj.ID)
	}
	return ids
}

// Policies returns the per-type policy table: built-in defaults overlaid with
// the [criteria] and [limits] sections. Criteria substitutions stay a data
// change, never a code change.
func (c *Config) Policies() content.PolicySet {
	policies := content.DefaultPolicies().Clone()
	for name, criteria := range c.Criteria {
		t, ok := content.ParseType(name)
		if !ok || len(criteria) == 0 {
			continue
		}
		policy := policies.Get(t)
		policy.Criteria = append([]string(nil), criteria...)
		policies[t] = policy
	}
	for name, limits := range c.Limits {
		t, ok := content.ParseType(name)
		if !ok {
			continue
		}
		policy := policies.Get(t)
		if limits.MinWords > 0 {
			policy.MinWords = limits.MinWords
		}
		if limits.MaxWords > 0 {
			policy.MaxWords = limits.MaxWords
		}
		policies[t] = policy
	}
	return policies
}
