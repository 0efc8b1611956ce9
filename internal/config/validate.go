package config

import (
	"errors"
	"fmt"
	"strings"

	"aircheck/internal/content"
)

// Validate checks the configuration for values the pipeline cannot run with.
// Every problem found is reported, not just the first.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.RootDir) == "" {
		problems = append(problems, "paths.root_dir is required")
	}
	if strings.TrimSpace(c.Paths.CatalogDB) == "" {
		problems = append(problems, "paths.catalog_db is required")
	}

	switch c.Audit.Backend {
	case "llm", "rules":
	default:
		problems = append(problems, fmt.Sprintf("audit.backend must be \"llm\" or \"rules\", got %q", c.Audit.Backend))
	}
	if c.Audit.MaxRounds < 0 || c.Audit.MaxRounds > 5 {
		problems = append(problems, fmt.Sprintf("audit.max_rounds must be between 0 and 5, got %d", c.Audit.MaxRounds))
	}
	if c.Audit.PassThreshold < 0 || c.Audit.PassThreshold > 10 {
		problems = append(problems, fmt.Sprintf("audit.pass_threshold must be between 0 and 10, got %v", c.Audit.PassThreshold))
	}

	if len(c.Station.DJs) == 0 {
		problems = append(problems, "station.djs must list at least one dj")
	}
	seen := make(map[string]struct{}, len(c.Station.DJs))
	for _, dj := range c.Station.DJs {
		if dj.ID == "" {
			problems = append(problems, "station.djs entries require an id")
			continue
		}
		if _, dup := seen[dj.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate dj id %q", dj.ID))
		}
		seen[dj.ID] = struct{}{}
		if strings.TrimSpace(dj.VoiceRef) == "" {
			problems = append(problems, fmt.Sprintf("dj %q missing voice_ref", dj.ID))
		}
	}

	if len(c.Schedule.TimeMinutes) == 0 {
		problems = append(problems, "schedule.time_minutes must not be empty")
	}
	for _, minute := range c.Schedule.TimeMinutes {
		if minute < 0 || minute > 59 {
			problems = append(problems, fmt.Sprintf("schedule.time_minutes entry %d out of range", minute))
		}
	}
	for _, hour := range c.Schedule.WeatherHours {
		if hour < 0 || hour > 23 {
			problems = append(problems, fmt.Sprintf("schedule.weather_hours entry %d out of range", hour))
		}
	}
	if len(c.Schedule.WeatherHours) > 0 && len(c.Schedule.WeatherConditions) == 0 {
		problems = append(problems, "schedule.weather_conditions must not be empty when weather hours are scheduled")
	}

	for name := range c.Criteria {
		if _, ok := content.ParseType(name); !ok {
			problems = append(problems, fmt.Sprintf("criteria section references unknown content type %q", name))
		}
	}
	for name, limits := range c.Limits {
		if _, ok := content.ParseType(name); !ok {
			problems = append(problems, fmt.Sprintf("limits section references unknown content type %q", name))
			continue
		}
		if limits.MinWords > 0 && limits.MaxWords > 0 && limits.MinWords > limits.MaxWords {
			problems = append(problems, fmt.Sprintf("limits.%s min_words exceeds max_words", name))
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Preflight.MinFreeGiB < 0 {
		problems = append(problems, "preflight.min_free_gib must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
