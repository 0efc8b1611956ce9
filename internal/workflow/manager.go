// Package workflow sequences the pipeline: generation, audit, bounded
// regeneration, then audio rendering, with one checkpoint file
// carrying progress across interrupted runs.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"aircheck/internal/audioout"
	"aircheck/internal/audit"
	"aircheck/internal/catalog"
	"aircheck/internal/checkpoint"
	"aircheck/internal/config"
	"aircheck/internal/content"
	"aircheck/internal/generation"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/prompt"
	"aircheck/internal/regen"
	"aircheck/internal/services"
	"aircheck/internal/stage"
)

// Backends carries the external services a run depends on. Tests
// swap in stubs; production wiring comes from NewBackends.
type Backends struct {
	Text  generation.TextBackend
	Judge audit.Evaluator
	Synth audioout.Synthesizer
	// Items overrides catalog expansion with a fixed batch.
	Items []content.WorkItem
}

// RunOptions narrows and shapes a single run.
type RunOptions struct {
	Types     []content.Type
	DJs       []string
	Limit     int
	Stage     string // "generate", "audit", "audio", or "" for all
	SkipAudio bool
	Overwrite bool
}

// Summary reports what a run accomplished.
type Summary struct {
	RunID      string
	Generated  stage.Result
	Audited    stage.Result
	Rendered   stage.Result
	Recovered  int
	Persistent []string
	Audit      audit.Summary
}

// Failures reports how many items ended the run without success.
func (s Summary) Failures() int {
	return s.Generated.Failed() + s.Audited.Failed() + s.Rendered.Failed() + len(s.Persistent)
}

// Manager owns one batch run end to end.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	backends Backends
	resolver *paths.Resolver
}

func NewManager(cfg *config.Config, logger *slog.Logger, backends Backends) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		backends: backends,
		resolver: paths.NewResolver(cfg.Paths.RootDir),
	}
}

// Resolver exposes the run's path layout, mainly for status commands.
func (m *Manager) Resolver() *paths.Resolver {
	return m.resolver
}

// Run executes the pipeline. Items are processed one at a time in a
// fixed order; a failing item never stops the batch, and the returned
// error is reserved for fatal conditions (lock, checkpoint, config).
func (m *Manager) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(m.resolver.StateDir(), 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "workflow", "prepare state dir", "", err)
	}
	lock := flock.New(m.resolver.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "workflow", "acquire lock", "", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrConfiguration, "workflow", "acquire lock",
			"another run is already in progress", nil)
	}
	defer func() { _ = lock.Unlock() }()

	summary.RunID = uuid.NewString()
	ctx = services.WithRequestID(ctx, summary.RunID)
	logger := m.logger.With(logging.String(logging.FieldCorrelationID, summary.RunID))
	logger.Info("run starting")

	cp, err := checkpoint.Open(m.resolver.CheckpointPath(), m.logger)
	if err != nil {
		return summary, err
	}
	cp.SetRunID(summary.RunID)

	items, err := m.buildItems(ctx, opts)
	if err != nil {
		return summary, err
	}
	logger.Info("batch assembled", logging.Int("items", len(items)))

	runGenerate := opts.Stage == "" || opts.Stage == "generate"
	runAudit := opts.Stage == "" || opts.Stage == "audit"
	runAudio := (opts.Stage == "" || opts.Stage == "audio") && !opts.SkipAudio

	djProfiles, voices := m.roster()
	policies := m.cfg.Policies()
	prompts := prompt.NewBuilder(m.cfg.Station.Name, policies)

	genStage := generation.NewStage(m.backends.Text, prompts, m.resolver, cp,
		djProfiles, policies, m.logger, generation.Options{Overwrite: opts.Overwrite})
	auditStage := audit.NewStage(m.backends.Judge, m.resolver, cp, m.logger,
		audit.Options{Overwrite: opts.Overwrite})

	if runGenerate {
		if summary.Generated, err = genStage.Run(ctx, items); err != nil {
			return summary, err
		}
	}

	if runAudit {
		if summary.Audited, err = auditStage.Run(ctx, items); err != nil {
			return summary, err
		}

		failed, err := m.collectFailed(cp, items)
		if err != nil {
			return summary, err
		}
		if len(failed) > 0 {
			loop := regen.NewLoop(genStage, auditStage, m.cfg.Audit.MaxRounds, m.logger)
			regenResult, err := loop.Run(ctx, failed)
			if err != nil {
				return summary, err
			}
			summary.Recovered = len(regenResult.Recovered)
			for _, item := range regenResult.Persistent {
				summary.Persistent = append(summary.Persistent, item.Item.Key())
			}
			summary.Audited.Failures = append(summary.Audited.Failures, regenResult.Failures...)
		}

		if summary.Audit, err = audit.BuildSummary(m.resolver, items); err != nil {
			return summary, err
		}
		if err := audit.WriteSummary(m.resolver, summary.Audit); err != nil {
			return summary, services.Wrap(services.ErrTransient, "workflow", "write summary", "", err)
		}
	}

	if runAudio {
		audioStage := audioout.NewStage(m.backends.Synth, m.resolver, cp, voices, m.logger,
			audioout.Options{
				Temperature: m.cfg.TTS.Temperature,
				Language:    m.cfg.TTS.Language,
				Overwrite:   opts.Overwrite,
			})
		if summary.Rendered, err = audioStage.Run(ctx, items); err != nil {
			return summary, err
		}
	}

	logger.Info("run complete",
		logging.Int("generated", summary.Generated.Processed),
		logging.Int("audited", summary.Audited.Processed),
		logging.Int("rendered", summary.Rendered.Processed),
		logging.Int("recovered", summary.Recovered),
		logging.Int("persistent", len(summary.Persistent)),
		logging.Int("failures", summary.Failures()))
	return summary, nil
}

func (m *Manager) buildItems(ctx context.Context, opts RunOptions) ([]content.WorkItem, error) {
	selection := catalog.Selection{Types: opts.Types, DJs: opts.DJs, Limit: opts.Limit}
	if m.backends.Items != nil {
		return filterItems(m.backends.Items, selection), nil
	}
	store, err := catalog.Open(m.cfg.Paths.CatalogDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	schedule := catalog.Schedule{
		TimeMinutes:       m.cfg.Schedule.TimeMinutes,
		WeatherHours:      m.cfg.Schedule.WeatherHours,
		WeatherConditions: m.cfg.Schedule.WeatherConditions,
	}
	return catalog.WorkItems(ctx, store, schedule, m.cfg.DJIDs(), selection)
}

// collectFailed gathers the items whose audit outcome is failing,
// along with the verdict that failed them, for the regeneration loop.
func (m *Manager) collectFailed(cp *checkpoint.Store, items []content.WorkItem) ([]regen.FailedItem, error) {
	var failed []regen.FailedItem
	for _, item := range items {
		state, ok := cp.ItemState(checkpoint.StageAudit, item.Key())
		if !ok || state.Outcome != audit.OutcomeFailed {
			continue
		}
		verdicts, err := audit.History(m.resolver, item)
		if err != nil {
			return nil, fmt.Errorf("collecting failed items: %w", err)
		}
		verdict := audit.Verdict{Passed: false}
		for _, stored := range verdicts {
			if stored.Version == state.Version {
				verdict = audit.Verdict{Passed: stored.Passed, Score: stored.Score, Issues: stored.Issues, Notes: stored.Notes}
				break
			}
		}
		failed = append(failed, regen.FailedItem{Item: item, FailedVersion: state.Version, Verdict: verdict})
	}
	return failed, nil
}

func (m *Manager) roster() (map[string]prompt.DJProfile, map[string]audioout.Voice) {
	profiles := make(map[string]prompt.DJProfile, len(m.cfg.Station.DJs))
	voices := make(map[string]audioout.Voice, len(m.cfg.Station.DJs))
	for _, dj := range m.cfg.Station.DJs {
		profiles[dj.ID] = prompt.DJProfile{Name: dj.Name, Style: dj.Style}
		voices[dj.ID] = audioout.Voice{RefPath: dj.VoiceRef}
	}
	return profiles, voices
}

func filterItems(items []content.WorkItem, sel catalog.Selection) []content.WorkItem {
	var out []content.WorkItem
	for _, item := range items {
		if len(sel.Types) > 0 && !slices.Contains(sel.Types, item.Type) {
			continue
		}
		if len(sel.DJs) > 0 && !slices.Contains(sel.DJs, item.DJ) {
			continue
		}
		out = append(out, item)
	}
	return out
}
