// Package audioout renders passing scripts to WAV files through the
// speech synthesis service.
package audioout

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"aircheck/internal/audit"
	"aircheck/internal/checkpoint"
	"aircheck/internal/content"
	"aircheck/internal/fileutil"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/services"
	"aircheck/internal/services/tts"
	"aircheck/internal/stage"
)

// Synthesizer is the synthesis surface the stage needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, req tts.Request) ([]byte, error)
	HealthCheck(ctx context.Context) error
}

// Voice is a DJ's synthesis settings.
type Voice struct {
	RefPath string
}

var _ stage.Handler = (*Stage)(nil)

// Stage renders audio for every item whose canonical script version
// passed the audit. Items still failing after regeneration get no
// audio; a bad script spoken aloud is worse than a gap.
type Stage struct {
	synth       Synthesizer
	resolver    *paths.Resolver
	checkpoint  *checkpoint.Store
	voices      map[string]Voice
	temperature float64
	language    string
	logger      *slog.Logger
	overwrite   bool
}

type Options struct {
	Temperature float64
	Language    string
	// Overwrite re-renders audio even for checkpointed items.
	Overwrite bool
}

func NewStage(
	synth Synthesizer,
	resolver *paths.Resolver,
	cp *checkpoint.Store,
	voices map[string]Voice,
	logger *slog.Logger,
	opts Options,
) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		synth:       synth,
		resolver:    resolver,
		checkpoint:  cp,
		voices:      voices,
		temperature: opts.Temperature,
		language:    opts.Language,
		logger:      logging.NewComponentLogger(logger, "audio"),
		overwrite:   opts.Overwrite,
	}
}

// Run renders each item's canonical passing version. Items without a
// passing version are skipped silently; the audit summary already
// reports them.
func (s *Stage) Run(ctx context.Context, items []content.WorkItem) (stage.Result, error) {
	var result stage.Result
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !s.overwrite && s.checkpoint.IsDone(checkpoint.StageAudio, item.Key()) {
			result.Skipped++
			continue
		}

		version, passed, err := audit.Canonical(s.resolver, item)
		if err == nil && (version < 0 || !passed) {
			result.Skipped++
			continue
		}
		if err == nil {
			err = s.renderOne(services.WithItemKey(ctx, item.Key()), item, version)
		}
		if err != nil {
			if services.IsFatal(err) {
				return result, err
			}
			s.logger.Warn("audio rendering failed",
				logging.String(logging.FieldItem, item.Key()), logging.Error(err))
			result.Failures = append(result.Failures, stage.ItemFailure{Item: item, Err: err})
			continue
		}
		result.Processed++
	}
	s.logger.Info("audio pass complete",
		logging.Int("processed", result.Processed),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed()))
	return result, nil
}

func (s *Stage) renderOne(ctx context.Context, item content.WorkItem, version int) error {
	audioPath := s.resolver.AudioPath(item, version)
	if !s.overwrite {
		if _, err := os.Stat(audioPath); err == nil {
			return s.markDone(item, version)
		}
	}

	voice, ok := s.voices[item.DJ]
	if !ok {
		return services.Wrap(services.ErrConfiguration, "audio", "lookup voice",
			fmt.Sprintf("dj %q has no voice reference", item.DJ), nil)
	}
	text, err := os.ReadFile(s.resolver.ScriptPath(item, version))
	if err != nil {
		return services.Wrap(services.ErrValidation, "audio", "read script",
			fmt.Sprintf("script version %d unreadable", version), err)
	}

	wav, err := s.synth.Synthesize(ctx, tts.Request{
		Text:           string(text),
		SpeakerRefPath: voice.RefPath,
		Language:       s.language,
		Temperature:    s.temperature,
	})
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(audioPath, wav, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "audio", "write audio",
			fmt.Sprintf("writing %s", audioPath), err)
	}
	s.logger.Info("audio rendered",
		logging.String(logging.FieldItem, item.Key()),
		logging.Int(logging.FieldVersion, version),
		logging.Int("bytes", len(wav)))
	return s.markDone(item, version)
}

func (s *Stage) markDone(item content.WorkItem, version int) error {
	return s.checkpoint.MarkItemDone(checkpoint.StageAudio, item.Key(), checkpoint.ItemState{Version: version})
}

// HealthCheck pings the synthesis service.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.synth.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("audio", err.Error())
	}
	return stage.Healthy("audio")
}
