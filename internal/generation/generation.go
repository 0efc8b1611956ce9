// Package generation runs the script writing stage: one text backend
// call per work item, sanitized and written to the output tree.
package generation

import (
	"context"
	"fmt"
	"log/slog"

	"aircheck/internal/checkpoint"
	"aircheck/internal/content"
	"aircheck/internal/fileutil"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/prompt"
	"aircheck/internal/script"
	"aircheck/internal/services"
	"aircheck/internal/stage"
)

// TextBackend is the completion surface the stage needs.
type TextBackend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker is implemented by backends that can verify readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var _ stage.Handler = (*Stage)(nil)

// Stage writes announcer scripts for every pending work item.
type Stage struct {
	backend    TextBackend
	prompts    *prompt.Builder
	resolver   *paths.Resolver
	checkpoint *checkpoint.Store
	djs        map[string]prompt.DJProfile
	policies   content.PolicySet
	logger     *slog.Logger
	overwrite  bool
}

type Options struct {
	// Overwrite regenerates scripts even for items the checkpoint
	// already marks complete.
	Overwrite bool
}

func NewStage(
	backend TextBackend,
	prompts *prompt.Builder,
	resolver *paths.Resolver,
	cp *checkpoint.Store,
	djs map[string]prompt.DJProfile,
	policies content.PolicySet,
	logger *slog.Logger,
	opts Options,
) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		backend:    backend,
		prompts:    prompts,
		resolver:   resolver,
		checkpoint: cp,
		djs:        djs,
		policies:   policies,
		logger:     logging.NewComponentLogger(logger, "generation"),
		overwrite:  opts.Overwrite,
	}
}

// Run walks the batch in order, skipping items the checkpoint already
// covers. A failed item is recorded and the batch continues; only
// checkpoint write failures stop the run.
func (s *Stage) Run(ctx context.Context, items []content.WorkItem) (stage.Result, error) {
	var result stage.Result
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !s.overwrite && s.checkpoint.IsDone(checkpoint.StageGenerate, item.Key()) {
			result.Skipped++
			continue
		}

		// Scripts are append-only: a rerun or overwrite writes the next
		// free version, it never rewrites an existing file.
		latest, err := s.resolver.LatestScriptVersion(item)
		if err != nil {
			s.logger.Warn("script scan failed",
				logging.String(logging.FieldItem, item.Key()), logging.Error(err))
			result.Failures = append(result.Failures, stage.ItemFailure{Item: item, Err: err})
			continue
		}

		itemCtx := services.WithItemKey(ctx, item.Key())
		if _, err := s.GenerateOne(itemCtx, item, latest+1, nil); err != nil {
			if services.IsFatal(err) {
				return result, err
			}
			s.logger.Warn("script generation failed",
				logging.String(logging.FieldItem, item.Key()), logging.Error(err))
			result.Failures = append(result.Failures, stage.ItemFailure{Item: item, Err: err})
			continue
		}
		result.Processed++
	}
	s.logger.Info("generation pass complete",
		logging.Int("processed", result.Processed),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed()))
	return result, nil
}

// GenerateOne produces a single script version for an item, sanitizes
// it, writes it to disk, and records completion. Audit feedback from a
// previous version, when present, is folded into the prompt. The
// sanitized text is returned for callers that keep processing it.
func (s *Stage) GenerateOne(ctx context.Context, item content.WorkItem, version int, feedback []string) (string, error) {
	dj, ok := s.djs[item.DJ]
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, "generation", "lookup dj",
			fmt.Sprintf("dj %q not in roster", item.DJ), nil)
	}

	raw, err := s.backend.Complete(ctx, s.prompts.System(dj), s.prompts.User(item, feedback))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "generation", "complete",
			"text backend request failed", err)
	}

	text := script.Sanitize(raw)
	if res := script.Validate(text, s.policies.Get(item.Type)); !res.OK {
		return "", services.Wrap(services.ErrValidation, "generation", "validate",
			fmt.Sprintf("script rejected: %v", res.Violations), nil)
	}

	path := s.resolver.ScriptPath(item, version)
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, "generation", "write script",
			fmt.Sprintf("writing %s", path), err)
	}
	if err := s.checkpoint.MarkItemDone(checkpoint.StageGenerate, item.Key(), checkpoint.ItemState{Version: version}); err != nil {
		return "", err
	}

	s.logger.Info("script written",
		logging.String(logging.FieldItem, item.Key()),
		logging.Int(logging.FieldVersion, version),
		logging.Int("words", script.WordCount(text)))
	return text, nil
}

// HealthCheck verifies the text backend responds before a batch starts.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	checker, ok := s.backend.(HealthChecker)
	if !ok {
		return stage.Healthy("generation")
	}
	if err := checker.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("generation", err.Error())
	}
	return stage.Healthy("generation")
}
