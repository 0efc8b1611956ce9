package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"aircheck/internal/checkpoint"
	"aircheck/internal/content"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/services"
	"aircheck/internal/stage"
)

// Checkpoint outcomes recorded for the audit stage. Persistent marks
// an item whose regeneration rounds are exhausted; it is not retried
// until an explicit reset clears the entry.
const (
	OutcomePassed     = "passed"
	OutcomeFailed     = "failed"
	OutcomePersistent = "persistent"
)

var _ stage.Handler = (*Stage)(nil)

// Stage judges the latest script of every item and files verdicts.
type Stage struct {
	evaluator  Evaluator
	resolver   *paths.Resolver
	checkpoint *checkpoint.Store
	logger     *slog.Logger
	overwrite  bool
}

type Options struct {
	// Overwrite re-judges items the checkpoint already marks audited.
	Overwrite bool
}

func NewStage(evaluator Evaluator, resolver *paths.Resolver, cp *checkpoint.Store, logger *slog.Logger, opts Options) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		evaluator:  evaluator,
		resolver:   resolver,
		checkpoint: cp,
		logger:     logging.NewComponentLogger(logger, "audit"),
		overwrite:  opts.Overwrite,
	}
}

// Run judges the latest script version of each item. Items without a
// script on disk are recorded as failures and skipped.
func (s *Stage) Run(ctx context.Context, items []content.WorkItem) (stage.Result, error) {
	var result stage.Result
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !s.overwrite && s.checkpoint.IsDone(checkpoint.StageAudit, item.Key()) {
			result.Skipped++
			continue
		}

		version, err := s.resolver.LatestScriptVersion(item)
		if err == nil && version < 0 {
			err = services.Wrap(services.ErrValidation, "audit", "locate script",
				"no script on disk for item", nil)
		}
		var verdict Verdict
		if err == nil {
			verdict, err = s.AuditVersion(services.WithItemKey(ctx, item.Key()), item, version)
		}
		if err != nil {
			if services.IsFatal(err) {
				return result, err
			}
			s.logger.Warn("audit failed",
				logging.String(logging.FieldItem, item.Key()), logging.Error(err))
			result.Failures = append(result.Failures, stage.ItemFailure{Item: item, Err: err})
			continue
		}

		outcome := OutcomeFailed
		if verdict.Passed {
			outcome = OutcomePassed
		}
		err = s.checkpoint.MarkItemDone(checkpoint.StageAudit, item.Key(), checkpoint.ItemState{
			Version: version,
			Outcome: outcome,
		})
		if err != nil {
			return result, err
		}
		result.Processed++
	}
	s.logger.Info("audit pass complete",
		logging.Int("processed", result.Processed),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed()))
	return result, nil
}

// AuditVersion judges one specific script version and files the
// verdict. The checkpoint is not touched; callers decide what the
// verdict means for the item's overall state.
func (s *Stage) AuditVersion(ctx context.Context, item content.WorkItem, version int) (Verdict, error) {
	data, err := os.ReadFile(s.resolver.ScriptPath(item, version))
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrValidation, "audit", "read script",
			fmt.Sprintf("script version %d unreadable", version), err)
	}
	verdict, err := s.evaluator.Evaluate(ctx, item, string(data))
	if err != nil {
		return Verdict{}, err
	}
	if err := WriteVerdict(s.resolver, item, version, verdict); err != nil {
		return Verdict{}, services.Wrap(services.ErrTransient, "audit", "write verdict",
			fmt.Sprintf("storing verdict for version %d", version), err)
	}
	s.logger.Info("script judged",
		logging.String(logging.FieldItem, item.Key()),
		logging.Int(logging.FieldVersion, version),
		logging.Bool("passed", verdict.Passed),
		logging.Float64("score", verdict.Score))
	return verdict, nil
}

// MarkOutcome updates the audit checkpoint entry for an item, used by
// the regeneration loop once its rounds settle the item's fate.
func (s *Stage) MarkOutcome(item content.WorkItem, version int, outcome string) error {
	return s.checkpoint.MarkItemDone(checkpoint.StageAudit, item.Key(), checkpoint.ItemState{
		Version: version,
		Outcome: outcome,
	})
}

// HealthCheck reports ready when the verdict tree is writable.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if err := os.MkdirAll(s.resolver.Root(), 0o755); err != nil {
		return stage.Unhealthy("audit", err.Error())
	}
	return stage.Healthy("audit")
}
