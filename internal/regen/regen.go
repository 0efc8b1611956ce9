// Package regen rewrites scripts that failed the audit, feeding each
// verdict's issues back into the next attempt.
package regen

import (
	"context"
	"log/slog"

	"aircheck/internal/audit"
	"aircheck/internal/content"
	"aircheck/internal/logging"
	"aircheck/internal/services"
	"aircheck/internal/stage"
)

// State tracks where a failed item sits in the regeneration cycle.
type State string

const (
	StateNeedsRegen       State = "needs_regen"
	StateRegenerating     State = "regenerating"
	StatePassedAfterRegen State = "passed_after_regen"
	StateStillFailing     State = "still_failing"
)

// Generator produces a replacement script version for an item.
type Generator interface {
	GenerateOne(ctx context.Context, item content.WorkItem, version int, feedback []string) (string, error)
}

// Auditor judges a specific script version and records the final
// outcome for an item.
type Auditor interface {
	AuditVersion(ctx context.Context, item content.WorkItem, version int) (audit.Verdict, error)
	MarkOutcome(item content.WorkItem, version int, outcome string) error
}

// ItemResult is the settled fate of one regenerated item.
type ItemResult struct {
	Item         content.WorkItem
	State        State
	FinalVersion int
	Rounds       int
	LastVerdict  audit.Verdict
}

// Result aggregates a regeneration pass.
type Result struct {
	Recovered  []ItemResult
	Persistent []ItemResult
	Failures   []stage.ItemFailure
}

// Loop drives bounded regeneration. An item that failed version N gets
// up to maxRounds rewrites (versions N+1, N+2, ...); the first passing
// version settles it, and an item whose every attempt fails is filed
// as a persistent failure rather than an error.
type Loop struct {
	generator Generator
	auditor   Auditor
	maxRounds int
	logger    *slog.Logger
}

func NewLoop(generator Generator, auditor Auditor, maxRounds int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loop{
		generator: generator,
		auditor:   auditor,
		maxRounds: maxRounds,
		logger:    logging.NewComponentLogger(logger, "regen"),
	}
}

// FailedItem pairs an item with the verdict that sent it here.
type FailedItem struct {
	Item          content.WorkItem
	FailedVersion int
	Verdict       audit.Verdict
}

// Run regenerates every failed item in order. Backend errors on one
// item are recorded and the rest of the batch continues.
func (l *Loop) Run(ctx context.Context, failed []FailedItem) (Result, error) {
	var result Result
	for _, entry := range failed {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		itemResult, err := l.runItem(services.WithItemKey(ctx, entry.Item.Key()), entry)
		if err != nil {
			if services.IsFatal(err) {
				return result, err
			}
			l.logger.Warn("regeneration failed",
				logging.String(logging.FieldItem, entry.Item.Key()), logging.Error(err))
			result.Failures = append(result.Failures, stage.ItemFailure{Item: entry.Item, Err: err})
			continue
		}
		if itemResult.State == StatePassedAfterRegen {
			result.Recovered = append(result.Recovered, itemResult)
		} else {
			result.Persistent = append(result.Persistent, itemResult)
		}
	}
	l.logger.Info("regeneration pass complete",
		logging.Int("recovered", len(result.Recovered)),
		logging.Int("persistent", len(result.Persistent)),
		logging.Int("failed", len(result.Failures)))
	return result, nil
}

func (l *Loop) runItem(ctx context.Context, entry FailedItem) (ItemResult, error) {
	result := ItemResult{
		Item:         entry.Item,
		State:        StateNeedsRegen,
		FinalVersion: entry.FailedVersion,
		LastVerdict:  entry.Verdict,
	}
	feedback := entry.Verdict.Feedback()

	for round := 1; round <= l.maxRounds; round++ {
		result.State = StateRegenerating
		result.Rounds = round
		version := entry.FailedVersion + round

		if _, err := l.generator.GenerateOne(ctx, entry.Item, version, feedback); err != nil {
			return result, err
		}
		verdict, err := l.auditor.AuditVersion(ctx, entry.Item, version)
		if err != nil {
			return result, err
		}
		result.FinalVersion = version
		result.LastVerdict = verdict

		if verdict.Passed {
			result.State = StatePassedAfterRegen
			if err := l.auditor.MarkOutcome(entry.Item, version, audit.OutcomePassed); err != nil {
				return result, err
			}
			l.logger.Info("item recovered",
				logging.String(logging.FieldItem, entry.Item.Key()),
				logging.Int(logging.FieldVersion, version),
				logging.Int("rounds", round))
			return result, nil
		}
		feedback = verdict.Feedback()
	}

	result.State = StateStillFailing
	if err := l.auditor.MarkOutcome(entry.Item, result.FinalVersion, audit.OutcomePersistent); err != nil {
		return result, err
	}
	l.logger.Warn("item still failing after regeneration",
		logging.String(logging.FieldItem, entry.Item.Key()),
		logging.Int(logging.FieldVersion, result.FinalVersion),
		logging.Int("rounds", result.Rounds))
	return result, nil
}
