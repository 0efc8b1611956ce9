package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"aircheck/internal/audit"
	"aircheck/internal/checkpoint"
	"aircheck/internal/logging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show checkpoint progress and the latest audit summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			store, err := checkpoint.Open(resolver.CheckpointPath(), logging.NewNop())
			if err != nil {
				return err
			}

			for _, line := range renderSectionHeader("Checkpoint", colorize) {
				fmt.Fprintln(out, line)
			}
			if runID := store.RunID(); runID != "" {
				fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, runID, colorize))
			}
			rows := [][]string{
				{"generate", strconv.Itoa(store.DoneCount(checkpoint.StageGenerate))},
				{"audit", strconv.Itoa(store.DoneCount(checkpoint.StageAudit))},
				{"audio", strconv.Itoa(store.DoneCount(checkpoint.StageAudio))},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Done"}, rows,
				[]columnAlignment{alignLeft, alignRight},
			))

			summary, found, err := readAuditSummary(resolver.SummaryPath())
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(out, renderStatusLine("Audit summary", statusInfo, "no summary yet; run the pipeline first", colorize))
				return nil
			}
			printAuditSummary(out, summary, colorize)
			return nil
		},
	}
}

func readAuditSummary(path string) (audit.Summary, bool, error) {
	var summary audit.Summary
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return summary, false, nil
	}
	if err != nil {
		return summary, false, fmt.Errorf("read audit summary: %w", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, false, fmt.Errorf("parse audit summary %s: %w", path, err)
	}
	return summary, true, nil
}

func printAuditSummary(out io.Writer, summary audit.Summary, colorize bool) {
	for _, line := range renderSectionHeader("Audit summary", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Generated at", statusInfo,
		summary.GeneratedAt.Local().Format("2006-01-02 15:04:05"), colorize))
	fmt.Fprintln(out, renderStatusLine("Audited", statusInfo,
		fmt.Sprintf("%d item(s): %d passed, %d failed", summary.Audited, summary.Passed, summary.Failed), colorize))

	if len(summary.ByType) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Type", "Passed", "Failed"},
			countRows(summary.ByType),
			[]columnAlignment{alignLeft, alignRight, alignRight},
		))
	}
	if len(summary.ByDJ) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"DJ", "Passed", "Failed"},
			countRows(summary.ByDJ),
			[]columnAlignment{alignLeft, alignRight, alignRight},
		))
	}
	if len(summary.TopIssues) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Issue", "Count"},
			issueRows(summary.TopIssues),
			[]columnAlignment{alignLeft, alignRight},
		))
	}
	for _, key := range summary.Failing {
		fmt.Fprintln(out, renderStatusLine("Failing", statusWarn, key, colorize))
	}
}

// issueRows sorts criteria by count, most frequent first, with name as
// the tiebreak so output stays stable.
func issueRows(issues map[string]int) [][]string {
	keys := make([]string, 0, len(issues))
	for key := range issues {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if issues[keys[i]] != issues[keys[j]] {
			return issues[keys[i]] > issues[keys[j]]
		}
		return keys[i] < keys[j]
	})
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(issues[key])})
	}
	return rows
}

func countRows(groups map[string]*audit.Counts) [][]string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		counts := groups[key]
		rows = append(rows, []string{key, strconv.Itoa(counts.Passed), strconv.Itoa(counts.Failed)})
	}
	return rows
}
