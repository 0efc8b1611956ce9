package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aircheck/internal/content"
	"aircheck/internal/logging"
	"aircheck/internal/preflight"
	"aircheck/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		typesFlag     []string
		djsFlag       []string
		limitFlag     int
		stageFlag     string
		skipAudio     bool
		overwrite     bool
		skipPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: generate scripts, audit them, render audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts, err := buildRunOptions(typesFlag, djsFlag, limitFlag, stageFlag, skipAudio, overwrite)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			if !skipPreflight {
				results := preflight.RunAll(signalCtx, cfg)
				printPreflight(out, results)
				if !preflight.AllPassed(results) {
					return fmt.Errorf("preflight checks failed; fix the reported problems or rerun with --skip-preflight")
				}
			}

			runStamp := time.Now().UTC().Format("20060102T150405Z")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("aircheck-%s.log", runStamp))
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			backends, err := workflow.NewBackends(cfg)
			if err != nil {
				return err
			}

			manager := workflow.NewManager(cfg, logger, backends)
			summary, err := manager.Run(signalCtx, opts)
			if err != nil {
				return err
			}

			printRunSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&typesFlag, "types", nil, "Restrict the run to content types (intro, outro, time, weather)")
	cmd.Flags().StringSliceVar(&djsFlag, "djs", nil, "Restrict the run to these DJ ids")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Limit the number of catalog songs in the batch")
	cmd.Flags().StringVar(&stageFlag, "stage", "", "Run a single stage only (generate, audit, audio)")
	cmd.Flags().BoolVar(&skipAudio, "skip-audio", false, "Skip audio rendering")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Redo items the checkpoint already marks complete")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before the run")
	return cmd
}

func buildRunOptions(types, djs []string, limit int, stageName string, skipAudio, overwrite bool) (workflow.RunOptions, error) {
	opts := workflow.RunOptions{
		DJs:       djs,
		Limit:     limit,
		SkipAudio: skipAudio,
		Overwrite: overwrite,
	}
	for _, raw := range types {
		parsed, ok := content.ParseType(raw)
		if !ok {
			return opts, fmt.Errorf("unknown content type %q (expected intro, outro, time, or weather)", raw)
		}
		opts.Types = append(opts.Types, parsed)
	}
	switch strings.ToLower(strings.TrimSpace(stageName)) {
	case "":
	case "generate", "audit", "audio":
		opts.Stage = strings.ToLower(strings.TrimSpace(stageName))
	default:
		return opts, fmt.Errorf("unknown stage %q (expected generate, audit, or audio)", stageName)
	}
	return opts, nil
}

func printRunSummary(out io.Writer, summary workflow.Summary) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+summary.RunID, colorize) {
		fmt.Fprintln(out, line)
	}

	rows := [][]string{
		{"generate", strconv.Itoa(summary.Generated.Processed), strconv.Itoa(summary.Generated.Skipped), strconv.Itoa(summary.Generated.Failed())},
		{"audit", strconv.Itoa(summary.Audited.Processed), strconv.Itoa(summary.Audited.Skipped), strconv.Itoa(summary.Audited.Failed())},
		{"audio", strconv.Itoa(summary.Rendered.Processed), strconv.Itoa(summary.Rendered.Skipped), strconv.Itoa(summary.Rendered.Failed())},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Processed", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	if summary.Recovered > 0 {
		fmt.Fprintln(out, renderStatusLine("Recovered", statusOK,
			fmt.Sprintf("%d item(s) passed after regeneration", summary.Recovered), colorize))
	}
	for _, key := range summary.Persistent {
		fmt.Fprintln(out, renderStatusLine("Still failing", statusWarn, key, colorize))
	}
	for _, failure := range summary.Generated.Failures {
		fmt.Fprintln(out, renderStatusLine("Generate failed", statusError,
			fmt.Sprintf("%s: %v", failure.Item.Key(), failure.Err), colorize))
	}
	for _, failure := range summary.Audited.Failures {
		fmt.Fprintln(out, renderStatusLine("Audit failed", statusError,
			fmt.Sprintf("%s: %v", failure.Item.Key(), failure.Err), colorize))
	}
	for _, failure := range summary.Rendered.Failures {
		fmt.Fprintln(out, renderStatusLine("Audio failed", statusError,
			fmt.Sprintf("%s: %v", failure.Item.Key(), failure.Err), colorize))
	}

	kind := statusOK
	message := "run completed"
	if failures := summary.Failures(); failures > 0 {
		kind = statusWarn
		message = fmt.Sprintf("run completed with %d unresolved item(s)", failures)
	}
	fmt.Fprintln(out, renderStatusLine("Result", kind, message, colorize))
}
