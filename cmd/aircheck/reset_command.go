package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aircheck/internal/checkpoint"
	"aircheck/internal/logging"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "reset [generate|audit|audio|all]",
		Short:     "Clear checkpoint progress so the next run redoes a stage",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"generate", "audit", "audio", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			store, err := checkpoint.Open(resolver.CheckpointPath(), logging.NewNop())
			if err != nil {
				return err
			}

			target := args[0]
			switch target {
			case "all":
				err = store.ResetAll()
			case "generate":
				err = store.Reset(checkpoint.StageGenerate)
			case "audit":
				err = store.Reset(checkpoint.StageAudit)
			case "audio":
				err = store.Reset(checkpoint.StageAudio)
			default:
				return fmt.Errorf("unknown reset target %q (expected generate, audit, audio, or all)", target)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared checkpoint progress for %s\n", target)
			return nil
		},
	}
}
