package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"aircheck/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the songs the pipeline draws from",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Paths.CatalogDB)
			if err != nil {
				return err
			}
			defer store.Close()

			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			songs, err := store.Songs(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			// Catalog casing varies between imports; normalize for display.
			caser := cases.Title(language.Und)
			rows := make([][]string, 0, len(songs))
			for _, song := range songs {
				year := ""
				if song.Year > 0 {
					year = strconv.Itoa(song.Year)
				}
				rows = append(rows, []string{song.ID, caser.String(song.Artist), caser.String(song.Title), year})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Artist", "Title", "Year"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d of %d song(s)\n", len(songs), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Show at most this many songs")
	return cmd
}
