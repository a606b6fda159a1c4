package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cinemind/internal/store"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear persisted OMDb details",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show database row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, cmd, func(runCtx context.Context, st *store.Store) error {
				stats, err := st.Stats(runCtx)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, stats)
				}
				imported := "never"
				if !stats.ImportedAt.IsZero() {
					imported = stats.ImportedAt.Local().Format("2006-01-02 15:04:05")
				}
				rows := [][]string{
					{"Database", stats.Path},
					{"Schema version", fmt.Sprint(stats.SchemaVersion)},
					{"Movies", fmt.Sprint(stats.Movies)},
					{"Similarity rows", fmt.Sprint(stats.SimilarityRows)},
					{"Cached details", fmt.Sprint(stats.CachedDetails)},
					{"Imported", imported},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted OMDb details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, cmd, func(runCtx context.Context, st *store.Store) error {
				removed, err := st.ClearDetails(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached details\n", removed)
				return nil
			})
		},
	})
	return cacheCmd
}

func withStore(ctx *commandContext, cmd *cobra.Command, fn func(context.Context, *store.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	st, err := store.Open(runCtx, cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(runCtx, st)
}
