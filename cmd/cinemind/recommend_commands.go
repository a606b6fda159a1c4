package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinemind/internal/api"
	"cinemind/internal/daemonrun"
	"cinemind/internal/ranking"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank movies by similarity, hybrid score, or mood",
	}
	recommendCmd.AddCommand(newStrategyCommand(ctx, ranking.StrategySimilar, "similar <title>", "Movies most similar to a seed title"))
	recommendCmd.AddCommand(newStrategyCommand(ctx, ranking.StrategyHybrid, "hybrid <title>", "Blend similarity with rating and popularity"))
	recommendCmd.AddCommand(newStrategyCommand(ctx, ranking.StrategyMood, "mood <mood>", "Top rated movies for a mood"))
	return recommendCmd
}

func newStrategyCommand(ctx *commandContext, strategy ranking.Strategy, use, short string) *cobra.Command {
	var limit int
	var details bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := strings.Join(args, " ")
			return ctx.withRuntime(cmd, func(runCtx context.Context, rt *daemonrun.Runtime) error {
				resp, err := rt.Service.Recommend(runCtx, strategy, subject, api.RecommendOptions{Limit: limit, Enrich: details})
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Results) == 0 {
					fmt.Fprintf(out, "No %s recommendations for %q\n", strategy, subject)
					return nil
				}
				fmt.Fprintln(out, renderMovies(resp.Results))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "k", 0, "Number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&details, "details", false, "Attach OMDb details to each result")
	return cmd
}

func newChartsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var details bool

	kinds := make([]string, 0, len(ranking.ChartKinds()))
	for _, kind := range ranking.ChartKinds() {
		kinds = append(kinds, string(kind))
	}

	cmd := &cobra.Command{
		Use:       "charts <kind>",
		Short:     "Catalog-wide charts (" + strings.Join(kinds, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(runCtx context.Context, rt *daemonrun.Runtime) error {
				resp, err := rt.Service.Chart(runCtx, args[0], limit, details)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMovies(resp.Results))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&details, "details", false, "Attach OMDb details to each result")
	return cmd
}

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "movies [query]",
		Short: "Search catalog titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withRuntime(cmd, func(_ context.Context, rt *daemonrun.Runtime) error {
				resp := rt.Service.Movies(query, limit)
				if ctx.jsonMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Movies) == 0 {
					fmt.Fprintf(out, "No titles match %q\n", query)
					return nil
				}
				fmt.Fprintln(out, renderMovies(resp.Movies))
				fmt.Fprintf(out, "%d of %d titles\n", len(resp.Movies), resp.Total)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Maximum titles to list (0 lists all)")
	return cmd
}

func newMoodsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "moods",
		Short:       "List moods and the genres they select",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := api.MoodsResponse{Moods: api.FromMoods(ranking.Moods())}
			if ctx.jsonMode() {
				return writeJSON(cmd, resp)
			}
			rows := make([][]string, 0, len(resp.Moods))
			for _, mood := range resp.Moods {
				rows = append(rows, []string{mood.Label, mood.Name, strings.Join(mood.Genres, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Mood", "Name", "Genres"}, rows, nil))
			return nil
		},
	}
}

func newDetailsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "details <title>",
		Short: "Poster, plot, cast, and rating for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return ctx.withRuntime(cmd, func(runCtx context.Context, rt *daemonrun.Runtime) error {
				resp, err := rt.Service.Details(runCtx, title)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				d := resp.Details
				fmt.Fprintln(out, resp.Title)
				for _, field := range [][2]string{
					{"Director", d.Director},
					{"Actors", d.Actors},
					{"Runtime", d.Runtime},
					{"IMDb", d.Rating},
					{"Poster", d.PosterURL},
					{"Plot", d.Plot},
				} {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, field[0]+":", field[1])
				}
				return nil
			})
		},
	}
}
