package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinemind/internal/dataset"
	"cinemind/internal/logging"
	"cinemind/internal/store"
)

type importSummary struct {
	Database   string    `json:"database"`
	Movies     int       `json:"movies"`
	MoviesFile string    `json:"movies_file"`
	MatrixFile string    `json:"similarity_file"`
	ImportedAt time.Time `json:"imported_at"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var moviesPath string
	var matrixPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load movies and the similarity matrix into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(moviesPath) == "" {
				moviesPath = cfg.Paths.MoviesFile
			}
			if strings.TrimSpace(matrixPath) == "" {
				matrixPath = cfg.Paths.SimilarityFile
			}

			data, err := dataset.ReadFiles(moviesPath, matrixPath)
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
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
			if err := st.ReplaceDataset(runCtx, data.Movies, data.Matrix); err != nil {
				return err
			}
			importedAt, err := st.ImportedAt(runCtx)
			if err != nil {
				return err
			}

			ctx.cliLogger().Info("dataset imported",
				logging.String(logging.FieldEventType, "dataset_imported"),
				logging.Int("movies", len(data.Movies)),
				logging.String("database", cfg.Paths.Database))

			summary := importSummary{
				Database:   cfg.Paths.Database,
				Movies:     len(data.Movies),
				MoviesFile: moviesPath,
				MatrixFile: matrixPath,
				ImportedAt: importedAt,
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies into %s\n", summary.Movies, summary.Database)
			return nil
		},
	}
	cmd.Flags().StringVar(&moviesPath, "movies", "", "Movies file, CSV or JSON (defaults to paths.movies_file)")
	cmd.Flags().StringVar(&matrixPath, "similarity", "", "Similarity matrix CSV (defaults to paths.similarity_file)")
	return cmd
}
