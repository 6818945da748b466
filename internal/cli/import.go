package cli

import (
	"fmt"
	"os"

	"quizzer/internal/config"
	"quizzer/internal/infra/file"
	pgsource "quizzer/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// NewImportCmd copies the flat-file topics into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import question files into Postgres, replacing existing topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			store, err := file.NewQuestionStore(cfg.Data.QuestionsDir)
			if err != nil {
				return err
			}
			pool, err := openPostgres(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := pgsource.NewQuestionSource(pool).ImportAll(ctx, store)
			if err != nil {
				return err
			}
			logger.Info("topics imported", "count", n, "from", store.Dir())
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d topics.\n", n)
			return nil
		},
	}
}
