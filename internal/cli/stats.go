package cli

import (
	"fmt"

	"quizzer/internal/app"
	"quizzer/internal/domain"
	"quizzer/internal/transport/terminal"

	"github.com/spf13/cobra"
)

// NewStatsCmd prints one user's statistics.
func NewStatsCmd(configPath *string) *cobra.Command {
	var user, stat string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			env, err := newEnvironment(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			stats, err := env.stats.ForUser(cmd.Context(), user)
			if err != nil {
				return err
			}
			if stat != "" {
				s, err := domain.ParseStatistic(stat)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%g\n", stats.Values[s])
				return nil
			}
			terminal.RenderStatistics(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user name")
	cmd.Flags().StringVar(&stat, "stat", "", "print a single statistic: mean, median, total_correct or total_answered")
	return cmd
}

// NewLeaderboardCmd ranks every user by mean score.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank all users by mean score",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			entries, err := env.stats.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			means := make([]float64, len(entries))
			for i, e := range entries {
				means[i] = e.Mean
			}
			terminal.RenderLeaderboard(cmd.OutOrStdout(), entries, app.StandardDeviation(means))
			return nil
		},
	}
}
