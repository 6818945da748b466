package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTopicsCmd lists the available topics.
func NewTopicsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List available quiz topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			topics, err := env.quiz.Topics(cmd.Context())
			if err != nil {
				return err
			}
			for _, topic := range topics {
				fmt.Fprintln(cmd.OutOrStdout(), topic)
			}
			return nil
		},
	}
}
