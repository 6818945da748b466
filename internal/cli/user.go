package cli

import (
	"fmt"
	"os"

	"quizzer/internal/config"
	"quizzer/internal/domain"
	"quizzer/internal/infra/file"
	"quizzer/internal/transport/terminal"

	"github.com/spf13/cobra"
)

// NewUserCmd groups account management subcommands.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage player accounts",
	}
	cmd.AddCommand(newUserCreateCmd(configPath))
	return cmd
}

func newUserCreateCmd(configPath *string) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a player account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			creds, err := file.NewCredentialStore(cfg.Data.UsersFile)
			if err != nil {
				return err
			}

			if password == "" {
				tty, ok := cmd.InOrStdin().(*os.File)
				if !ok || !terminal.IsTerminal(tty) {
					return fmt.Errorf("--password is required when stdin is not a terminal")
				}
				if password, err = terminal.ReadPassword(tty, cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}

			created, err := creds.CreateUser(args[0], password)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("%w: %s", domain.ErrUserExists, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}
