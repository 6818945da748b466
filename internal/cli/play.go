package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"quizzer/internal/domain"
	"quizzer/internal/infra/file"
	"quizzer/internal/transport/terminal"

	"github.com/spf13/cobra"
)

const maxLoginAttempts = 3

// NewPlayCmd runs one quiz session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var user, topic, mode string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz round",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := newEnvironment(ctx, *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			out := cmd.OutOrStdout()
			console := terminal.NewPresenter(cmd.InOrStdin(), out)

			name, err := resolvePlayer(ctx, env, console, cmd.InOrStdin(), out, user)
			if err != nil {
				return err
			}

			if topic == "" {
				topics, err := env.quiz.Topics(ctx)
				if err != nil {
					return err
				}
				if len(topics) == 0 {
					return fmt.Errorf("no topics available")
				}
				i, err := console.Choose(ctx, "Select a topic to begin:", topics)
				if err != nil {
					return err
				}
				topic = topics[i]
			}

			var ordering domain.Ordering
			if mode == "" {
				names := make([]string, len(domain.Orderings))
				for i, o := range domain.Orderings {
					names[i] = o.String()
				}
				i, err := console.Choose(ctx, "Choose a game mode:", names)
				if err != nil {
					return err
				}
				ordering = domain.Orderings[i]
			} else if ordering, err = domain.ParseOrdering(mode); err != nil {
				return err
			}

			fmt.Fprintf(out, "You have selected the %s topic in %s mode.\n", topic, ordering)
			_, err = env.quiz.Play(ctx, topic, name, ordering, console)
			if errors.Is(err, terminal.ErrAbandoned) {
				fmt.Fprintln(out, "\nQuiz abandoned; this round was not recorded.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "player name (skips the menu when stdin is not a terminal)")
	cmd.Flags().StringVar(&topic, "topic", "", "topic to play (menu when empty)")
	cmd.Flags().StringVar(&mode, "mode", "", "ordering: random, escalation or redemption (menu when empty)")
	return cmd
}

// resolvePlayer logs the player in on a terminal. Without a terminal it runs in
// debug mode and trusts --user, defaulting to "guest".
func resolvePlayer(ctx context.Context, env *environment, console *terminal.Presenter, in io.Reader, out io.Writer, user string) (string, error) {
	tty, ok := in.(*os.File)
	if !ok || !terminal.IsTerminal(tty) {
		if user == "" {
			user = "guest"
		}
		if err := file.ValidateUsername(user); err != nil {
			return "", err
		}
		env.logger.Debug("stdin is not a terminal, skipping login", "user", user)
		return user, nil
	}

	creds, err := file.NewCredentialStore(env.cfg.Data.UsersFile)
	if err != nil {
		return "", err
	}
	choice, err := console.Choose(ctx, "Are you a new or existing user?", []string{"New", "Existing"})
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		name := user
		if name == "" {
			if name, err = console.ReadLine(ctx, "Username: "); err != nil {
				return "", err
			}
		}
		password, err := terminal.ReadPassword(tty, out, "Password: ")
		if err != nil {
			return "", err
		}

		if choice == 0 {
			created, err := creds.CreateUser(name, password)
			if errors.Is(err, domain.ErrInvalidUsername) {
				fmt.Fprintln(out, err)
				continue
			}
			if err != nil {
				return "", err
			}
			if !created {
				fmt.Fprintf(out, "User %s already exists.\n", name)
				continue
			}
			return name, nil
		}

		switch result := creds.CheckCredentials(name, password); result {
		case domain.LoginOK:
			return name, nil
		default:
			fmt.Fprintf(out, "Login failed: %s.\n", result)
		}
	}
	return "", fmt.Errorf("login failed after %d attempts", maxLoginAttempts)
}
