package terminal

import (
	"fmt"
	"io"
	"os"

	"quizzer/internal/app"
	"quizzer/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

type Styles struct {
	Title      lipgloss.Style
	Question   lipgloss.Style
	Difficulty lipgloss.Style
	Correct    lipgloss.Style
	Wrong      lipgloss.Style
	Header     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Question:   lipgloss.NewStyle().Bold(true),
		Difficulty: lipgloss.NewStyle().Faint(true),
		Correct:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Wrong:      lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Header:     lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// RenderStatistics writes one user's statistics.
func RenderStatistics(w io.Writer, stats app.UserStatistics) {
	styles := DefaultStyles()
	fmt.Fprintln(w, styles.Title.Render("Statistics for "+stats.Name))
	fmt.Fprintf(w, "%-15s %d\n", "ROUNDS", stats.Rounds)
	for _, stat := range domain.Statistics {
		v := stats.Values[stat]
		switch stat {
		case domain.TotalCorrect, domain.TotalAnswered:
			fmt.Fprintf(w, "%-15s %.0f\n", stat, v)
		default:
			fmt.Fprintf(w, "%-15s %.2f\n", stat, v)
		}
	}
}

// RenderLeaderboard writes a User/Score table followed by the standard deviation.
func RenderLeaderboard(w io.Writer, entries []domain.LeaderboardEntry, stdDev float64) {
	styles := DefaultStyles()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, fmt.Sprintf("%.2f", e.Mean)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("User", "Score").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, styles.Title.Render("Leaderboard"))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Standard deviation: %.2f\n", stdDev)
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ReadPassword reads a line from the TTY without echo.
func ReadPassword(f *os.File, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
