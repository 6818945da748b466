package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizzer/internal/domain"
)

// ErrAbandoned is returned when input ends before the player answered.
var ErrAbandoned = errors.New("input closed, quiz abandoned")

// Presenter asks questions on a line-oriented terminal. Options are numbered from 1.
type Presenter struct {
	in     *bufio.Reader
	out    io.Writer
	styles Styles
}

func NewPresenter(in io.Reader, out io.Writer) *Presenter {
	return &Presenter{
		in:     bufio.NewReader(in),
		out:    out,
		styles: DefaultStyles(),
	}
}

// AskQuestion re-prompts until a valid option number is entered.
func (p *Presenter) AskQuestion(ctx context.Context, prompt domain.Prompt) (bool, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.Difficulty.Render(prompt.Question.Difficulty.String()))
	fmt.Fprintln(p.out, p.styles.Question.Render(prompt.Question.Text))
	for i, opt := range prompt.Options {
		fmt.Fprintf(p.out, "  (%d) %s\n", i+1, opt)
	}

	choice, err := p.readChoice(ctx, len(prompt.Options))
	if err != nil {
		return false, err
	}
	if prompt.IsCorrect(choice) {
		fmt.Fprintln(p.out, p.styles.Correct.Render("Correct!"))
		return true, nil
	}
	fmt.Fprintln(p.out, p.styles.Wrong.Render("Wrong! The answer was "+prompt.Question.CorrectAnswer))
	return false, nil
}

func (p *Presenter) DisplayResults(correct, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(correct) * 100 / float64(total)
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.Title.Render(
		fmt.Sprintf("Quiz complete! You got %d out of %d questions correct! (%.0f%%)", correct, total, pct)))
}

// Choose shows a numbered menu and returns the zero-based index picked.
func (p *Presenter) Choose(ctx context.Context, title string, options []string) (int, error) {
	fmt.Fprintln(p.out, p.styles.Title.Render(title))
	for i, opt := range options {
		fmt.Fprintf(p.out, "  (%d) %s\n", i+1, opt)
	}
	return p.readChoice(ctx, len(options))
}

// ReadLine prints label and returns the trimmed line typed.
func (p *Presenter) ReadLine(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine(ctx)
}

func (p *Presenter) readChoice(ctx context.Context, n int) (int, error) {
	for {
		fmt.Fprint(p.out, "Choice: ")
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(line)
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", n)
	}
}

func (p *Presenter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrAbandoned
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
