package domain

import (
	"fmt"
	"strings"
)

// Difficulty ranks questions for escalation ordering. The zero value is Novice.
type Difficulty int

const (
	Novice Difficulty = iota
	Intermediate
	Expert
)

var difficultyTokens = [...]string{"NOVICE", "INTERMEDIATE", "EXPERT"}

func (d Difficulty) String() string {
	if d < Novice || d > Expert {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyTokens[d]
}

// ParseDifficulty accepts only the exact upper-case tokens used in question files.
func ParseDifficulty(token string) (Difficulty, bool) {
	for i, t := range difficultyTokens {
		if t == token {
			return Difficulty(i), true
		}
	}
	return 0, false
}

// WrongAnswerCount is the number of distractors every question carries.
const WrongAnswerCount = 3

// Question is one multiple-choice entry of a topic with exactly four possibilities.
type Question struct {
	Text          string                   `json:"text"`
	CorrectAnswer string                   `json:"correctAnswer"`
	WrongAnswers  [WrongAnswerCount]string `json:"wrongAnswers"`
	Difficulty    Difficulty               `json:"difficulty"`
}

// Possibilities returns a fresh slice of the three wrong answers followed by the correct one.
func (q Question) Possibilities() []string {
	out := make([]string, 0, WrongAnswerCount+1)
	out = append(out, q.WrongAnswers[:]...)
	return append(out, q.CorrectAnswer)
}

// Line encodes the question in the pipe-delimited question file format.
func (q Question) Line() string {
	fields := []string{q.Text, q.CorrectAnswer}
	fields = append(fields, q.WrongAnswers[:]...)
	fields = append(fields, q.Difficulty.String())
	return strings.Join(fields, "|")
}

// Prompt is a question as it is shown to the player: options in presentation order.
type Prompt struct {
	Question Question `json:"question"`
	Options  []string `json:"options"`
}

// IsCorrect maps a selected option index back to correctness.
func (p Prompt) IsCorrect(index int) bool {
	if index < 0 || index >= len(p.Options) {
		return false
	}
	return p.Options[index] == p.Question.CorrectAnswer
}

// CorrectIndex returns the position of the correct answer among the options, or -1.
func (p Prompt) CorrectIndex() int {
	for i, opt := range p.Options {
		if opt == p.Question.CorrectAnswer {
			return i
		}
	}
	return -1
}

// RoundsKey is the reserved history key counting completed sessions.
// It shares the namespace with question text, so a question literally titled
// "Rounds" collides with it.
const RoundsKey = "Rounds"

// UserRecord is a player's history: wrong-answer counts per question text plus RoundsKey.
type UserRecord struct {
	Name        string
	WrongCounts map[string]int
}

// NewUserRecord returns an empty record for name.
func NewUserRecord(name string) *UserRecord {
	return &UserRecord{Name: name, WrongCounts: make(map[string]int)}
}

// Rounds returns the number of completed sessions, 0 if never recorded.
func (u *UserRecord) Rounds() int {
	return u.WrongCounts[RoundsKey]
}

// WrongCount returns the recorded wrong answers for a question, 0 if never seen.
func (u *UserRecord) WrongCount(questionText string) int {
	return u.WrongCounts[questionText]
}

// IsEmpty reports whether nothing has ever been recorded for the user.
func (u *UserRecord) IsEmpty() bool {
	return len(u.WrongCounts) == 0
}

// RecordCorrect makes sure the question has an entry without touching an existing count.
func (u *UserRecord) RecordCorrect(questionText string) {
	if _, ok := u.WrongCounts[questionText]; !ok {
		u.WrongCounts[questionText] = 0
	}
}

// RecordWrong increments the wrong count of the question, creating it at 1.
func (u *UserRecord) RecordWrong(questionText string) {
	u.WrongCounts[questionText]++
}

// CompleteRound increments RoundsKey.
func (u *UserRecord) CompleteRound() {
	u.WrongCounts[RoundsKey]++
}

// QuestionCounts returns the wrong counts of every question key, RoundsKey excluded.
func (u *UserRecord) QuestionCounts() map[string]int {
	out := make(map[string]int, len(u.WrongCounts))
	for k, v := range u.WrongCounts {
		if k == RoundsKey {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the record.
func (u *UserRecord) Clone() *UserRecord {
	c := NewUserRecord(u.Name)
	for k, v := range u.WrongCounts {
		c.WrongCounts[k] = v
	}
	return c
}

// Statistic identifies a per-user figure derived from a UserRecord.
type Statistic int

const (
	Mean Statistic = iota
	Median
	TotalCorrect
	TotalAnswered
)

var statisticNames = [...]string{"MEAN", "MEDIAN", "TOTAL_CORRECT", "TOTAL_ANSWERED"}

// Statistics lists every statistic in report order.
var Statistics = []Statistic{Mean, Median, TotalCorrect, TotalAnswered}

func (s Statistic) String() string {
	if s < Mean || s > TotalAnswered {
		return fmt.Sprintf("Statistic(%d)", int(s))
	}
	return statisticNames[s]
}

// ParseStatistic accepts statistic names case-insensitively.
func ParseStatistic(raw string) (Statistic, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for i, n := range statisticNames {
		if n == name {
			return Statistic(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatistic, raw)
}

// Ordering selects how a session sequences its questions.
type Ordering int

const (
	// Random is a uniform permutation, re-drawn every session.
	Random Ordering = iota
	// Escalation is a stable ascending sort by difficulty.
	Escalation
	// Redemption is a stable descending sort by historical wrong count.
	Redemption
)

var orderingNames = [...]string{"random", "escalation", "redemption"}

// Orderings lists the orderings in menu order.
var Orderings = []Ordering{Random, Escalation, Redemption}

func (o Ordering) String() string {
	if o < Random || o > Redemption {
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
	return orderingNames[o]
}

// ParseOrdering accepts ordering names case-insensitively.
func ParseOrdering(raw string) (Ordering, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for i, n := range orderingNames {
		if n == name {
			return Ordering(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOrdering, raw)
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
}

// LoginResult is the outcome of a credential check.
type LoginResult int

const (
	LoginOK LoginResult = iota
	LoginUserNotFound
	LoginWrongPassword
)

func (r LoginResult) String() string {
	switch r {
	case LoginOK:
		return "ok"
	case LoginUserNotFound:
		return "user not found"
	case LoginWrongPassword:
		return "wrong password"
	default:
		return fmt.Sprintf("LoginResult(%d)", int(r))
	}
}
