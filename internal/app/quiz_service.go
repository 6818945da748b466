package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"quizzer/internal/domain"

	"github.com/google/uuid"
)

// QuestionSource loads topic question sets (flat files, Postgres, or a cache in front of either).
type QuestionSource interface {
	ListTopics(ctx context.Context) ([]string, error)
	GetEntries(ctx context.Context, topic string) ([]domain.Question, error)
}

// HistoryRepository abstracts where user records live.
// Load never fails for an unknown user; it returns an empty record.
// Every Load returns an independent copy.
type HistoryRepository interface {
	Load(ctx context.Context, name string) (*domain.UserRecord, error)
	Flush(ctx context.Context, record *domain.UserRecord) error
	ListUsers(ctx context.Context) ([]string, error)
}

// SessionGuard enforces a single active session per user.
// The returned release function must be called once the session ends.
type SessionGuard interface {
	Acquire(ctx context.Context, user string) (func(), error)
}

// Presenter is the interactive front end that asks questions and shows results.
type Presenter interface {
	// AskQuestion shows the prompt and reports whether the player chose the correct option.
	// An error abandons the session.
	AskQuestion(ctx context.Context, prompt domain.Prompt) (bool, error)
	DisplayResults(correct, total int)
}

// PlayResult summarizes a completed session.
type PlayResult struct {
	SessionID string
	Topic     string
	Ordering  domain.Ordering
	Correct   int
	Total     int
}

// QuizService wires question sources, history storage and presenters into quiz sessions.
type QuizService struct {
	questions QuestionSource
	history   HistoryRepository
	guard     SessionGuard
	logger    *slog.Logger
	newRand   func() *rand.Rand
}

func NewQuizService(questions QuestionSource, history HistoryRepository, guard SessionGuard, logger *slog.Logger) *QuizService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{
		questions: questions,
		history:   history,
		guard:     guard,
		logger:    logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Topics lists the available topics.
func (s *QuizService) Topics(ctx context.Context) ([]string, error) {
	return s.questions.ListTopics(ctx)
}

// Play runs one full session for user on topic. The user's history is flushed only
// when every question has been asked; an abandoned session leaves storage untouched.
func (s *QuizService) Play(ctx context.Context, topic, user string, ordering domain.Ordering, presenter Presenter) (PlayResult, error) {
	release, err := s.guard.Acquire(ctx, user)
	if err != nil {
		return PlayResult{}, err
	}
	defer release()

	questions, err := s.questions.GetEntries(ctx, topic)
	if err != nil {
		return PlayResult{}, fmt.Errorf("load topic %q: %w", topic, err)
	}
	record, err := s.history.Load(ctx, user)
	if err != nil {
		return PlayResult{}, fmt.Errorf("load history for %q: %w", user, err)
	}

	id := uuid.NewString()
	logger := s.logger.With("session_id", id, "user", user, "topic", topic, "ordering", ordering.String())

	session := NewSessionWithRand(id, questions, record, presenter, s.history, s.newRand())
	if err := session.Order(ordering); err != nil {
		return PlayResult{}, err
	}
	logger.Debug("session ordered", "questions", len(questions))

	correct, err := session.Run(ctx)
	if err != nil {
		logger.Info("session abandoned", "asked", session.Asked(), "error", err)
		return PlayResult{}, err
	}
	logger.Info("session completed", "correct", correct, "total", len(questions), "rounds", record.Rounds())

	return PlayResult{
		SessionID: id,
		Topic:     topic,
		Ordering:  ordering,
		Correct:   correct,
		Total:     len(questions),
	}, nil
}
