package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"quizzer/internal/domain"
)

type sessionState int

const (
	stateCreated sessionState = iota
	stateOrdered
	stateRunning
	stateCompleted
)

func (s sessionState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateOrdered:
		return "ordered"
	case stateRunning:
		return "running"
	case stateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one pass over a topic for one user: Created -> Ordered -> Running -> Completed.
// A Session is not safe for concurrent use.
type Session struct {
	id        string
	questions []domain.Question
	record    *domain.UserRecord
	presenter Presenter
	history   HistoryRepository
	rnd       *rand.Rand
	state     sessionState
	asked     int
}

// NewSession creates a session in the Created state.
func NewSession(id string, questions []domain.Question, record *domain.UserRecord, presenter Presenter, history HistoryRepository) *Session {
	return NewSessionWithRand(id, questions, record, presenter, history, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSessionWithRand lets tests pin the random source used for ordering and option shuffles.
func NewSessionWithRand(id string, questions []domain.Question, record *domain.UserRecord, presenter Presenter, history HistoryRepository, rnd *rand.Rand) *Session {
	return &Session{
		id:        id,
		questions: append([]domain.Question(nil), questions...),
		record:    record,
		presenter: presenter,
		history:   history,
		rnd:       rnd,
		state:     stateCreated,
	}
}

func (s *Session) ID() string { return s.id }

// State reports the lifecycle state name.
func (s *Session) State() string { return s.state.String() }

// Asked is the number of questions answered so far.
func (s *Session) Asked() int { return s.asked }

// Questions returns a copy of the question sequence in its current order.
func (s *Session) Questions() []domain.Question {
	return append([]domain.Question(nil), s.questions...)
}

// Order applies the ordering exactly once.
func (s *Session) Order(ordering domain.Ordering) error {
	if s.state != stateCreated {
		return fmt.Errorf("%w: order in state %s", domain.ErrInvalidTransition, s.state)
	}
	ordered, err := orderQuestions(ordering, s.questions, s.record, s.rnd)
	if err != nil {
		return err
	}
	s.questions = ordered
	s.state = stateOrdered
	return nil
}

// Run asks every question once, in order, then records the round and flushes the history.
// It returns the number of correct answers.
func (s *Session) Run(ctx context.Context) (int, error) {
	if s.state != stateOrdered {
		return 0, fmt.Errorf("%w: run in state %s", domain.ErrInvalidTransition, s.state)
	}
	s.state = stateRunning

	correct := 0
	for _, q := range s.questions {
		if err := ctx.Err(); err != nil {
			return correct, err
		}
		ok, err := s.presenter.AskQuestion(ctx, s.prompt(q))
		if err != nil {
			return correct, fmt.Errorf("ask question: %w", err)
		}
		s.asked++
		if ok {
			s.record.RecordCorrect(q.Text)
			correct++
		} else {
			s.record.RecordWrong(q.Text)
		}
	}

	s.presenter.DisplayResults(correct, len(s.questions))
	s.record.CompleteRound()
	if err := s.history.Flush(ctx, s.record); err != nil {
		return correct, fmt.Errorf("flush history: %w", err)
	}
	s.state = stateCompleted
	return correct, nil
}

// prompt shuffles a fresh copy of the possibilities on every call.
func (s *Session) prompt(q domain.Question) domain.Prompt {
	options := q.Possibilities()
	s.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return domain.Prompt{Question: q, Options: options}
}
