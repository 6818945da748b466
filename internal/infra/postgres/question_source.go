package postgres

import (
	"context"
	"fmt"

	"quizzer/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionSource reads topics from the questions table, one row per question.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

func (s *QuestionSource) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT topic FROM questions ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (s *QuestionSource) GetEntries(ctx context.Context, topic string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT position, question, answer, wrong1, wrong2, wrong3, difficulty
		FROM questions WHERE topic=$1 ORDER BY position`, topic)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			position int
			q        domain.Question
			token    string
		)
		if err := rows.Scan(&position, &q.Text, &q.CorrectAnswer,
			&q.WrongAnswers[0], &q.WrongAnswers[1], &q.WrongAnswers[2], &token); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		difficulty, ok := domain.ParseDifficulty(token)
		if !ok {
			return nil, &domain.MalformedQuestionError{
				Source: "questions:" + topic,
				Line:   position,
				Reason: fmt.Sprintf("unknown difficulty %q", token),
			}
		}
		q.Difficulty = difficulty
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrTopicNotFound, topic)
	}
	return questions, nil
}

// ReplaceTopic swaps the stored content of topic for questions in one transaction.
func (s *QuestionSource) ReplaceTopic(ctx context.Context, topic string, questions []domain.Question) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE topic=$1`, topic); err != nil {
			return fmt.Errorf("clear topic: %w", err)
		}
		batch := &pgx.Batch{}
		for i, q := range questions {
			batch.Queue(`
				INSERT INTO questions (topic, position, question, answer, wrong1, wrong2, wrong3, difficulty)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				topic, i+1, q.Text, q.CorrectAnswer,
				q.WrongAnswers[0], q.WrongAnswers[1], q.WrongAnswers[2], q.Difficulty.String())
		}
		results := tx.SendBatch(ctx, batch)
		for range questions {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert question: %w", err)
			}
		}
		return results.Close()
	})
}

// TopicReader is the subset of a question source the importer reads from.
type TopicReader interface {
	ListTopics(ctx context.Context) ([]string, error)
	GetEntries(ctx context.Context, topic string) ([]domain.Question, error)
}

// ImportAll copies every topic of from into the table, replacing existing content.
// It returns the number of topics imported.
func (s *QuestionSource) ImportAll(ctx context.Context, from TopicReader) (int, error) {
	topics, err := from.ListTopics(ctx)
	if err != nil {
		return 0, err
	}
	for i, topic := range topics {
		questions, err := from.GetEntries(ctx, topic)
		if err != nil {
			return i, fmt.Errorf("read topic %q: %w", topic, err)
		}
		if err := s.ReplaceTopic(ctx, topic, questions); err != nil {
			return i, fmt.Errorf("import topic %q: %w", topic, err)
		}
	}
	return len(topics), nil
}
