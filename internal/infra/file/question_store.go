package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quizzer/internal/domain"
)

// QuestionExt is the extension of topic files.
const QuestionExt = ".txt"

const questionFields = 2 + domain.WrongAnswerCount + 1

// QuestionStore reads topics from a directory holding one <topic>.txt file per topic.
// Each non-empty line is Question|Answer|Wrong1|Wrong2|Wrong3|DIFFICULTY.
type QuestionStore struct {
	dir string
}

// NewQuestionStore fails with domain.ErrInvalidDirectory unless dir is a non-empty directory.
func NewQuestionStore(dir string) (*QuestionStore, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &domain.InvalidDirectoryError{Path: dir, Reason: "not a directory"}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.InvalidDirectoryError{Path: dir, Reason: err.Error()}
	}
	if len(entries) == 0 {
		return nil, &domain.InvalidDirectoryError{Path: dir, Reason: "directory is empty"}
	}
	return &QuestionStore{dir: dir}, nil
}

// Dir is the directory the store reads from.
func (s *QuestionStore) Dir() string { return s.dir }

// ListTopics returns file names without their extension, in directory order.
func (s *QuestionStore) ListTopics(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		topics = append(topics, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return topics, nil
}

// GetEntries parses the topic's file. Any malformed line aborts the whole load.
func (s *QuestionStore) GetEntries(_ context.Context, topic string) ([]domain.Question, error) {
	if topic == "" || topic != filepath.Base(topic) {
		return nil, fmt.Errorf("%w: %q", domain.ErrTopicNotFound, topic)
	}
	path := filepath.Join(s.dir, topic+QuestionExt)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", domain.ErrTopicNotFound, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("open topic %q: %w", topic, err)
	}
	defer f.Close()
	return ParseQuestions(f, path)
}

// ParseQuestions reads question lines from r. source names r in errors.
func ParseQuestions(r io.Reader, source string) ([]domain.Question, error) {
	var questions []domain.Question
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, reason := parseQuestionLine(line)
		if reason != "" {
			return nil, &domain.MalformedQuestionError{Source: source, Line: lineNo, Reason: reason}
		}
		questions = append(questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return questions, nil
}

// ParseQuestionLine parses a single pipe-delimited question.
func ParseQuestionLine(line string) (domain.Question, error) {
	q, reason := parseQuestionLine(line)
	if reason != "" {
		return domain.Question{}, fmt.Errorf("%w: %s", domain.ErrMalformedQuestion, reason)
	}
	return q, nil
}

func parseQuestionLine(line string) (domain.Question, string) {
	fields := strings.Split(line, "|")
	if len(fields) != questionFields {
		return domain.Question{}, fmt.Sprintf("expected %d fields, got %d", questionFields, len(fields))
	}
	difficulty, ok := domain.ParseDifficulty(fields[5])
	if !ok {
		return domain.Question{}, fmt.Sprintf("unknown difficulty %q", fields[5])
	}
	q := domain.Question{
		Text:          fields[0],
		CorrectAnswer: fields[1],
		Difficulty:    difficulty,
	}
	copy(q.WrongAnswers[:], fields[2:5])
	return q, ""
}
