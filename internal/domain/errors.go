package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirectory is returned when a question directory is missing, not a directory, or empty.
	ErrInvalidDirectory = errors.New("invalid question directory")
	// ErrTopicNotFound indicates no question set exists for the requested topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrMalformedQuestion indicates a question entry could not be parsed.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrMalformedHistory indicates a user history file holds an unparseable entry.
	ErrMalformedHistory = errors.New("malformed history entry")
	// ErrInvalidTransition is returned when a session operation is invoked out of order.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrSessionActive is returned when a user already has a quiz in progress.
	ErrSessionActive = errors.New("user already has an active session")
	// ErrUnknownOrdering indicates an unrecognized ordering name.
	ErrUnknownOrdering = errors.New("unknown ordering")
	// ErrUnknownStatistic indicates an unrecognized statistic name.
	ErrUnknownStatistic = errors.New("unknown statistic")
	// ErrUserExists is returned when creating an account whose name is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername indicates a name that cannot be used as a history file name.
	ErrInvalidUsername = errors.New("invalid username")
)

// InvalidDirectoryError describes why a question directory was rejected.
type InvalidDirectoryError struct {
	Path   string
	Reason string
}

func (e *InvalidDirectoryError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrInvalidDirectory, e.Path, e.Reason)
}

func (e *InvalidDirectoryError) Unwrap() error { return ErrInvalidDirectory }

// MalformedQuestionError pinpoints the offending entry of a question source.
type MalformedQuestionError struct {
	Source string
	Line   int
	Reason string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("%s in %s line %d: %s", ErrMalformedQuestion, e.Source, e.Line, e.Reason)
}

func (e *MalformedQuestionError) Unwrap() error { return ErrMalformedQuestion }
