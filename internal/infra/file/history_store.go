package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"quizzer/internal/domain"
)

const historyExt = ".txt"

// HistoryStore keeps one <user>.txt file per user, one key|value pair per line.
type HistoryStore struct {
	dir string
}

func NewHistoryStore(dir string) *HistoryStore {
	return &HistoryStore{dir: dir}
}

// Load reads the user's history, creating an empty file on first use.
func (s *HistoryStore) Load(_ context.Context, name string) (*domain.UserRecord, error) {
	if err := ValidateUsername(name); err != nil {
		return nil, err
	}
	path := s.path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.create(path); err != nil {
			return nil, err
		}
		return domain.NewUserRecord(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}

	record := domain.NewUserRecord(name)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		key, value, err := parseHistoryLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		record.WrongCounts[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	return record, nil
}

// Flush replaces the user's file with the record's full contents. The new content is
// written to a temporary file and renamed over the old one, so readers see either the
// previous or the new history.
func (s *HistoryStore) Flush(_ context.Context, record *domain.UserRecord) error {
	if err := ValidateUsername(record.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	keys := make([]string, 0, len(record.WrongCounts))
	for k := range record.WrongCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(record.WrongCounts[k]))
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(s.dir, "."+record.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("flush history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(record.Name)); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	return nil
}

// ListUsers returns the name of every persisted history file.
func (s *HistoryStore) ListUsers(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != historyExt {
			continue
		}
		names = append(names, strings.TrimSuffix(name, historyExt))
	}
	return names, nil
}

func (s *HistoryStore) path(name string) string {
	return filepath.Join(s.dir, name+historyExt)
}

func (s *HistoryStore) create(path string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create history %s: %w", path, err)
	}
	return f.Close()
}

func parseHistoryLine(line string) (string, int, error) {
	idx := strings.LastIndex(line, "|")
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: missing separator", domain.ErrMalformedHistory)
	}
	value, err := strconv.Atoi(line[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrMalformedHistory, err)
	}
	if value < 0 {
		return "", 0, fmt.Errorf("%w: negative count %d", domain.ErrMalformedHistory, value)
	}
	return line[:idx], value, nil
}

// ValidateUsername rejects names that cannot safely name a history file.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidUsername)
	}
	if strings.ContainsAny(name, `/\.,|`) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidUsername, name)
	}
	return nil
}
