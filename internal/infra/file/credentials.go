package file

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quizzer/internal/domain"
)

// CredentialStore keeps username,sha256(password) lines in a single file.
type CredentialStore struct {
	path  string
	users map[string]string
}

// NewCredentialStore loads path, creating it and its directory if needed.
func NewCredentialStore(path string) (*CredentialStore, error) {
	s := &CredentialStore{path: path, users: make(map[string]string)}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create users dir: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		user, hash, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("users file %s: malformed line %q", path, line)
		}
		s.users[user] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return s, nil
}

func (s *CredentialStore) UserExists(user string) bool {
	_, ok := s.users[user]
	return ok
}

// CheckCredentials distinguishes an unknown user from a wrong password.
func (s *CredentialStore) CheckCredentials(user, password string) domain.LoginResult {
	hash, ok := s.users[user]
	if !ok {
		return domain.LoginUserNotFound
	}
	if hash != hashPassword(password) {
		return domain.LoginWrongPassword
	}
	return domain.LoginOK
}

// CreateUser appends a new account. It reports false when the name is taken.
func (s *CredentialStore) CreateUser(user, password string) (bool, error) {
	if err := ValidateUsername(user); err != nil {
		return false, err
	}
	if s.UserExists(user) {
		return false, nil
	}
	hash := hashPassword(password)
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false, fmt.Errorf("open users file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s,%s\n", user, hash); err != nil {
		f.Close()
		return false, fmt.Errorf("write users file: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("write users file: %w", err)
	}
	s.users[user] = hash
	return true, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
