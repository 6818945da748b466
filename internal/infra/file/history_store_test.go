package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizzer/internal/domain"
)

func TestHistoryStoreCreatesFileOnFirstLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	store := NewHistoryStore(dir)

	record, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !record.IsEmpty() || record.Name != "alice" {
		t.Fatalf("expected empty record for alice, got %+v", record)
	}
	info, err := os.Stat(filepath.Join(dir, "alice.txt"))
	if err != nil {
		t.Fatalf("expected history file: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", info.Size())
	}
}

func TestHistoryStoreFlushRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewHistoryStore(dir)

	record := domain.NewUserRecord("bob")
	record.WrongCounts["What is 2 + 2?"] = 0
	record.WrongCounts["Who wrote Hamlet?"] = 3
	record.WrongCounts["a|b"] = 1
	record.CompleteRound()
	if err := store.Flush(ctx, record); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "bob.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Rounds|1\nWhat is 2 + 2?|0\nWho wrote Hamlet?|3\na|b|1\n"
	if string(data) != want {
		t.Fatalf("unexpected file contents:\n%s", data)
	}

	loaded, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.WrongCounts) != len(record.WrongCounts) {
		t.Fatalf("expected %v, got %v", record.WrongCounts, loaded.WrongCounts)
	}
	for k, v := range record.WrongCounts {
		if loaded.WrongCounts[k] != v {
			t.Fatalf("%q: expected %d, got %d", k, v, loaded.WrongCounts[k])
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestHistoryStoreLoadsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(t.TempDir())

	first, _ := store.Load(ctx, "carol")
	first.RecordWrong("Q")
	second, err := store.Load(ctx, "carol")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !second.IsEmpty() {
		t.Fatalf("unflushed mutation leaked: %v", second.WrongCounts)
	}
}

func TestHistoryStoreRejectsMalformedLines(t *testing.T) {
	for _, line := range []string{"no separator", "Q|many", "Q|-1"} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "dave.txt"), []byte("Rounds|1\n"+line+"\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := NewHistoryStore(dir).Load(context.Background(), "dave")
		if !errors.Is(err, domain.ErrMalformedHistory) {
			t.Fatalf("%q: expected malformed history, got %v", line, err)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("%q: expected line number in %v", line, err)
		}
	}
}

func TestHistoryStoreListUsers(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "history")
	store := NewHistoryStore(dir)

	users, err := store.ListUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("missing dir: expected no users, got %v, %v", users, err)
	}

	for _, name := range []string{"bob", "alice"} {
		if _, err := store.Load(ctx, name); err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, ".alice-123.tmp"), nil, 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.md"), nil, 0o644)
	_ = os.Mkdir(filepath.Join(dir, "old.txt"), 0o755)

	users, err = store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Join(users, ",") != "alice,bob" {
		t.Fatalf("unexpected users %v", users)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"alice", "Bob Smith", "guest_1"} {
		if err := ValidateUsername(ok); err != nil {
			t.Fatalf("%q: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", "../etc", "a/b", `a\b`, "a,b", "a|b", "a.b"} {
		if err := ValidateUsername(bad); !errors.Is(err, domain.ErrInvalidUsername) {
			t.Fatalf("%q: expected invalid username, got %v", bad, err)
		}
	}
}
