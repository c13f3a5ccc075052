package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const testSchema = `
CREATE TABLE questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    question TEXT NOT NULL,
    answered INTEGER NOT NULL DEFAULT 0,
    answer TEXT NOT NULL DEFAULT ''
);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "askrelay.db")
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return NewStore(db)
}

func TestSaveAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, 100, "alice", "When is the event?")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save(ctx, 200, "bob", "Where do I sign up?")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first <= 0 || second <= first {
		t.Fatalf("ids not increasing: first=%d second=%d", first, second)
	}
}

func TestPendingAndResolved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, _ := s.Save(ctx, 100, "alice", "first")
	id2, _ := s.Save(ctx, 200, "bob", "second")

	pending, err := s.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != id1 || pending[1].ID != id2 {
		t.Fatalf("Pending = %+v, want ids [%d %d]", pending, id1, id2)
	}

	if err := s.Resolve(ctx, id1, "answered"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	pending, err = s.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id2 {
		t.Fatalf("Pending after resolve = %+v, want only id %d", pending, id2)
	}

	resolved, err := s.Resolved(ctx)
	if err != nil {
		t.Fatalf("Resolved: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != id1 {
		t.Fatalf("Resolved = %+v, want only id %d", resolved, id1)
	}
	if !resolved[0].Answered || resolved[0].Answer != "answered" {
		t.Fatalf("resolved row = %+v, want answered with text", resolved[0])
	}
}

func TestByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.Save(ctx, 100, "alice", "pending question")

	q, err := s.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if q.UserID != 100 || q.Question != "pending question" {
		t.Fatalf("ByID = %+v", q)
	}

	if _, err := s.ByID(ctx, id+99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ByID(missing) err = %v, want ErrNotFound", err)
	}

	// Answered questions are no longer addressable for answering.
	if err := s.Resolve(ctx, id, "done"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := s.ByID(ctx, id); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("ByID(answered) err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestResolveRejectsSecondResolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.Save(ctx, 100, "alice", "once only")
	if err := s.Resolve(ctx, id, "first answer"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := s.Resolve(ctx, id, "second answer"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second Resolve err = %v, want ErrAlreadyAnswered", err)
	}
	if err := s.Resolve(ctx, id+99, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(missing) err = %v, want ErrNotFound", err)
	}

	resolved, _ := s.Resolved(ctx)
	if len(resolved) != 1 || resolved[0].Answer != "first answer" {
		t.Fatalf("resolved = %+v, want original answer kept", resolved)
	}
}

func TestByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, 100, "alice", "one")
	s.Save(ctx, 200, "bob", "two")
	s.Save(ctx, 100, "alice", "three")

	got, err := s.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ByUsername = %d rows, want 2", len(got))
	}
	for _, q := range got {
		if q.Username != "alice" {
			t.Fatalf("unexpected row %+v", q)
		}
		if q.Answered || q.Answer != "" {
			t.Fatalf("pending row carries an answer: %+v", q)
		}
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.Save(ctx, 100, "alice", "one")
	s.Save(ctx, 200, "bob", "two")
	s.Resolve(ctx, id, "done")

	pending, resolved, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if pending != 1 || resolved != 1 {
		t.Fatalf("Counts = (%d, %d), want (1, 1)", pending, resolved)
	}
}
