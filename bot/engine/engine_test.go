package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"askrelay/bot/storage"
	"askrelay/core/telegram/state"
)

const adminChat = int64(1)

type sent struct {
	chatID int64
	text   string
}

// fakeSender records outbound messages and can simulate delivery
// failures.
type fakeSender struct {
	sends   []sent
	failFor map[int64]error
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.sends = append(f.sends, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) last(t *testing.T) sent {
	t.Helper()
	if len(f.sends) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sends[len(f.sends)-1]
}

func (f *fakeSender) sentTo(chatID int64) []string {
	var out []string
	for _, s := range f.sends {
		if s.chatID == chatID {
			out = append(out, s.text)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *fakeSender, *storage.Store, state.Manager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "askrelay.db")
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	schema := `CREATE TABLE questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		answered INTEGER NOT NULL DEFAULT 0,
		answer TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	store := storage.NewStore(db)
	states := state.NewMemoryManager()
	sender := &fakeSender{}
	return New(store, states, sender, adminChat), sender, store, states
}

func handle(t *testing.T, e *Engine, chatID int64, username, text string) {
	t.Helper()
	if err := e.Handle(context.Background(), Inbound{ChatID: chatID, Username: username, Text: text}); err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
}

func TestEmptyTextIsNoOp(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	handle(t, e, adminChat, "admin", "")
	handle(t, e, 42, "alice", "")
	if len(sender.sends) != 0 {
		t.Fatalf("sends = %+v, want none", sender.sends)
	}
}

func TestUserStartAndUnknown(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)

	handle(t, e, 42, "alice", "/start")
	if got := sender.last(t); got.chatID != 42 || got.text != msgUserWelcome {
		t.Fatalf("reply = %+v", got)
	}

	handle(t, e, 42, "alice", "random text")
	if got := sender.last(t); got.text != msgUserUnknown {
		t.Fatalf("reply = %q, want unknown-command help", got.text)
	}
}

func TestUserContactFlow(t *testing.T) {
	e, sender, store, states := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	if got := sender.last(t); got.text != msgAskMessage {
		t.Fatalf("reply = %q, want contact prompt", got.text)
	}
	if states.GetState(userChat) != stateAwaitingMessage {
		t.Fatalf("state = %q, want awaiting_message", states.GetState(userChat))
	}

	handle(t, e, userChat, "alice", "When is the event?")

	admin := sender.sentTo(adminChat)
	if len(admin) != 1 {
		t.Fatalf("admin notifications = %v, want one", admin)
	}
	if !strings.Contains(admin[0], "@alice") || !strings.Contains(admin[0], "When is the event?") {
		t.Fatalf("notification = %q", admin[0])
	}
	if !strings.Contains(admin[0], "/answer_1") {
		t.Fatalf("notification %q missing /answer_ shortcut", admin[0])
	}
	if got := sender.last(t); got.chatID != userChat || got.text != msgUserSaved {
		t.Fatalf("confirmation = %+v", got)
	}
	if states.GetState(userChat) != state.StateIdle {
		t.Fatalf("state = %q, want idle after save", states.GetState(userChat))
	}

	pending, err := store.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Question != "When is the event?" || pending[0].Username != "alice" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestUserCommandsInterruptContact(t *testing.T) {
	e, sender, store, _ := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "/start")
	if got := sender.last(t); got.text != msgUserWelcome {
		t.Fatalf("reply = %q, want welcome", got.text)
	}

	// The conversation survives the interruption.
	handle(t, e, userChat, "alice", "still my question")
	pending, _ := store.Pending(context.Background())
	if len(pending) != 1 || pending[0].Question != "still my question" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestUserSeeQuestionsHistory(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/see_questions")
	if got := sender.last(t); got.text != msgNoUserQuestions {
		t.Fatalf("reply = %q, want empty-history text", got.text)
	}

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "my question")
	handle(t, e, userChat, "alice", "/see_questions")
	if got := sender.last(t); !strings.Contains(got.text, "my question") {
		t.Fatalf("history = %q", got.text)
	}
}

func TestAdminSeeQuestionsEmpty(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	handle(t, e, adminChat, "admin", "/see_questions")
	if got := sender.last(t); got.text != msgNoPending {
		t.Fatalf("reply = %q, want %q", got.text, msgNoPending)
	}
	// The command is read-only and repeatable.
	handle(t, e, adminChat, "admin", "/see_questions")
	if got := sender.last(t); got.text != msgNoPending {
		t.Fatalf("second reply = %q", got.text)
	}
}

func TestAdminAnswerFlow(t *testing.T) {
	e, sender, _, states := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "When is the event?")

	handle(t, e, adminChat, "admin", "/see_questions")
	if got := sender.last(t); !strings.Contains(got.text, "/answer_1") {
		t.Fatalf("pending list = %q", got.text)
	}

	handle(t, e, adminChat, "admin", "/answer")
	if got := sender.last(t); got.text != msgAskID {
		t.Fatalf("reply = %q, want id prompt", got.text)
	}
	if states.GetState(adminChat) != stateAwaitingQuestionID {
		t.Fatalf("state = %q", states.GetState(adminChat))
	}

	handle(t, e, adminChat, "admin", "1")
	if got := sender.last(t); got.text != msgAskAnswer {
		t.Fatalf("reply = %q, want answer prompt", got.text)
	}
	if states.GetState(adminChat) != stateAnswering {
		t.Fatalf("state = %q", states.GetState(adminChat))
	}

	handle(t, e, adminChat, "admin", "Tomorrow at noon")

	user := sender.sentTo(userChat)
	last := user[len(user)-1]
	if !strings.Contains(last, "When is the event?") || !strings.Contains(last, "Tomorrow at noon") {
		t.Fatalf("delivery = %q", last)
	}
	if got := sender.last(t); got.chatID != adminChat || got.text != msgAnswerSent {
		t.Fatalf("confirmation = %+v", got)
	}
	if states.GetState(adminChat) != state.StateIdle {
		t.Fatalf("state = %q, want idle", states.GetState(adminChat))
	}

	handle(t, e, adminChat, "admin", "/see_answers")
	if got := sender.last(t); !strings.Contains(got.text, "Tomorrow at noon") {
		t.Fatalf("answered list = %q", got.text)
	}
}

func TestAdminAnswerShortcut(t *testing.T) {
	e, sender, _, states := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "Where do I sign up?")

	handle(t, e, adminChat, "admin", "/answer_1")
	if got := sender.last(t); got.text != msgAskAnswer {
		t.Fatalf("reply = %q, want answer prompt", got.text)
	}
	if states.GetState(adminChat) != stateAnswering {
		t.Fatalf("state = %q", states.GetState(adminChat))
	}

	handle(t, e, adminChat, "admin", "On the website")
	if got := sender.sentTo(userChat); !strings.Contains(got[len(got)-1], "On the website") {
		t.Fatalf("delivery = %q", got[len(got)-1])
	}
}

func TestAdminInvalidAndUnknownIDs(t *testing.T) {
	e, sender, _, states := newTestEngine(t)

	handle(t, e, adminChat, "admin", "/answer_abc")
	if got := sender.last(t); got.text != msgInvalidID {
		t.Fatalf("reply = %q, want invalid-id text", got.text)
	}

	handle(t, e, adminChat, "admin", "/answer")
	handle(t, e, adminChat, "admin", "not a number")
	if got := sender.last(t); got.text != msgInvalidID {
		t.Fatalf("reply = %q, want invalid-id text", got.text)
	}
	// A failed lookup keeps the admin in awaiting_question_id.
	if states.GetState(adminChat) != stateAwaitingQuestionID {
		t.Fatalf("state = %q", states.GetState(adminChat))
	}

	handle(t, e, adminChat, "admin", "999")
	if got := sender.last(t); got.text != msgIDNotFound {
		t.Fatalf("reply = %q, want not-found text", got.text)
	}
}

func TestAdminAnswerRejectsResolvedQuestion(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "Only once?")
	handle(t, e, adminChat, "admin", "/answer_1")
	handle(t, e, adminChat, "admin", "Yes, only once")

	handle(t, e, adminChat, "admin", "/answer_1")
	if got := sender.last(t); got.text != msgAnswered {
		t.Fatalf("reply = %q, want already-answered text", got.text)
	}
}

func TestAdminShortcutOverridesState(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	const userChat = int64(42)

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "first")
	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "second")

	// Start answering question 1, then retarget to 2 before typing the
	// answer text.
	handle(t, e, adminChat, "admin", "/answer_1")
	handle(t, e, adminChat, "admin", "/answer_2")
	handle(t, e, adminChat, "admin", "this answers the second")

	handle(t, e, adminChat, "admin", "/see_questions")
	if got := sender.last(t); !strings.Contains(got.text, "first") || strings.Contains(got.text, "second") {
		t.Fatalf("pending list = %q, want only the first question", got.text)
	}
}

func TestAdminUnknownCommand(t *testing.T) {
	e, sender, _, _ := newTestEngine(t)
	handle(t, e, adminChat, "admin", "/bogus")
	if got := sender.last(t); got.text != msgAdminUnknown {
		t.Fatalf("reply = %q, want unknown-command help", got.text)
	}
}

func TestSendFailureDoesNotAbort(t *testing.T) {
	e, sender, store, _ := newTestEngine(t)
	const userChat = int64(42)
	sender.failFor = map[int64]error{adminChat: errors.New("boom")}

	handle(t, e, userChat, "alice", "/contact")
	handle(t, e, userChat, "alice", "still saved?")

	// The admin notification failed but the question was saved and the
	// user still got a confirmation.
	pending, err := store.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}
	if got := sender.last(t); got.chatID != userChat || got.text != msgUserSaved {
		t.Fatalf("confirmation = %+v", got)
	}
}
