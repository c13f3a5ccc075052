package state

import "testing"

func TestMemoryManagerDefaultsToIdle(t *testing.T) {
	m := NewMemoryManager()
	if got := m.GetState(42); got != StateIdle {
		t.Fatalf("GetState(unknown) = %q, want %q", got, StateIdle)
	}
	if m.InProgress(42) {
		t.Fatal("InProgress(unknown) = true, want false")
	}
}

func TestMemoryManagerStateTransitions(t *testing.T) {
	const chat = int64(7)
	m := NewMemoryManager()

	m.SetState(chat, State("awaiting_message"))
	if got := m.GetState(chat); got != State("awaiting_message") {
		t.Fatalf("GetState = %q, want awaiting_message", got)
	}
	if !m.InProgress(chat) {
		t.Fatal("InProgress = false, want true")
	}

	m.ClearState(chat)
	if got := m.GetState(chat); got != StateIdle {
		t.Fatalf("GetState after ClearState = %q, want %q", got, StateIdle)
	}
	if m.InProgress(chat) {
		t.Fatal("InProgress after ClearState = true, want false")
	}
}

func TestMemoryManagerTempData(t *testing.T) {
	const chat = int64(9)
	m := NewMemoryManager()

	if _, ok := m.GetTemp(chat, "question_id"); ok {
		t.Fatal("GetTemp on empty session reported a value")
	}

	m.SetTemp(chat, "question_id", int64(15))
	got, ok := m.GetTempInt64(chat, "question_id")
	if !ok || got != 15 {
		t.Fatalf("GetTempInt64 = (%d, %v), want (15, true)", got, ok)
	}

	// ClearState must not discard temp data.
	m.SetState(chat, State("answering"))
	m.ClearState(chat)
	if _, ok := m.GetTempInt64(chat, "question_id"); !ok {
		t.Fatal("temp data lost after ClearState")
	}

	m.ClearTemp(chat, "question_id")
	if _, ok := m.GetTemp(chat, "question_id"); ok {
		t.Fatal("GetTemp after ClearTemp reported a value")
	}
}

func TestMemoryManagerGetTempInt64WrongType(t *testing.T) {
	const chat = int64(3)
	m := NewMemoryManager()
	m.SetTemp(chat, "question_id", "not-an-int")
	if _, ok := m.GetTempInt64(chat, "question_id"); ok {
		t.Fatal("GetTempInt64 accepted a non-int64 value")
	}
}

func TestMemoryManagerClear(t *testing.T) {
	const chat = int64(5)
	m := NewMemoryManager()
	m.SetState(chat, State("awaiting_question_id"))
	m.SetTemp(chat, "question_id", int64(2))

	m.Clear(chat)
	if got := m.GetState(chat); got != StateIdle {
		t.Fatalf("GetState after Clear = %q, want %q", got, StateIdle)
	}
	if _, ok := m.GetTemp(chat, "question_id"); ok {
		t.Fatal("temp data survived Clear")
	}
}
