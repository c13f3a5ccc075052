// Package state provides an in-memory conversation state tracker keyed by
// chat id. It records what input a chat is expected to produce next during
// a multi-step command, plus small temporary payloads (such as the question
// id currently being answered). States have no expiry: an abandoned
// conversation keeps its state until the chat issues a new recognized
// command.
package state

// State identifies a conversation step a chat is currently in.
type State string

// StateIdle indicates there is no active conversation with the chat.
const StateIdle State = "idle"

// Session stores conversation state and temporary data for one chat.
type Session struct {
	State    State
	TempData map[string]interface{}
}

// Manager tracks per-chat conversation state. Absent chats report StateIdle.
type Manager interface {
	GetState(chatID int64) State
	SetState(chatID int64, st State)
	// ClearState resets the state to idle without touching temp data.
	ClearState(chatID int64)
	// InProgress reports whether the chat has an active non-idle state.
	InProgress(chatID int64) bool

	SetTemp(chatID int64, key string, value interface{})
	GetTemp(chatID int64, key string) (interface{}, bool)
	GetTempInt64(chatID int64, key string) (int64, bool)
	ClearTemp(chatID int64, key string)

	// Clear removes the whole session for a chat.
	Clear(chatID int64)
}
