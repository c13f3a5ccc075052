// Package engine routes incoming messages through the admin and user
// conversation machines. It is transport-agnostic: the Telegram layer
// feeds it Inbound events and it replies through the Sender.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"askrelay/bot/command"
	"askrelay/bot/storage"
	"askrelay/core/logger"
	"askrelay/core/telegram/state"
)

const componentEngine = "engine"

const (
	stateAwaitingQuestionID = state.State("awaiting_question_id")
	stateAnswering          = state.State("answering")
	stateAwaitingMessage    = state.State("awaiting_message")

	tempQuestionID = "question_id"
)

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Inbound is one incoming text message, already stripped of transport
// details.
type Inbound struct {
	ChatID   int64
	Username string
	Text     string
}

// Engine multiplexes messages between the administrator machine and the
// per-user machine based on the chat id.
type Engine struct {
	store   *storage.Store
	states  state.Manager
	sender  Sender
	adminID int64
}

// New assembles an engine over the given collaborators.
func New(store *storage.Store, states state.Manager, sender Sender, adminID int64) *Engine {
	return &Engine{store: store, states: states, sender: sender, adminID: adminID}
}

// Handle processes a single inbound message. Storage errors are
// returned to the caller; delivery errors are logged and swallowed so
// one failed reply never aborts the update.
func (e *Engine) Handle(ctx context.Context, in Inbound) error {
	if in.Text == "" {
		return nil
	}
	if in.ChatID == e.adminID {
		return e.handleAdmin(ctx, in)
	}
	return e.handleUser(ctx, in)
}

func (e *Engine) handleAdmin(ctx context.Context, in Inbound) error {
	cmd := command.Parse(in.Text)
	switch cmd.Kind {
	case command.KindStart:
		e.send(ctx, in.ChatID, msgAdminWelcome)
		return nil

	case command.KindSeeQuestions:
		pending, err := e.store.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			e.send(ctx, in.ChatID, msgNoPending)
			return nil
		}
		e.send(ctx, in.ChatID, formatPendingList(pending))
		return nil

	case command.KindSeeAnswers:
		resolved, err := e.store.Resolved(ctx)
		if err != nil {
			return err
		}
		if len(resolved) == 0 {
			e.send(ctx, in.ChatID, msgNoAnswered)
			return nil
		}
		e.send(ctx, in.ChatID, formatAnsweredList(resolved))
		return nil

	case command.KindAnswer:
		e.states.SetState(in.ChatID, stateAwaitingQuestionID)
		e.send(ctx, in.ChatID, msgAskID)
		return nil

	case command.KindAnswerShortcut:
		// The shortcut wins over whatever state the admin is in, so a
		// fresh /answer_<id> can always retarget the conversation.
		return e.beginAnswer(ctx, in.ChatID, cmd.ID, cmd.Err)
	}

	switch e.states.GetState(in.ChatID) {
	case stateAwaitingQuestionID:
		id, err := command.ParseID(in.Text)
		return e.beginAnswer(ctx, in.ChatID, id, err)
	case stateAnswering:
		return e.deliverAnswer(ctx, in.ChatID, in.Text)
	default:
		e.send(ctx, in.ChatID, msgAdminUnknown)
		return nil
	}
}

// beginAnswer validates the target question and moves the admin into
// the answering state. Validation failures keep the current state so
// the admin can just try another id.
func (e *Engine) beginAnswer(ctx context.Context, chatID, id int64, parseErr error) error {
	if parseErr != nil {
		e.send(ctx, chatID, msgInvalidID)
		return nil
	}
	_, err := e.store.ByID(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.send(ctx, chatID, msgIDNotFound)
		return nil
	case errors.Is(err, storage.ErrAlreadyAnswered):
		e.send(ctx, chatID, msgAnswered)
		return nil
	case err != nil:
		return err
	}
	e.states.SetState(chatID, stateAnswering)
	e.states.SetTemp(chatID, tempQuestionID, id)
	e.send(ctx, chatID, msgAskAnswer)
	return nil
}

func (e *Engine) deliverAnswer(ctx context.Context, adminChat int64, answer string) error {
	id, ok := e.states.GetTempInt64(adminChat, tempQuestionID)
	if !ok {
		e.states.ClearState(adminChat)
		e.send(ctx, adminChat, msgAdminUnknown)
		return nil
	}

	q, err := e.store.ByID(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrAlreadyAnswered):
		e.resetAdmin(adminChat)
		e.send(ctx, adminChat, msgIDNotFound)
		return nil
	case err != nil:
		return err
	}

	if err := e.store.Resolve(ctx, id, answer); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrAlreadyAnswered) {
			e.resetAdmin(adminChat)
			e.send(ctx, adminChat, msgAnswered)
			return nil
		}
		return err
	}

	e.send(ctx, q.UserID, formatAnswerDelivery(q.Question, answer))
	e.send(ctx, adminChat, msgAnswerSent)
	e.resetAdmin(adminChat)

	logger.Info(ctx, componentEngine, "answer.delivered",
		slog.Int64("question_id", id),
		slog.Int64("user_id", q.UserID),
	)
	return nil
}

func (e *Engine) resetAdmin(adminChat int64) {
	e.states.ClearState(adminChat)
	e.states.ClearTemp(adminChat, tempQuestionID)
}

func (e *Engine) handleUser(ctx context.Context, in Inbound) error {
	cmd := command.Parse(in.Text)
	switch cmd.Kind {
	case command.KindStart:
		e.send(ctx, in.ChatID, msgUserWelcome)
		return nil

	case command.KindContact:
		e.states.SetState(in.ChatID, stateAwaitingMessage)
		e.send(ctx, in.ChatID, msgAskMessage)
		return nil

	case command.KindSeeQuestions:
		history, err := e.store.ByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		e.send(ctx, in.ChatID, formatUserHistory(history))
		return nil
	}

	// Admin-only commands are plain text on the user side, so a question
	// that happens to start with /answer still goes through.
	if e.states.GetState(in.ChatID) == stateAwaitingMessage {
		id, err := e.store.Save(ctx, in.ChatID, in.Username, in.Text)
		if err != nil {
			return err
		}
		e.send(ctx, e.adminID, formatAdminNotification(in.Username, in.Text, id))
		e.send(ctx, in.ChatID, msgUserSaved)
		e.states.ClearState(in.ChatID)
		return nil
	}

	e.send(ctx, in.ChatID, msgUserUnknown)
	return nil
}

// send delivers one reply, logging any transport failure without
// propagating it.
func (e *Engine) send(ctx context.Context, chatID int64, text string) {
	if err := e.sender.Send(ctx, chatID, text); err != nil {
		logger.Error(ctx, componentEngine, "send.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}
