package bot

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"askrelay/core/logger"
	tgsender "askrelay/core/telegram/sender"
)

// contextSender adapts one update's tele.Context to the engine's Sender.
// Replies to the current chat go through c.Send so the reply counter in
// the handler summary stays accurate; deliveries to other chats use the
// bot API directly. Both paths are enqueued on the outbound dispatcher
// and fall back to a synchronous call when the queue is unavailable.
type contextSender struct {
	c          tele.Context
	dispatcher *tgsender.Dispatcher
}

func (s *contextSender) Send(ctx context.Context, chatID int64, text string) error {
	run := func() error {
		if chat := s.c.Chat(); chat != nil && chat.ID == chatID {
			return s.c.Send(text)
		}
		_, err := s.c.Bot().Send(tele.ChatID(chatID), text)
		return err
	}

	if s.dispatcher == nil {
		return run()
	}
	if err := s.dispatcher.Enqueue(ctx, "send.text", "sendMessage", run); err != nil {
		if errors.Is(err, tgsender.ErrQueueFull) || errors.Is(err, tgsender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

func senderUsername(c tele.Context) string {
	if u := c.Sender(); u != nil {
		return u.Username
	}
	return ""
}
