package router

import (
	"time"

	tg "askrelay/core/telegram"
	"askrelay/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls routing of free-form text updates.
type TextOptions struct {
	// Name labels the handler in summary logs; defaults to "text".
	Name string
}

// TextRoute builds the OnText route. The conversation engine owns command
// parsing and per-chat state, so every text update flows into a single
// handler; this wrapper only contributes the shared middleware chain and
// handler-summary logging.
func TextRoute(handler tele.HandlerFunc, opts TextOptions) tg.Route {
	name := opts.Name
	if name == "" {
		name = "text"
	}
	h := func(c tele.Context) error {
		start := time.Now()
		if c.Text() == "" {
			logHandlerSummary(c, name, start, "skip", "ok", nil)
			return nil
		}
		return handleWithSummary(c, name, start, "", "", func() error {
			return handler(c)
		})
	}
	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}
