package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"askrelay/bot/engine"
	"askrelay/bot/storage"
	"askrelay/core/bootstrap"
	corecmd "askrelay/core/cmd"
	"askrelay/core/logger"
	coretelegram "askrelay/core/telegram"
	"askrelay/core/telegram/commands"
	tghelpers "askrelay/core/telegram/helpers"
	"askrelay/core/telegram/router"
	tgsender "askrelay/core/telegram/sender"
	"askrelay/core/telegram/state"
)

// App wires the conversation engine into the Telegram runtime.
type App struct {
	cfg    *Config
	db     *sqlx.DB
	store  *storage.Store
	states state.Manager

	runtime atomic.Pointer[coretelegram.Runtime]
}

// Bootstrap initializes infrastructure and assembles the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	result, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		db:     result.DB,
		store:  storage.NewStore(result.DB),
		states: state.NewMemoryManager(),
	}, nil
}

// TelegramRunOptions builds the bot wiring: registry, routes, middleware
// chain, and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	h := a.engineHandler()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h,
		Description: "Show available commands",
	})
	reg.RegisterCommand("/contact", commands.Command{
		Handler:     h,
		Description: "Send a question to the administrator",
	})
	reg.RegisterCommand("/see_questions", commands.Command{
		Handler:     h,
		Description: "View your questions",
	})
	reg.RegisterCommand("/see_answers", commands.Command{
		Handler:     h,
		Description: "View answered questions",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/answer", commands.Command{
		Handler:     h,
		Description: "Answer a question",
		AdminOnly:   true,
	})
	reg.SetTextFallback(h)

	// A rejected admin command falls through to the engine, which
	// treats it as plain text on the user side.
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: h,
	})
	routes = append(routes, router.TextRoute(reg.TextFallback(), router.TextOptions{Name: "relay"}))

	return coretelegram.RunOptions{
		Config:   a.cfg.CoreConfig(),
		Registry: reg,
		// A single worker keeps outbound sends in submission order, so
		// the user's answer always lands before the admin confirmation.
		DispatcherOptions: tgsender.Options{Workers: 1},
		Middlewares:       coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:            routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.runtime.Store(&rt)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

// engineHandler adapts a telebot update into an engine Inbound. A
// storage failure is unrecoverable here: it is logged and the update
// loop is stopped so the process can restart against a healthy
// database.
func (a *App) engineHandler() tele.HandlerFunc {
	return func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)

		var dispatcher *tgsender.Dispatcher
		var stop func()
		if rt := a.runtime.Load(); rt != nil {
			dispatcher = rt.Dispatcher
			stop = rt.Stop
		}

		eng := engine.New(a.store, a.states,
			&contextSender{c: c, dispatcher: dispatcher},
			a.cfg.Telegram.AdminID)

		err := eng.Handle(ctx, engine.Inbound{
			ChatID:   chat.ID,
			Username: senderUsername(c),
			Text:     c.Text(),
		})
		if err != nil {
			logger.Error(ctx, "tg", "storage.failure",
				slog.Int64("chat_id", chat.ID),
				slog.String("err", err.Error()),
			)
			if stop != nil {
				stop()
			}
			return err
		}
		return nil
	}
}
