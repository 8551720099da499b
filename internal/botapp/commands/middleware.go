package commands

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/archnets/learn-miniapp/internal/logger"
)

// HandlerFunc is the standard signature for all command handlers.
type HandlerFunc func(ctx context.Context, s Sender, u *models.Update, deps Deps)

// Middleware wraps a handler to add functionality.
type Middleware func(HandlerFunc) HandlerFunc

// WithRecover stops a panicking handler from taking the bot down.
func WithRecover(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, s Sender, u *models.Update, deps Deps) {
		defer func() {
			if r := recover(); r != nil {
				logger.ForUpdate(u).Errorf("Handler panic: %v\n%s", r, debug.Stack())
			}
		}()
		next(ctx, s, u, deps)
	}
}

// WithLogging logs each handled message and how long it took.
func WithLogging(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, s Sender, u *models.Update, deps Deps) {
		start := time.Now()
		next(ctx, s, u, deps)

		if u.Message != nil {
			logger.ForUpdate(u).Debugf("Handled %q in %s", u.Message.Text, time.Since(start))
		}
	}
}

// WithUser drops updates that carry no sender.
func WithUser(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, s Sender, u *models.Update, deps Deps) {
		if UserFromUpdate(u) == nil || ChatIDFromUpdate(u) == 0 {
			return
		}
		next(ctx, s, u, deps)
	}
}

// Chain combines multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// --- Helpers ---

// UserFromUpdate extracts the user from any update type.
func UserFromUpdate(u *models.Update) *models.User {
	if u.Message != nil {
		return u.Message.From
	}
	if u.CallbackQuery != nil {
		return &u.CallbackQuery.From
	}
	return nil
}

// ChatIDFromUpdate extracts the chat ID from any update type.
func ChatIDFromUpdate(u *models.Update) int64 {
	if u.Message != nil {
		return u.Message.Chat.ID
	}
	if u.CallbackQuery != nil {
		return u.CallbackQuery.From.ID
	}
	return 0
}
