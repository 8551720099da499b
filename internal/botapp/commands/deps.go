// Package commands provides shared types for command handlers.
package commands

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/archnets/learn-miniapp/internal/queries"
	"github.com/archnets/learn-miniapp/internal/storage"
	"github.com/archnets/learn-miniapp/internal/theme"
)

// Sender is the part of *bot.Bot the handlers talk to.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Deps contains shared dependencies for all command handlers.
type Deps struct {
	// Cached catalog reads
	Queries *queries.Client

	// Per-user preferences, keyed by Telegram id
	Prefs  storage.Store
	Scheme theme.SchemeSource

	WebAppURL string
}
