package botapp

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/botapp/commands/users"
)

type Dependencies = commands.Deps

var middleware = commands.Chain(commands.WithRecover, commands.WithLogging, commands.WithUser)

// route adapts a command handler to the bot library's signature.
func route(h commands.HandlerFunc, deps Dependencies) bot.HandlerFunc {
	wrapped := middleware(h)
	return func(ctx context.Context, b *bot.Bot, u *models.Update) {
		wrapped(ctx, b, u, deps)
	}
}

func NewBot(token string, deps Dependencies, extra ...bot.Option) (*bot.Bot, error) {
	opts := []bot.Option{
		bot.WithCheckInitTimeout(5 * time.Second),
		bot.WithDefaultHandler(route(users.HandleDefault, deps)),
	}
	opts = append(opts, extra...)

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}

	// /start
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, route(users.HandleStart, deps))

	// /webapp - Mini App launch button
	b.RegisterHandler(bot.HandlerTypeMessageText, "/webapp", bot.MatchTypeExact, route(users.HandleWebApp, deps))

	// /courses [difficulty]
	b.RegisterHandler(bot.HandlerTypeMessageText, "/courses", bot.MatchTypePrefix, route(users.HandleCourses, deps))

	// /course <id>
	b.RegisterHandler(bot.HandlerTypeMessageText, "/course ", bot.MatchTypePrefix, route(users.HandleCourse, deps))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/course", bot.MatchTypeExact, route(users.HandleCourse, deps))

	// /theme [light|dark|system]
	b.RegisterHandler(bot.HandlerTypeMessageText, "/theme", bot.MatchTypePrefix, route(users.HandleTheme, deps))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, route(users.HandleHelp, deps))

	return b, nil
}
