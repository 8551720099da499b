// Package users holds the handlers for learner-facing commands.
package users

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/i18n"
	"github.com/archnets/learn-miniapp/internal/logger"
)

func localizer(u *models.Update) (*goi18n.Localizer, string) {
	var lang string
	if user := commands.UserFromUpdate(u); user != nil {
		lang = user.LanguageCode
	}
	return i18n.Localizer(lang), lang
}

// reply sends text to the chat the update came from.
func reply(ctx context.Context, s commands.Sender, u *models.Update, text string, markup models.ReplyMarkup) {
	chatID := commands.ChatIDFromUpdate(u)
	if chatID == 0 {
		return
	}
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := s.SendMessage(ctx, params); err != nil {
		logger.ForUpdate(u).Warnf("Send message: %v", err)
	}
}

// SendError sends a localized message derived from err.
func SendError(ctx context.Context, s commands.Sender, u *models.Update, err error) {
	_, lang := localizer(u)
	logger.ForUpdate(u).Errorf("Command failed: %v", err)
	reply(ctx, s, u, i18n.ErrorText(lang, err), nil)
}

// commandArg returns the first argument after the command word.
// "/course@LearnBot algebra-1" yields "algebra-1".
func commandArg(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
