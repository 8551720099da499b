package users

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/i18n"
	"github.com/archnets/learn-miniapp/internal/logger"
)

// HandleStart greets the user and offers the app button.
func HandleStart(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	if u.Message == nil {
		return
	}
	loc, _ := localizer(u)

	var name string
	if u.Message.From != nil {
		name = u.Message.From.FirstName
	}
	text := i18n.TWithData(loc, "welcome", map[string]any{"Name": name})

	reply(ctx, s, u, text, webAppMarkup(loc, deps.WebAppURL))
	logger.ForUpdate(u).Infof("Start command handled")
}
