package users

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/i18n"
)

func HandleHelp(ctx context.Context, s commands.Sender, u *models.Update, _ commands.Deps) {
	if u.Message == nil {
		return
	}
	loc, _ := localizer(u)
	reply(ctx, s, u, i18n.T(loc, "help"), nil)
}

// HandleDefault answers anything unrecognised with the command list.
func HandleDefault(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	HandleHelp(ctx, s, u, deps)
}
