package users

import (
	"context"

	"github.com/go-telegram/bot/models"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/i18n"
)

// HandleWebApp sends the Mini App launch button.
func HandleWebApp(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	if u.Message == nil {
		return
	}
	loc, _ := localizer(u)

	markup := webAppMarkup(loc, deps.WebAppURL)
	if markup == nil {
		reply(ctx, s, u, i18n.T(loc, "webapp_unavailable"), nil)
		return
	}
	reply(ctx, s, u, i18n.T(loc, "webapp_prompt"), markup)
}

// webAppMarkup returns nil when no app URL is configured.
func webAppMarkup(loc *goi18n.Localizer, url string) models.ReplyMarkup {
	if url == "" {
		return nil
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{
					Text:   i18n.T(loc, "open_app"),
					WebApp: &models.WebAppInfo{URL: url},
				},
			},
		},
	}
}
