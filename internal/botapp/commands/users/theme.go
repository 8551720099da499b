package users

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot/models"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/i18n"
	"github.com/archnets/learn-miniapp/internal/logger"
	"github.com/archnets/learn-miniapp/internal/theme"
)

// ThemeKey is where a user's preference lives in the preference store.
func ThemeKey(userID int64) string {
	return theme.StorageKey + ":" + strconv.FormatInt(userID, 10)
}

// HandleTheme shows or changes the user's theme preference.
func HandleTheme(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	if u.Message == nil || u.Message.From == nil {
		return
	}
	loc, _ := localizer(u)
	userID := u.Message.From.ID

	r := theme.NewResolver(ctx, deps.Prefs, deps.Scheme, nil,
		theme.WithStorageKey(ThemeKey(userID)),
		theme.WithLogger(logger.ForUser(userID)),
	)
	defer r.Close()

	arg := commandArg(u.Message.Text)
	if arg == "" {
		reply(ctx, s, u, themeText(r, "theme_current", loc), nil)
		return
	}

	pref, err := theme.ParsePreference(arg)
	if err != nil {
		reply(ctx, s, u, i18n.T(loc, "theme_usage"), nil)
		return
	}
	if err := r.SetTheme(ctx, pref); err != nil {
		SendError(ctx, s, u, err)
		return
	}
	reply(ctx, s, u, themeText(r, "theme_set", loc)+"\n"+themeText(r, "theme_current", loc), nil)
}

func themeText(r *theme.Resolver, id string, loc *goi18n.Localizer) string {
	return i18n.TWithData(loc, id, map[string]any{
		"Preference": string(r.Preference()),
		"Resolved":   string(r.Resolved()),
	})
}
