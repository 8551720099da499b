package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/archnets/learn-miniapp/config"
	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/botapp"
	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/logger"
	"github.com/archnets/learn-miniapp/internal/queries"
	"github.com/archnets/learn-miniapp/internal/query"
	"github.com/archnets/learn-miniapp/internal/storage"
	"github.com/archnets/learn-miniapp/internal/theme"
)

func main() {
	// Handle Ctrl+C / SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.RequireBotToken(); err != nil {
		logger.Errorf("Config: %v", err)
		os.Exit(1)
	}

	prefs, err := storage.Open(ctx, cfg.DataDir, cfg.RedisAddr)
	if err != nil {
		logger.Errorf("Open preference store: %v", err)
		os.Exit(1)
	}
	defer prefs.Close()

	// The bot reads only public catalog data, so it has no host session.
	client := api.NewClient(cfg.APIBaseURL,
		api.WithDefaultTimeout(cfg.RequestTimeout),
		api.WithDefaultMaxRetries(cfg.MaxRetries),
		api.WithRetryDelay(cfg.RetryDelay),
	)
	store := query.NewStore()
	go store.RunJanitor(ctx, queries.CatalogPolicy.StaleTime)

	deps := botapp.Dependencies{
		Queries:   queries.New(store, core.NewServices(client, host.Unavailable()), nil),
		Prefs:     prefs,
		Scheme:    theme.NewSchemeFeed(theme.ParseScheme(cfg.ColorScheme)),
		WebAppURL: cfg.WebAppURL,
	}

	b, err := botapp.NewBot(cfg.BotToken, deps)
	if err != nil {
		logger.Errorf("Failed to create bot: %v", err)
		os.Exit(1)
	}

	logger.Infof("Starting Telegram bot...")
	b.Start(ctx)
	logger.Infof("Bot stopped")
}
