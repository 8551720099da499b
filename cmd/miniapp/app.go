package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/archnets/learn-miniapp/config"
	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/logger"
	"github.com/archnets/learn-miniapp/internal/queries"
	"github.com/archnets/learn-miniapp/internal/query"
	"github.com/archnets/learn-miniapp/internal/storage"
	"github.com/archnets/learn-miniapp/internal/theme"
)

// app is everything a client command needs, built from the environment.
type app struct {
	cfg     config.Config
	bridge  host.Bridge
	svc     *core.Services
	queries *queries.Client
	prefs   storage.Store
	scheme  *theme.SchemeFeed
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)

	bridge := host.FromInitData(cfg.InitData, func(s host.HapticStyle) {
		logger.Debugf("Haptic feedback: %s", s)
	})
	if !bridge.IsAvailable() {
		logger.Debugf("No host init data, running outside Telegram")
	}

	client := api.NewClient(cfg.APIBaseURL,
		api.WithHost(bridge),
		api.WithDefaultTimeout(cfg.RequestTimeout),
		api.WithDefaultMaxRetries(cfg.MaxRetries),
		api.WithRetryDelay(cfg.RetryDelay),
	)

	prefs, err := storage.Open(ctx, cfg.DataDir, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	svc := core.NewServices(client, bridge)
	return &app{
		cfg:     cfg,
		bridge:  bridge,
		svc:     svc,
		queries: queries.New(query.NewStore(), svc, bridge),
		prefs:   prefs,
		scheme:  theme.NewSchemeFeed(theme.ParseScheme(cfg.ColorScheme)),
	}, nil
}

// themeResolver persists the preference in prefs and mirrors the rendered
// theme into a marker file next to the data directory.
func (a *app) themeResolver(ctx context.Context) *theme.Resolver {
	var applier theme.Applier
	if a.cfg.DataDir != ":memory:" {
		applier = theme.MarkerFile(filepath.Join(a.cfg.DataDir, "theme.current"))
	}
	return theme.NewResolver(ctx, a.prefs, a.scheme, applier)
}

func (a *app) close() {
	if err := a.prefs.Close(); err != nil {
		logger.Warnf("Closing storage: %v", err)
	}
	logger.Sync()
}
