package app

import (
	"context"
	"log/slog"

	"confshelf/internal/store"
)

// App carries the resolved configuration and logger for one CLI run.
type App struct {
	Config Config
	Log    *slog.Logger
}

// New returns an App for cfg that logs to log.
func New(cfg Config, log *slog.Logger) *App {
	return &App{Config: cfg, Log: log}
}

// Run opens the configured store, runs fn and flushes pending changes
// on return.
func (a *App) Run(ctx context.Context, fn func(*store.Store) error) error {
	opts, err := a.Config.StoreOptions()
	if err != nil {
		return err
	}
	opts.Logger = a.Log
	return store.With(ctx, opts, fn)
}
