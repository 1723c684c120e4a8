package app

import (
	"context"
	"errors"

	"github.com/bereanapp/berean/internal/cachestore"
	"github.com/bereanapp/berean/internal/config"
	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/registry"
)

// App is the application container (immutable dependencies + lifecycle
// context). It is not a request context; handlers should still use gin's
// request context.
type App struct {
	Config       *config.Config
	Storage      *cachestore.Storage
	Registration *registry.Registration

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, storage *cachestore.Storage, reg *registry.Registration) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if storage == nil {
		return nil, errors.New("storage is nil")
	}
	if reg == nil {
		return nil, errors.New("registration is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:       cfg,
		Storage:      storage,
		Registration: reg,
		BaseCtx:      ctx,
		Cancel:       cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}

// StartWatchers starts the update poller and, when enabled, the fsnotify
// watcher on the precache manifest.
func (a *App) StartWatchers() {
	a.Registration.StartUpdatePoller(a.BaseCtx)

	if a.Config.Cache.WatchManifest {
		if err := a.Registration.StartManifestWatcher(a.BaseCtx); err != nil {
			logger.WithComponent("app").Warnf("manifest watcher unavailable: %v", err)
		}
	}
}
