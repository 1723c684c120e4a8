package registry

import (
	"context"
	"time"

	"github.com/bereanapp/berean/internal/logger"
)

// StartUpdatePoller runs a goroutine that checks for a newer cache version
// on the configured interval. One check runs immediately, covering an
// update that arrived while the app was not running. Returns a channel
// that is closed when the poller has stopped.
func (r *Registration) StartUpdatePoller(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("registry").Debugf("starting update poller with interval: %v", r.poll)
	ticker := time.NewTicker(r.poll)
	go func() {
		defer close(done)
		defer ticker.Stop()
		r.checkForUpdate(ctx)
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("registry").Info("update poller stopped")
				return
			case <-ticker.C:
				r.checkForUpdate(ctx)
			}
		}
	}()
	return done
}

// checkForUpdate runs one update check. A failed check produces no prompt
// this cycle and is retried on the next tick.
func (r *Registration) checkForUpdate(ctx context.Context) {
	logger.WithComponent("registry").Tracef("update poller tick")
	if err := r.Update(ctx); err != nil {
		logger.WithComponent("registry").Warnf("update check failed, retrying next interval: %v", err)
	}
}
