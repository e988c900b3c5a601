package session

import (
	"context"
	"time"

	"max.ks1230/roundup-bot/internal/logger"
)

type watcherConfig interface {
	ResyncDelay() int64
}

// Watcher periodically re-syncs a Binding against the durable active-user
// key, standing in for the cross-tab focus and storage events of a browser
// host.
type Watcher struct {
	binding *Binding
	delay   time.Duration
}

func NewWatcher(binding *Binding, config watcherConfig) *Watcher {
	return &Watcher{
		binding: binding,
		delay:   time.Duration(config.ResyncDelay()) * time.Second,
	}
}

func (w *Watcher) Watch(ctx context.Context) {
	ticker := time.NewTicker(w.delay)
	defer ticker.Stop()

	logger.Info("Start watching active user")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop watching active user")
			return
		case <-ticker.C:
			w.binding.Resync()
		}
	}
}
