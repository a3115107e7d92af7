// Package daemon runs the background polling loops that keep dashboard state
// fresh: a connectivity check on a slow tick and sensor plus history refresh
// on a fast tick. Both loops stop on context cancellation; neither does any
// work while its governing condition (real mode, authenticated session,
// selected device) does not hold.
package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/config"
	"github.com/stark-server/preventis-desktop/internal/client/data"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/internal/client/session"
)

type Watcher struct {
	feeds   *data.Feeds
	session *session.Manager
	mode    *datamode.Reconciler
	log     zerolog.Logger

	healthInterval  time.Duration
	historyInterval time.Duration
}

func NewWatcher(feeds *data.Feeds, sess *session.Manager, mode *datamode.Reconciler, cfg *config.Config, log zerolog.Logger) *Watcher {
	healthInterval := cfg.HealthInterval
	if healthInterval <= 0 {
		healthInterval = config.DefaultHealthInterval
	}
	historyInterval := cfg.HistoryInterval
	if historyInterval <= 0 {
		historyInterval = config.DefaultHistoryInterval
	}
	return &Watcher{
		feeds:           feeds,
		session:         sess,
		mode:            mode,
		log:             log,
		healthInterval:  healthInterval,
		historyInterval: historyInterval,
	}
}

// Run blocks until ctx is cancelled. An initial pass runs immediately so the
// first view is not empty for a full tick.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info().
		Dur("health_interval", w.healthInterval).
		Dur("history_interval", w.historyInterval).
		Msg("watch daemon started")

	healthTicker := time.NewTicker(w.healthInterval)
	defer healthTicker.Stop()

	historyTicker := time.NewTicker(w.historyInterval)
	defer historyTicker.Stop()

	w.checkHealth(ctx)
	w.refreshResources(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watch daemon stopped")
			return nil

		case <-healthTicker.C:
			w.checkHealth(ctx)
			w.refreshResources(ctx)

		case <-historyTicker.C:
			w.fastRefresh(ctx)
		}
	}
}

// checkHealth pings the backend. The status monitor itself idles in demo
// mode, so no gating is needed here.
func (w *Watcher) checkHealth(ctx context.Context) {
	w.feeds.Status.Check(ctx)
}

// refreshResources reloads every list resource on the slow tick.
func (w *Watcher) refreshResources(ctx context.Context) {
	w.feeds.Sensors.Refresh(ctx)
	w.feeds.Alerts.Refresh(ctx)
	w.feeds.Zones.Refresh(ctx)
	w.feeds.Alarm.Refresh(ctx)
	w.feeds.Stats.Refresh(ctx)
}

// fastRefresh keeps the live readings moving. Sensors and the selected
// device's history update on the fast tick, but only while there is a real
// authenticated session to poll against.
func (w *Watcher) fastRefresh(ctx context.Context) {
	if !w.mode.IsReal() || !w.session.IsAuthenticated() {
		return
	}

	w.feeds.Sensors.Refresh(ctx)
	if w.feeds.History.Device() != "" {
		w.feeds.History.Refresh(ctx)
	}
}
