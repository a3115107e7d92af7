package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

type AlertsFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	alerts   []models.Alert
	loading  bool
	err      error
	started  bool
	lastMode datamode.Mode
}

func NewAlertsFeed(src Sources) *AlertsFeed {
	return &AlertsFeed{src: src}
}

func (f *AlertsFeed) Alerts() []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

func (f *AlertsFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *AlertsFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *AlertsFeed) Refresh(ctx context.Context) {
	gen, mode := f.begin()

	if mode == datamode.ModeDemo {
		f.complete(gen, f.src.World.Alerts(), nil)
		return
	}

	alerts, err := f.src.Client.ListAlerts(ctx, f.src.Session.Token())
	if err != nil {
		f.src.Log.Warn().Err(err).Msg("alerts fetch failed")
		f.complete(gen, nil, &api.ResourceFetchError{Resource: "alerts", Err: err})
		return
	}
	f.complete(gen, alerts, nil)
}

func (f *AlertsFeed) SyncMode(ctx context.Context) {
	if !f.src.Mode.Initialized() {
		return
	}
	mode := f.src.Mode.Mode()

	f.mu.Lock()
	stale := !f.started || f.lastMode != mode
	f.mu.Unlock()

	if stale {
		f.Refresh(ctx)
	}
}

// Acknowledge marks one alert handled. Demo: local world mutation, no
// network. Real: write endpoint then unconditional refetch; no optimistic
// update, the post-refetch state is the truth.
func (f *AlertsFeed) Acknowledge(ctx context.Context, id string) error {
	if f.src.Mode.IsDemo() {
		f.src.World.AcknowledgeAlert(id)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.AcknowledgeAlert(ctx, f.src.Session.Token(), id); err != nil {
		f.setErr(&api.MutationError{Op: "acknowledge alert", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlertsFeed) AcknowledgeAll(ctx context.Context) error {
	if f.src.Mode.IsDemo() {
		f.src.World.AcknowledgeAllAlerts()
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.AcknowledgeAllAlerts(ctx, f.src.Session.Token()); err != nil {
		f.setErr(&api.MutationError{Op: "acknowledge all alerts", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlertsFeed) begin() (uint64, datamode.Mode) {
	mode := f.src.Mode.Mode()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.loading = true
	f.err = nil
	f.started = true
	f.lastMode = mode
	return f.gen, mode
}

func (f *AlertsFeed) complete(gen uint64, alerts []models.Alert, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	f.err = err
	f.alerts = alerts
}

func (f *AlertsFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
