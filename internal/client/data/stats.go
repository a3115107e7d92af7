package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

type StatsFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	stats    models.SystemStats
	loading  bool
	err      error
	started  bool
	lastMode datamode.Mode
}

func NewStatsFeed(src Sources) *StatsFeed {
	return &StatsFeed{src: src}
}

func (f *StatsFeed) Stats() models.SystemStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := f.stats
	if f.stats.LastIncident != nil {
		t := *f.stats.LastIncident
		stats.LastIncident = &t
	}
	return stats
}

func (f *StatsFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *StatsFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *StatsFeed) Refresh(ctx context.Context) {
	gen, mode := f.begin()

	if mode == datamode.ModeDemo {
		f.complete(gen, f.src.World.Stats(), nil)
		return
	}

	stats, err := f.src.Client.Stats(ctx, f.src.Session.Token())
	if err != nil {
		f.src.Log.Warn().Err(err).Msg("stats fetch failed")
		f.complete(gen, models.SystemStats{}, &api.ResourceFetchError{Resource: "stats", Err: err})
		return
	}
	f.complete(gen, *stats, nil)
}

func (f *StatsFeed) SyncMode(ctx context.Context) {
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

func (f *StatsFeed) begin() (uint64, datamode.Mode) {
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

func (f *StatsFeed) complete(gen uint64, stats models.SystemStats, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	f.err = err
	f.stats = stats
}
