package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

type ZonesFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	zones    []models.Zone
	loading  bool
	err      error
	started  bool
	lastMode datamode.Mode
}

func NewZonesFeed(src Sources) *ZonesFeed {
	return &ZonesFeed{src: src}
}

func (f *ZonesFeed) Zones() []models.Zone {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Zone, len(f.zones))
	copy(out, f.zones)
	return out
}

func (f *ZonesFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *ZonesFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *ZonesFeed) Refresh(ctx context.Context) {
	gen, mode := f.begin()

	if mode == datamode.ModeDemo {
		f.complete(gen, f.src.World.Zones(), nil)
		return
	}

	zones, err := f.src.Client.ListZones(ctx, f.src.Session.Token())
	if err != nil {
		f.src.Log.Warn().Err(err).Msg("zones fetch failed")
		f.complete(gen, nil, &api.ResourceFetchError{Resource: "zones", Err: err})
		return
	}
	f.complete(gen, zones, nil)
}

func (f *ZonesFeed) SyncMode(ctx context.Context) {
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

// SetArmed arms or disarms one zone. Real mode writes then refetches; the
// returned zones always reflect the backend, never an optimistic guess.
func (f *ZonesFeed) SetArmed(ctx context.Context, id string, armed bool) error {
	if f.src.Mode.IsDemo() {
		f.src.World.SetZoneArmed(id, armed)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.SetZoneArmed(ctx, f.src.Session.Token(), id, armed); err != nil {
		f.setErr(&api.MutationError{Op: "arm zone", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *ZonesFeed) begin() (uint64, datamode.Mode) {
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

func (f *ZonesFeed) complete(gen uint64, zones []models.Zone, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	f.err = err
	f.zones = zones
}

func (f *ZonesFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
