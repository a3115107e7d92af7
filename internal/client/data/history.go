package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

// HistoryFeed is the time-series feed for one selected device. Unlike the
// list feeds, a failed re-fetch keeps the previously displayed series: a
// chart holding slightly stale points reads better than one that blanks out
// on every transient error. The error is still recorded.
type HistoryFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	deviceID string
	period   models.HistoryPeriod
	points   []models.HistoryPoint
	loading  bool
	err      error
}

func NewHistoryFeed(src Sources) *HistoryFeed {
	return &HistoryFeed{src: src, period: models.Period1Hour}
}

func (f *HistoryFeed) Points() []models.HistoryPoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.HistoryPoint, len(f.points))
	copy(out, f.points)
	return out
}

func (f *HistoryFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *HistoryFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *HistoryFeed) Device() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deviceID
}

func (f *HistoryFeed) Period() models.HistoryPeriod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

// SetDevice selects the device whose history is shown. Changing the id
// refetches immediately; clearing it (empty id) drops the series.
func (f *HistoryFeed) SetDevice(ctx context.Context, id string) {
	f.mu.Lock()
	if f.deviceID == id {
		f.mu.Unlock()
		return
	}
	f.deviceID = id
	f.points = nil
	f.err = nil
	f.mu.Unlock()

	if id != "" {
		f.Refresh(ctx)
	}
}

// SetPeriod switches the time window and refetches. Invalid periods are
// ignored.
func (f *HistoryFeed) SetPeriod(ctx context.Context, period models.HistoryPeriod) {
	if !period.Valid() {
		return
	}

	f.mu.Lock()
	if f.period == period {
		f.mu.Unlock()
		return
	}
	f.period = period
	f.mu.Unlock()

	f.Refresh(ctx)
}

// Refresh fetches the series. History only exists in real mode with an
// authenticated session and a selected device; otherwise the series is
// cleared without error.
func (f *HistoryFeed) Refresh(ctx context.Context) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	deviceID := f.deviceID
	period := f.period
	f.mu.Unlock()

	if deviceID == "" || !f.src.Mode.IsReal() || !f.src.Session.IsAuthenticated() {
		f.mu.Lock()
		if gen == f.gen {
			f.points = nil
			f.loading = false
			f.err = nil
		}
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	points, err := f.src.Client.DeviceHistory(ctx, f.src.Session.Token(), deviceID, period)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	if err != nil {
		// Keep the last good series; only record the failure.
		f.src.Log.Warn().Err(err).Str("device", deviceID).Msg("history fetch failed")
		f.err = &api.ResourceFetchError{Resource: "history", Err: err}
		return
	}
	f.err = nil
	f.points = points
}
