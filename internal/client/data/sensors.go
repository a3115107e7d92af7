package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

type SensorsFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	sensors  []models.Sensor
	loading  bool
	err      error
	started  bool
	lastMode datamode.Mode
}

func NewSensorsFeed(src Sources) *SensorsFeed {
	return &SensorsFeed{src: src}
}

func (f *SensorsFeed) Sensors() []models.Sensor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Sensor, len(f.sensors))
	copy(out, f.sensors)
	return out
}

func (f *SensorsFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *SensorsFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Refresh reloads the sensor list from the active source. Demo mode copies
// the shared fixture world and never touches the network; real mode fetches
// with bearer auth and clears the list on failure.
func (f *SensorsFeed) Refresh(ctx context.Context) {
	gen, mode := f.begin()

	if mode == datamode.ModeDemo {
		f.complete(gen, f.src.World.Sensors(), nil)
		return
	}

	sensors, err := f.src.Client.ListDevices(ctx, f.src.Session.Token())
	if err != nil {
		f.src.Log.Warn().Err(err).Msg("sensors fetch failed")
		f.complete(gen, nil, &api.ResourceFetchError{Resource: "sensors", Err: err})
		return
	}
	f.complete(gen, sensors, nil)
}

// SyncMode refreshes when the data mode changed since the last refresh. The
// initial refresh records the mode it saw, so mount and mode-change fetches
// never double-fire.
func (f *SensorsFeed) SyncMode(ctx context.Context) {
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

// CreateDevice registers a new sensor. Demo mode creates it locally in the
// fixture world; real mode posts to the backend and refetches.
func (f *SensorsFeed) CreateDevice(ctx context.Context, name string, typ models.SensorType, location string) (*models.Sensor, error) {
	if f.src.Mode.IsDemo() {
		sensor := f.src.World.AddDevice(name, typ, location)
		f.Refresh(ctx)
		return &sensor, nil
	}

	threshold, unit := models.SensorDefaults(typ)
	created, err := f.src.Client.CreateDevice(ctx, f.src.Session.Token(), models.Sensor{
		Name:      name,
		Type:      typ,
		Location:  location,
		Threshold: threshold,
		Unit:      unit,
	})
	if err != nil {
		f.setErr(&api.MutationError{Op: "create device", Err: err})
		return nil, err
	}
	f.Refresh(ctx)
	return created, nil
}

func (f *SensorsFeed) DeleteDevice(ctx context.Context, id string) error {
	if f.src.Mode.IsDemo() {
		f.src.World.RemoveDevice(id)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.DeleteDevice(ctx, f.src.Session.Token(), id); err != nil {
		f.setErr(&api.MutationError{Op: "delete device", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *SensorsFeed) begin() (uint64, datamode.Mode) {
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

// complete applies a refresh result unless a newer refresh has started since;
// the late response of a superseded request is dropped.
func (f *SensorsFeed) complete(gen uint64, sensors []models.Sensor, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	f.err = err
	f.sensors = sensors
}

func (f *SensorsFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
