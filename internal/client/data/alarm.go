package data

import (
	"context"
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

type AlarmFeed struct {
	src Sources

	mu       sync.Mutex
	gen      uint64
	state    models.AlarmState
	loading  bool
	err      error
	started  bool
	lastMode datamode.Mode
}

func NewAlarmFeed(src Sources) *AlarmFeed {
	return &AlarmFeed{src: src, state: disarmedState()}
}

// disarmedState is the safe default shown when nothing has loaded or a fetch
// failed.
func disarmedState() models.AlarmState {
	return models.AlarmState{Mode: models.AlarmOff}
}

func (f *AlarmFeed) State() models.AlarmState {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.state
	if f.state.LastArmedAt != nil {
		t := *f.state.LastArmedAt
		state.LastArmedAt = &t
	}
	return state
}

func (f *AlarmFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *AlarmFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *AlarmFeed) Refresh(ctx context.Context) {
	gen, mode := f.begin()

	if mode == datamode.ModeDemo {
		f.complete(gen, f.src.World.Alarm(), nil)
		return
	}

	state, err := f.src.Client.AlarmState(ctx, f.src.Session.Token())
	if err != nil {
		f.src.Log.Warn().Err(err).Msg("alarm fetch failed")
		f.complete(gen, disarmedState(), &api.ResourceFetchError{Resource: "alarm", Err: err})
		return
	}
	f.complete(gen, *state, nil)
}

func (f *AlarmFeed) SyncMode(ctx context.Context) {
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

func (f *AlarmFeed) SetMode(ctx context.Context, mode models.AlarmMode) error {
	if f.src.Mode.IsDemo() {
		f.src.World.SetAlarmMode(mode)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.SetAlarmMode(ctx, f.src.Session.Token(), mode); err != nil {
		f.setErr(&api.MutationError{Op: "set alarm mode", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlarmFeed) SetSiren(ctx context.Context, active bool) error {
	if f.src.Mode.IsDemo() {
		f.src.World.SetSiren(active)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.SetAlarmSiren(ctx, f.src.Session.Token(), active); err != nil {
		f.setErr(&api.MutationError{Op: "set siren", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlarmFeed) Trigger(ctx context.Context, reason, sensorID string) error {
	if f.src.Mode.IsDemo() {
		f.src.World.TriggerAlarm(reason)
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.TriggerAlarm(ctx, f.src.Session.Token(), reason, sensorID); err != nil {
		f.setErr(&api.MutationError{Op: "trigger alarm", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlarmFeed) Reset(ctx context.Context) error {
	if f.src.Mode.IsDemo() {
		f.src.World.ResetAlarm()
		f.Refresh(ctx)
		return nil
	}

	if err := f.src.Client.ResetAlarm(ctx, f.src.Session.Token()); err != nil {
		f.setErr(&api.MutationError{Op: "reset alarm", Err: err})
		return err
	}
	f.Refresh(ctx)
	return nil
}

func (f *AlarmFeed) begin() (uint64, datamode.Mode) {
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

func (f *AlarmFeed) complete(gen uint64, state models.AlarmState, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	f.err = err
	f.state = state
}

func (f *AlarmFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
