// Package datamode owns the demo/real data source flag. Demo mode feeds the
// UI from fixtures; real mode requires an authenticated session. The only
// automatic transition is real→demo when the session ends; entering real mode
// always takes an explicit user action.
package datamode

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/store"
)

type Mode string

const (
	ModeDemo Mode = "demo"
	ModeReal Mode = "real"
)

// Storage key, owned by this package.
const keyMode = "@preventis_data_mode"

// SessionEvents is the slice of the session manager the reconciler needs.
type SessionEvents interface {
	OnSessionEnded(func())
}

type Reconciler struct {
	store *store.Store
	log   zerolog.Logger

	mu          sync.Mutex
	mode        Mode
	initialized bool
}

func New(st *store.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: st, log: log, mode: ModeDemo}
}

// Init reads the persisted mode, defaulting to demo (and persisting the
// default) when nothing is stored. Runs its body exactly once; consumers must
// treat the mode as indeterminate until Initialized reports true.
func (r *Reconciler) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return
	}

	saved, ok, err := r.store.Get(keyMode)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to read stored data mode")
	}
	switch {
	case ok && (Mode(saved) == ModeDemo || Mode(saved) == ModeReal):
		r.mode = Mode(saved)
	default:
		r.mode = ModeDemo
		r.persistLocked()
	}
	r.initialized = true
}

func (r *Reconciler) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

func (r *Reconciler) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *Reconciler) IsDemo() bool {
	return r.Mode() == ModeDemo
}

func (r *Reconciler) IsReal() bool {
	return r.Mode() == ModeReal
}

// SetMode is the explicit user-driven transition; persisted immediately.
func (r *Reconciler) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
	r.persistLocked()
}

func (r *Reconciler) Toggle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == ModeDemo {
		r.mode = ModeReal
	} else {
		r.mode = ModeDemo
	}
	r.persistLocked()
}

// Watch subscribes to the session-ended event. Losing authentication while
// in real mode forces demo; the event fires once per loss, so the mode
// cannot oscillate however often session state is read during the
// transition. Login never promotes to real.
func (r *Reconciler) Watch(events SessionEvents) {
	events.OnSessionEnded(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.mode != ModeReal {
			return
		}
		r.log.Info().Msg("session ended, falling back to demo mode")
		r.mode = ModeDemo
		r.persistLocked()
	})
}

func (r *Reconciler) persistLocked() {
	if err := r.store.Set(keyMode, string(r.mode)); err != nil {
		r.log.Warn().Err(err).Msg("failed to persist data mode")
	}
}
