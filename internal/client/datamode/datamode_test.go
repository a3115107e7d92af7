package datamode

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/store"
)

// fakeSession implements SessionEvents and lets tests fire the session-ended
// event directly.
type fakeSession struct {
	subs []func()
}

func (f *fakeSession) OnSessionEnded(fn func()) { f.subs = append(f.subs, fn) }

func (f *fakeSession) end() {
	for _, fn := range f.subs {
		fn()
	}
}

func TestInit_DefaultsToDemoAndPersists(t *testing.T) {
	st := store.New(t.TempDir())
	r := New(st, zerolog.Nop())

	if r.Initialized() {
		t.Fatal("reconciler must not report initialized before Init")
	}
	r.Init()
	if !r.Initialized() {
		t.Fatal("Init must mark the reconciler initialized")
	}
	if r.Mode() != ModeDemo {
		t.Errorf("default mode = %q, want demo", r.Mode())
	}

	if v, ok, _ := st.Get("@preventis_data_mode"); !ok || v != "demo" {
		t.Errorf("default must be persisted, got %q (present=%v)", v, ok)
	}
}

func TestSetMode_SurvivesRestart(t *testing.T) {
	st := store.New(t.TempDir())

	r := New(st, zerolog.Nop())
	r.Init()
	r.SetMode(ModeReal)

	r2 := New(st, zerolog.Nop())
	r2.Init()
	if r2.Mode() != ModeReal {
		t.Errorf("mode after restart = %q, want real", r2.Mode())
	}
}

func TestInit_InvalidStoredValueFallsBackToDemo(t *testing.T) {
	st := store.New(t.TempDir())
	st.Set("@preventis_data_mode", "turbo")

	r := New(st, zerolog.Nop())
	r.Init()
	if r.Mode() != ModeDemo {
		t.Errorf("invalid stored mode must fall back to demo, got %q", r.Mode())
	}
}

func TestWatch_SessionEndForcesDemo(t *testing.T) {
	st := store.New(t.TempDir())
	r := New(st, zerolog.Nop())
	r.Init()

	sess := &fakeSession{}
	r.Watch(sess)

	r.SetMode(ModeReal)
	sess.end()

	if r.Mode() != ModeDemo {
		t.Errorf("session end in real mode must force demo, got %q", r.Mode())
	}
	if v, _, _ := st.Get("@preventis_data_mode"); v != "demo" {
		t.Errorf("forced demo must be persisted, got %q", v)
	}
}

func TestWatch_SessionEndInDemoIsNoop(t *testing.T) {
	st := store.New(t.TempDir())
	r := New(st, zerolog.Nop())
	r.Init()

	sess := &fakeSession{}
	r.Watch(sess)
	sess.end()

	if r.Mode() != ModeDemo {
		t.Errorf("mode = %q, want demo", r.Mode())
	}
}

func TestNoAutomaticPromotionToReal(t *testing.T) {
	st := store.New(t.TempDir())
	r := New(st, zerolog.Nop())
	r.Init()

	sess := &fakeSession{}
	r.Watch(sess)

	// Nothing the session does ever moves demo to real; only SetMode and
	// Toggle do, and both are user-driven.
	sess.end()
	if r.Mode() != ModeDemo {
		t.Fatalf("mode = %q, want demo", r.Mode())
	}

	r.Toggle()
	if r.Mode() != ModeReal {
		t.Errorf("explicit toggle must reach real, got %q", r.Mode())
	}
	r.Toggle()
	if r.Mode() != ModeDemo {
		t.Errorf("toggle back must reach demo, got %q", r.Mode())
	}
}
