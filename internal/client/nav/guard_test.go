package nav

import (
	"testing"

	"github.com/stark-server/preventis-desktop/internal/client/datamode"
)

type fakeState struct {
	loading       bool
	authenticated bool
	initialized   bool
	mode          datamode.Mode
}

func (f *fakeState) Loading() bool         { return f.loading }
func (f *fakeState) IsAuthenticated() bool { return f.authenticated }
func (f *fakeState) Initialized() bool     { return f.initialized }
func (f *fakeState) Mode() datamode.Mode   { return f.mode }

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Decision
	}{
		{
			name:  "waits while session restoring",
			state: State{SessionLoading: true, ModeInitialized: true, Mode: datamode.ModeDemo, Current: RouteLogin},
			want:  Decision{Wait: true},
		},
		{
			name:  "waits while mode uninitialized",
			state: State{ModeInitialized: false, Mode: datamode.ModeDemo, Current: RouteLogin},
			want:  Decision{Wait: true},
		},
		{
			name:  "demo mode redirects login to shell",
			state: State{ModeInitialized: true, Mode: datamode.ModeDemo, Current: RouteLogin},
			want:  Decision{Redirect: RouteDashboard},
		},
		{
			name:  "demo mode leaves shell routes alone",
			state: State{ModeInitialized: true, Mode: datamode.ModeDemo, Current: RouteSensors},
			want:  Decision{},
		},
		{
			name:  "real unauthenticated redirects to login",
			state: State{ModeInitialized: true, Mode: datamode.ModeReal, Current: RouteAlerts},
			want:  Decision{Redirect: RouteLogin},
		},
		{
			name:  "real unauthenticated stays on login",
			state: State{ModeInitialized: true, Mode: datamode.ModeReal, Current: RouteLogin},
			want:  Decision{},
		},
		{
			name:  "real authenticated redirects login to shell",
			state: State{ModeInitialized: true, Mode: datamode.ModeReal, Authenticated: true, Current: RouteLogin},
			want:  Decision{Redirect: RouteDashboard},
		},
		{
			name:  "real authenticated stays in shell",
			state: State{ModeInitialized: true, Mode: datamode.ModeReal, Authenticated: true, Current: RouteZones},
			want:  Decision{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.state); got != tt.want {
				t.Errorf("Decide(%+v) = %+v, want %+v", tt.state, got, tt.want)
			}
		})
	}
}

func TestGuard_IdenticalStateRedirectsOnce(t *testing.T) {
	st := &fakeState{initialized: true, mode: datamode.ModeReal}
	g := NewGuard(st, st)

	first := g.Evaluate(RouteDashboard)
	if first.Redirect != RouteLogin {
		t.Fatalf("first evaluation should redirect to login, got %+v", first)
	}

	second := g.Evaluate(RouteDashboard)
	if second.Redirect != "" {
		t.Errorf("unchanged state must not redirect again, got %+v", second)
	}
}

func TestGuard_ReactsToStateChange(t *testing.T) {
	st := &fakeState{initialized: true, mode: datamode.ModeReal}
	g := NewGuard(st, st)

	if d := g.Evaluate(RouteLogin); d.Redirect != "" || d.Wait {
		t.Fatalf("unauthenticated on login should be stable, got %+v", d)
	}

	st.authenticated = true
	if d := g.Evaluate(RouteLogin); d.Redirect != RouteDashboard {
		t.Errorf("login success should redirect into the shell, got %+v", d)
	}

	st.authenticated = false
	st.mode = datamode.ModeDemo
	if d := g.Evaluate(RouteLogin); d.Redirect != RouteDashboard {
		t.Errorf("demo fallback should land in the shell, got %+v", d)
	}
}

func TestGuard_WaitWhileLoadingIsRepeatable(t *testing.T) {
	st := &fakeState{loading: true, initialized: true, mode: datamode.ModeDemo}
	g := NewGuard(st, st)

	for i := 0; i < 3; i++ {
		if d := g.Evaluate(RouteLogin); !d.Wait || d.Redirect != "" {
			t.Fatalf("evaluation %d: expected wait, got %+v", i, d)
		}
	}

	st.loading = false
	if d := g.Evaluate(RouteLogin); d.Redirect != RouteDashboard {
		t.Errorf("restore completion should route into the shell, got %+v", d)
	}
}
