// Package nav decides which screen the client should be on, given session and
// data-mode state. The decision itself is a pure function; Guard adds the
// bookkeeping that makes repeated evaluation of an unchanged state a no-op.
package nav

import (
	"sync"

	"github.com/stark-server/preventis-desktop/internal/client/datamode"
)

type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
	RouteSensors   Route = "sensors"
	RouteAlerts    Route = "alerts"
	RouteZones     Route = "zones"
	RouteAlarm     Route = "alarm"
	RouteSettings  Route = "settings"
)

// InShell reports whether a route belongs to the main application shell
// rather than the unauthenticated entry flow.
func InShell(r Route) bool {
	return r != "" && r != RouteLogin
}

// State is everything a routing decision depends on.
type State struct {
	SessionLoading  bool
	ModeInitialized bool
	Authenticated   bool
	Mode            datamode.Mode
	Current         Route
}

// Decision is the outcome of evaluating a State. Wait means keep showing a
// loading placeholder; Redirect is empty when the current route is already
// correct.
type Decision struct {
	Wait     bool
	Redirect Route
}

// Decide maps a State to at most one redirect.
//
// Until the session restore and mode init have both completed, no routing
// happens at all; deciding earlier would bounce an authenticated user through
// the login screen. Demo mode always lands in the shell. Real mode requires
// authentication for the shell and sends everyone else to login.
func Decide(s State) Decision {
	if s.SessionLoading || !s.ModeInitialized {
		return Decision{Wait: true}
	}

	if s.Mode == datamode.ModeDemo || s.Authenticated {
		if !InShell(s.Current) {
			return Decision{Redirect: RouteDashboard}
		}
		return Decision{}
	}

	if s.Current != RouteLogin {
		return Decision{Redirect: RouteLogin}
	}
	return Decision{}
}

// SessionState is the slice of the session manager the guard reads.
type SessionState interface {
	Loading() bool
	IsAuthenticated() bool
}

// ModeState is the slice of the data-mode reconciler the guard reads.
type ModeState interface {
	Initialized() bool
	Mode() datamode.Mode
}

// Guard evaluates routing against live session and mode state. It remembers
// the last state it acted on, so re-evaluating unchanged inputs never
// re-triggers a redirect.
type Guard struct {
	session SessionState
	mode    ModeState

	mu   sync.Mutex
	last *State
}

func NewGuard(session SessionState, mode ModeState) *Guard {
	return &Guard{session: session, mode: mode}
}

// Evaluate computes the decision for the given current route. Identical
// consecutive states yield an empty decision after the first.
func (g *Guard) Evaluate(current Route) Decision {
	s := State{
		SessionLoading:  g.session.Loading(),
		ModeInitialized: g.mode.Initialized(),
		Authenticated:   g.session.IsAuthenticated(),
		Mode:            g.mode.Mode(),
		Current:         current,
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last != nil && *g.last == s {
		return Decision{Wait: g.last.SessionLoading || !g.last.ModeInitialized}
	}
	g.last = &s
	return Decide(s)
}
