// Package data implements the per-resource feeds that abstract over demo and
// real mode. Every feed runs the same state machine: an explicit refresh
// moves it Loading→Ready or Loading→Failed, a mode change triggers an
// automatic refresh, and overlapping refreshes resolve last-request-wins via
// a per-feed request generation. A fetch that fails in real mode clears the
// resource rather than showing data that is known stale; device history is
// the deliberate exception and keeps its last good series.
package data

import (
	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/internal/client/demo"
	"github.com/stark-server/preventis-desktop/internal/client/session"
)

// Sources bundles the collaborators a feed reads from. Explicit injection
// rather than ambient globals keeps the feeds testable in isolation.
type Sources struct {
	Client  *api.Client
	Session *session.Manager
	Mode    *datamode.Reconciler
	World   *demo.World
	Log     zerolog.Logger
}

// Feeds groups one feed per resource plus the status monitor, wired over a
// single Sources value.
type Feeds struct {
	Sensors *SensorsFeed
	Alerts  *AlertsFeed
	Zones   *ZonesFeed
	Alarm   *AlarmFeed
	Stats   *StatsFeed
	History *HistoryFeed
	Status  *StatusMonitor
}

func NewFeeds(src Sources) *Feeds {
	return &Feeds{
		Sensors: NewSensorsFeed(src),
		Alerts:  NewAlertsFeed(src),
		Zones:   NewZonesFeed(src),
		Alarm:   NewAlarmFeed(src),
		Stats:   NewStatsFeed(src),
		History: NewHistoryFeed(src),
		Status:  NewStatusMonitor(src),
	}
}
