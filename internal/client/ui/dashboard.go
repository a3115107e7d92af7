package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stark-server/preventis-desktop/internal/client/data"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/internal/client/nav"
	"github.com/stark-server/preventis-desktop/internal/client/session"
	"github.com/stark-server/preventis-desktop/pkg/models"
)

var dashboardTabs = []nav.Route{
	nav.RouteDashboard,
	nav.RouteSensors,
	nav.RouteAlerts,
	nav.RouteZones,
	nav.RouteAlarm,
	nav.RouteSettings,
}

type fastTickMsg time.Time
type slowTickMsg time.Time
type refreshedMsg struct{}

// DashboardModel is the tabbed application shell. All data comes from the
// feeds; the model itself only holds view state.
type DashboardModel struct {
	feeds   *data.Feeds
	guard   *nav.Guard
	session *session.Manager
	mode    *datamode.Reconciler

	route    nav.Route
	cursor   int
	quitting bool
	toLogin  bool
}

func NewDashboard(feeds *data.Feeds, guard *nav.Guard, sess *session.Manager, mode *datamode.Reconciler) DashboardModel {
	return DashboardModel{
		feeds:   feeds,
		guard:   guard,
		session: sess,
		mode:    mode,
		route:   nav.RouteDashboard,
	}
}

func fastTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg { return fastTickMsg(t) })
}

func slowTick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return slowTickMsg(t) })
}

// Init implements tea.Model
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.refreshAll(), fastTick(), slowTick())
}

// refreshAll reloads every feed plus connectivity.
func (m DashboardModel) refreshAll() tea.Cmd {
	feeds := m.feeds
	return func() tea.Msg {
		ctx := context.Background()
		feeds.Status.Check(ctx)
		feeds.Sensors.SyncMode(ctx)
		feeds.Alerts.SyncMode(ctx)
		feeds.Zones.SyncMode(ctx)
		feeds.Alarm.SyncMode(ctx)
		feeds.Stats.SyncMode(ctx)
		return refreshedMsg{}
	}
}

// refreshFast reloads only the live readings.
func (m DashboardModel) refreshFast() tea.Cmd {
	feeds := m.feeds
	return func() tea.Msg {
		ctx := context.Background()
		feeds.Sensors.Refresh(ctx)
		if feeds.History.Device() != "" {
			feeds.History.Refresh(ctx)
		}
		return refreshedMsg{}
	}
}

// Update implements tea.Model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fastTickMsg:
		return m, tea.Batch(m.refreshFast(), fastTick())

	case slowTickMsg:
		return m, tea.Batch(m.refreshAll(), slowTick())

	case refreshedMsg:
		// Data arrived; the guard may now want a different screen.
		if d := m.guard.Evaluate(m.route); d.Redirect == nav.RouteLogin {
			m.toLogin = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right":
		m.route = nextTab(m.route, 1)
		m.cursor = 0
		return m, nil

	case "shift+tab", "left":
		m.route = nextTab(m.route, -1)
		m.cursor = 0
		return m, nil

	case "1", "2", "3", "4", "5", "6":
		m.route = dashboardTabs[int(msg.String()[0]-'1')]
		m.cursor = 0
		return m, nil

	case "m":
		m.mode.Toggle()
		return m, m.refreshAll()

	case "r":
		return m, m.refreshAll()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		m.cursor++
		if max := m.listLen(); m.cursor >= max && max > 0 {
			m.cursor = max - 1
		}
		return m, nil
	}

	switch m.route {
	case nav.RouteSensors:
		return m.handleSensorsKey(msg)
	case nav.RouteAlerts:
		return m.handleAlertsKey(msg)
	case nav.RouteZones:
		return m.handleZonesKey(msg)
	case nav.RouteAlarm:
		return m.handleAlarmKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleSensorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sensors := m.feeds.Sensors.Sensors()
	switch msg.String() {
	case "enter":
		if m.cursor < len(sensors) {
			id := sensors[m.cursor].ID
			feeds := m.feeds
			return m, func() tea.Msg {
				feeds.History.SetDevice(context.Background(), id)
				return refreshedMsg{}
			}
		}
	case "p":
		feeds := m.feeds
		next := nextPeriod(feeds.History.Period())
		return m, func() tea.Msg {
			feeds.History.SetPeriod(context.Background(), next)
			return refreshedMsg{}
		}
	}
	return m, nil
}

func (m DashboardModel) handleAlertsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	alerts := m.feeds.Alerts.Alerts()
	feeds := m.feeds
	switch msg.String() {
	case "a":
		if m.cursor < len(alerts) {
			id := alerts[m.cursor].ID
			return m, func() tea.Msg {
				feeds.Alerts.Acknowledge(context.Background(), id)
				return refreshedMsg{}
			}
		}
	case "A":
		return m, func() tea.Msg {
			feeds.Alerts.AcknowledgeAll(context.Background())
			return refreshedMsg{}
		}
	}
	return m, nil
}

func (m DashboardModel) handleZonesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	zones := m.feeds.Zones.Zones()
	if msg.String() == " " || msg.String() == "enter" {
		if m.cursor < len(zones) {
			zone := zones[m.cursor]
			feeds := m.feeds
			return m, func() tea.Msg {
				feeds.Zones.SetArmed(context.Background(), zone.ID, !zone.IsArmed)
				return refreshedMsg{}
			}
		}
	}
	return m, nil
}

func (m DashboardModel) handleAlarmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	feeds := m.feeds
	var mode models.AlarmMode
	switch msg.String() {
	case "o":
		mode = models.AlarmOff
	case "h":
		mode = models.AlarmHome
	case "w":
		mode = models.AlarmAway
	case "n":
		mode = models.AlarmNight
	case "s":
		active := !feeds.Alarm.State().SirenActive
		return m, func() tea.Msg {
			feeds.Alarm.SetSiren(context.Background(), active)
			return refreshedMsg{}
		}
	default:
		return m, nil
	}
	return m, func() tea.Msg {
		feeds.Alarm.SetMode(context.Background(), mode)
		return refreshedMsg{}
	}
}

func (m DashboardModel) listLen() int {
	switch m.route {
	case nav.RouteSensors:
		return len(m.feeds.Sensors.Sensors())
	case nav.RouteAlerts:
		return len(m.feeds.Alerts.Alerts())
	case nav.RouteZones:
		return len(m.feeds.Zones.Zones())
	}
	return 0
}

func nextTab(current nav.Route, delta int) nav.Route {
	for i, r := range dashboardTabs {
		if r == current {
			return dashboardTabs[(i+delta+len(dashboardTabs))%len(dashboardTabs)]
		}
	}
	return nav.RouteDashboard
}

func nextPeriod(p models.HistoryPeriod) models.HistoryPeriod {
	for i, candidate := range models.HistoryPeriods {
		if candidate == p {
			return models.HistoryPeriods[(i+1)%len(models.HistoryPeriods)]
		}
	}
	return models.HistoryPeriods[0]
}

// View implements tea.Model
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tabBarView())
	b.WriteString("\n\n")

	switch m.route {
	case nav.RouteDashboard:
		b.WriteString(m.overviewView())
	case nav.RouteSensors:
		b.WriteString(m.sensorsView())
	case nav.RouteAlerts:
		b.WriteString(m.alertsView())
	case nav.RouteZones:
		b.WriteString(m.zonesView())
	case nav.RouteAlarm:
		b.WriteString(m.alarmView())
	case nav.RouteSettings:
		b.WriteString(m.settingsView())
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m DashboardModel) headerView() string {
	title := TitleStyle.Render("Preventis")

	var modeLabel string
	if m.mode.IsDemo() {
		modeLabel = WarningStyle.Render("DEMO")
	} else {
		modeLabel = SuccessStyle.Render("LIVE")
	}

	status := m.feeds.Status.Status()
	var conn string
	switch {
	case m.mode.IsDemo():
		conn = HelpStyle.Render("fixtures")
	case status.Checking:
		conn = HelpStyle.Render("checking...")
	case status.Connected:
		if status.Latency != nil {
			conn = SuccessStyle.Render(fmt.Sprintf("connected (%dms)", status.Latency.Milliseconds()))
		} else {
			conn = SuccessStyle.Render("connected")
		}
	case status.Err != "":
		conn = ErrorStyle.Render(status.Err)
	default:
		conn = UnselectedStyle.Render("unknown")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", modeLabel, "  ", conn)
}

func (m DashboardModel) tabBarView() string {
	parts := make([]string, 0, len(dashboardTabs))
	for _, r := range dashboardTabs {
		label := string(r)
		if r == m.route {
			parts = append(parts, ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}

func (m DashboardModel) overviewView() string {
	stats := m.feeds.Stats.Stats()
	alarm := m.feeds.Alarm.State()
	zones := m.feeds.Zones.Zones()
	armed := 0
	for _, z := range zones {
		if z.IsArmed {
			armed++
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Sensors online   %d/%d\n", stats.OnlineSensors, stats.TotalSensors))
	b.WriteString(fmt.Sprintf("Active alerts    %d\n", stats.ActiveAlerts))
	b.WriteString(fmt.Sprintf("Zones armed      %d/%d\n", armed, len(zones)))
	b.WriteString(fmt.Sprintf("Alarm mode       %s\n", renderAlarmMode(alarm)))
	if stats.LastIncident != nil {
		b.WriteString(fmt.Sprintf("Last incident    %s\n", stats.LastIncident.Format("2006-01-02 15:04")))
	}
	if err := m.feeds.Stats.Err(); err != nil {
		b.WriteString("\n" + ErrorStyle.Render(err.Error()) + "\n")
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) sensorsView() string {
	feed := m.feeds.Sensors
	sensors := feed.Sensors()
	if feed.Loading() && len(sensors) == 0 {
		return HelpStyle.Render("Loading sensors...")
	}
	if err := feed.Err(); err != nil {
		return ErrorStyle.Render(err.Error())
	}
	if len(sensors) == 0 {
		return HelpStyle.Render("No sensors.")
	}

	var b strings.Builder
	for i, s := range sensors {
		cursor := "  "
		nameStyle := UnselectedStyle
		if i == m.cursor {
			cursor = CursorStyle.Render("▸ ")
			nameStyle = SelectedStyle
		}
		value := fmt.Sprintf("%.1f%s", s.Value, s.Unit)
		b.WriteString(fmt.Sprintf("%s%s  %s  %s  %s\n",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-22s", s.Name)),
			fmt.Sprintf("%-10s", s.Type),
			StatusStyle(string(s.Status)).Render(fmt.Sprintf("%-8s", s.Status)),
			value,
		))
	}

	if device := m.feeds.History.Device(); device != "" {
		b.WriteString("\n")
		b.WriteString(m.historyView(device))
	}
	return b.String()
}

func (m DashboardModel) historyView(device string) string {
	feed := m.feeds.History
	points := feed.Points()

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("History %s (%s)", device, feed.Period())))
	b.WriteString("\n")

	if m.mode.IsDemo() {
		b.WriteString(HelpStyle.Render("History is only available in live mode."))
		return b.String()
	}
	if len(points) == 0 {
		b.WriteString(HelpStyle.Render("No data points yet."))
	} else {
		b.WriteString(sparkline(points))
		last := points[len(points)-1]
		b.WriteString(fmt.Sprintf("\nlatest %.1f at %s", last.Value, last.CreatedAt.Format("15:04:05")))
	}
	if err := feed.Err(); err != nil {
		b.WriteString("\n" + WarningStyle.Render("stale: "+err.Error()))
	}
	return b.String()
}

// sparkline renders a value series as a row of block characters.
func sparkline(points []models.HistoryPoint) string {
	blocks := []rune("▁▂▃▄▅▆▇█")

	min, max := points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}

	var b strings.Builder
	for _, p := range points {
		idx := 0
		if max > min {
			idx = int((p.Value - min) / (max - min) * float64(len(blocks)-1))
		}
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

func (m DashboardModel) alertsView() string {
	feed := m.feeds.Alerts
	alerts := feed.Alerts()
	if feed.Loading() && len(alerts) == 0 {
		return HelpStyle.Render("Loading alerts...")
	}
	if err := feed.Err(); err != nil {
		return ErrorStyle.Render(err.Error())
	}
	if len(alerts) == 0 {
		return HelpStyle.Render("No alerts.")
	}

	var b strings.Builder
	for i, a := range alerts {
		cursor := "  "
		if i == m.cursor {
			cursor = CursorStyle.Render("▸ ")
		}
		ack := " "
		if a.Acknowledged {
			ack = SuccessStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s  %s\n",
			cursor,
			ack,
			StatusStyle(string(a.Level)).Render(fmt.Sprintf("%-8s", a.Level)),
			a.Timestamp.Format("01-02 15:04"),
			a.Title,
		))
	}
	return b.String()
}

func (m DashboardModel) zonesView() string {
	feed := m.feeds.Zones
	zones := feed.Zones()
	if feed.Loading() && len(zones) == 0 {
		return HelpStyle.Render("Loading zones...")
	}
	if err := feed.Err(); err != nil {
		return ErrorStyle.Render(err.Error())
	}
	if len(zones) == 0 {
		return HelpStyle.Render("No zones.")
	}

	var b strings.Builder
	for i, z := range zones {
		cursor := "  "
		nameStyle := UnselectedStyle
		if i == m.cursor {
			cursor = CursorStyle.Render("▸ ")
			nameStyle = SelectedStyle
		}
		armed := UnselectedStyle.Render("disarmed")
		if z.IsArmed {
			armed = SuccessStyle.Render("armed")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  (%d sensors)\n",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-18s", z.Name)),
			armed,
			len(z.Sensors),
		))
	}
	return b.String()
}

func (m DashboardModel) alarmView() string {
	feed := m.feeds.Alarm
	state := feed.State()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Mode    %s\n", renderAlarmMode(state)))

	siren := UnselectedStyle.Render("off")
	if state.SirenActive {
		siren = ErrorStyle.Render("ACTIVE")
	}
	b.WriteString(fmt.Sprintf("Siren   %s\n", siren))

	if state.Triggered {
		b.WriteString(ErrorStyle.Render("\n⚠ ALARM TRIGGERED") + "\n")
		if state.TriggerReason != "" {
			b.WriteString(fmt.Sprintf("Reason  %s\n", state.TriggerReason))
		}
	}
	if state.LastArmedAt != nil {
		b.WriteString(fmt.Sprintf("Armed   %s\n", state.LastArmedAt.Format("2006-01-02 15:04")))
	}
	if err := feed.Err(); err != nil {
		b.WriteString("\n" + ErrorStyle.Render(err.Error()) + "\n")
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) settingsView() string {
	var b strings.Builder

	if user := m.session.User(); user != nil {
		b.WriteString(fmt.Sprintf("Account    %s\n", user.Email))
	} else {
		b.WriteString("Account    not signed in\n")
	}
	b.WriteString(fmt.Sprintf("Data mode  %s\n", m.mode.Mode()))

	if key := m.session.DeviceAPIKey(); key != "" {
		b.WriteString("Device key stored\n")
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) footerView() string {
	common := "1-6/tab switch • m mode • r refresh • q quit"
	switch m.route {
	case nav.RouteSensors:
		return HelpStyle.Render("↑/↓ select • Enter history • p period • " + common)
	case nav.RouteAlerts:
		return HelpStyle.Render("↑/↓ select • a ack • A ack all • " + common)
	case nav.RouteZones:
		return HelpStyle.Render("↑/↓ select • Space arm/disarm • " + common)
	case nav.RouteAlarm:
		return HelpStyle.Render("o off • h home • w away • n night • s siren • " + common)
	}
	return HelpStyle.Render(common)
}

func renderAlarmMode(state models.AlarmState) string {
	label := strings.ToUpper(string(state.Mode))
	if state.Triggered {
		return ErrorStyle.Render(label + " (TRIGGERED)")
	}
	if state.IsArmed {
		return SuccessStyle.Render(label)
	}
	return UnselectedStyle.Render(label)
}

// ReturnToLogin reports whether the shell exited because the session ended in
// live mode.
func (m DashboardModel) ReturnToLogin() bool {
	return m.toLogin
}

// Dashboard runs the application shell. It returns true when the shell exited
// because authentication is required.
func Dashboard(feeds *data.Feeds, guard *nav.Guard, sess *session.Manager, mode *datamode.Reconciler) (bool, error) {
	m := NewDashboard(feeds, guard, sess, mode)
	p := tea.NewProgram(m, tea.WithAltScreen())

	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run dashboard: %w", err)
	}

	finalModel := result.(DashboardModel)
	return finalModel.ReturnToLogin(), nil
}
