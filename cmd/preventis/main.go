package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/config"
	"github.com/stark-server/preventis-desktop/internal/client/daemon"
	"github.com/stark-server/preventis-desktop/internal/client/data"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/internal/client/demo"
	"github.com/stark-server/preventis-desktop/internal/client/nav"
	"github.com/stark-server/preventis-desktop/internal/client/session"
	"github.com/stark-server/preventis-desktop/internal/client/store"
	"github.com/stark-server/preventis-desktop/internal/client/ui"
	"github.com/stark-server/preventis-desktop/pkg/models"
	"github.com/stark-server/preventis-desktop/pkg/utils"
	"github.com/stark-server/preventis-desktop/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "preventis",
	Short: "Preventis - home security monitor",
	Long:  "CLI and dashboard for the Preventis home security monitoring system",
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
}

var loginEmail, loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Preventis backend",
	Run:   runLogin,
}

var registerEmail, registerPassword, registerName, registerCode string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (invite code required)",
	Run:   runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored credentials",
	Run:   runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session, mode and backend connectivity",
	Run:   runStatus,
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Device API key management",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	Run:   runKeysList,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new API key",
	Args:  cobra.ExactArgs(1),
	Run:   runKeysCreate,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	Run:   runKeysDelete,
}

var modeCmd = &cobra.Command{
	Use:   "mode [demo|real]",
	Short: "Show or set the data mode",
	Args:  cobra.MaximumNArgs(1),
	Run:   runMode,
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List sensors",
	Run:   runSensors,
}

var addSensorType, addSensorLocation string

var sensorsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a new sensor",
	Args:  cobra.ExactArgs(1),
	Run:   runSensorsAdd,
}

var sensorsRemoveCmd = &cobra.Command{
	Use:   "remove [device-id]",
	Short: "Remove a sensor",
	Args:  cobra.ExactArgs(1),
	Run:   runSensorsRemove,
}

var historyPeriod string

var historyCmd = &cobra.Command{
	Use:   "history [device-id]",
	Short: "Show device history",
	Args:  cobra.MaximumNArgs(1),
	Run:   runHistory,
}

var alertsActiveOnly bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List alerts",
	Run:   runAlerts,
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack [alert-id]",
	Short: "Acknowledge one alert, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	Run:   runAlertsAck,
}

var ackAll bool

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List alarm zones",
	Run:   runZones,
}

var zonesArmCmd = &cobra.Command{
	Use:   "arm [zone-id]",
	Short: "Arm a zone",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setZoneArmed(args[0], true) },
}

var zonesDisarmCmd = &cobra.Command{
	Use:   "disarm [zone-id]",
	Short: "Disarm a zone",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setZoneArmed(args[0], false) },
}

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Show alarm state",
	Run:   runAlarm,
}

var alarmModeCmd = &cobra.Command{
	Use:   "mode [off|home|away|night]",
	Short: "Set the alarm mode",
	Args:  cobra.ExactArgs(1),
	Run:   runAlarmMode,
}

var alarmSirenCmd = &cobra.Command{
	Use:   "siren [on|off]",
	Short: "Toggle the siren",
	Args:  cobra.ExactArgs(1),
	Run:   runAlarmSiren,
}

var triggerReason, triggerSensor string

var alarmTriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Trigger the alarm manually",
	Run:   runAlarmTrigger,
}

var alarmResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a triggered alarm",
	Run:   runAlarmReset,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show system statistics",
	Run:   runStats,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Run:   runDashboard,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the background polling daemon",
	Run:   runWatch,
}

var setupDaemonCmd = &cobra.Command{
	Use:   "setup-daemon",
	Short: "Install the watch daemon as a login service",
	Run:   runSetupDaemon,
}

var uninstallDaemonCmd = &cobra.Command{
	Use:   "uninstall-daemon",
	Short: "Remove the watch daemon service",
	Run:   runUninstallDaemon,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("preventis"))
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (omit for interactive form)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerCode, "code", "", "Invite code")
	historyCmd.Flags().StringVar(&historyPeriod, "period", "1h", "Time window: 15m, 1h, 6h, 24h, 7d")
	alertsCmd.Flags().BoolVar(&alertsActiveOnly, "active", false, "Only unacknowledged alerts")
	alertsAckCmd.Flags().BoolVar(&ackAll, "all", false, "Acknowledge every active alert")
	alarmTriggerCmd.Flags().StringVar(&triggerReason, "reason", "manual trigger", "Trigger reason")
	alarmTriggerCmd.Flags().StringVar(&triggerSensor, "sensor", "", "Sensor id associated with the trigger")

	sensorsAddCmd.Flags().StringVar(&addSensorType, "type", "", "Sensor type: co2, smoke, infrared, temperature")
	sensorsAddCmd.Flags().StringVar(&addSensorLocation, "location", "", "Where the sensor is installed")

	authCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
	sensorsCmd.AddCommand(sensorsAddCmd, sensorsRemoveCmd)
	keysCmd.AddCommand(keysListCmd, keysCreateCmd, keysDeleteCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	zonesCmd.AddCommand(zonesArmCmd, zonesDisarmCmd)
	alarmCmd.AddCommand(alarmModeCmd, alarmSirenCmd, alarmTriggerCmd, alarmResetCmd)
	rootCmd.AddCommand(authCmd, keysCmd, modeCmd, statusCmd, sensorsCmd, historyCmd,
		alertsCmd, zonesCmd, alarmCmd, statsCmd, dashboardCmd, watchCmd,
		setupDaemonCmd, uninstallDaemonCmd, versionCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// app bundles everything a command needs. Built once per invocation.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Manager
	mode    *datamode.Reconciler
	feeds   *data.Feeds
	guard   *nav.Guard
	log     zerolog.Logger
}

func newApp() *app {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	dir, err := store.DefaultDir()
	if err != nil {
		fmt.Printf("Failed to locate state directory: %v\n", err)
		os.Exit(1)
	}
	st := store.New(dir)

	client := api.NewClient(cfg.ServerURL)
	sess := session.NewManager(client, st, log)
	sess.Restore()

	mode := datamode.New(st, log)
	mode.Init()
	mode.Watch(sess)

	feeds := data.NewFeeds(data.Sources{
		Client:  client,
		Session: sess,
		Mode:    mode,
		World:   demo.NewWorld(),
		Log:     log,
	})

	return &app{
		cfg:     cfg,
		client:  client,
		session: sess,
		mode:    mode,
		feeds:   feeds,
		guard:   nav.NewGuard(sess, mode),
		log:     log,
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("PREVENTIS_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func runLogin(cmd *cobra.Command, args []string) {
	a := newApp()
	ctx := context.Background()

	if loginEmail == "" {
		ok, err := ui.Login(a.session)
		if err != nil {
			fmt.Printf("Login failed: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("Cancelled")
			return
		}
	} else {
		if err := a.session.Login(ctx, loginEmail, loginPassword); err != nil {
			fmt.Printf("Login failed: %v\n", err)
			os.Exit(1)
		}
	}

	user := a.session.User()
	fmt.Printf("✓ Signed in as %s\n", user.Email)
	if a.mode.IsDemo() {
		fmt.Println("Data mode is still demo. Run 'preventis mode real' to use live data.")
	}
}

func runRegister(cmd *cobra.Command, args []string) {
	if registerEmail == "" || registerPassword == "" || registerCode == "" {
		fmt.Println("Error: --email, --password and --code are required")
		os.Exit(1)
	}
	if !utils.IsValidEmail(registerEmail) {
		fmt.Println("Error: invalid email address")
		os.Exit(1)
	}

	a := newApp()
	key, err := a.session.Register(context.Background(), registerEmail, registerPassword, registerName, registerCode)
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Account created for %s\n", registerEmail)
	fmt.Println("\nYour device API key (shown only once, store it safely):")
	fmt.Printf("  %s\n", key)
}

func runLogout(cmd *cobra.Command, args []string) {
	a := newApp()
	wasReal := a.mode.IsReal()

	a.session.Logout()

	fmt.Println("✓ Signed out")
	if wasReal && a.mode.IsDemo() {
		fmt.Println("Data mode switched back to demo.")
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	a := newApp()

	fmt.Println("Preventis - Status")
	fmt.Println("==================")
	fmt.Printf("Server:     %s\n", a.cfg.ServerURL)
	fmt.Printf("Data mode:  %s\n", a.mode.Mode())

	if user := a.session.User(); user != nil {
		fmt.Printf("Account:    %s\n", user.Email)
	} else {
		fmt.Println("Account:    not signed in")
	}

	if a.mode.IsDemo() {
		fmt.Println("Backend:    not checked (demo mode)")
		return
	}

	a.feeds.Status.Check(context.Background())
	status := a.feeds.Status.Status()
	switch {
	case status.Connected && status.Latency != nil:
		fmt.Printf("Backend:    ✓ connected (%dms)\n", status.Latency.Milliseconds())
	case status.Connected:
		fmt.Println("Backend:    ✓ connected")
	default:
		fmt.Printf("Backend:    ✗ %s\n", status.Err)
	}
}

func runKeysList(cmd *cobra.Command, args []string) {
	a := newApp()
	keys, err := a.session.ListAPIKeys(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys.")
		return
	}
	for _, k := range keys {
		line := fmt.Sprintf("%s  %-20s created %s", k.ID, k.Name, k.CreatedAt.Format("2006-01-02"))
		if k.LastUsedAt != nil {
			line += fmt.Sprintf("  last used %s", k.LastUsedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(line)
	}
}

func runKeysCreate(cmd *cobra.Command, args []string) {
	a := newApp()
	key, message, err := a.session.CreateAPIKey(context.Background(), args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Key %s created\n", key.ID)
	if message != "" {
		fmt.Println(message)
	}
	fmt.Println("\nRaw key (shown only once):")
	fmt.Printf("  %s\n", key.Key)
}

func runKeysDelete(cmd *cobra.Command, args []string) {
	a := newApp()

	confirmed, err := ui.Confirm(fmt.Sprintf("Revoke API key %s?", args[0]),
		ui.WithDescription("Devices using this key will stop reporting."),
		ui.WithDefaultNo())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !confirmed {
		fmt.Println("Cancelled")
		return
	}

	if err := a.session.DeleteAPIKey(context.Background(), args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Key revoked")
}

func runMode(cmd *cobra.Command, args []string) {
	a := newApp()

	if len(args) == 0 {
		fmt.Println(a.mode.Mode())
		return
	}

	switch datamode.Mode(args[0]) {
	case datamode.ModeDemo:
		a.mode.SetMode(datamode.ModeDemo)
	case datamode.ModeReal:
		if !a.session.IsAuthenticated() {
			fmt.Println("Error: sign in before switching to real mode")
			os.Exit(1)
		}
		a.mode.SetMode(datamode.ModeReal)
	default:
		fmt.Printf("Error: unknown mode %q (demo or real)\n", args[0])
		os.Exit(1)
	}
	fmt.Printf("✓ Data mode set to %s\n", a.mode.Mode())
}

func runSensors(cmd *cobra.Command, args []string) {
	a := newApp()
	a.feeds.Sensors.Refresh(context.Background())

	if err := a.feeds.Sensors.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	sensors := a.feeds.Sensors.Sensors()
	if len(sensors) == 0 {
		fmt.Println("No sensors.")
		return
	}
	for _, s := range sensors {
		fmt.Printf("%-12s %-22s %-12s %-8s %.1f%s  (%s)\n",
			s.ID, s.Name, s.Type, s.Status, s.Value, s.Unit, s.Location)
	}
}

func runSensorsAdd(cmd *cobra.Command, args []string) {
	typ := models.SensorType(addSensorType)
	switch typ {
	case models.SensorCO2, models.SensorSmoke, models.SensorInfrared, models.SensorTemperature:
	default:
		fmt.Printf("Error: unknown sensor type %q\n", addSensorType)
		os.Exit(1)
	}

	a := newApp()
	sensor, err := a.feeds.Sensors.CreateDevice(context.Background(), args[0], typ, addSensorLocation)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Sensor %s created (%s)\n", sensor.ID, sensor.Name)
}

func runSensorsRemove(cmd *cobra.Command, args []string) {
	a := newApp()
	if err := a.feeds.Sensors.DeleteDevice(context.Background(), args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Sensor %s removed\n", args[0])
}

func runHistory(cmd *cobra.Command, args []string) {
	period := models.HistoryPeriod(historyPeriod)
	if !period.Valid() {
		fmt.Printf("Error: invalid period %q\n", historyPeriod)
		os.Exit(1)
	}

	a := newApp()
	if a.mode.IsDemo() {
		fmt.Println("History is only available in real mode.")
		os.Exit(1)
	}

	deviceID := ""
	if len(args) > 0 {
		deviceID = args[0]
	} else {
		sensors, err := a.client.ListDevices(context.Background(), a.session.Token())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(sensors) == 0 {
			fmt.Println("No devices registered.")
			return
		}
		options := make([]ui.SelectOption, len(sensors))
		for i, s := range sensors {
			options[i] = ui.SelectOption{
				Label:       s.Name,
				Description: fmt.Sprintf("%s • %s", s.Type, s.Location),
				Value:       s.ID,
			}
		}
		picked, err := ui.Select("Pick a device", options)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if picked < 0 {
			return
		}
		deviceID = options[picked].Value
	}

	points, err := a.client.DeviceHistory(context.Background(), a.session.Token(), deviceID, period)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(points) == 0 {
		fmt.Println("No data points.")
		return
	}
	for _, p := range points {
		fmt.Printf("%s  %8.2f  %s\n", p.CreatedAt.Format(time.RFC3339), p.Value, p.Status)
	}
}

func runAlerts(cmd *cobra.Command, args []string) {
	a := newApp()
	a.feeds.Alerts.Refresh(context.Background())

	if err := a.feeds.Alerts.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	alerts := a.feeds.Alerts.Alerts()
	shown := 0
	for _, al := range alerts {
		if alertsActiveOnly && al.Acknowledged {
			continue
		}
		ack := " "
		if al.Acknowledged {
			ack = "✓"
		}
		fmt.Printf("%s %-10s %-8s %s  %s\n", ack, al.ID, al.Level, al.Timestamp.Format("01-02 15:04"), al.Title)
		shown++
	}
	if shown == 0 {
		fmt.Println("No alerts.")
	}
}

func runAlertsAck(cmd *cobra.Command, args []string) {
	a := newApp()
	ctx := context.Background()
	a.feeds.Alerts.Refresh(ctx)

	if ackAll {
		if err := a.feeds.Alerts.AcknowledgeAll(ctx); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ All alerts acknowledged")
		return
	}

	if len(args) == 0 {
		fmt.Println("Error: alert id or --all required")
		os.Exit(1)
	}
	if err := a.feeds.Alerts.Acknowledge(ctx, args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Alert %s acknowledged\n", args[0])
}

func runZones(cmd *cobra.Command, args []string) {
	a := newApp()
	a.feeds.Zones.Refresh(context.Background())

	if err := a.feeds.Zones.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	zones := a.feeds.Zones.Zones()
	if len(zones) == 0 {
		fmt.Println("No zones.")
		return
	}
	for _, z := range zones {
		armed := "disarmed"
		if z.IsArmed {
			armed = "armed"
		}
		fmt.Printf("%-10s %-20s %-8s %d sensors\n", z.ID, z.Name, armed, len(z.Sensors))
	}
}

func setZoneArmed(id string, armed bool) {
	a := newApp()
	if err := a.feeds.Zones.SetArmed(context.Background(), id, armed); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if armed {
		fmt.Printf("✓ Zone %s armed\n", id)
	} else {
		fmt.Printf("✓ Zone %s disarmed\n", id)
	}
}

func runAlarm(cmd *cobra.Command, args []string) {
	a := newApp()
	a.feeds.Alarm.Refresh(context.Background())

	if err := a.feeds.Alarm.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	state := a.feeds.Alarm.State()
	fmt.Printf("Mode:       %s\n", strings.ToUpper(string(state.Mode)))
	fmt.Printf("Armed:      %v\n", state.IsArmed)
	fmt.Printf("Siren:      %v\n", state.SirenActive)
	if state.Triggered {
		fmt.Printf("TRIGGERED:  %s\n", state.TriggerReason)
	}
	if state.LastArmedAt != nil {
		fmt.Printf("Last armed: %s\n", state.LastArmedAt.Format("2006-01-02 15:04"))
	}
}

func runAlarmMode(cmd *cobra.Command, args []string) {
	mode := models.AlarmMode(args[0])
	if !mode.Valid() {
		fmt.Printf("Error: unknown alarm mode %q\n", args[0])
		os.Exit(1)
	}

	a := newApp()
	if err := a.feeds.Alarm.SetMode(context.Background(), mode); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Alarm mode set to %s\n", mode)
}

func runAlarmSiren(cmd *cobra.Command, args []string) {
	var active bool
	switch args[0] {
	case "on":
		active = true
	case "off":
		active = false
	default:
		fmt.Println("Error: expected 'on' or 'off'")
		os.Exit(1)
	}

	a := newApp()
	if err := a.feeds.Alarm.SetSiren(context.Background(), active); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Siren %s\n", args[0])
}

func runAlarmTrigger(cmd *cobra.Command, args []string) {
	confirmed, err := ui.Confirm("Trigger the alarm?",
		ui.WithDescription("The siren will sound and an incident will be recorded."),
		ui.WithDefaultNo())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !confirmed {
		fmt.Println("Cancelled")
		return
	}

	a := newApp()
	if err := a.feeds.Alarm.Trigger(context.Background(), triggerReason, triggerSensor); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Alarm triggered")
}

func runAlarmReset(cmd *cobra.Command, args []string) {
	a := newApp()
	if err := a.feeds.Alarm.Reset(context.Background()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Alarm reset")
}

func runStats(cmd *cobra.Command, args []string) {
	a := newApp()
	a.feeds.Stats.Refresh(context.Background())

	if err := a.feeds.Stats.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	stats := a.feeds.Stats.Stats()
	fmt.Printf("Sensors online: %d/%d\n", stats.OnlineSensors, stats.TotalSensors)
	fmt.Printf("Active alerts:  %d\n", stats.ActiveAlerts)
	if stats.LastIncident != nil {
		fmt.Printf("Last incident:  %s\n", stats.LastIncident.Format("2006-01-02 15:04"))
	}
}

// runDashboard loops between the login form and the shell: the shell exits
// back here when the session ends in real mode, and the guard decides which
// screen comes next.
func runDashboard(cmd *cobra.Command, args []string) {
	a := newApp()

	for {
		decision := a.guard.Evaluate(nav.RouteDashboard)
		if decision.Redirect == nav.RouteLogin {
			ok, err := ui.Login(a.session)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if !ok {
				return
			}
			continue
		}

		toLogin, err := ui.Dashboard(a.feeds, a.guard, a.session, a.mode)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if !toLogin {
			return
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) {
	a := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := daemon.NewWatcher(a.feeds, a.session, a.mode, a.cfg, a.log)
	if err := watcher.Run(ctx); err != nil {
		fmt.Printf("Watch daemon failed: %v\n", err)
		os.Exit(1)
	}
}

func runSetupDaemon(cmd *cobra.Command, args []string) {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to detect binary path: %v\n", err)
		os.Exit(1)
	}

	if err := daemon.InstallService(exePath); err != nil {
		fmt.Printf("Failed to install service: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Watch daemon installed (starts on login)")
}

func runUninstallDaemon(cmd *cobra.Command, args []string) {
	if !daemon.ServiceInstalled() {
		fmt.Println("Service not installed")
		return
	}

	confirmed, err := ui.Confirm("Uninstall the watch daemon service?", ui.WithDefaultNo())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !confirmed {
		fmt.Println("Cancelled")
		return
	}

	if err := daemon.UninstallService(); err != nil {
		fmt.Printf("Failed to uninstall service: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Watch daemon uninstalled")
}
