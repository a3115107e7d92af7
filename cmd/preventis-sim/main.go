package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stark-server/preventis-desktop/internal/sim"
	"github.com/stark-server/preventis-desktop/pkg/version"
)

var (
	listenAddr string
	jwtSecret  string
	inviteCode string
	tick       time.Duration
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "preventis-sim",
	Short: "In-memory Preventis backend simulator",
	Long: `Runs a fake Preventis backend with drifting sensor readings.

The simulator serves the full REST contract the desktop client uses:
auth (JWT + invite-code registration), device API keys, sensors with
history, alerts, zones, alarm control and system stats. Everything is
held in memory and resets on restart.`,
	Run: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("preventis-sim"))
	},
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "addr", ":3000", "Listen address")
	rootCmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "JWT signing secret (default: random per run, or PREVENTIS_JWT_SECRET)")
	rootCmd.Flags().StringVar(&inviteCode, "invite-code", "", "Registration invite code (default: PREVENTIS, or PREVENTIS_INVITE_CODE)")
	rootCmd.Flags().DurationVar(&tick, "tick", 5*time.Second, "Sensor simulation interval")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Log every request")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	secret := jwtSecret
	if secret == "" {
		secret = os.Getenv("PREVENTIS_JWT_SECRET")
	}
	if secret == "" {
		secret = fmt.Sprintf("sim-%d", time.Now().UnixNano())
		log.Warn().Msg("no JWT secret configured, sessions will not survive a restart")
	}

	code := inviteCode
	if code == "" {
		code = os.Getenv("PREVENTIS_INVITE_CODE")
	}
	if code == "" {
		code = "PREVENTIS"
	}

	state := sim.NewState()
	server := sim.NewServer(state, secret, code, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go state.Simulate(ctx, tick)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("invite_code", code).Msg("register accounts with this invite code")
	if err := server.ListenAndServe(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("simulator stopped")
}
