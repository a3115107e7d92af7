package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stark-server/preventis-desktop/internal/client/api"
	"github.com/stark-server/preventis-desktop/internal/client/datamode"
	"github.com/stark-server/preventis-desktop/internal/client/demo"
	"github.com/stark-server/preventis-desktop/internal/client/session"
	"github.com/stark-server/preventis-desktop/internal/client/store"
)

// newSources wires feeds against a test server with an authenticated session
// in the given mode.
func newSources(t *testing.T, serverURL string, mode datamode.Mode) Sources {
	t.Helper()

	st := store.New(t.TempDir())
	if err := st.Set("@preventis:token", "test-token"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	if err := st.Set("@preventis:user", `{"id":"u1","email":"a@b.com"}`); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	client := api.NewClient(serverURL)
	sess := session.NewManager(client, st, zerolog.Nop())
	sess.Restore()

	rec := datamode.New(st, zerolog.Nop())
	rec.Init()
	rec.SetMode(mode)

	return Sources{
		Client:  client,
		Session: sess,
		Mode:    rec,
		World:   demo.NewWorld(),
		Log:     zerolog.Nop(),
	}
}

func TestSensorsFeed_FetchFailureClearsData(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"database down"}`))
			return
		}
		w.Write([]byte(`[{"id":"co2-001","name":"CO2","type":"co2","status":"online","value":420}]`))
	}))
	defer srv.Close()

	feed := NewSensorsFeed(newSources(t, srv.URL, datamode.ModeReal))
	ctx := context.Background()

	feed.Refresh(ctx)
	if got := feed.Sensors(); len(got) != 1 {
		t.Fatalf("expected 1 sensor after first refresh, got %d", len(got))
	}

	fail.Store(true)
	feed.Refresh(ctx)

	if got := feed.Sensors(); len(got) != 0 {
		t.Errorf("failed refresh must clear sensors, got %d", len(got))
	}
	if feed.Err() == nil {
		t.Error("failed refresh must record an error")
	}
	if feed.Loading() {
		t.Error("feed must not stay loading after failure")
	}
}

func TestHistoryFeed_FailurePreservesData(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"value":420,"createdAt":"2026-01-10T12:00:00Z"},{"value":430,"createdAt":"2026-01-10T12:05:00Z"}]`))
	}))
	defer srv.Close()

	feed := NewHistoryFeed(newSources(t, srv.URL, datamode.ModeReal))
	ctx := context.Background()

	feed.SetDevice(ctx, "co2-001")
	if got := feed.Points(); len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}

	fail.Store(true)
	feed.Refresh(ctx)

	if got := feed.Points(); len(got) != 2 {
		t.Errorf("failed re-fetch must preserve the series, got %d points", len(got))
	}
	if feed.Err() == nil {
		t.Error("failure must still be recorded")
	}
}

func TestAlertsFeed_DemoAcknowledgeIsLocal(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	feed := NewAlertsFeed(newSources(t, srv.URL, datamode.ModeDemo))
	ctx := context.Background()

	feed.Refresh(ctx)
	before := feed.Alerts()
	if len(before) == 0 {
		t.Fatal("demo fixtures should contain alerts")
	}

	target := ""
	for _, a := range before {
		if !a.Acknowledged {
			target = a.ID
			break
		}
	}
	if target == "" {
		t.Fatal("expected at least one unacknowledged fixture alert")
	}

	if err := feed.Acknowledge(ctx, target); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}

	for _, a := range feed.Alerts() {
		if a.ID == target && !a.Acknowledged {
			t.Error("target alert should be acknowledged")
		}
		if a.ID != target {
			for _, b := range before {
				if b.ID == a.ID && b.Acknowledged != a.Acknowledged {
					t.Errorf("alert %s changed unexpectedly", a.ID)
				}
			}
		}
	}

	if hits.Load() != 0 {
		t.Errorf("demo mutation must not hit the network, got %d requests", hits.Load())
	}
}

func TestZonesFeed_RealMutationRefetches(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	armed := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/arm"):
			var body struct {
				IsArmed bool `json:"isArmed"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			armed = body.IsArmed
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/zones":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": "zone-1", "name": "Ground Floor", "isArmed": armed},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	defer srv.Close()

	feed := NewZonesFeed(newSources(t, srv.URL, datamode.ModeReal))
	ctx := context.Background()

	feed.Refresh(ctx)
	if err := feed.SetArmed(ctx, "zone-1", true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}

	zones := feed.Zones()
	if len(zones) != 1 || !zones[0].IsArmed {
		t.Errorf("zones must reflect the post-refetch backend state: %+v", zones)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"GET /zones", "PUT /zones/zone-1/arm", "GET /zones"}
	if len(calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], calls[i])
		}
	}
}

func TestZonesFeed_MutationFailureKeepsData(t *testing.T) {
	var failWrites atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			if failWrites.Load() {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"zone locked"}`))
				return
			}
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "zone-1", "name": "Ground Floor", "isArmed": false},
		})
	}))
	defer srv.Close()

	feed := NewZonesFeed(newSources(t, srv.URL, datamode.ModeReal))
	ctx := context.Background()

	feed.Refresh(ctx)
	failWrites.Store(true)

	if err := feed.SetArmed(ctx, "zone-1", true); err == nil {
		t.Fatal("expected mutation error")
	}

	zones := feed.Zones()
	if len(zones) != 1 || zones[0].IsArmed {
		t.Errorf("failed mutation must leave prior data untouched: %+v", zones)
	}
	if feed.Err() == nil {
		t.Error("mutation failure must be recorded")
	}
}

func TestSensorsFeed_SyncModeRefetchesOnceOnChange(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src := newSources(t, srv.URL, datamode.ModeDemo)
	feed := NewSensorsFeed(src)
	ctx := context.Background()

	// Initial sync fetches (demo, no network), repeated sync does nothing.
	feed.SyncMode(ctx)
	feed.SyncMode(ctx)
	if hits.Load() != 0 {
		t.Fatalf("demo mode must not hit the network, got %d", hits.Load())
	}

	src.Mode.SetMode(datamode.ModeReal)
	feed.SyncMode(ctx)
	if hits.Load() != 1 {
		t.Errorf("mode change must trigger exactly one fetch, got %d", hits.Load())
	}

	feed.SyncMode(ctx)
	if hits.Load() != 1 {
		t.Errorf("unchanged mode must not re-fetch, got %d", hits.Load())
	}
}

func TestSensorsFeed_LastRequestWins(t *testing.T) {
	var first atomic.Bool
	first.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first.CompareAndSwap(true, false) {
			// Slow first response, superseded before it lands.
			time.Sleep(150 * time.Millisecond)
			w.Write([]byte(`[{"id":"stale","name":"Stale","type":"co2","status":"online"}]`))
			return
		}
		w.Write([]byte(`[{"id":"fresh","name":"Fresh","type":"co2","status":"online"}]`))
	}))
	defer srv.Close()

	feed := NewSensorsFeed(newSources(t, srv.URL, datamode.ModeReal))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		feed.Refresh(context.Background())
	}()

	time.Sleep(30 * time.Millisecond)
	feed.Refresh(context.Background())
	wg.Wait()

	sensors := feed.Sensors()
	if len(sensors) != 1 || sensors[0].ID != "fresh" {
		t.Errorf("late response of a superseded request must be dropped, got %+v", sensors)
	}
}

func TestStatusMonitor_TimeoutReportsTimeoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	monitor := NewStatusMonitor(newSources(t, srv.URL, datamode.ModeReal))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	monitor.Check(ctx)

	status := monitor.Status()
	if status.Connected {
		t.Error("timed-out check must report disconnected")
	}
	if !strings.Contains(status.Err, "timeout") {
		t.Errorf("expected timeout-specific message, got %q", status.Err)
	}
	if status.Latency != nil {
		t.Errorf("latency must be nil on timeout, got %v", *status.Latency)
	}
}

func TestStatusMonitor_DemoModeIdles(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	monitor := NewStatusMonitor(newSources(t, srv.URL, datamode.ModeDemo))
	monitor.Check(context.Background())

	if hits.Load() != 0 {
		t.Errorf("demo mode must not ping health, got %d requests", hits.Load())
	}
	if s := monitor.Status(); s.Connected || s.Err != "" {
		t.Errorf("demo mode status should be idle, got %+v", s)
	}
}

func TestFeeds_SharedDemoWorld(t *testing.T) {
	src := newSources(t, "http://unreachable.invalid", datamode.ModeDemo)
	feeds := NewFeeds(src)
	ctx := context.Background()

	feeds.Stats.Refresh(ctx)
	before := feeds.Stats.Stats().ActiveAlerts
	if before == 0 {
		t.Fatal("fixtures should start with active alerts")
	}

	if err := feeds.Alerts.AcknowledgeAll(ctx); err != nil {
		t.Fatalf("AcknowledgeAll failed: %v", err)
	}

	feeds.Stats.Refresh(ctx)
	if got := feeds.Stats.Stats().ActiveAlerts; got != 0 {
		t.Errorf("acknowledging on one feed must be visible through the shared world, got %d active", got)
	}
}
