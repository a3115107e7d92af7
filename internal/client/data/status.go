package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stark-server/preventis-desktop/internal/client/api"
)

// Status is a snapshot of backend connectivity.
type Status struct {
	Connected bool
	Checking  bool
	Latency   *time.Duration
	Err       string
	LastCheck *time.Time
}

// StatusMonitor runs the health check against the backend. A timeout is
// reported with its own message, distinct from an HTTP error status, so the
// user can tell "server down" from "server broken".
type StatusMonitor struct {
	src Sources

	mu     sync.Mutex
	gen    uint64
	status Status
}

func NewStatusMonitor(src Sources) *StatusMonitor {
	return &StatusMonitor{src: src}
}

func (m *StatusMonitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Check pings /health once. In demo mode there is nothing to check and the
// status resets to idle.
func (m *StatusMonitor) Check(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	if !m.src.Mode.IsReal() {
		m.setStatus(gen, Status{})
		return
	}

	m.mu.Lock()
	m.status.Checking = true
	m.status.Err = ""
	m.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, api.DefaultTimeout)
	defer cancel()

	latency, err := m.src.Client.Health(cctx)
	now := time.Now()

	if err != nil {
		m.setStatus(gen, Status{Err: statusMessage(err), LastCheck: &now})
		return
	}
	m.setStatus(gen, Status{Connected: true, Latency: &latency, LastCheck: &now})
}

func statusMessage(err error) string {
	var ce *api.ConnectivityError
	if errors.As(err, &ce) {
		if ce.Timeout {
			return "timeout: API is not responding"
		}
		return "API unreachable"
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("server error (HTTP %d)", se.StatusCode)
	}
	return err.Error()
}

func (m *StatusMonitor) setStatus(gen uint64, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.status = s
}
