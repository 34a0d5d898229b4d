package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
)

const defaultConnectTimeout = 10 * time.Second

// State is the lifecycle state of the shared remote client.
type State int32

const (
	StateUnset State = iota
	StateUnavailable
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateUnavailable:
		return "unavailable"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Factory constructs a remote client from credentials.
type Factory func(ctx context.Context, creds credentials.Pair) (domain.RemoteClient, error)

// Option configures a Manager.
type Option func(*Manager)

// WithConnectTimeout bounds a single client construction.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.connectTimeout = d
		}
	}
}

// Manager owns the single remote client of the process. The client is built
// on first demand, at most once, and shared by every caller.
// Unavailable, Ready and Failed are terminal.
type Manager struct {
	creds          credentials.Source
	factory        Factory
	logger         *slog.Logger
	metrics        *metrics.SiteMetrics
	connectTimeout time.Duration

	state  atomic.Int32
	mu     sync.Mutex
	client domain.RemoteClient // written once, before state becomes Ready
	done   chan struct{}       // closed when construction finishes
}

// NewManager creates a Manager. Nothing is constructed until Client is called.
func NewManager(creds credentials.Source, factory Factory, logger *slog.Logger, m *metrics.SiteMetrics, opts ...Option) *Manager {
	mgr := &Manager{
		creds:          creds,
		factory:        factory,
		logger:         logger.With("component", "remote_client_manager"),
		metrics:        m,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	if !creds.HasBackendCredentials() {
		mgr.state.Store(int32(StateUnavailable))
	}
	return mgr
}

// IsAvailable reports whether backend credentials are configured. It does
// not wait for or trigger construction.
func (m *Manager) IsAvailable() bool {
	return m.creds.HasBackendCredentials()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Client returns the shared remote client, or nil when no backend is
// configured or construction failed. Concurrent callers during construction
// wait for the same attempt. If ctx ends while waiting, Client returns nil
// for this call only; the construction carries on.
func (m *Manager) Client(ctx context.Context) domain.RemoteClient {
	switch m.State() {
	case StateReady:
		return m.client
	case StateUnavailable, StateFailed:
		return nil
	}

	m.mu.Lock()
	switch m.State() {
	case StateReady:
		m.mu.Unlock()
		return m.client
	case StateUnavailable, StateFailed:
		m.mu.Unlock()
		return nil
	case StateUnset:
		pair, _ := m.creds.Credentials()
		m.done = make(chan struct{})
		m.state.Store(int32(StateInitializing))
		go m.construct(context.WithoutCancel(ctx), pair)
	}
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
		if m.State() == StateReady {
			return m.client
		}
		return nil
	case <-ctx.Done():
		m.logger.Warn("gave up waiting for remote client", "error", ctx.Err())
		return nil
	}
}

func (m *Manager) construct(ctx context.Context, pair credentials.Pair) {
	ctx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	m.logger.Info("initializing remote client", "backend", pair)
	start := time.Now()
	client, err := m.build(ctx, pair)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer close(m.done)

	if err == nil && client == nil {
		err = errors.New("factory returned no client")
	}
	if err != nil {
		m.state.Store(int32(StateFailed))
		m.metrics.ClientInit("failed")
		m.logger.Error("remote client initialization failed, backend disabled until restart", "error", err)
		return
	}

	m.client = client
	m.state.Store(int32(StateReady))
	m.metrics.ClientInit("ready")
	m.logger.Info("remote client ready", "duration_ms", time.Since(start).Milliseconds())
}

func (m *Manager) build(ctx context.Context, pair credentials.Pair) (client domain.RemoteClient, err error) {
	defer func() {
		if r := recover(); r != nil {
			client, err = nil, fmt.Errorf("remote client factory panicked: %v", r)
		}
	}()
	return m.factory(ctx, pair)
}

// Close closes the client if it was built. It waits for an in-flight
// construction to finish first.
func (m *Manager) Close() error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}

	if m.State() != StateReady {
		return nil
	}
	return m.client.Close()
}
