package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/domain/mocks"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
)

var testCreds = credentials.Static(credentials.Pair{Endpoint: "postgres://db.internal/site", Key: "anon"})

// countingFactory counts constructions and returns client after delay.
type countingFactory struct {
	calls  atomic.Int32
	delay  time.Duration
	client domain.RemoteClient
	err    error
	panic  bool
}

func (f *countingFactory) build(ctx context.Context, _ credentials.Pair) (domain.RemoteClient, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panic {
		panic("driver exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func newTestManager(creds credentials.Source, f *countingFactory) *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(creds, f.build, logger, metrics.NewSiteMetrics(prometheus.NewRegistry()))
}

func TestManager_SingleFlight(t *testing.T) {
	client := &mocks.MockRemoteClient{}
	f := &countingFactory{client: client, delay: 20 * time.Millisecond}
	mgr := newTestManager(testCreds, f)

	const callers = 50
	var wg sync.WaitGroup
	results := make([]domain.RemoteClient, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = mgr.Client(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load(), "expected exactly one construction")
	for i, got := range results {
		assert.Same(t, client, got, "caller %d got a different client", i)
	}
	assert.Equal(t, StateReady, mgr.State())

	// Fast path after ready.
	assert.Same(t, client, mgr.Client(context.Background()))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestManager_NoCredentials(t *testing.T) {
	f := &countingFactory{client: &mocks.MockRemoteClient{}}
	mgr := newTestManager(credentials.Load(map[string]string{}), f)

	assert.False(t, mgr.IsAvailable())
	assert.Equal(t, StateUnavailable, mgr.State())
	for i := 0; i < 3; i++ {
		assert.Nil(t, mgr.Client(context.Background()))
	}
	assert.Equal(t, int32(0), f.calls.Load(), "factory must not be called without credentials")
	assert.NoError(t, mgr.Close())
}

func TestManager_ConstructionFailure(t *testing.T) {
	tests := []struct {
		name    string
		factory *countingFactory
	}{
		{name: "factory error", factory: &countingFactory{err: errors.New("connection refused")}},
		{name: "factory panic", factory: &countingFactory{panic: true}},
		{name: "factory returns nil", factory: &countingFactory{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newTestManager(testCreds, tt.factory)

			assert.Nil(t, mgr.Client(context.Background()))
			assert.Equal(t, StateFailed, mgr.State())
			assert.True(t, mgr.IsAvailable(), "credentials are still configured")

			// Failure is terminal: no retry.
			assert.Nil(t, mgr.Client(context.Background()))
			assert.Equal(t, int32(1), tt.factory.calls.Load())
		})
	}
}

func TestManager_WaiterCancellationDoesNotAbortConstruction(t *testing.T) {
	client := &mocks.MockRemoteClient{}
	f := &countingFactory{client: client, delay: 50 * time.Millisecond}
	mgr := newTestManager(testCreds, f)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.Nil(t, mgr.Client(ctx), "abandoned caller gets nil")

	got := mgr.Client(context.Background())
	require.NotNil(t, got)
	assert.Same(t, client, got)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestManager_ConnectTimeoutIsPassedToFactory(t *testing.T) {
	var deadlineSet atomic.Bool
	factory := func(ctx context.Context, _ credentials.Pair) (domain.RemoteClient, error) {
		_, ok := ctx.Deadline()
		deadlineSet.Store(ok)
		return &mocks.MockRemoteClient{}, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := NewManager(testCreds, factory, logger, nil, WithConnectTimeout(time.Second))

	require.NotNil(t, mgr.Client(context.Background()))
	assert.True(t, deadlineSet.Load())
}

func TestManager_Close(t *testing.T) {
	client := &mocks.MockRemoteClient{}
	mgr := newTestManager(testCreds, &countingFactory{client: client})

	assert.NoError(t, mgr.Close(), "closing before construction is a no-op")
	assert.False(t, client.Closed)

	require.NotNil(t, mgr.Client(context.Background()))
	assert.NoError(t, mgr.Close())
	assert.True(t, client.Closed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}
