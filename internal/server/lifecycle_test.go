package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	started atomic.Bool
	stopped chan struct{}
	once    sync.Once
	startFn func() error
	stopErr error
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func newMockService(name string, order *stopOrder) *mockService {
	return &mockService{name: name, stopped: make(chan struct{}), order: order}
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-m.stopped
	return nil
}

func (m *mockService) Stop(context.Context) error {
	m.once.Do(func() { close(m.stopped) })
	if m.order != nil {
		m.order.add(m.name)
	}
	return m.stopErr
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		all := true
		for _, s := range svcs {
			all = all && s.started.Load()
		}
		if all {
			return
		}
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	order := &stopOrder{}
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	grpc := newMockService("grpc", order)
	health := newMockService("health", order)
	lc.Add("grpc", grpc)
	lc.Add("health", health)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, grpc, health)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"health", "grpc"}, order.names)
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	boom := errors.New("listen: address in use")
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	failing := newMockService("grpc", nil)
	failing.startFn = func() error { return boom }
	steady := newMockService("steady", nil)
	lc.Add("steady", steady)
	lc.Add("grpc", failing)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "service grpc")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, steady.started.Load())
}

func TestLifecycleJoinsStopErrors(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	svc := newMockService("grpc", nil)
	svc.stopErr = context.DeadlineExceeded
	lc.Add("grpc", svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	waitStarted(t, svc)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "stopping grpc")
}

func TestFuncService(t *testing.T) {
	started := false
	var stopCtx context.Context

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func(ctx context.Context) error {
			stopCtx = ctx
			return nil
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)

	ctx := context.Background()
	assert.NoError(t, svc.Stop(ctx))
	assert.Equal(t, ctx, stopCtx)
}
