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
	order   *stopOrder
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) record(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	for !m.stopped.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.order != nil {
		m.order.record(m.name)
	}
}

func TestLifecycleStartsAndStopsOnCancel(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("acceptor", svc1)
	lc.Add("scheduler", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 5*time.Millisecond, "services did not start")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	lc.Add("first", &mockService{name: "first", order: order})
	lc.Add("second", &mockService{name: "second", order: order})
	lc.Add("third", &mockService{name: "third", order: order})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"third", "second", "first"}, order.names)
}

func TestLifecycleFailingServiceTriggersShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("listen failed")
	healthy := &mockService{}
	lc.Add("healthy", healthy)
	lc.Add("broken", &mockService{startFn: func() error { return boom }})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down on service failure")
	}
	assert.True(t, healthy.stopped.Load())
}

func TestFuncService(t *testing.T) {
	var started, stopped atomic.Bool
	stop := make(chan struct{})
	svc := &FuncService{
		StartFn: func() error {
			started.Store(true)
			<-stop
			return nil
		},
		StopFn: func() {
			stopped.Store(true)
			close(stop)
		},
	}

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	require.Eventually(t, func() bool { return started.Load() },
		2*time.Second, time.Millisecond)

	svc.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("FuncService did not stop")
	}
	assert.True(t, stopped.Load())
}
