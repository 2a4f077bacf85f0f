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

// blockingService runs until Stop is called.
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once
	onStop  func()
}

func newBlockingService() *blockingService {
	return &blockingService{done: make(chan struct{})}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	<-b.done
	return nil
}

func (b *blockingService) Stop() {
	b.stopped.Store(true)
	if b.onStop != nil {
		b.onStop()
	}
	b.once.Do(func() { close(b.done) })
}

func waitStarted(t *testing.T, svcs ...*blockingService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycle_StopsOnCancel(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1, svc2 := newBlockingService(), newBlockingService()
	lc.Add("telnet", svc1)
	lc.Add("grpc", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
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

func TestLifecycle_StopsInReverseOrderAfterHooks(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var mu sync.Mutex
	var order []string
	record := func(s string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, s)
		}
	}
	first, second := newBlockingService(), newBlockingService()
	first.onStop = record("stop first")
	second.onStop = record("stop second")
	lc.Add("first", first)
	lc.Add("second", second)
	lc.OnShutdown(record("hook"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	waitStarted(t, first, second)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"hook", "stop second", "stop first"}, order)
}

func TestLifecycle_ServiceFailureStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := newBlockingService()
	boom := errors.New("bind: address in use")
	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{
		StartFn: func() error { return boom },
		StopFn:  func() {},
	})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "service broken")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not stop after a failure")
	}
	assert.True(t, healthy.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn:  func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
