package sim_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/menagerie/internal/sim"
)

func TestLoop_StepRunsCallbacksInNameOrder(t *testing.T) {
	l := sim.NewLoop(time.Second, zaptest.NewLogger(t))
	var order []string
	l.RegisterTick("b", func(uint64) { order = append(order, "b") })
	l.RegisterTick("a", func(uint64) { order = append(order, "a") })

	assert.Equal(t, uint64(1), l.Step())
	assert.Equal(t, uint64(2), l.Step())
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)

	l.Unregister("a")
	l.Step()
	assert.Equal(t, "b", order[len(order)-1])
	assert.Len(t, order, 5)
}

// startLoop runs l until the test ends.
func startLoop(t *testing.T, l *sim.Loop) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctx
}

func TestLoop_NewLoopPanicsOnZeroInterval(t *testing.T) {
	assert.Panics(t, func() { sim.NewLoop(0, nil) })
}

func TestLoop_RunInvokesTicks(t *testing.T) {
	l := sim.NewLoop(10*time.Millisecond, zaptest.NewLogger(t))
	called := make(chan uint64, 1)
	l.RegisterTick("zone", func(n uint64) {
		select {
		case called <- n:
		default:
		}
	})
	startLoop(t, l)

	select {
	case n := <-called:
		assert.GreaterOrEqual(t, n, uint64(1))
	case <-time.After(time.Second):
		t.Fatal("tick callback not invoked within timeout")
	}
}

func TestLoop_DoRunsOnLoopGoroutine(t *testing.T) {
	l := sim.NewLoop(time.Hour, zaptest.NewLogger(t))
	ctx := startLoop(t, l)

	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Do(ctx, func() { ran.Add(1) }))
	}
	assert.Equal(t, int64(10), ran.Load())
}

func TestLoop_StoppedLoopRejectsWork(t *testing.T) {
	l := sim.NewLoop(time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.Stop()
	l.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.True(t, errors.Is(l.Submit(ctx, func() {}), sim.ErrStopped))
	assert.True(t, errors.Is(l.Do(ctx, func() {}), sim.ErrStopped))
}

func TestLoop_DoReportsWorkThatStopsTheLoop(t *testing.T) {
	for i := 0; i < 50; i++ {
		l := sim.NewLoop(time.Hour, zaptest.NewLogger(t))
		done := make(chan error, 1)
		go func() { done <- l.Run(context.Background()) }()

		var ran atomic.Bool
		err := l.Do(context.Background(), func() {
			ran.Store(true)
			l.Stop()
		})
		require.NoError(t, err)
		assert.True(t, ran.Load())
		require.NoError(t, <-done)
	}
}

func TestLoop_RunReturnsOnCancel(t *testing.T) {
	l := sim.NewLoop(5*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.ErrorIs(t, l.Submit(context.Background(), func() {}), sim.ErrStopped)
}
