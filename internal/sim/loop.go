// Package sim runs the single-goroutine tick loop that owns a player's
// roster and the creatures it simulates.
package sim

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Submit and Do once the loop has stopped.
var ErrStopped = errors.New("sim loop stopped")

// TickFunc is called once per tick with the tick number, starting at 1.
type TickFunc func(tick uint64)

// Loop runs registered tick callbacks and submitted work on one goroutine.
// Roster and Entity values are not safe for concurrent use, so every
// mutation of them goes through the Loop.
//
// Invariant: callbacks and submitted work never run concurrently with each
// other.
type Loop struct {
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	ticks map[string]TickFunc

	work chan func()
	done chan struct{}
	once sync.Once
	tick uint64
}

// NewLoop returns a loop that ticks every interval.
//
// Precondition: interval must be > 0.
func NewLoop(interval time.Duration, logger *zap.Logger) *Loop {
	if interval <= 0 {
		panic("sim.NewLoop: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		interval: interval,
		logger:   logger,
		ticks:    make(map[string]TickFunc),
		work:     make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// RegisterTick registers fn under name, replacing any existing callback.
// Callbacks run in name order.
func (l *Loop) RegisterTick(name string, fn TickFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks[name] = fn
}

// Unregister removes the callback registered under name.
func (l *Loop) Unregister(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.ticks, name)
}

// Step runs one tick synchronously on the calling goroutine and returns its
// number. It must not be called while Run is active.
func (l *Loop) Step() uint64 {
	l.mu.Lock()
	names := make([]string, 0, len(l.ticks))
	for name := range l.ticks {
		names = append(names, name)
	}
	sort.Strings(names)
	callbacks := make([]TickFunc, len(names))
	for i, name := range names {
		callbacks[i] = l.ticks[name]
	}
	l.mu.Unlock()

	l.tick++
	for _, fn := range callbacks {
		fn(l.tick)
	}
	return l.tick
}

// Run ticks until ctx is cancelled or Stop is called, executing submitted
// work between ticks.
//
// Postcondition: After Run returns, Submit and Do return ErrStopped.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.Stop()
	l.logger.Info("sim loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("sim loop stopped", zap.Uint64("ticks", l.tick))
			return nil
		case <-l.done:
			l.logger.Info("sim loop stopped", zap.Uint64("ticks", l.tick))
			return nil
		case fn := <-l.work:
			fn()
		case <-ticker.C:
			l.Step()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Submit queues fn to run on the loop goroutine.
//
// Postcondition: Returns ErrStopped if the loop has stopped, or ctx.Err() if
// ctx ends before fn could be queued.
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.work <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
//
// Postcondition: Returns nil if and only if fn ran. ErrStopped means fn did
// not run and never will.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	const (
		queued int32 = iota
		running
		abandoned
	)
	var state atomic.Int32
	finished := make(chan struct{})
	if err := l.Submit(ctx, func() {
		if !state.CompareAndSwap(queued, running) {
			return
		}
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		if state.CompareAndSwap(queued, abandoned) {
			return ErrStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(queued, abandoned) {
			return ctx.Err()
		}
	}
	<-finished
	return nil
}
