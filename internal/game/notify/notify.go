// Package notify turns creature events into fire-and-forget player
// notifications.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Color is a display hint for a notification.
type Color string

const (
	ColorNone   Color = ""
	ColorWhite  Color = "white"
	ColorGray   Color = "gray"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorGold   Color = "gold"
)

// Notification is one message for the player. Icon and Color are optional.
type Notification struct {
	Message string
	Icon    string
	Color   Color
}

// Sink receives notifications. Notify must not block.
type Sink interface {
	Notify(n Notification)
}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink logging at info level.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs n.
func (s *LogSink) Notify(n Notification) {
	s.logger.Info(n.Message,
		zap.String("icon", n.Icon),
		zap.String("color", string(n.Color)),
	)
}

// ChannelSink queues notifications on a bounded channel for a consumer on
// another goroutine. When the buffer is full new notifications are dropped.
type ChannelSink struct {
	ch      chan Notification
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewChannelSink creates a ChannelSink with the given buffer size; sizes
// below 1 default to 64.
func NewChannelSink(bufferSize int) *ChannelSink {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &ChannelSink{ch: make(chan Notification, bufferSize)}
}

// Notify enqueues n, dropping it if the sink is closed or full.
func (s *ChannelSink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.dropped++
		return
	}
	select {
	case s.ch <- n:
	default:
		s.dropped++
	}
}

// C returns the receive side of the queue. It is closed by Close.
func (s *ChannelSink) C() <-chan Notification {
	return s.ch
}

// Dropped reports how many notifications were discarded.
func (s *ChannelSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close closes the channel. Later notifications are dropped.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

// Notify forwards n to every sink.
func (f Fanout) Notify(n Notification) {
	for _, s := range f {
		s.Notify(n)
	}
}
