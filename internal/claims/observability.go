package claims

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type GuardLatencyObserver interface {
	ObserveGuardLatency(guard Guard, duration time.Duration)
}

type GuardLatencyLogger struct {
	logger *zap.Logger
}

func NewGuardLatencyLogger(logger *zap.Logger) *GuardLatencyLogger {
	return &GuardLatencyLogger{logger: logger}
}

func (l *GuardLatencyLogger) ObserveGuardLatency(guard Guard, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug("claim_guard_latency",
		zap.String("guard", string(guard)),
		zap.Float64("duration_ms", float64(duration.Microseconds())/1000.0),
	)
}

// AsyncGuardLatencyObserver forwards observations from a bounded buffer.
// When the buffer is full the observation is dropped and counted.
type AsyncGuardLatencyObserver struct {
	next    GuardLatencyObserver
	events  chan guardLatencyEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type guardLatencyEvent struct {
	guard    Guard
	duration time.Duration
}

func NewAsyncGuardLatencyObserver(next GuardLatencyObserver, buffer int) *AsyncGuardLatencyObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncGuardLatencyObserver{
		next:   next,
		events: make(chan guardLatencyEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveGuardLatency(ev.guard, ev.duration)
		}
	}()

	return o
}

func (o *AsyncGuardLatencyObserver) ObserveGuardLatency(guard Guard, duration time.Duration) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- guardLatencyEvent{guard: guard, duration: duration}:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncGuardLatencyObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close drains pending observations. Safe to call more than once.
func (o *AsyncGuardLatencyObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
