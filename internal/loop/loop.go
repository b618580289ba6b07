// Package loop drives a frame-based animation at a fixed rate.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies the current time so tests can control frame deltas.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StepFunc advances the animation by delta and presents a frame. An error
// ends the loop.
type StepFunc func(delta time.Duration) error

// Loop calls a step function once per tick with the time elapsed since the
// previous tick.
type Loop struct {
	interval time.Duration
	clock    Clock
	step     StepFunc

	last   time.Time
	frames atomic.Uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a loop ticking every interval. A nil clock uses the wall
// clock.
func New(interval time.Duration, clock Clock, step StepFunc) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		interval: interval,
		clock:    clock,
		step:     step,
		stopCh:   make(chan struct{}),
	}
}

// Run ticks until ctx is cancelled, Stop is called or a step fails. It
// returns the step error, or nil on a normal stop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.last = l.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stopCh:
			return nil
		case <-ticker.C:
			if err := l.tick(); err != nil {
				return err
			}
		}
	}
}

// Stop shuts down the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Frames returns how many steps have run. It is safe to call while Run
// is ticking.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

func (l *Loop) tick() error {
	now := l.clock.Now()
	delta := max(now.Sub(l.last), 0)
	l.last = now
	l.frames.Add(1)
	return l.step(delta)
}
