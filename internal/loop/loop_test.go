package loop

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"matrix-rain/internal/rain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTickDeltas(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var deltas []time.Duration
	l := New(time.Second/60, clock, func(d time.Duration) error {
		deltas = append(deltas, d)
		return nil
	})
	l.last = clock.Now()

	steps := []time.Duration{16 * time.Millisecond, 0, 40 * time.Millisecond, -5 * time.Millisecond}
	for _, s := range steps {
		clock.advance(s)
		if err := l.tick(); err != nil {
			t.Fatal(err)
		}
	}

	want := []time.Duration{16 * time.Millisecond, 0, 40 * time.Millisecond, 0}
	for i := range want {
		if deltas[i] != want[i] {
			t.Errorf("tick %d: expected delta %v, got %v", i, want[i], deltas[i])
		}
	}
	if l.Frames() != 4 {
		t.Errorf("expected 4 frames, got %d", l.Frames())
	}
}

func TestRunStops(t *testing.T) {
	tests := []struct {
		name string
		stop func(cancel context.CancelFunc, l *Loop)
	}{
		{"context cancelled", func(cancel context.CancelFunc, _ *Loop) { cancel() }},
		{"Stop", func(_ context.CancelFunc, l *Loop) { l.Stop(); l.Stop() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticked := make(chan struct{}, 1)
			l := New(time.Millisecond, nil, func(time.Duration) error {
				select {
				case ticked <- struct{}{}:
				default:
				}
				return nil
			})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- l.Run(ctx) }()
			<-ticked
			tt.stop(cancel, l)

			select {
			case err := <-done:
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("loop did not stop")
			}
		})
	}
}

func TestRunReturnsStepError(t *testing.T) {
	boom := errors.New("boom")
	l := New(time.Millisecond, nil, func(time.Duration) error { return boom })
	if err := l.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected step error, got %v", err)
	}
}

type canvasCall struct {
	kind string
	bg   rain.RGB
}

type fakeCanvas struct {
	calls  []canvasCall
	glyphs int
	err    error
}

func (c *fakeCanvas) Fill(bg rain.RGB) { c.calls = append(c.calls, canvasCall{"fill", bg}) }

func (c *fakeCanvas) Present() error {
	c.calls = append(c.calls, canvasCall{kind: "present"})
	return c.err
}

func (c *fakeCanvas) DrawGlyph(x, y int, glyph rune, col rain.RGB) { c.glyphs++ }

type flat rain.RGB

func (f flat) Sample(x, y int) rain.RGB { return rain.RGB(f) }

func newTestGrid(t *testing.T, d rain.GlyphDrawer, w, h int) *rain.Grid {
	t.Helper()
	p := rain.DefaultParams()
	p.CellSize = 1
	p.MinDelay, p.MaxDelay = 0, 0
	g, err := rain.NewGrid(p, w, h, flat{50, 90, 50}, d, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSceneStepOrder(t *testing.T) {
	c := &fakeCanvas{}
	bg := rain.RGB{R: 1, G: 2, B: 3}
	s := NewScene(c, newTestGrid(t, c, 4, 4), bg)

	if err := s.Step(16 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if len(c.calls) != 2 || c.calls[0] != (canvasCall{"fill", bg}) || c.calls[1].kind != "present" {
		t.Errorf("unexpected canvas calls %+v", c.calls)
	}
	if c.glyphs == 0 {
		t.Error("expected the grid to draw between fill and present")
	}

	c.err = errors.New("write failed")
	if err := s.Step(16 * time.Millisecond); err == nil {
		t.Error("expected present error to propagate")
	}
}

func TestSceneRebuild(t *testing.T) {
	c := &fakeCanvas{}
	s := NewScene(c, newTestGrid(t, c, 4, 4), rain.RGB{})

	if err := s.Rebuild(func() (*rain.Grid, error) { return newTestGrid(t, c, 9, 3), nil }); err != nil {
		t.Fatal(err)
	}
	if g := s.Grid(); g.Width() != 9 || g.Length() != 3 {
		t.Errorf("expected 9x3 grid, got %dx%d", g.Width(), g.Length())
	}

	fail := errors.New("too small")
	if err := s.Rebuild(func() (*rain.Grid, error) { return nil, fail }); !errors.Is(err, fail) {
		t.Errorf("expected build error, got %v", err)
	}
	if s.Grid() == nil || s.Grid().Width() != 9 {
		t.Error("failed rebuild replaced the grid")
	}
}

// TestLoopDrivesScene runs a scene through the loop with a fake clock.
func TestLoopDrivesScene(t *testing.T) {
	c := &fakeCanvas{}
	s := NewScene(c, newTestGrid(t, c, 6, 5), rain.RGB{})
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := New(time.Second/30, clock, s.Step)
	l.last = clock.Now()

	for range 10 {
		clock.advance(33 * time.Millisecond)
		if err := l.tick(); err != nil {
			t.Fatal(err)
		}
	}
	if st := s.Grid().Stats(); st.Seeded == 0 {
		t.Errorf("expected seeded cells after 10 frames, got %+v", st)
	}
	if presents := len(c.calls) / 2; presents != 10 {
		t.Errorf("expected 10 presents, got %d", presents)
	}
}

// TestFramesWhileRunning reads the frame count from another goroutine
// while the loop ticks.
func TestFramesWhileRunning(t *testing.T) {
	l := New(time.Millisecond, nil, func(time.Duration) error { return nil })
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for l.Frames() < 3 {
		if time.Now().After(deadline) {
			l.Stop()
			t.Fatalf("expected at least 3 frames, got %d", l.Frames())
		}
		time.Sleep(time.Millisecond)
	}
	l.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	stopped := l.Frames()
	time.Sleep(10 * time.Millisecond)
	if l.Frames() != stopped {
		t.Errorf("frames kept counting after Stop: %d -> %d", stopped, l.Frames())
	}
}
