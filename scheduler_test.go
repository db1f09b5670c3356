package gallery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// manualTicker fires only when the test sends on it.
type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

// manualTickers records every ticker handed to a loop.
type manualTickers struct {
	mu  sync.Mutex
	all []*manualTicker
}

func (f *manualTickers) factory(time.Duration) Ticker {
	t := &manualTicker{c: make(chan time.Time)}
	f.mu.Lock()
	f.all = append(f.all, t)
	f.mu.Unlock()
	return t
}

func (f *manualTickers) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all[len(f.all)-1]
}

func (f *manualTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.all)
}

func newScheduledEngine(t *testing.T, opts ...Option) (*Engine, *manualTickers, chan Frame) {
	t.Helper()
	tickers := &manualTickers{}
	e := newTestEngine(append(opts, WithTickerFactory(tickers.factory, 0))...)
	e.SetPool(testPool(20))
	frames := make(chan Frame, 16)
	t.Cleanup(e.Stop)
	return e, tickers, frames
}

func fire(t *testing.T, tk *manualTicker, frames <-chan Frame) Frame {
	t.Helper()
	tk.c <- time.Now()
	select {
	case f := <-frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame after tick")
		return Frame{}
	}
}

func TestRunProducesFrames(t *testing.T) {
	e, tickers, frames := newScheduledEngine(t)
	if err := e.Run(context.Background(), func(f Frame) { frames <- f }); err != nil {
		t.Fatal(err)
	}
	if n := e.ActiveLoops(); n != 1 {
		t.Fatalf("ActiveLoops() = %d, want 1", n)
	}

	f1 := fire(t, tickers.last(), frames)
	f2 := fire(t, tickers.last(), frames)
	if f2.Seq != f1.Seq+1 || len(f1.Items) == 0 {
		t.Errorf("frames seq %d,%d with %d items", f1.Seq, f2.Seq, len(f1.Items))
	}
}

func TestRunTwiceFails(t *testing.T) {
	e, _, _ := newScheduledEngine(t)
	if err := e.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background(), nil); !errors.Is(err, ErrLoopRunning) {
		t.Errorf("second Run err = %v, want ErrLoopRunning", err)
	}
	if n := e.ActiveLoops(); n != 1 {
		t.Errorf("ActiveLoops() = %d, want 1", n)
	}
}

func TestStopIdempotent(t *testing.T) {
	e, tickers, _ := newScheduledEngine(t)
	e.Stop()
	if err := e.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	e.Stop()
	e.Stop()
	if n := e.ActiveLoops(); n != 0 {
		t.Errorf("ActiveLoops() after Stop = %d, want 0", n)
	}
	if !tickers.last().stopped.Load() {
		t.Error("ticker not stopped with its loop")
	}
	if err := e.Run(context.Background(), nil); err != nil {
		t.Errorf("Run after Stop: %v", err)
	}
}

func TestModeSwitchKeepsOneLoop(t *testing.T) {
	e, tickers, frames := newScheduledEngine(t)
	if err := e.Run(context.Background(), func(f Frame) { frames <- f }); err != nil {
		t.Fatal(err)
	}

	modes := []Mode{ModeStrip, ModeSphere, ModeGrid, ModeSphere, ModeStrip, ModeStrip, ModeSphere}
	for _, m := range modes {
		if err := e.SetMode(m); err != nil {
			t.Fatal(err)
		}
		if n := e.ActiveLoops(); n != 1 {
			t.Fatalf("after SetMode(%v) ActiveLoops() = %d, want 1", m, n)
		}
	}

	if got, want := tickers.count(), len(modes)+1; got != want {
		t.Errorf("tickers created = %d, want %d", got, want)
	}
	tickers.mu.Lock()
	for i, tk := range tickers.all[:len(tickers.all)-1] {
		if !tk.stopped.Load() {
			t.Errorf("ticker %d of a torn-down loop still running", i)
		}
	}
	tickers.mu.Unlock()

	f := fire(t, tickers.last(), frames)
	if f.Mode != ModeSphere {
		t.Errorf("frame mode = %v, want sphere", f.Mode)
	}
	if ss := e.state.(*sphereState); ss.cam.RotationX != sphereSpin {
		t.Errorf("sphere camera after one tick RotationX = %v, want a fresh camera", ss.cam.RotationX)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	e, _, _ := newScheduledEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := e.Run(ctx, nil); err != nil {
		t.Fatal(err)
	}
	done := e.Done()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after cancel")
	}
	if n := e.ActiveLoops(); n != 0 {
		t.Errorf("ActiveLoops() = %d, want 0", n)
	}

	// A switch after cancellation does not resurrect the loop.
	if err := e.SetMode(ModeStrip); err != nil {
		t.Fatal(err)
	}
	if n := e.ActiveLoops(); n != 0 {
		t.Errorf("ActiveLoops() after SetMode = %d, want 0", n)
	}
	if err := e.Run(context.Background(), nil); err != nil {
		t.Errorf("Run after cancelled loop: %v", err)
	}
}

func TestNewTimeTicker(t *testing.T) {
	tk := NewTimeTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(2 * time.Second):
		t.Fatal("time ticker never fired")
	}
}
