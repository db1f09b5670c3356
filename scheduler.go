package gallery

import (
	"context"
	"time"
)

// DefaultFrameInterval is the loop period used by Run: one tick per
// display refresh at 60 Hz. Physics use a constant per-tick step.
const DefaultFrameInterval = time.Second / 60

// Ticker delivers tick signals to a frame loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates the ticker for a new frame loop. Each loop owns
// exactly one ticker and stops it on exit.
type TickerFactory func(interval time.Duration) Ticker

// timeTicker adapts time.Ticker to Ticker.
type timeTicker struct{ t *time.Ticker }

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(interval time.Duration) Ticker {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return timeTicker{t: time.NewTicker(interval)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// TimeTickers is the default TickerFactory.
var TimeTickers TickerFactory = NewTimeTicker

// FrameSink receives every frame produced by a loop, on the loop's
// goroutine. It must not call SetMode or Stop.
type FrameSink func(Frame)

// frameLoop is the single owned handle to a running loop.
type frameLoop struct {
	parent context.Context
	sink   FrameSink
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *frameLoop) running() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

func (l *frameLoop) stop() {
	l.cancel()
	<-l.done
}

// Run starts the frame loop on its own goroutine and returns immediately.
// The loop ticks until ctx is cancelled or Stop is called. Run returns
// ErrLoopRunning if a loop is already active.
func (e *Engine) Run(ctx context.Context, sink FrameSink) error {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if e.loop != nil && e.loop.running() {
		return ErrLoopRunning
	}
	e.startLocked(ctx, sink)
	return nil
}

func (e *Engine) startLocked(parent context.Context, sink FrameSink) {
	ctx, cancel := context.WithCancel(parent)
	l := &frameLoop{
		parent: parent,
		sink:   sink,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ticker := e.opts.tickers(e.opts.interval)
	e.loop = l
	e.active.Add(1)

	log := ComponentLogger("scheduler")
	log.Debug("loop started", "interval", e.opts.interval)

	go func() {
		defer close(l.done)
		defer e.active.Add(-1)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Debug("loop stopped", "cause", context.Cause(ctx))
				return
			case <-ticker.C():
				f := e.Tick()
				if sink != nil {
					sink(f)
				}
			}
		}
	}()
}

// Stop cancels the running loop and waits for it to exit. It is a no-op
// when no loop is running.
func (e *Engine) Stop() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if e.loop == nil {
		return
	}
	e.loop.stop()
	e.loop = nil
}

// Done returns a channel closed when the current loop exits, or nil when
// no loop has been started.
func (e *Engine) Done() <-chan struct{} {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if e.loop == nil {
		return nil
	}
	return e.loop.done
}

// ActiveLoops returns the number of frame loops currently running.
func (e *Engine) ActiveLoops() int {
	return int(e.active.Load())
}
