package gallery

import (
	"slices"
	"sync"
)

// InputKind classifies a buffered input event.
type InputKind int

const (
	InputPointerDown InputKind = iota + 1
	InputPointerMove
	InputPointerUp
	InputWheel
	InputKey
)

// Key names understood by the engine.
const (
	KeyEscape = "Escape"
	KeySpace  = " "
)

// maxPendingEvents bounds the queue when no loop is draining it.
const maxPendingEvents = 1024

// InputEvent is one raw input event.
type InputEvent struct {
	Kind   InputKind
	X, Y   float64 // pointer position for pointer events
	DeltaY float64 // wheel delta
	Key    string  // key name for InputKey
}

// InputFrame is everything that arrived since the previous drain.
type InputFrame struct {
	Events []InputEvent
	// Pointer is the latest known pointer position, valid if HasPointer.
	// It survives mode switches.
	Pointer    Point
	HasPointer bool
	// Viewport is the latest resize, valid if Resized.
	Viewport Viewport
	Resized  bool
}

// InputBuffer collects input from any goroutine until the next tick.
//
// Consecutive pointer moves are merged into the latest position and
// consecutive wheel deltas are summed; both are lossless for the camera
// models, which only depend on accumulated deltas.
type InputBuffer struct {
	mu         sync.Mutex
	events     []InputEvent
	pointer    Point
	hasPointer bool
	viewport   Viewport
	resized    bool
	dropped    int
}

// NewInputBuffer creates an empty input buffer.
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{events: make([]InputEvent, 0, 16)}
}

// Push queues an event.
func (b *InputBuffer) Push(ev InputEvent) {
	ev.X, ev.Y, ev.DeltaY = finite(ev.X), finite(ev.Y), finite(ev.DeltaY)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.Kind {
	case InputPointerDown, InputPointerMove, InputPointerUp:
		b.pointer = Point{X: ev.X, Y: ev.Y}
		b.hasPointer = true
	}

	if n := len(b.events); n > 0 {
		last := &b.events[n-1]
		switch {
		case ev.Kind == InputPointerMove && last.Kind == InputPointerMove:
			last.X, last.Y = ev.X, ev.Y
			return
		case ev.Kind == InputWheel && last.Kind == InputWheel:
			last.DeltaY += ev.DeltaY
			return
		}
	}

	if len(b.events) >= maxPendingEvents {
		b.dropped++
		i := slices.IndexFunc(b.events, func(e InputEvent) bool { return e.lossy() })
		switch {
		case i >= 0:
			b.events = slices.Delete(b.events, i, i+1)
		case ev.lossy():
			return
		default:
			b.events = slices.Delete(b.events, 0, 1)
		}
	}
	b.events = append(b.events, ev)
}

// lossy reports whether dropping the event only loses intermediate motion.
// Presses, releases and keys change camera state and are kept while any
// lossy event can be dropped instead.
func (ev InputEvent) lossy() bool {
	return ev.Kind == InputPointerMove || ev.Kind == InputWheel
}

// Resize records the latest viewport size.
func (b *InputBuffer) Resize(vp Viewport) {
	b.mu.Lock()
	b.viewport = vp.Sanitize()
	b.resized = true
	b.mu.Unlock()
}

// Pointer returns the latest known pointer position.
func (b *InputBuffer) Pointer() (Point, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pointer, b.hasPointer
}

// Drain returns and clears the pending events in one critical section,
// so a tick never observes half of an input burst.
func (b *InputBuffer) Drain() InputFrame {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := InputFrame{
		Pointer:    b.pointer,
		HasPointer: b.hasPointer,
		Viewport:   b.viewport,
		Resized:    b.resized,
	}
	if len(b.events) > 0 {
		f.Events = b.events
		b.events = make([]InputEvent, 0, cap(f.Events))
	}
	b.resized = false
	if b.dropped > 0 {
		Logger().Warn("gallery: input events dropped", "count", b.dropped)
		b.dropped = 0
	}
	return f
}
