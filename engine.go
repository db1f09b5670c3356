package gallery

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// tickEnv is what a mode sees during one tick.
type tickEnv struct {
	viewport   Viewport
	pointer    Point
	hasPointer bool
	pool       *Pool
}

// modeState is the camera and culling state of one presentation mode.
// All methods run with the engine lock held.
type modeState interface {
	mode() Mode
	handle(ev InputEvent, env *tickEnv)
	step(env *tickEnv)
	cull(env *tickEnv) []VisibleItem
	// resolve maps a coordinate to its current pool index.
	resolve(c Coordinate, pool *Pool) (int, bool)
	poolChanged(pool *Pool)
	// hit maps a screen point to the coordinate rendered there in f.
	hit(p Point, f *Frame) (Coordinate, bool)
}

// Engine is the viewport engine. It owns the content pool, the active
// mode's camera and the frame loop, and turns input into render lists.
//
// Input methods may be called from any goroutine. Frames are produced by
// Tick, either from a host's per-frame callback or from the loop started
// by Run.
type Engine struct {
	opts  options
	input *InputBuffer

	mu         sync.Mutex
	pool       *Pool
	state      modeState
	motion     GridMotion
	stripSpeed int
	viewport   Viewport
	seq        uint64
	current    Frame

	loopMu sync.Mutex
	loop   *frameLoop
	active atomic.Int32
}

// New creates an engine with an empty pool in the configured mode.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := uint64(time.Now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	e := &Engine{
		opts:       o,
		input:      NewInputBuffer(),
		pool:       NewPool(nil),
		motion:     o.motion,
		stripSpeed: o.stripSpeed,
		viewport:   o.viewport,
	}
	e.state = e.newState(o.mode)
	return e
}

// newState builds the default camera state for m.
func (e *Engine) newState(m Mode) modeState {
	switch m {
	case ModeStrip:
		return newStripState(e.opts.strip, e.stripSpeed)
	case ModeSphere:
		return newSphereState(e.opts.sphere, e.pool, e.opts.rng)
	default:
		return &gridState{geom: e.opts.grid, cam: NewGridCamera(e.motion)}
	}
}

// SetPool replaces the content pool. Every content index handed out
// before is invalid afterwards; frames carry the new pool's generation.
// A nil pool is treated as empty.
func (e *Engine) SetPool(p *Pool) {
	if p == nil {
		p = NewPool(nil)
	}
	e.mu.Lock()
	e.pool = p
	e.state.poolChanged(p)
	e.mu.Unlock()

	ComponentLogger("engine").Info("pool replaced",
		"size", p.Len(), "generation", p.Generation())
}

// Pool returns the current content pool.
func (e *Engine) Pool() *Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool
}

// Mode returns the active presentation mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.mode()
}

// SetMode switches the presentation mode and resets the camera to that
// mode's defaults, even when m is already active. If a loop started by
// Run is active it is torn down and a new one is started on a fresh
// ticker, so exactly one loop survives any number of switches.
//
// SetMode must not be called from a FrameSink.
func (e *Engine) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMode, m)
	}

	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	prev := e.loop
	restart := prev != nil && prev.running()
	if restart {
		prev.stop()
	}

	e.mu.Lock()
	from := e.state.mode()
	e.state = e.newState(m)
	e.mu.Unlock()

	ComponentLogger("engine").Info("mode switched", "from", from, "to", m)

	if restart && prev.parent.Err() == nil {
		e.startLocked(prev.parent, prev.sink)
	} else if restart {
		e.loop = nil
	}
	return nil
}

// SetModeName parses name and switches to it. Unknown names return
// ErrInvalidMode and leave the current mode unchanged.
func (e *Engine) SetModeName(name string) error {
	m, err := ParseMode(name)
	if err != nil {
		return err
	}
	return e.SetMode(m)
}

// SetGridMotion selects how the grid camera moves. It applies at once in
// grid mode and is remembered for the next grid camera otherwise.
func (e *Engine) SetGridMotion(m GridMotion) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMode, m)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.motion = m
	if gs, ok := e.state.(*gridState); ok {
		gs.cam.PointerUp()
		gs.cam.Motion = m
	}
	return nil
}

// GridMotion returns the selected grid motion.
func (e *Engine) GridMotion() GridMotion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.motion
}

// SetStripSpeed sets the strip speed dial, clamped to 0..MaxStripSpeed.
func (e *Engine) SetStripSpeed(setting int) {
	setting = min(max(setting, 0), MaxStripSpeed)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stripSpeed = setting
	if ss, ok := e.state.(*stripState); ok {
		ss.cam.SetSpeed(setting)
	}
}

// OnPointerDown records a pointer press.
func (e *Engine) OnPointerDown(x, y float64) {
	e.input.Push(InputEvent{Kind: InputPointerDown, X: x, Y: y})
}

// OnPointerMove records a pointer move.
func (e *Engine) OnPointerMove(x, y float64) {
	e.input.Push(InputEvent{Kind: InputPointerMove, X: x, Y: y})
}

// OnPointerUp records a pointer release.
func (e *Engine) OnPointerUp(x, y float64) {
	e.input.Push(InputEvent{Kind: InputPointerUp, X: x, Y: y})
}

// OnWheel records a wheel delta.
func (e *Engine) OnWheel(deltaY float64) {
	e.input.Push(InputEvent{Kind: InputWheel, DeltaY: deltaY})
}

// OnKey records a key press. KeySpace toggles strip auto-scroll and
// KeyEscape leaves strip or sphere mode for the manual grid.
func (e *Engine) OnKey(key string) {
	e.input.Push(InputEvent{Kind: InputKey, Key: key})
}

// OnResize records a new viewport size. Invalid dimensions are clamped.
func (e *Engine) OnResize(width, height float64) {
	e.input.Resize(Viewport{Width: width, Height: height})
}

// Tick runs one frame: apply buffered input, step the camera, cull.
// The returned frame is owned by the caller.
func (e *Engine) Tick() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.input.Drain()
	if in.Resized {
		e.viewport = in.Viewport
	}
	env := &tickEnv{
		viewport:   e.viewport,
		pointer:    in.Pointer,
		hasPointer: in.HasPointer,
		pool:       e.pool,
	}

	for _, ev := range in.Events {
		if ev.Kind == InputKey && ev.Key == KeyEscape {
			if e.state.mode() != ModeGrid {
				e.motion = MotionManual
				e.state = e.newState(ModeGrid)
			}
			continue
		}
		e.state.handle(ev, env)
	}
	e.state.step(env)

	e.seq++
	f := Frame{
		Seq:        e.seq,
		Mode:       e.state.mode(),
		Generation: e.pool.Generation(),
		Viewport:   e.viewport,
	}
	if e.pool.Len() == 0 {
		f.Empty = true
	} else {
		f.Items = e.state.cull(env)
	}
	e.current = f
	return f
}

// Frame returns the most recent frame.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Activate resolves c against the live state of the active mode and
// reports the descriptor bound to it right now.
func (e *Engine) Activate(c Coordinate) (ImageDescriptor, error) {
	e.mu.Lock()
	d, err := e.resolveLocked(c)
	e.mu.Unlock()
	if err != nil {
		return ImageDescriptor{}, err
	}
	e.notify(d)
	return d, nil
}

// ActivateAt activates the item rendered at screen point (x, y) in the
// most recent frame. It returns ErrNoItem when nothing is there.
func (e *Engine) ActivateAt(x, y float64) (ImageDescriptor, error) {
	e.mu.Lock()
	if e.pool.Len() == 0 {
		e.mu.Unlock()
		return ImageDescriptor{}, ErrEmptyPool
	}
	c, ok := e.state.hit(Pt(x, y), &e.current)
	if !ok {
		e.mu.Unlock()
		return ImageDescriptor{}, ErrNoItem
	}
	d, err := e.resolveLocked(c)
	e.mu.Unlock()
	if err != nil {
		return ImageDescriptor{}, err
	}
	e.notify(d)
	return d, nil
}

func (e *Engine) resolveLocked(c Coordinate) (ImageDescriptor, error) {
	if e.pool.Len() == 0 {
		return ImageDescriptor{}, ErrEmptyPool
	}
	idx, ok := e.state.resolve(c, e.pool)
	if !ok {
		return ImageDescriptor{}, ErrNoItem
	}
	d, ok := e.pool.At(idx)
	if !ok {
		return ImageDescriptor{}, ErrNoItem
	}
	return d, nil
}

func (e *Engine) notify(d ImageDescriptor) {
	ComponentLogger("engine").Debug("item activated", "id", d.ID)
	if e.opts.onActivate != nil {
		e.opts.onActivate(d)
	}
}

// Bindings returns the sphere's current slot bindings, or nil when the
// sphere is not the active mode.
func (e *Engine) Bindings() []SlotBinding {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ss, ok := e.state.(*sphereState); ok {
		return ss.table.Bindings()
	}
	return nil
}
