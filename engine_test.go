package gallery

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
)

func testPool(n int) *Pool {
	items := make([]ImageDescriptor, n)
	for i := range items {
		items[i] = ImageDescriptor{
			ID:          fmt.Sprintf("img-%03d", i),
			Thumbnail:   fmt.Sprintf("/api/thumb/%03d.jpg", i),
			Full:        fmt.Sprintf("/api/image/%03d.jpg", i),
			DisplayName: fmt.Sprintf("%03d.jpg", i),
		}
	}
	return NewPool(items)
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{
		WithViewport(1280, 800),
		WithRand(rand.New(rand.NewPCG(42, 43))),
	}, opts...)
	return New(opts...)
}

func TestEngineEmptyPool(t *testing.T) {
	e := newTestEngine()
	for _, m := range []Mode{ModeGrid, ModeStrip, ModeSphere} {
		if err := e.SetMode(m); err != nil {
			t.Fatalf("SetMode(%v): %v", m, err)
		}
		f := e.Tick()
		if !f.Empty || f.Items != nil {
			t.Errorf("%v: frame Empty=%v items=%d, want empty", m, f.Empty, len(f.Items))
		}
	}
	if _, err := e.ActivateAt(10, 10); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("ActivateAt on empty pool: err = %v, want ErrEmptyPool", err)
	}
	if _, err := e.Activate(Coordinate{}); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Activate on empty pool: err = %v, want ErrEmptyPool", err)
	}
}

func TestEngineTickProducesFrames(t *testing.T) {
	e := newTestEngine()
	pool := testPool(10)
	e.SetPool(pool)

	f1 := e.Tick()
	f2 := e.Tick()
	if f2.Seq != f1.Seq+1 {
		t.Errorf("Seq = %d then %d, want consecutive", f1.Seq, f2.Seq)
	}
	if f1.Generation != pool.Generation() {
		t.Errorf("Generation = %d, want %d", f1.Generation, pool.Generation())
	}
	if f1.Mode != ModeGrid || len(f1.Items) == 0 {
		t.Errorf("frame mode %v with %d items, want grid with items", f1.Mode, len(f1.Items))
	}

	next := testPool(10)
	e.SetPool(next)
	if f := e.Tick(); f.Generation != next.Generation() || f.Generation == pool.Generation() {
		t.Errorf("Generation after SetPool = %d, want %d", f.Generation, next.Generation())
	}
}

func TestEngineResizeAppliesOnTick(t *testing.T) {
	e := newTestEngine()
	e.SetPool(testPool(3))
	e.OnResize(640, 480)
	if f := e.Frame(); f.Viewport.Width == 640 {
		t.Error("resize applied before tick")
	}
	f := e.Tick()
	if f.Viewport != (Viewport{Width: 640, Height: 480}) {
		t.Errorf("Viewport = %+v, want 640x480", f.Viewport)
	}

	e.OnResize(-1, 0)
	if f := e.Tick(); len(f.Items) != 0 {
		t.Errorf("degenerate viewport produced %d items", len(f.Items))
	}
}

func TestEngineSetModeInvalid(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrip))
	if err := e.SetMode(Mode(99)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetMode(99) err = %v, want ErrInvalidMode", err)
	}
	if err := e.SetModeName("carousel"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetModeName(carousel) err = %v, want ErrInvalidMode", err)
	}
	if got := e.Mode(); got != ModeStrip {
		t.Errorf("Mode() = %v after invalid switch, want strip", got)
	}
	if err := e.SetModeName("globe"); err != nil {
		t.Fatalf("SetModeName(globe): %v", err)
	}
	if got := e.Mode(); got != ModeSphere {
		t.Errorf("Mode() = %v, want sphere", got)
	}
}

func TestEngineSetModeResetsCamera(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrip))
	e.SetPool(testPool(5))
	for range 30 {
		e.Tick()
	}
	ss := e.state.(*stripState)
	if ss.cam.Offset == 0 {
		t.Fatal("strip did not move")
	}

	if err := e.SetMode(ModeStrip); err != nil {
		t.Fatal(err)
	}
	ss = e.state.(*stripState)
	if want := NewStripCamera(DefaultStripSpeed); ss.cam != want {
		t.Errorf("camera after switch = %+v, want %+v", ss.cam, want)
	}
}

func TestEngineEscapeReturnsToManualGrid(t *testing.T) {
	e := newTestEngine(WithMode(ModeSphere), WithGridMotion(MotionZen))
	e.SetPool(testPool(5))
	e.OnKey(KeyEscape)
	f := e.Tick()
	if f.Mode != ModeGrid {
		t.Fatalf("mode after Escape = %v, want grid", f.Mode)
	}
	if gs := e.state.(*gridState); gs.cam.Motion != MotionManual {
		t.Errorf("grid motion after Escape = %v, want manual", gs.cam.Motion)
	}

	// Escape in grid mode is ignored.
	e.OnKey(KeyEscape)
	if f := e.Tick(); f.Mode != ModeGrid {
		t.Errorf("mode = %v, want grid", f.Mode)
	}
}

func TestEngineSpaceTogglesStrip(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrip))
	e.SetPool(testPool(5))
	e.OnKey(KeySpace)
	e.Tick()
	if ss := e.state.(*stripState); ss.cam.Auto {
		t.Error("Space did not pause auto-scroll")
	}
}

func TestEngineGridDragThroughInput(t *testing.T) {
	e := newTestEngine()
	e.SetPool(testPool(5))
	e.OnPointerDown(100, 100)
	e.OnPointerMove(150, 100)
	e.OnPointerMove(200, 130)
	e.Tick()
	e.OnPointerUp(200, 130)
	e.Tick()
	gs := e.state.(*gridState)
	if gs.cam.Offset != Pt(100, 30) {
		t.Errorf("Offset = %v, want (100, 30)", gs.cam.Offset)
	}
	if gs.cam.Dragging() {
		t.Error("still dragging after pointer up")
	}
}

func TestEngineSetGridMotion(t *testing.T) {
	e := newTestEngine()
	if err := e.SetGridMotion(GridMotion(9)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetGridMotion(9) err = %v, want ErrInvalidMode", err)
	}
	if err := e.SetGridMotion(MotionZen); err != nil {
		t.Fatal(err)
	}
	if got := e.GridMotion(); got != MotionZen {
		t.Errorf("GridMotion() = %v, want zen", got)
	}
	e.SetPool(testPool(5))
	e.Tick()
	if gs := e.state.(*gridState); gs.cam.Offset.X != -zenSpeed {
		t.Errorf("Offset.X = %v, want %v", gs.cam.Offset.X, -zenSpeed)
	}
}

func TestEngineSetStripSpeed(t *testing.T) {
	e := newTestEngine()
	e.SetStripSpeed(50)
	if err := e.SetMode(ModeStrip); err != nil {
		t.Fatal(err)
	}
	if ss := e.state.(*stripState); ss.cam.Speed != MaxStripSpeed {
		t.Errorf("Speed = %d, want %d", ss.cam.Speed, MaxStripSpeed)
	}
	e.SetStripSpeed(0)
	if ss := e.state.(*stripState); ss.cam.Target() != 0 {
		t.Errorf("Target = %v, want 0", ss.cam.Target())
	}
}

func TestEngineActivateGrid(t *testing.T) {
	var got []ImageDescriptor
	e := newTestEngine(WithActivationHandler(func(d ImageDescriptor) {
		got = append(got, d)
	}))
	pool := testPool(10)
	e.SetPool(pool)
	e.Tick()

	d, err := e.ActivateAt(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := pool.At(Assign(0, 0, 10))
	if d != want {
		t.Errorf("ActivateAt = %+v, want %+v", d, want)
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("handler got %+v, want [%+v]", got, want)
	}
}

func TestEngineActivateStripMiss(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrip), WithViewport(1600, 900))
	e.SetPool(testPool(3))
	e.Tick()
	if _, err := e.ActivateAt(5, 450); !errors.Is(err, ErrNoItem) {
		t.Errorf("ActivateAt at edge err = %v, want ErrNoItem", err)
	}
	d, err := e.ActivateAt(800, 450)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "img-000" {
		t.Errorf("centre frame = %q, want img-000", d.ID)
	}
}

func TestEngineActivateStripUsesProjectedFrame(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrip), WithStripSpeed(0))
	e.SetPool(testPool(10))
	e.Tick()
	// The centre frame is pulled forward and projected over x = [104, 1176].
	// Its flat scaled width ends at x = 1015, which would hand x = 1040 to
	// the next frame.
	d, err := e.ActivateAt(1040, 400)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "img-000" {
		t.Errorf("frame under x=1040 = %q, want img-000", d.ID)
	}
}

func TestEngineActivateSphereReadsLiveBinding(t *testing.T) {
	e := newTestEngine(WithMode(ModeSphere))
	e.SetPool(testPool(500))

	slot := Coordinate{Mode: ModeSphere, Col: 7}
	d, err := e.Activate(slot)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "img-007" {
		t.Fatalf("initial binding = %q, want img-007", d.ID)
	}

	e.mu.Lock()
	e.state.(*sphereState).table.rebind(7, 321)
	e.mu.Unlock()

	d, err = e.Activate(slot)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "img-321" {
		t.Errorf("binding after rebind = %q, want img-321", d.ID)
	}
	if b := e.Bindings(); b[7].Content != 321 {
		t.Errorf("Bindings()[7] = %+v, want content 321", b[7])
	}
}

func TestEngineActivateSphereAt(t *testing.T) {
	e := newTestEngine(WithMode(ModeSphere))
	e.SetPool(testPool(500))
	f := e.Tick()
	if len(f.Items) == 0 {
		t.Fatal("no sphere items")
	}
	front := f.Items[len(f.Items)-1]
	c := f.Viewport.Center()
	d, err := e.ActivateAt(c.X+front.Transform.X, c.Y+front.Transform.Y)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := e.Pool().At(front.ContentIndex)
	if d != want {
		t.Errorf("ActivateAt = %q, want %q", d.ID, want.ID)
	}
}

func TestEngineBindingsOutsideSphere(t *testing.T) {
	e := newTestEngine()
	if b := e.Bindings(); b != nil {
		t.Errorf("Bindings() in grid mode = %v, want nil", b)
	}
}

func TestEngineConcurrentInput(t *testing.T) {
	e := newTestEngine()
	e.SetPool(testPool(20))

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				x := float64(w*1000 + i)
				e.OnPointerDown(x, x)
				e.OnPointerMove(x+1, x+1)
				e.OnWheel(1)
				e.OnPointerUp(x+1, x+1)
			}
		}()
	}
	for range 100 {
		e.Tick()
	}
	wg.Wait()
	e.Tick()
	if e.state.(*gridState).cam.Dragging() {
		t.Error("drag left open after balanced down/up input")
	}
}
