package main

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/internal/loader"
)

const (
	// clickSlop is how far the pointer may travel between press and
	// release for the gesture to count as a click.
	clickSlop = 5
	// wheelScale converts ebiten wheel notches to pixel deltas.
	wheelScale = 100
	// uploadsPerFrame bounds texture uploads per Update.
	uploadsPerFrame = 16
)

var (
	background  = color.RGBA{0x11, 0x11, 0x14, 0xff}
	placeholder = color.RGBA{0x2a, 0x2a, 0x30, 0xff}
	broken      = color.RGBA{0x40, 0x1c, 0x1c, 0xff}
)

type game struct {
	engine *gallery.Engine
	src    gallery.ImageSource
	cache  gallery.ImageCache
	loads  *loader.Loader

	grid   gallery.GridGeometry
	strip  gallery.StripGeometry
	sphere gallery.SphereGeometry

	frame    gallery.Frame
	gen      uint64
	textures map[int]*ebiten.Image

	width, height int
	pressX        int
	pressY        int
	lastX, lastY  int
	stripSpeed    int
	selected      string
}

func newGame(src gallery.ImageSource, cache gallery.ImageCache, fetch loader.FetchFunc, mode gallery.Mode, w, h int) *game {
	g := &game{
		src:        src,
		cache:      cache,
		loads:      loader.New(fetch),
		grid:       gallery.DefaultGridGeometry(),
		strip:      gallery.DefaultStripGeometry(),
		sphere:     gallery.DefaultSphereGeometry(),
		textures:   make(map[int]*ebiten.Image),
		width:      w,
		height:     h,
		stripSpeed: gallery.DefaultStripSpeed,
	}
	g.engine = gallery.New(
		gallery.WithGridGeometry(g.grid),
		gallery.WithStripGeometry(g.strip),
		gallery.WithSphereGeometry(g.sphere),
		gallery.WithViewport(float64(w), float64(h)),
		gallery.WithMode(mode),
		gallery.WithStripSpeed(g.stripSpeed),
		gallery.WithActivationHandler(func(d gallery.ImageDescriptor) {
			g.selected = d.DisplayName
		}),
	)
	return g
}

func (g *game) close() {
	g.loads.Close()
}

func (g *game) Update() error {
	g.input()
	g.frame = g.engine.Tick()

	if g.frame.Generation != g.gen {
		for _, img := range g.textures {
			img.Deallocate()
		}
		clear(g.textures)
		g.gen = g.frame.Generation
		g.loads.Forget(g.gen)
		g.selected = ""
	}

	pool := g.engine.Pool()
	for _, it := range g.frame.Items {
		if _, ok := g.textures[it.ContentIndex]; ok {
			continue
		}
		if d, ok := pool.At(it.ContentIndex); ok {
			g.loads.Request(loader.Key{Generation: g.gen, Index: it.ContentIndex}, d)
		}
	}
	for _, r := range g.loads.Drain(uploadsPerFrame) {
		if r.Err != nil || r.Key.Generation != g.gen {
			continue
		}
		g.textures[r.Key.Index] = ebiten.NewImageFromImage(r.Image)
	}
	return nil
}

func (g *game) input() {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pressX, g.pressY = x, y
		g.engine.OnPointerDown(fx, fy)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.engine.OnPointerUp(fx, fy)
		if abs(x-g.pressX) <= clickSlop && abs(y-g.pressY) <= clickSlop {
			if _, err := g.engine.ActivateAt(fx, fy); err != nil {
				g.selected = ""
			}
		}
	case x != g.lastX || y != g.lastY:
		g.engine.OnPointerMove(fx, fy)
	}
	g.lastX, g.lastY = x, y

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.engine.OnWheel(-dy * wheelScale)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.engine.OnKey(gallery.KeyEscape)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.engine.OnKey(gallery.KeySpace)
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		_ = g.engine.SetMode(gallery.ModeGrid)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		_ = g.engine.SetMode(gallery.ModeStrip)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		_ = g.engine.SetMode(gallery.ModeSphere)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.cycleMotion()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.setStripSpeed(g.stripSpeed + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.setStripSpeed(g.stripSpeed - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		go g.reload()
	}
}

func (g *game) cycleMotion() {
	next := gallery.MotionManual
	switch g.engine.GridMotion() {
	case gallery.MotionManual:
		next = gallery.MotionZen
	case gallery.MotionZen:
		next = gallery.MotionPilot
	}
	_ = g.engine.SetGridMotion(next)
}

func (g *game) setStripSpeed(s int) {
	g.stripSpeed = min(max(s, 0), gallery.MaxStripSpeed)
	g.engine.SetStripSpeed(g.stripSpeed)
}

// reload lists the source again, bypassing the cached listing.
func (g *game) reload() {
	p, err := gallery.SelectPool(context.Background(), g.src, g.cache)
	if err != nil {
		gallery.Logger().Warn("reload failed", "err", err)
		return
	}
	g.engine.SetPool(p)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	f := g.frame
	if f.Empty {
		ebitenutil.DebugPrintAt(screen, "No images found. Choose a directory with galleryd or -dir.", 16, 16)
		return
	}

	for _, it := range f.Items {
		var w, h, persp float64
		switch f.Mode {
		case gallery.ModeGrid:
			w, h = g.grid.CellWidth, g.grid.CellHeight
		case gallery.ModeStrip:
			w, h = g.strip.FrameSize(f.Viewport)
			persp = g.strip.Perspective
		case gallery.ModeSphere:
			w, h = g.sphere.ItemSize, g.sphere.ItemSize
		}
		// Placements are axis aligned: the unit square's origin lands on
		// (C, F) and its sides measure A by E.
		m := it.Placement(f.Viewport, w, h, persp)
		g.drawItem(screen, it.ContentIndex, m.C, m.F, m.A, m.E, it.Weight.Opacity)
	}

	status := fmt.Sprintf("%s  %d items  %.0f fps", f.Mode, len(f.Items), ebiten.ActualFPS())
	if f.Mode == gallery.ModeGrid {
		status += "  motion " + g.engine.GridMotion().String()
	}
	if g.selected != "" {
		status += "  selected " + g.selected
	}
	ebitenutil.DebugPrintAt(screen, status, 8, 8)
}

// drawItem covers the w×h box at (x, y) with the item's texture, or a
// placeholder while it loads.
func (g *game) drawItem(screen *ebiten.Image, index int, x, y, w, h, alpha float64) {
	if w <= 0 || h <= 0 || alpha <= 0 {
		return
	}
	tex, ok := g.textures[index]
	if !ok {
		fill := placeholder
		if g.loads.Failed(loader.Key{Generation: g.gen, Index: index}) {
			fill = broken
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), fade(fill, alpha), false)
		return
	}

	b := tex.Bounds()
	tw, th := float64(b.Dx()), float64(b.Dy())
	s := math.Max(w/tw, h/th)
	// Crop the scaled texture to the box around its centre.
	sw, sh := w/s, h/s
	sx, sy := (tw-sw)/2, (th-sh)/2
	sub := tex.SubImage(rectOf(sx, sy, sw, sh)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(sub, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.engine.OnResize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// fade scales a premultiplied colour by alpha.
func fade(c color.RGBA, alpha float64) color.RGBA {
	f := func(v uint8) uint8 { return uint8(float64(v) * alpha) }
	return color.RGBA{f(c.R), f(c.G), f(c.B), f(c.A)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
