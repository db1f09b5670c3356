package gallery

import (
	"math/rand/v2"
	"time"
)

// Option configures an Engine during creation.
//
// Example:
//
//	// Default geometry, 60 Hz loop
//	e := gallery.New()
//
//	// Reproducible sphere recycling and a larger grid cell
//	e := gallery.New(
//		gallery.WithRand(rand.New(rand.NewPCG(1, 2))),
//		gallery.WithGridGeometry(gallery.GridGeometry{CellWidth: 400, CellHeight: 500, Buffer: 2}),
//	)
type Option func(*options)

// options holds optional configuration for Engine creation.
type options struct {
	grid       GridGeometry
	strip      StripGeometry
	sphere     SphereGeometry
	rng        *rand.Rand
	tickers    TickerFactory
	interval   time.Duration
	onActivate func(ImageDescriptor)
	viewport   Viewport
	mode       Mode
	motion     GridMotion
	stripSpeed int
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		grid:       DefaultGridGeometry(),
		strip:      DefaultStripGeometry(),
		sphere:     DefaultSphereGeometry(),
		tickers:    TimeTickers,
		interval:   DefaultFrameInterval,
		mode:       ModeGrid,
		motion:     MotionManual,
		stripSpeed: DefaultStripSpeed,
	}
}

// WithGridGeometry sets the grid cell size, gutter and buffer.
func WithGridGeometry(g GridGeometry) Option {
	return func(o *options) {
		o.grid = g
	}
}

// WithStripGeometry sets the film strip frame size, curvature and falloff.
func WithStripGeometry(g StripGeometry) Option {
	return func(o *options) {
		o.strip = g
	}
}

// WithSphereGeometry sets the slot count, radius, projection and zoom range.
func WithSphereGeometry(g SphereGeometry) Option {
	return func(o *options) {
		o.sphere = g
	}
}

// WithRand sets the random source used to sample sphere slots for
// recycling. Tests pass a seeded source to make recycling reproducible.
// By default the source is seeded from the clock.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithTickerFactory sets how Run obtains its ticker, and the tick interval.
// A zero interval keeps DefaultFrameInterval.
func WithTickerFactory(f TickerFactory, interval time.Duration) Option {
	return func(o *options) {
		if f != nil {
			o.tickers = f
		}
		if interval > 0 {
			o.interval = interval
		}
	}
}

// WithActivationHandler sets the callback invoked when an item is
// activated. It receives the descriptor bound to the item at activation
// time and is called without engine locks held.
func WithActivationHandler(fn func(ImageDescriptor)) Option {
	return func(o *options) {
		o.onActivate = fn
	}
}

// WithViewport sets the initial viewport size.
func WithViewport(width, height float64) Option {
	return func(o *options) {
		o.viewport = Viewport{Width: width, Height: height}.Sanitize()
	}
}

// WithMode sets the initial presentation mode. Invalid modes are ignored.
func WithMode(m Mode) Option {
	return func(o *options) {
		if m.Valid() {
			o.mode = m
		}
	}
}

// WithGridMotion sets the initial grid motion.
func WithGridMotion(m GridMotion) Option {
	return func(o *options) {
		if m.Valid() {
			o.motion = m
		}
	}
}

// WithStripSpeed sets the initial strip speed dial setting, 0 to MaxStripSpeed.
func WithStripSpeed(setting int) Option {
	return func(o *options) {
		o.stripSpeed = min(max(setting, 0), MaxStripSpeed)
	}
}
