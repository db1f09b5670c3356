package main

import "math"

// Sweep timing, in feeds.
const (
	sweepHold = 120 // feeds spent dragging
	sweepRest = 120 // feeds spent released, letting auto motion run
)

// pointerSink receives synthetic pointer input.
type pointerSink interface {
	OnPointerDown(x, y float64)
	OnPointerMove(x, y float64)
	OnPointerUp(x, y float64)
}

// sweep drags the pointer around a circle centred in the viewport. It
// alternates sweepHold feeds of dragging with sweepRest feeds released so
// modes that pause while the pointer is held still get to move.
type sweep struct {
	cx, cy, r float64
	angle     float64
	enabled   bool
	down      bool
	n         int
}

func newSweep(w, h float64, enabled bool) *sweep {
	return &sweep{cx: w / 2, cy: h / 2, r: math.Min(w, h) / 4, enabled: enabled}
}

func (s *sweep) pos() (float64, float64) {
	return s.cx + s.r*math.Cos(s.angle), s.cy + s.r*math.Sin(s.angle)
}

func (s *sweep) feed(e pointerSink) {
	if !s.enabled {
		return
	}
	phase := s.n % (sweepHold + sweepRest)
	s.n++

	x, y := s.pos()
	switch {
	case phase >= sweepHold:
		if s.down {
			e.OnPointerUp(x, y)
			s.down = false
		}
	case !s.down:
		e.OnPointerDown(x, y)
		s.down = true
	default:
		s.angle += 0.02
		x, y = s.pos()
		e.OnPointerMove(x, y)
	}
}
