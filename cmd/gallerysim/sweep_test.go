package main

import "testing"

type pointerLog struct {
	downs, moves, ups int
	held              bool
}

func (p *pointerLog) OnPointerDown(x, y float64) { p.downs++; p.held = true }
func (p *pointerLog) OnPointerMove(x, y float64) { p.moves++ }
func (p *pointerLog) OnPointerUp(x, y float64)   { p.ups++; p.held = false }

func TestSweepReleases(t *testing.T) {
	s := newSweep(1280, 800, true)
	var log pointerLog
	for range sweepHold {
		s.feed(&log)
	}
	if !log.held || log.downs != 1 || log.moves != sweepHold-1 {
		t.Fatalf("after hold: %+v, want one press and %d moves", log, sweepHold-1)
	}

	s.feed(&log)
	if log.held || log.ups != 1 {
		t.Fatalf("rest did not release the pointer: %+v", log)
	}
	for range sweepRest - 1 {
		s.feed(&log)
	}
	if log.ups != 1 || log.moves != sweepHold-1 {
		t.Errorf("rest sent input: %+v", log)
	}

	s.feed(&log)
	if !log.held || log.downs != 2 {
		t.Errorf("next cycle did not press again: %+v", log)
	}
}

func TestSweepDisabled(t *testing.T) {
	s := newSweep(1280, 800, false)
	var log pointerLog
	for range 500 {
		s.feed(&log)
	}
	if log != (pointerLog{}) {
		t.Errorf("disabled sweep sent input: %+v", log)
	}
}
