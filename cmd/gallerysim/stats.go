package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gogpu/gallery"
)

// stats accumulates per-frame figures.
type stats struct {
	poolSize   int
	frames     int
	empty      int
	dropped    int
	visible    int
	maxVisible int
	minVisible int
	seen       map[int]struct{}
	boundNow   int
	elapsed    time.Duration
}

func newStats(poolSize int) *stats {
	return &stats{poolSize: poolSize, minVisible: -1, seen: make(map[int]struct{})}
}

func (s *stats) observe(f gallery.Frame) {
	s.frames++
	if f.Empty {
		s.empty++
		return
	}
	n := len(f.Items)
	s.visible += n
	s.maxVisible = max(s.maxVisible, n)
	if s.minVisible < 0 || n < s.minVisible {
		s.minVisible = n
	}
	for _, it := range f.Items {
		s.seen[it.ContentIndex] = struct{}{}
	}
}

func (s *stats) finish(bindings []gallery.SlotBinding, elapsed time.Duration) {
	s.boundNow = len(bindings)
	s.elapsed = elapsed
}

func (s *stats) avgVisible() float64 {
	if n := s.frames - s.empty; n > 0 {
		return float64(s.visible) / float64(n)
	}
	return 0
}

func (s *stats) print(w io.Writer, mode gallery.Mode) {
	fmt.Fprintf(w, "mode:            %s\n", mode)
	fmt.Fprintf(w, "pool:            %d\n", s.poolSize)
	fmt.Fprintf(w, "frames:          %d (%d empty, %d dropped)\n", s.frames, s.empty, s.dropped)
	fmt.Fprintf(w, "visible/frame:   avg %.1f, min %d, max %d\n", s.avgVisible(), max(s.minVisible, 0), s.maxVisible)
	fmt.Fprintf(w, "distinct shown:  %d\n", len(s.seen))
	if mode == gallery.ModeSphere {
		fmt.Fprintf(w, "sphere slots:    %d\n", s.boundNow)
	}
	if s.elapsed > 0 && s.frames > 0 {
		fmt.Fprintf(w, "time/frame:      %v\n", s.elapsed/time.Duration(s.frames))
	}
}
