package gallery

import (
	"fmt"
	"strings"
)

// Mode is a presentation mode.
type Mode int

const (
	// ModeGrid pans an infinite lattice of cells.
	ModeGrid Mode = iota
	// ModeStrip scrolls a curved film strip that cycles the pool in order.
	ModeStrip
	// ModeSphere rotates a fixed set of slots on a sphere and recycles the
	// ones that face away from the viewer.
	ModeSphere

	modeCount
)

var modeNames = [...]string{
	ModeGrid:   "grid",
	ModeStrip:  "strip",
	ModeSphere: "sphere",
}

// String returns the mode name.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// modeAliases maps the historical view names onto modes.
var modeAliases = map[string]Mode{
	"canvas": ModeGrid,
	"focus":  ModeStrip,
	"film":   ModeStrip,
	"globe":  ModeSphere,
}

// ParseMode parses a mode name. Unknown names return ErrInvalidMode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	if m, ok := modeAliases[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// GridMotion selects how the grid camera moves on its own.
type GridMotion int

const (
	// MotionManual moves only when dragged.
	MotionManual GridMotion = iota
	// MotionPilot steers toward the pointer's offset from the viewport centre.
	MotionPilot
	// MotionZen scrolls at a constant speed; dragging is disabled.
	MotionZen

	motionCount
)

var motionNames = [...]string{
	MotionManual: "manual",
	MotionPilot:  "pilot",
	MotionZen:    "zen",
}

// String returns the motion name.
func (m GridMotion) String() string {
	if !m.Valid() {
		return fmt.Sprintf("GridMotion(%d)", int(m))
	}
	return motionNames[m]
}

// Valid reports whether m is a known grid motion.
func (m GridMotion) Valid() bool {
	return m >= 0 && m < motionCount
}

// ParseGridMotion parses a grid motion name. Unknown names return ErrInvalidMode.
func ParseGridMotion(s string) (GridMotion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range motionNames {
		if n == name {
			return GridMotion(m), nil
		}
	}
	return 0, fmt.Errorf("%w: grid motion %q", ErrInvalidMode, s)
}
