package gallery

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.
var (
	// ErrEmptyPool is returned when an operation needs content but the pool
	// has no descriptors. Frames produced from an empty pool are marked Empty.
	ErrEmptyPool = errors.New("gallery: empty content pool")

	// ErrInvalidMode is returned for unknown presentation modes or grid motions.
	// The engine keeps its current mode.
	ErrInvalidMode = errors.New("gallery: invalid mode")

	// ErrStaleHandle marks a thumbnail or full-resolution handle that failed to
	// resolve in the presentation layer. The engine never retries it.
	ErrStaleHandle = errors.New("gallery: stale resource handle")

	// ErrLoopRunning is returned by Run when the engine already owns a frame loop.
	ErrLoopRunning = errors.New("gallery: frame loop already running")

	// ErrNoItem is returned by ActivateAt when no rendered item is under the point.
	ErrNoItem = errors.New("gallery: no item at position")
)

// StaleHandleError reports a handle that could not be resolved.
// It matches ErrStaleHandle with errors.Is and unwraps to the cause.
type StaleHandleError struct {
	ID     string // descriptor ID
	Handle string // the handle that failed
	Err    error  // underlying cause, may be nil
}

func (e *StaleHandleError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gallery: stale handle %q for %q", e.Handle, e.ID)
	}
	return fmt.Sprintf("gallery: stale handle %q for %q: %v", e.Handle, e.ID, e.Err)
}

// Is reports whether target is ErrStaleHandle.
func (e *StaleHandleError) Is(target error) bool { return target == ErrStaleHandle }

// Unwrap returns the underlying cause.
func (e *StaleHandleError) Unwrap() error { return e.Err }
