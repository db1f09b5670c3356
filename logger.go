package gallery

import (
	"log/slog"
	"sync/atomic"
)

// silent discards every record. Its handler reports no level as enabled,
// so disabled calls cost no formatting.
var silent = slog.New(slog.DiscardHandler)

// active holds the logger shared by gallery and its sub-packages. It is
// swapped atomically because frame loops log from their own goroutines.
var active atomic.Pointer[slog.Logger]

func init() {
	active.Store(silent)
}

// SetLogger installs l as the logger of gallery and every sub-package.
// Nothing is logged until it is called; nil restores silence.
//
// Levels:
//   - Debug: frame loop start and stop, sphere rebinds, thumbnail cache traffic
//   - Info: pool replacement, mode switches, directory changes
//   - Warn: degraded paths such as a failed cache restore, an unavailable
//     thumbnail or input dropped by a full buffer
//
// For example:
//
//	gallery.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return active.Load()
}

// ComponentLogger returns the installed logger with a component attribute.
// It is resolved on every call so a later SetLogger takes effect at once.
func ComponentLogger(name string) *slog.Logger {
	return Logger().With("component", name)
}
