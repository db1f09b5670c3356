// Package gallery is a virtualized viewport engine for browsing large image
// collections.
//
// # Overview
//
// gallery maps an unbounded virtual space onto a finite pool of images and
// renders only what the viewport can see. The same pool can be presented in
// three modes:
//   - Grid: an infinite lattice of cells panned by drag, by steering toward
//     the pointer (pilot) or by a constant drift (zen)
//   - Strip: a curved film reel that cycles the pool in order
//   - Sphere: a fixed set of slots on a rotating sphere whose far side is
//     continuously refilled with unseen images
//
// # Quick Start
//
//	import "github.com/gogpu/gallery"
//
//	e := gallery.New(gallery.WithViewport(1280, 720))
//	e.SetPool(gallery.NewPool(descriptors))
//
//	// Host-driven: call Tick from the host's per-frame callback
//	frame := e.Tick()
//	for _, it := range frame.Items {
//	    draw(it.ContentIndex, it.Transform, it.Weight)
//	}
//
//	// Self-driven: one loop goroutine at 60 Hz
//	e.Run(ctx, func(f gallery.Frame) { present(f) })
//	defer e.Stop()
//
// # Architecture
//
// The package is organized into:
//   - Content: ImageDescriptor, Pool, ImageSource, ImageCache
//   - Assignment: Assign (hashed, grid) and Wrap (sequential, strip)
//   - Culling: GridGeometry, StripGeometry, SphereGeometry
//   - Cameras: GridCamera, StripCamera, SphereCamera
//   - Recycling: SlotTable and Recycler for the sphere
//   - Scheduling: Engine.Tick, Engine.Run, Ticker
//
// Sub-packages provide the collaborators: imagesource (directory and HTTP
// listing, thumbnails), imagecache (SQLite persistence), thumbcache (a
// byte-bounded thumbnail cache) and server (the HTTP image API).
//
// # Coordinate System
//
// Screen coordinates have the origin at the top-left, X increasing right
// and Y increasing down. Camera rotations are in degrees.
//
// # Rendering
//
// The engine never touches a display surface. Each tick yields a Frame, a
// back-to-front list of VisibleItems, that a presenter draws however it
// likes. cmd/galleryview is an ebiten presenter.
package gallery

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
