package gallery

import "sync/atomic"

// ImageDescriptor identifies one image and the handles used to display it.
// Descriptors are values; the engine never releases the handles.
type ImageDescriptor struct {
	ID          string // unique and stable within a pool
	Thumbnail   string // cheap display source (URL or path)
	Full        string // full-resolution source (URL or path)
	DisplayName string
}

// poolGeneration hands out process-unique pool generations.
var poolGeneration atomic.Uint64

// Pool is an immutable ordered collection of descriptors.
// Indices are stable for the lifetime of a Pool; a new Pool gets a new
// Generation so that lattice-to-index mappings computed against the old
// one can be discarded.
//
// A nil *Pool behaves like an empty pool.
type Pool struct {
	items      []ImageDescriptor
	generation uint64
}

// NewPool creates a pool holding a copy of items.
func NewPool(items []ImageDescriptor) *Pool {
	cp := make([]ImageDescriptor, len(items))
	copy(cp, items)
	return &Pool{items: cp, generation: poolGeneration.Add(1)}
}

// Len returns the number of descriptors.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// At returns the descriptor at index i.
func (p *Pool) At(i int) (ImageDescriptor, bool) {
	if p == nil || i < 0 || i >= len(p.items) {
		return ImageDescriptor{}, false
	}
	return p.items[i], true
}

// Generation returns the pool's generation, zero for a nil pool.
func (p *Pool) Generation() uint64 {
	if p == nil {
		return 0
	}
	return p.generation
}

// Descriptors returns a copy of the pool contents.
func (p *Pool) Descriptors() []ImageDescriptor {
	if p == nil {
		return nil
	}
	cp := make([]ImageDescriptor, len(p.items))
	copy(cp, p.items)
	return cp
}
