package gallery

import "math/rand/v2"

// SlotBinding is the content currently shown by a sphere slot.
type SlotBinding struct {
	Slot    int
	Content int
}

// SlotTable is a fixed arena of slot bindings updated in place.
// Any presenter can read the current bindings; the recycler is the only
// writer.
type SlotTable struct {
	bindings []SlotBinding
	refs     []int // bindings per pool index
	poolSize int
}

// NewSlotTable binds slot i to pool index i % poolSize. When the pool is
// smaller than the slot count some indices are necessarily shown twice.
func NewSlotTable(slots, poolSize int) *SlotTable {
	t := &SlotTable{
		bindings: make([]SlotBinding, max(slots, 0)),
		poolSize: max(poolSize, 0),
	}
	t.refs = make([]int, t.poolSize)
	for i := range t.bindings {
		t.bindings[i] = SlotBinding{Slot: i, Content: Wrap(i, t.poolSize)}
		if t.poolSize > 0 {
			t.refs[t.bindings[i].Content]++
		}
	}
	return t
}

// Len returns the number of slots.
func (t *SlotTable) Len() int { return len(t.bindings) }

// PoolSize returns the size of the pool the table was built for.
func (t *SlotTable) PoolSize() int { return t.poolSize }

// Content returns the pool index currently bound to slot.
func (t *SlotTable) Content(slot int) (int, bool) {
	if slot < 0 || slot >= len(t.bindings) || t.poolSize == 0 {
		return 0, false
	}
	return t.bindings[slot].Content, true
}

// Bound reports whether any slot currently shows pool index content.
func (t *SlotTable) Bound(content int) bool {
	return content >= 0 && content < len(t.refs) && t.refs[content] > 0
}

// Bindings returns a copy of the current bindings.
func (t *SlotTable) Bindings() []SlotBinding {
	cp := make([]SlotBinding, len(t.bindings))
	copy(cp, t.bindings)
	return cp
}

func (t *SlotTable) rebind(slot, content int) {
	old := t.bindings[slot].Content
	t.refs[old]--
	t.refs[content]++
	t.bindings[slot].Content = content
}

// Recycler swaps the content of slots that have rotated onto the far side
// of the sphere, so N slots show an arbitrarily large pool over time.
//
// Each tick it samples SamplesPerTick random slots rather than sweeping
// all of them. Recycling latency is therefore statistical: a given back
// slot is refreshed after 1/p ticks on average, with p its sampling
// probability, and has no hard upper bound.
type Recycler struct {
	table     *SlotTable
	slots     []SphereSlot
	threshold float64
	samples   int
	rng       *rand.Rand
	cursor    uint64
	rebinds   uint64
}

// NewRecycler creates a recycler over table. The pool cursor starts just
// past the initially bound indices.
func NewRecycler(table *SlotTable, slots []SphereSlot, g SphereGeometry, rng *rand.Rand) *Recycler {
	g = g.normalized()
	return &Recycler{
		table:     table,
		slots:     slots,
		threshold: g.BackfaceDepth,
		samples:   g.SamplesPerTick,
		rng:       rng,
		cursor:    uint64(table.Len()),
	}
}

// Active reports whether the pool is larger than the slot count; smaller
// pools are already fully shown and are never recycled.
func (r *Recycler) Active() bool {
	return r.table.PoolSize() > r.table.Len() && len(r.slots) > 0
}

// Rebinds returns the total number of rebinds performed.
func (r *Recycler) Rebinds() uint64 { return r.rebinds }

// Step samples slots and rebinds the ones past the backface threshold.
// It returns the number of rebinds made.
func (r *Recycler) Step(cam *SphereCamera) int {
	if !r.Active() {
		return 0
	}
	n := 0
	for range r.samples {
		slot := r.rng.IntN(len(r.slots))
		if cam.Rotate(r.slots[slot].Position).Z >= r.threshold {
			continue
		}
		current, _ := r.table.Content(slot)
		next, ok := r.next(current)
		if !ok {
			continue
		}
		r.table.rebind(slot, next)
		n++
	}
	r.rebinds += uint64(n)
	return n
}

// next advances the cursor to the next pool index that no slot shows.
func (r *Recycler) next(current int) (int, bool) {
	size := uint64(r.table.PoolSize())
	for range size {
		candidate := int(r.cursor % size)
		r.cursor++
		if candidate != current && !r.table.Bound(candidate) {
			return candidate, true
		}
	}
	return 0, false
}
