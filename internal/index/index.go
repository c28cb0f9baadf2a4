// Package index maps string content to arena positions.
//
// The table stores only a hash and a position per entry. Key comparison reads
// the string back out of the arena through Keys, so the table never retains
// a reference into the arena and cannot outlive or alias it: the only thing
// it knows is "position p hashed to h". Positions stay valid because the
// arena never removes or reorders a single buffer; the only way buffers go
// away is Reset, which the interner applies to both structures together.
package index

// Keys resolves a position recorded in the table back to its content.
type Keys interface {
	GetUnchecked(pos int) string
}

const (
	minSlots = 8
	// loadNum/loadDen is the maximum fill ratio before the table grows.
	loadNum = 3
	loadDen = 4
)

// Table is an open-addressing hash table with linear probing.
type Table struct {
	hashes []uint64
	// slots holds position+1 so the zero value marks an empty slot.
	slots []int
	count int
}

// New returns a table that can hold capacity entries without growing.
func New(capacity int) *Table {
	t := &Table{}
	if n := slotsFor(capacity); n > 0 {
		t.resize(n)
	}
	return t
}

func slotsFor(entries int) int {
	if entries <= 0 {
		return 0
	}
	n := minSlots
	for n*loadNum/loadDen < entries {
		n <<= 1
	}
	return n
}

// Len returns the number of entries.
func (t *Table) Len() int { return t.count }

// Cap returns how many entries fit before the table grows.
func (t *Table) Cap() int { return len(t.slots) * loadNum / loadDen }

// Probe looks up content, which must hash to hash, and returns the position
// recorded for it.
func (t *Table) Probe(content string, hash uint64, keys Keys) (int, bool) {
	if t.count == 0 {
		return 0, false
	}
	mask := uint64(len(t.slots) - 1)
	for i := hash & mask; ; i = (i + 1) & mask {
		slot := t.slots[i]
		if slot == 0 {
			return 0, false
		}
		if t.hashes[i] == hash && keys.GetUnchecked(slot-1) == content {
			return slot - 1, true
		}
	}
}

// Record adds an entry for pos. The caller guarantees pos has just been
// appended to the arena and that no entry with equal content exists.
func (t *Table) Record(hash uint64, pos int) {
	if t.count+1 > t.Cap() {
		t.resize(max(minSlots, len(t.slots)*2))
	}
	t.place(hash, pos+1)
	t.count++
}

// Reserve makes room for additional more entries.
func (t *Table) Reserve(additional int) {
	if additional <= 0 {
		return
	}
	if need := t.count + additional; need > t.Cap() {
		t.resize(slotsFor(need))
	}
}

// ShrinkToFit reallocates the table to the smallest size holding its entries.
func (t *Table) ShrinkToFit() {
	if n := slotsFor(t.count); n < len(t.slots) {
		t.resize(n)
	}
}

// Reset drops every entry and keeps the allocated slots.
func (t *Table) Reset() {
	clear(t.hashes)
	clear(t.slots)
	t.count = 0
}

// Clone returns an independent copy. Entries are positions, not references,
// so the copy is valid for any arena holding the same contents in the same
// order.
func (t *Table) Clone() *Table {
	return &Table{
		hashes: append([]uint64(nil), t.hashes...),
		slots:  append([]int(nil), t.slots...),
		count:  t.count,
	}
}

func (t *Table) place(hash uint64, slot int) {
	mask := uint64(len(t.slots) - 1)
	i := hash & mask
	for t.slots[i] != 0 {
		i = (i + 1) & mask
	}
	t.hashes[i] = hash
	t.slots[i] = slot
}

// resize rehashes into n slots using the stored hashes; content is not read.
func (t *Table) resize(n int) {
	hashes, slots := t.hashes, t.slots
	t.hashes = make([]uint64, n)
	t.slots = make([]int, n)
	for i, slot := range slots {
		if slot != 0 {
			t.place(hashes[i], slot)
		}
	}
}
