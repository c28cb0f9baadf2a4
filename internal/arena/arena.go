// Package arena holds the owned string buffers of an interner in insertion
// order.
//
// Each buffer is a Go string whose bytes were copied out of caller memory
// when it was pushed. Strings are immutable and the collector never moves
// heap objects, so growing the backing slice only copies string headers:
// the bytes a buffer points at stay where they are for as long as the arena
// (or anything else) holds the buffer. Position i is the symbol value of the
// i-th distinct string.
package arena

import (
	"iter"
	"strings"
)

// Arena is an append-only sequence of owned strings.
type Arena struct {
	bufs []string
}

// New returns an empty arena with room for capacity buffers.
func New(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{bufs: make([]string, 0, capacity)}
}

// Push stores a private copy of content and returns its position.
func (a *Arena) Push(content string) int {
	return a.PushOwned(strings.Clone(content))
}

// PushOwned stores content without copying it. The caller must not hold
// the only mutable view of content's bytes.
func (a *Arena) PushOwned(content string) int {
	a.bufs = append(a.bufs, content)
	return len(a.bufs) - 1
}

// Get returns the buffer at position i, or false when i is out of range.
func (a *Arena) Get(i int) (string, bool) {
	if i < 0 || i >= len(a.bufs) {
		return "", false
	}
	return a.bufs[i], true
}

// GetUnchecked returns the buffer at position i. Calling it with a position
// that was never pushed (or was cleared) is a contract violation; it fails
// with a runtime index panic rather than returning a value.
func (a *Arena) GetUnchecked(i int) string {
	return a.bufs[i]
}

// Len returns the number of buffers.
func (a *Arena) Len() int { return len(a.bufs) }

// Cap returns how many buffers fit before the backing slice grows.
func (a *Arena) Cap() int { return cap(a.bufs) }

// Grow makes room for at least additional more buffers.
func (a *Arena) Grow(additional int) {
	if additional <= 0 || cap(a.bufs)-len(a.bufs) >= additional {
		return
	}
	grown := make([]string, len(a.bufs), len(a.bufs)+additional)
	copy(grown, a.bufs)
	a.bufs = grown
}

// Clip drops unused capacity.
func (a *Arena) Clip() {
	if cap(a.bufs) == len(a.bufs) {
		return
	}
	clipped := make([]string, len(a.bufs))
	copy(clipped, a.bufs)
	a.bufs = clipped
}

// Reset forgets every buffer but keeps the backing slice.
func (a *Arena) Reset() {
	clear(a.bufs)
	a.bufs = a.bufs[:0]
}

// Take hands the buffers to the caller and leaves the arena empty with no
// capacity.
func (a *Arena) Take() []string {
	bufs := a.bufs
	a.bufs = nil
	return bufs
}

// Clone returns an arena holding fresh copies of every buffer.
func (a *Arena) Clone() *Arena {
	bufs := make([]string, len(a.bufs), cap(a.bufs))
	for i, buf := range a.bufs {
		bufs[i] = strings.Clone(buf)
	}
	return &Arena{bufs: bufs}
}

// All yields (position, buffer) pairs in order.
func (a *Arena) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, buf := range a.bufs {
			if !yield(i, buf) {
				return
			}
		}
	}
}
