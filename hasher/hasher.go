// Package hasher provides the string hashing strategies an interner can use
// for its index.
package hasher

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps string content to a 64-bit hash. Equal strings must hash
// equally; the value is never used for anything but bucket selection.
type Hasher interface {
	Hash(s string) uint64
}

// Func adapts a plain function to the Hasher interface.
type Func func(s string) uint64

// Hash implements Hasher.
func (f Func) Hash(s string) uint64 { return f(s) }

// XXHash hashes with xxHash64. It is the default strategy.
type XXHash struct{}

// Hash implements Hasher.
func (XXHash) Hash(s string) uint64 { return xxhash.Sum64String(s) }

// MapHash hashes with the runtime's seeded hash. Each instance picks its own
// random seed, so hash values differ between instances and processes.
type MapHash struct {
	seed maphash.Seed
}

// NewMapHash returns a MapHash with a fresh random seed.
func NewMapHash() *MapHash {
	return &MapHash{seed: maphash.MakeSeed()}
}

// Hash implements Hasher.
func (m *MapHash) Hash(s string) uint64 { return maphash.String(m.seed, s) }

// Default returns the strategy used when none is configured.
func Default() Hasher { return XXHash{} }

// ByName returns a strategy by its configuration name.
func ByName(name string) (Hasher, bool) {
	switch name {
	case "", "xxhash":
		return XXHash{}, true
	case "maphash":
		return NewMapHash(), true
	default:
		return nil, false
	}
}
