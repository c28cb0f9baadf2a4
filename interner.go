// Package strintern deduplicates strings and catalogs them behind small,
// dense, insertion-ordered symbols.
//
// Every distinct string is stored exactly once in an append-only arena; its
// symbol is its position there. A hash index maps content back to positions
// without holding references into the arena, so growing the arena can never
// invalidate it. Lookups are O(1) expected in both directions.
//
// A StringInterner is not safe for concurrent mutation. Reads may run in
// parallel only while no goroutine calls GetOrIntern, Extend, Reserve,
// ShrinkToFit, Clear or Drain. Use package concurrent, or shard one interner
// per goroutine, when writers need to share.
//
//	in := strintern.New[uint32]()
//	a := in.GetOrIntern("Elephant") // 0
//	b := in.GetOrIntern("Tiger")    // 1
//	c := in.GetOrIntern("Elephant") // 0
package strintern

import (
	"unsafe"

	"github.com/RowanDark/strintern/hasher"
	"github.com/RowanDark/strintern/internal/arena"
	"github.com/RowanDark/strintern/internal/index"
	"github.com/RowanDark/strintern/symbol"
)

// StringInterner maps strings to symbols of type S and back.
type StringInterner[S symbol.Symbol] struct {
	hasher hasher.Hasher
	arena  *arena.Arena
	index  *index.Table
}

// DefaultStringInterner uses machine-word symbols.
type DefaultStringInterner = StringInterner[uint]

type options struct {
	capacity int
	hasher   hasher.Hasher
}

// Option configures a new interner.
type Option func(*options)

// WithCapacity preallocates room for n distinct strings.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithHasher selects the hashing strategy of the index. A nil hasher keeps
// the default (xxHash).
func WithHasher(h hasher.Hasher) Option {
	return func(o *options) {
		if h != nil {
			o.hasher = h
		}
	}
}

// New returns an empty interner.
func New[S symbol.Symbol](opts ...Option) *StringInterner[S] {
	o := options{hasher: hasher.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &StringInterner[S]{
		hasher: o.hasher,
		arena:  arena.New(o.capacity),
		index:  index.New(o.capacity),
	}
}

// FromStrings interns values in order, as if by repeated GetOrIntern calls.
func FromStrings[S symbol.Symbol](values []string, opts ...Option) *StringInterner[S] {
	in := New[S](append([]Option{WithCapacity(len(values))}, opts...)...)
	for _, v := range values {
		in.GetOrIntern(v)
	}
	return in
}

// GetOrIntern returns the symbol for text, interning it first if it has not
// been seen. Equal content always yields the same symbol.
//
// It panics, without modifying the interner, when S cannot represent the
// next symbol.
func (in *StringInterner[S]) GetOrIntern(text string) S {
	hash := in.hasher.Hash(text)
	if pos, ok := in.index.Probe(text, hash, in.arena); ok {
		return S(pos)
	}
	return in.insert(text, hash, false)
}

// GetOrInternBytes is GetOrIntern for a byte slice. b is only copied when
// its content is new.
func (in *StringInterner[S]) GetOrInternBytes(b []byte) S {
	view := unsafe.String(unsafe.SliceData(b), len(b))
	hash := in.hasher.Hash(view)
	if pos, ok := in.index.Probe(view, hash, in.arena); ok {
		return S(pos)
	}
	return in.insert(string(b), hash, true)
}

func (in *StringInterner[S]) insert(text string, hash uint64, owned bool) S {
	sym := symbol.MustFromCount[S](in.arena.Len())
	var pos int
	if owned {
		pos = in.arena.PushOwned(text)
	} else {
		pos = in.arena.Push(text)
	}
	in.index.Record(hash, pos)
	return sym
}

// Get returns the symbol of text if it has been interned.
func (in *StringInterner[S]) Get(text string) (S, bool) {
	pos, ok := in.index.Probe(text, in.hasher.Hash(text), in.arena)
	return S(pos), ok
}

// Contains reports whether text has been interned.
func (in *StringInterner[S]) Contains(text string) bool {
	_, ok := in.Get(text)
	return ok
}

// Resolve returns the string for sym. It reports false for symbols this
// interner never issued or that were invalidated by Clear.
func (in *StringInterner[S]) Resolve(sym S) (string, bool) {
	if uint64(sym) >= uint64(in.arena.Len()) {
		return "", false
	}
	return in.arena.GetUnchecked(int(sym)), true
}

// ResolveUnchecked returns the string for sym without validating it.
//
// The caller must already know sym is live for this interner. Passing a
// symbol from another interner, or one issued before Clear, is a contract
// violation: it may return unrelated content or panic with an index error.
// Use Resolve unless a hot loop has validated its symbols up front.
func (in *StringInterner[S]) ResolveUnchecked(sym S) string {
	return in.arena.GetUnchecked(int(sym))
}

// Len returns the number of distinct strings.
func (in *StringInterner[S]) Len() int { return in.arena.Len() }

// IsEmpty reports whether nothing has been interned.
func (in *StringInterner[S]) IsEmpty() bool { return in.arena.Len() == 0 }

// Capacity returns how many distinct strings fit before either backing
// structure has to grow.
func (in *StringInterner[S]) Capacity() int {
	return min(in.arena.Cap(), in.index.Cap())
}

// Reserve makes room for additional more distinct strings. Existing symbols
// stay valid.
func (in *StringInterner[S]) Reserve(additional int) {
	in.arena.Grow(additional)
	in.index.Reserve(additional)
}

// ShrinkToFit releases unused capacity. Contents and symbols are unchanged.
func (in *StringInterner[S]) ShrinkToFit() {
	in.arena.Clip()
	in.index.ShrinkToFit()
}

// Clear removes every string. All symbols issued so far become invalid:
// Resolve reports false for them until interning reaches them again, at
// which point they name whatever content was interned at that position.
func (in *StringInterner[S]) Clear() {
	in.arena.Reset()
	in.index.Reset()
}

// Equal reports whether both interners hold the same strings in the same
// order. Hashing strategy and capacity are not compared.
func (in *StringInterner[S]) Equal(other *StringInterner[S]) bool {
	if in == other {
		return true
	}
	if in == nil || other == nil || in.Len() != other.Len() {
		return false
	}
	for i := range in.arena.Len() {
		if in.arena.GetUnchecked(i) != other.arena.GetUnchecked(i) {
			return false
		}
	}
	return true
}

// Clone returns an independent interner with copies of every string. The
// clone resolves every symbol exactly like in.
func (in *StringInterner[S]) Clone() *StringInterner[S] {
	return &StringInterner[S]{
		hasher: in.hasher,
		arena:  in.arena.Clone(),
		index:  in.index.Clone(),
	}
}

// Strings returns the interned strings ordered by symbol.
func (in *StringInterner[S]) Strings() []string {
	out := make([]string, 0, in.arena.Len())
	for _, s := range in.arena.All() {
		out = append(out, s)
	}
	return out
}
