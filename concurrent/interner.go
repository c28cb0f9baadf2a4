// Package concurrent shares one interner between goroutines.
package concurrent

import (
	"iter"
	"sync"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/symbol"
)

// Interner guards a StringInterner with a read/write lock. Lookups of
// already interned strings only take the read lock.
type Interner[S symbol.Symbol] struct {
	mu    sync.RWMutex
	inner *strintern.StringInterner[S]
}

// New returns an empty shared interner.
func New[S symbol.Symbol](opts ...strintern.Option) *Interner[S] {
	return &Interner[S]{inner: strintern.New[S](opts...)}
}

// Wrap takes ownership of in. The caller must not use in directly afterwards.
func Wrap[S symbol.Symbol](in *strintern.StringInterner[S]) *Interner[S] {
	return &Interner[S]{inner: in}
}

// GetOrIntern returns the symbol for text, interning it if needed.
func (c *Interner[S]) GetOrIntern(text string) S {
	c.mu.RLock()
	sym, ok := c.inner.Get(text)
	c.mu.RUnlock()
	if ok {
		return sym
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.GetOrIntern(text)
}

// Get returns the symbol of text if it has been interned.
func (c *Interner[S]) Get(text string) (S, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.Get(text)
}

// Resolve returns the string for sym.
func (c *Interner[S]) Resolve(sym S) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.Resolve(sym)
}

// Len returns the number of distinct strings.
func (c *Interner[S]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.Len()
}

// Extend interns every value of seq while holding the write lock once.
func (c *Interner[S]) Extend(seq iter.Seq[string]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Extend(seq)
}

// Clear removes every string and invalidates all symbols.
func (c *Interner[S]) Clear() {
	c.mu.Lock()
	c.inner.Clear()
	c.mu.Unlock()
}

// Snapshot returns an independent copy of the current contents.
func (c *Interner[S]) Snapshot() *strintern.StringInterner[S] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.Clone()
}
