package strintern

import (
	"iter"

	"github.com/RowanDark/strintern/internal/index"
	"github.com/RowanDark/strintern/symbol"
)

// All yields every (symbol, string) pair in ascending symbol order. Each
// call starts a fresh pass. The interner must not be mutated while the
// sequence is being consumed.
func (in *StringInterner[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		for i, s := range in.arena.All() {
			if !yield(S(i), s) {
				return
			}
		}
	}
}

// Values yields every interned string in ascending symbol order.
func (in *StringInterner[S]) Values() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range in.arena.All() {
			if !yield(s) {
				return
			}
		}
	}
}

// Drain moves the interned strings out of the interner and yields them with
// their symbols. The interner is emptied, capacity included, as soon as
// iteration starts, even when the loop stops early.
func (in *StringInterner[S]) Drain() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		bufs := in.arena.Take()
		in.index = index.New(0)
		for i, s := range bufs {
			if !yield(S(i), s) {
				return
			}
		}
	}
}

// Extend interns every value of seq in order.
func (in *StringInterner[S]) Extend(seq iter.Seq[string]) {
	for s := range seq {
		in.GetOrIntern(s)
	}
}

// Collect builds an interner from seq, as if by repeated GetOrIntern calls.
func Collect[S symbol.Symbol](seq iter.Seq[string], opts ...Option) *StringInterner[S] {
	in := New[S](opts...)
	in.Extend(seq)
	return in
}
