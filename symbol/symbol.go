// Package symbol defines the numeric handle type handed out by an interner
// and the checked conversions between handles and plain counts.
//
// A symbol is any type whose underlying type is an unsigned integer. Symbols
// are dense: an interner holding N strings has issued exactly 0..N-1.
package symbol

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Symbol is the constraint satisfied by every valid symbol type.
type Symbol interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ErrOverflow reports a count that cannot be represented by a symbol type.
var ErrOverflow = errors.New("symbol: count out of range")

// FromCount converts a count into a symbol of type S.
func FromCount[S Symbol](n int) (S, error) {
	s, err := safecast.Conv[S](n)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("%w: %d does not fit %T: %w", ErrOverflow, n, zero, err)
	}
	return s, nil
}

// MustFromCount is FromCount for callers that treat overflow as fatal.
// Interners call it before mutating anything, so a panic here never leaves
// an interner half updated.
func MustFromCount[S Symbol](n int) S {
	s, err := FromCount[S](n)
	if err != nil {
		panic(err)
	}
	return s
}

// ToCount converts a symbol back into the count it was created from.
// It panics when the symbol's value does not fit an int, which can only
// happen for 64-bit symbols that were never issued by an interner.
func ToCount[S Symbol](s S) int {
	n, err := safecast.Conv[int](s)
	if err != nil {
		panic(fmt.Errorf("%w: %d does not fit int: %w", ErrOverflow, uint64(s), err))
	}
	return n
}

// Max returns how many distinct symbols of type S exist, capped to the
// largest int.
func Max[S Symbol]() int {
	top := ^S(0)
	if uint64(top) >= math.MaxInt {
		return math.MaxInt
	}
	return int(top) + 1
}
