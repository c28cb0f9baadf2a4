package output

import (
	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/symbol"
)

// Renumbered is a value present in both tables under different symbols.
type Renumbered struct {
	Value string `json:"value"`
	From  uint64 `json:"from"`
	To    uint64 `json:"to"`
}

// Changes summarises how a symbol table moved away from a baseline.
type Changes struct {
	Added      []string     `json:"added"`
	Removed    []string     `json:"removed"`
	Renumbered []Renumbered `json:"renumbered"`
}

// Empty reports whether the two tables were identical.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Renumbered) == 0
}

// Diff compares current against baseline. Added and renumbered values are
// listed in current's symbol order, removed values in baseline's.
func Diff[S symbol.Symbol](baseline, current *strintern.StringInterner[S]) Changes {
	var changes Changes
	for sym, value := range current.All() {
		before, ok := baseline.Get(value)
		switch {
		case !ok:
			changes.Added = append(changes.Added, value)
		case before != sym:
			changes.Renumbered = append(changes.Renumbered, Renumbered{Value: value, From: uint64(before), To: uint64(sym)})
		}
	}
	for value := range baseline.Values() {
		if !current.Contains(value) {
			changes.Removed = append(changes.Removed, value)
		}
	}
	return changes
}
