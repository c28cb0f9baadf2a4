// Package normalize cleans raw input values before they are interned.
package normalize

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// ErrInvalidName is returned by the dns and idna steps for values that are
// not valid domain names.
var ErrInvalidName = errors.New("normalize: invalid name")

// Step transforms a single value. A step reports keep=false to drop the
// value without treating it as an error.
type Step func(value string) (out string, keep bool, err error)

// Chain applies its steps in order.
type Chain []Step

var steps = map[string]Step{
	"trim":       Trim,
	"lower":      Lower,
	"dns":        DNS,
	"idna":       IDNA,
	"skip-empty": SkipEmpty,
}

// Build resolves step names into a Chain. Names are matched case-insensitively.
func Build(names []string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		step, ok := steps[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown normalize step %q: expected trim, lower, idna, dns, or skip-empty", name)
		}
		chain = append(chain, step)
	}
	return chain, nil
}

// Apply runs value through every step. Processing stops at the first step
// that drops the value or fails.
func (c Chain) Apply(value string) (string, bool, error) {
	for _, step := range c {
		var (
			keep bool
			err  error
		)
		value, keep, err = step(value)
		if err != nil || !keep {
			return "", false, err
		}
	}
	return value, true, nil
}

// Trim removes surrounding whitespace.
func Trim(value string) (string, bool, error) {
	return strings.TrimSpace(value), true, nil
}

// Lower folds ASCII and Unicode letters to lower case.
func Lower(value string) (string, bool, error) {
	return strings.ToLower(value), true, nil
}

// SkipEmpty drops empty values.
func SkipEmpty(value string) (string, bool, error) {
	return value, value != "", nil
}

// DNS rewrites value as a canonical fully qualified domain name.
// Empty values pass through unchanged.
func DNS(value string) (string, bool, error) {
	if value == "" {
		return value, true, nil
	}
	if _, ok := dns.IsDomainName(value); !ok {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidName, value)
	}
	return dns.CanonicalName(value), true, nil
}

// IDNA converts internationalised names to their ASCII form.
// Empty values pass through unchanged.
func IDNA(value string) (string, bool, error) {
	if value == "" {
		return value, true, nil
	}
	ascii, err := idna.Lookup.ToASCII(value)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q: %v", ErrInvalidName, value, err)
	}
	return ascii, true, nil
}

// Scope restricts values to a set of patterns. Patterns containing glob
// metacharacters are matched with path.Match, patterns starting with "."
// match as suffixes and anything else matches as a substring. Matching is
// case-insensitive.
type Scope struct {
	patterns []string
}

// NewScope returns a Scope for patterns. Empty patterns are ignored.
func NewScope(patterns []string) *Scope {
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		cleaned = append(cleaned, pattern)
	}
	return &Scope{patterns: cleaned}
}

// Empty reports whether the scope accepts everything.
func (s *Scope) Empty() bool {
	return s == nil || len(s.patterns) == 0
}

// Match reports whether value is in scope.
func (s *Scope) Match(value string) bool {
	if s.Empty() {
		return true
	}

	candidate := strings.ToLower(strings.TrimSpace(value))
	if candidate == "" {
		return false
	}

	for _, pattern := range s.patterns {
		if strings.ContainsAny(pattern, "*?[]") {
			if ok, err := path.Match(pattern, candidate); err == nil && ok {
				return true
			}
			continue
		}

		if strings.HasPrefix(pattern, ".") {
			if strings.HasSuffix(candidate, pattern) {
				return true
			}
			continue
		}

		if strings.Contains(candidate, pattern) {
			return true
		}
	}

	return false
}
