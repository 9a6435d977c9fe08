// Package tt implements the transposition cache of the alpha-beta searcher: it memoizes node values
// by (position, remaining depth, side to move) within one search.
//
// In the WindowAware mode every entry records whether its value is exact, a lower bound or an upper
// bound, derived from the alpha-beta window it was computed under, and it is only reused when it is
// conclusive for the window of the lookup. The Unconditional mode reuses any stored value as if it
// were exact: it is faster, but only an approximation, since values computed under pruning may be
// bounds.
package tt

import (
	"fmt"

	"github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Mode of operation of the cache.
type Mode uint8

const (
	// Off disables the cache.
	Off Mode = iota

	// WindowAware only reuses values that are conclusive for the lookup window.
	WindowAware

	// Unconditional reuses any stored value.
	Unconditional
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case WindowAware:
		return "window"
	case Unconditional:
		return "unconditional"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{Off, WindowAware, Unconditional} {
		if m.String() == name {
			return m, nil
		}
	}
	return Off, errors.Errorf("invalid cache mode %q, valid values are \"off\", \"window\" or \"unconditional\"", name)
}

// Bound describes what a stored value means.
type Bound uint8

const (
	// Exact value: it was computed strictly inside the window.
	Exact Bound = iota

	// Lower bound: the search failed high (value >= beta), the true value is at least the stored one.
	Lower

	// Upper bound: the search failed low (value <= alpha), the true value is at most the stored one.
	Upper
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	}
	return fmt.Sprintf("Bound(%d)", b)
}

// Key of an entry. The position key must be an exact encoding of the position.
type Key struct {
	Position state.Key
	Depth    int
	Side     state.Side
}

// Entry stored in the cache.
type Entry struct {
	Value float64
	Bound Bound
}

// Cache is a transposition cache. It is not safe for concurrent use.
type Cache struct {
	mode    Mode
	entries map[Key]Entry
}

// New creates a cache with the given mode.
func New(mode Mode) *Cache {
	return &Cache{mode: mode, entries: make(map[Key]Entry)}
}

// Mode of the cache.
func (c *Cache) Mode() Mode { return c.mode }

// Len returns the number of entries.
func (c *Cache) Len() int { return len(c.entries) }

// Reset removes all entries.
func (c *Cache) Reset() { clear(c.entries) }

// KeyFor builds the cache key of the node s, with depth plies still to search, and side to move.
func KeyFor(s *state.State, depth int, side state.Side) Key {
	return Key{Position: s.Key(), Depth: depth, Side: side}
}

// Get returns the cached value for key, if it is usable for the window (alpha, beta).
func (c *Cache) Get(key Key, alpha, beta float64) (float64, bool) {
	if c.mode == Off {
		return 0, false
	}
	entry, found := c.entries[key]
	if !found {
		return 0, false
	}
	if c.mode == Unconditional {
		return entry.Value, true
	}
	switch entry.Bound {
	case Exact:
		return entry.Value, true
	case Lower:
		if entry.Value >= beta {
			return entry.Value, true
		}
	case Upper:
		if entry.Value <= alpha {
			return entry.Value, true
		}
	}
	return 0, false
}

// Classify returns the Bound of a fail-soft value computed with the window (alphaOrig, betaOrig).
func Classify(value, alphaOrig, betaOrig float64) Bound {
	switch {
	case value <= alphaOrig:
		return Upper
	case value >= betaOrig:
		return Lower
	}
	return Exact
}

// Put stores the value computed for key with the window (alphaOrig, betaOrig) the node was
// searched with. An exact entry is never replaced by a bound.
func (c *Cache) Put(key Key, value, alphaOrig, betaOrig float64) {
	if c.mode == Off {
		return
	}
	bound := Classify(value, alphaOrig, betaOrig)
	if previous, found := c.entries[key]; found && previous.Bound == Exact && bound != Exact {
		return
	}
	c.entries[key] = Entry{Value: value, Bound: bound}
}

// Lookup returns the raw entry for key, regardless of windows. Used for debugging and tests.
func (c *Cache) Lookup(key Key) (Entry, bool) {
	entry, found := c.entries[key]
	return entry, found
}
