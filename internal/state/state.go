// Package state defines the game state used by the searchers: an opaque position payload
// plus its provenance (parent state and the move that produced it).
//
// The state package knows nothing about the rules of any game. Rules are provided by
// a rules.Provider, and positions by each game package.
package state

import (
	"fmt"
	"iter"
	"strings"
)

// Side to move. By convention SideFirst is the maximizing side: a win for SideFirst is
// scored +∞ and a win for SideSecond is scored -∞.
type Side uint8

const (
	SideFirst Side = iota
	SideSecond

	// SideNone represents an invalid Side, or "no winner".
	SideNone
)

// Other returns the opponent side. SideNone has no opponent and returns itself.
func (s Side) Other() Side {
	switch s {
	case SideFirst:
		return SideSecond
	case SideSecond:
		return SideFirst
	}
	return SideNone
}

// IsMaximizing returns whether this side maximizes the score.
func (s Side) IsMaximizing() bool {
	return s == SideFirst
}

// SideFor returns the side that maximizes if maximizing is true, or the minimizing side otherwise.
func SideFor(maximizing bool) Side {
	if maximizing {
		return SideFirst
	}
	return SideSecond
}

func (s Side) String() string {
	switch s {
	case SideFirst:
		return "First"
	case SideSecond:
		return "Second"
	}
	return "None"
}

// Key is a canonical encoding of a position. Two positions are the same if and only if their
// Keys are equal, so it must be derived from an exact encoding, never from a hash that
// can collide nor from object identity.
type Key string

// Position is the opaque payload of a State, implemented by each game.
type Position interface {
	// Key returns the canonical encoding of the position.
	Key() Key

	// String returns a human-readable representation of the position.
	String() string
}

// Move is whatever transition a game uses to go from one position to the next.
// It is only used for reporting.
type Move = fmt.Stringer

// State is an immutable snapshot of a position plus its provenance.
//
// Equality is defined purely over the Position (see Equal and Key): two states reached through
// different paths compare equal.
type State struct {
	position Position
	parent   *State
	move     Move
	ply      int
}

// NewRoot creates a State without parent: usually the start of a match, or a position set up
// for analysis.
func NewRoot(position Position) *State {
	return &State{position: position}
}

// NewChild creates the State that results from playing move from s, reaching position.
// The new state refers back to s, but s holds no reference to its children.
func (s *State) NewChild(position Position, move Move) *State {
	return &State{
		position: position,
		parent:   s,
		move:     move,
		ply:      s.ply + 1,
	}
}

// Position returns the payload of the state.
func (s *State) Position() Position { return s.position }

// Parent returns the state from which this one was reached, or nil for a root.
func (s *State) Parent() *State { return s.parent }

// Move returns the move that produced this state, or nil for a root.
func (s *State) Move() Move { return s.move }

// Ply returns the number of moves played from the root of the chain.
func (s *State) Ply() int { return s.ply }

// Key returns the position's canonical key.
func (s *State) Key() Key { return s.position.Key() }

// Equal returns whether both states hold the same position. Parent and move are ignored.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Key() == other.Key()
}

// Ancestors iterates over the previous states, starting from the parent and going up to the root.
func (s *State) Ancestors() iter.Seq[*State] {
	return func(yield func(*State) bool) {
		for p := s.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Path returns the chain of states from the root up to and including s.
func (s *State) Path() []*State {
	path := make([]*State, s.ply+1)
	idx := s.ply
	for p := s; p != nil && idx >= 0; p = p.parent {
		path[idx] = p
		idx--
	}
	return path[idx+1:]
}

// Moves returns the moves from the root up to s.
func (s *State) Moves() []Move {
	path := s.Path()
	moves := make([]Move, 0, len(path))
	for _, p := range path {
		if p.move != nil {
			moves = append(moves, p.move)
		}
	}
	return moves
}

// CountRepeats returns how many times the position of s occurred before in its chain of
// ancestors.
func (s *State) CountRepeats() int {
	key := s.Key()
	var repeats int
	for p := range s.Ancestors() {
		if p.Key() == key {
			repeats++
		}
	}
	return repeats
}

// String returns the move (if any) and the position.
func (s *State) String() string {
	var sb strings.Builder
	if s.move != nil {
		fmt.Fprintf(&sb, "%s -> ", s.move)
	}
	sb.WriteString(s.position.String())
	return sb.String()
}
