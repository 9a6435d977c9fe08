// Package statetest provides an explicit game tree, to build deterministic tests for the searchers.
//
// A Tree is a rules.Provider and an ai.LeafHeuristic at the same time: each node carries its own
// static value, its children (in enumeration order) and, optionally, a known outcome.
// Nodes can be shared among several parents, building a DAG: that is how transpositions are
// represented.
package statetest

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/janpfeifer/gametree/internal/rules"
	. "github.com/janpfeifer/gametree/internal/state"
)

// Node of an explicit game tree.
type Node struct {
	// Name must be unique in the tree: it is used as the position Key.
	Name string

	// Value returned by the Tree leaf heuristic for this node.
	Value float64

	// Children in enumeration order. A node without children is terminal.
	Children []*Node

	// Outcome, if not nil, makes the node terminal with the given result.
	Outcome *rules.Outcome

	// ClaimableDraw marks the node as one where a draw can be claimed.
	ClaimableDraw bool
}

// Leaf returns a childless node with the given static value.
func Leaf(name string, value float64) *Node {
	return &Node{Name: name, Value: value}
}

// Branch returns an internal node with the given children.
func Branch(name string, value float64, children ...*Node) *Node {
	return &Node{Name: name, Value: value, Children: children}
}

// Win returns a terminal node won by side. Its static value is deliberately 0, so tests can tell
// whether the outcome was used.
func Win(name string, side Side) *Node {
	outcome := rules.WinFor(side)
	return &Node{Name: name, Outcome: &outcome}
}

// Draw returns a terminal drawn node with the given static value.
func Draw(name string, value float64) *Node {
	outcome := rules.DrawOutcome
	return &Node{Name: name, Value: value, Outcome: &outcome}
}

// position is the state.Position for a Node.
type position struct {
	node *Node
}

func (p position) Key() Key       { return Key(p.node.Name) }
func (p position) String() string { return p.node.Name }

// move to a named child.
type move string

func (m move) String() string { return string(m) }

// Tree implements rules.Provider and ai.LeafHeuristic over an explicit tree of Nodes.
type Tree struct {
	root        *Node
	firstToMove Side
	depths      map[*Node]int

	// ScoreCalls counts the calls to Score, per node name.
	ScoreCalls map[string]int

	// NeighborsCalls counts the calls to Neighbors, per node name.
	NeighborsCalls map[string]int
}

var _ rules.Provider = (*Tree)(nil)

// NewTree creates a Tree whose root has firstToMove to play. Sides alternate at every level.
//
// It panics if a node shared by two parents is reached at depths of different parity, since the side
// to move would be ambiguous.
func NewTree(root *Node, firstToMove Side) *Tree {
	t := &Tree{
		root:           root,
		firstToMove:    firstToMove,
		depths:         make(map[*Node]int),
		ScoreCalls:     make(map[string]int),
		NeighborsCalls: make(map[string]int),
	}
	t.setDepths(root, 0)
	return t
}

func (t *Tree) setDepths(node *Node, depth int) {
	if previous, found := t.depths[node]; found {
		if previous%2 != depth%2 {
			panic(fmt.Sprintf("statetest: node %q reached at depths %d and %d", node.Name, previous, depth))
		}
		return
	}
	t.depths[node] = depth
	for _, child := range node.Children {
		t.setDepths(child, depth+1)
	}
}

// Root returns the root State of the tree.
func (t *Tree) Root() *State {
	return NewRoot(position{t.root})
}

// ResetCounts zeroes ScoreCalls and NeighborsCalls.
func (t *Tree) ResetCounts() {
	clear(t.ScoreCalls)
	clear(t.NeighborsCalls)
}

// TotalScoreCalls sums the ScoreCalls of all nodes.
func (t *Tree) TotalScoreCalls() (total int) {
	for _, count := range t.ScoreCalls {
		total += count
	}
	return
}

// NodeOf returns the Node of a State created by this Tree.
func NodeOf(s *State) *Node {
	return s.Position().(position).node
}

// Neighbors implements rules.Provider.
func (t *Tree) Neighbors(s *State) []*State {
	node := NodeOf(s)
	t.NeighborsCalls[node.Name]++
	if node.Outcome != nil {
		return nil
	}
	children := make([]*State, len(node.Children))
	for ii, child := range node.Children {
		children[ii] = s.NewChild(position{child}, move(child.Name))
	}
	return children
}

// IsTerminal implements rules.Provider.
func (t *Tree) IsTerminal(s *State) bool {
	node := NodeOf(s)
	return node.Outcome != nil || len(node.Children) == 0
}

// IsClaimableDraw implements rules.Provider.
func (t *Tree) IsClaimableDraw(s *State) bool {
	return NodeOf(s).ClaimableDraw
}

// TurnOf implements rules.Provider.
func (t *Tree) TurnOf(s *State) Side {
	if t.depths[NodeOf(s)]%2 == 0 {
		return t.firstToMove
	}
	return t.firstToMove.Other()
}

// Outcome implements rules.Provider.
func (t *Tree) Outcome(s *State) (rules.Outcome, bool) {
	node := NodeOf(s)
	if node.Outcome == nil {
		return rules.Outcome{}, false
	}
	return *node.Outcome, true
}

// Score implements ai.LeafHeuristic: it returns the node Value.
func (t *Tree) Score(s *State) float64 {
	node := NodeOf(s)
	t.ScoreCalls[node.Name]++
	return node.Value
}

// String implements ai.LeafHeuristic.
func (t *Tree) String() string {
	return "statetest.Tree"
}

// Heuristic returns a leaf heuristic over the same tree that uses fn(node) as the value, instead of
// Node.Value. Useful to build cutoff heuristics that disagree with the main heuristic.
func (t *Tree) Heuristic(name string, fn func(node *Node) float64) *NodeHeuristic {
	return &NodeHeuristic{name: name, fn: fn}
}

// NodeHeuristic is an ai.LeafHeuristic over Nodes.
type NodeHeuristic struct {
	name  string
	fn    func(node *Node) float64
	Calls int
}

// Score implements ai.LeafHeuristic.
func (h *NodeHeuristic) Score(s *State) float64 {
	h.Calls++
	return h.fn(NodeOf(s))
}

// String implements ai.LeafHeuristic.
func (h *NodeHeuristic) String() string { return h.name }

// RandomTreeConfig configures RandomTree.
type RandomTreeConfig struct {
	// Depth of the tree: leaves are at this depth, unless cut short by a terminal node.
	Depth int

	// MinBranching and MaxBranching bound the number of children of internal nodes.
	MinBranching, MaxBranching int

	// MaxValue bounds the (integer) static values to [-MaxValue, MaxValue]. Small values create ties.
	MaxValue int

	// TerminalRate is the probability of an internal node being replaced by a decided terminal node.
	TerminalRate float64

	// TranspositionRate is the probability of reusing an already created node of the same depth,
	// instead of creating a new one.
	TranspositionRate float64

	// DrawRate is the probability of a node being marked as a claimable draw.
	DrawRate float64
}

// RandomTree builds a tree deterministically from rng.
func RandomTree(rng *rand.Rand, config RandomTreeConfig) *Node {
	byDepth := make(map[int][]*Node)
	var build func(name string, depth int) *Node
	build = func(name string, depth int) *Node {
		if depth > 0 && len(byDepth[depth]) > 0 && rng.Float64() < config.TranspositionRate {
			nodes := byDepth[depth]
			return nodes[rng.IntN(len(nodes))]
		}
		node := &Node{
			Name:  name,
			Value: float64(rng.IntN(2*config.MaxValue+1) - config.MaxValue),
		}
		byDepth[depth] = append(byDepth[depth], node)
		if depth > 0 && rng.Float64() < config.DrawRate {
			node.ClaimableDraw = true
		}
		if depth == config.Depth {
			return node
		}
		if depth > 0 && rng.Float64() < config.TerminalRate {
			var outcome rules.Outcome
			switch rng.IntN(3) {
			case 0:
				outcome = rules.WinFor(SideFirst)
			case 1:
				outcome = rules.WinFor(SideSecond)
			default:
				outcome = rules.DrawOutcome
			}
			node.Outcome = &outcome
			return node
		}
		numChildren := config.MinBranching
		if config.MaxBranching > config.MinBranching {
			numChildren += rng.IntN(config.MaxBranching - config.MinBranching + 1)
		}
		for ii := range numChildren {
			node.Children = append(node.Children, build(fmt.Sprintf("%s.%d", name, ii), depth+1))
		}
		return node
	}
	return build("r", 0)
}

// Describe returns a multi-line indented description of the tree, for debugging tests.
func Describe(node *Node) string {
	var sb strings.Builder
	var describe func(node *Node, indent int)
	describe = func(node *Node, indent int) {
		fmt.Fprintf(&sb, "%s%s value=%g", strings.Repeat("  ", indent), node.Name, node.Value)
		if node.Outcome != nil {
			fmt.Fprintf(&sb, " outcome=%s", node.Outcome)
		}
		if node.ClaimableDraw {
			sb.WriteString(" claimable-draw")
		}
		sb.WriteString("\n")
		for _, child := range node.Children {
			describe(child, indent+1)
		}
	}
	describe(node, 0)
	return sb.String()
}
