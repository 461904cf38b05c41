// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements a rooted phylogenetic tree
// with branch lengths
// and editing operations
// such as re-rooting,
// pruning,
// and clade collapsing.
//
// Nodes are stored in a flat table
// and addressed by integer IDs
// that are stable for the life of the node
// and never reused,
// so there are no cyclic references:
// the parent of a node is only a reference for traversal,
// the structure is defined by the child lists.
package tree

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	// ErrInvalidTarget is returned when an operation
	// points to a node or edge
	// that is not present,
	// or cannot be used as the target of the operation.
	ErrInvalidTarget = errors.New("invalid target node")

	// ErrNotInternal is returned when an operation
	// that requires an internal node
	// points to a terminal.
	ErrNotInternal = errors.New("not an internal node")
)

// A node is a single vertex of a tree.
type node struct {
	parent    int
	children  []int
	label     string
	length    float64
	support   float64
	hasSup    bool
	collapsed bool
}

// A Tree is a rooted phylogenetic tree.
//
// An empty tree
// (a tree in which every node was pruned)
// is a valid value.
type Tree struct {
	nodes  map[int]*node
	root   int
	terms  map[string]int
	nextID int
}

// New creates a new empty tree.
func New() *Tree {
	return &Tree{
		nodes: make(map[int]*node),
		root:  -1,
		terms: make(map[string]int),
	}
}

// Add adds a node as the last child of the indicated parent
// and returns the ID of the added node.
// If parent is -1,
// the node will be the root of an empty tree.
// The branch length is the length of the edge
// between the node and its parent
// and must be non-negative
// (the root ignores it).
//
// After building a tree with Add,
// use Validate to check that the result
// is a well formed phylogenetic tree.
func (t *Tree) Add(parent int, length float64, label string) (int, error) {
	label = strings.TrimSpace(label)
	if math.IsNaN(length) || math.IsInf(length, 0) || length < 0 {
		return -1, fmt.Errorf("tree: add %q: invalid branch length %v", label, length)
	}

	if parent < 0 {
		if t.root >= 0 {
			return -1, fmt.Errorf("tree: add %q: tree already has a root: %w", label, ErrInvalidTarget)
		}
		id := t.nextID
		t.nextID++
		t.nodes[id] = &node{parent: -1, label: label}
		t.root = id
		t.rebuildTerms()
		return id, nil
	}

	p, ok := t.nodes[parent]
	if !ok {
		return -1, fmt.Errorf("tree: add %q: parent %d: %w", label, parent, ErrInvalidTarget)
	}
	id := t.nextID
	t.nextID++
	t.nodes[id] = &node{parent: parent, label: label, length: length}
	p.children = append(p.children, id)
	t.rebuildTerms()
	return id, nil
}

// SetSupport sets the support value of an internal node.
func (t *Tree) SetSupport(id int, sup float64) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree: node %d: %w", id, ErrInvalidTarget)
	}
	if len(n.children) == 0 {
		return fmt.Errorf("tree: node %d: %w", id, ErrNotInternal)
	}
	if math.IsNaN(sup) || math.IsInf(sup, 0) {
		return fmt.Errorf("tree: node %d: invalid support value %v", id, sup)
	}
	n.support = sup
	n.hasSup = true
	return nil
}

// IsEmpty returns true if every node of the tree
// was pruned away.
func (t *Tree) IsEmpty() bool {
	return t.root < 0
}

// Root returns the ID of the root node,
// or -1 for an empty tree.
func (t *Tree) Root() int {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nodes returns the IDs of every node in the tree,
// in increasing order.
func (t *Tree) Nodes() []int {
	ids := make([]int, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Parent returns the ID of the parent of a node,
// or -1 for the root
// and for nodes not in the tree.
func (t *Tree) Parent(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	return n.parent
}

// Children returns the children of a node
// in their stored order.
func (t *Tree) Children(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// IsTerm returns true if the node is a terminal,
// a node without descendants.
func (t *Tree) IsTerm(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return len(n.children) == 0
}

// Label returns the label of a node.
// Terminals are always labeled;
// internal nodes may have an empty label.
func (t *Tree) Label(id int) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.label
}

// Length returns the length of the branch
// between a node and its parent.
// The root has no branch
// and always reports a zero length.
func (t *Tree) Length(id int) float64 {
	n, ok := t.nodes[id]
	if !ok || n.parent < 0 {
		return 0
	}
	return n.length
}

// Support returns the support value of a node
// and whether the node has one.
func (t *Tree) Support(id int) (float64, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return n.support, n.hasSup
}

// Collapsed returns true if the clade of the node
// is collapsed for display.
func (t *Tree) Collapsed(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return n.collapsed
}

// Terms returns the labels of every terminal of the tree,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	terms := make([]string, 0, len(t.terms))
	for nm := range t.terms {
		terms = append(terms, nm)
	}
	slices.Sort(terms)
	return terms
}

// TermID returns the node ID of the terminal
// with a given label.
func (t *Tree) TermID(label string) (int, bool) {
	id, ok := t.terms[label]
	return id, ok
}

// MRCA returns the node ID
// of the most recent common ancestor
// of the given terminals.
// It returns ErrInvalidTarget
// if a terminal is not in the tree.
func (t *Tree) MRCA(labels ...string) (int, error) {
	if len(labels) == 0 {
		return -1, fmt.Errorf("%w: no terminals given", ErrInvalidTarget)
	}

	mrca, ok := t.TermID(labels[0])
	if !ok {
		return -1, fmt.Errorf("%w: unknown terminal %q", ErrInvalidTarget, labels[0])
	}

	// onPath holds the nodes between the current ancestor
	// and the root.
	onPath := make(map[int]bool)
	for x := mrca; x >= 0; x = t.nodes[x].parent {
		onPath[x] = true
	}

	for _, l := range labels[1:] {
		id, ok := t.TermID(l)
		if !ok {
			return -1, fmt.Errorf("%w: unknown terminal %q", ErrInvalidTarget, l)
		}
		x := id
		for !onPath[x] {
			x = t.nodes[x].parent
		}
		for d := mrca; d != x; d = t.nodes[d].parent {
			delete(onPath, d)
		}
		mrca = x
	}
	return mrca, nil
}

// Depth returns the sum of branch lengths
// from the root to a node.
func (t *Tree) Depth(id int) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}
	var d float64
	for n.parent >= 0 {
		d += n.length
		n = t.nodes[n.parent]
	}
	return d
}

// Validate checks that the tree is well formed:
// a single root,
// consistent parent-child relations,
// no cycles,
// non-negative branch lengths,
// every internal node with at least two children,
// and every terminal with a unique non-empty label.
func (t *Tree) Validate() error {
	if t.root < 0 {
		if len(t.nodes) > 0 {
			return fmt.Errorf("tree: %d nodes without a root", len(t.nodes))
		}
		return nil
	}
	r, ok := t.nodes[t.root]
	if !ok {
		return fmt.Errorf("tree: root %d is not a node", t.root)
	}
	if r.parent >= 0 {
		return fmt.Errorf("tree: root %d with a parent", t.root)
	}

	seen := make(map[int]bool, len(t.nodes))
	stack := []int{t.root}
	labels := make(map[string]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return fmt.Errorf("tree: node %d: multiple parents", id)
		}
		seen[id] = true

		n := t.nodes[id]
		if id != t.root {
			if n.length < 0 || math.IsNaN(n.length) || math.IsInf(n.length, 0) {
				return fmt.Errorf("tree: node %d: invalid branch length %v", id, n.length)
			}
		}
		if len(n.children) == 0 {
			if n.label == "" {
				return fmt.Errorf("tree: node %d: terminal without label", id)
			}
			if labels[n.label] {
				return fmt.Errorf("tree: terminal %q: repeated label", n.label)
			}
			labels[n.label] = true
			continue
		}
		if len(n.children) == 1 && id != t.root {
			return fmt.Errorf("tree: node %d: internal node with a single child", id)
		}
		if len(n.children) == 1 {
			return fmt.Errorf("tree: root %d with a single child", id)
		}
		for _, cID := range n.children {
			c, ok := t.nodes[cID]
			if !ok {
				return fmt.Errorf("tree: node %d: child %d is not a node", id, cID)
			}
			if c.parent != id {
				return fmt.Errorf("tree: node %d: child %d with a different parent", id, cID)
			}
			stack = append(stack, cID)
		}
	}
	if len(seen) != len(t.nodes) {
		return fmt.Errorf("tree: %d nodes not reachable from the root", len(t.nodes)-len(seen))
	}
	return nil
}

// RebuildTerms rebuilds the index
// from terminal labels to node IDs.
func (t *Tree) rebuildTerms() {
	t.terms = make(map[string]int, len(t.terms))
	for id, n := range t.nodes {
		if len(n.children) > 0 || n.label == "" {
			continue
		}
		t.terms[n.label] = id
	}
}

// MustValid panics if the tree is not well formed.
// Editing operations keep a well formed tree well formed,
// so a violation after an edit
// is an internal programming error.
func (t *Tree) mustValid() {
	if err := t.Validate(); err != nil {
		panic(err)
	}
}

// Hidden returns true if any strict ancestor of the node
// is collapsed,
// so the node cannot be addressed individually.
func (t *Tree) hidden(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	for n.parent >= 0 {
		n = t.nodes[n.parent]
		if n.collapsed {
			return true
		}
	}
	return false
}
