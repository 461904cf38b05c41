// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"math"
	"slices"
)

// Reroot places a new root on the branch
// above the indicated node.
// The whole length of the split branch
// is kept on the side of the node,
// so the branch of the old parent side is zero.
// To use a different split,
// see RerootSplit.
//
// It returns ErrInvalidTarget if the node is not in the tree,
// is the current root,
// or is inside a collapsed clade.
func (t *Tree) Reroot(id int) error {
	return t.RerootSplit(id, 0)
}

// RerootSplit places a new root on the branch
// above the indicated node,
// splitting the branch at a given point:
// at is the length assigned to the old parent side
// and the node keeps the rest,
// so the length of the branch is preserved in sum.
// A midpoint split of the branch of a node n
// is RerootSplit(n, t.Length(n)/2).
//
// The set of terminals
// and the length of the path
// between any two nodes away from the split branch
// are unchanged.
// If the old root is left with a single child,
// it is removed
// and its branches fused.
func (t *Tree) RerootSplit(id int, at float64) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree: reroot: node %d: %w", id, ErrInvalidTarget)
	}
	if id == t.root {
		return fmt.Errorf("tree: reroot: node %d is the root: %w", id, ErrInvalidTarget)
	}
	if t.hidden(id) {
		return fmt.Errorf("tree: reroot: node %d is inside a collapsed clade: %w", id, ErrInvalidTarget)
	}
	if math.IsNaN(at) || at < 0 || at > n.length {
		return fmt.Errorf("tree: reroot: node %d: invalid split point %v on a branch of length %v", id, at, n.length)
	}

	// ancestors of the node,
	// from its parent up to the old root
	var chain []int
	for x := n.parent; x >= 0; x = t.nodes[x].parent {
		chain = append(chain, x)
	}
	upLen := make([]float64, len(chain))
	for i, x := range chain {
		upLen[i] = t.nodes[x].length
	}

	p := t.nodes[n.parent]
	p.children = deleteChild(p.children, id)

	// reverse the orientation of the ancestor chain:
	// each ancestor becomes a child of its old child,
	// keeping the length of the branch between them.
	for i := 0; i+1 < len(chain); i++ {
		q := t.nodes[chain[i+1]]
		q.children = deleteChild(q.children, chain[i])
	}
	for i := 0; i+1 < len(chain); i++ {
		c := t.nodes[chain[i]]
		c.children = append(c.children, chain[i+1])
		q := t.nodes[chain[i+1]]
		q.parent = chain[i]
		q.length = upLen[i]
	}

	rID := t.nextID
	t.nextID++
	t.nodes[rID] = &node{
		parent:   -1,
		children: []int{chain[0], id},
	}
	t.nodes[chain[0]].parent = rID
	t.nodes[chain[0]].length = at
	n.parent = rID
	n.length -= at
	t.root = rID

	// the old root might be left with a single child
	if old := chain[len(chain)-1]; len(t.nodes[old].children) == 1 {
		t.splice(old)
	}

	t.rebuildTerms()
	t.mustValid()
	return nil
}

// Collapse marks the clade of an internal node
// as collapsed for display,
// so its descendants cannot be addressed individually
// until the clade is expanded.
// The descendants are kept in the tree;
// to remove them use Prune.
// Collapsing an already collapsed clade is a no-op.
//
// It returns ErrNotInternal if the node is a terminal,
// and ErrInvalidTarget if the node is not in the tree
// or is inside another collapsed clade.
func (t *Tree) Collapse(id int) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree: collapse: node %d: %w", id, ErrInvalidTarget)
	}
	if t.hidden(id) {
		return fmt.Errorf("tree: collapse: node %d is inside a collapsed clade: %w", id, ErrInvalidTarget)
	}
	if len(n.children) == 0 {
		return fmt.Errorf("tree: collapse: node %d: %w", id, ErrNotInternal)
	}
	n.collapsed = true
	return nil
}

// Expand clears the collapsed mark of an internal node.
// Expanding a non-collapsed clade is a no-op.
//
// It returns ErrNotInternal if the node is a terminal,
// and ErrInvalidTarget if the node is not in the tree
// or is inside another collapsed clade.
func (t *Tree) Expand(id int) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree: expand: node %d: %w", id, ErrInvalidTarget)
	}
	if t.hidden(id) {
		return fmt.Errorf("tree: expand: node %d is inside a collapsed clade: %w", id, ErrInvalidTarget)
	}
	if len(n.children) == 0 {
		return fmt.Errorf("tree: expand: node %d: %w", id, ErrNotInternal)
	}
	n.collapsed = false
	return nil
}

// Prune removes a node
// and its whole clade from the tree.
// If the parent is left with a single child,
// the parent is removed
// and the child reattached to the grandparent,
// with the lengths of the two fused branches summed,
// so the length of the path
// between any two surviving terminals is preserved.
// If the root is left with a single child,
// that child becomes the new root
// and its branch is discarded.
//
// Pruning the root is valid
// and leaves an empty tree.
//
// The caller is responsible for removing
// the sequences of the pruned terminals
// from any associated sequence collection.
//
// It returns ErrInvalidTarget if the node is not in the tree
// or is inside a collapsed clade.
func (t *Tree) Prune(id int) error {
	_, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree: prune: node %d: %w", id, ErrInvalidTarget)
	}
	if t.hidden(id) {
		return fmt.Errorf("tree: prune: node %d is inside a collapsed clade: %w", id, ErrInvalidTarget)
	}

	if id == t.root {
		t.nodes = make(map[int]*node)
		t.root = -1
		t.rebuildTerms()
		return nil
	}

	pID := t.nodes[id].parent
	p := t.nodes[pID]
	p.children = deleteChild(p.children, id)
	t.deleteClade(id)

	if len(p.children) == 1 {
		if pID == t.root {
			c := t.nodes[p.children[0]]
			c.parent = -1
			c.length = 0
			t.root = p.children[0]
			delete(t.nodes, pID)
		} else {
			t.splice(pID)
		}
	}

	t.rebuildTerms()
	t.mustValid()
	return nil
}

// Relabel replaces the label of every terminal
// using the given function.
// It is all-or-nothing:
// if the function fails on any terminal,
// or two terminals end with the same label,
// the tree is unchanged.
func (t *Tree) Relabel(fn func(string) (string, error)) error {
	newLabels := make(map[int]string, len(t.terms))
	seen := make(map[string]bool, len(t.terms))
	for lb, id := range t.terms {
		nl, err := fn(lb)
		if err != nil {
			return fmt.Errorf("tree: relabel %q: %w", lb, err)
		}
		if nl == "" {
			return fmt.Errorf("tree: relabel %q: empty label", lb)
		}
		if seen[nl] {
			return fmt.Errorf("tree: relabel %q: repeated label %q", lb, nl)
		}
		seen[nl] = true
		newLabels[id] = nl
	}

	for id, nl := range newLabels {
		t.nodes[id].label = nl
	}
	t.rebuildTerms()
	t.mustValid()
	return nil
}

// Splice removes a node with a single child,
// reattaching the child to the grandparent
// at the position of the removed node,
// with the lengths of the two branches summed.
func (t *Tree) splice(id int) {
	n := t.nodes[id]
	cID := n.children[0]
	c := t.nodes[cID]
	g := t.nodes[n.parent]
	g.children[slices.Index(g.children, id)] = cID
	c.parent = n.parent
	c.length += n.length
	delete(t.nodes, id)
}

// DeleteClade removes a node
// and all its descendants from the node table.
func (t *Tree) deleteClade(id int) {
	stack := []int{id}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[x].children...)
		delete(t.nodes, x)
	}
}

func deleteChild(children []int, id int) []int {
	i := slices.Index(children, id)
	return slices.Delete(children, i, i+1)
}
