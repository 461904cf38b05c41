// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/timetree"
	"github.com/js-arias/treeweaver/tree"
)

func TestFromTimeTree(t *testing.T) {
	// a time calibrated tree,
	// branch lengths in million years
	c, err := timetree.Newick(strings.NewReader("(A:10,(B:5,C:5):5);"), "test", 0)
	if err != nil {
		t.Fatalf("unable to read newick tree: %v", err)
	}
	tt := c.Tree(c.Names()[0])

	nt, err := tree.FromTimeTree(tt)
	if err != nil {
		t.Fatalf("unable to import tree: %v", err)
	}

	want := []string{"A", "B", "C"}
	if got := nt.Terms(); !slices.Equal(got, want) {
		t.Errorf("import: got terminals %v, want %v", got, want)
	}

	a, _ := nt.TermID("A")
	if got := nt.Length(a); math.Abs(got-10) > 1e-6 {
		t.Errorf("import: terminal A: got length %v, want 10", got)
	}
	b, _ := nt.TermID("B")
	if got := nt.Length(b); math.Abs(got-5) > 1e-6 {
		t.Errorf("import: terminal B: got length %v, want 5", got)
	}
	if got := nt.Length(nt.Parent(b)); math.Abs(got-5) > 1e-6 {
		t.Errorf("import: internal node: got length %v, want 5", got)
	}
}
