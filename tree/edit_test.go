// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/treeweaver/tree"
)

func newTree(t testing.TB, newick string) *tree.Tree {
	t.Helper()

	nt, err := tree.Newick(strings.NewReader(newick))
	if err != nil {
		t.Fatalf("unable to parse %q: %v", newick, err)
	}
	return nt
}

func termDist(t testing.TB, nt *tree.Tree, a, b string) float64 {
	t.Helper()

	aID, ok := nt.TermID(a)
	if !ok {
		t.Fatalf("terminal %q not in tree", a)
	}
	bID, ok := nt.TermID(b)
	if !ok {
		t.Fatalf("terminal %q not in tree", b)
	}

	depth := make(map[int]float64)
	for x := aID; x >= 0; x = nt.Parent(x) {
		depth[x] = nt.Depth(x)
	}
	for x := bID; x >= 0; x = nt.Parent(x) {
		if d, ok := depth[x]; ok {
			return nt.Depth(aID) + nt.Depth(bID) - 2*d
		}
	}
	t.Fatalf("terminals %q and %q without a common ancestor", a, b)
	return 0
}

// termDists returns the distance between every pair of terminals.
func termDists(t testing.TB, nt *tree.Tree) map[string]float64 {
	t.Helper()

	terms := nt.Terms()
	d := make(map[string]float64)
	for i, a := range terms {
		for _, b := range terms[i+1:] {
			d[a+"--"+b] = termDist(t, nt, a, b)
		}
	}
	return d
}

// clades returns the terminal content of every clade
// with more than one terminal,
// a representation of the tree topology
// independent of child order.
func clades(t testing.TB, nt *tree.Tree) []string {
	t.Helper()

	var cls []string
	for _, id := range nt.Nodes() {
		if nt.IsTerm(id) {
			continue
		}
		var terms []string
		stack := []int{id}
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if nt.IsTerm(x) {
				terms = append(terms, nt.Label(x))
				continue
			}
			stack = append(stack, nt.Children(x)...)
		}
		slices.Sort(terms)
		cls = append(cls, strings.Join(terms, " "))
	}
	slices.Sort(cls)
	return cls
}

func newickString(t testing.TB, nt *tree.Tree) string {
	t.Helper()

	var buf bytes.Buffer
	if err := nt.Newick(&buf); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestPrune(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	b, _ := nt.TermID("B")
	if err := nt.Prune(b); err != nil {
		t.Fatalf("prune: unexpected error: %v", err)
	}

	// the parent of B and C is spliced out,
	// C keeps the summed branch
	if got, want := newickString(t, nt), "(A:1,C:7);"; got != want {
		t.Errorf("prune: got %q, want %q", got, want)
	}
	if _, ok := nt.TermID("B"); ok {
		t.Errorf("prune: terminal B still indexed")
	}
}

func TestPrunePathLengths(t *testing.T) {
	nt := newTree(t, "((A:1,B:2):3,(C:4,(D:5,E:6):7):8);")
	want := termDists(t, nt)

	d, _ := nt.TermID("D")
	if err := nt.Prune(d); err != nil {
		t.Fatalf("prune: unexpected error: %v", err)
	}
	for pair, dist := range termDists(t, nt) {
		if math.Abs(dist-want[pair]) > 1e-9 {
			t.Errorf("prune: pair %s: got distance %v, want %v", pair, dist, want[pair])
		}
	}
}

func TestPruneRoot(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	if err := nt.Prune(nt.Root()); err != nil {
		t.Fatalf("prune root: unexpected error: %v", err)
	}
	if !nt.IsEmpty() {
		t.Errorf("prune root: tree with %d nodes, want an empty tree", nt.Len())
	}
	if terms := nt.Terms(); len(terms) > 0 {
		t.Errorf("prune root: terminals %v still indexed", terms)
	}
}

func TestPruneRootChild(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	a, _ := nt.TermID("A")
	if err := nt.Prune(a); err != nil {
		t.Fatalf("prune: unexpected error: %v", err)
	}

	// the old root is left with a single child
	// that becomes the new root,
	// without an incident branch
	if got, want := newickString(t, nt), "(B:2,C:3);"; got != want {
		t.Errorf("prune: got %q, want %q", got, want)
	}
}

func TestPruneInvalid(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	if err := nt.Prune(10_000); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("prune: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
	if got, want := newickString(t, nt), "(A:1,(B:2,C:3):4);"; got != want {
		t.Errorf("prune: tree changed after a failed operation: got %q, want %q", got, want)
	}
}

func TestReroot(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")
	wantDist := termDists(t, nt)
	wantTerms := nt.Terms()

	b, _ := nt.TermID("B")
	if err := nt.Reroot(b); err != nil {
		t.Fatalf("reroot: unexpected error: %v", err)
	}
	if got := nt.Terms(); !slices.Equal(got, wantTerms) {
		t.Errorf("reroot: got terminals %v, want %v", got, wantTerms)
	}
	for pair, dist := range termDists(t, nt) {
		if math.Abs(dist-wantDist[pair]) > 1e-9 {
			t.Errorf("reroot: pair %s: got distance %v, want %v", pair, dist, wantDist[pair])
		}
	}

	// the old root was binary
	// so it must be spliced out
	if got, want := newickString(t, nt), "((C:3,A:5):0,B:2);"; got != want {
		t.Errorf("reroot: got %q, want %q", got, want)
	}
}

func TestRerootBack(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")
	want := clades(t, nt)

	b, _ := nt.TermID("B")
	if err := nt.Reroot(b); err != nil {
		t.Fatalf("reroot: unexpected error: %v", err)
	}

	// rerooting on the branch of A
	// restores the original root position:
	// the branch of A fused the two branches
	// of the old root.
	a, _ := nt.TermID("A")
	if err := nt.RerootSplit(a, 4); err != nil {
		t.Fatalf("reroot back: unexpected error: %v", err)
	}
	if got := clades(t, nt); !slices.Equal(got, want) {
		t.Errorf("reroot back: got clades %v, want %v", got, want)
	}
	if got, want := newickString(t, nt), "((C:3,B:2):4,A:1);"; got != want {
		t.Errorf("reroot back: got %q, want %q", got, want)
	}
}

func TestRerootSplit(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")
	wantDist := termDists(t, nt)

	c, _ := nt.TermID("C")
	if err := nt.RerootSplit(c, 1.5); err != nil {
		t.Fatalf("reroot: unexpected error: %v", err)
	}
	if got, want := nt.Length(c), 1.5; got != want {
		t.Errorf("reroot: terminal branch: got length %v, want %v", got, want)
	}
	for pair, dist := range termDists(t, nt) {
		if math.Abs(dist-wantDist[pair]) > 1e-9 {
			t.Errorf("reroot: pair %s: got distance %v, want %v", pair, dist, wantDist[pair])
		}
	}
}

func TestRerootInvalid(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")
	orig := newickString(t, nt)

	if err := nt.Reroot(nt.Root()); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("reroot at root: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
	if err := nt.Reroot(10_000); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("reroot: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
	c, _ := nt.TermID("C")
	if err := nt.RerootSplit(c, 5); err == nil {
		t.Errorf("reroot: split point beyond the branch length must fail")
	}
	if got := newickString(t, nt); got != orig {
		t.Errorf("reroot: tree changed after a failed operation: got %q, want %q", got, orig)
	}
}

func TestCollapse(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	b, _ := nt.TermID("B")
	in := nt.Parent(b)

	if err := nt.Collapse(b); !errors.Is(err, tree.ErrNotInternal) {
		t.Errorf("collapse terminal: got error %v, want %v", err, tree.ErrNotInternal)
	}

	if err := nt.Collapse(in); err != nil {
		t.Fatalf("collapse: unexpected error: %v", err)
	}
	if !nt.Collapsed(in) {
		t.Errorf("collapse: node %d not collapsed", in)
	}

	// idempotent
	if err := nt.Collapse(in); err != nil {
		t.Fatalf("collapse twice: unexpected error: %v", err)
	}

	// descendants of a collapsed clade
	// cannot be addressed
	if err := nt.Prune(b); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("prune hidden: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
	if err := nt.Reroot(b); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("reroot hidden: got error %v, want %v", err, tree.ErrInvalidTarget)
	}

	// the structure is kept
	if got, want := newickString(t, nt), "(A:1,(B:2,C:3):4);"; got != want {
		t.Errorf("collapse: got %q, want %q", got, want)
	}

	if err := nt.Expand(in); err != nil {
		t.Fatalf("expand: unexpected error: %v", err)
	}
	if nt.Collapsed(in) {
		t.Errorf("expand: node %d still collapsed", in)
	}
	if err := nt.Prune(b); err != nil {
		t.Errorf("prune after expand: unexpected error: %v", err)
	}
}

func TestRelabel(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3):4);")

	err := nt.Relabel(func(lb string) (string, error) {
		return lb + "_x", nil
	})
	if err != nil {
		t.Fatalf("relabel: unexpected error: %v", err)
	}
	want := []string{"A_x", "B_x", "C_x"}
	if got := nt.Terms(); !slices.Equal(got, want) {
		t.Errorf("relabel: got terminals %v, want %v", got, want)
	}

	// all-or-nothing
	err = nt.Relabel(func(lb string) (string, error) {
		return "same", nil
	})
	if err == nil {
		t.Fatalf("relabel: expecting error on repeated labels")
	}
	if got := nt.Terms(); !slices.Equal(got, want) {
		t.Errorf("relabel: tree changed after a failed operation: got %v, want %v", got, want)
	}
}

func TestMRCA(t *testing.T) {
	nt := newTree(t, "((A:1,B:1):1,(C:1,(D:1,E:1):1):1);")

	termParent := func(label string) int {
		id, ok := nt.TermID(label)
		if !ok {
			t.Fatalf("terminal %q not in tree", label)
		}
		return nt.Parent(id)
	}
	cID, ok := nt.TermID("C")
	if !ok {
		t.Fatalf("terminal C not in tree")
	}
	bID, ok := nt.TermID("B")
	if !ok {
		t.Fatalf("terminal B not in tree")
	}

	tests := map[string]struct {
		labels []string
		want   int
	}{
		"pair":     {labels: []string{"A", "B"}, want: termParent("A")},
		"nested":   {labels: []string{"D", "E"}, want: termParent("D")},
		"clade":    {labels: []string{"C", "D", "E"}, want: nt.Parent(termParent("D"))},
		"root":     {labels: []string{"A", "E"}, want: nt.Root()},
		// a node is its own ancestor
		"single":   {labels: []string{"C"}, want: cID},
		"repeated": {labels: []string{"B", "B"}, want: bID},
	}
	for name, test := range tests {
		got, err := nt.MRCA(test.labels...)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != test.want {
			t.Errorf("%s: got node %d, want %d", name, got, test.want)
		}
	}

	if _, err := nt.MRCA("A", "nope"); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("unknown terminal: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
	if _, err := nt.MRCA(); !errors.Is(err, tree.ErrInvalidTarget) {
		t.Errorf("empty call: got error %v, want %v", err, tree.ErrInvalidTarget)
	}
}
