// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/treeweaver/tree"
)

func TestNewickRoundTrip(t *testing.T) {
	trees := []string{
		"(A:1,(B:2,C:3):4);",
		"(A:1,B:2,C:3);",
		"((A:0.1,B:0.2)0.95:0.3,(C:0.4,D:0.5)0.87:0.6);",
		"(A:1,(B:2,(C:3,D:4)inner:5):6);",
		"('my taxon':1.5,('it''s here':2,C:3):4);",
		"(Homo_sapiens:0.0012,(Pan_troglodytes:0.0015,Gorilla_gorilla:0.002):0.0005);",
	}
	for _, nwk := range trees {
		nt := newTree(t, nwk)
		got := newickString(t, nt)
		if got != nwk {
			t.Errorf("round trip: got %q, want %q", got, nwk)
		}

		// reparse and compare the structures
		rt := newTree(t, got)
		if g, w := rt.Terms(), nt.Terms(); !slices.Equal(g, w) {
			t.Errorf("round trip %q: got terminals %v, want %v", nwk, g, w)
		}
		if g, w := newickString(t, rt), got; g != w {
			t.Errorf("round trip %q: second pass: got %q, want %q", nwk, g, w)
		}
	}
}

func TestNewickComments(t *testing.T) {
	nt := newTree(t, "(A[a comment]:1,(B:2,C:3)[another]:4)[root];")
	if got, want := newickString(t, nt), "(A:1,(B:2,C:3):4);"; got != want {
		t.Errorf("comments: got %q, want %q", got, want)
	}
}

func TestNewickSupport(t *testing.T) {
	nt := newTree(t, "(A:1,(B:2,C:3)0.95:4);")

	b, _ := nt.TermID("B")
	sup, ok := nt.Support(nt.Parent(b))
	if !ok {
		t.Fatalf("support: internal node without support value")
	}
	if sup != 0.95 {
		t.Errorf("support: got %v, want 0.95", sup)
	}
}

func TestNewickKeepInternalLabels(t *testing.T) {
	nt, err := tree.Newick(strings.NewReader("(A:1,(B:2,C:3)0.95:4);"), tree.KeepInternalLabels())
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}

	b, _ := nt.TermID("B")
	in := nt.Parent(b)
	if _, ok := nt.Support(in); ok {
		t.Errorf("keep labels: numeric label stored as support")
	}
	if got, want := nt.Label(in), "0.95"; got != want {
		t.Errorf("keep labels: got label %q, want %q", got, want)
	}
}

func TestNewickMalformed(t *testing.T) {
	malformed := []string{
		"",
		"(A:1,(B:2,C:3):4",
		"(A:1,(B:2,C:3:4);",
		"(A:1,B:2));",
		"(A:1,B:2); junk",
		"('unterminated:1,B:2);",
		"(A:xx,B:2);",
		"(A:-1,B:2);",
		"(A:1,A:2);",
		"(A:1,[comment);",
		"(:1,B:2);",
	}
	for _, nwk := range malformed {
		_, err := tree.Newick(strings.NewReader(nwk))
		if !errors.Is(err, tree.ErrMalformedNewick) {
			t.Errorf("newick %q: got error %v, want %v", nwk, err, tree.ErrMalformedNewick)
		}
	}
}
