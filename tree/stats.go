// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats is a summary of a phylogenetic tree.
type Stats struct {
	// Number of terminals
	Terms int

	// Total number of nodes
	Nodes int

	// Branch lengths
	TotalLen  float64
	MeanLen   float64
	MedianLen float64

	// Support values
	// of the internal nodes that have one
	Supported int
	MeanSup   float64
	MedianSup float64

	// Maximum root to terminal distance
	Depth float64
}

// Stats returns a summary of the tree.
func (t *Tree) Stats() Stats {
	var s Stats
	s.Nodes = len(t.nodes)
	s.Terms = len(t.terms)

	var lens, sups []float64
	for id, n := range t.nodes {
		if n.parent >= 0 {
			lens = append(lens, n.length)
			s.TotalLen += n.length
		}
		if n.hasSup {
			sups = append(sups, n.support)
		}
		if len(n.children) == 0 {
			if d := t.Depth(id); d > s.Depth {
				s.Depth = d
			}
		}
	}

	if len(lens) > 0 {
		slices.Sort(lens)
		s.MeanLen = stat.Mean(lens, nil)
		s.MedianLen = stat.Quantile(0.5, stat.Empirical, lens, nil)
	}
	s.Supported = len(sups)
	if len(sups) > 0 {
		slices.Sort(sups)
		s.MeanSup = stat.Mean(sups, nil)
		s.MedianSup = stat.Quantile(0.5, stat.Empirical, sups, nil)
	}
	return s
}
