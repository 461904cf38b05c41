// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"

	"github.com/js-arias/timetree"
)

// MillionYears is the unit used for branch lengths
// when importing a time calibrated tree
// with node ages in years.
const millionYears = 1_000_000

// FromTimeTree imports a time calibrated tree
// (with node ages in years before present)
// as a phylogenetic tree
// with branch lengths in million years.
func FromTimeTree(tt *timetree.Tree) (*Tree, error) {
	t := New()

	ids := make(map[int]int)
	stack := []int{tt.Root()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		parent := -1
		var length float64
		if p := tt.Parent(n); p >= 0 {
			parent = ids[p]
			length = float64(tt.Age(p)-tt.Age(n)) / millionYears
		}
		id, err := t.Add(parent, length, tt.Taxon(n))
		if err != nil {
			return nil, fmt.Errorf("tree: importing %q: %v", tt.Name(), err)
		}
		ids[n] = id

		children := tt.Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tree: importing %q: %v", tt.Name(), err)
	}
	return t, nil
}
