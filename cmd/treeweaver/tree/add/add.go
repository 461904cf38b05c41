// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add a tree
// to a TreeWeaver project.
package add

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/tree"
)

var Command = &command.Command{
	Usage: `add [-f|--file <tree-file>] [--timetree]
	<project-file> [<input-file>]`,
	Short: "add a tree to a TreeWeaver project",
	Long: `
Command add reads a phylogenetic tree from a tree file, and adds the tree
to a TreeWeaver project, for example a tree inferred in a previous study.

The first argument of the command is the name of the project file. The
second argument is the tree file; if no file is given the tree will be
read from the standard input.

By default, the input is expected to be in newick format. To import a tree
from a tab-delimited timetree file, use the flag --timetree; in that case
the branch lengths of the resulting tree will be in million years.

If the project has sequences defined, the terminals of the tree must match
the sequence identifiers.

By default the tree will be stored in the tree file currently defined for
the project. If the project does not have a tree file, a new one will be
created with the name 'tree.nwk'. A different tree file name can be
defined using the flag --file, or -f.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFile string
var fromTimeTree bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&treeFile, "f", "", "")
	c.Flags().BoolVar(&fromTimeTree, "timetree", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	input := ""
	if len(args) > 1 {
		input = args[1]
	}
	var t *tree.Tree
	if fromTimeTree {
		t, err = readTimeTree(c.Stdin(), input)
	} else {
		t, err = readNewick(c.Stdin(), input)
	}
	if err != nil {
		return err
	}

	if p.Path(project.Sequences) != "" {
		sc, err := p.Sequences()
		if err != nil {
			return err
		}
		ids := sc.IDs()
		slices.Sort(ids)
		if !slices.Equal(t.Terms(), ids) {
			return fmt.Errorf("tree terminals do not match the sequences of project %q", args[0])
		}
	}

	if treeFile == "" {
		treeFile = p.Path(project.Tree)
		if treeFile == "" {
			treeFile = "tree.nwk"
		}
	}
	if err := writeTree(treeFile, t); err != nil {
		return err
	}
	p.Add(project.Tree, treeFile)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func readNewick(r io.Reader, name string) (*tree.Tree, error) {
	if name != "" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	t, err := tree.Newick(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return t, nil
}

func readTimeTree(r io.Reader, name string) (*tree.Tree, error) {
	if name != "" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	tc, err := timetree.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	ls := tc.Names()
	if len(ls) == 0 {
		return nil, fmt.Errorf("while reading file %q: no trees in input", name)
	}
	t, err := tree.FromTimeTree(tc.Tree(ls[0]))
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return t, nil
}

func writeTree(name string, t *tree.Tree) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := t.Newick(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
