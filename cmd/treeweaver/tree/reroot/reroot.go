// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package reroot implements a command to change
// the root of the tree of a TreeWeaver project.
package reroot

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/tree"
)

var Command = &command.Command{
	Usage: "reroot [--at <length>] [--midpoint] <project-file> <terminal>",
	Short: "change the root of the tree of a project",
	Long: `
Command reroot places a new root on the branch of the given terminal of
the tree of a TreeWeaver project, and stores the modified tree. The
length of the branch is preserved, divided between the two branches that
result from the split.

The first argument of the command is the name of the project file. The
second argument is the name of the terminal.

By default the whole branch length is assigned to the terminal side of the
new root. With the flag --at, the given length is assigned to the other
side of the root instead. With the flag --midpoint, the branch is split in
two equal halves.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var atLength float64
var midpoint bool

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&atLength, "at", 0, "")
	c.Flags().BoolVar(&midpoint, "midpoint", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and terminal")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	t, err := p.Tree()
	if err != nil {
		return err
	}

	id, ok := t.TermID(args[1])
	if !ok {
		return fmt.Errorf("terminal %q not in tree of project %q", args[1], args[0])
	}
	at := atLength
	if midpoint {
		at = t.Length(id) / 2
	}
	if err := t.RerootSplit(id, at); err != nil {
		return err
	}

	if err := writeTree(p.Path(project.Tree), t); err != nil {
		return err
	}
	return nil
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
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
