// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package export implements a command to export
// the tree of a TreeWeaver project.
package export

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/tree"
)

var Command = &command.Command{
	Usage: "export [-o|--output <out-file>] <project-file>",
	Short: "export the tree of a project",
	Long: `
Command export reads the tree of a TreeWeaver project and writes it in
newick format.

The argument of the command is the name of the project file.

By default the tree is printed in the standard output. The flag --output,
or -o, sets an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	t, err := p.Tree()
	if err != nil {
		return err
	}

	if output == "" {
		return t.Newick(c.Stdout())
	}
	return writeTree(output, t)
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
