// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stat implements a command to print
// a summary of the tree of a TreeWeaver project.
package stat

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
)

var Command = &command.Command{
	Usage: "stat <project-file>",
	Short: "print a summary of the tree of a project",
	Long: `
Command stat reads the tree of a TreeWeaver project and prints a summary
of the tree in the standard output: the number of terminals and nodes, the
branch length distribution, the support value distribution, and the
maximum depth of the tree.

The argument of the command is the name of the project file.
	`,
	Run: run,
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

	s := t.Stats()
	fmt.Fprintf(c.Stdout(), "terminals: %d\n", s.Terms)
	fmt.Fprintf(c.Stdout(), "nodes: %d\n", s.Nodes)
	fmt.Fprintf(c.Stdout(), "total branch length: %.6g\n", s.TotalLen)
	fmt.Fprintf(c.Stdout(), "branch length: mean %.6g, median %.6g\n", s.MeanLen, s.MedianLen)
	if s.Supported > 0 {
		fmt.Fprintf(c.Stdout(), "supported nodes: %d\n", s.Supported)
		fmt.Fprintf(c.Stdout(), "support: mean %.6g, median %.6g\n", s.MeanSup, s.MedianSup)
	}
	fmt.Fprintf(c.Stdout(), "depth: %.6g\n", s.Depth)
	return nil
}
