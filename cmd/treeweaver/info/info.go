// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package info implements a command to print
// the datasets and analysis stage
// of a TreeWeaver project.
package info

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
)

var Command = &command.Command{
	Usage: "info <project-file>",
	Short: "print the datasets and stage of a project",
	Long: `
Command info reads a TreeWeaver project and prints its datasets, the number
of sequences, and the analysis stage, in the standard output.

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

	fmt.Fprintf(c.Stdout(), "project: %s\n", p.Name())
	fmt.Fprintf(c.Stdout(), "stage: %s\n", p.Stage())
	for _, s := range p.Sets() {
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", s, p.Path(s))
	}

	if p.Path(project.Sequences) != "" {
		sc, err := p.Sequences()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Stdout(), "sequences: %d [%s]\n", sc.Len(), sc.Alphabet())
	}
	if p.Path(project.Model) != "" {
		m, err := p.Model()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Stdout(), "model: %s [by %s]\n", m.Model, m.Tool)
	}
	if p.Path(project.Tree) != "" {
		t, err := p.Tree()
		if err != nil {
			return err
		}
		st := t.Stats()
		fmt.Fprintf(c.Stdout(), "tree: %d terminals, %d nodes\n", st.Terms, st.Nodes)
	}
	return nil
}
