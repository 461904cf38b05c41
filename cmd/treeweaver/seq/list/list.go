// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the list of sequences in a TreeWeaver project.
package list

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
)

var Command = &command.Command{
	Usage: "list [--len] <project-file>",
	Short: "print a list of the sequences in a project",
	Long: `
Command list reads the sequences of a TreeWeaver project and prints the
sequence identifiers in the standard output.

The argument of the command is the name of the project file.

If the flag --len is set, the length, the alphabet, and the description of
each sequence are printed after the identifier, separated by tabs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var withLen bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&withLen, "len", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	sc, err := p.Sequences()
	if err != nil {
		return err
	}

	for _, id := range sc.IDs() {
		if !withLen {
			fmt.Fprintf(c.Stdout(), "%s\n", id)
			continue
		}
		rec, _ := sc.Record(id)
		fmt.Fprintf(c.Stdout(), "%s\t%d\t%s\t%s\n", id, len(rec.Seq), rec.Alphabet, rec.Description)
	}
	return nil
}
