// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package remove implements a command to remove sequences
// from a TreeWeaver project.
package remove

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
)

var Command = &command.Command{
	Usage: "remove <project-file> <identifier>...",
	Short: "remove sequences from a TreeWeaver project",
	Long: `
Command remove deletes one or more sequences from a TreeWeaver project.

The first argument of the command is the name of the project file. The
rest of the arguments are the identifiers of the sequences to be removed.
It is an error to remove a sequence that is not in the project.

As any edit of the sequences supersedes the previous analysis, the
alignment, model, and tree datasets of the project, if any, will be
removed.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and sequence identifiers")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	sc, err := p.Sequences()
	if err != nil {
		return err
	}

	for _, id := range args[1:] {
		if !sc.Remove(id) {
			return fmt.Errorf("sequence %q not in project %q", id, args[0])
		}
	}

	name := p.Path(project.Sequences)
	if err := sc.WriteFile(name, seqs.DetectFormat(name)); err != nil {
		return err
	}
	p.Add(project.Alignment, "")
	p.Add(project.Model, "")
	p.Add(project.Tree, "")
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}
