// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rename implements a command to rename a sequence
// of a TreeWeaver project.
package rename

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
)

var Command = &command.Command{
	Usage: "rename <project-file> <identifier> <new-identifier>",
	Short: "rename a sequence of a TreeWeaver project",
	Long: `
Command rename changes the identifier of a sequence of a TreeWeaver
project. The new identifier must not be in use by another sequence.

The first argument of the command is the name of the project file. The
second argument is the current identifier of the sequence, and the third
argument is the new identifier.

As any edit of the sequences supersedes the previous analysis, the
alignment, model, and tree datasets of the project, if any, will be
removed.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 3 {
		return c.UsageError("expecting project file, identifier, and new identifier")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	sc, err := p.Sequences()
	if err != nil {
		return err
	}

	if err := sc.Rename(args[1], args[2]); err != nil {
		return err
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
