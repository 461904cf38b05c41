// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add sequences
// to a TreeWeaver project.
package add

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
)

var Command = &command.Command{
	Usage: `add [-f|--file <seq-file>]
	<project-file> [<input-file>...]`,
	Short: "add sequences to a TreeWeaver project",
	Long: `
Command add reads molecular sequences from one or more sequence files, and
add the sequences to a TreeWeaver project. The sequence identifiers must be
unique.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

One or more sequence files can be given as arguments. If no file is given
the sequences will be read from the standard input in FASTA format. The
format of an input file is detected from its extension; see 'treeweaver
help seq-files' for the supported formats.

By default the sequences will be stored in the sequence file currently
defined for the project. If the project does not have a sequence file, a
new one will be created with the name 'sequences.fasta'. A different file
name can be defined using the flag --file, or -f. If this flag is used, and
there is a sequence file already defined, then a new file with that name
will be created, and used as the sequence file for the project (previously
defined sequences will be kept).

As any edit of the sequences supersedes the previous analysis, the
alignment, model, and tree datasets of the project, if any, will be
removed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var seqFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&seqFile, "file", "", "")
	c.Flags().StringVar(&seqFile, "f", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	sc := seqs.New()
	if sf := p.Path(project.Sequences); sf != "" {
		sc, err = seqs.ReadFile(sf)
		if err != nil {
			return fmt.Errorf("on project %q: %v", pFile, err)
		}
	}

	args = args[1:]
	if len(args) == 0 {
		nc, err := seqs.ReadFasta(c.Stdin())
		if err != nil {
			return fmt.Errorf("while reading stdin: %v", err)
		}
		if err := addSeqs(sc, nc, "stdin"); err != nil {
			return err
		}
	}
	for _, a := range args {
		nc, err := seqs.ReadFile(a)
		if err != nil {
			return err
		}
		if err := addSeqs(sc, nc, a); err != nil {
			return err
		}
	}

	if seqFile == "" {
		seqFile = p.Path(project.Sequences)
		if seqFile == "" {
			seqFile = "sequences.fasta"
		}
	}
	if err := sc.WriteFile(seqFile, seqs.DetectFormat(seqFile)); err != nil {
		return err
	}
	p.Add(project.Sequences, seqFile)
	p.Add(project.Alignment, "")
	p.Add(project.Model, "")
	p.Add(project.Tree, "")
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func addSeqs(sc, nc *seqs.Collection, from string) error {
	for _, id := range nc.IDs() {
		rec, _ := nc.Record(id)
		if err := sc.Add(rec); err != nil {
			return fmt.Errorf("when adding sequences from %q: %v", from, err)
		}
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable ot open project %q: %v", name, err)
	}
	return p, nil
}
