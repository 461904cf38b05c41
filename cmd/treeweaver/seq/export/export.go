// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package export implements a command to export
// the sequences of a TreeWeaver project.
package export

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
)

var Command = &command.Command{
	Usage: `export [--aligned] [--format <format>]
	-o|--output <out-file> <project-file>`,
	Short: "export the sequences of a project",
	Long: `
Command export reads the sequences of a TreeWeaver project and writes them
to a file in a given format.

The argument of the command is the name of the project file.

The flag --output, or -o, is required and sets the output file. By default
the output format is detected from the extension of the output file; an
explicit format can be set with the flag --format. Valid formats are
"fasta", "fastq", "phylip", and "nexus".

By default the raw sequences are exported. If the flag --aligned is set,
the alignment of the project is exported instead.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var format string
var aligned bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&format, "format", "", "")
	c.Flags().BoolVar(&aligned, "aligned", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if output == "" {
		return c.UsageError("expecting output file, flag --output")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var sc *seqs.Collection
	if aligned {
		sc, err = p.Alignment()
	} else {
		sc, err = p.Sequences()
	}
	if err != nil {
		return err
	}

	f := seqs.DetectFormat(output)
	if format != "" {
		f, err = seqs.ParseFormat(format)
		if err != nil {
			return c.UsageError(err.Error())
		}
	}
	return sc.WriteFile(output, f)
}
