// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package align implements a command to align
// the sequences of a TreeWeaver project
// using MAFFT.
package align

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/logger"
	"github.com/js-arias/treeweaver/pipeline"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
)

var Command = &command.Command{
	Usage: `align [-f|--file <alignment-file>]
	[--threads <number>] [--keep] [--config <config-file>]
	<project-file>`,
	Short: "align the sequences of a project",
	Long: `
Command align reads the sequences of a TreeWeaver project, aligns them with
MAFFT, and stores the alignment in the project.

The argument of the command is the name of the project file.

By default the alignment is stored in the alignment file currently defined
for the project, or in the file 'alignment.fasta' if the project does not
have one. A different file name can be defined with the flag --file, or -f.
The format of the alignment file is detected from its extension.

As the alignment supersedes any previous analysis, the model and tree
datasets of the project, if any, will be removed.

The number of threads used by MAFFT can be set with the flag --threads; by
default all available processors are used. The flag --keep preserves the
working directory of the run for inspection. The flag --config sets the
configuration file; by default the file 'treeweaver.yaml' is used if it
exists. The command can be interrupted with Ctrl-C.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var alignFile string
var configFile string
var numThreads int
var keepFiles bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&alignFile, "file", "", "")
	c.Flags().StringVar(&alignFile, "f", "", "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().IntVar(&numThreads, "threads", 0, "")
	c.Flags().BoolVar(&keepFiles, "keep", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	cfg, err := pipeline.ReadConfig(configFile)
	if err != nil {
		return err
	}
	cfg.FromEnv()
	if numThreads > 0 {
		cfg.MAFFT.Threads = numThreads
	}
	if keepFiles {
		cfg.KeepWorkDir = true
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	s, err := p.Session(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Journal != "" {
		jr, err := pipeline.OpenJournal(cfg.Journal)
		if err != nil {
			return err
		}
		defer jr.Close()
		s.SetJournal(jr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Align(ctx); err != nil {
		return err
	}

	name := alignFile
	if name == "" {
		name = p.Path(project.Alignment)
	}
	if name == "" {
		name = "alignment.fasta"
	}
	if err := s.WriteAlignment(name, seqs.DetectFormat(name)); err != nil {
		return err
	}
	p.Add(project.Alignment, name)
	p.Add(project.Model, "")
	p.Add(project.Tree, "")
	if err := p.Write(); err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "alignment of %d sequences written to %q\n", s.Sequences().Len(), name)
	return nil
}
