// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package infer implements a command to infer
// the maximum likelihood tree of a TreeWeaver project
// using RAxML-NG.
package infer

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/logger"
	"github.com/js-arias/treeweaver/pipeline"
	"github.com/js-arias/treeweaver/project"
)

var Command = &command.Command{
	Usage: `infer [-f|--file <tree-file>]
	[--threads <number>] [--bootstrap <number>]
	[--keep] [--config <config-file>]
	<project-file>`,
	Short: "infer the maximum likelihood tree of a project",
	Long: `
Command infer builds a maximum likelihood tree for the alignment of a
TreeWeaver project with RAxML-NG, and stores the tree in the project. The
project must be aligned; if the project has a selected model the model
will be used, otherwise the default model of the configuration is used.

The argument of the command is the name of the project file.

By default the tree is stored in the tree file currently defined for the
project, or in the file 'tree.nwk' if the project does not have one. A
different file name can be defined with the flag --file, or -f.

With the flag --bootstrap, the given number of bootstrap replicates are
run, and the resulting support values are stored in the internal nodes of
the tree.

The number of threads used by RAxML-NG can be set with the flag --threads;
by default all available processors are used. The flag --keep preserves
the working directory of the run for inspection. The flag --config sets
the configuration file; by default the file 'treeweaver.yaml' is used if
it exists. The command can be interrupted with Ctrl-C.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFile string
var configFile string
var numThreads int
var bootstrap int
var keepFiles bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&treeFile, "f", "", "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().IntVar(&numThreads, "threads", 0, "")
	c.Flags().IntVar(&bootstrap, "bootstrap", 0, "")
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
		cfg.RAxML.Threads = numThreads
	}
	if bootstrap > 0 {
		cfg.Bootstrap = bootstrap
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

	if err := s.InferTree(ctx); err != nil {
		return err
	}

	name := treeFile
	if name == "" {
		name = p.Path(project.Tree)
	}
	if name == "" {
		name = "tree.nwk"
	}
	if err := writeTree(name, s); err != nil {
		return err
	}
	p.Add(project.Tree, name)
	if err := p.Write(); err != nil {
		return err
	}

	model, tool := s.Model()
	fmt.Fprintf(c.Stdout(), "tree under model %s [by %s] written to %q\n", model, tool, name)
	return nil
}

func writeTree(name string, s *pipeline.Session) (err error) {
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

	if err := s.Tree().Newick(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
