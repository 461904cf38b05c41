// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements a command to run
// the full analysis pipeline of a TreeWeaver project.
package run

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
	Usage: `run [--through <stage>] [--tool <tool>]
	[--keep] [--config <config-file>]
	<project-file>`,
	Short: "run the analysis pipeline of a project",
	Long: `
Command run executes the analysis pipeline of a TreeWeaver project,
starting at the current stage of the project: the sequences are aligned
with MAFFT, a substitution model is selected, and a maximum likelihood tree
is inferred with RAxML-NG. The resulting datasets are stored in the
project.

The argument of the command is the name of the project file.

By default the pipeline runs up to the tree inference. An earlier stop can
be indicated with the flag --through; valid stages are "aligned", "model",
and "tree". Stages already completed by the project are not repeated.

By default the model is selected with the ModelFinder procedure of
IQ-TREE. A different selection tool can be indicated with the flag --tool;
valid tools are "iqtree" and "modeltest-ng".

The flag --keep preserves the working directories of the runs for
inspection. The flag --config sets the configuration file; by default the
file 'treeweaver.yaml' is used if it exists. The command can be interrupted
with Ctrl-C; datasets of the stages finished before the interruption are
kept in the project.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var throughFlag string
var toolName string
var configFile string
var keepFiles bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&throughFlag, "through", "tree", "")
	c.Flags().StringVar(&toolName, "tool", pipeline.IQTree, "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().BoolVar(&keepFiles, "keep", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	through, err := pipeline.ParseStage(throughFlag)
	if err != nil {
		return c.UsageError(err.Error())
	}

	cfg, err := pipeline.ReadConfig(configFile)
	if err != nil {
		return err
	}
	cfg.FromEnv()
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

	rErr := s.Run(ctx, through, toolName)

	// store every finished stage,
	// even on a partial run
	if err := store(p, s); err != nil {
		return err
	}
	if rErr != nil {
		return rErr
	}

	fmt.Fprintf(c.Stdout(), "project %q at stage %s\n", args[0], s.Stage())
	return nil
}

// store saves the datasets of every stage
// reached by the session
// and updates the project file.
func store(p *project.Project, s *pipeline.Session) error {
	if s.Stage() >= pipeline.Aligned {
		name := p.Path(project.Alignment)
		if name == "" {
			name = "alignment.fasta"
		}
		if err := s.WriteAlignment(name, seqs.DetectFormat(name)); err != nil {
			return err
		}
		p.Add(project.Alignment, name)
	}
	if s.Stage() >= pipeline.ModelSelected {
		name := p.Path(project.Model)
		if name == "" {
			name = "model.tab"
		}
		model, tool := s.Model()
		if err := project.WriteModel(name, project.ModelInfo{Model: model, Tool: tool}); err != nil {
			return err
		}
		p.Add(project.Model, name)
	}
	if s.Stage() >= pipeline.TreeBuilt {
		name := p.Path(project.Tree)
		if name == "" {
			name = "tree.nwk"
		}
		if err := writeTree(name, s); err != nil {
			return err
		}
		p.Add(project.Tree, name)
	}
	return p.Write()
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
