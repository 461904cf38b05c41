// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements a command to select
// the substitution model of a TreeWeaver project.
package model

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
	Usage: `model [-f|--file <model-file>]
	[--tool <tool>] [--set <model>] [--config <config-file>]
	<project-file>`,
	Short: "select the substitution model of a project",
	Long: `
Command model selects the substitution model for the alignment of a
TreeWeaver project and stores it in the project. The project must be
aligned.

The argument of the command is the name of the project file.

By default the model is selected with the ModelFinder procedure of IQ-TREE.
A different selection tool can be indicated with the flag --tool; valid
tools are "iqtree" and "modeltest-ng". With the flag --set the given model
is stored directly, without running any tool, for example to reuse a model
selected in a previous study.

By default the model is stored in the model file currently defined for the
project, or in the file 'model.tab' if the project does not have one. A
different file name can be defined with the flag --file, or -f.

As the model supersedes any previous inference, the tree dataset of the
project, if any, will be removed. The alignment is kept.

The flag --config sets the configuration file; by default the file
'treeweaver.yaml' is used if it exists. The command can be interrupted with
Ctrl-C.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modelFile string
var configFile string
var toolName string
var setModel string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modelFile, "file", "", "")
	c.Flags().StringVar(&modelFile, "f", "", "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().StringVar(&toolName, "tool", pipeline.IQTree, "")
	c.Flags().StringVar(&setModel, "set", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	if p.Stage() < pipeline.Aligned {
		return fmt.Errorf("project %q is not aligned", args[0])
	}

	m := project.ModelInfo{
		Model: setModel,
		Tool:  "user",
	}
	if setModel == "" {
		m, err = selectModel(p)
		if err != nil {
			return err
		}
	}

	name := modelFile
	if name == "" {
		name = p.Path(project.Model)
	}
	if name == "" {
		name = "model.tab"
	}
	if err := project.WriteModel(name, m); err != nil {
		return err
	}
	p.Add(project.Model, name)
	p.Add(project.Tree, "")
	if err := p.Write(); err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "model %s [by %s] written to %q\n", m.Model, m.Tool, name)
	return nil
}

func selectModel(p *project.Project) (project.ModelInfo, error) {
	cfg, err := pipeline.ReadConfig(configFile)
	if err != nil {
		return project.ModelInfo{}, err
	}
	cfg.FromEnv()

	log, err := logger.New(cfg.Log)
	if err != nil {
		return project.ModelInfo{}, err
	}
	defer log.Sync()

	s, err := p.Session(cfg, log)
	if err != nil {
		return project.ModelInfo{}, err
	}
	if cfg.Journal != "" {
		jr, err := pipeline.OpenJournal(cfg.Journal)
		if err != nil {
			return project.ModelInfo{}, err
		}
		defer jr.Close()
		s.SetJournal(jr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.SelectModel(ctx, toolName); err != nil {
		return project.ModelInfo{}, err
	}
	model, tool := s.Model()
	return project.ModelInfo{Model: model, Tool: tool}, nil
}
