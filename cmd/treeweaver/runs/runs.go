// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package runs implements a command to print
// the journal of external tool runs.
package runs

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/pipeline"
)

var Command = &command.Command{
	Usage: "runs [--db <journal-file>] [-n <number>] [--config <config-file>]",
	Short: "print the journal of external tool runs",
	Long: `
Command runs prints the journal of external tool runs in the standard
output, the most recent run first. For each run it prints the run
identifier, the stage, the tool, the status, the exit code, the start
time, and the duration.

The journal is an SQLite database, recorded when a journal file is defined
in the configuration. By default the journal defined in the configuration
is used; a different file can be indicated with the flag --db.

By default all runs are printed. The flag -n limits the output to the given
number of runs. The flag --config sets the configuration file; by default
the file 'treeweaver.yaml' is used if it exists.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var dbFile string
var configFile string
var numRuns int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&dbFile, "db", "", "")
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().IntVar(&numRuns, "n", 0, "")
}

func run(c *command.Command, args []string) error {
	name := dbFile
	if name == "" {
		cfg, err := pipeline.ReadConfig(configFile)
		if err != nil {
			return err
		}
		cfg.FromEnv()
		name = cfg.Journal
	}
	if name == "" {
		return fmt.Errorf("no journal defined")
	}

	jr, err := pipeline.OpenJournal(name)
	if err != nil {
		return err
	}
	defer jr.Close()

	ls, err := jr.List(numRuns)
	if err != nil {
		return err
	}
	for _, r := range ls {
		fmt.Fprintf(c.Stdout(), "%s\t%s\t%s\t%s\t%d\t%s\t%v\n",
			r.ID, r.Stage, r.Tool, r.Status, r.ExitCode,
			r.Start.Format("2006-01-02 15:04:05"), r.Duration)
		if r.Error != "" {
			fmt.Fprintf(c.Stdout(), "\t%s\n", r.Error)
		}
	}
	return nil
}
