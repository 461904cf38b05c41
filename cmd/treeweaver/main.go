// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// TreeWeaver is a tool to build and refine phylogenetic trees
// from molecular sequences.
package main

import (
	"github.com/joho/godotenv"
	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/cmd/treeweaver/align"
	"github.com/js-arias/treeweaver/cmd/treeweaver/info"
	"github.com/js-arias/treeweaver/cmd/treeweaver/model"
	"github.com/js-arias/treeweaver/cmd/treeweaver/run"
	"github.com/js-arias/treeweaver/cmd/treeweaver/runs"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree"
)

var app = &command.Command{
	Usage: "treeweaver <command> [<argument>...]",
	Short: "a tool to build and refine phylogenetic trees",
}

func init() {
	app.Add(align.Command)
	app.Add(info.Command)
	app.Add(model.Command)
	app.Add(run.Command)
	app.Add(runs.Command)
	app.Add(seq.Command)
	app.Add(tree.Command)
}

func main() {
	// environment variables from a .env file,
	// if the file does not exist
	// the current environment is used as is.
	godotenv.Load()

	app.Main()
}
