// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree is a metapackage for commands
// that dealt with phylogenetic trees.
package tree

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/add"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/collapse"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/export"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/infer"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/prune"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/reroot"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/stat"
	"github.com/js-arias/treeweaver/cmd/treeweaver/tree/terms"
)

var Command = &command.Command{
	Usage: "tree <command> [<argument>...]",
	Short: "commands for phylogenetic trees",
}

func init() {
	Command.Add(add.Command)
	Command.Add(collapse.Command)
	Command.Add(export.Command)
	Command.Add(infer.Command)
	Command.Add(prune.Command)
	Command.Add(reroot.Command)
	Command.Add(stat.Command)
	Command.Add(terms.Command)
}
