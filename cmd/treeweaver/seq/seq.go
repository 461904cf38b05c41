// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package seq is a metapackage for commands
// that dealt with molecular sequences.
package seq

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq/add"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq/export"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq/list"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq/remove"
	"github.com/js-arias/treeweaver/cmd/treeweaver/seq/rename"
)

var Command = &command.Command{
	Usage: "seq <command> [<argument>...]",
	Short: "commands for molecular sequences",
}

func init() {
	Command.Add(add.Command)
	Command.Add(export.Command)
	Command.Add(list.Command)
	Command.Add(remove.Command)
	Command.Add(rename.Command)
}
