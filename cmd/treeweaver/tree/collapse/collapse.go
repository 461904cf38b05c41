// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package collapse implements a command to view
// the tree of a TreeWeaver project
// with a collapsed clade.
package collapse

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/tree"
)

var Command = &command.Command{
	Usage: "collapse <project-file> <terminal>...",
	Short: "view the tree of a project with a collapsed clade",
	Long: `
Command collapse reads the tree of a TreeWeaver project, collapses the
most recent common ancestor of the given terminals, and prints the tree as
an indented outline in the standard output, with the collapsed clade
reduced to a single line. The collapse is a view operation: the clade
stays in the tree, and the tree file is not modified.

The first argument of the command is the name of the project file. The
rest of the arguments are the names of the terminals that define the
clade; with a single terminal its parent node is collapsed.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and terminals")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	t, err := p.Tree()
	if err != nil {
		return err
	}

	id, err := t.MRCA(args[1:]...)
	if err != nil {
		return err
	}
	if t.IsTerm(id) {
		id = t.Parent(id)
	}
	if err := t.Collapse(id); err != nil {
		return err
	}

	printNode(c.Stdout(), t, t.Root(), "")
	return nil
}

func printNode(w io.Writer, t *tree.Tree, id int, prefix string) {
	if t.IsTerm(id) {
		fmt.Fprintf(w, "%s%s:%g\n", prefix, t.Label(id), t.Length(id))
		return
	}
	if t.Collapsed(id) {
		terms := cladeTerms(t, id)
		first := ""
		if len(terms) > 0 {
			first = terms[0] + ", "
		}
		fmt.Fprintf(w, "%s[%s%d terminals]:%g\n", prefix, first, len(terms), t.Length(id))
		return
	}

	label := "node"
	if sup, ok := t.Support(id); ok {
		label = fmt.Sprintf("node %g", sup)
	}
	fmt.Fprintf(w, "%s%s:%g\n", prefix, label, t.Length(id))
	for _, cid := range t.Children(id) {
		printNode(w, t, cid, prefix+"  ")
	}
}

// cladeTerms returns the terminals inside a clade.
func cladeTerms(t *tree.Tree, id int) []string {
	if t.IsTerm(id) {
		return []string{t.Label(id)}
	}
	var terms []string
	for _, cid := range t.Children(id) {
		terms = append(terms, cladeTerms(t, cid)...)
	}
	return terms
}
