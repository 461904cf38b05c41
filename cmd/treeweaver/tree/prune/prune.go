// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prune implements a command to remove terminals
// from the tree of a TreeWeaver project.
package prune

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tree"
)

var Command = &command.Command{
	Usage: "prune <project-file> <terminal>...",
	Short: "remove terminals from the tree of a project",
	Long: `
Command prune removes one or more terminals, with their branches, from the
tree of a TreeWeaver project, and stores the modified tree. The branch
lengths of the surviving terminals are preserved: when a removal leaves an
internal node with a single child, the node is removed and its branch
length is added to the branch of the child.

The first argument of the command is the name of the project file. The
rest of the arguments are the names of the terminals to be removed.

The pruned terminals are also removed from the sequence and alignment
files of the project, so the sequences and the tree stay consistent.
Removing a row from an alignment keeps the alignment valid, so the
selected model and the rest of the tree are kept. If all terminals are
pruned, the tree dataset is removed from the project.
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

	for _, term := range args[1:] {
		id, ok := t.TermID(term)
		if !ok {
			return fmt.Errorf("terminal %q not in tree of project %q", term, args[0])
		}
		if err := t.Prune(id); err != nil {
			return err
		}
	}

	if err := removeSeqs(p, project.Sequences, args[1:]); err != nil {
		return err
	}
	if err := removeSeqs(p, project.Alignment, args[1:]); err != nil {
		return err
	}

	if t.IsEmpty() {
		p.Add(project.Tree, "")
		return p.Write()
	}
	if err := writeTree(p.Path(project.Tree), t); err != nil {
		return err
	}
	return p.Write()
}

// removeSeqs removes the pruned terminals
// from a sequence dataset of the project.
func removeSeqs(p *project.Project, set project.Dataset, terms []string) error {
	name := p.Path(set)
	if name == "" {
		return nil
	}
	sc, err := seqs.ReadFile(name)
	if err != nil {
		return err
	}
	for _, term := range terms {
		sc.Remove(term)
	}
	if sc.Len() == 0 {
		p.Add(set, "")
		return nil
	}
	return sc.WriteFile(name, seqs.DetectFormat(name))
}

func writeTree(name string, t *tree.Tree) (err error) {
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

	if err := t.Newick(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
