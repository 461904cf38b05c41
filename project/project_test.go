// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/treeweaver/pipeline"
	"github.com/js-arias/treeweaver/project"
	"github.com/js-arias/treeweaver/tree"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Sequences, "sequences.fasta"},
		{project.Alignment, "alignment.fasta"},
		{project.Model, "model.tab"},
		{project.Tree, "tree.nwk"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := filepath.Join(t.TempDir(), "project.tab")
	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}

func TestProjectUnknownDataset(t *testing.T) {
	name := filepath.Join(t.TempDir(), "project.tab")
	data := "dataset\tpath\nranges\tranges.tab\n"
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write project file: %v", err)
	}

	if _, err := project.Read(name); err == nil {
		t.Errorf("expecting error on an unknown dataset keyword")
	}
}

func TestProjectStage(t *testing.T) {
	p := project.New()
	if st := p.Stage(); st != pipeline.Raw {
		t.Errorf("empty project: got stage %s, want %s", st, pipeline.Raw)
	}

	p.Add(project.Sequences, "sequences.fasta")
	if st := p.Stage(); st != pipeline.Raw {
		t.Errorf("sequences only: got stage %s, want %s", st, pipeline.Raw)
	}

	p.Add(project.Alignment, "alignment.fasta")
	if st := p.Stage(); st != pipeline.Aligned {
		t.Errorf("with alignment: got stage %s, want %s", st, pipeline.Aligned)
	}

	p.Add(project.Model, "model.tab")
	if st := p.Stage(); st != pipeline.ModelSelected {
		t.Errorf("with model: got stage %s, want %s", st, pipeline.ModelSelected)
	}

	p.Add(project.Tree, "tree.nwk")
	if st := p.Stage(); st != pipeline.TreeBuilt {
		t.Errorf("with tree: got stage %s, want %s", st, pipeline.TreeBuilt)
	}

	// dropping the model drops the tree stage
	p.Add(project.Model, "")
	if st := p.Stage(); st != pipeline.Aligned {
		t.Errorf("without model: got stage %s, want %s", st, pipeline.Aligned)
	}
}

func TestTreeMalformed(t *testing.T) {
	dir := t.TempDir()
	tf := filepath.Join(dir, "tree.nwk")
	if err := os.WriteFile(tf, []byte("(A:1,(B:2,C:3\n"), 0o644); err != nil {
		t.Fatalf("unable to write tree file: %v", err)
	}

	p := project.New()
	p.Add(project.Tree, tf)
	if _, err := p.Tree(); !errors.Is(err, tree.ErrMalformedNewick) {
		t.Errorf("tree: got error %v, want %v", err, tree.ErrMalformedNewick)
	}
}

func TestSessionModelTool(t *testing.T) {
	dir := t.TempDir()

	af := filepath.Join(dir, "alignment.fasta")
	data := ">taxon_A\nACGTTCGA\n>taxon_B\nACGTACGA\n"
	if err := os.WriteFile(af, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write alignment file: %v", err)
	}
	mf := filepath.Join(dir, "model.tab")
	if err := project.WriteModel(mf, project.ModelInfo{Model: "HKY+G4", Tool: "iqtree"}); err != nil {
		t.Fatalf("unable to write model file: %v", err)
	}

	p := project.New()
	p.Add(project.Alignment, af)
	p.Add(project.Model, mf)

	s, err := p.Session(pipeline.Default(), nil)
	if err != nil {
		t.Fatalf("unable to build session: %v", err)
	}
	if st := s.Stage(); st != pipeline.ModelSelected {
		t.Errorf("session: got stage %s, want %s", st, pipeline.ModelSelected)
	}
	m, tool := s.Model()
	if m != "HKY+G4" {
		t.Errorf("session: got model %q, want %q", m, "HKY+G4")
	}
	// the tool stored in the model file is kept
	if tool != "iqtree" {
		t.Errorf("session: got tool %q, want %q", tool, "iqtree")
	}
}

func TestModelFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "model.tab")

	want := project.ModelInfo{
		Model: "GTR+G4",
		Tool:  "iqtree",
	}
	if err := project.WriteModel(name, want); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	got, err := project.ReadModel(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	if got.Model != want.Model {
		t.Errorf("model: got %q, want %q", got.Model, want.Model)
	}
	if got.Tool != want.Tool {
		t.Errorf("tool: got %q, want %q", got.Tool, want.Tool)
	}
	if got.Date.IsZero() {
		t.Errorf("date: got a zero date")
	}
}
