// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/js-arias/treeweaver/pipeline"
	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tree"
)

// fakeTool writes an executable shell script
// that takes the place of an external program.
func fakeTool(t testing.TB, name, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a unix system")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("unable to write script: %v", err)
	}
	return path
}

func testConfig(t testing.TB) pipeline.Config {
	t.Helper()

	cfg := pipeline.Default()
	cfg.WorkDir = t.TempDir()
	cfg.MAFFT.Threads = 1
	cfg.IQTree.Threads = 1
	cfg.ModelTest.Threads = 1
	cfg.RAxML.Threads = 1
	return cfg
}

func rawSession(t testing.TB, cfg pipeline.Config) *pipeline.Session {
	t.Helper()

	s := pipeline.NewSession(cfg, nil)
	c := seqs.New()
	recs := []seqs.Record{
		{ID: "taxon_A", Seq: "ACGTTCGA"},
		{ID: "taxon_B", Seq: "ACGTACGA"},
		{ID: "taxon_C", Seq: "ACGGTCGA"},
	}
	for _, r := range recs {
		if err := c.Add(r); err != nil {
			t.Fatalf("unable to add sequence: %v", err)
		}
	}
	s.SetSequences(c)
	return s
}

func TestAlign(t *testing.T) {
	cfg := testConfig(t)
	// the fake aligner echoes its input,
	// which is already of equal lengths
	cfg.MAFFT.Path = fakeTool(t, "mafft", "cat input.fasta")

	s := rawSession(t, cfg)
	if err := s.Align(context.Background()); err != nil {
		t.Fatalf("align: unexpected error: %v", err)
	}
	if st := s.Stage(); st != pipeline.Aligned {
		t.Errorf("align: got stage %s, want %s", st, pipeline.Aligned)
	}
	if !s.Sequences().Aligned() {
		t.Errorf("align: collection is not aligned")
	}
}

func TestAlignToolFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.MAFFT.Path = fakeTool(t, "mafft", `echo "bad data" >&2; exit 2`)

	s := rawSession(t, cfg)
	err := s.Align(context.Background())
	if err == nil {
		t.Fatalf("align: expecting error")
	}

	var se *pipeline.StageError
	if !errors.As(err, &se) {
		t.Fatalf("align: got error %T (%v), want *StageError", err, err)
	}
	if se.Stage != pipeline.Aligned {
		t.Errorf("align: got failing stage %s, want %s", se.Stage, pipeline.Aligned)
	}
	if se.Tool != "mafft" {
		t.Errorf("align: got failing tool %q, want %q", se.Tool, "mafft")
	}
	if se.ExitCode != 2 {
		t.Errorf("align: got exit code %d, want 2", se.ExitCode)
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Errorf("align: got stage %s after a failure, want %s", st, pipeline.Raw)
	}
}

func TestAlignLostSequence(t *testing.T) {
	cfg := testConfig(t)
	cfg.MAFFT.Path = fakeTool(t, "mafft", `printf '>taxon_A\nACGT\n>taxon_B\nACGT\n'`)

	s := rawSession(t, cfg)
	if err := s.Align(context.Background()); err == nil {
		t.Fatalf("align: expecting error on a lost sequence")
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Errorf("align: got stage %s after a failure, want %s", st, pipeline.Raw)
	}
}

func TestSelectModelIQTree(t *testing.T) {
	cfg := testConfig(t)
	cfg.IQTree.Path = fakeTool(t, "iqtree",
		`printf 'Best-fit model according to BIC: TIM2+G4\n' > mf.iqtree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	if err := s.SelectModel(context.Background(), pipeline.IQTree); err != nil {
		t.Fatalf("model: unexpected error: %v", err)
	}
	m, tool := s.Model()
	if m != "TIM2+G4" {
		t.Errorf("model: got %q, want %q", m, "TIM2+G4")
	}
	if tool != pipeline.IQTree {
		t.Errorf("model: got tool %q, want %q", tool, pipeline.IQTree)
	}
	if st := s.Stage(); st != pipeline.ModelSelected {
		t.Errorf("model: got stage %s, want %s", st, pipeline.ModelSelected)
	}
}

func TestSelectModelModelTest(t *testing.T) {
	cfg := testConfig(t)
	cfg.ModelTest.Path = fakeTool(t, "modeltest-ng",
		`printf '      BIC:              HKY+G4\n' > mt.out`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	if err := s.SelectModel(context.Background(), pipeline.ModelTestNG); err != nil {
		t.Fatalf("model: unexpected error: %v", err)
	}
	if m, _ := s.Model(); m != "HKY+G4" {
		t.Errorf("model: got %q, want %q", m, "HKY+G4")
	}
}

func TestSelectModelBadReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.IQTree.Path = fakeTool(t, "iqtree",
		`printf 'nothing useful here\n' > mf.iqtree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	err := s.SelectModel(context.Background(), pipeline.IQTree)
	if !errors.Is(err, pipeline.ErrReportParse) {
		t.Errorf("model: got error %v, want %v", err, pipeline.ErrReportParse)
	}
	if st := s.Stage(); st != pipeline.Aligned {
		t.Errorf("model: got stage %s after a failure, want %s", st, pipeline.Aligned)
	}
	if m, _ := s.Model(); m != "" {
		t.Errorf("model: got %q after a failure, want none", m)
	}
}

func TestSelectModelRequiresAlignment(t *testing.T) {
	s := rawSession(t, testConfig(t))
	err := s.SelectModel(context.Background(), pipeline.IQTree)
	if !errors.Is(err, pipeline.ErrStageInvalid) {
		t.Errorf("model: got error %v, want %v", err, pipeline.ErrStageInvalid)
	}
}

func TestInferTree(t *testing.T) {
	cfg := testConfig(t)
	cfg.RAxML.Path = fakeTool(t, "raxml-ng",
		`printf '(taxon_A:0.1,(taxon_B:0.2,taxon_C:0.3)0.9:0.05);\n' > tw.raxml.bestTree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	if err := s.InferTree(context.Background()); err != nil {
		t.Fatalf("infer: unexpected error: %v", err)
	}
	if st := s.Stage(); st != pipeline.TreeBuilt {
		t.Errorf("infer: got stage %s, want %s", st, pipeline.TreeBuilt)
	}

	nt := s.Tree()
	if nt == nil {
		t.Fatalf("infer: no tree in session")
	}
	want := []string{"taxon_A", "taxon_B", "taxon_C"}
	got := nt.Terms()
	if len(got) != len(want) {
		t.Fatalf("infer: got terminals %v, want %v", got, want)
	}
	for i, term := range want {
		if got[i] != term {
			t.Errorf("infer: got terminal %q, want %q", got[i], term)
		}
	}

	// the default model is recorded
	if m, _ := s.Model(); m != cfg.Model {
		t.Errorf("infer: got model %q, want %q", m, cfg.Model)
	}
}

func TestInferTreeUnknownTerminal(t *testing.T) {
	cfg := testConfig(t)
	cfg.RAxML.Path = fakeTool(t, "raxml-ng",
		`printf '(taxon_A:0.1,(taxon_B:0.2,rogue:0.3):0.05);\n' > tw.raxml.bestTree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	if err := s.InferTree(context.Background()); err == nil {
		t.Fatalf("infer: expecting error on an unknown terminal")
	}
	if st := s.Stage(); st != pipeline.Aligned {
		t.Errorf("infer: got stage %s after a failure, want %s", st, pipeline.Aligned)
	}
}

func TestInferTreeMalformedNewick(t *testing.T) {
	cfg := testConfig(t)
	cfg.RAxML.Path = fakeTool(t, "raxml-ng",
		`printf '(taxon_A:0.1,(taxon_B:0.2,taxon_C:0.3\n' > tw.raxml.bestTree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	err := s.InferTree(context.Background())
	if !errors.Is(err, tree.ErrMalformedNewick) {
		t.Errorf("infer: got error %v, want %v", err, tree.ErrMalformedNewick)
	}
	if st := s.Stage(); st != pipeline.Aligned {
		t.Errorf("infer: got stage %s after a failure, want %s", st, pipeline.Aligned)
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.MAFFT.Path = fakeTool(t, "mafft", "cat input.fasta")
	cfg.IQTree.Path = fakeTool(t, "iqtree",
		`printf 'Best-fit model according to BIC: TIM2+G4\n' > mf.iqtree`)
	cfg.RAxML.Path = fakeTool(t, "raxml-ng",
		`printf '(taxon_A:0.1,(taxon_B:0.2,taxon_C:0.3)0.9:0.05);\n' > tw.raxml.bestTree`)

	s := rawSession(t, cfg)
	if err := s.Run(context.Background(), pipeline.TreeBuilt, ""); err != nil {
		t.Fatalf("run: unexpected error: %v", err)
	}
	if st := s.Stage(); st != pipeline.TreeBuilt {
		t.Errorf("run: got stage %s, want %s", st, pipeline.TreeBuilt)
	}
	if m, _ := s.Model(); m != "TIM2+G4" {
		t.Errorf("run: got model %q, want %q", m, "TIM2+G4")
	}
	if s.Tree() == nil {
		t.Errorf("run: no tree in session")
	}
}

func TestSelectModelStaleEdit(t *testing.T) {
	cfg := testConfig(t)
	cfg.IQTree.Path = fakeTool(t, "iqtree",
		`sleep 1; printf 'Best-fit model according to BIC: TIM2+G4\n' > mf.iqtree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	done := s.Go(func() error { return s.SelectModel(context.Background(), pipeline.IQTree) })

	// edit the sequences while the tool runs
	time.Sleep(200 * time.Millisecond)
	if !s.RemoveSequence("taxon_C") {
		t.Fatalf("sequence not removed")
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Fatalf("after remove: got stage %s, want %s", st, pipeline.Raw)
	}

	if err := <-done; !errors.Is(err, pipeline.ErrStaleRun) {
		t.Errorf("model: got error %v, want %v", err, pipeline.ErrStaleRun)
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Errorf("model: stale run resurrected stage %s, want %s", st, pipeline.Raw)
	}
	if m, _ := s.Model(); m != "" {
		t.Errorf("model: stale model %q kept after an invalidating edit", m)
	}
}

func TestAlignStaleEdit(t *testing.T) {
	cfg := testConfig(t)
	cfg.MAFFT.Path = fakeTool(t, "mafft", "sleep 1; cat input.fasta")

	s := rawSession(t, cfg)
	done := s.Go(func() error { return s.Align(context.Background()) })

	// a content edit keeps the identifier set unchanged
	time.Sleep(200 * time.Millisecond)
	if err := s.SetSequence("taxon_A", "ACGTTCGT"); err != nil {
		t.Fatalf("unable to edit sequence: %v", err)
	}

	if err := <-done; !errors.Is(err, pipeline.ErrStaleRun) {
		t.Errorf("align: got error %v, want %v", err, pipeline.ErrStaleRun)
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Errorf("align: stale run advanced stage to %s, want %s", st, pipeline.Raw)
	}
	rec, ok := s.Sequences().Record("taxon_A")
	if !ok {
		t.Fatalf("sequence lost from the collection")
	}
	if rec.Seq != "ACGTTCGT" {
		t.Errorf("align: got sequence %q, edit clobbered by a stale run", rec.Seq)
	}
}

func TestInferTreeStaleEdit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RAxML.Path = fakeTool(t, "raxml-ng",
		`sleep 1; printf '(taxon_A:0.1,(taxon_B:0.2,taxon_C:0.3)0.9:0.05);\n' > tw.raxml.bestTree`)

	s := rawSession(t, cfg)
	if err := s.SetAlignment(s.Sequences()); err != nil {
		t.Fatalf("unable to set alignment: %v", err)
	}

	done := s.Go(func() error { return s.InferTree(context.Background()) })

	// a content edit keeps the terminal set unchanged
	time.Sleep(200 * time.Millisecond)
	if err := s.SetSequence("taxon_B", "ACGTACGT"); err != nil {
		t.Fatalf("unable to edit sequence: %v", err)
	}

	if err := <-done; !errors.Is(err, pipeline.ErrStaleRun) {
		t.Errorf("infer: got error %v, want %v", err, pipeline.ErrStaleRun)
	}
	if st := s.Stage(); st != pipeline.Raw {
		t.Errorf("infer: stale run resurrected stage %s, want %s", st, pipeline.Raw)
	}
	if s.Tree() != nil {
		t.Errorf("infer: stale tree kept after an invalidating edit")
	}
}

func TestStageBusy(t *testing.T) {
	cfg := testConfig(t)
	cfg.MAFFT.Path = fakeTool(t, "mafft", "sleep 2; cat input.fasta")

	s := rawSession(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := s.Go(func() error { return s.Align(ctx) })

	// let the first run take the stage
	time.Sleep(200 * time.Millisecond)
	if err := s.Align(ctx); !errors.Is(err, pipeline.ErrStageBusy) {
		t.Errorf("align: got error %v, want %v", err, pipeline.ErrStageBusy)
	}

	cancel()
	<-first

	// with the first run finished,
	// the stage is free again
	if err := s.Align(ctx); errors.Is(err, pipeline.ErrStageBusy) {
		t.Errorf("align: stage still busy after the run finished")
	}
}
