// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/js-arias/treeweaver/pipeline"
)

func TestJournal(t *testing.T) {
	name := filepath.Join(t.TempDir(), "runs.db")
	j, err := pipeline.OpenJournal(name)
	if err != nil {
		t.Fatalf("unable to open journal: %v", err)
	}
	defer j.Close()

	j.Begin("run-1", pipeline.Aligned, "mafft", "--thread 2 --auto input.fasta")
	j.End("run-1", pipeline.StatusDone, 0, 1500*time.Millisecond, "")
	j.Begin("run-2", pipeline.TreeBuilt, "raxml-ng", "--msa msa.phy")
	j.End("run-2", pipeline.StatusFailed, 1, 200*time.Millisecond, "bad alignment")

	runs, err := j.List(0)
	if err != nil {
		t.Fatalf("unable to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	byID := make(map[string]pipeline.Run, len(runs))
	for _, r := range runs {
		byID[r.ID] = r
	}

	r := byID["run-1"]
	if r.Tool != "mafft" || r.Stage != "aligned" || r.Status != pipeline.StatusDone {
		t.Errorf("run-1: got %+v", r)
	}
	if r.Duration != 1500*time.Millisecond {
		t.Errorf("run-1: got duration %v, want 1.5s", r.Duration)
	}

	r = byID["run-2"]
	if r.Status != pipeline.StatusFailed || r.ExitCode != 1 {
		t.Errorf("run-2: got %+v", r)
	}
	if r.Error != "bad alignment" {
		t.Errorf("run-2: got error %q, want %q", r.Error, "bad alignment")
	}

	// limited listing
	runs, err = j.List(1)
	if err != nil {
		t.Fatalf("unable to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestJournalNil(t *testing.T) {
	var j *pipeline.Journal

	// a nil journal records nothing and never fails
	j.Begin("run-1", pipeline.Raw, "mafft", "")
	j.End("run-1", pipeline.StatusDone, 0, 0, "")
	if err := j.Close(); err != nil {
		t.Errorf("close: unexpected error: %v", err)
	}
	runs, err := j.List(10)
	if err != nil {
		t.Errorf("list: unexpected error: %v", err)
	}
	if runs != nil {
		t.Errorf("list: got %v, want nil", runs)
	}
}
