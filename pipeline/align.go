// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tools"
)

// Align aligns the sequences of the session
// with MAFFT,
// replacing the collection with the aligned sequences
// and advancing the session to the Aligned stage.
//
// MAFFT reads a FASTA file
// written in a scoped run directory
// and writes the alignment to its standard output.
// Any gaps already present in the sequences
// are stripped before the alignment.
//
// On failure the session is unchanged.
// If the session is edited while MAFFT runs,
// the alignment is discarded
// and the run fails with ErrStaleRun.
func (s *Session) Align(ctx context.Context) error {
	if err := s.start(Aligned); err != nil {
		return err
	}
	defer s.finish(Aligned)

	s.mu.Lock()
	if s.coll.Len() < 2 {
		n := s.coll.Len()
		s.mu.Unlock()
		return &StageError{
			Stage:  Aligned,
			Tool:   "mafft",
			Detail: fmt.Sprintf("%d sequences, want at least 2", n),
			Err:    ErrStageInvalid,
		}
	}
	in := s.coll.Ungapped()
	gen := s.gen
	s.mu.Unlock()

	dir, runID, err := s.runDir("align")
	if err != nil {
		return &StageError{Stage: Aligned, Tool: "mafft", Err: err}
	}

	input := filepath.Join(dir, "input.fasta")
	if err := in.WriteFile(input, seqs.FASTA); err != nil {
		return &StageError{Stage: Aligned, Tool: "mafft", Err: err}
	}

	res, err := s.runTool(ctx, Aligned, "mafft", runID, tools.Job{
		Path:    s.cfg.MAFFT.Path,
		Args:    []string{"--thread", strconv.Itoa(threads(s.cfg.MAFFT)), "--auto", "input.fasta"},
		Dir:     dir,
		Timeout: time.Duration(s.cfg.Timeout),
	})
	if err != nil {
		return err
	}

	aligned, err := seqs.ReadFasta(bytes.NewReader(res.Stdout))
	if err != nil {
		return &StageError{
			Stage: Aligned,
			Tool:  "mafft",
			Err:   fmt.Errorf("reading alignment: %v", err),
		}
	}
	if !aligned.Aligned() {
		return &StageError{
			Stage:  Aligned,
			Tool:   "mafft",
			Detail: "output sequences with unequal lengths",
			Err:    ErrReportParse,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return &StageError{Stage: Aligned, Tool: "mafft", Err: ErrStaleRun}
	}
	if err := checkSameIDs(aligned, s.coll); err != nil {
		return &StageError{Stage: Aligned, Tool: "mafft", Err: err}
	}
	s.coll = aligned
	s.model = ""
	s.mTool = ""
	s.tr = nil
	s.gen++
	s.stage = Aligned
	s.cleanup(dir)
	return nil
}

// CheckSameIDs checks that an alignment
// contains exactly the sequences of a collection,
// in any order.
func checkSameIDs(aligned, orig *seqs.Collection) error {
	if aligned.Len() != orig.Len() {
		return fmt.Errorf("alignment with %d sequences, want %d", aligned.Len(), orig.Len())
	}
	for _, id := range orig.IDs() {
		if _, ok := aligned.Record(id); !ok {
			return fmt.Errorf("sequence %q lost in the alignment", id)
		}
	}
	return nil
}

// WriteAlignment writes the aligned sequences
// of the session to a file.
// The session must be at the Aligned stage
// or beyond.
func (s *Session) WriteAlignment(name string, format seqs.Format) error {
	s.mu.Lock()
	if s.stage < Aligned {
		s.mu.Unlock()
		return fmt.Errorf("pipeline: no alignment: %w", ErrStageInvalid)
	}
	c := s.coll.Clone()
	s.mu.Unlock()

	return c.WriteFile(name, format)
}
