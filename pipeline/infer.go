// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tools"
	"github.com/js-arias/treeweaver/tree"
	"go.uber.org/zap"
)

// InferTree infers a phylogenetic tree
// from the aligned sequences
// with RAxML-NG,
// and advances the session to the TreeBuilt stage.
//
// The inference uses the selected substitution model,
// or the configured default model
// if no selection was made.
// If the configuration asks for bootstrap replicates,
// a full analysis with branch supports is run
// and the support tree is read.
//
// The alignment is written with sanitized sequence names
// and the terminals of the resulting tree
// are translated back to the sequence identifiers,
// so a terminal unknown to the mapping
// is a detectable tool integration failure.
//
// The session must be at the Aligned stage or beyond.
// On failure the session is unchanged.
// If the session is edited while RAxML-NG runs,
// the tree is discarded
// and the run fails with ErrStaleRun.
func (s *Session) InferTree(ctx context.Context) error {
	if err := s.start(TreeBuilt); err != nil {
		return err
	}
	defer s.finish(TreeBuilt)

	s.mu.Lock()
	if s.stage < Aligned {
		s.mu.Unlock()
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: ErrStageInvalid}
	}
	coll := s.coll.Clone()
	model := s.model
	gen := s.gen
	s.mu.Unlock()

	if model == "" {
		model = s.cfg.Model
	}

	m, err := seqs.NewMapping(coll, s.cfg.NameLen)
	if err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}

	dir, runID, err := s.runDir("tree")
	if err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}
	if err := writePhylip(filepath.Join(dir, "msa.phy"), coll, m); err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}

	args := []string{
		"--msa", "msa.phy",
		"--model", model,
		"--prefix", "tw",
		"--seed", strconv.FormatInt(s.cfg.Seed, 10),
		"--threads", strconv.Itoa(threads(s.cfg.RAxML)),
		"--force", "perf_threads",
	}
	treeFile := filepath.Join(dir, "tw.raxml.bestTree")
	if s.cfg.Bootstrap > 0 {
		args = append(args, "--all", "--bs-trees", strconv.Itoa(s.cfg.Bootstrap))
		treeFile = filepath.Join(dir, "tw.raxml.support")
	}

	if _, err := s.runTool(ctx, TreeBuilt, "raxml-ng", runID, tools.Job{
		Path:    s.cfg.RAxML.Path,
		Args:    args,
		Dir:     dir,
		Timeout: time.Duration(s.cfg.Timeout),
	}); err != nil {
		return err
	}

	nt, err := readNewickFile(treeFile)
	if err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}

	// back to the user identifiers
	if err := nt.Relabel(m.Original); err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: ErrStaleRun}
	}
	if err := sameTerms(nt, s.coll.IDs()); err != nil {
		return &StageError{Stage: TreeBuilt, Tool: "raxml-ng", Err: err}
	}
	s.tr = nt
	s.model = model
	s.gen++
	s.stage = TreeBuilt
	s.log.Info("tree inferred",
		zap.String("model", model),
		zap.Int("terminals", len(nt.Terms())))
	s.cleanup(dir)
	return nil
}

// ReadNewickFile reads a newick tree from a file.
func readNewickFile(name string) (*tree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nt, err := tree.Newick(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return nt, nil
}
