// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tools"
	"go.uber.org/zap"
)

// Valid model selection tools.
const (
	// IQ-TREE with ModelFinder.
	IQTree = "iqtree"

	// ModelTest-NG.
	ModelTestNG = "modeltest-ng"
)

// SelectModel selects the best fit substitution model
// for the aligned sequences,
// using the indicated tool
// (IQTree or ModelTestNG),
// and advances the session to the ModelSelected stage.
// The best model is picked by BIC;
// for IQ-TREE,
// the AIC choice is used
// if the report has no BIC line.
//
// The session must be at the Aligned stage or beyond.
// On failure the session is unchanged.
// If the session is edited while the tool runs,
// the selection is discarded
// and the run fails with ErrStaleRun.
func (s *Session) SelectModel(ctx context.Context, tool string) error {
	if tool != IQTree && tool != ModelTestNG {
		return fmt.Errorf("pipeline: unknown model selection tool %q", tool)
	}

	if err := s.start(ModelSelected); err != nil {
		return err
	}
	defer s.finish(ModelSelected)

	s.mu.Lock()
	if s.stage < Aligned {
		s.mu.Unlock()
		return &StageError{Stage: ModelSelected, Tool: tool, Err: ErrStageInvalid}
	}
	coll := s.coll.Clone()
	gen := s.gen
	s.mu.Unlock()

	m, err := seqs.NewMapping(coll, s.cfg.NameLen)
	if err != nil {
		return &StageError{Stage: ModelSelected, Tool: tool, Err: err}
	}

	dir, runID, err := s.runDir("model")
	if err != nil {
		return &StageError{Stage: ModelSelected, Tool: tool, Err: err}
	}
	if err := writePhylip(filepath.Join(dir, "msa.phy"), coll, m); err != nil {
		return &StageError{Stage: ModelSelected, Tool: tool, Err: err}
	}

	var job tools.Job
	var report string
	switch tool {
	case IQTree:
		job = tools.Job{
			Path: s.cfg.IQTree.Path,
			Args: []string{
				"-s", "msa.phy",
				"--prefix", "mf",
				"-T", strconv.Itoa(threads(s.cfg.IQTree)),
				"-m", "MFP",
				"-redo",
			},
			Dir:     dir,
			Timeout: time.Duration(s.cfg.Timeout),
		}
		if coll.Alphabet() == seqs.Protein {
			job.Args = append(job.Args, "-st", "AA")
		}
		report = filepath.Join(dir, "mf.iqtree")
	case ModelTestNG:
		d := "nt"
		if coll.Alphabet() == seqs.Protein {
			d = "aa"
		}
		job = tools.Job{
			Path: s.cfg.ModelTest.Path,
			Args: []string{
				"-i", "msa.phy",
				"-d", d,
				"-p", strconv.Itoa(threads(s.cfg.ModelTest)),
				"-o", "mt",
			},
			Dir:     dir,
			Timeout: time.Duration(s.cfg.Timeout),
		}
		report = filepath.Join(dir, "mt.out")
	}

	if _, err := s.runTool(ctx, ModelSelected, tool, runID, job); err != nil {
		return err
	}

	data, err := os.ReadFile(report)
	if err != nil {
		return &StageError{
			Stage: ModelSelected,
			Tool:  tool,
			Err:   fmt.Errorf("report %q: %v: %w", filepath.Base(report), err, ErrReportParse),
		}
	}

	var model string
	switch tool {
	case IQTree:
		model = parseIQTreeReport(data)
	case ModelTestNG:
		model = parseModelTestReport(data)
	}
	if model == "" {
		return &StageError{
			Stage:  ModelSelected,
			Tool:   tool,
			Detail: fmt.Sprintf("no best fit model in report %q", filepath.Base(report)),
			Err:    ErrReportParse,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return &StageError{Stage: ModelSelected, Tool: tool, Err: ErrStaleRun}
	}
	s.model = model
	s.mTool = tool
	s.tr = nil
	s.gen++
	s.stage = ModelSelected
	s.log.Info("model selected",
		zap.String("model", model),
		zap.String("tool", tool))
	s.cleanup(dir)
	return nil
}

var (
	// Best fit model lines of an IQ-TREE report.
	iqTreeBIC = regexp.MustCompile(`Best-fit model according to BIC:\s*([A-Za-z0-9+/*{}\-.@]+)`)
	iqTreeAIC = regexp.MustCompile(`Best-fit model according to AIC:\s*([A-Za-z0-9+/*{}\-.@]+)`)

	// Best fit model line of a ModelTest-NG report.
	modelTestBIC = regexp.MustCompile(`(?:Best model by BIC selection criterion|BIC\s*:)\s*([A-Za-z0-9+/*{}\-.@]+)`)
)

// ParseIQTreeReport extracts the best fit model
// from an IQ-TREE ".iqtree" report,
// preferring the BIC choice.
func parseIQTreeReport(data []byte) string {
	if m := iqTreeBIC.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	if m := iqTreeAIC.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}

// ParseModelTestReport extracts the best fit model
// by BIC from a ModelTest-NG ".out" report.
func parseModelTestReport(data []byte) string {
	if m := modelTestBIC.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}

// WritePhylip writes an alignment
// in relaxed PHYLIP format
// with sanitized sequence names.
func writePhylip(name string, c *seqs.Collection, m *seqs.Mapping) (err error) {
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
	return c.WritePhylip(f, m)
}
