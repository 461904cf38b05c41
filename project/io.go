// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/js-arias/treeweaver/pipeline"
	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tree"
	"go.uber.org/zap"
)

// Sequences reads the sequence file
// as defined in a project.
func (p *Project) Sequences() (*seqs.Collection, error) {
	name := p.Path(Sequences)
	if name == "" {
		return nil, fmt.Errorf("sequences not defined in project %q", p.name)
	}
	return seqs.ReadFile(name)
}

// Alignment reads the alignment file
// as defined in a project.
func (p *Project) Alignment() (*seqs.Collection, error) {
	name := p.Path(Alignment)
	if name == "" {
		return nil, fmt.Errorf("alignment not defined in project %q", p.name)
	}

	c, err := seqs.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if !c.Aligned() {
		return nil, fmt.Errorf("on file %q: sequences are not aligned", name)
	}
	return c, nil
}

// Tree reads the tree file
// as defined in a project.
func (p *Project) Tree() (*tree.Tree, error) {
	name := p.Path(Tree)
	if name == "" {
		return nil, fmt.Errorf("tree not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tree.Newick(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return t, nil
}

// A ModelInfo is the content of a model dataset:
// the selected substitution model,
// the tool that selected it,
// and the selection date.
type ModelInfo struct {
	Model string
	Tool  string
	Date  time.Time
}

var modelHeader = []string{
	"model",
	"tool",
	"date",
}

// ReadModel reads a model file,
// a TSV file with the fields
// "model",
// "tool",
// and "date".
func ReadModel(name string) (ModelInfo, error) {
	f, err := os.Open(name)
	if err != nil {
		return ModelInfo{}, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return ModelInfo{}, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range modelHeader {
		if _, ok := fields[h]; !ok {
			return ModelInfo{}, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	row, err := tsv.Read()
	if errors.Is(err, io.EOF) {
		return ModelInfo{}, fmt.Errorf("on file %q: no model defined", name)
	}
	if err != nil {
		return ModelInfo{}, fmt.Errorf("on file %q: %v", name, err)
	}

	m := ModelInfo{
		Model: row[fields["model"]],
		Tool:  row[fields["tool"]],
	}
	if m.Model == "" {
		return ModelInfo{}, fmt.Errorf("on file %q: empty model", name)
	}
	if d, err := time.Parse(time.RFC3339, row[fields["date"]]); err == nil {
		m.Date = d
	}
	return m, nil
}

// WriteModel writes a model file.
func WriteModel(name string, m ModelInfo) (err error) {
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

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# treeweaver substitution model\n")
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(modelHeader); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", name, err)
	}
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	row := []string{
		m.Model,
		m.Tool,
		date.Format(time.RFC3339),
	}
	if err := tsv.Write(row); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	return nil
}

// Model reads the model file
// as defined in a project.
func (p *Project) Model() (ModelInfo, error) {
	name := p.Path(Model)
	if name == "" {
		return ModelInfo{}, fmt.Errorf("model not defined in project %q", p.name)
	}
	return ReadModel(name)
}

// Stage returns the analysis stage of the project,
// derived from the datasets it defines.
func (p *Project) Stage() pipeline.Stage {
	st := pipeline.Raw
	if p.Path(Alignment) == "" {
		return st
	}
	st = pipeline.Aligned
	if p.Path(Model) == "" {
		return st
	}
	st = pipeline.ModelSelected
	if p.Path(Tree) == "" {
		return st
	}
	return pipeline.TreeBuilt
}

// Session builds an analysis session
// from the datasets of the project,
// loading the data of every valid stage.
func (p *Project) Session(cfg pipeline.Config, log *zap.Logger) (*pipeline.Session, error) {
	s := pipeline.NewSession(cfg, log)

	st := p.Stage()
	if st == pipeline.Raw {
		c, err := p.Sequences()
		if err != nil {
			return nil, err
		}
		s.SetSequences(c)
		return s, nil
	}

	c, err := p.Alignment()
	if err != nil {
		return nil, err
	}
	if err := s.SetAlignment(c); err != nil {
		return nil, err
	}
	if st < pipeline.ModelSelected {
		return s, nil
	}

	m, err := p.Model()
	if err != nil {
		return nil, err
	}
	s.SetModel(m.Model, m.Tool)
	if st < pipeline.TreeBuilt {
		return s, nil
	}

	t, err := p.Tree()
	if err != nil {
		return nil, err
	}
	if err := s.SetTree(t); err != nil {
		return nil, err
	}
	return s, nil
}
