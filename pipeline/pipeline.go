// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package pipeline implements the orchestration
// of a phylogenetic analysis:
// sequence alignment,
// substitution model selection,
// and tree inference,
// each delegated to an external program.
//
// The state of an open analysis is a Session,
// an explicit object holding the sequences,
// the selected model,
// the tree,
// and the pipeline stage they are valid for.
// Edits to the sequences invalidate
// every stage computed from them;
// a failed stage run leaves the session
// at its last valid stage.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/js-arias/treeweaver/seqs"
	"github.com/js-arias/treeweaver/tools"
	"github.com/js-arias/treeweaver/tree"
	"go.uber.org/zap"
)

// A Session is the state of an open analysis:
// the sequence collection,
// the artifacts computed from it,
// and the stage they are valid for.
//
// A session is created for an open project
// and destroyed with it;
// there is no shared global state,
// so independent sessions can coexist.
//
// All sequence edits must be made
// through the session,
// so dependent stages are invalidated.
type Session struct {
	cfg Config
	log *zap.Logger
	jr  *Journal

	mu    sync.Mutex
	coll  *seqs.Collection
	tr    *tree.Tree
	model string
	mTool string
	stage Stage

	// gen counts the edits of the session state.
	// A stage run captures the generation
	// with its inputs,
	// and discards its result
	// if the generation moved while the tool ran.
	gen uint64

	running map[Stage]bool
}

// NewSession creates a session
// for a sequence collection.
// A nil logger silences the progress log.
func NewSession(cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		cfg:     cfg,
		log:     log,
		coll:    seqs.New(),
		running: make(map[Stage]bool),
	}
}

// SetJournal sets the run journal of the session.
// A nil journal is valid
// and records nothing.
func (s *Session) SetJournal(jr *Journal) {
	s.jr = jr
}

// Config returns the configuration of the session.
func (s *Session) Config() Config {
	return s.cfg
}

// Stage returns the last valid stage of the session.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Sequences returns a copy of the sequence collection.
// Edits on the copy do not affect the session;
// use the session edit operations instead.
func (s *Session) Sequences() *seqs.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.Clone()
}

// Model returns the selected substitution model
// and the tool that selected it.
// The model is empty before a selection.
func (s *Session) Model() (model, tool string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model, s.mTool
}

// Tree returns the inferred tree,
// or nil before an inference.
// The tree is owned by the caller context:
// mutations on it are synchronous
// and must not be interleaved
// with other readers.
func (s *Session) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr
}

// SetSequences replaces the whole sequence collection,
// dropping every computed artifact.
func (s *Session) SetSequences(c *seqs.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll = c.Clone()
	s.gen++
	s.invalidate(Raw)
}

// AddSequence adds a sequence record to the collection,
// dropping every computed artifact.
func (s *Session) AddSequence(rec seqs.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.coll.Add(rec); err != nil {
		return err
	}
	s.gen++
	s.invalidate(Raw)
	return nil
}

// RemoveSequence removes a sequence from the collection.
// It returns true if the sequence was removed,
// and then every computed artifact is dropped.
func (s *Session) RemoveSequence(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.coll.Remove(id) {
		return false
	}
	s.gen++
	s.invalidate(Raw)
	return true
}

// RenameSequence changes the identifier of a sequence,
// dropping every computed artifact.
func (s *Session) RenameSequence(oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.coll.Rename(oldID, newID); err != nil {
		return err
	}
	if oldID == newID {
		return nil
	}
	s.gen++
	s.invalidate(Raw)
	return nil
}

// SetSequence replaces the residues of a sequence.
// If the sequence changed,
// every computed artifact is dropped.
func (s *Session) SetSequence(id, seq string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.coll.SetSequence(id, seq)
	if err != nil {
		return err
	}
	if changed {
		s.gen++
		s.invalidate(Raw)
	}
	return nil
}

// SetModel sets the substitution model
// without running a selection tool,
// recording the tool that chose it;
// an empty tool name records a model set by hand.
// An inferred tree is dropped,
// but the alignment is kept:
// a model can be changed without realigning.
func (s *Session) SetModel(model, tool string) {
	if tool == "" {
		tool = "user"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.mTool = tool
	s.tr = nil
	s.gen++
	if s.stage >= Aligned {
		s.stage = ModelSelected
	}
	s.log.Info("model set",
		zap.String("model", model),
		zap.String("tool", tool))
}

// SetAlignment replaces the sequence collection
// with an externally produced alignment
// of the same sequence identifiers,
// making the session valid at the Aligned stage.
func (s *Session) SetAlignment(c *seqs.Collection) error {
	if !c.Aligned() {
		return fmt.Errorf("pipeline: collection is not aligned")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll = c.Clone()
	s.gen++
	s.invalidate(Raw)
	s.stage = Aligned
	return nil
}

// SetTree sets an externally produced tree,
// making the session valid at the TreeBuilt stage.
// The terminals of the tree must be exactly
// the identifiers of the sequence collection.
func (s *Session) SetTree(t *tree.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.coll.IDs()
	if err := sameTerms(t, ids); err != nil {
		return err
	}
	s.tr = t
	s.gen++
	s.stage = TreeBuilt
	return nil
}

// Invalidate drops the artifacts
// that are no longer valid
// when the given stage is the last valid one.
// The caller must hold the session lock.
func (s *Session) invalidate(to Stage) {
	if s.stage <= to {
		return
	}
	s.log.Info("invalidating stages",
		zap.Stringer("from", s.stage),
		zap.Stringer("to", to))
	if to < TreeBuilt {
		s.tr = nil
	}
	if to < ModelSelected {
		s.model = ""
		s.mTool = ""
	}
	s.stage = to
}

// Go runs an operation on its own goroutine
// and reports its result on the returned channel,
// so a caller can launch a pipeline stage
// without blocking an interactive context.
// The single-flight guarantee of the stages holds:
// launching a stage that is already running
// reports ErrStageBusy on the channel.
func (s *Session) Go(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- fn()
	}()
	return ch
}

// Start marks a stage as running.
// At most one run per stage can be in flight.
func (s *Session) start(st Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[st] {
		return fmt.Errorf("pipeline: stage %s: %w", st, ErrStageBusy)
	}
	s.running[st] = true
	return nil
}

func (s *Session) finish(st Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, st)
}

// RunDir creates a scoped directory
// for a single tool run,
// so concurrent or repeated runs
// never collide on their files.
func (s *Session) runDir(stage string) (dir, runID string, err error) {
	runID = uuid.NewString()
	base := s.cfg.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	dir = filepath.Join(base, "treeweaver-"+stage+"-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("pipeline: run directory: %v", err)
	}
	return dir, runID, nil
}

// Cleanup removes the run directory of a successful run.
// Directories of failed runs are kept for diagnosis.
func (s *Session) cleanup(dir string) {
	if s.cfg.KeepWorkDir {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.log.Warn("unable to remove run directory",
			zap.String("dir", dir), zap.Error(err))
	}
}

// RunTool invokes an external tool,
// recording the run in the journal
// and turning tool failures into stage errors.
func (s *Session) runTool(ctx context.Context, st Stage, tool, runID string, job tools.Job) (*tools.Result, error) {
	args := strings.Join(job.Args, " ")
	s.log.Info("running tool",
		zap.Stringer("stage", st),
		zap.String("tool", tool),
		zap.String("args", args),
		zap.String("run", runID))
	s.jr.Begin(runID, st, tool, args)

	res, err := tools.Run(ctx, job)
	if err != nil {
		s.jr.End(runID, StatusFailed, -1, 0, err.Error())
		s.log.Warn("tool failed",
			zap.String("tool", tool), zap.Error(err))
		return nil, &StageError{Stage: st, Tool: tool, Err: err}
	}
	if res.ExitCode != 0 {
		detail := errExtract(res.Stderr)
		s.jr.End(runID, StatusFailed, res.ExitCode, res.Duration, detail)
		s.log.Warn("tool failed",
			zap.String("tool", tool),
			zap.Int("exit", res.ExitCode))
		return nil, &StageError{Stage: st, Tool: tool, ExitCode: res.ExitCode, Detail: detail}
	}

	s.jr.End(runID, StatusDone, 0, res.Duration, "")
	s.log.Info("tool finished",
		zap.String("tool", tool),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// Threads returns the thread count for a tool,
// using the physical cores of the machine
// when the tool has no explicit configuration.
func threads(tc ToolConfig) int {
	if tc.Threads > 0 {
		return tc.Threads
	}
	return tools.Threads()
}

// ErrExtract returns the leading extract
// of the error output of a tool,
// for error messages and the journal.
func errExtract(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// SameTerms checks that the terminals of a tree
// are exactly the given identifiers.
func sameTerms(t *tree.Tree, ids []string) error {
	terms := t.Terms()
	if len(terms) != len(ids) {
		return fmt.Errorf("pipeline: tree with %d terminals, want %d", len(terms), len(ids))
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, term := range terms {
		if !set[term] {
			return fmt.Errorf("pipeline: tree terminal %q not in the sequence collection", term)
		}
	}
	return nil
}
