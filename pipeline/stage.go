// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is a step of the analysis pipeline.
// The stages are ordered:
// a stage is valid only if every previous stage is valid
// and no invalidating edit was made
// after the stage was completed.
type Stage int

// Stages of the analysis pipeline.
const (
	// Raw sequences,
	// without any analysis.
	Raw Stage = iota

	// Aligned sequences.
	Aligned

	// A substitution model was selected.
	ModelSelected

	// A phylogenetic tree was inferred.
	TreeBuilt
)

// String returns the name of a stage.
func (st Stage) String() string {
	switch st {
	case Raw:
		return "raw"
	case Aligned:
		return "aligned"
	case ModelSelected:
		return "model"
	case TreeBuilt:
		return "tree"
	}
	return "unknown"
}

// ParseStage returns the stage named by a string.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw":
		return Raw, nil
	case "align", "aligned":
		return Aligned, nil
	case "model":
		return ModelSelected, nil
	case "tree":
		return TreeBuilt, nil
	}
	return Raw, fmt.Errorf("pipeline: unknown stage %q", s)
}

var (
	// ErrStageBusy is returned when starting a stage
	// that is already running.
	// A new run is never queued behind a running one.
	ErrStageBusy = errors.New("stage already running")

	// ErrStageInvalid is returned when running a stage
	// whose prerequisite stage is not valid.
	ErrStageInvalid = errors.New("stage prerequisite not satisfied")

	// ErrReportParse is returned when the report of a tool
	// does not contain the expected results.
	ErrReportParse = errors.New("cannot parse tool report")

	// ErrStaleRun is returned when the session was edited
	// while a stage was running,
	// so the result of the run was discarded
	// and the session kept its post-edit stage.
	ErrStaleRun = errors.New("session edited during the run")
)

// A StageError is the failure of a pipeline stage.
// It identifies the stage and the external tool,
// and carries the exit code
// and an extract of the error output of the tool,
// so the user can be told
// which program failed and why.
//
// After a StageError the session is unchanged,
// at its last valid stage.
type StageError struct {
	// Stage that failed.
	Stage Stage

	// Name of the external tool.
	Tool string

	// Exit code of the tool,
	// when the tool itself failed.
	ExitCode int

	// Detail of the failure,
	// usually an extract of the tool error output.
	Detail string

	// Underlying error,
	// if any.
	Err error
}

func (e *StageError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stage %s: tool %s", e.Stage, e.Tool)
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, ": exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Detail != "" {
		fmt.Fprintf(&sb, ": %s", e.Detail)
	}
	return sb.String()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
