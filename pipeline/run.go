// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import "context"

// Run drives the pipeline
// up to the requested stage,
// running the stages that are not yet valid
// one after the other:
// each stage consumes the output of the previous one,
// so stages are never run in parallel.
// Stages that are already valid are reused.
//
// The model selection uses the indicated tool,
// or IQ-TREE if the tool is empty.
//
// On a stage failure the run stops
// and the session stays at its last valid stage.
func (s *Session) Run(ctx context.Context, through Stage, modelTool string) error {
	if modelTool == "" {
		modelTool = IQTree
	}

	for {
		s.mu.Lock()
		st := s.stage
		s.mu.Unlock()
		if st >= through {
			return nil
		}

		var err error
		switch st {
		case Raw:
			err = s.Align(ctx)
		case Aligned:
			err = s.SelectModel(ctx, modelTool)
		case ModelSelected:
			err = s.InferTree(ctx)
		}
		if err != nil {
			return err
		}
	}
}
