// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package chain composes sequential contact scenarios: the end-state of
// run m becomes the initial state of run m+1, with a fresh medium and
// possibly re-oriented contact face, mirroring gofem's inp.Stage /
// Domain.SetStage multi-stage construction-sequence loop.
package chain

import (
	"fmt"

	patankar "github.com/ovitrac/patankar"
	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
	"github.com/ovitrac/patankar/result"
)

// Contact describes one stage of a chained run: the medium it sees, the
// dimensional time grid for the stage, and whether the contact face
// should be re-oriented before this stage runs.
type Contact struct {
	Medium      layer.Medium
	TimeGrid    []float64 // dimensional times for this stage, relative to its own start
	Reorient    bool      // reverse layer order (contact-on-other-side) before this stage
	FarBoundary operator.FarBoundary
	AbsTol      float64
	RelTol      float64

	Name        string
	Description string
}

// Chainer runs an ordered sequence of Contacts against one Multilayer,
// feeding each run's final per-cell wall profile into the next stage's
// mesh without re-deriving it from a single per-layer C0.
type Chainer struct {
	Multilayer *layer.Multilayer
	NMin       int
}

// NewChainer builds a Chainer. Run 1 starts from ml's natural initial
// state.
func NewChainer(ml *layer.Multilayer, nMin int) (*Chainer, error) {
	if ml == nil || len(ml.Layers) == 0 {
		return nil, merr.Invalid("chain: multilayer must be non-empty")
	}
	if nMin < 1 {
		nMin = 1
	}
	return &Chainer{Multilayer: ml, NMin: nMin}, nil
}

// Run executes the contacts in order, returning one Result per stage and
// the concatenated Result covering the whole sequence. Any IntegrationFailure
// aborts the chain; the returned error names the failing step index.
func (c *Chainer) Run(contacts []Contact) (stages []*result.Result, merged *result.Result, err error) {
	if len(contacts) == 0 {
		return nil, nil, merr.Invalid("chain: at least one contact stage is required")
	}

	current := c.Multilayer
	var carriedProfile []float64 // nil for stage 0: use the multilayer's own C0s

	stages = make([]*result.Result, 0, len(contacts))

	for m, stg := range contacts {
		if len(stg.TimeGrid) < 2 {
			return stages, nil, merr.Invalid("chain: step %d: time grid must have at least two points", m)
		}

		if stg.Reorient {
			current = current.Reversed()
			if carriedProfile != nil {
				carriedProfile = reverseProfile(carriedProfile)
			}
		}

		msh, buildErr := mesh.Build(current, c.NMin)
		if buildErr != nil {
			return stages, nil, fmt.Errorf("chain: step %d: %w", m, buildErr)
		}

		initialC := msh.InitialState()
		if carriedProfile != nil {
			if len(carriedProfile) != len(initialC) {
				return stages, nil, merr.Incompatible("chain: step %d: carried profile has %d cells, new mesh has %d", m, len(carriedProfile), len(initialC))
			}
			initialC = carriedProfile
		}

		name := stg.Name
		if name == "" {
			name = fmt.Sprintf("stage-%d", m+1)
		}

		res, runErr := patankar.RunFromState(msh, stg.Medium, initialC, patankar.RunOptions{
			Name:        name,
			Description: stg.Description,
			NMin:        c.NMin,
			TimeGrid:    stg.TimeGrid,
			FarBoundary: stg.FarBoundary,
			AbsTol:      stg.AbsTol,
			RelTol:      stg.RelTol,
		})
		if runErr != nil {
			return stages, nil, fmt.Errorf("chain: step %d failed: %w", m, runErr)
		}
		stages = append(stages, res)
		carriedProfile = res.Final().C
	}

	merged = stages[0]
	for i := 1; i < len(stages); i++ {
		merged, err = merged.Concatenate(stages[i], true)
		if err != nil {
			return stages, nil, merr.New(merr.IncompatibleComposition, "chain: failed concatenating stage %d: %v", i, err)
		}
	}
	return stages, merged, nil
}

func reverseProfile(p []float64) []float64 {
	n := len(p)
	out := make([]float64, n)
	for i, v := range p {
		out[n-1-i] = v
	}
	return out
}
