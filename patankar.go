// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package patankar implements one-dimensional mass transfer of a migrant
// through a stack of contiguous solid/semi-solid layers in contact with a
// finite, well-mixed food simulant. It composes the mesh builder, operator
// assembler, stiff ODE driver, and result container into a single entry
// point (Run); the post-processor is reached through Interfaces, and the
// chain package builds sequential contacts on top of RunFromState.
package patankar

import (
	"math"

	"github.com/cpmech/gosl/utl"

	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
	"github.com/ovitrac/patankar/post"
	"github.com/ovitrac/patankar/result"
	"github.com/ovitrac/patankar/solve"
)

// FarBoundary re-exports operator.FarBoundary so callers need not import
// the operator package directly for the common case.
type FarBoundary = operator.FarBoundary

const (
	Impermeable = operator.Impermeable
	Symmetric   = operator.Symmetric
	Periodic    = operator.Periodic
)

// RunOptions bundles the caller-facing integration knobs (time grid,
// tolerances, far-boundary policy) plus the mesh builder's n_min.
type RunOptions struct {
	Name        string
	Description string

	// NMin is the global minimum cells-per-layer.
	NMin int

	// TimeGrid is given in dimensional time [s]; it is rescaled internally
	// by tau = t / (L^2/D_ref) using the contact layer's diffusivity as
	// D_ref.
	TimeGrid []float64

	FarBoundary FarBoundary

	AbsTol   float64
	RelTol   float64
	MaxSteps int
	Deadline func() bool

	// PromoteMassBalanceViolation turns the end-of-run mass-balance check
	// from a warning into a fatal error.
	PromoteMassBalanceViolation bool
	MassBalanceTol              float64 // default 1e-3 relative
}

func (o RunOptions) withDefaults() RunOptions {
	if o.NMin < 1 {
		o.NMin = 1
	}
	if o.MassBalanceTol == 0 {
		o.MassBalanceTol = 1e-3
	}
	return o
}

// Run executes one simulation: builds the mesh and operator from ml and
// med, integrates to the requested time grid, and returns an immutable
// Result. This is the composition root assembling the mesh builder,
// operator assembler, ODE driver, and result container; it does not run
// the post-processor's flux-integration cross-check (post.CrossCheckCF).
func Run(ml *layer.Multilayer, med layer.Medium, opts RunOptions) (*result.Result, error) {
	opts = opts.withDefaults()
	msh, err := mesh.Build(ml, opts.NMin)
	if err != nil {
		return nil, err
	}
	return RunFromState(msh, med, msh.InitialState(), opts)
}

// RunFromState runs the operator/driver/result pipeline (C2-C5) against
// an already-built Mesh and an explicit initial per-cell state, bypassing
// Layer's single scalar C0. The chain package uses this directly so a
// chained stage's initial condition is the prior stage's exact per-cell
// profile rather than one re-averaged back onto each Layer.
func RunFromState(msh *mesh.Mesh, med layer.Medium, initialC []float64, opts RunOptions) (*result.Result, error) {
	opts = opts.withDefaults()
	if len(opts.TimeGrid) < 2 {
		return nil, merr.Invalid("patankar: time grid must have at least two points")
	}
	if len(initialC) != msh.N() {
		return nil, merr.Invalid("patankar: initial state has %d cells, mesh has %d", len(initialC), msh.N())
	}

	op, err := operator.Build(msh, med, opts.FarBoundary)
	if err != nil {
		return nil, err
	}

	L := msh.TotalLength()
	Dref := msh.Cells[0].D
	timebase := L * L / Dref

	tau := make([]float64, len(opts.TimeGrid))
	for i, t := range opts.TimeGrid {
		tau[i] = t / timebase
	}

	state0 := append(append([]float64{}, initialC...), med.CF0)

	driver := solve.NewDriver(op)
	snaps, err := driver.Run(state0, solve.Options{
		TimeGrid: tau,
		AbsTol:   opts.AbsTol,
		RelTol:   opts.RelTol,
		MaxSteps: opts.MaxSteps,
		Deadline: opts.Deadline,
	})
	if err != nil {
		return nil, err
	}

	scales := result.Scales{Length: L, Time: timebase, Concentration: referenceConcentration(initialC, med.CF0)}

	r, err := result.New(opts.Name, opts.Description, msh, med, scales, opts.FarBoundary, opts.AbsTol, opts.RelTol, snaps)
	if err != nil {
		return nil, err
	}

	if err := checkMassBalance(op, r, opts); err != nil {
		return nil, err
	}

	return r, nil
}

// UniformTimeGrid returns n equally spaced dimensional times spanning
// [t0, tEnd], a convenience for filling RunOptions.TimeGrid.
func UniformTimeGrid(t0, tEnd float64, n int) []float64 {
	return utl.LinSpace(t0, tEnd, n)
}

// Resume produces a fresh integration from a restart record for a new
// duration, using the record's own mesh, medium, far-boundary policy, and
// tolerances. opts supplies the new time grid (stage-local, typically
// starting at 0) and may rename the run; its boundary/tolerance fields are
// ignored in favor of the record's, so a resumed run really does continue
// with identical parameters.
func Resume(rst result.Restart, opts RunOptions) (*result.Result, error) {
	if rst.Mesh == nil {
		return nil, merr.Invalid("patankar: restart record has no mesh")
	}
	med := rst.Medium
	med.CF0 = rst.Snapshot.CF

	opts.FarBoundary = rst.Far
	opts.AbsTol = rst.AbsTol
	opts.RelTol = rst.RelTol

	initialC := make([]float64, len(rst.Snapshot.C))
	copy(initialC, rst.Snapshot.C)
	return RunFromState(rst.Mesh, med, initialC, opts)
}

// referenceConcentration picks the largest initial concentration across
// the wall and medium as the reporting scale C0eq (mirrors
// migration.py's C0eq reference-scaling factor).
func referenceConcentration(initialC []float64, CF0 float64) float64 {
	c := CF0
	for _, v := range initialC {
		if v > c {
			c = v
		}
	}
	if c == 0 {
		c = 1
	}
	return c
}

// checkMassBalance checks total-mass conservation (wall + medium) for the
// final snapshot against the first, surfacing a warning (default) or a
// fatal MassBalanceViolation error (opts.PromoteMassBalanceViolation).
func checkMassBalance(op *operator.Operator, r *result.Result, opts RunOptions) error {
	if op.Far == operator.Periodic {
		return nil // periodic wrap has no single external reservoir balance to check
	}
	first, last := r.Snaps[0], r.Final()

	total := func(C []float64, CF float64) float64 {
		var s float64
		for i, c := range C {
			s += op.Mesh.Cells[i].Width * c
		}
		return s + (r.Medium.Volume/r.Medium.Area)*CF
	}

	m0 := total(first.C, first.CF)
	m1 := total(last.C, last.CF)
	if m0 == 0 {
		return nil
	}
	rel := math.Abs(m1-m0) / math.Abs(m0)
	if rel > opts.MassBalanceTol {
		if opts.PromoteMassBalanceViolation {
			return merr.MassBalance("patankar: mass balance violated: relative drift %v exceeds tolerance %v", rel, opts.MassBalanceTol)
		}
		r.AddWarning(merr.MassBalance("patankar: mass balance drift %v exceeds tolerance %v", rel, opts.MassBalanceTol).Error())
	}
	return nil
}

// Interfaces exposes post.Interfaces for the final snapshot of r.
func Interfaces(r *result.Result, far FarBoundary) ([]post.InterfaceValue, error) {
	last := r.Final()
	return post.Interfaces(r.Mesh, last.C, far)
}
