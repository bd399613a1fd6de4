// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package solve drives the semi-discrete system assembled by operator
// through dimensionless time using gosl's stiff Radau5 solver (an
// implicit Runge-Kutta method of fixed order 5 with variable step size;
// not a BDF or variable-order method), and emits snapshots on a
// caller-supplied time grid.
package solve

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/ode"

	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/operator"
)

// Snapshot is one (t, cell concentrations, medium concentration) tuple.
type Snapshot struct {
	T  float64   // dimensionless time (tau)
	C  []float64 // cell concentrations, length N
	CF float64   // medium concentration
}

// Options controls the integration.
type Options struct {
	// TimeGrid is the caller-supplied set of dimensionless times at which
	// a dense snapshot is required. Must be strictly increasing, first
	// entry >= 0.
	TimeGrid []float64

	AbsTol float64 // default 1e-8
	RelTol float64 // default 1e-6

	// MaxSteps bounds the total number of solver steps across the whole
	// grid; 0 means unbounded. Exceeding it yields Cancelled.
	MaxSteps int

	// Deadline, if non-nil, is polled between grid points; it returning
	// true yields Cancelled.
	Deadline func() bool
}

func (o Options) withDefaults() Options {
	if o.AbsTol == 0 {
		o.AbsTol = 1e-8
	}
	if o.RelTol == 0 {
		o.RelTol = 1e-6
	}
	return o
}

// Driver owns one gosl/ode.Solver instance bound to an Operator's
// right-hand side and analytic Jacobian.
type Driver struct {
	op     *operator.Operator
	sol    ode.Solver
	n      int
	nSteps int
}

// NewDriver builds a Driver for the given operator using gosl/ode's
// "Radau5" method, a stiff implicit Runge-Kutta integrator of fixed
// order 5 with variable step size.
func NewDriver(op *operator.Operator) *Driver {
	d := &Driver{op: op, n: op.N() + 1}

	fcn := func(f []float64, dtau, tau float64, y []float64, args ...interface{}) error {
		return op.Eval(y, f)
	}

	jac := func(dfdy *la.Triplet, dtau, tau float64, y []float64, args ...interface{}) error {
		op.Jacobian(dfdy)
		return nil
	}

	silent := true
	d.sol.Init("Radau5", d.n, fcn, jac, nil, nil, silent)
	d.sol.Distr = false
	return d
}

// Run integrates from TimeGrid[0] (typically 0) to TimeGrid's last entry,
// returning a dense snapshot at every grid point. state0 is the initial
// [C_0..C_{N-1}, C_F] vector and is consumed, not mutated in place beyond
// the returned copies.
func (d *Driver) Run(state0 []float64, opts Options) ([]Snapshot, error) {
	opts = opts.withDefaults()
	if len(opts.TimeGrid) < 2 {
		return nil, merr.Invalid("solve: time grid must have at least two points")
	}
	for i := 1; i < len(opts.TimeGrid); i++ {
		if opts.TimeGrid[i] <= opts.TimeGrid[i-1] {
			return nil, merr.Invalid("solve: time grid must be strictly increasing at index %d", i)
		}
	}
	if len(state0) != d.n {
		return nil, merr.Invalid("solve: initial state must have length %d, got %d", d.n, len(state0))
	}

	d.sol.Atol = opts.AbsTol
	d.sol.Rtol = opts.RelTol

	y := make([]float64, d.n)
	copy(y, state0)

	snaps := make([]Snapshot, 0, len(opts.TimeGrid))
	snaps = append(snaps, snapshotOf(opts.TimeGrid[0], y))

	for i := 1; i < len(opts.TimeGrid); i++ {
		if opts.Deadline != nil && opts.Deadline() {
			return nil, merr.CancelledErr("solve: deadline exceeded before reaching tau=%v", opts.TimeGrid[i])
		}

		t0, t1 := opts.TimeGrid[i-1], opts.TimeGrid[i]
		dtFirst := (t1 - t0) / 4
		err := d.sol.Solve(y, t0, t1, dtFirst, false)
		d.nSteps += d.sol.Nsteps

		if opts.MaxSteps > 0 && d.nSteps > opts.MaxSteps {
			return nil, merr.CancelledErr("solve: step budget %d exceeded at tau=%v", opts.MaxSteps, t1)
		}
		if err != nil {
			return nil, merr.IntegFailure(t0, residualNorm(y), "solve: integration failed advancing from tau=%v to tau=%v: %v", t0, t1, err)
		}
		if !allFinite(y) {
			return nil, merr.IntegFailure(t0, math.NaN(), "solve: non-finite state reached at tau=%v", t1)
		}

		snaps = append(snaps, snapshotOf(t1, y))
	}

	return snaps, nil
}

func snapshotOf(t float64, y []float64) Snapshot {
	n := len(y) - 1
	c := make([]float64, n)
	copy(c, y[:n])
	return Snapshot{T: t, C: c, CF: y[n]}
}

func allFinite(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func residualNorm(y []float64) float64 {
	var s float64
	for _, v := range y {
		s += v * v
	}
	return math.Sqrt(s)
}
