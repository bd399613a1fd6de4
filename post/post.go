// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package post reconstructs interface concentrations, computes the
// cumulative desorbed mass CF(t), and interpolates profiles/CF on demand:
// piecewise-cubic in t (via gonum's interp package) and piecewise-linear
// in x (by cell).
package post

import (
	"gonum.org/v1/gonum/interp"

	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
)

// InterfaceValue is the pair of concentrations on either side of an
// internal interface, recovered from the continuous potential phi.
type InterfaceValue struct {
	X      float64 // interface coordinate
	CLeft  float64 // C^- , left-side concentration
	CRight float64 // C^+, right-side concentration
}

// Interfaces reconstructs C^- and C^+ at every internal interface of msh
// from one snapshot's cell values, by harmonically blending the
// continuous potential phi = C/k. far selects whether the stack's own
// far boundary wraps (periodic reconstruction).
func Interfaces(msh *mesh.Mesh, C []float64, far operator.FarBoundary) ([]InterfaceValue, error) {
	n := msh.N()
	if len(C) != n {
		return nil, merr.Invalid("post: C must have length %d, got %d", n, len(C))
	}
	cells := msh.Cells

	blend := func(left, right mesh.Cell, cl, cr float64) InterfaceValue {
		phiL, phiR := cl/left.K, cr/right.K
		wL := (left.Width / 2) / (left.D * left.K)
		wR := (right.Width / 2) / (right.D * right.K)
		phi := (wL*phiR + wR*phiL) / (wL + wR)
		x := left.Center + left.Width/2
		return InterfaceValue{X: x, CLeft: left.K * phi, CRight: right.K * phi}
	}

	out := make([]InterfaceValue, 0, n-1)
	for i := 0; i < n-1; i++ {
		out = append(out, blend(cells[i], cells[i+1], C[i], C[i+1]))
	}

	if far == operator.Periodic {
		out = append(out, blend(cells[n-1], cells[0], C[n-1], C[0]))
	}
	return out, nil
}

// CrossCheckCF integrates the contact-face flux over time (trapezoidal
// rule on the provided dense grid) as an independent estimate of the
// cumulative medium concentration, supplementing the direct medium-ODE
// state as a cross-check against drift or a mis-assembled operator.
func CrossCheckCF(op *operator.Operator, times []float64, CWall [][]float64, CF []float64) ([]float64, error) {
	n := len(times)
	if len(CWall) != n || len(CF) != n {
		return nil, merr.Invalid("post: times, CWall, and CF must have matching lengths")
	}
	flux := make([]float64, n)
	cells := op.Mesh.Cells
	for i := 0; i < n; i++ {
		phiF := CF[i] / op.Medium.KF
		phi0 := CWall[i][0] / cells[0].K
		flux[i] = op.AF() * (phiF - phi0)
	}

	estimate := make([]float64, n)
	estimate[0] = CF[0]
	for i := 1; i < n; i++ {
		dt := times[i] - times[i-1]
		avg := 0.5 * (flux[i] + flux[i-1])
		estimate[i] = estimate[i-1] - (op.Medium.Area/op.Medium.Volume)*avg*dt
	}
	return estimate, nil
}

// TimeInterpolator provides piecewise-cubic interpolation in t for CF(t)
// or a single cell's C_i(t), built on gonum's interp.FritschButland
// (shape-preserving, so interpolating a monotone CF series never
// introduces spurious oscillation between snapshots).
type TimeInterpolator struct {
	fb interp.FritschButland
}

// NewTimeInterpolator fits a piecewise-cubic interpolant to (t, y), t
// strictly increasing.
func NewTimeInterpolator(t, y []float64) (*TimeInterpolator, error) {
	if len(t) != len(y) || len(t) < 2 {
		return nil, merr.Invalid("post: time interpolator needs matching t/y of length >= 2")
	}
	ti := &TimeInterpolator{}
	if err := ti.fb.Fit(t, y); err != nil {
		return nil, merr.Invalid("post: failed to fit time interpolant: %v", err)
	}
	return ti, nil
}

// At evaluates the interpolant at t.
func (ti *TimeInterpolator) At(t float64) float64 {
	return ti.fb.Predict(t)
}

// ProfileAt returns piecewise-linear-in-x interpolation of the wall
// profile at an arbitrary x, from the per-cell concentrations of one
// snapshot, by locating x's enclosing pair of cell centers and blending.
func ProfileAt(msh *mesh.Mesh, C []float64, x float64) (float64, error) {
	n := msh.N()
	if len(C) != n {
		return 0, merr.Invalid("post: C must have length %d, got %d", n, len(C))
	}
	cells := msh.Cells
	if x <= cells[0].Center {
		return C[0], nil
	}
	if x >= cells[n-1].Center {
		return C[n-1], nil
	}
	for i := 0; i < n-1; i++ {
		xl, xr := cells[i].Center, cells[i+1].Center
		if x >= xl && x <= xr {
			w := (x - xl) / (xr - xl)
			return (1-w)*C[i] + w*C[i+1], nil
		}
	}
	return 0, merr.Invalid("post: x=%v not bracketed by mesh cells", x)
}

// ProfilePairs returns the ordered (x, C) pairs for one snapshot.
func ProfilePairs(msh *mesh.Mesh, C []float64) ([][2]float64, error) {
	n := msh.N()
	if len(C) != n {
		return nil, merr.Invalid("post: C must have length %d, got %d", n, len(C))
	}
	pairs := make([][2]float64, n)
	for i, c := range msh.Cells {
		pairs[i] = [2]float64{c.Center, C[i]}
	}
	return pairs, nil
}
