// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package operator builds the sparse tri-diagonal (or, under a periodic
// far boundary, cyclic tri-diagonal) flux operator that enforces flux
// continuity and the Henry jump C_left/k_left = C_right/k_right at every
// internal interface, plus the coupling row/column for the medium.
package operator

import (
	"github.com/cpmech/gosl/la"

	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
)

// FarBoundary selects the policy applied at the outermost (far) face.
type FarBoundary int

const (
	// Impermeable is the default: zero flux through the outermost layer.
	Impermeable FarBoundary = iota

	// Symmetric mirrors the stack (setoff/stacking contact). The
	// discretization is identical to Impermeable: a plane of symmetry
	// carries zero flux by construction, same as a true outer wall. The
	// two are kept as distinct options because they document different
	// physical setups (a mirrored setoff stack vs. a genuinely closed
	// outer wall), not different arithmetic.
	Symmetric

	// Periodic wraps the far face back onto the contact face, used by
	// the post-processor's periodic interface-reconstruction variant.
	Periodic
)

// State is the N-cell concentration vector plus the scalar medium
// concentration, laid out as [C_0 ... C_{N-1}, C_F] for ODE integration.
type State = []float64

// Operator is the assembled linear map L: State -> dState/dtau.
type Operator struct {
	Mesh   *mesh.Mesh
	Medium layer.Medium
	Far    FarBoundary

	// aInt[i] is the conductance a_{i+1/2} between cell i and i+1, for
	// i = 0..N-2.
	aInt []float64

	// aF is the contact-face conductance between the medium and cell 0.
	aF float64

	// aWrap is the conductance between the last cell and cell 0, used
	// only when Far == Periodic (zero otherwise).
	aWrap float64
}

// Build assembles the conductances from mesh and medium data. No matrix
// is stored explicitly; Eval below applies the operator action directly,
// and Jacobian builds a sparse representation on demand.
func Build(msh *mesh.Mesh, med layer.Medium, far FarBoundary) (*Operator, error) {
	if msh == nil || msh.N() == 0 {
		return nil, merr.Invalid("operator: mesh must have at least one cell")
	}
	if err := med.Validate(); err != nil {
		return nil, err
	}

	n := msh.N()
	op := &Operator{Mesh: msh, Medium: med, Far: far}
	op.aInt = make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		left, right := msh.Cells[i], msh.Cells[i+1]
		op.aInt[i] = harmonicConductance(left, right)
	}

	c0 := msh.Cells[0]
	wallResistance := (c0.Width / 2) / (c0.D * c0.K)
	total := wallResistance
	if med.H != nil {
		total += 1 / *med.H
	}
	op.aF = 1 / total

	if far == Periodic {
		last := msh.Cells[n-1]
		op.aWrap = harmonicConductance(last, c0)
	}
	return op, nil
}

// harmonicConductance computes the Patankar-style interface conductance
// a_{i+1/2} = 1 / ( (Δx_i/2)/(D_i k_i) + (Δx_{i+1}/2)/(D_{i+1} k_{i+1}) ).
func harmonicConductance(left, right mesh.Cell) float64 {
	rLeft := (left.Width / 2) / (left.D * left.K)
	rRight := (right.Width / 2) / (right.D * right.K)
	return 1 / (rLeft + rRight)
}

// N returns the number of wall cells (the State length is N+1).
func (op *Operator) N() int { return op.Mesh.N() }

// AF returns the contact-face conductance a_F between the medium and cell 0.
func (op *Operator) AF() float64 { return op.aF }

// Eval computes dState/dtau into deriv, given state = [C_0..C_{N-1}, C_F].
// Both slices must have length N+1.
func (op *Operator) Eval(state, deriv []float64) error {
	n := op.N()
	if len(state) != n+1 || len(deriv) != n+1 {
		return merr.Invalid("operator: state/deriv must have length %d, got %d/%d", n+1, len(state), len(deriv))
	}
	cells := op.Mesh.Cells
	CF := state[n]
	phiF := CF / op.Medium.KF

	phi := func(i int) float64 { return state[i] / cells[i].K }

	for i := 0; i < n; i++ {
		var leftFlux, rightFlux float64

		if i == 0 {
			leftFlux = op.aF * (phiF - phi(0))
		} else {
			leftFlux = op.aInt[i-1] * (phi(i-1) - phi(i))
		}

		switch {
		case i == n-1 && op.Far == Periodic:
			rightFlux = op.aWrap * (phi(i) - phi(0))
		case i == n-1:
			rightFlux = 0 // Impermeable or Symmetric: zero flux at the far face
		default:
			rightFlux = op.aInt[i] * (phi(i) - phi(i+1))
		}

		deriv[i] = (leftFlux - rightFlux) / cells[i].Width
	}

	deriv[n] = -(op.Medium.Area / op.Medium.Volume) * op.aF * (phiF - phi(0))
	return nil
}

// Jacobian fills a sparse triplet with d(deriv_i)/d(state_j), sized
// (N+1)x(N+1). This is handed to the stiff integrator as the analytic
// Jacobian instead of relying on finite differences.
func (op *Operator) Jacobian(trip *la.Triplet) {
	trip.Init(op.N()+1, op.N()+1, op.nnz())
	op.jacobianEntries(trip.Put)
}

// jacobianEntries visits every nonzero (i, j, d(deriv_i)/d(state_j)) of the
// Jacobian and calls put for each. Shared by Jacobian (direct assembly)
// and CrossCheckStep (assembly of I - dt*J).
func (op *Operator) jacobianEntries(put func(i, j int, v float64)) {
	n := op.N()
	cells := op.Mesh.Cells

	for i := 0; i < n; i++ {
		dx := cells[i].Width
		ki := cells[i].K

		var aLeft, aRight float64
		leftIsMedium := i == 0
		if leftIsMedium {
			aLeft = op.aF
		} else {
			aLeft = op.aInt[i-1]
		}
		rightWraps := i == n-1 && op.Far == Periodic
		rightIsFree := i == n-1 && op.Far != Periodic
		switch {
		case rightWraps:
			aRight = op.aWrap
		case rightIsFree:
			aRight = 0
		default:
			aRight = op.aInt[i]
		}

		put(i, i, -(aLeft+aRight)/ki/dx)

		if leftIsMedium {
			put(i, n, aLeft/op.Medium.KF/dx)
		} else {
			put(i, i-1, aLeft/cells[i-1].K/dx)
		}

		if rightWraps {
			put(i, 0, aRight/cells[0].K/dx)
		} else if !rightIsFree {
			put(i, i+1, aRight/cells[i+1].K/dx)
		}
	}

	// medium row
	AV := op.Medium.Area / op.Medium.Volume
	put(n, n, -AV*op.aF/op.Medium.KF)
	put(n, 0, AV*op.aF/cells[0].K)
}

// nnz is an upper bound on the number of nonzeros in the Jacobian: 3 per
// interior row, plus the medium row/column coupling, plus the periodic
// wrap corner entries.
func (op *Operator) nnz() int {
	n := op.N()
	return 3*n + 4
}
