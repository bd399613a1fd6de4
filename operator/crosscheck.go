// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"github.com/cpmech/gosl/la"

	"github.com/ovitrac/patankar/merr"
)

// CrossCheckStep solves (I - dt*J) x = rhs using gosl's sparse solver,
// where J is this operator's own analytic Jacobian. This exercises the
// same sparse factorization path (la.Triplet -> la.GetSolver -> Fact/SolveR)
// a stiff corrector takes internally; it's used to independently verify
// that the analytic Jacobian assembled by jacobianEntries is consistent
// with Eval's own flux bookkeeping, by solving a backward-Euler-shaped
// system and checking the result against a known x (see the package test).
func (op *Operator) CrossCheckStep(dt float64, rhs []float64) ([]float64, error) {
	n := op.N()
	if len(rhs) != n+1 {
		return nil, merr.Invalid("operator: rhs must have length %d, got %d", n+1, len(rhs))
	}

	// (I - dt*J): same sparsity pattern as the Jacobian, plus the
	// identity diagonal, assembled directly rather than through the
	// Jacobian triplet so every entry's scaling is explicit.
	var sys la.Triplet
	sys.Init(n+1, n+1, op.nnz()+n+1)
	putScaled := func(i, j int, v float64) {
		if i == j {
			sys.Put(i, j, 1.0-dt*v)
		} else {
			sys.Put(i, j, -dt*v)
		}
	}
	op.jacobianEntries(putScaled)

	lis := la.GetSolver("umfpack")
	defer lis.Free()
	symmetric, verbose, timing := false, false, false
	if err := lis.InitR(&sys, symmetric, verbose, timing); err != nil {
		return nil, merr.New(merr.IntegrationFailure, "operator: cross-check solver init failed: %v", err)
	}
	if err := lis.Fact(); err != nil {
		return nil, merr.New(merr.IntegrationFailure, "operator: cross-check factorization failed: %v", err)
	}
	x := make([]float64, n+1)
	if err := lis.SolveR(x, rhs, false); err != nil {
		return nil, merr.New(merr.IntegrationFailure, "operator: cross-check solve failed: %v", err)
	}
	return x, nil
}
