// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solve

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
)

func buildDriver(tst *testing.T) *Driver {
	l, err := layer.NewLayer(100e-6, 1e-14, 1, 500, 10)
	if err != nil {
		tst.Fatalf("layer: %v", err)
	}
	ml, err := layer.NewMultilayer(l)
	if err != nil {
		tst.Fatalf("multilayer: %v", err)
	}
	msh, err := mesh.Build(ml, 10)
	if err != nil {
		tst.Fatalf("mesh: %v", err)
	}
	med, err := layer.NewMedium(1, 1e-3, 1, 0)
	if err != nil {
		tst.Fatalf("medium: %v", err)
	}
	op, err := operator.Build(msh, med, operator.Impermeable)
	if err != nil {
		tst.Fatalf("operator.Build: %v", err)
	}
	return NewDriver(op)
}

func TestRunRejectsShortTimeGrid(tst *testing.T) {

	chk.PrintTitle("solve01. Run rejects a time grid with fewer than two points")

	d := buildDriver(tst)
	state0 := make([]float64, d.n)
	if _, err := d.Run(state0, Options{TimeGrid: []float64{0}}); err == nil {
		tst.Errorf("expected error for a single-point time grid")
	}
}

func TestRunRejectsNonMonotoneTimeGrid(tst *testing.T) {

	chk.PrintTitle("solve02. Run rejects a non-strictly-increasing time grid")

	d := buildDriver(tst)
	state0 := make([]float64, d.n)
	if _, err := d.Run(state0, Options{TimeGrid: []float64{0, 1, 1}}); err == nil {
		tst.Errorf("expected error for a non-increasing time grid")
	}
}

func TestRunRejectsMismatchedInitialState(tst *testing.T) {

	chk.PrintTitle("solve03. Run rejects an initial state of the wrong length")

	d := buildDriver(tst)
	state0 := make([]float64, d.n+1) // deliberately wrong
	if _, err := d.Run(state0, Options{TimeGrid: []float64{0, 1}}); err == nil {
		tst.Errorf("expected error for mismatched initial state length")
	}
}

func TestRunDeadlineYieldsCancelled(tst *testing.T) {

	chk.PrintTitle("solve05. An expired deadline yields Cancelled, not IntegrationFailure")

	d := buildDriver(tst)
	state0 := make([]float64, d.n)
	_, err := d.Run(state0, Options{
		TimeGrid: []float64{0, 1},
		Deadline: func() bool { return true },
	})
	if err == nil {
		tst.Fatalf("expected Cancelled error")
	}
	var me *merr.Error
	if !errors.As(err, &me) || me.Kind != merr.Cancelled {
		tst.Errorf("expected kind Cancelled, got %v", err)
	}
}

func TestOptionsDefaults(tst *testing.T) {

	chk.PrintTitle("solve04. withDefaults fills in atol/rtol when unset")

	o := Options{TimeGrid: []float64{0, 1}}.withDefaults()
	chk.Float64(tst, "AbsTol", 1e-17, o.AbsTol, 1e-8)
	chk.Float64(tst, "RelTol", 1e-17, o.RelTol, 1e-6)
}
