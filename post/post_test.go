// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package post

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
)

func TestInterfacesJumpMatchesPotential(tst *testing.T) {

	chk.PrintTitle("post01. Interfaces reconstruct C-/k_left = C+/k_right at every interface")

	a, _ := layer.NewLayer(50e-6, 1e-15, 1, 0, 5)
	b, _ := layer.NewLayer(100e-6, 1e-13, 5, 200, 5)
	ml, _ := layer.NewMultilayer(a, b)
	msh, err := mesh.Build(ml, 5)
	if err != nil {
		tst.Fatalf("mesh: %v", err)
	}
	C := msh.InitialState()

	ifaces, err := Interfaces(msh, C, operator.Impermeable)
	if err != nil {
		tst.Fatalf("Interfaces: %v", err)
	}
	if len(ifaces) != msh.N()-1 {
		tst.Errorf("expected %d interfaces, got %d", msh.N()-1, len(ifaces))
	}
	for i, iv := range ifaces {
		left := msh.Cells[i]
		right := msh.Cells[i+1]
		phiL := iv.CLeft / left.K
		phiR := iv.CRight / right.K
		if math.Abs(phiL-phiR) > 1e-12 {
			tst.Errorf("interface %d: phi jump %v vs %v not continuous", i, phiL, phiR)
		}
	}
}

func TestProfileAtBracketsAndClamps(tst *testing.T) {

	chk.PrintTitle("post02. ProfileAt clamps outside the mesh and interpolates inside")

	l, _ := layer.NewLayer(100e-6, 1e-14, 1, 0, 4)
	ml, _ := layer.NewMultilayer(l)
	msh, _ := mesh.Build(ml, 4)
	C := []float64{0, 10, 20, 30}

	v, err := ProfileAt(msh, C, -1)
	if err != nil || v != 0 {
		tst.Errorf("expected clamp to C[0]=0 below the mesh, got %v, %v", v, err)
	}
	v, err = ProfileAt(msh, C, 1)
	if err != nil || v != 30 {
		tst.Errorf("expected clamp to C[last]=30 above the mesh, got %v, %v", v, err)
	}

	mid := (msh.Cells[0].Center + msh.Cells[1].Center) / 2
	v, err = ProfileAt(msh, C, mid)
	if err != nil {
		tst.Fatalf("ProfileAt: %v", err)
	}
	chk.Float64(tst, "midpoint interpolation", 1e-12, v, 5) // halfway between C[0]=0 and C[1]=10
}

func TestTimeInterpolatorMatchesNodes(tst *testing.T) {

	chk.PrintTitle("post03. TimeInterpolator reproduces the sampled values at the nodes")

	t := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 4, 9}
	ti, err := NewTimeInterpolator(t, y)
	if err != nil {
		tst.Fatalf("NewTimeInterpolator: %v", err)
	}
	for i, tv := range t {
		chk.Float64(tst, "node value", 1e-9, ti.At(tv), y[i])
	}
}

func TestCrossCheckCFMonotoneUnderInwardFlux(tst *testing.T) {

	chk.PrintTitle("post04. CrossCheckCF's estimate rises monotonically under an inward contact-face flux")

	l, _ := layer.NewLayer(100e-6, 1e-14, 1, 500, 4)
	ml, _ := layer.NewMultilayer(l)
	msh, _ := mesh.Build(ml, 4)
	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	op, err := operator.Build(msh, med, operator.Impermeable)
	if err != nil {
		tst.Fatalf("operator.Build: %v", err)
	}

	times := []float64{0, 1, 2}
	CWall := [][]float64{msh.InitialState(), msh.InitialState(), msh.InitialState()}
	CF := []float64{0, 1, 2}

	est, err := CrossCheckCF(op, times, CWall, CF)
	if err != nil {
		tst.Fatalf("CrossCheckCF: %v", err)
	}
	if len(est) != 3 || est[0] != 0 {
		tst.Errorf("unexpected estimate series: %v", est)
	}
	for i := 1; i < len(est); i++ {
		if est[i] <= est[i-1] {
			tst.Errorf("estimate not increasing at %d: %v <= %v", i, est[i], est[i-1])
		}
	}
}
