// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package layer holds the read-only data model of the problem: a single
// material slab (Layer), an ordered stack of slabs (Multilayer), and the
// finite well-mixed receiving compartment (Medium).
package layer

import (
	"math"

	"github.com/ovitrac/patankar/merr"
)

// Layer is a contiguous material slab. Identity/type tags are opaque to
// the core; callers attach their own if useful.
type Layer struct {
	Thickness float64 // l [m], > 0
	D         float64 // diffusivity [m^2/s], > 0
	K         float64 // Henry-like partition/solubility coefficient, > 0
	C0        float64 // initial uniform concentration, >= 0
	NCells    int     // desired sub-cell count, >= 1 (refined up to the mesh builder's n_min)
}

// NewLayer validates and constructs a Layer.
func NewLayer(thickness, D, K, C0 float64, nCells int) (Layer, error) {
	l := Layer{Thickness: thickness, D: D, K: K, C0: C0, NCells: nCells}
	if err := l.Validate(); err != nil {
		return Layer{}, err
	}
	return l, nil
}

// Validate checks the strict-positivity and finiteness invariants.
func (l Layer) Validate() error {
	if !isFinite(l.Thickness) || l.Thickness <= 0 {
		return merr.Invalid("layer: thickness must be finite and > 0, got %v", l.Thickness)
	}
	if !isFinite(l.D) || l.D <= 0 {
		return merr.Invalid("layer: diffusivity D must be finite and > 0, got %v", l.D)
	}
	if !isFinite(l.K) || l.K <= 0 {
		return merr.Invalid("layer: partition coefficient k must be finite and > 0, got %v", l.K)
	}
	if !isFinite(l.C0) || l.C0 < 0 {
		return merr.Invalid("layer: initial concentration C0 must be finite and >= 0, got %v", l.C0)
	}
	if l.NCells < 1 {
		return merr.Invalid("layer: n_cells must be >= 1, got %d", l.NCells)
	}
	return nil
}

// Multilayer is an ordered sequence of Layers. Index 0 is the contact face.
type Multilayer struct {
	Layers []Layer
}

// NewMultilayer validates non-emptiness and each layer, and returns the stack.
func NewMultilayer(layers ...Layer) (*Multilayer, error) {
	if len(layers) == 0 {
		return nil, merr.Invalid("multilayer: must contain at least one layer")
	}
	for i, l := range layers {
		if err := l.Validate(); err != nil {
			return nil, merr.Invalid("multilayer: layer %d invalid: %v", i, err)
		}
	}
	cp := make([]Layer, len(layers))
	copy(cp, layers)
	return &Multilayer{Layers: cp}, nil
}

// TotalThickness sums the thickness of every layer.
func (m *Multilayer) TotalThickness() float64 {
	var L float64
	for _, l := range m.Layers {
		L += l.Thickness
	}
	return L
}

// Reversed returns a new Multilayer with the layer order reversed, used by
// the chain package to re-orient the contact face (contact-on-other-side).
// Per-layer D, k, C0, and cell counts travel with their layer; only the
// order changes.
func (m *Multilayer) Reversed() *Multilayer {
	n := len(m.Layers)
	rev := make([]Layer, n)
	for i, l := range m.Layers {
		rev[n-1-i] = l
	}
	return &Multilayer{Layers: rev}
}

// Medium is the finite well-mixed receiving compartment.
type Medium struct {
	Area   float64  // A [m^2], > 0
	Volume float64  // V [m^3], > 0
	KF     float64  // partition coefficient relative to the contact layer, > 0
	CF0    float64  // initial concentration, >= 0
	H      *float64 // optional external mass-transfer coefficient (film resistance 1/H); nil = perfect diffusive contact
}

// NewMedium validates and constructs a Medium. h is variadic so it can be
// omitted (perfect-sink/perfect-contact limit) or supplied once.
func NewMedium(area, volume, kF, CF0 float64, h ...float64) (Medium, error) {
	med := Medium{Area: area, Volume: volume, KF: kF, CF0: CF0}
	if len(h) > 1 {
		return Medium{}, merr.Invalid("medium: at most one mass-transfer coefficient h may be given")
	}
	if len(h) == 1 {
		hv := h[0]
		if !isFinite(hv) || hv <= 0 {
			return Medium{}, merr.Invalid("medium: h must be finite and > 0 when given, got %v", hv)
		}
		med.H = &hv
	}
	if err := med.Validate(); err != nil {
		return Medium{}, err
	}
	return med, nil
}

// Validate checks the strict-positivity invariants (except CF0).
func (m Medium) Validate() error {
	if !isFinite(m.Area) || m.Area <= 0 {
		return merr.Invalid("medium: area A must be finite and > 0, got %v", m.Area)
	}
	if !isFinite(m.Volume) || m.Volume <= 0 {
		return merr.Invalid("medium: volume V must be finite and > 0, got %v", m.Volume)
	}
	if !isFinite(m.KF) || m.KF <= 0 {
		return merr.Invalid("medium: partition k_F must be finite and > 0, got %v", m.KF)
	}
	if !isFinite(m.CF0) || m.CF0 < 0 {
		return merr.Invalid("medium: initial concentration C_F0 must be finite and >= 0, got %v", m.CF0)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
