// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mesh builds the piecewise-uniform finite-volume mesh spanning
// all layers of a Multilayer, carrying per-cell diffusivity, partition
// coefficient, and initial concentration.
package mesh

import (
	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
)

// Cell is one finite-volume control volume.
type Cell struct {
	Center     float64 // x_i, cell center position from the contact face
	Width      float64 // Δx_i
	D          float64 // D_i, inherited from the owning layer
	K          float64 // k_i, inherited from the owning layer
	C0         float64 // C_i(0), inherited from the owning layer
	LayerIndex int     // index into the originating Multilayer
}

// Mesh is the ordered concatenation of cells across all layers. Global
// cell index 0 sits at the contact face (x=0); the last cell's right face
// sits at the far face (x=L). No ghost cells are carried.
type Mesh struct {
	Cells []Cell

	// LayerOffsets[j] is the global cell index of the first cell of layer
	// j; LayerOffsets[len(Layers)] is the total cell count.
	LayerOffsets []int
}

// Build constructs a Mesh from a Multilayer. nMin is the global minimum
// cells-per-layer; a layer's own NCells is used when it is already >= nMin.
func Build(ml *layer.Multilayer, nMin int) (*Mesh, error) {
	if ml == nil || len(ml.Layers) == 0 {
		return nil, merr.Invalid("mesh: multilayer must be non-empty")
	}
	if nMin < 1 {
		return nil, merr.Invalid("mesh: n_min must be >= 1, got %d", nMin)
	}

	m := &Mesh{LayerOffsets: make([]int, len(ml.Layers)+1)}
	x := 0.0
	for j, l := range ml.Layers {
		n := l.NCells
		if n < nMin {
			n = nMin
		}
		dx := l.Thickness / float64(n)
		m.LayerOffsets[j] = len(m.Cells)
		for i := 0; i < n; i++ {
			m.Cells = append(m.Cells, Cell{
				Center:     x + (float64(i)+0.5)*dx,
				Width:      dx,
				D:          l.D,
				K:          l.K,
				C0:         l.C0,
				LayerIndex: j,
			})
		}
		x += l.Thickness
	}
	m.LayerOffsets[len(ml.Layers)] = len(m.Cells)
	return m, nil
}

// N returns the number of cells.
func (m *Mesh) N() int { return len(m.Cells) }

// TotalLength returns the far-face coordinate L.
func (m *Mesh) TotalLength() float64 {
	var L float64
	for _, c := range m.Cells {
		L += c.Width
	}
	return L
}

// InitialState returns a fresh copy of the per-cell initial concentrations,
// ordered by global cell index.
func (m *Mesh) InitialState() []float64 {
	c0 := make([]float64, len(m.Cells))
	for i, c := range m.Cells {
		c0[i] = c.C0
	}
	return c0
}

// SameGeometry reports whether two meshes have the same cell count, widths,
// and coefficients, up to floating-point tolerance — the compatibility
// check used before concatenating Results.
func SameGeometry(a, b *Mesh, tol float64) bool {
	if a == nil || b == nil || len(a.Cells) != len(b.Cells) {
		return false
	}
	for i := range a.Cells {
		ca, cb := a.Cells[i], b.Cells[i]
		if absDiff(ca.Width, cb.Width) > tol*ca.Width+tol ||
			absDiff(ca.D, cb.D) > tol*ca.D+tol ||
			absDiff(ca.K, cb.K) > tol*ca.K+tol {
			return false
		}
	}
	return true
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
