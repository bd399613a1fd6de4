// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package result holds the output of one simulation run: the
// profile C(x,t), the cumulative desorbed concentration CF(t), dimensional
// scales, descriptive metadata, and a restart record sufficient to resume.
package result

import (
	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/operator"
	"github.com/ovitrac/patankar/solve"
)

// Scales carries the dimensional factors of a run. Snapshot times are
// dimensionless (tau) and Time converts them back to seconds; snapshot
// concentrations are stored in physical units, and Concentration is the
// reference scale reported alongside them.
type Scales struct {
	Length        float64 // L, total wall thickness [m]
	Time          float64 // tau = L^2/D_ref, characteristic diffusion time [s]
	Concentration float64 // C0eq, reference concentration
}

// Restart is a value-typed record (no back-pointers) sufficient to resume
// integration: the last snapshot plus the full parameter set that
// produced it.
type Restart struct {
	Snapshot solve.Snapshot
	Mesh     *mesh.Mesh
	Medium   layer.Medium
	Far      operator.FarBoundary
	Scales   Scales
	AbsTol   float64
	RelTol   float64
}

// Result is the output of one run. Its accessors (Times, CWall, CF, Final,
// Record) return copies of the stored arrays. The Snaps field itself is
// exported, so writing through r.Snaps changes the stored data.
type Result struct {
	Name        string
	Description string

	Mesh    *mesh.Mesh
	Medium  layer.Medium
	Scales  Scales
	Snaps   []solve.Snapshot // strictly time-ordered

	// Warnings carries non-fatal diagnostics, e.g. a MassBalanceViolation
	// surfaced as metadata rather than promoted to a fatal error.
	Warnings []string

	restart Restart
}

// New constructs a Result from a finished run's snapshots. snaps must be
// non-empty and strictly increasing in time (checked).
func New(name, description string, msh *mesh.Mesh, med layer.Medium, scales Scales, far operator.FarBoundary, absTol, relTol float64, snaps []solve.Snapshot) (*Result, error) {
	if len(snaps) == 0 {
		return nil, merr.Invalid("result: snapshot list must be non-empty")
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].T <= snaps[i-1].T {
			return nil, merr.Invalid("result: snapshots must be strictly increasing in time at index %d", i)
		}
	}
	cp := make([]solve.Snapshot, len(snaps))
	copy(cp, snaps)

	r := &Result{
		Name:        name,
		Description: description,
		Mesh:        msh,
		Medium:      med,
		Scales:      scales,
		Snaps:       cp,
	}
	r.restart = Restart{
		Snapshot: cp[len(cp)-1],
		Mesh:     msh,
		Medium:   med,
		Far:      far,
		Scales:   scales,
		AbsTol:   absTol,
		RelTol:   relTol,
	}
	return r, nil
}

// Times returns a copy of every snapshot's dimensionless time.
func (r *Result) Times() []float64 {
	t := make([]float64, len(r.Snaps))
	for i, s := range r.Snaps {
		t[i] = s.T
	}
	return t
}

// CWall returns a copy of the cell-concentration vector at snapshot index i.
func (r *Result) CWall(i int) ([]float64, error) {
	if i < 0 || i >= len(r.Snaps) {
		return nil, merr.Invalid("result: snapshot index %d out of range [0,%d)", i, len(r.Snaps))
	}
	c := make([]float64, len(r.Snaps[i].C))
	copy(c, r.Snaps[i].C)
	return c, nil
}

// CF returns the medium concentration at snapshot index i.
func (r *Result) CF(i int) (float64, error) {
	if i < 0 || i >= len(r.Snaps) {
		return 0, merr.Invalid("result: snapshot index %d out of range [0,%d)", i, len(r.Snaps))
	}
	return r.Snaps[i].CF, nil
}

// Final returns a copy of the last snapshot.
func (r *Result) Final() solve.Snapshot {
	last := r.Snaps[len(r.Snaps)-1]
	c := make([]float64, len(last.C))
	copy(c, last.C)
	last.C = c
	return last
}

// Savestate returns the restart record for this Result.
func (r *Result) Savestate() Restart {
	return r.restart
}

// AddWarning appends a non-fatal diagnostic, e.g. from a MassBalanceViolation
// check that wasn't promoted to fatal.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// FileSchemaVersion identifies the layout of FileRecord's output; bump it
// whenever a field is added, removed, or reordered.
const FileSchemaVersion = 1

// FileRecord is the versioned raw-array view of a Result for optional
// file persistence. Field order is fixed by the schema: times, Cxt
// matrix, CF vector, scales, metadata string. Serialization itself is
// the caller's concern.
type FileRecord struct {
	Version  int         `json:"version"`
	Times    []float64   `json:"times"`
	Cxt      [][]float64 `json:"Cxt"`
	CF       []float64   `json:"CF"`
	Scales   Scales      `json:"scales"`
	Metadata string      `json:"metadata"`
}

// Record builds the persistence view of r. All arrays are copies.
func (r *Result) Record() FileRecord {
	nt := len(r.Snaps)
	rec := FileRecord{
		Version:  FileSchemaVersion,
		Times:    r.Times(),
		Cxt:      make([][]float64, nt),
		CF:       make([]float64, nt),
		Scales:   r.Scales,
		Metadata: r.Name,
	}
	if r.Description != "" {
		rec.Metadata = r.Name + ": " + r.Description
	}
	for i, s := range r.Snaps {
		c := make([]float64, len(s.C))
		copy(c, s.C)
		rec.Cxt[i] = c
		rec.CF[i] = s.CF
	}
	return rec
}

// Concatenate implements the ⊕ operator: R_A.Concatenate(R_B)
// requires the same mesh geometry and produces a Result with time shifted
// by R_A's final time and CF continuous across the join. If R_B's initial
// CF doesn't match R_A's final CF, rebase is required to explicitly accept
// the shift (set rebase=true), otherwise an IncompatibleComposition error
// is returned.
func (a *Result) Concatenate(b *Result, rebase bool) (*Result, error) {
	if !mesh.SameGeometry(a.Mesh, b.Mesh, 1e-9) {
		return nil, merr.Incompatible("result: cannot concatenate results with mismatched mesh geometry")
	}

	aFinal := a.Final()
	bFirst := b.Snaps[0]
	shiftCF := 0.0
	if diff := bFirst.CF - aFinal.CF; absf(diff) > 1e-9*(1+absf(aFinal.CF)) {
		if !rebase {
			return nil, merr.Incompatible("result: CF discontinuity at join (A final=%v, B initial=%v); pass rebase=true to accept", aFinal.CF, bFirst.CF)
		}
		shiftCF = aFinal.CF - bFirst.CF
	}

	tShift := aFinal.T
	merged := make([]solve.Snapshot, 0, len(a.Snaps)+len(b.Snaps)-1)
	merged = append(merged, a.Snaps...)
	for i, s := range b.Snaps {
		if i == 0 {
			continue // b's initial state coincides with a's final state
		}
		merged = append(merged, solve.Snapshot{
			T:  s.T + tShift,
			C:  s.C,
			CF: s.CF + shiftCF,
		})
	}

	name := a.Name
	if b.Name != "" && b.Name != a.Name {
		if name == "" {
			name = b.Name
		} else {
			name = name + " + " + b.Name
		}
	}
	desc := mergeDesc(a.Description, b.Description)

	return New(name, desc, a.Mesh, b.Medium, b.Scales, b.restart.Far, b.restart.AbsTol, b.restart.RelTol, merged)
}

func mergeDesc(a, b string) string {
	switch {
	case a != "" && b != "":
		return "Merged: " + a + " & " + b
	case a != "":
		return a
	default:
		return b
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
