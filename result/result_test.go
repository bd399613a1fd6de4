// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/mesh"
	"github.com/ovitrac/patankar/solve"
)

func buildMesh(tst *testing.T) *mesh.Mesh {
	l, err := layer.NewLayer(100e-6, 1e-14, 1, 0, 10)
	if err != nil {
		tst.Fatalf("layer: %v", err)
	}
	ml, err := layer.NewMultilayer(l)
	if err != nil {
		tst.Fatalf("multilayer: %v", err)
	}
	m, err := mesh.Build(ml, 10)
	if err != nil {
		tst.Fatalf("mesh: %v", err)
	}
	return m
}

func TestNewRejectsNonMonotoneSnapshots(tst *testing.T) {

	chk.PrintTitle("result01. New rejects empty or non-increasing snapshot times")

	msh := buildMesh(tst)
	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	scales := Scales{Length: 1e-4, Time: 1, Concentration: 1}

	if _, err := New("r", "", msh, med, scales, 0, 1e-8, 1e-6, nil); err == nil {
		tst.Errorf("expected error for empty snapshots")
	}

	bad := []solve.Snapshot{
		{T: 0, C: msh.InitialState(), CF: 0},
		{T: 0, C: msh.InitialState(), CF: 0},
	}
	if _, err := New("r", "", msh, med, scales, 0, 1e-8, 1e-6, bad); err == nil {
		tst.Errorf("expected error for non-increasing times")
	}
}

func TestAccessorsReturnCopies(tst *testing.T) {

	chk.PrintTitle("result02. Accessors hand out copies, not views")

	msh := buildMesh(tst)
	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	scales := Scales{Length: 1e-4, Time: 1, Concentration: 1}
	snaps := []solve.Snapshot{
		{T: 0, C: msh.InitialState(), CF: 0},
		{T: 1, C: msh.InitialState(), CF: 5},
	}
	r, err := New("r", "d", msh, med, scales, 0, 1e-8, 1e-6, snaps)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}

	cf, err := r.CF(1)
	if err != nil || cf != 5 {
		tst.Errorf("CF(1) = %v, %v; expected 5, nil", cf, err)
	}

	c, err := r.CWall(0)
	if err != nil {
		tst.Fatalf("CWall: %v", err)
	}
	c[0] = -999
	c2, _ := r.CWall(0)
	if c2[0] == -999 {
		tst.Errorf("CWall must return a copy, mutation leaked into stored snapshot")
	}
}

func TestRecordCarriesVersionedArrays(tst *testing.T) {

	chk.PrintTitle("result05. Record exposes the versioned times/Cxt/CF/scales/metadata view")

	msh := buildMesh(tst)
	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	scales := Scales{Length: 1e-4, Time: 1e6, Concentration: 500}
	snaps := []solve.Snapshot{
		{T: 0, C: msh.InitialState(), CF: 0},
		{T: 1, C: msh.InitialState(), CF: 2},
		{T: 2, C: msh.InitialState(), CF: 3},
	}
	r, err := New("s1", "baseline", msh, med, scales, 0, 1e-8, 1e-6, snaps)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}

	rec := r.Record()
	if rec.Version != FileSchemaVersion {
		tst.Errorf("expected schema version %d, got %d", FileSchemaVersion, rec.Version)
	}
	if len(rec.Times) != 3 || len(rec.Cxt) != 3 || len(rec.CF) != 3 {
		tst.Fatalf("unexpected array lengths: %d/%d/%d", len(rec.Times), len(rec.Cxt), len(rec.CF))
	}
	chk.Float64(tst, "CF[2]", 1e-17, rec.CF[2], 3)
	chk.Float64(tst, "scales.Time", 1e-17, rec.Scales.Time, 1e6)
	if rec.Metadata != "s1: baseline" {
		tst.Errorf("unexpected metadata: %q", rec.Metadata)
	}

	// arrays are copies, not views into the stored snapshots
	rec.Cxt[0][0] = -999
	c, _ := r.CWall(0)
	if c[0] == -999 {
		tst.Errorf("Record must copy Cxt, mutation leaked into the stored snapshot")
	}
}

func TestConcatenateRequiresMatchingGeometry(tst *testing.T) {

	chk.PrintTitle("result03. Concatenate rejects mismatched mesh geometry (IncompatibleComposition)")

	mshA := buildMesh(tst)
	l, _ := layer.NewLayer(100e-6, 1e-14, 1, 0, 5)
	ml, _ := layer.NewMultilayer(l)
	mshB, _ := mesh.Build(ml, 5) // different cell count

	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	scales := Scales{Length: 1e-4, Time: 1, Concentration: 1}

	snapsA := []solve.Snapshot{{T: 0, C: mshA.InitialState(), CF: 0}, {T: 1, C: mshA.InitialState(), CF: 1}}
	snapsB := []solve.Snapshot{{T: 0, C: mshB.InitialState(), CF: 1}, {T: 1, C: mshB.InitialState(), CF: 2}}

	rA, err := New("a", "", mshA, med, scales, 0, 1e-8, 1e-6, snapsA)
	if err != nil {
		tst.Fatalf("New a: %v", err)
	}
	rB, err := New("b", "", mshB, med, scales, 0, 1e-8, 1e-6, snapsB)
	if err != nil {
		tst.Fatalf("New b: %v", err)
	}

	_, cerr := rA.Concatenate(rB, true)
	if cerr == nil {
		tst.Fatalf("expected IncompatibleComposition error for mismatched mesh geometry")
	}
	var me *merr.Error
	if !errors.As(cerr, &me) || me.Kind != merr.IncompatibleComposition {
		tst.Errorf("expected kind IncompatibleComposition, got %v", cerr)
	}
}

func TestConcatenateJoinsAndShiftsTime(tst *testing.T) {

	chk.PrintTitle("result04. Concatenate time-shifts B and preserves CF continuity")

	msh := buildMesh(tst)
	med, _ := layer.NewMedium(1, 1e-3, 1, 0)
	scales := Scales{Length: 1e-4, Time: 1, Concentration: 1}

	snapsA := []solve.Snapshot{
		{T: 0, C: msh.InitialState(), CF: 0},
		{T: 1, C: msh.InitialState(), CF: 3},
	}
	snapsB := []solve.Snapshot{
		{T: 0, C: msh.InitialState(), CF: 3}, // continuous with A's final CF
		{T: 2, C: msh.InitialState(), CF: 7},
	}

	rA, _ := New("a", "", msh, med, scales, 0, 1e-8, 1e-6, snapsA)
	rB, _ := New("b", "", msh, med, scales, 0, 1e-8, 1e-6, snapsB)

	merged, err := rA.Concatenate(rB, false)
	if err != nil {
		tst.Fatalf("Concatenate: %v", err)
	}
	if len(merged.Snaps) != 3 {
		tst.Errorf("expected 3 merged snapshots, got %d", len(merged.Snaps))
	}
	chk.Float64(tst, "merged final T", 1e-17, merged.Final().T, 3) // 1 (A's final) + 2 (B's final)
	chk.Float64(tst, "merged final CF", 1e-17, merged.Final().CF, 7)
}
