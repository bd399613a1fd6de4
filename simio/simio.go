// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package simio defines the on-disk JSON scenario schema: one Scenario
// describes a Multilayer plus an ordered list of contact Stages (one root
// struct, a nested stage slice, read via encoding/json + gosl/io file
// helpers).
package simio

import (
	"encoding/json"

	"github.com/cpmech/gosl/io"

	"github.com/ovitrac/patankar/chain"
	"github.com/ovitrac/patankar/layer"
	"github.com/ovitrac/patankar/merr"
	"github.com/ovitrac/patankar/operator"
)

// LayerSpec is the JSON form of layer.Layer.
type LayerSpec struct {
	Thickness float64 `json:"thickness"`
	D         float64 `json:"D"`
	K         float64 `json:"k"`
	C0        float64 `json:"C0"`
	NCells    int     `json:"n_cells"`
}

func (s LayerSpec) toLayer() (layer.Layer, error) {
	return layer.NewLayer(s.Thickness, s.D, s.K, s.C0, s.NCells)
}

// MediumSpec is the JSON form of layer.Medium. H is a pointer so "omitted"
// and "zero" are distinguishable, same intent as Medium.H itself.
type MediumSpec struct {
	Area   float64  `json:"area"`
	Volume float64  `json:"volume"`
	KF     float64  `json:"kF"`
	CF0    float64  `json:"CF0"`
	H      *float64 `json:"h,omitempty"`
}

func (s MediumSpec) toMedium() (layer.Medium, error) {
	if s.H != nil {
		return layer.NewMedium(s.Area, s.Volume, s.KF, s.CF0, *s.H)
	}
	return layer.NewMedium(s.Area, s.Volume, s.KF, s.CF0)
}

// farBoundaryFromString maps the schema's textual far-boundary name onto
// operator.FarBoundary; an empty name defaults to Impermeable, and an
// unrecognized name is an InvalidInput error.
func farBoundaryFromString(name string) (operator.FarBoundary, error) {
	switch name {
	case "", "impermeable":
		return operator.Impermeable, nil
	case "symmetric":
		return operator.Symmetric, nil
	case "periodic":
		return operator.Periodic, nil
	default:
		return 0, merr.Invalid("simio: unknown far_boundary %q", name)
	}
}

// StageSpec is one contact step: the medium it runs against, its own
// dimensional time grid, and far-boundary policy.
type StageSpec struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Medium      MediumSpec `json:"medium"`
	TimeGrid    []float64  `json:"time_grid"`
	Reorient    bool       `json:"reorient,omitempty"`
	FarBoundary string     `json:"far_boundary,omitempty"`
	AbsTol      float64    `json:"abs_tol,omitempty"`
	RelTol      float64    `json:"rel_tol,omitempty"`
}

// Scenario is the top-level scenario-file schema: integration options
// plus the chained-stage extension.
type Scenario struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	NMin        int         `json:"n_min"`
	Layers      []LayerSpec `json:"layers"`
	Stages      []StageSpec `json:"stages"`

	PromoteMassBalanceViolation bool    `json:"promote_mass_balance_violation,omitempty"`
	MassBalanceTol              float64 `json:"mass_balance_tol,omitempty"`
}

// Load reads and parses a Scenario from path using gosl/io's file-reading
// helper before unmarshalling the JSON payload.
func Load(path string) (*Scenario, error) {
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, merr.Invalid("simio: failed to read %q: %v", path, err)
	}
	var sc Scenario
	if err := json.Unmarshal(buf, &sc); err != nil {
		return nil, merr.Invalid("simio: failed to parse %q: %v", path, err)
	}
	return &sc, nil
}

// Save writes sc to dir/filename as indented JSON, using gosl/io's
// directory-creating file writer.
func Save(dir, filename string, sc *Scenario) error {
	buf, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return merr.Invalid("simio: failed to marshal scenario: %v", err)
	}
	io.WriteFileSD(dir, filename, string(buf))
	return nil
}

// Multilayer builds a layer.Multilayer from the scenario's LayerSpecs.
func (sc *Scenario) Multilayer() (*layer.Multilayer, error) {
	layers := make([]layer.Layer, len(sc.Layers))
	for i, ls := range sc.Layers {
		l, err := ls.toLayer()
		if err != nil {
			return nil, merr.Invalid("simio: layer %d: %v", i, err)
		}
		layers[i] = l
	}
	return layer.NewMultilayer(layers...)
}

// Contacts converts the scenario's StageSpecs into chain.Contacts ready to
// hand to a chain.Chainer.
func (sc *Scenario) Contacts() ([]chain.Contact, error) {
	out := make([]chain.Contact, len(sc.Stages))
	for i, ss := range sc.Stages {
		med, err := ss.Medium.toMedium()
		if err != nil {
			return nil, merr.Invalid("simio: stage %d medium: %v", i, err)
		}
		far, err := farBoundaryFromString(ss.FarBoundary)
		if err != nil {
			return nil, merr.Invalid("simio: stage %d: %v", i, err)
		}
		out[i] = chain.Contact{
			Medium:      med,
			TimeGrid:    ss.TimeGrid,
			Reorient:    ss.Reorient,
			FarBoundary: far,
			AbsTol:      ss.AbsTol,
			RelTol:      ss.RelTol,
			Name:        ss.Name,
			Description: ss.Description,
		}
	}
	return out, nil
}
