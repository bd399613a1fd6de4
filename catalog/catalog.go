// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package catalog implements the thin "has D(T), k(T, substance), rho(T)"
// interface the design notes call for: polymer/migrant presets are values
// in a registry (tagged records), not runtime polymorphism, following the
// factory-map pattern of gofem's mdl/diffusion and mdl/conduct model
// registries. The property databases themselves (temperature dependence,
// chemical identity lookups) are out of scope; this package only gives
// them a consistent home to be plugged into.
package catalog

import (
	"github.com/cpmech/gosl/fun"

	"github.com/ovitrac/patankar/merr"
)

// Material is the minimal interface the numerics need from any
// polymer/migrant property source.
type Material interface {
	D(tempK float64) float64                 // diffusivity at temperature T
	K(tempK float64, substance string) float64 // partition/solubility coefficient
	Rho(tempK float64) float64                // density, carried for completeness
}

// Preset is a temperature-independent material record: the common case
// for a compliance screening run where D, k, rho are taken at one
// reference temperature.
type Preset struct {
	Name    string
	Dval    float64
	Kval    float64
	RhoVal  float64
}

func (p Preset) D(float64) float64                 { return p.Dval }
func (p Preset) K(float64, string) float64          { return p.Kval }
func (p Preset) Rho(float64) float64                { return p.RhoVal }

// New builds a Material from a named registry entry.
func New(name string) (Material, error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, merr.Invalid("catalog: material %q is not available in the preset database", name)
	}
	return allocator(), nil
}

// Register adds (or overwrites) a named preset allocator, mirroring
// mdl/diffusion's init()-time self-registration via allocators[name] = ...
func Register(name string, allocator func() Material) {
	allocators[name] = allocator
}

var allocators = map[string]func() Material{}

func init() {
	Register("polyolefin-generic", func() Material {
		return Preset{Name: "polyolefin-generic", Dval: 1e-14, Kval: 1.0, RhoVal: 910}
	})
	Register("pet-generic", func() Material {
		return Preset{Name: "pet-generic", Dval: 1e-16, Kval: 1.0, RhoVal: 1350}
	})
}

// FromParams builds a Preset by connecting named parameters out of a
// gosl/fun.Prms parameter list, the same Connect-based pattern
// mdl/diffusion.M1.Init uses for its own coefficients.
func FromParams(name string, prms fun.Prms) (Material, error) {
	p := Preset{Name: name}
	prms.Connect(&p.Dval, "D", name+": diffusivity")
	prms.Connect(&p.Kval, "k", name+": partition coefficient")
	prms.Connect(&p.RhoVal, "rho", name+": density")
	if p.Dval <= 0 || p.Kval <= 0 {
		return nil, merr.Invalid("catalog: %q requires positive 'D' and 'k' parameters", name)
	}
	return p, nil
}
