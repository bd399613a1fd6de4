// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/ovitrac/patankar/chain"
	"github.com/ovitrac/patankar/post"
	"github.com/ovitrac/patankar/simio"
)

func main() {

	// catch errors; this is the only place chk.Panic/recover is allowed to
	// surface, keeping the library itself panic-free.
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".json", true)
	verbose := io.ArgToBool(1, true)
	outpath := io.ArgToString(2, "")

	if verbose {
		io.PfWhite("\nPatankar -- one-dimensional food-packaging migration solver\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"scenario filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"output path (optional)", "outpath", outpath,
		))
	}

	sc, err := simio.Load(fnamepath)
	if err != nil {
		chk.Panic("failed to load scenario:\n%v", err)
	}

	ml, err := sc.Multilayer()
	if err != nil {
		chk.Panic("invalid multilayer in scenario:\n%v", err)
	}

	contacts, err := sc.Contacts()
	if err != nil {
		chk.Panic("invalid stages in scenario:\n%v", err)
	}

	nMin := sc.NMin
	if nMin < 1 {
		nMin = 1
	}

	chainer, err := chain.NewChainer(ml, nMin)
	if err != nil {
		chk.Panic("failed to build chainer:\n%v", err)
	}

	stages, merged, err := chainer.Run(contacts)
	if err != nil {
		chk.Panic("simulation run failed:\n%v", err)
	}

	if verbose {
		io.Pf("\nran %d stage(s)\n", len(stages))
		for i, s := range stages {
			last := s.Final()
			io.Pf("  stage %d %q: final tau=%v, C_F=%v\n", i+1, s.Name, last.T, last.CF)
		}
		final := merged.Final()
		io.PfWhite("\nmerged result: final tau=%v, C_F=%v\n", final.T, final.CF)
		if len(merged.Warnings) > 0 {
			io.PfYel("warnings:\n")
			for _, w := range merged.Warnings {
				io.Pf("  - %v\n", w)
			}
		}
	}

	if outpath != "" {
		final := merged.Final()
		profile, perr := post.ProfilePairs(merged.Mesh, final.C)
		if perr != nil {
			chk.Panic("failed to build final profile:\n%v", perr)
		}
		buf, jerr := json.MarshalIndent(struct {
			Tau     float64      `json:"tau"`
			CF      float64      `json:"CF"`
			Profile [][2]float64 `json:"profile"`
		}{final.T, final.CF, profile}, "", "  ")
		if jerr != nil {
			chk.Panic("failed to marshal final profile:\n%v", jerr)
		}
		dir, base := path.Split(outpath)
		io.WriteFileSD(dir, base, string(buf))
		if verbose {
			io.Pf("\nwrote final profile to %v\n", outpath)
		}
	}
}
