// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"github.com/emer/emergent/params"
	"github.com/goki/gi/giv"
)

// ApplyParams applies given parameter style Sheet to the input layer and
// all layers.  Selectors match "Input" or "Layer" types, .Class and #Name,
// and paths address the Desc fields, e.g., "Layer.Desc.Pred.Drift".
// Calls UpdateParams on anything set to ensure derived parameters are all updated.
// Structural fields (sizes, radii, cell counts) only take effect in Build.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
// returns true if any params were set, and error if there were any errors.
func (hr *Hierarchy) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	app, err := pars.Apply(&hr.Input, setMsg)
	if app {
		hr.Input.Desc.Update()
		applied = true
	}
	if err != nil {
		rerr = err
	}
	for _, ly := range hr.Layers {
		app, err := pars.Apply(ly, setMsg)
		if app {
			ly.Desc.Update()
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// NonDefaultParams returns a listing of all parameters in the hierarchy that
// are not at their default values -- useful for setting param styles etc.
func (hr *Hierarchy) NonDefaultParams() string {
	nds := giv.StructNonDefFieldsStr(&hr.Input.Desc, hr.Input.Nm)
	for _, ly := range hr.Layers {
		nds += giv.StructNonDefFieldsStr(&ly.Desc, ly.Nm)
	}
	return nds
}
