// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"github.com/emer/csrl/conn"
	"github.com/emer/etable/minmax"
)

// rl.Params contains all the parameters for a reinforcement Unit.
// Units are pure state -- the Params are held by the owner of a set
// of units (e.g., a hierarchy layer) and passed into SimStep.
type Params struct {
	Sparsity    float32          `def:"0.125" min:"0" max:"1" desc:"target fraction of active cells -- a cell is active iff fewer than Sparsity * NCells cells have strictly higher excitation"`
	EncodeIters int              `def:"3" min:"1" desc:"number of excitation / competition passes when encoding the inputs"`
	Leak        float32          `def:"0.1" min:"0" max:"1" desc:"leak of the excitation accumulator across encoding passes"`
	Gamma       float32          `def:"0.99" min:"0" max:"1" desc:"TD discount factor"`
	Trace       conn.TraceParams `view:"inline" desc:"eligibility traces for TD learning -- Decay is gamma * lambda"`
	Lrate       LrateParams      `view:"inline" desc:"learning rates"`
	DWt         conn.DWtParams   `view:"inline" desc:"weight change clamping for TD-driven weights"`
	Derive      DeriveParams     `view:"inline" desc:"action derivation by ascent on the Q estimate"`
	Explore     ExploreParams    `view:"inline" desc:"exploration around the derived action"`
	Surprise    SurpriseParams   `view:"inline" desc:"gating of reconstruction learning by TD surprise"`
	ActRange    minmax.F32       `view:"inline" desc:"range of action values"`
}

func (up *Params) Defaults() {
	up.Sparsity = 0.125
	up.EncodeIters = 3
	up.Leak = 0.1
	up.Gamma = 0.99
	up.Trace.Defaults()
	up.Trace.Decay = 0.97
	up.Lrate.Defaults()
	up.DWt.Defaults()
	up.Derive.Defaults()
	up.Explore.Defaults()
	up.Surprise.Defaults()
	up.ActRange.Set(0, 1)
}

// Update must be called after any changes to parameters
func (up *Params) Update() {
	if up.EncodeIters < 1 {
		up.EncodeIters = 1
	}
	up.Trace.Update()
	up.DWt.Update()
	up.Derive.Update()
}

// NActiveMax returns the (fractional) number of cells that may be more
// excited than an active cell
func (up *Params) NActiveMax(ncells int) float32 {
	return up.Sparsity * float32(ncells)
}

// LrateParams are the learning rates for the different weights of a Unit
type LrateParams struct {
	FF  float32 `def:"0.01" min:"0" desc:"reconstructive feed-forward weights, learned from reconstruction error"`
	Lat float32 `def:"0.01" min:"0" desc:"lateral inhibitory weights"`
	Thr float32 `def:"0.01" min:"0" desc:"cell thresholds"`
	Q   float32 `def:"0.01" min:"0" desc:"Q read-out weights, learned from TD error"`
	Act float32 `def:"0.01" min:"0" desc:"action pathway weights and biases, learned from TD error"`
}

func (lr *LrateParams) Defaults() {
	lr.FF = 0.01
	lr.Lat = 0.01
	lr.Thr = 0.01
	lr.Q = 0.01
	lr.Act = 0.01
}

// DeriveParams control derivation of the greedy action
type DeriveParams struct {
	Type  DeriveType `desc:"how the ascent step is taken from the Q gradient"`
	Iters int        `def:"5" min:"0" desc:"number of ascent iterations per tick, starting from the previous action"`
	Alpha float32    `def:"0.1" min:"0" desc:"ascent step size"`
	Noise float32    `def:"0" min:"0" desc:"standard deviation of gaussian perturbation added at each ascent iteration -- 0 = exploration noise only at the final step"`
}

func (dp *DeriveParams) Defaults() {
	dp.Type = GradAscent
	dp.Iters = 5
	dp.Alpha = 0.1
	dp.Noise = 0
}

func (dp *DeriveParams) Update() {
	if dp.Iters < 0 {
		dp.Iters = 0
	}
}

// ExploreParams control exploration around the derived action
type ExploreParams struct {
	StdDev float32 `def:"0.05" min:"0" desc:"standard deviation of gaussian perturbation of each action"`
	Break  float32 `def:"0.01" min:"0" max:"1" desc:"probability of replacing an action with a uniform random value in ActRange"`
}

func (ep *ExploreParams) Defaults() {
	ep.StdDev = 0.05
	ep.Break = 0.01
}

// SurpriseParams gate reconstruction learning by how surprising the
// current TD error is relative to its running average
type SurpriseParams struct {
	On     bool    `desc:"gate reconstruction learning by sigmoid(Factor * (TD^2 - AvgSurprise))"`
	Factor float32 `def:"4" viewif:"On" desc:"gain of the surprise gate"`
	Dt     float32 `def:"0.01" viewif:"On" min:"0" max:"1" desc:"rate of the running average of TD^2"`
}

func (sp *SurpriseParams) Defaults() {
	sp.On = true
	sp.Factor = 4
	sp.Dt = 0.01
}

// Gate returns the learning gate for the given squared TD error and
// running average surprise
func (sp *SurpriseParams) Gate(surp, avg float32) float32 {
	if !sp.On {
		return 1
	}
	return conn.Sigmoid(sp.Factor * (surp - avg))
}

// AvgFmSurprise updates the running average surprise
func (sp *SurpriseParams) AvgFmSurprise(surp float32, avg *float32) {
	*avg += sp.Dt * (surp - *avg)
}

// Sign returns -1, 0, 1 by sign of x
func Sign(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
