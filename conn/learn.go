// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
)

///////////////////////////////////////////////////////////////////////
//  learn.go contains the shared learning params for connections

// TraceRule determines how a new co-activity term is composed with the
// decayed eligibility trace.
type TraceRule int

//go:generate stringer -type=TraceRule

var KiT_TraceRule = kit.Enums.AddEnum(TraceRuleN, kit.NotBitFlag, nil)

func (ev TraceRule) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *TraceRule) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// TraceAdd accumulates: Tr = Decay * Tr + act
	TraceAdd TraceRule = iota

	// TraceMax replaces: Tr = max(Decay * Tr, act)
	TraceMax

	TraceRuleN
)

// TraceParams control eligibility trace dynamics
type TraceParams struct {
	Rule  TraceRule `desc:"how new activity is composed with the decayed trace"`
	Decay float32   `def:"0.98" min:"0" max:"1" desc:"per-step geometric decay of the trace (gamma * lambda for TD traces)"`
}

func (tp *TraceParams) Defaults() {
	tp.Rule = TraceAdd
	tp.Decay = 0.98
}

func (tp *TraceParams) Update() {
}

// Accum returns the new trace given the current trace and new activity
func (tp *TraceParams) Accum(tr, act float32) float32 {
	if tp.Rule == TraceMax {
		return math32.Max(tp.Decay*tr, act)
	}
	return tp.Decay*tr + act
}

// DWtParams are weight change regularization params
type DWtParams struct {
	Decay float32 `def:"0" min:"0" desc:"weight decay -- subtracted as Decay * Wt from each weight change"`
	Max   float32 `def:"0.5" min:"0" desc:"maximum absolute weight change per step -- 0 = no clamping"`
}

func (dp *DWtParams) Defaults() {
	dp.Decay = 0
	dp.Max = 0.5
}

func (dp *DWtParams) Update() {
}

// DWt returns the regularized weight change for raw change dwt on weight wt
func (dp *DWtParams) DWt(dwt, wt float32) float32 {
	dwt -= dp.Decay * wt
	if dp.Max > 0 {
		if dwt > dp.Max {
			dwt = dp.Max
		} else if dwt < -dp.Max {
			dwt = -dp.Max
		}
	}
	return dwt
}

// InitParams are the initial weight and threshold params used when
// building a population with random connections.
type InitParams struct {
	Wt    minmax.F32 `desc:"range of initial excitatory / reconstructive weights (uniform)"`
	Inhib minmax.F32 `desc:"range of initial lateral inhibitory weights (uniform)"`
	Thr   float32    `def:"0.5" desc:"initial adaptive threshold"`
}

func (ip *InitParams) Defaults() {
	ip.Wt.Set(-0.01, 0.01)
	ip.Inhib.Set(0, 0.01)
	ip.Thr = 0.5
}

func (ip *InitParams) Update() {
}

// RandWt returns a random initial weight
func (ip *InitParams) RandWt(rnd erand.Rand) float32 {
	return Uniform(&ip.Wt, rnd)
}

// RandInhib returns a random initial inhibitory weight
func (ip *InitParams) RandInhib(rnd erand.Rand) float32 {
	return Uniform(&ip.Inhib, rnd)
}

// Uniform returns a uniform random value within range mm
func Uniform(mm *minmax.F32, rnd erand.Rand) float32 {
	mid := 0.5 * (mm.Min + mm.Max)
	half := 0.5 * (mm.Max - mm.Min)
	return float32(erand.UniformMeanRange(float64(mid), float64(half), -1, rnd))
}

// Sigmoid is the logistic function 1 / (1 + e^-x)
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
