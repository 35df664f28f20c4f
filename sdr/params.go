// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdr

import (
	"github.com/emer/csrl/conn"
)

// Radii are the spatial neighborhood radii used to wire the coder at construction
type Radii struct {
	Receptive int `def:"2" desc:"radius of the feed-forward receptive field in the visible grid, around the proportionally mapped center"`
	Recurrent int `def:"2" desc:"radius of recurrent connections to other hidden units (previous state) -- negative = no recurrence"`
	Lateral   int `def:"2" desc:"radius of lateral inhibitory connections among hidden units"`
}

func (rd *Radii) Defaults() {
	rd.Receptive = 2
	rd.Recurrent = 2
	rd.Lateral = 2
}

// ActParams control the spiking settle / measure dynamics of Activate
type ActParams struct {
	SettleIters  int     `def:"20" min:"0" desc:"number of spiking iterations before the firing rate is measured"`
	MeasureIters int     `def:"20" min:"1" desc:"number of spiking iterations over which the firing rate State is averaged"`
	Leak         float32 `def:"0.1" min:"0" max:"1" desc:"leak of the activation accumulator per iteration: Act = (1-Leak) * Act + excite - inhib"`
	Noise        float32 `def:"0" min:"0" desc:"standard deviation of gaussian noise added to the activation each iteration -- 0 = none"`
}

func (ap *ActParams) Defaults() {
	ap.SettleIters = 20
	ap.MeasureIters = 20
	ap.Leak = 0.1
	ap.Noise = 0
}

func (ap *ActParams) Update() {
	if ap.MeasureIters < 1 {
		ap.MeasureIters = 1
	}
}

// LearnParams control learning in Learn and LearnRL
type LearnParams struct {
	FF       float32          `def:"0.05" min:"0" desc:"learning rate for feed-forward (reconstructive) weights"`
	Rec      float32          `def:"0.05" min:"0" desc:"learning rate for recurrent weights"`
	Lat      float32          `def:"0.05" min:"0" desc:"learning rate for lateral inhibitory weights"`
	Thr      float32          `def:"0.01" min:"0" desc:"learning rate for the adaptive threshold"`
	Sparsity float32          `def:"0.1" min:"0" max:"1" desc:"target average firing rate -- thresholds drift toward it and lateral weights push pairwise co-activity toward its square"`
	DWt      conn.DWtParams   `view:"inline" desc:"weight decay and maximum weight change"`
	Trace    conn.TraceParams `view:"inline" desc:"eligibility trace params for reward-modulated learning"`
}

func (lp *LearnParams) Defaults() {
	lp.FF = 0.05
	lp.Rec = 0.05
	lp.Lat = 0.05
	lp.Thr = 0.01
	lp.Sparsity = 0.1
	lp.DWt.Defaults()
	lp.Trace.Defaults()
}

func (lp *LearnParams) Update() {
	lp.DWt.Update()
	lp.Trace.Update()
}

// SparsitySq returns the target pairwise co-activity
func (lp *LearnParams) SparsitySq() float32 {
	return lp.Sparsity * lp.Sparsity
}
