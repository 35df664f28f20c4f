// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"github.com/emer/csrl/conn"
	"github.com/emer/csrl/rl"
	"github.com/emer/csrl/sdr"
	"github.com/emer/emergent/evec"
	"github.com/emer/etable/minmax"
)

// PredParams control top-down prediction and the learning of feed-back
// and predictive weights
type PredParams struct {
	FeedBack   float32          `def:"0.1" min:"0" desc:"learning rate for feed-back weights"`
	Predictive float32          `def:"0.1" min:"0" desc:"learning rate for predictive weights"`
	Drift      float32          `def:"0.25" min:"0" max:"1" desc:"learning gate when the reward fed down from above is not positive (1 when positive)"`
	Trace      conn.TraceParams `view:"inline" desc:"traces of prediction error times previous pre-synaptic activity"`
	DWt        conn.DWtParams   `view:"inline" desc:"weight change clamping"`
	OutRange   minmax.F32       `view:"inline" desc:"range the predictions are clamped to"`
}

func (pp *PredParams) Defaults() {
	pp.FeedBack = 0.1
	pp.Predictive = 0.1
	pp.Drift = 0.25
	pp.Trace.Defaults()
	pp.Trace.Decay = 0.5
	pp.DWt.Defaults()
	pp.OutRange.Set(0, 1)
}

func (pp *PredParams) Update() {
	pp.Trace.Update()
	pp.DWt.Update()
}

// GateFmReward returns the reward-dependent learning gate factor
func (pp *PredParams) GateFmReward(fed float32) float32 {
	if fed > 0 {
		return 1
	}
	return pp.Drift
}

// LayerDesc is the configuration of one hierarchy layer.  Structural fields
// (sizes, radii, counts) are fixed by Build; the rest may be styled.
type LayerDesc struct {
	Width         int             `min:"1" desc:"width of the hidden grid (= number of prediction nodes per row)"`
	Height        int             `min:"1" desc:"height of the hidden grid"`
	Radii         sdr.Radii       `view:"inline" desc:"coder receptive, recurrent and lateral radii"`
	Predictive    int             `def:"1" desc:"radius of same-layer predictive connections"`
	FeedBack      int             `def:"1" desc:"radius of feed-back connections into the layer above -- on the top layer, into its own nodes for the reward pathway"`
	NCells        int             `def:"8" min:"1" desc:"number of cells in each node's reinforcement unit"`
	NRecurrent    int             `def:"0" min:"0" desc:"number of extra actions per node that are fed back as inputs on the next tick"`
	RewardOffsets bool            `desc:"on the top layer, add a fixed random offset in [-1, 1] per node to the reward pathway so nodes do not collapse onto identical estimates"`
	CoderRL       bool            `desc:"coder learns with reward modulation from the nodes' local rewards instead of unsupervised"`
	Coder         sdr.ActParams   `view:"inline" desc:"coder spiking dynamics"`
	CoderLearn    sdr.LearnParams `view:"inline" desc:"coder learning"`
	Unit          rl.Params       `view:"inline" desc:"reinforcement unit params for every node"`
	Pred          PredParams      `view:"inline" desc:"prediction and feed-back / predictive learning"`
}

func (ld *LayerDesc) Defaults() {
	if ld.Width == 0 {
		ld.Width = 4
	}
	if ld.Height == 0 {
		ld.Height = 4
	}
	ld.Radii.Defaults()
	ld.Predictive = 1
	ld.FeedBack = 1
	ld.NCells = 8
	ld.NRecurrent = 0
	ld.Coder.Defaults()
	ld.CoderLearn.Defaults()
	ld.Unit.Defaults()
	ld.Pred.Defaults()
}

func (ld *LayerDesc) Update() {
	ld.Coder.Update()
	ld.CoderLearn.Update()
	ld.Unit.Update()
	ld.Pred.Update()
}

// Size returns the hidden grid size
func (ld *LayerDesc) Size() evec.Vec2i {
	return evec.Vec2i{X: ld.Width, Y: ld.Height}
}

// NActions returns the number of actions of each node's unit
func (ld *LayerDesc) NActions() int {
	return int(ActionTypeN) + ld.NRecurrent
}

// InputDesc is the configuration of the input-prediction nodes
type InputDesc struct {
	FeedBack   int              `def:"1" desc:"radius of feed-back connections into layer 0"`
	NCells     int              `def:"8" min:"1" desc:"number of cells in each input node's reinforcement unit"`
	NRecurrent int              `def:"0" min:"0" desc:"number of extra actions per input node fed back as inputs on the next tick"`
	Unit       rl.Params        `view:"inline" desc:"reinforcement unit params for the input nodes"`
	Pred       PredParams       `view:"inline" desc:"prediction and feed-back learning -- OutRange is the range of input predictions and actions"`
	Explore    rl.ExploreParams `view:"inline" desc:"exploration of action-typed input channels around their prediction"`
}

func (id *InputDesc) Defaults() {
	id.FeedBack = 1
	id.NCells = 8
	id.NRecurrent = 0
	id.Unit.Defaults()
	id.Pred.Defaults()
	id.Pred.OutRange.Set(-1, 1)
	id.Explore.Defaults()
}

func (id *InputDesc) Update() {
	id.Unit.Update()
	id.Pred.Update()
}

// NActions returns the number of actions of each input node's unit
func (id *InputDesc) NActions() int {
	return int(ActionTypeN) + id.NRecurrent
}
