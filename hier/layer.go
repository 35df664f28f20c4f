// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"github.com/emer/csrl/sdr"
)

// hier.Layer is one resolution level of the hierarchy: a sparse coder and
// one prediction node per hidden unit.
type Layer struct {
	Nm    string    `desc:"name of the layer -- used for params and weights files"`
	Cls   string    `desc:"space-separated classes for params styling"`
	Index int       `desc:"index of this layer in the hierarchy"`
	Desc  LayerDesc `desc:"configuration"`
	Coder sdr.Coder `view:"-" desc:"sparse coder"`
	Nodes []Node    `view:"-" desc:"prediction nodes, one per hidden unit"`

	hid      []float32
	hidPrev  []float32
	outs     []float32
	outsPrev []float32
	rews     []float32
}

// params.Styler interface
func (ly *Layer) TypeName() string { return "Layer" }
func (ly *Layer) Class() string    { return ly.Cls }
func (ly *Layer) Name() string     { return ly.Nm }

// NNodes returns the number of prediction nodes
func (ly *Layer) NNodes() int { return len(ly.Nodes) }

func (ly *Layer) allocVals() {
	nn := len(ly.Nodes)
	ly.hid = make([]float32, nn)
	ly.hidPrev = make([]float32, nn)
	ly.outs = make([]float32, nn)
	ly.outsPrev = make([]float32, nn)
	ly.rews = make([]float32, nn)
}

// HidFmCoder copies the hidden states of the coder
func (ly *Layer) HidFmCoder() {
	for hi := range ly.hid {
		ly.hid[hi] = ly.Coder.HiddenState(hi)
		ly.hidPrev[hi] = ly.Coder.HiddenStatePrev(hi)
	}
}

// OutsFmNodes copies the node outputs
func (ly *Layer) OutsFmNodes() {
	for ni := range ly.Nodes {
		ly.outs[ni] = ly.Nodes[ni].Out
	}
}

// RewsFmNodes copies the node local rewards
func (ly *Layer) RewsFmNodes() {
	for ni := range ly.Nodes {
		ly.rews[ni] = ly.Nodes[ni].LocalReward
	}
}

// StepEnd commits the state of the coder and nodes
func (ly *Layer) StepEnd() {
	ly.Coder.StepEnd()
	for ni := range ly.Nodes {
		ly.Nodes[ni].StepEnd()
	}
	copy(ly.outsPrev, ly.outs)
}

// InputLayer holds the input channels and their prediction nodes
type InputLayer struct {
	Nm    string      `desc:"name -- used for params and weights files"`
	Cls   string      `desc:"space-separated classes for params styling"`
	Desc  InputDesc   `desc:"configuration"`
	Vals  []float32   `desc:"current input values -- set by SetState, and by the hierarchy for action channels"`
	Nodes []InputNode `view:"-" desc:"prediction nodes, one per input channel"`
}

// params.Styler interface
func (il *InputLayer) TypeName() string { return "Input" }
func (il *InputLayer) Class() string    { return il.Cls }
func (il *InputLayer) Name() string     { return il.Nm }

// StepEnd commits the state of the nodes
func (il *InputLayer) StepEnd() {
	for ni := range il.Nodes {
		il.Nodes[ni].StepEnd()
	}
}
