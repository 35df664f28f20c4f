// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"github.com/emer/csrl/conn"
	"github.com/emer/csrl/rl"
	"github.com/emer/etable/minmax"
)

// InputLayerID is the NodeID.Layer value that addresses input nodes
const InputLayerID = -1

// NodeID is a handle to a node: a layer index (or InputLayerID) and the
// index of the node within that layer.
type NodeID struct {
	Layer int
	Node  int
}

// Node is the prediction node at one location of a layer's hidden grid.
// FeedBack connections address the nodes of the layer above (on the top
// layer, the reward pathway of this layer), and Predictive connections
// address hidden units of this layer.
type Node struct {
	FeedBack    conn.Conns `desc:"connections to the layer above, by node index"`
	Predictive  conn.Conns `desc:"connections to hidden units of the same layer"`
	Unit        rl.Unit    `desc:"local reinforcement unit"`
	State       float32    `desc:"prediction of the next hidden state at this location"`
	StatePrev   float32    `desc:"prediction made on the previous tick"`
	Out         float32    `desc:"State clamped to the output range -- what is fed back down"`
	OutPrev     float32    `desc:"Out on the previous tick"`
	FedReward   float32    `desc:"reward fed down from above (global reward on the top layer)"`
	LocalReward float32    `desc:"this node's reward action, centered on the action range -- fed down to the layer below"`
	Attend      float32    `desc:"attention gate on the hidden state passed up"`
	Gate        float32    `desc:"learning gate for feed-back and predictive weights"`
}

// PredFmOut computes State and Out from the fed-back and hidden values
func (nd *Node) PredFmOut(src, hid []float32, rng *minmax.F32) {
	nd.State = nd.FeedBack.Sum(src) + nd.Predictive.Sum(hid)
	nd.Out = rng.ClipVal(nd.State)
}

// ActsFmUnit reads the reserved actions of the unit after its SimStep
func (nd *Node) ActsFmUnit(up *rl.Params, pp *PredParams) {
	nd.LocalReward = Centered(nd.Unit.Action(int(Reward)), &up.ActRange)
	nd.Attend = nd.Unit.Action(int(Attention))
	nd.Gate = pp.GateFmReward(nd.FedReward) * nd.Unit.Action(int(LearnGate))
}

// StepEnd commits the current predictions
func (nd *Node) StepEnd() {
	nd.StatePrev = nd.State
	nd.OutPrev = nd.Out
}

// InputNode is the prediction node for one input channel, predicting it
// from layer 0 through FeedBack connections
type InputNode struct {
	Type      InputType  `desc:"type of this input channel"`
	FeedBack  conn.Conns `desc:"connections to layer 0, by node index"`
	Unit      rl.Unit    `desc:"local reinforcement unit"`
	State     float32    `desc:"prediction of the next input value"`
	StatePrev float32    `desc:"prediction made on the previous tick"`
	Out       float32    `desc:"State clamped to the input range -- for action channels, the explored action"`
	OutPrev   float32    `desc:"Out on the previous tick"`
	FedReward float32    `desc:"reward fed down from layer 0"`
	Gate      float32    `desc:"learning gate for feed-back weights"`
}

// ActsFmUnit reads the learning gate of the unit after its SimStep.
// State channels always learn.
func (in *InputNode) ActsFmUnit(pp *PredParams) {
	if in.Type == StateInput {
		in.Gate = 1
		return
	}
	in.Gate = pp.GateFmReward(in.FedReward) * in.Unit.Action(int(LearnGate))
}

// StepEnd commits the current predictions
func (in *InputNode) StepEnd() {
	in.StatePrev = in.State
	in.OutPrev = in.Out
}

// Centered maps a value in rng onto [-1, 1]
func Centered(v float32, rng *minmax.F32) float32 {
	half := 0.5 * (rng.Max - rng.Min)
	if half <= 0 {
		return 0
	}
	return (v - 0.5*(rng.Max+rng.Min)) / half
}

// MeanAt returns the mean of vals over the indexes of cs, or def if cs is empty
func MeanAt(cs conn.Conns, vals []float32, def float32) float32 {
	if len(cs) == 0 {
		return def
	}
	sum := float32(0)
	for ci := range cs {
		sum += vals[cs[ci].Idx]
	}
	return sum / float32(len(cs))
}

// LearnConns applies prediction-error learning to cs: each trace takes up
// predErr times the previous source value, and the weight moves by
// lr * gate * trace.
func LearnConns(cs conn.Conns, predErr float32, srcPrev []float32, lr, gate float32, pp *PredParams) {
	for ci := range cs {
		c := &cs[ci]
		c.Tr = pp.Trace.Accum(c.Tr, predErr*srcPrev[c.Idx])
		c.Wt += pp.DWt.DWt(lr*gate*c.Tr, c.Wt)
	}
}
