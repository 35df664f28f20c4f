// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"errors"
	"fmt"
	"log"

	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/evec"
	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
)

// ErrConfig is wrapped by all errors reporting a malformed configuration
// or an out-of-range input
var ErrConfig = errors.New("hier: configuration error")

// hier.Hierarchy stacks resolution levels, each a sparse coder with one
// prediction node per hidden unit.  Hidden codes flow up, gated by the
// nodes' attention actions; predictions and local rewards flow down; and
// the input-prediction nodes expose predictions of the state channels and
// the exploratory values of the action channels.
type Hierarchy struct {
	Nm            string                 `desc:"name of the hierarchy -- used for weights files"`
	InSize        evec.Vec2i             `desc:"size of the input grid"`
	Input         InputLayer             `desc:"input channels and their prediction nodes"`
	Layers        []*Layer               `desc:"layers, from finest (0) to coarsest"`
	RewardOffsets []float32              `desc:"per-node offsets added to the reward pathway of the top layer"`
	NThreads      int                    `desc:"number of goroutines used for the parallel-for over nodes in phases without random draws -- <= 1 = none"`
	MetaData      map[string]string      `desc:"metadata saved with the weights"`
	FunTimes      map[string]*timer.Time `view:"-" desc:"timers for each major function (step of processing)"`

	built      bool
	actIdxs    []int
	topSrc     []float32
	topSrcPrev []float32
}

// Config sets the structure of the hierarchy: the input grid size and
// the type of each input channel, and one LayerDesc per layer,
// finest first.  Build must be called after Config (and any ApplyParams).
func (hr *Hierarchy) Config(name string, inSize evec.Vec2i, inTypes []InputType, inDesc *InputDesc, descs []LayerDesc) error {
	if inSize.X <= 0 || inSize.Y <= 0 {
		return fmt.Errorf("%w: input size %v", ErrConfig, inSize)
	}
	nin := conn.Len(inSize)
	if len(inTypes) != nin {
		return fmt.Errorf("%w: %d input types for %d input channels", ErrConfig, len(inTypes), nin)
	}
	if len(descs) == 0 {
		return fmt.Errorf("%w: no layers", ErrConfig)
	}
	for li := range descs {
		ld := &descs[li]
		if ld.Width <= 0 || ld.Height <= 0 || ld.NCells <= 0 || ld.NRecurrent < 0 {
			return fmt.Errorf("%w: layer %d: size %dx%d cells %d recurrent %d", ErrConfig, li, ld.Width, ld.Height, ld.NCells, ld.NRecurrent)
		}
	}
	if inDesc == nil {
		return fmt.Errorf("%w: nil input desc", ErrConfig)
	}
	if inDesc.NCells <= 0 || inDesc.NRecurrent < 0 {
		return fmt.Errorf("%w: input cells %d recurrent %d", ErrConfig, inDesc.NCells, inDesc.NRecurrent)
	}
	hr.Nm = name
	hr.InSize = inSize
	hr.Input = InputLayer{Nm: "Input", Desc: *inDesc}
	hr.Input.Vals = make([]float32, nin)
	hr.Input.Nodes = make([]InputNode, nin)
	hr.actIdxs = nil
	for i, it := range inTypes {
		hr.Input.Nodes[i].Type = it
		if it == ActionInput {
			hr.actIdxs = append(hr.actIdxs, i)
		}
	}
	hr.Layers = make([]*Layer, len(descs))
	for li := range descs {
		hr.Layers[li] = &Layer{Nm: fmt.Sprintf("L%d", li), Index: li, Desc: descs[li]}
	}
	hr.built = false
	return nil
}

// Build creates all units and connections with random weights drawn
// using ip, with rnd as the only source of random numbers
func (hr *Hierarchy) Build(ip *conn.InitParams, rnd erand.Rand) error {
	if len(hr.Layers) == 0 {
		return fmt.Errorf("%w: Build called before Config", ErrConfig)
	}
	hr.UpdateParams()
	nl := len(hr.Layers)
	for li, ly := range hr.Layers {
		vis := hr.InSize
		if li > 0 {
			vis = hr.Layers[li-1].Desc.Size()
		}
		sz := ly.Desc.Size()
		if err := ly.Coder.CreateRandom(vis, sz, ly.Desc.Radii, ip, rnd); err != nil {
			return fmt.Errorf("%w: layer %s: %v", ErrConfig, ly.Nm, err)
		}
		nn := conn.Len(sz)
		ly.Nodes = make([]Node, nn)
		fbSize := sz
		if li < nl-1 {
			fbSize = hr.Layers[li+1].Desc.Size()
		}
		for ni := range ly.Nodes {
			nd := &ly.Nodes[ni]
			pos := conn.Coord(ni, sz)
			nd.FeedBack = randConns(conn.Neighborhood(conn.Project(pos, sz, fbSize), ly.Desc.FeedBack, fbSize, false), ip, rnd)
			nd.Predictive = randConns(conn.Neighborhood(pos, ly.Desc.Predictive, sz, false), ip, rnd)
			if err := nd.FeedBack.Validate(conn.Len(fbSize)); err != nil {
				return fmt.Errorf("%w: layer %s node %d feed-back: %v", ErrConfig, ly.Nm, ni, err)
			}
			if err := nd.Predictive.Validate(nn); err != nil {
				return fmt.Errorf("%w: layer %s node %d predictive: %v", ErrConfig, ly.Nm, ni, err)
			}
			nin := len(nd.FeedBack) + len(nd.Predictive) + ly.Desc.NRecurrent
			if err := nd.Unit.CreateRandom(nin, ly.Desc.NActions(), ly.Desc.NCells, ip, rnd); err != nil {
				return fmt.Errorf("%w: layer %s node %d: %v", ErrConfig, ly.Nm, ni, err)
			}
		}
		ly.allocVals()
	}

	top := hr.Layers[nl-1]
	ntop := len(top.Nodes)
	hr.RewardOffsets = make([]float32, ntop)
	if top.Desc.RewardOffsets {
		rng := minmax.F32{Min: -1, Max: 1}
		for ni := range hr.RewardOffsets {
			hr.RewardOffsets[ni] = conn.Uniform(&rng, rnd)
		}
	}
	hr.topSrc = make([]float32, ntop)
	hr.topSrcPrev = make([]float32, ntop)

	l0size := hr.Layers[0].Desc.Size()
	id := &hr.Input.Desc
	for i := range hr.Input.Nodes {
		in := &hr.Input.Nodes[i]
		pos := conn.Coord(i, hr.InSize)
		in.FeedBack = randConns(conn.Neighborhood(conn.Project(pos, hr.InSize, l0size), id.FeedBack, l0size, false), ip, rnd)
		if err := in.FeedBack.Validate(conn.Len(l0size)); err != nil {
			return fmt.Errorf("%w: input node %d feed-back: %v", ErrConfig, i, err)
		}
		if err := in.Unit.CreateRandom(len(in.FeedBack)+id.NRecurrent, id.NActions(), id.NCells, ip, rnd); err != nil {
			return fmt.Errorf("%w: input node %d: %v", ErrConfig, i, err)
		}
	}
	if hr.FunTimes == nil {
		hr.FunTimes = make(map[string]*timer.Time)
	}
	hr.built = true
	return nil
}

// CreateRandom configures and builds the hierarchy in one step
func (hr *Hierarchy) CreateRandom(name string, inSize evec.Vec2i, inTypes []InputType, inDesc *InputDesc, descs []LayerDesc, ip *conn.InitParams, rnd erand.Rand) error {
	if err := hr.Config(name, inSize, inTypes, inDesc, descs); err != nil {
		return err
	}
	return hr.Build(ip, rnd)
}

func randConns(idxs []int, ip *conn.InitParams, rnd erand.Rand) conn.Conns {
	cs := make(conn.Conns, len(idxs))
	for ci, idx := range idxs {
		cs[ci] = conn.Connection{Idx: int32(idx), Wt: ip.RandWt(rnd)}
	}
	return cs
}

// UpdateParams updates all the derived parameter values after changes
func (hr *Hierarchy) UpdateParams() {
	hr.Input.Desc.Update()
	for _, ly := range hr.Layers {
		ly.Desc.Update()
	}
}

// IsBuilt returns true once Build has succeeded
func (hr *Hierarchy) IsBuilt() bool { return hr.built }

// NLayers returns the number of layers
func (hr *Hierarchy) NLayers() int { return len(hr.Layers) }

// NInputs returns the number of input channels
func (hr *Hierarchy) NInputs() int { return len(hr.Input.Vals) }

// Top returns the coarsest layer
func (hr *Hierarchy) Top() *Layer { return hr.Layers[len(hr.Layers)-1] }

// NodeByID returns the prediction node addressed by id, which must be
// on a layer (not InputLayerID)
func (hr *Hierarchy) NodeByID(id NodeID) (*Node, error) {
	if id.Layer < 0 || id.Layer >= len(hr.Layers) {
		return nil, fmt.Errorf("%w: node %v: no such layer", ErrConfig, id)
	}
	ly := hr.Layers[id.Layer]
	if id.Node < 0 || id.Node >= len(ly.Nodes) {
		return nil, fmt.Errorf("%w: node %v: no such node", ErrConfig, id)
	}
	return &ly.Nodes[id.Node], nil
}

// InputNodeByID returns the input node addressed by id (Layer must be InputLayerID)
func (hr *Hierarchy) InputNodeByID(id NodeID) (*InputNode, error) {
	if id.Layer != InputLayerID || id.Node < 0 || id.Node >= len(hr.Input.Nodes) {
		return nil, fmt.Errorf("%w: input node %v: no such node", ErrConfig, id)
	}
	return &hr.Input.Nodes[id.Node], nil
}

// FeedBackTargets returns the handles of the nodes that the feed-back
// connections of node id address
func (hr *Hierarchy) FeedBackTargets(id NodeID) ([]NodeID, error) {
	var cs conn.Conns
	tl := id.Layer + 1
	if id.Layer == InputLayerID {
		in, err := hr.InputNodeByID(id)
		if err != nil {
			return nil, err
		}
		cs = in.FeedBack
		tl = 0
	} else {
		nd, err := hr.NodeByID(id)
		if err != nil {
			return nil, err
		}
		cs = nd.FeedBack
		if id.Layer == len(hr.Layers)-1 {
			tl = id.Layer
		}
	}
	ids := make([]NodeID, len(cs))
	for ci := range cs {
		ids[ci] = NodeID{Layer: tl, Node: int(cs[ci].Idx)}
	}
	return ids, nil
}

// SetState sets the value of input channel idx, for the next SimStep
func (hr *Hierarchy) SetState(idx int, val float32) error {
	if idx < 0 || idx >= len(hr.Input.Vals) {
		return fmt.Errorf("%w: SetState index %d out of range [0, %d)", ErrConfig, idx, len(hr.Input.Vals))
	}
	hr.Input.Vals[idx] = val
	return nil
}

// SetStateXY sets the value of the input channel at grid position x, y
func (hr *Hierarchy) SetStateXY(x, y int, val float32) error {
	if x < 0 || y < 0 || x >= hr.InSize.X || y >= hr.InSize.Y {
		return fmt.Errorf("%w: SetStateXY position %d, %d outside input grid %v", ErrConfig, x, y, hr.InSize)
	}
	hr.Input.Vals[y*hr.InSize.X+x] = val
	return nil
}

// ApplyInput sets all state-typed input channels from tsr, which must have
// one value per input channel (row-major).  Action channels keep the
// value fed back from the previous SimStep.
func (hr *Hierarchy) ApplyInput(tsr etensor.Tensor) error {
	if tsr.Len() != len(hr.Input.Vals) {
		return fmt.Errorf("%w: ApplyInput tensor has %d values for %d input channels", ErrConfig, tsr.Len(), len(hr.Input.Vals))
	}
	for i := range hr.Input.Vals {
		if hr.Input.Nodes[i].Type == StateInput {
			hr.Input.Vals[i] = float32(tsr.FloatVal1D(i))
		}
	}
	return nil
}

// ActionIdxs returns the input channel index of each action
func (hr *Hierarchy) ActionIdxs() []int { return hr.actIdxs }

// NActions returns the number of action-typed input channels
func (hr *Hierarchy) NActions() int { return len(hr.actIdxs) }

// Action returns the exploratory value of action ai (the ai-th action-typed
// input channel), as computed by the last SimStep
func (hr *Hierarchy) Action(ai int) float32 {
	return hr.Input.Nodes[hr.actIdxs[ai]].Out
}

// Prediction returns the prediction for input channel idx made by the last SimStep
func (hr *Hierarchy) Prediction(idx int) float32 {
	return hr.Input.Nodes[idx].Out
}

// PredictionErr returns the mean absolute difference between the current
// values of the state-typed input channels and their predictions.
// Call it after setting the inputs and before SimStep.
func (hr *Hierarchy) PredictionErr() float32 {
	n := 0
	sum := float32(0)
	for i := range hr.Input.Nodes {
		in := &hr.Input.Nodes[i]
		if in.Type != StateInput {
			continue
		}
		d := hr.Input.Vals[i] - in.Out
		if d < 0 {
			d = -d
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// PredictionTensor writes the predictions of all input channels into tsr,
// shaped as the input grid
func (hr *Hierarchy) PredictionTensor(tsr *etensor.Float32) {
	tsr.SetShape([]int{hr.InSize.Y, hr.InSize.X}, nil, []string{"Y", "X"})
	for i := range hr.Input.Nodes {
		tsr.Values[i] = hr.Input.Nodes[i].Out
	}
}

// SimStep runs one complete tick given the reward for the previous action:
// bottom-up coding, top-down prediction, reinforcement units, learning
// (if learn), and commits all state.  All random draws come from rnd, in a
// fixed order, so a fixed seed and input sequence reproduce the same outputs.
func (hr *Hierarchy) SimStep(reward float32, learn bool, rnd erand.Rand) {
	if !hr.built {
		log.Println("hier.Hierarchy SimStep: hierarchy not built")
		return
	}
	hr.ActivateUp(rnd)
	hr.PredictDown(reward, rnd)
	hr.UnitsDown(reward, learn, rnd)
	if learn {
		hr.Learn()
	}
	for _, ai := range hr.actIdxs {
		hr.Input.Vals[ai] = hr.Input.Nodes[ai].Out
	}
	hr.StepEnd()
}

// ActivateUp activates the coders bottom-up.  The input to layer l+1 is the
// hidden state of layer l times its node's attention action.
func (hr *Hierarchy) ActivateUp(rnd erand.Rand) {
	hr.FunTimerStart("ActivateUp")
	for li, ly := range hr.Layers {
		if li == 0 {
			for vi, v := range hr.Input.Vals {
				ly.Coder.SetInput(vi, v)
			}
		} else {
			lw := hr.Layers[li-1]
			for vi := range lw.Nodes {
				ly.Coder.SetInput(vi, lw.Coder.HiddenState(vi)*lw.Nodes[vi].Attend)
			}
		}
		ly.Coder.Activate(&ly.Desc.Coder, rnd)
		ly.HidFmCoder()
	}
	hr.FunTimerStop("ActivateUp")
}

// fbSrc returns the current and previous values addressed by the feed-back
// connections of layer li
func (hr *Hierarchy) fbSrc(li int) (src, srcPrev []float32) {
	if li == len(hr.Layers)-1 {
		return hr.topSrc, hr.topSrcPrev
	}
	up := hr.Layers[li+1]
	return up.outs, up.outsPrev
}

// PredictDown computes the predictions top-down, then the input
// predictions, and explores the action channels
func (hr *Hierarchy) PredictDown(reward float32, rnd erand.Rand) {
	for ni := range hr.topSrc {
		hr.topSrc[ni] = reward + hr.RewardOffsets[ni]
	}
	for li := len(hr.Layers) - 1; li >= 0; li-- {
		ly := hr.Layers[li]
		src, _ := hr.fbSrc(li)
		rng := &ly.Desc.Pred.OutRange
		hr.ThrNodeFun(ly, func(nd *Node, ni int) {
			nd.PredFmOut(src, ly.hid, rng)
		}, "PredictDown")
		ly.OutsFmNodes()
	}
	l0 := hr.Layers[0]
	il := &hr.Input
	rng := &il.Desc.Pred.OutRange
	hr.ThrFun(len(il.Nodes), func(i int) {
		in := &il.Nodes[i]
		in.State = in.FeedBack.Sum(l0.outs)
		in.Out = rng.ClipVal(in.State)
	}, "PredictInput")
	ex := &il.Desc.Explore
	for _, ai := range hr.actIdxs {
		in := &il.Nodes[ai]
		if ex.Break > 0 && erand.BoolP(float64(ex.Break), -1, rnd) {
			in.Out = conn.Uniform(rng, rnd)
			continue
		}
		if ex.StdDev > 0 {
			in.Out = rng.ClipVal(in.Out + ex.StdDev*float32(rnd.NormFloat64(-1)))
		}
	}
}

// UnitsDown runs the reinforcement units top-down.  Each unit sees the
// values its feed-back connections address (local rewards of the layer
// above, or the reward pathway on the top layer), the hidden states its
// predictive connections address, and its own recurrent actions.
func (hr *Hierarchy) UnitsDown(reward float32, learn bool, rnd erand.Rand) {
	hr.FunTimerStart("UnitsDown")
	nl := len(hr.Layers)
	for li := nl - 1; li >= 0; li-- {
		ly := hr.Layers[li]
		top := li == nl-1
		src := hr.topSrc
		if !top {
			src = hr.Layers[li+1].rews
		}
		up := &ly.Desc.Unit
		for ni := range ly.Nodes {
			nd := &ly.Nodes[ni]
			if top {
				nd.FedReward = reward
			} else {
				nd.FedReward = MeanAt(nd.FeedBack, src, reward)
			}
			un := &nd.Unit
			k := 0
			for ci := range nd.FeedBack {
				un.SetInput(k, src[nd.FeedBack[ci].Idx])
				k++
			}
			for ci := range nd.Predictive {
				un.SetInput(k, ly.hid[nd.Predictive[ci].Idx])
				k++
			}
			for r := 0; r < ly.Desc.NRecurrent; r++ {
				un.SetInput(k, un.Action(int(ActionTypeN)+r))
				k++
			}
			un.SimStep(up, reward, learn, rnd)
			nd.ActsFmUnit(up, &ly.Desc.Pred)
		}
		ly.RewsFmNodes()
	}

	il := &hr.Input
	l0 := hr.Layers[0]
	up := &il.Desc.Unit
	for i := range il.Nodes {
		in := &il.Nodes[i]
		in.FedReward = MeanAt(in.FeedBack, l0.rews, reward)
		un := &in.Unit
		k := 0
		for ci := range in.FeedBack {
			un.SetInput(k, l0.rews[in.FeedBack[ci].Idx])
			k++
		}
		for r := 0; r < il.Desc.NRecurrent; r++ {
			un.SetInput(k, un.Action(int(ActionTypeN)+r))
			k++
		}
		un.SimStep(up, reward, learn, rnd)
		in.ActsFmUnit(&il.Desc.Pred)
	}
	hr.FunTimerStop("UnitsDown")
}

// Learn updates the feed-back and predictive weights from the prediction
// errors, gated per node, and then the coders
func (hr *Hierarchy) Learn() {
	for li, ly := range hr.Layers {
		_, srcPrev := hr.fbSrc(li)
		pp := &ly.Desc.Pred
		hr.ThrNodeFun(ly, func(nd *Node, ni int) {
			perr := ly.hid[ni] - nd.StatePrev
			LearnConns(nd.FeedBack, perr, srcPrev, pp.FeedBack, nd.Gate, pp)
			LearnConns(nd.Predictive, perr, ly.hidPrev, pp.Predictive, nd.Gate, pp)
		}, "LearnPred")
	}
	il := &hr.Input
	l0 := hr.Layers[0]
	pp := &il.Desc.Pred
	hr.ThrFun(len(il.Nodes), func(i int) {
		in := &il.Nodes[i]
		perr := il.Vals[i] - in.StatePrev
		LearnConns(in.FeedBack, perr, l0.outsPrev, pp.FeedBack, in.Gate, pp)
	}, "LearnInput")

	hr.FunTimerStart("LearnCoder")
	for _, ly := range hr.Layers {
		if ly.Desc.CoderRL {
			if err := ly.Coder.LearnRL(ly.rews, &ly.Desc.CoderLearn); err != nil {
				log.Println(err)
			}
		} else {
			ly.Coder.Learn(&ly.Desc.CoderLearn)
		}
	}
	hr.FunTimerStop("LearnCoder")
}

// StepEnd commits all state -> state prev buffers
func (hr *Hierarchy) StepEnd() {
	for _, ly := range hr.Layers {
		ly.StepEnd()
	}
	hr.Input.StepEnd()
	copy(hr.topSrcPrev, hr.topSrc)
}
