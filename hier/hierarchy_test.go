// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/evec"
	"github.com/emer/emergent/params"
	"github.com/emer/etable/etensor"
	"github.com/goki/gi/gi"
)

func testInit() *conn.InitParams {
	ip := &conn.InitParams{}
	ip.Defaults()
	ip.Wt.Set(0, 0.1)
	ip.Inhib.Set(0, 0.02)
	ip.Thr = 0.2
	return ip
}

// testHier makes a 2-layer hierarchy on a 4x4 input grid, with the last
// input channel an action
func testHier(t *testing.T, nthr int, seed int64) (*Hierarchy, erand.Rand) {
	inSize := evec.Vec2i{X: 4, Y: 4}
	its := make([]InputType, 16)
	its[15] = ActionInput
	id := &InputDesc{}
	id.Defaults()
	descs := make([]LayerDesc, 2)
	descs[0].Width = 4
	descs[0].Height = 2
	descs[1].Width = 2
	descs[1].Height = 2
	for li := range descs {
		descs[li].Defaults()
		descs[li].Coder.SettleIters = 5
		descs[li].Coder.MeasureIters = 5
	}
	descs[1].RewardOffsets = true
	descs[0].CoderRL = true
	hr := &Hierarchy{NThreads: nthr}
	rnd := erand.NewSysRand(seed)
	if err := hr.CreateRandom("Test", inSize, its, id, descs, testInit(), rnd); err != nil {
		t.Fatal(err)
	}
	return hr, rnd
}

func randState(hr *Hierarchy, rnd erand.Rand) {
	for i := 0; i < 15; i++ {
		if erand.BoolP(0.5, -1, rnd) {
			hr.SetState(i, 1)
		} else {
			hr.SetState(i, 0)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	id := &InputDesc{}
	id.Defaults()
	ld := LayerDesc{}
	ld.Defaults()
	hr := &Hierarchy{}
	err := hr.Config("Bad", evec.Vec2i{X: 4, Y: 4}, make([]InputType, 15), id, []LayerDesc{ld})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("wrong input type count: got %v", err)
	}
	err = hr.Config("Bad", evec.Vec2i{X: 4, Y: 4}, make([]InputType, 16), id, nil)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("no layers: got %v", err)
	}
	err = hr.Config("Bad", evec.Vec2i{X: 4, Y: 4}, make([]InputType, 16), nil, []LayerDesc{ld})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("nil input desc: got %v", err)
	}
	bad := ld
	bad.NCells = 0
	err = hr.Config("Bad", evec.Vec2i{X: 4, Y: 4}, make([]InputType, 16), id, []LayerDesc{bad})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("zero cells: got %v", err)
	}
	if err := hr.Build(testInit(), erand.NewSysRand(1)); !errors.Is(err, ErrConfig) {
		t.Errorf("Build before Config: got %v", err)
	}

	hr, _ = testHier(t, 1, 1)
	if err := hr.SetState(16, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("SetState out of range: got %v", err)
	}
	if err := hr.SetState(-1, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("SetState negative: got %v", err)
	}
	if err := hr.SetStateXY(4, 0, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("SetStateXY out of range: got %v", err)
	}
	if err := hr.SetStateXY(1, 2, 0.5); err != nil || hr.Input.Vals[9] != 0.5 {
		t.Errorf("SetStateXY: %v, val %g", err, hr.Input.Vals[9])
	}
	if _, err := hr.NodeByID(NodeID{Layer: 2, Node: 0}); !errors.Is(err, ErrConfig) {
		t.Errorf("NodeByID bad layer: got %v", err)
	}
	if _, err := hr.NodeByID(NodeID{Layer: 1, Node: 4}); !errors.Is(err, ErrConfig) {
		t.Errorf("NodeByID bad node: got %v", err)
	}
	if _, err := hr.InputNodeByID(NodeID{Layer: InputLayerID, Node: 15}); err != nil {
		t.Errorf("InputNodeByID: %v", err)
	}
	if err := hr.ApplyInput(etensor.NewFloat32([]int{3, 3}, nil, nil)); !errors.Is(err, ErrConfig) {
		t.Errorf("ApplyInput wrong size: got %v", err)
	}
}

func TestStructure(t *testing.T) {
	hr, _ := testHier(t, 1, 1)
	if hr.NLayers() != 2 || hr.NInputs() != 16 || hr.NActions() != 1 || hr.ActionIdxs()[0] != 15 {
		t.Errorf("structure: layers %d inputs %d actions %d", hr.NLayers(), hr.NInputs(), hr.NActions())
	}
	if hr.Layers[0].Coder.NVis() != 16 || hr.Layers[0].Coder.NHid() != 8 || hr.Layers[1].Coder.NVis() != 8 {
		t.Errorf("coder sizes")
	}
	// top layer feeds back into its own nodes
	ids, err := hr.FeedBackTargets(NodeID{Layer: 1, Node: 0})
	if err != nil || len(ids) != 4 {
		t.Fatalf("top feed-back: %v %v", ids, err)
	}
	for _, id := range ids {
		if id.Layer != 1 {
			t.Errorf("top feed-back target on layer %d", id.Layer)
		}
	}
	// layer 0 node (0, 0) projects to (0, 0) of the 2x2 layer above: radius 1 covers all
	ids, _ = hr.FeedBackTargets(NodeID{Layer: 0, Node: 0})
	if len(ids) != 4 || ids[0].Layer != 1 {
		t.Errorf("layer 0 feed-back: %v", ids)
	}
	ids, _ = hr.FeedBackTargets(NodeID{Layer: InputLayerID, Node: 0})
	if len(ids) == 0 || ids[0].Layer != 0 {
		t.Errorf("input feed-back: %v", ids)
	}
	nd, _ := hr.NodeByID(NodeID{Layer: 0, Node: 5})
	if nd.Unit.NActions() != int(ActionTypeN) || nd.Unit.NInputs() != len(nd.FeedBack)+len(nd.Predictive) {
		t.Errorf("unit sizes: actions %d inputs %d", nd.Unit.NActions(), nd.Unit.NInputs())
	}
	nonzero := false
	for _, off := range hr.RewardOffsets {
		if off < -1 || off > 1 {
			t.Errorf("reward offset out of range: %g", off)
		}
		if off != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Errorf("reward offsets all zero")
	}
	rep := hr.SizeReport()
	if !strings.Contains(rep, "L0") || !strings.Contains(rep, "Input") {
		t.Errorf("size report: %s", rep)
	}
}

func TestSimStep(t *testing.T) {
	hr, rnd := testHier(t, 1, 3)
	for tick := 0; tick < 5; tick++ {
		randState(hr, rnd)
		hr.SimStep(0.5, true, rnd)
	}
	l0 := hr.Layers[0]
	l1 := hr.Layers[1]
	att := make([]float32, len(l0.Nodes))
	for ni := range l0.Nodes {
		att[ni] = l0.Nodes[ni].Attend
	}
	randState(hr, rnd)
	hr.SimStep(-0.25, true, rnd)
	for vi := range att {
		if in := l1.Coder.Input(vi); in != l0.Coder.HiddenState(vi)*att[vi] {
			t.Errorf("layer 1 input %d: got %g, cor %g", vi, in, l0.Coder.HiddenState(vi)*att[vi])
		}
	}
	for ni := range l1.Nodes {
		nd := &l1.Nodes[ni]
		if nd.FedReward != -0.25 {
			t.Errorf("top node %d fed reward %g", ni, nd.FedReward)
		}
		if nd.Out < 0 || nd.Out > 1 {
			t.Errorf("top node %d out of range: %g", ni, nd.Out)
		}
		if nd.LocalReward < -1 || nd.LocalReward > 1 {
			t.Errorf("local reward out of range: %g", nd.LocalReward)
		}
	}
	if hr.topSrc[0] != -0.25+hr.RewardOffsets[0] {
		t.Errorf("reward pathway: got %g", hr.topSrc[0])
	}
	act := hr.Action(0)
	if act < -1 || act > 1 || hr.Input.Vals[15] != act {
		t.Errorf("action %g not fed back: %g", act, hr.Input.Vals[15])
	}

	tsr := &etensor.Float32{}
	hr.PredictionTensor(tsr)
	if tsr.Dim(0) != 4 || tsr.Dim(1) != 4 {
		t.Errorf("prediction tensor shape: %v", tsr.Shapes())
	}
	for i := 0; i < 16; i++ {
		if tsr.Values[i] != hr.Prediction(i) {
			t.Errorf("prediction tensor %d: %g vs %g", i, tsr.Values[i], hr.Prediction(i))
		}
	}

	in := etensor.NewFloat32([]int{4, 4}, nil, nil)
	for i := range in.Values {
		in.Values[i] = 0.75
	}
	if err := hr.ApplyInput(in); err != nil {
		t.Fatal(err)
	}
	if hr.Input.Vals[0] != 0.75 || hr.Input.Vals[15] != act {
		t.Errorf("ApplyInput: state %g action %g", hr.Input.Vals[0], hr.Input.Vals[15])
	}
}

func runTrace(t *testing.T, nthr int) []float32 {
	hr, rnd := testHier(t, nthr, 42)
	inr := erand.NewSysRand(7)
	var trc []float32
	for tick := 0; tick < 20; tick++ {
		randState(hr, inr)
		trc = append(trc, hr.PredictionErr())
		hr.SimStep(float32(inr.Float64(-1))-0.5, true, rnd)
		trc = append(trc, hr.Action(0))
		for i := 0; i < hr.NInputs(); i++ {
			trc = append(trc, hr.Prediction(i))
		}
		for ni := range hr.Layers[0].Nodes {
			trc = append(trc, hr.Layers[0].Nodes[ni].Gate)
		}
	}
	return trc
}

func TestDeterminism(t *testing.T) {
	a := runTrace(t, 1)
	b := runTrace(t, 1)
	c := runTrace(t, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed runs differ at %d: %g vs %g", i, a[i], b[i])
		}
		if a[i] != c[i] {
			t.Fatalf("threaded run differs at %d: %g vs %g", i, a[i], c[i])
		}
	}
}

func wtsString(hr *Hierarchy) string {
	var b bytes.Buffer
	hr.WriteWtsJSON(&b)
	return b.String()
}

func TestNoLearn(t *testing.T) {
	hr, rnd := testHier(t, 1, 5)
	for tick := 0; tick < 10; tick++ {
		randState(hr, rnd)
		hr.SimStep(0.3, true, rnd)
	}
	before := wtsString(hr)
	l0 := hr.Layers[0]
	nh := l0.Coder.NHid()
	prevHid := make([]float32, nh)
	hidChg := false
	for tick := 0; tick < 20; tick++ {
		randState(hr, rnd)
		hr.SimStep(1, false, rnd)
		for hi := 0; hi < nh; hi++ {
			st := l0.Coder.HiddenState(hi)
			if l0.Coder.HiddenStatePrev(hi) != st {
				t.Errorf("tick %d: hidden %d state prev %g not committed from %g", tick, hi, l0.Coder.HiddenStatePrev(hi), st)
			}
			if tick > 0 && st != prevHid[hi] {
				hidChg = true
			}
			prevHid[hi] = st
		}
		for ni := range l0.Nodes {
			nd := &l0.Nodes[ni]
			if nd.StatePrev != nd.State {
				t.Errorf("tick %d: node %d state prev %g not committed from %g", tick, ni, nd.StatePrev, nd.State)
			}
		}
		for i := range hr.Input.Nodes {
			in := &hr.Input.Nodes[i]
			if in.StatePrev != in.State {
				t.Errorf("tick %d: input node %d state prev %g not committed from %g", tick, i, in.StatePrev, in.State)
			}
		}
	}
	if !hidChg {
		t.Errorf("hidden states did not change with learn=false")
	}
	after := wtsString(hr)
	if before != after {
		t.Errorf("weights changed with learn=false")
	}
	hr.SimStep(1, true, rnd)
	if wtsString(hr) == after {
		t.Errorf("weights did not change with learn=true")
	}
}

func TestWtsRoundTrip(t *testing.T) {
	hr, rnd := testHier(t, 1, 5)
	for tick := 0; tick < 10; tick++ {
		randState(hr, rnd)
		hr.SimStep(0.3, true, rnd)
	}
	hr.MetaData = map[string]string{"Ticks": "10"}
	var b bytes.Buffer
	hr.WriteWtsJSON(&b)

	h2, _ := testHier(t, 1, 9)
	if err := h2.ReadWtsJSON(bytes.NewReader(b.Bytes())); err != nil {
		t.Fatal(err)
	}
	if h2.MetaData["Ticks"] != "10" {
		t.Errorf("metadata not read: %v", h2.MetaData)
	}
	for ni, off := range hr.RewardOffsets {
		if h2.RewardOffsets[ni] != off {
			t.Errorf("reward offset %d: got %g, cor %g", ni, h2.RewardOffsets[ni], off)
		}
	}
	if w1, w2 := hr.Layers[0].Coder.Hidden[0].FF[0].Wt, h2.Layers[0].Coder.Hidden[0].FF[0].Wt; w1 != w2 {
		t.Errorf("weight not read at full precision: got %.10g, cor %.10g", w2, w1)
	}

	// the read hierarchy continues exactly as the written one
	h5, _ := testHier(t, 1, 17)
	if err := h5.ReadWtsJSON(bytes.NewReader(b.Bytes())); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < hr.NInputs(); i++ {
		if hr.Prediction(i) != h5.Prediction(i) {
			t.Errorf("prediction %d after read: got %g, cor %g", i, h5.Prediction(i), hr.Prediction(i))
		}
	}
	rnda, rndb := erand.NewSysRand(21), erand.NewSysRand(21)
	ina, inb := erand.NewSysRand(22), erand.NewSysRand(22)
	for tick := 0; tick < 5; tick++ {
		randState(hr, ina)
		randState(h5, inb)
		if ea, eb := hr.PredictionErr(), h5.PredictionErr(); ea != eb {
			t.Errorf("tick %d: prediction error %g, cor %g", tick, eb, ea)
		}
		hr.SimStep(0.3, true, rnda)
		h5.SimStep(0.3, true, rndb)
		nmis := 0
		for i := 0; i < hr.NInputs(); i++ {
			if hr.Prediction(i) != h5.Prediction(i) {
				nmis++
			}
		}
		if nmis > 0 {
			t.Errorf("tick %d: %d of %d predictions differ after read", tick, nmis, hr.NInputs())
		}
	}

	// full precision values read back exactly, so a second write is identical
	s2 := wtsString(h2)
	var b3 bytes.Buffer
	h3, _ := testHier(t, 1, 11)
	if err := h3.ReadWtsJSON(strings.NewReader(s2)); err != nil {
		t.Fatal(err)
	}
	h3.WriteWtsJSON(&b3)
	if b3.String() != s2 {
		t.Errorf("weights round trip differs")
	}

	fn := gi.FileName(filepath.Join(t.TempDir(), "test.wts.gz"))
	if err := h2.SaveWtsJSON(fn); err != nil {
		t.Fatal(err)
	}
	h4, _ := testHier(t, 1, 13)
	if err := h4.OpenWtsJSON(fn); err != nil {
		t.Fatal(err)
	}
	if wtsString(h4) != s2 {
		t.Errorf("gzip weights file round trip differs")
	}

	other := &Hierarchy{}
	id := &InputDesc{}
	id.Defaults()
	ld := LayerDesc{Width: 3, Height: 3}
	ld.Defaults()
	if err := other.CreateRandom("Test", evec.Vec2i{X: 4, Y: 4}, make([]InputType, 16), id, []LayerDesc{ld}, testInit(), erand.NewSysRand(1)); err != nil {
		t.Fatal(err)
	}
	if err := other.ReadWtsJSON(bytes.NewReader(b.Bytes())); !errors.Is(err, ErrConfig) {
		t.Errorf("mismatched structure: got %v", err)
	}
}

var ParamSets = params.Sets{
	{Name: "Base", Desc: "base testing", Sheets: params.Sheets{
		"Network": &params.Sheet{
			{Sel: "Layer", Desc: "all layers",
				Params: params.Params{
					"Layer.Desc.Pred.Drift": "0.5",
				}},
			{Sel: "#L1", Desc: "top layer",
				Params: params.Params{
					"Layer.Desc.Unit.Gamma": "0.8",
				}},
			{Sel: "Input", Desc: "no action exploration",
				Params: params.Params{
					"Input.Desc.Explore.StdDev": "0",
				}},
		},
	}},
}

func TestApplyParams(t *testing.T) {
	hr, _ := testHier(t, 1, 1)
	app, err := hr.ApplyParams(ParamSets[0].Sheets["Network"], false)
	if err != nil {
		t.Fatal(err)
	}
	if !app {
		t.Errorf("no params applied")
	}
	if hr.Layers[0].Desc.Pred.Drift != 0.5 || hr.Layers[1].Desc.Pred.Drift != 0.5 {
		t.Errorf("Drift not set")
	}
	if hr.Layers[0].Desc.Unit.Gamma == 0.8 || hr.Layers[1].Desc.Unit.Gamma != 0.8 {
		t.Errorf("Gamma: L0 %g L1 %g", hr.Layers[0].Desc.Unit.Gamma, hr.Layers[1].Desc.Unit.Gamma)
	}
	if hr.Input.Desc.Explore.StdDev != 0 {
		t.Errorf("input explore not set")
	}
	if nds := hr.NonDefaultParams(); !strings.Contains(nds, "Drift") {
		t.Errorf("non-default params missing Drift:\n%s", nds)
	}
}

func TestThreads(t *testing.T) {
	hr, _ := testHier(t, 4, 1)
	n := 37
	out := make([]int, n)
	hr.ThrFun(n, func(i int) { out[i] = i * i }, "Square")
	for i := range out {
		if out[i] != i*i {
			t.Fatalf("ThrFun missed %d", i)
		}
	}
	if _, ok := hr.FunTimes["Square"]; !ok {
		t.Errorf("no timer for ThrFun")
	}
	hr.FunTimerReset()
	hr.TimerReport()
}

// checker sets the alternating checkerboard for tick on the first nrow
// rows, and holds the state channels of the remaining rows at 0
func checker(hr *Hierarchy, tick, nrow int) {
	for y := 0; y < hr.InSize.Y; y++ {
		for x := 0; x < hr.InSize.X; x++ {
			v := float32(0)
			if y < nrow {
				v = float32((x + y + tick) % 2)
			}
			if hr.Input.Nodes[y*hr.InSize.X+x].Type == StateInput {
				hr.SetStateXY(x, y, v)
			}
		}
	}
}

// TestCheckerboardPrediction runs a 4x4 checkerboard with 8 hidden units
// and 2 actions: the input grid has an extra row whose first two channels
// are action channels, and whose other two are constant state channels.
func TestCheckerboardPrediction(t *testing.T) {
	inSize := evec.Vec2i{X: 4, Y: 5}
	its := make([]InputType, 20)
	its[16] = ActionInput
	its[17] = ActionInput
	id := &InputDesc{}
	id.Defaults()
	ld := LayerDesc{Width: 4, Height: 2}
	ld.Defaults()
	ld.NRecurrent = 2
	ld.CoderLearn.Sparsity = 0.25
	ld.Unit.Sparsity = 0.25
	ld.Coder.SettleIters = 10
	ld.Coder.MeasureIters = 10
	hr := &Hierarchy{}
	rnd := erand.NewSysRand(1)
	if err := hr.CreateRandom("Checker", inSize, its, id, []LayerDesc{ld}, testInit(), rnd); err != nil {
		t.Fatal(err)
	}
	if hr.NActions() != 2 || hr.Layers[0].NNodes() != 8 {
		t.Fatalf("actions %d hidden %d", hr.NActions(), hr.Layers[0].NNodes())
	}
	nticks := 1000
	nwin := 10
	early := float32(0)
	late := float32(0)
	for tick := 0; tick < nticks; tick++ {
		checker(hr, tick, 4)
		err := hr.PredictionErr()
		switch {
		case tick >= 1 && tick <= nwin:
			early += err
		case tick >= nticks-nwin:
			late += err
		}
		hr.SimStep(-err, true, rnd)
	}
	early /= float32(nwin)
	late /= float32(nwin)
	if !(late < early) {
		t.Errorf("prediction error did not decrease: early %g, late %g", early, late)
	}
}
