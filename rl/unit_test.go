// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/erand"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func newUnit(t *testing.T, nIn, nAct, nCells int, seed int64) (*Unit, erand.Rand) {
	ip := &conn.InitParams{}
	ip.Defaults()
	rnd := erand.NewSysRand(seed)
	un := &Unit{}
	if err := un.CreateRandom(nIn, nAct, nCells, ip, rnd); err != nil {
		t.Fatal(err)
	}
	return un, rnd
}

func randInputs(un *Unit, rnd erand.Rand) {
	for ii := 0; ii < un.NInputs(); ii++ {
		un.SetInput(ii, float32(rnd.Float64(-1)))
	}
}

func TestCreateErrors(t *testing.T) {
	ip := &conn.InitParams{}
	ip.Defaults()
	un := &Unit{}
	if err := un.CreateRandom(4, 2, 0, ip, erand.NewSysRand(1)); err == nil {
		t.Errorf("expected error for zero cells")
	}
	un, _ = newUnit(t, 5, 3, 6, 1)
	cl := &un.Cells[2]
	if len(cl.FF) != 5 || len(cl.Lat) != 5 || len(cl.Act) != 3 {
		t.Errorf("cell conns: FF %d Lat %d Act %d", len(cl.FF), len(cl.Lat), len(cl.Act))
	}
	for _, c := range cl.Lat {
		if c.Idx == 2 {
			t.Errorf("lateral self connection")
		}
	}
}

func TestSparsityConvergence(t *testing.T) {
	un, rnd := newUnit(t, 16, 3, 16, 7)
	up := &Params{}
	up.Defaults()
	up.Sparsity = 0.125
	up.Update()
	nticks := 10000
	sum := float32(0)
	for tick := 0; tick < nticks; tick++ {
		randInputs(un, rnd)
		un.SimStep(up, float32(rnd.Float64(-1))-0.5, true, rnd)
		sum += un.ActiveFrac()
	}
	avg := sum / float32(nticks)
	if math32.Abs(avg-up.Sparsity) > 0.02 {
		t.Errorf("average active fraction %g, target %g", avg, up.Sparsity)
	}
}

func TestTDConvergence(t *testing.T) {
	un, rnd := newUnit(t, 8, 2, 8, 3)
	up := &Params{}
	up.Defaults()
	up.Sparsity = 0.25
	up.Gamma = 0.9
	up.Trace.Decay = 0.5
	up.Lrate.FF = 0
	up.Lrate.Lat = 0
	up.Lrate.Thr = 0
	up.Lrate.Q = 0.05
	up.Lrate.Act = 0.05
	up.Explore.StdDev = 0
	up.Explore.Break = 0
	up.Update()
	randInputs(un, rnd)

	nticks := 3000
	nwin := 100
	early := float32(0)
	late := float32(0)
	for tick := 0; tick < nticks; tick++ {
		un.SimStep(up, 0.1, true, rnd)
		td := math32.Abs(un.TD)
		switch {
		case tick >= 1 && tick <= nwin:
			early += td
		case tick >= nticks-nwin:
			late += td
		}
	}
	early /= float32(nwin)
	late /= float32(nwin)
	if !(late < 0.25*early) {
		t.Errorf("TD error did not decrease: early %g, late %g", early, late)
	}
}

type unitSnap struct {
	wts []float32
	thr []float32
	avg float32
}

func snapUnit(un *Unit) *unitSnap {
	sn := &unitSnap{avg: un.AvgSurprise}
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		for _, cs := range []conn.Conns{cl.FF, cl.Lat, cl.Act, {cl.Bias, cl.Q}} {
			for _, c := range cs {
				sn.wts = append(sn.wts, c.Wt, c.Tr)
			}
		}
		sn.thr = append(sn.thr, cl.Thr)
	}
	return sn
}

func TestNoLearn(t *testing.T) {
	un, rnd := newUnit(t, 6, 3, 8, 11)
	up := &Params{}
	up.Defaults()
	up.Sparsity = 0.25
	up.Update()
	// some learning first so traces are nonzero
	for tick := 0; tick < 20; tick++ {
		randInputs(un, rnd)
		un.SimStep(up, 0.5, true, rnd)
	}
	before := snapUnit(un)
	for tick := 0; tick < 50; tick++ {
		randInputs(un, rnd)
		un.SimStep(up, 1, false, rnd)
		if un.PrevQ != un.Q {
			t.Errorf("PrevQ not committed")
		}
		for ci := range un.Cells {
			if un.Cells[ci].StatePrev != un.Cells[ci].State {
				t.Errorf("cell %d StatePrev not committed", ci)
			}
		}
	}
	after := snapUnit(un)
	for i := range before.wts {
		if before.wts[i] != after.wts[i] {
			t.Fatalf("weight / trace %d changed with learn=false: %g -> %g", i, before.wts[i], after.wts[i])
		}
	}
	for i := range before.thr {
		if before.thr[i] != after.thr[i] {
			t.Errorf("threshold %d changed with learn=false", i)
		}
	}
	if before.avg != after.avg {
		t.Errorf("AvgSurprise changed with learn=false")
	}
}

func deriveUnit(t *testing.T) (*Unit, *Params) {
	un, _ := newUnit(t, 2, 2, 2, 1)
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.State = 0
		cl.Bias.Wt = 0
		cl.Q.Wt = 0
		for ai := range cl.Act {
			cl.Act[ai].Wt = 0
		}
	}
	cl := &un.Cells[0]
	cl.State = 1
	cl.Q.Wt = 1
	cl.Act[0].Wt = 1
	cl.Act[1].Wt = -1
	up := &Params{}
	up.Defaults()
	up.Derive.Iters = 3
	up.Derive.Alpha = 0.1
	up.Update()
	return un, up
}

func TestSignAscent(t *testing.T) {
	un, up := deriveUnit(t)
	up.Derive.Type = SignAscent
	up.Derive.Deriver().Derive(un, up, erand.NewSysRand(1))
	if math32.Abs(un.GreedyAction(0)-0.8) > difTol {
		t.Errorf("action 0: got %g, cor 0.8", un.GreedyAction(0))
	}
	if math32.Abs(un.GreedyAction(1)-0.2) > difTol {
		t.Errorf("action 1: got %g, cor 0.2", un.GreedyAction(1))
	}
	// clipped to ActRange
	up.Derive.Iters = 20
	up.Derive.Deriver().Derive(un, up, erand.NewSysRand(1))
	if un.GreedyAction(0) != 1 || un.GreedyAction(1) != 0 {
		t.Errorf("actions not clipped: %g %g", un.GreedyAction(0), un.GreedyAction(1))
	}
}

func TestGradAscent(t *testing.T) {
	un, up := deriveUnit(t)
	q0 := un.Forward([]float32{0.5, 0.5})
	up.Derive.Deriver().Derive(un, up, erand.NewSysRand(1))
	a0 := un.GreedyAction(0)
	a1 := un.GreedyAction(1)
	if !(a0 > 0.5 && a1 < 0.5) {
		t.Errorf("gradient ascent moved the wrong way: %g %g", a0, a1)
	}
	// gradient steps are smaller than sign steps here: |g| = sig * (1-sig) <= 0.25
	if a0 > 0.5+3*0.1*0.25+difTol {
		t.Errorf("gradient step too large: %g", a0)
	}
	if q1 := un.Forward([]float32{a0, a1}); q1 <= q0 {
		t.Errorf("Q did not increase: %g -> %g", q0, q1)
	}
}

func TestExploreBreak(t *testing.T) {
	un, up := deriveUnit(t)
	up.Explore.Break = 1
	rnd := erand.NewSysRand(9)
	differ := false
	for i := 0; i < 20; i++ {
		un.Explore(up, rnd)
		for ai := range un.Actions {
			ex := un.Action(ai)
			if ex < up.ActRange.Min || ex > up.ActRange.Max {
				t.Errorf("exploratory action out of range: %g", ex)
			}
			if ex != un.GreedyAction(ai) {
				differ = true
			}
		}
	}
	if !differ {
		t.Errorf("exploration never changed the action")
	}
	up.Explore.Break = 0
	up.Explore.StdDev = 0
	un.Explore(up, rnd)
	for ai := range un.Actions {
		if un.Action(ai) != un.GreedyAction(ai) {
			t.Errorf("no-noise exploration changed action %d", ai)
		}
	}
}

func TestTraceMaxBounded(t *testing.T) {
	un, rnd := newUnit(t, 6, 2, 8, 5)
	up := &Params{}
	up.Defaults()
	up.Trace.Rule = conn.TraceMax
	up.Trace.Decay = 0.99
	up.Update()
	for tick := 0; tick < 200; tick++ {
		randInputs(un, rnd)
		un.SimStep(up, 0, true, rnd)
		for ci := range un.Cells {
			if tr := un.Cells[ci].Q.Tr; tr > 1 || tr < 0 {
				t.Fatalf("max trace out of [0, 1]: %g", tr)
			}
		}
	}
}
