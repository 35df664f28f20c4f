// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/erand"
)

// rl.Unit is a local actor-critic: a small population of competitive cells
// encodes the inputs, a linear read-out of action-conditioned cell states
// estimates Q, and the action is derived by ascent on that estimate.
// All weights learn by eligibility-trace TD learning, and the cell
// code additionally learns to reconstruct the inputs.
//
// Each tick (SimStep): Encode -> DeriveAction -> Explore -> Evaluate -> Learn.
type Unit struct {
	Inputs      []float32 `desc:"input values, set before SimStep"`
	Recon       []float32 `desc:"reconstruction of the inputs from the cell code"`
	Cells       []Cell    `desc:"competitive cell population"`
	Actions     []Action  `desc:"action outputs"`
	Q           float32   `desc:"Q estimate for the exploratory action on this tick"`
	PrevQ       float32   `desc:"Q estimate on the previous tick"`
	TD          float32   `desc:"TD error on this tick: reward + Gamma * Q - PrevQ"`
	AvgSurprise float32   `desc:"running average of TD^2"`
	Gate        float32   `desc:"surprise gate applied to reconstruction learning on this tick"`

	errs   []float32
	states []float32
	acts   []float32
	grads  []float32
}

// CreateRandom builds nCells cells fully connected to nIn inputs, with
// lateral inhibition among the cells, and connections from each of nAct
// actions into each cell's action-conditioned state and Q read-out.
func (un *Unit) CreateRandom(nIn, nAct, nCells int, ip *conn.InitParams, rnd erand.Rand) error {
	if nIn < 0 || nAct < 0 || nCells <= 0 {
		return fmt.Errorf("rl.Unit CreateRandom: invalid sizes inputs: %d actions: %d cells: %d", nIn, nAct, nCells)
	}
	un.Inputs = make([]float32, nIn)
	un.Recon = make([]float32, nIn)
	un.errs = make([]float32, nIn)
	un.Cells = make([]Cell, nCells)
	un.states = make([]float32, nCells)
	un.Actions = make([]Action, nAct)
	un.acts = make([]float32, nAct)
	un.grads = make([]float32, nAct)
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.FF = make(conn.Conns, nIn)
		for ii := range cl.FF {
			cl.FF[ii] = conn.Connection{Idx: int32(ii), Wt: ip.RandWt(rnd)}
		}
		cl.Lat = make(conn.Conns, 0, nCells-1)
		for oi := 0; oi < nCells; oi++ {
			if oi == ci {
				continue
			}
			cl.Lat = append(cl.Lat, conn.Connection{Idx: int32(oi), Wt: ip.RandInhib(rnd)})
		}
		cl.Act = make(conn.Conns, nAct)
		for ai := range cl.Act {
			cl.Act[ai] = conn.Connection{Idx: int32(ai), Wt: ip.RandWt(rnd)}
		}
		cl.Bias.Wt = ip.RandWt(rnd)
		cl.Q.Wt = ip.RandWt(rnd)
		cl.Thr = ip.Thr
	}
	for ai := range un.Actions {
		un.Actions[ai].State = 0.5
		un.Actions[ai].ExplState = 0.5
	}
	return un.Validate()
}

// Validate checks all connection indexes
func (un *Unit) Validate() error {
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		if err := cl.FF.Validate(len(un.Inputs)); err != nil {
			return fmt.Errorf("rl.Unit cell %d FF: %w", ci, err)
		}
		if err := cl.Lat.Validate(len(un.Cells)); err != nil {
			return fmt.Errorf("rl.Unit cell %d Lat: %w", ci, err)
		}
		if err := cl.Act.Validate(len(un.Actions)); err != nil {
			return fmt.Errorf("rl.Unit cell %d Act: %w", ci, err)
		}
	}
	return nil
}

// NInputs returns the number of inputs
func (un *Unit) NInputs() int { return len(un.Inputs) }

// NActions returns the number of actions
func (un *Unit) NActions() int { return len(un.Actions) }

// SetInput sets input ii
func (un *Unit) SetInput(ii int, val float32) { un.Inputs[ii] = val }

// Action returns the exploratory (taken) action ai
func (un *Unit) Action(ai int) float32 { return un.Actions[ai].ExplState }

// GreedyAction returns the derived greedy action ai
func (un *Unit) GreedyAction(ai int) float32 { return un.Actions[ai].State }

// ActiveFrac returns the fraction of active cells
func (un *Unit) ActiveFrac() float32 {
	n := 0
	for ci := range un.Cells {
		if un.Cells[ci].State > 0 {
			n++
		}
	}
	return float32(n) / float32(len(un.Cells))
}

// NConns returns the total number of connections in the unit
func (un *Unit) NConns() int {
	n := 0
	for ci := range un.Cells {
		n += un.Cells[ci].NConns()
	}
	return n
}

// SimStep runs one complete tick.  If learn is false, no weights, traces,
// thresholds or surprise averages change, but all states are updated.
func (un *Unit) SimStep(up *Params, reward float32, learn bool, rnd erand.Rand) {
	un.Encode(up)
	up.Derive.Deriver().Derive(un, up, rnd)
	un.Explore(up, rnd)
	un.Evaluate(up, reward)
	if learn {
		un.Learn(up)
	}
	un.StepEnd()
}

// Encode computes the sparse cell code from the inputs.  Each pass, cells
// accumulate excitation from the reconstruction error of the current code,
// minus lateral inhibition from the current code, and a cell becomes
// active iff fewer than Sparsity * NCells cells have strictly higher
// excitation (net of threshold).
func (un *Unit) Encode(up *Params) {
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.Excite = 0
		cl.State = 0
		un.states[ci] = 0
	}
	nmax := up.NActiveMax(len(un.Cells))
	for it := 0; it < up.EncodeIters; it++ {
		un.ReconFmStates()
		for ci := range un.Cells {
			cl := &un.Cells[ci]
			cl.Excite = (1-up.Leak)*cl.Excite + cl.FF.Sum(un.errs) - cl.Lat.Sum(un.states)
		}
		for ci := range un.Cells {
			cl := &un.Cells[ci]
			net := cl.Excite - cl.Thr
			nhigher := 0
			for oi := range un.Cells {
				if oi == ci {
					continue
				}
				if un.Cells[oi].Excite-un.Cells[oi].Thr > net {
					nhigher++
				}
			}
			if float32(nhigher) < nmax {
				cl.State = 1
			} else {
				cl.State = 0
			}
		}
		for ci := range un.Cells {
			un.states[ci] = un.Cells[ci].State
		}
	}
	un.ReconFmStates()
}

// ReconFmStates reconstructs the inputs from the current cell code and
// computes the reconstruction errors
func (un *Unit) ReconFmStates() {
	for ii := range un.Recon {
		un.Recon[ii] = 0
	}
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.FF.SendTo(un.Recon, cl.State)
	}
	for ii := range un.Inputs {
		un.errs[ii] = un.Inputs[ii] - un.Recon[ii]
	}
}

// Forward computes the action-conditioned cell states for the given action
// values and returns the resulting Q estimate
func (un *Unit) Forward(acts []float32) float32 {
	q := float32(0)
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.ActStateFmActs(acts)
		q += cl.Q.Wt * cl.ActState
	}
	return q
}

// Grads computes the gradient of Q with respect to each action, using
// the ActErr values from the last Forward pass, into Actions[].Err
func (un *Unit) Grads() {
	for ai := range un.grads {
		un.grads[ai] = 0
	}
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.Act.SendTo(un.grads, cl.ActErr)
	}
	for ai := range un.Actions {
		un.Actions[ai].Err = un.grads[ai]
	}
}

// Ascend runs Derive.Iters iterations of forward, gradient, step from the
// previous greedy action, with the step computed by stepFun.
// Actions stay within ActRange.
func (un *Unit) Ascend(up *Params, rnd erand.Rand, stepFun func(g float32) float32) {
	for ai := range un.Actions {
		un.acts[ai] = un.Actions[ai].State
	}
	for it := 0; it < up.Derive.Iters; it++ {
		un.Forward(un.acts)
		un.Grads()
		for ai := range un.Actions {
			act := un.acts[ai] + stepFun(un.Actions[ai].Err)
			if up.Derive.Noise > 0 {
				act += up.Derive.Noise * float32(rnd.NormFloat64(-1))
			}
			un.acts[ai] = up.ActRange.ClipVal(act)
		}
	}
	for ai := range un.Actions {
		un.Actions[ai].State = un.acts[ai]
	}
}

// Explore computes the exploratory action from the greedy one
func (un *Unit) Explore(up *Params, rnd erand.Rand) {
	for ai := range un.Actions {
		ac := &un.Actions[ai]
		if up.Explore.Break > 0 && erand.BoolP(float64(up.Explore.Break), -1, rnd) {
			ac.ExplState = conn.Uniform(&up.ActRange, rnd)
			continue
		}
		expl := ac.State
		if up.Explore.StdDev > 0 {
			expl += up.Explore.StdDev * float32(rnd.NormFloat64(-1))
		}
		ac.ExplState = up.ActRange.ClipVal(expl)
	}
}

// Evaluate computes Q for the exploratory action and the TD error
func (un *Unit) Evaluate(up *Params, reward float32) {
	for ai := range un.Actions {
		un.acts[ai] = un.Actions[ai].ExplState
	}
	un.Q = un.Forward(un.acts)
	un.Grads()
	un.TD = reward + up.Gamma*un.Q - un.PrevQ
}

// Learn updates all weights from the TD error and eligibility traces, and
// the reconstructive weights, lateral weights and thresholds from the
// cell code.  Each weight changes by the trace accumulated through the
// previous tick, and then the trace takes up the current activity.
func (un *Unit) Learn(up *Params) {
	td := un.TD
	surp := td * td
	un.Gate = up.Surprise.Gate(surp, un.AvgSurprise)
	up.Surprise.AvgFmSurprise(surp, &un.AvgSurprise)
	ssq := up.Sparsity * up.Sparsity
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		q := &cl.Q
		q.Wt += up.DWt.DWt(up.Lrate.Q*td*q.Tr, q.Wt)
		q.Tr = up.Trace.Accum(q.Tr, cl.ActState)

		b := &cl.Bias
		b.Wt += up.DWt.DWt(up.Lrate.Act*td*b.Tr, b.Wt)
		b.Tr = up.Trace.Accum(b.Tr, cl.ActErr)
		for ai := range cl.Act {
			c := &cl.Act[ai]
			c.Wt += up.DWt.DWt(up.Lrate.Act*td*c.Tr, c.Wt)
			c.Tr = up.Trace.Accum(c.Tr, cl.ActErr*un.acts[c.Idx])
		}

		if cl.State > 0 {
			lr := up.Lrate.FF * un.Gate * cl.State
			for ii := range cl.FF {
				c := &cl.FF[ii]
				c.Wt += lr * un.errs[c.Idx]
			}
		}
		for oi := range cl.Lat {
			c := &cl.Lat[oi]
			c.Wt = math32.Max(0, c.Wt+up.Lrate.Lat*(cl.State*un.states[c.Idx]-ssq))
		}
		cl.Thr += up.Lrate.Thr * (cl.State - up.Sparsity)
	}
}

// StepEnd commits the current tick: PrevQ = Q and StatePrev = State
func (un *Unit) StepEnd() {
	un.PrevQ = un.Q
	for ci := range un.Cells {
		cl := &un.Cells[ci]
		cl.StatePrev = cl.State
	}
}
