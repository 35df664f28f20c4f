// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdr

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/evec"
)

// sdr.Coder is a two-layer (visible / hidden) competitive spiking encoder.
// Hidden units integrate reconstruction-error driven excitation through
// feed-forward and recurrent connections, inhibit each other through
// lateral connections, and spike when their activation exceeds an adaptive
// threshold.  The time-averaged firing rate is the sparse code.
type Coder struct {
	VisSize evec.Vec2i    `desc:"size of the visible grid"`
	HidSize evec.Vec2i    `desc:"size of the hidden grid"`
	Radii   Radii         `desc:"connection radii used at construction"`
	Visible []VisibleUnit `desc:"visible units, row-major"`
	Hidden  []HiddenUnit  `desc:"hidden units, row-major"`

	visRecon  []float32
	hidRecon  []float32
	visErr    []float32
	hidErr    []float32
	spikePrev []float32
	states    []float32
}

// CreateRandom builds the unit populations and their spatially local
// connections, with weights drawn from the ranges in ip.
// A hidden unit at (hx, hy) connects to visible units within Radii.Receptive
// of the proportionally mapped center, and to hidden units within
// Radii.Recurrent and Radii.Lateral of itself (excluding itself).
func (cd *Coder) CreateRandom(visSize, hidSize evec.Vec2i, radii Radii, ip *conn.InitParams, rnd erand.Rand) error {
	if visSize.X <= 0 || visSize.Y <= 0 || hidSize.X <= 0 || hidSize.Y <= 0 {
		return fmt.Errorf("sdr.Coder CreateRandom: invalid sizes visible: %v hidden: %v", visSize, hidSize)
	}
	cd.VisSize = visSize
	cd.HidSize = hidSize
	cd.Radii = radii
	nv := conn.Len(visSize)
	nh := conn.Len(hidSize)
	cd.Visible = make([]VisibleUnit, nv)
	cd.Hidden = make([]HiddenUnit, nh)
	cd.visRecon = make([]float32, nv)
	cd.visErr = make([]float32, nv)
	cd.hidRecon = make([]float32, nh)
	cd.hidErr = make([]float32, nh)
	cd.spikePrev = make([]float32, nh)
	cd.states = make([]float32, nh)

	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		pos := conn.Coord(hi, hidSize)
		ctr := conn.Project(pos, hidSize, visSize)
		hu.FF = randConns(conn.Neighborhood(ctr, radii.Receptive, visSize, false), ip.RandWt, rnd)
		hu.Rec = randConns(conn.Neighborhood(pos, radii.Recurrent, hidSize, true), ip.RandWt, rnd)
		hu.Lat = randConns(conn.Neighborhood(pos, radii.Lateral, hidSize, true), ip.RandInhib, rnd)
		hu.Thr = ip.Thr
	}
	return cd.Validate()
}

// randConns makes connections to idxs with weights from wtFun
func randConns(idxs []int, wtFun func(rnd erand.Rand) float32, rnd erand.Rand) conn.Conns {
	cs := make(conn.Conns, len(idxs))
	for ci, idx := range idxs {
		cs[ci] = conn.Connection{Idx: int32(idx), Wt: wtFun(rnd)}
	}
	return cs
}

// Validate checks that all connection indexes address existing units
func (cd *Coder) Validate() error {
	nv := len(cd.Visible)
	nh := len(cd.Hidden)
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		if err := hu.FF.Validate(nv); err != nil {
			return fmt.Errorf("sdr.Coder hidden %d FF: %w", hi, err)
		}
		if err := hu.Rec.Validate(nh); err != nil {
			return fmt.Errorf("sdr.Coder hidden %d Rec: %w", hi, err)
		}
		if err := hu.Lat.Validate(nh); err != nil {
			return fmt.Errorf("sdr.Coder hidden %d Lat: %w", hi, err)
		}
	}
	return nil
}

// NVis returns the number of visible units
func (cd *Coder) NVis() int { return len(cd.Visible) }

// NHid returns the number of hidden units
func (cd *Coder) NHid() int { return len(cd.Hidden) }

// SetInput sets the input value of visible unit vi
func (cd *Coder) SetInput(vi int, val float32) {
	cd.Visible[vi].Input = val
}

// Input returns the input value of visible unit vi
func (cd *Coder) Input(vi int) float32 { return cd.Visible[vi].Input }

// VisRecon returns the reconstruction of visible unit vi
func (cd *Coder) VisRecon(vi int) float32 { return cd.Visible[vi].Recon }

// HiddenState returns the firing rate of hidden unit hi
func (cd *Coder) HiddenState(hi int) float32 { return cd.Hidden[hi].State }

// HiddenStatePrev returns the previous tick's firing rate of hidden unit hi
func (cd *Coder) HiddenStatePrev(hi int) float32 { return cd.Hidden[hi].StatePrev }

// HiddenStates returns the current hidden firing rates, in an internal
// buffer that is overwritten by the next call
func (cd *Coder) HiddenStates() []float32 {
	for hi := range cd.Hidden {
		cd.states[hi] = cd.Hidden[hi].State
	}
	return cd.states
}

// Activate runs the spiking dynamics: SettleIters iterations followed by
// MeasureIters iterations over which State accumulates the firing rate.
// Settling starts from no spikes and the reconstruction of StatePrev,
// so the only state carried across ticks is StatePrev.
// The final reconstruction is computed from State.
func (cd *Coder) Activate(ap *ActParams, rnd erand.Rand) {
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		hu.Act = 0
		hu.State = 0
		hu.Spike = 0
		hu.SpikePrev = 0
		cd.spikePrev[hi] = 0
	}
	cd.ReconFmPrev()
	nit := ap.SettleIters + ap.MeasureIters
	rate := 1 / float32(ap.MeasureIters)
	for it := 0; it < nit; it++ {
		measure := it >= ap.SettleIters
		cd.ErrsFmRecon()
		for hi := range cd.Hidden {
			hu := &cd.Hidden[hi]
			excite := hu.FF.Sum(cd.visErr) + hu.Rec.Sum(cd.hidErr)
			inhib := hu.Lat.Sum(cd.spikePrev)
			hu.Act = (1-ap.Leak)*hu.Act + excite - inhib
			if ap.Noise > 0 {
				hu.Act += ap.Noise * float32(rnd.NormFloat64(-1))
			}
			hu.SpikeFmAct()
			if measure {
				hu.State += hu.Spike * rate
			}
		}
		for hi := range cd.Hidden {
			hu := &cd.Hidden[hi]
			hu.SpikePrev = hu.Spike
			cd.spikePrev[hi] = hu.Spike
		}
		cd.ReconFmSpikes()
	}
	cd.ReconFmStates()
}

// ErrsFmRecon computes visible (Input - Recon) and hidden (StatePrev - Recon)
// reconstruction errors
func (cd *Coder) ErrsFmRecon() {
	for vi := range cd.Visible {
		vu := &cd.Visible[vi]
		cd.visErr[vi] = vu.Input - vu.Recon
	}
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		cd.hidErr[hi] = hu.StatePrev - hu.Recon
	}
}

// ReconFmSpikes reconstructs visible and hidden targets from the current spikes
func (cd *Coder) ReconFmSpikes() {
	cd.reconFm(func(hu *HiddenUnit) float32 { return hu.Spike })
}

// ReconFmPrev reconstructs visible and hidden targets from the previous
// tick's firing rates
func (cd *Coder) ReconFmPrev() {
	cd.reconFm(func(hu *HiddenUnit) float32 { return hu.StatePrev })
}

// ReconFmStates reconstructs visible and hidden targets from the firing rates
func (cd *Coder) ReconFmStates() {
	cd.reconFm(func(hu *HiddenUnit) float32 { return hu.State })
}

func (cd *Coder) reconFm(actFun func(hu *HiddenUnit) float32) {
	for vi := range cd.visRecon {
		cd.visRecon[vi] = 0
	}
	for hi := range cd.hidRecon {
		cd.hidRecon[hi] = 0
	}
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		act := actFun(hu)
		hu.FF.SendTo(cd.visRecon, act)
		hu.Rec.SendTo(cd.hidRecon, act)
	}
	for vi := range cd.Visible {
		cd.Visible[vi].Recon = cd.visRecon[vi]
	}
	for hi := range cd.Hidden {
		cd.Hidden[hi].Recon = cd.hidRecon[hi]
	}
}

// ReconMSE returns the mean squared error between input and reconstruction
func (cd *Coder) ReconMSE() float32 {
	if len(cd.Visible) == 0 {
		return 0
	}
	sse := float32(0)
	for vi := range cd.Visible {
		vu := &cd.Visible[vi]
		d := vu.Input - vu.Recon
		sse += d * d
	}
	return sse / float32(len(cd.Visible))
}

// Learn applies unsupervised learning: feed-forward and recurrent weights
// learn from the firing rate times the reconstruction error, lateral
// weights push co-activity toward Sparsity^2, and thresholds drift
// toward making the firing rate equal Sparsity.
func (cd *Coder) Learn(lp *LearnParams) {
	cd.ErrsFmRecon()
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		for ci := range hu.FF {
			c := &hu.FF[ci]
			c.Wt += lp.DWt.DWt(lp.FF*hu.State*cd.visErr[c.Idx], c.Wt)
		}
		for ci := range hu.Rec {
			c := &hu.Rec[ci]
			c.Wt += lp.DWt.DWt(lp.Rec*hu.State*cd.hidErr[c.Idx], c.Wt)
		}
		cd.learnLatThr(hu, lp)
	}
}

// LearnRL applies reward-modulated learning: feed-forward and recurrent
// weights change by rate * rewards[hi] * trace, with traces accumulating the
// firing rate times the reconstruction error.  Lateral and threshold learning
// are as in Learn.  rewards must have one value per hidden unit.
func (cd *Coder) LearnRL(rewards []float32, lp *LearnParams) error {
	if len(rewards) != len(cd.Hidden) {
		return fmt.Errorf("sdr.Coder LearnRL: got %d rewards for %d hidden units", len(rewards), len(cd.Hidden))
	}
	cd.ErrsFmRecon()
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		rew := rewards[hi]
		for ci := range hu.FF {
			c := &hu.FF[ci]
			c.Wt += lp.DWt.DWt(lp.FF*rew*c.Tr, c.Wt)
			c.Tr = lp.Trace.Accum(c.Tr, hu.State*cd.visErr[c.Idx])
		}
		for ci := range hu.Rec {
			c := &hu.Rec[ci]
			c.Wt += lp.DWt.DWt(lp.Rec*rew*c.Tr, c.Wt)
			c.Tr = lp.Trace.Accum(c.Tr, hu.State*cd.hidErr[c.Idx])
		}
		cd.learnLatThr(hu, lp)
	}
	return nil
}

func (cd *Coder) learnLatThr(hu *HiddenUnit, lp *LearnParams) {
	ssq := lp.SparsitySq()
	for ci := range hu.Lat {
		c := &hu.Lat[ci]
		c.Wt = math32.Max(0, c.Wt+lp.Lat*(hu.State*cd.Hidden[c.Idx].State-ssq))
	}
	hu.Thr = math32.Max(0, hu.Thr+lp.Thr*(hu.State-lp.Sparsity))
}

// StepEnd commits State to StatePrev for all hidden units
func (cd *Coder) StepEnd() {
	for hi := range cd.Hidden {
		hu := &cd.Hidden[hi]
		hu.StatePrev = hu.State
	}
}

// NConns returns the total number of connections in the coder
func (cd *Coder) NConns() int {
	n := 0
	for hi := range cd.Hidden {
		n += cd.Hidden[hi].NConns()
	}
	return n
}

// ActiveFrac returns the mean firing rate across hidden units
func (cd *Coder) ActiveFrac() float32 {
	if len(cd.Hidden) == 0 {
		return 0
	}
	sum := float32(0)
	for hi := range cd.Hidden {
		sum += cd.Hidden[hi].State
	}
	return sum / float32(len(cd.Hidden))
}
