// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"github.com/emer/csrl/conn"
)

// Cell is one competitive member of a Unit's sparse cell population.
type Cell struct {
	FF        conn.Conns      `desc:"reconstructive connections to every input"`
	Lat       conn.Conns      `desc:"lateral inhibitory connections to the other cells"`
	Act       conn.Conns      `desc:"connections from every action into this cell's action-conditioned state"`
	Bias      conn.Connection `desc:"bias of the action-conditioned state (Idx unused)"`
	Q         conn.Connection `desc:"weight of this cell in the linear Q read-out (Idx unused)"`
	Thr       float32         `desc:"adaptive threshold, subtracted from excitation before competition"`
	Excite    float32         `desc:"accumulated reconstruction-error driven excitation"`
	State     float32         `desc:"1 if active in the sparse code, else 0"`
	StatePrev float32         `desc:"State on the previous tick"`
	ActState  float32         `desc:"action-conditioned state: sigmoid(Bias + Act . actions) * State"`
	ActErr    float32         `desc:"derivative of Q with respect to the net input of ActState"`
}

// ActStateFmActs computes ActState and ActErr for given action values
func (cl *Cell) ActStateFmActs(acts []float32) {
	if cl.State == 0 {
		cl.ActState = 0
		cl.ActErr = 0
		return
	}
	sig := conn.Sigmoid(cl.Bias.Wt + cl.Act.Sum(acts))
	cl.ActState = sig * cl.State
	cl.ActErr = cl.Q.Wt * cl.State * sig * (1 - sig)
}

// NConns returns the number of connections owned by the cell
func (cl *Cell) NConns() int {
	return len(cl.FF) + len(cl.Lat) + len(cl.Act) + 2
}

// Action is one controllable degree of freedom of a Unit
type Action struct {
	State     float32 `desc:"greedy action derived by ascent on Q"`
	ExplState float32 `desc:"exploratory action -- what is actually taken"`
	Err       float32 `desc:"gradient of Q with respect to this action"`
}
