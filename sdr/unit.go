// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdr

import (
	"github.com/emer/csrl/conn"
)

// VisibleUnit is one input channel of the coder
type VisibleUnit struct {
	Input float32 `desc:"externally supplied input value"`
	Recon float32 `desc:"top-down reconstruction of the input from the hidden code"`
}

// HiddenUnit is one competitive spiking unit of the coder
type HiddenUnit struct {
	FF        conn.Conns `desc:"feed-forward connections to visible units within the receptive radius"`
	Rec       conn.Conns `desc:"recurrent connections to hidden units, predicting their previous state"`
	Lat       conn.Conns `desc:"lateral inhibitory connections to other hidden units"`
	Thr       float32    `desc:"adaptive spiking threshold"`
	Act       float32    `desc:"leaky integrated activation"`
	Spike     float32    `desc:"1 if the unit spiked on the current iteration, else 0"`
	SpikePrev float32    `desc:"spike on the previous iteration -- drives lateral inhibition"`
	State     float32    `desc:"firing rate averaged over the measure iterations"`
	StatePrev float32    `desc:"State on the previous tick"`
	Recon     float32    `desc:"reconstruction of this unit's previous state through recurrent connections"`
}

// SpikeFmAct applies the threshold to the activation
func (hu *HiddenUnit) SpikeFmAct() {
	if hu.Act > hu.Thr {
		hu.Spike = 1
		hu.Act = 0
	} else {
		hu.Spike = 0
	}
}

// NConns returns the total number of connections owned by this unit
func (hu *HiddenUnit) NConns() int {
	return len(hu.FF) + len(hu.Rec) + len(hu.Lat)
}
