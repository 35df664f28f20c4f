// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"fmt"

	"github.com/emer/emergent/env"
)

// Checker presents a checkerboard that inverts every step.  It has no
// actions and zero reward: the agent's reward is its own prediction error.
type Checker struct {
	Base
	Phase int `inactive:"+" desc:"0 or 1 -- which of the two boards is shown"`
}

func (ev *Checker) Init(run int) {
	ev.initCtrs(run)
	ev.Phase = 1
}

// SetState renders the current board -- cells are exactly 0 or 1
func (ev *Checker) SetState() {
	for y := 0; y < ev.Size.Y; y++ {
		for x := 0; x < ev.Size.X; x++ {
			ev.Input.Values[y*ev.Size.X+x] = float32((x + y + ev.Phase) % 2)
		}
	}
}

func (ev *Checker) Step() bool {
	ev.stepCtrs()
	ev.Phase = 1 - ev.Phase
	ev.SetState()
	return true
}

// String returns the current state as a string
func (ev *Checker) String() string {
	return fmt.Sprintf("phase_%d", ev.Phase)
}

// Compile-time check that implements Env interface
var _ env.Env = (*Checker)(nil)
