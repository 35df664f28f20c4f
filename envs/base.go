// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"fmt"

	"github.com/emer/emergent/env"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/evec"
	"github.com/emer/etable/etensor"
)

// Base has the state and counters shared by all the envs: a rendered
// Input grid, a scalar Reward, and an Action vector set by the agent
type Base struct {
	Nm     string          `desc:"name of this environment"`
	Dsc    string          `desc:"description of this environment"`
	Size   evec.Vec2i      `desc:"size of the input grid"`
	Scene  Scene           `desc:"renderer for the input"`
	Input  etensor.Float32 `desc:"input grid"`
	Reward etensor.Float32 `desc:"reward for the last action"`
	Act    etensor.Float32 `desc:"current action, in [-1, 1] per dimension"`
	Rand   erand.Rand      `view:"-" desc:"random number source -- must be set before Init"`
	Run    env.Ctr         `view:"inline" desc:"current run of model as provided during Init"`
	Epoch  env.Ctr         `view:"inline" desc:"number of times through Trial.Max steps"`
	Trial  env.Ctr         `view:"inline" desc:"trial is the step counter within epoch"`
}

func (ev *Base) Name() string { return ev.Nm }
func (ev *Base) Desc() string { return ev.Dsc }

// Config sets the grid size, number of action dimensions, steps per epoch
// and the random number source
func (ev *Base) Config(size evec.Vec2i, nAct, epochLen int, rnd erand.Rand) {
	ev.Size = size
	ev.Rand = rnd
	ev.Trial.Max = epochLen
	ev.Scene.Init(size)
	ev.Input.SetShape([]int{size.Y, size.X}, nil, []string{"Y", "X"})
	ev.Reward.SetShape([]int{1}, nil, []string{"1"})
	ev.Act.SetShape([]int{nAct}, nil, []string{"N"})
}

func (ev *Base) Validate() error {
	if ev.Size.X <= 0 || ev.Size.Y <= 0 {
		return fmt.Errorf("%v: Size %v must be set with Config", ev.Nm, ev.Size)
	}
	if ev.Rand == nil {
		return fmt.Errorf("%v: Rand must be set with Config", ev.Nm)
	}
	return nil
}

func (ev *Base) Counters() []env.TimeScales {
	return []env.TimeScales{env.Run, env.Epoch, env.Trial}
}

func (ev *Base) States() env.Elements {
	return env.Elements{
		{"Input", []int{ev.Size.Y, ev.Size.X}, []string{"Y", "X"}},
		{"Reward", []int{1}, nil},
	}
}

func (ev *Base) State(element string) etensor.Tensor {
	switch element {
	case "Input":
		return &ev.Input
	case "Reward":
		return &ev.Reward
	}
	return nil
}

func (ev *Base) Actions() env.Elements {
	return env.Elements{
		{"Action", []int{ev.Act.Len()}, []string{"N"}},
	}
}

// Action records the agent's action for the next Step, clipped to [-1, 1]
func (ev *Base) Action(element string, input etensor.Tensor) {
	if element != "Action" {
		return
	}
	for i := range ev.Act.Values {
		if i >= input.Len() {
			break
		}
		v := float32(input.FloatVal1D(i))
		switch {
		case v < -1:
			v = -1
		case v > 1:
			v = 1
		}
		ev.Act.Values[i] = v
	}
}

func (ev *Base) Counter(scale env.TimeScales) (cur, prv int, chg bool) {
	switch scale {
	case env.Run:
		return ev.Run.Query()
	case env.Epoch:
		return ev.Epoch.Query()
	case env.Trial:
		return ev.Trial.Query()
	}
	return -1, -1, false
}

// RewardVal returns the current reward
func (ev *Base) RewardVal() float32 { return ev.Reward.Values[0] }

// initCtrs initializes the counters for given run
func (ev *Base) initCtrs(run int) {
	ev.Run.Scale = env.Run
	ev.Epoch.Scale = env.Epoch
	ev.Trial.Scale = env.Trial
	ev.Run.Init()
	ev.Epoch.Init()
	ev.Trial.Init()
	ev.Run.Cur = run
	ev.Trial.Cur = -1 // init state -- key so that first Step() = 0
	ev.Act.SetZeros()
	ev.Reward.SetZeros()
}

// stepCtrs increments the counters for one step
func (ev *Base) stepCtrs() {
	ev.Epoch.Same() // good idea to just reset all non-inner-most counters at start
	if ev.Trial.Incr() {
		ev.Epoch.Incr()
	}
}
