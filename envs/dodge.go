// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/env"
	"github.com/goki/mat32"
)

// Dodge is a ball bouncing in a box, and an avoider that moves in x and y
// by Actions 0 and 1.  The reward is (distance - 0.5) * Gain, so keeping
// away from the ball is rewarded.
type Dodge struct {
	Base
	HalfSize float32    `def:"0.06" desc:"half-size of the ball and the avoider, normalized"`
	Speed    float32    `def:"0.04" desc:"ball speed per step"`
	MoveMax  float32    `def:"0.05" desc:"avoider movement per step at action = 1"`
	Gain     float32    `def:"10" desc:"reward gain"`
	Ball     mat32.Vec2 `inactive:"+" desc:"ball position"`
	Vel      mat32.Vec2 `inactive:"+" desc:"ball velocity"`
	Avoider  mat32.Vec2 `inactive:"+" desc:"avoider position"`
}

func (ev *Dodge) Defaults() {
	ev.HalfSize = 0.06
	ev.Speed = 0.04
	ev.MoveMax = 0.05
	ev.Gain = 10
}

func (ev *Dodge) Init(run int) {
	ev.initCtrs(run)
	ev.Avoider = mat32.Vec2{X: 0.5, Y: 0.5}
	ev.Ball = mat32.Vec2{X: float32(ev.Rand.Float64(-1)), Y: float32(ev.Rand.Float64(-1))}
	ang := float32(ev.Rand.Float64(-1)) * 2 * math32.Pi
	ev.Vel = mat32.Vec2{X: math32.Cos(ang), Y: math32.Sin(ang)}.MulScalar(ev.Speed)
	ev.Render()
}

// Render draws the ball and the avoider into Input
func (ev *Dodge) Render() {
	sc := &ev.Scene
	sc.Clear()
	half := mat32.Vec2{X: ev.HalfSize, Y: ev.HalfSize}
	sc.Box(ev.Ball, half)
	sc.Box(ev.Avoider, half)
	sc.Render(&ev.Input)
}

// bounce reflects a position and velocity component off the [0, 1] walls
func bounce(p, v *float32) {
	if *p < 0 {
		*p = -*p
		*v = -*v
	} else if *p > 1 {
		*p = 2 - *p
		*v = -*v
	}
}

// StepDodge moves the avoider by the action and the ball by its velocity,
// and computes the reward
func (ev *Dodge) StepDodge() {
	mv := mat32.Vec2{X: ev.Act.Values[0], Y: ev.Act.Values[1]}.MulScalar(ev.MoveMax)
	ev.Avoider = ev.Avoider.Add(mv)
	ev.Avoider.X = math32.Min(math32.Max(ev.Avoider.X, 0), 1)
	ev.Avoider.Y = math32.Min(math32.Max(ev.Avoider.Y, 0), 1)
	ev.Ball = ev.Ball.Add(ev.Vel)
	bounce(&ev.Ball.X, &ev.Vel.X)
	bounce(&ev.Ball.Y, &ev.Vel.Y)
	ev.Reward.Values[0] = (ev.Ball.DistTo(ev.Avoider) - 0.5) * ev.Gain
}

func (ev *Dodge) Step() bool {
	ev.stepCtrs()
	ev.StepDodge()
	ev.Render()
	return true
}

// String returns the current state as a string
func (ev *Dodge) String() string {
	return fmt.Sprintf("ball_%.2f_%.2f_avoid_%.2f_%.2f_rew_%g", ev.Ball.X, ev.Ball.Y, ev.Avoider.X, ev.Avoider.Y, ev.Reward.Values[0])
}

// Compile-time check that implements Env interface
var _ env.Env = (*Dodge)(nil)
