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

// Pong is a ball bouncing in a box, with a paddle on the bottom edge that
// moves left / right by Action 0.  Catching the ball gives CatchRew, letting
// it past gives MissRew, and otherwise the reward is shaped by how close the
// paddle is to the ball.
type Pong struct {
	Base
	PaddleW  float32    `def:"0.3" desc:"paddle width, normalized"`
	PaddleH  float32    `def:"0.06" desc:"paddle height, normalized"`
	BallR    float32    `def:"0.06" desc:"ball half-size, normalized"`
	Speed    float32    `def:"0.05" desc:"ball speed per step"`
	MoveMax  float32    `def:"0.1" desc:"paddle movement per step at action = 1"`
	CatchRew float32    `def:"1" desc:"reward for catching the ball"`
	MissRew  float32    `def:"-1" desc:"reward for missing the ball"`
	Shape    float32    `def:"0.1" desc:"gain of the distance shaping reward"`
	Ball     mat32.Vec2 `inactive:"+" desc:"ball position"`
	Vel      mat32.Vec2 `inactive:"+" desc:"ball velocity"`
	Paddle   float32    `inactive:"+" desc:"paddle center x"`
	Caught   bool       `inactive:"+" desc:"ball was caught on the last step"`
	Missed   bool       `inactive:"+" desc:"ball was missed on the last step"`
}

func (ev *Pong) Defaults() {
	ev.PaddleW = 0.3
	ev.PaddleH = 0.06
	ev.BallR = 0.06
	ev.Speed = 0.05
	ev.MoveMax = 0.1
	ev.CatchRew = 1
	ev.MissRew = -1
	ev.Shape = 0.1
}

func (ev *Pong) Init(run int) {
	ev.initCtrs(run)
	ev.Paddle = 0.5
	ev.ResetBall()
	ev.Render()
}

// ResetBall puts the ball at a random position along the top, heading down
func (ev *Pong) ResetBall() {
	ev.Ball = mat32.Vec2{X: float32(ev.Rand.Float64(-1)), Y: ev.BallR}
	ang := (float32(ev.Rand.Float64(-1)) - 0.5) * 0.5 * math32.Pi
	ev.Vel = mat32.Vec2{X: math32.Sin(ang), Y: math32.Cos(ang)}.MulScalar(ev.Speed)
}

// paddleY returns the y of the top of the paddle
func (ev *Pong) paddleY() float32 {
	return 1 - ev.PaddleH
}

// Render draws the ball and paddle into Input
func (ev *Pong) Render() {
	sc := &ev.Scene
	sc.Clear()
	sc.Box(ev.Ball, mat32.Vec2{X: ev.BallR, Y: ev.BallR})
	sc.Box(mat32.Vec2{X: ev.Paddle, Y: 1 - 0.5*ev.PaddleH}, mat32.Vec2{X: 0.5 * ev.PaddleW, Y: 0.5 * ev.PaddleH})
	sc.Render(&ev.Input)
}

// StepPong moves the paddle by the action and the ball by its velocity,
// and computes the reward
func (ev *Pong) StepPong() {
	ev.Paddle = math32.Min(math32.Max(ev.Paddle+ev.MoveMax*ev.Act.Values[0], 0), 1)
	ev.Ball = ev.Ball.Add(ev.Vel)
	if ev.Ball.X < 0 {
		ev.Ball.X = -ev.Ball.X
		ev.Vel.X = -ev.Vel.X
	} else if ev.Ball.X > 1 {
		ev.Ball.X = 2 - ev.Ball.X
		ev.Vel.X = -ev.Vel.X
	}
	if ev.Ball.Y < 0 {
		ev.Ball.Y = -ev.Ball.Y
		ev.Vel.Y = -ev.Vel.Y
	}
	ev.Caught = false
	ev.Missed = false
	dist := math32.Abs(ev.Ball.X - ev.Paddle)
	rew := ev.Shape * (0.5 - dist)
	if ev.Vel.Y > 0 && ev.Ball.Y+ev.BallR >= ev.paddleY() {
		if dist <= 0.5*ev.PaddleW+ev.BallR {
			ev.Caught = true
			rew = ev.CatchRew
			ev.Ball.Y = ev.paddleY() - ev.BallR
			ev.Vel.Y = -ev.Vel.Y
		} else {
			ev.Missed = true
			rew = ev.MissRew
			ev.ResetBall()
		}
	}
	ev.Reward.Values[0] = rew
}

func (ev *Pong) Step() bool {
	ev.stepCtrs()
	ev.StepPong()
	ev.Render()
	return true
}

// String returns the current state as a string
func (ev *Pong) String() string {
	return fmt.Sprintf("ball_%.2f_%.2f_paddle_%.2f_rew_%g", ev.Ball.X, ev.Ball.Y, ev.Paddle, ev.Reward.Values[0])
}

// Compile-time check that implements Env interface
var _ env.Env = (*Pong)(nil)
