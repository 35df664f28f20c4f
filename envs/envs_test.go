// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/env"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/evec"
	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-5)

func TestChecker(t *testing.T) {
	ev := &Checker{}
	ev.Nm = "Checker"
	if err := ev.Validate(); err == nil {
		t.Errorf("expected error before Config")
	}
	ev.Config(evec.Vec2i{X: 4, Y: 4}, 0, 3, erand.NewSysRand(1))
	if err := ev.Validate(); err != nil {
		t.Fatal(err)
	}
	ev.Init(0)
	ev.Step()
	first := append([]float32{}, ev.Input.Values...)
	ev.Step()
	sum := float32(0)
	for i, v := range ev.Input.Values {
		if v+first[i] != 1 {
			t.Errorf("cell %d did not invert: %g -> %g", i, first[i], v)
		}
		sum += v
	}
	if sum != 8 {
		t.Errorf("board sum %g, cor 8", sum)
	}
	ev.Step()
	ev.Step()
	if cur, _, _ := ev.Counter(env.Epoch); cur != 1 {
		t.Errorf("epoch %d after 4 steps of 3, cor 1", cur)
	}
	if ev.State("Reward").FloatVal1D(0) != 0 {
		t.Errorf("checker reward not zero")
	}
}

func newPong() *Pong {
	ev := &Pong{}
	ev.Nm = "Pong"
	ev.Defaults()
	ev.Config(evec.Vec2i{X: 8, Y: 8}, 1, 100, erand.NewSysRand(3))
	ev.Init(0)
	return ev
}

func TestPongCatchMiss(t *testing.T) {
	ev := newPong()
	ev.Paddle = 0.5
	ev.Ball = mat32.Vec2{X: 0.5, Y: ev.paddleY() - ev.BallR - 0.01}
	ev.Vel = mat32.Vec2{X: 0, Y: 0.05}
	ev.Step()
	if !ev.Caught || ev.RewardVal() != ev.CatchRew || ev.Vel.Y >= 0 {
		t.Errorf("catch: caught %v reward %g vel %v", ev.Caught, ev.RewardVal(), ev.Vel)
	}

	ev.Paddle = 0
	ev.Ball = mat32.Vec2{X: 0.9, Y: ev.paddleY() - ev.BallR - 0.01}
	ev.Vel = mat32.Vec2{X: 0, Y: 0.05}
	ev.Step()
	if !ev.Missed || ev.RewardVal() != ev.MissRew {
		t.Errorf("miss: missed %v reward %g", ev.Missed, ev.RewardVal())
	}
	if ev.Ball.Y != ev.BallR || ev.Vel.Y <= 0 {
		t.Errorf("ball not reset after miss: %v %v", ev.Ball, ev.Vel)
	}
}

func TestPongShapingAction(t *testing.T) {
	ev := newPong()
	ev.Paddle = 0.5
	ev.Ball = mat32.Vec2{X: 0.4, Y: 0.5}
	ev.Vel = mat32.Vec2{X: 0.1, Y: 0}
	ev.Step()
	if math32.Abs(ev.RewardVal()-ev.Shape*0.5) > difTol {
		t.Errorf("shaping reward under the ball: %g, cor %g", ev.RewardVal(), ev.Shape*0.5)
	}

	act := etensor.NewFloat32([]int{1}, nil, nil)
	act.Values[0] = 5
	ev.Action("Action", act)
	if ev.Act.Values[0] != 1 {
		t.Errorf("action not clipped: %g", ev.Act.Values[0])
	}
	ev.Step()
	if math32.Abs(ev.Paddle-0.6) > difTol {
		t.Errorf("paddle did not move: %g", ev.Paddle)
	}
	for i := 0; i < 10; i++ {
		ev.Step()
	}
	if ev.Paddle != 1 {
		t.Errorf("paddle not clipped at the wall: %g", ev.Paddle)
	}
}

func TestPongRender(t *testing.T) {
	ev := newPong()
	ev.Ball = mat32.Vec2{X: 0.5, Y: 0.4}
	ev.Render()
	if ev.Input.Dim(0) != 8 || ev.Input.Dim(1) != 8 {
		t.Fatalf("input shape %v", ev.Input.Shapes())
	}
	// brightest cell above the paddle row is at the ball
	best := -1
	bestv := float32(0)
	for i := 0; i < 7*8; i++ {
		v := ev.Input.Values[i]
		if v < 0 || v > 1 {
			t.Errorf("input %d out of range: %g", i, v)
		}
		if v > bestv {
			best = i
			bestv = v
		}
	}
	if best < 0 {
		t.Fatalf("ball not rendered")
	}
	bx := best % 8
	by := best / 8
	if bx < 3 || bx > 4 || by < 2 || by > 3 {
		t.Errorf("ball rendered at %d, %d, cor near 4, 3", bx, by)
	}
	pad := float32(0)
	for x := 0; x < 8; x++ {
		pad += ev.Input.Values[7*8+x]
	}
	if pad <= 0 {
		t.Errorf("paddle not rendered")
	}
}

func TestDodge(t *testing.T) {
	ev := &Dodge{}
	ev.Nm = "Dodge"
	ev.Defaults()
	ev.Config(evec.Vec2i{X: 8, Y: 8}, 2, 100, erand.NewSysRand(5))
	ev.Init(0)
	if len(ev.Actions()) != 1 || ev.Act.Len() != 2 {
		t.Errorf("dodge actions: %v", ev.Actions())
	}
	ev.Ball = mat32.Vec2{X: 0.1, Y: 0.1}
	ev.Vel = mat32.Vec2{}
	ev.Avoider = mat32.Vec2{X: 0.9, Y: 0.1}
	ev.Step()
	if math32.Abs(ev.RewardVal()-3) > difTol {
		t.Errorf("dodge reward %g, cor 3", ev.RewardVal())
	}

	ev.Ball = mat32.Vec2{X: 0.99, Y: 0.5}
	ev.Vel = mat32.Vec2{X: 0.04, Y: 0}
	ev.Step()
	if math32.Abs(ev.Ball.X-0.97) > difTol || ev.Vel.X >= 0 {
		t.Errorf("no bounce: %v %v", ev.Ball, ev.Vel)
	}

	act := etensor.NewFloat32([]int{2}, nil, nil)
	act.Values[0] = -1
	act.Values[1] = 1
	ev.Action("Action", act)
	ev.Avoider = mat32.Vec2{X: 0.5, Y: 0.5}
	ev.Step()
	if math32.Abs(ev.Avoider.X-0.45) > difTol || math32.Abs(ev.Avoider.Y-0.55) > difTol {
		t.Errorf("avoider did not move: %v", ev.Avoider)
	}
}
