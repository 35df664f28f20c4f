// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"github.com/emer/emergent/erand"
	"github.com/goki/ki/kit"
)

// DeriveType is the way the greedy action is derived from the Q gradient
type DeriveType int

//go:generate stringer -type=DeriveType

var KiT_DeriveType = kit.Enums.AddEnum(DeriveTypeN, kit.NotBitFlag, nil)

func (ev DeriveType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *DeriveType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// GradAscent steps each action by Alpha * gradient
	GradAscent DeriveType = iota

	// SignAscent steps each action by Alpha * sign(gradient)
	SignAscent

	DeriveTypeN
)

// Deriver derives the greedy action of a Unit from its current cell code
type Deriver interface {
	// Derive updates Actions[].State, starting from their current values
	Derive(un *Unit, up *Params, rnd erand.Rand)
}

// Deriver returns the Deriver for the configured Type
func (dp *DeriveParams) Deriver() Deriver {
	switch dp.Type {
	case SignAscent:
		return SignAscender{}
	default:
		return GradAscender{}
	}
}

// GradAscender ascends the Q gradient with step Alpha * gradient
type GradAscender struct{}

func (ga GradAscender) Derive(un *Unit, up *Params, rnd erand.Rand) {
	un.Ascend(up, rnd, func(g float32) float32 { return up.Derive.Alpha * g })
}

// SignAscender ascends the Q gradient with fixed step Alpha * sign(gradient)
type SignAscender struct{}

func (sa SignAscender) Derive(un *Unit, up *Params, rnd erand.Rand) {
	un.Ascend(up, rnd, func(g float32) float32 { return up.Derive.Alpha * Sign(g) })
}
