// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hier

import (
	"github.com/goki/ki/kit"
)

// ActionType is the role of each of the reserved actions of a node's
// reinforcement unit.  Recurrent actions follow after ActionTypeN.
type ActionType int

//go:generate stringer -type=ActionType

var KiT_ActionType = kit.Enums.AddEnum(ActionTypeN, kit.NotBitFlag, nil)

func (ev ActionType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ActionType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Attention gates the hidden state passed up to the next layer
	Attention ActionType = iota

	// Reward is the local reward fed down to the layer below
	Reward

	// LearnGate scales learning of the node's feed-back and predictive weights
	LearnGate

	ActionTypeN
)

// InputType is the type of an input channel
type InputType int

//go:generate stringer -type=InputType

var KiT_InputType = kit.Enums.AddEnum(InputTypeN, kit.NotBitFlag, nil)

func (ev InputType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *InputType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// StateInput channels are set by the environment and predicted
	StateInput InputType = iota

	// ActionInput channels are driven by the hierarchy: their exploratory
	// prediction is the action taken, and is fed back as the next input
	ActionInput

	InputTypeN
)
