// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hier provides the Hierarchy that composes sparse coders (package sdr)
and reinforcement units (package rl) into a stack of predictive layers.

Each tick (SimStep):

* ActivateUp: the input channels drive the layer 0 coder, and the hidden
  code of each layer, gated by the Attention action of each of its nodes,
  drives the layer above.

* PredictDown: starting at the top, where the feed-back pathway carries
  the reward (plus a fixed per-node offset if configured), each node
  predicts the next hidden state at its location from the predictions of
  the layer above and the hidden states around it.  The input nodes
  predict the input channels from layer 0, and the action channels are
  explored around their prediction.

* UnitsDown: each node's rl.Unit takes the local rewards of the layer
  above, the hidden states around it, and its own recurrent actions, and
  produces the Attention, Reward and LearnGate actions.  The Reward action
  becomes the local reward fed to the layer below.

* Learn: feed-back and predictive weights move along traces of prediction
  error times the previous source values, gated per node by LearnGate and
  by whether the reward fed down is positive.  The coders then learn,
  optionally modulated by their nodes' local rewards.

Phases without random draws run in parallel over the nodes of a layer when
NThreads > 1; all random draws happen in a fixed order in the calling
goroutine, so a fixed seed gives the same result for any NThreads.
*/
package hier
