// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package csrl is the overall repository for the hierarchical predictive
sparse-coding and reinforcement-learning engine.

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* conn: the connection store shared by all populations: weights, eligibility
traces, the trace and weight-change rules, and the grid neighborhood geometry.

* sdr: the competitive spiking sparse coder at each layer, with unsupervised
and reward-modulated learning.

* rl: the local actor-critic unit at each prediction node, deriving continuous
actions by ascent on a learned Q estimate.

* hier: the Hierarchy that stacks coders and prediction nodes, passing codes
up and predictions and local rewards down, with params styling, weights files,
threading and timers.

* envs: small environments (checkerboard, pong, dodge) implementing the
emergent env.Env interface.

* examples: examples/agent runs a hierarchy on one of the envs from the command
line, logging per-epoch reward and prediction error.
*/
package csrl
