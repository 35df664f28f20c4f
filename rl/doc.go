// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rl provides the local reinforcement-learning unit attached to each
prediction node of a csrl hierarchy: a small actor-critic that encodes its
inputs with a competitive cell population, estimates Q as a linear read-out
of action-conditioned cell states, and derives continuous actions by ascent
on that estimate.

* `unit.go` has the `Unit` and its per-tick state machine:
  Encode -> DeriveAction -> Explore -> Evaluate (TD) -> Learn.

* `derive.go` has the `Deriver` strategies for the ascent step:
  `GradAscent` (step proportional to the gradient) and `SignAscent`
  (fixed step in the direction of the gradient).

* `params.go` has the `Params`, shared by all units of a layer and passed
  into `SimStep`.

All TD-driven weights learn as `Lrate * TD * trace`, with traces composed by
`conn.TraceParams` (additive by default).
*/
package rl
