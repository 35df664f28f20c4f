// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package envs provides small environments for exercising a csrl hierarchy,
implementing the emergent env.Env interface with an "Input" grid and a
scalar "Reward" state, and an "Action" vector in [-1, 1]:

* Checker: a checkerboard that inverts every step -- pure prediction.

* Pong: a paddle along the bottom catching a bouncing ball.

* Dodge: an avoider keeping away from a bouncing ball.

Pong and Dodge render their scenes into an image that is down-sampled
onto the input grid, so object positions are graded across cells.
*/
package envs
