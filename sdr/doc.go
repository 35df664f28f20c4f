// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sdr provides the competitive spiking sparse coder used at every
layer of a csrl hierarchy.

* `coder.go` has the `Coder` with its visible / hidden populations,
  spatially local construction (`CreateRandom`), the settle + measure
  spiking dynamics (`Activate`), and the unsupervised (`Learn`) and
  reward-modulated (`LearnRL`) learning rules.

* `params.go` has the `ActParams`, `LearnParams` and `Radii` that
  configure it.

The firing rate of each hidden unit, averaged over the measure
iterations, is the sparse code (`HiddenState`), and the reconstruction
from that code is what the learning rules compare against the input.
*/
package sdr
