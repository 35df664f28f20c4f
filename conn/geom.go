// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"github.com/emer/emergent/evec"
	"github.com/goki/mat32"
)

// Project maps grid position pos in a grid of size from onto the
// proportionally corresponding position in a grid of size to.
func Project(pos, from, to evec.Vec2i) evec.Vec2i {
	if from.X <= 0 || from.Y <= 0 {
		return evec.Vec2i{}
	}
	scl := mat32.Vec2{X: float32(to.X) / float32(from.X), Y: float32(to.Y) / float32(from.Y)}
	p := mat32.Vec2{X: float32(pos.X), Y: float32(pos.Y)}.Mul(scl)
	return evec.Vec2i{X: int(mat32.Round(p.X)), Y: int(mat32.Round(p.Y))}
}

// Neighborhood returns the flat (row-major) indexes of all positions within
// the square of given radius around ctr, in a grid of given size.
// Positions outside the grid are skipped, never wrapped.
// If skipCtr is set, ctr itself is excluded.  A negative radius gives none.
func Neighborhood(ctr evec.Vec2i, radius int, size evec.Vec2i, skipCtr bool) []int {
	if radius < 0 {
		return nil
	}
	var idxs []int
	for dy := -radius; dy <= radius; dy++ {
		y := ctr.Y + dy
		if y < 0 || y >= size.Y {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := ctr.X + dx
			if x < 0 || x >= size.X {
				continue
			}
			if skipCtr && dx == 0 && dy == 0 {
				continue
			}
			idxs = append(idxs, y*size.X+x)
		}
	}
	return idxs
}

// Coord returns the grid position of flat index idx in a grid of given size
func Coord(idx int, size evec.Vec2i) evec.Vec2i {
	return evec.Vec2i{X: idx % size.X, Y: idx / size.X}
}

// Len returns the number of positions in a grid of given size
func Len(size evec.Vec2i) int {
	return size.X * size.Y
}
