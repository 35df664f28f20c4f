// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/emer/csrl/conn"
	"github.com/emer/emergent/evec"
	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"
)

// Scene renders boxes at normalized [0, 1] coordinates into an RGBA image,
// and down-samples the image onto the input grid
type Scene struct {
	Size    evec.Vec2i  `desc:"size of the input grid the image is down-sampled to"`
	ImgSize image.Point `desc:"size of the image to render"`
	Image   *image.RGBA `view:"-" desc:"rendered image"`
}

// Init ensures that the image is created and of the right size.
// ImgSize defaults to 8 pixels per grid cell.
func (sc *Scene) Init(size evec.Vec2i) {
	sc.Size = size
	if sc.ImgSize.X == 0 || sc.ImgSize.Y == 0 {
		sc.ImgSize = image.Point{size.X * 8, size.Y * 8}
	}
	if sc.Image != nil && sc.Image.Bounds().Size() != sc.ImgSize {
		sc.Image = nil
	}
	if sc.Image == nil {
		sc.Image = image.NewRGBA(image.Rectangle{Max: sc.ImgSize})
	}
}

// Clear clears the image to black
func (sc *Scene) Clear() {
	draw.Draw(sc.Image, sc.Image.Bounds(), image.Black, image.Point{}, draw.Src)
}

// Box draws a white box centered at ctr with half-extents half, in
// normalized coordinates (0, 0 = top left)
func (sc *Scene) Box(ctr, half mat32.Vec2) {
	sz := mat32.Vec2{X: float32(sc.ImgSize.X), Y: float32(sc.ImgSize.Y)}
	mn := ctr.Sub(half).Mul(sz)
	mx := ctr.Add(half).Mul(sz)
	r := image.Rect(int(mn.X), int(mn.Y), int(mat32.Ceil(mx.X)), int(mat32.Ceil(mx.Y)))
	draw.Draw(sc.Image, r.Intersect(sc.Image.Bounds()), &image.Uniform{color.White}, image.Point{}, draw.Src)
}

// Render down-samples the image to the grid, into tsr as gray levels in [0, 1]
func (sc *Scene) Render(tsr *etensor.Float32) {
	img := transform.Resize(sc.Image, sc.Size.X, sc.Size.Y, transform.Linear)
	gr := effect.Grayscale(img)
	tsr.SetShape([]int{sc.Size.Y, sc.Size.X}, nil, []string{"Y", "X"})
	for i := range tsr.Values {
		pos := conn.Coord(i, sc.Size)
		tsr.Values[i] = float32(gr.GrayAt(pos.X, pos.Y).Y) / 255
	}
}
