// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package sw

import (
	"github.com/arcusgl/spherelod/driver"
)

// Image implements driver.Image.
// data[layer][level] holds the raw, tightly packed pixel
// data for that layer/level (row-major, no padding).
type Image struct {
	destroyed bool
	gpu       *GPU
	format    driver.PixelFmt
	size      driver.Dim3D
	layers    int
	levels    int
	usage     driver.Usage
	data      [][][]byte
}

func (img *Image) Destroy() { img.destroyed = true; img.data = nil }

func (img *Image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return &ImageView{img: img, layer: layer, layers: layers, level: level, levels: levels, typ: typ}, nil
}

// levelSize returns the pixel dimensions of the given mip level.
func (img *Image) levelSize(level int) (w, h, d int) {
	w, h, d = img.size.Width, img.size.Height, img.size.Depth
	for i := 0; i < level; i++ {
		if w > 1 {
			w >>= 1
		}
		if h > 1 {
			h >>= 1
		}
		if d > 1 {
			d >>= 1
		}
	}
	return
}

// ImageView implements driver.ImageView.
type ImageView struct {
	destroyed bool
	img       *Image
	typ       driver.ViewType
	layer     int
	layers    int
	level     int
	levels    int
}

func (v *ImageView) Destroy() { v.destroyed = true }
