// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Descriptor management.
//
// For portability, the following restrictions apply:
//
//	DescHeap per DescTable           | 4 (max)
//	DTexture/DSampler descriptors    | 16 (max)
//	DConstant descriptors            | 12 (max)
//	DImage/DBuffer descriptors       | 4 (max)
//	DConstant/DBuffer data alignment | 256 bytes (min)
//	DConstant/DBuffer data size      | 16 KiB (max)
//
// (the above names refer to the driver package).

package shader

import (
	"github.com/arcusgl/spherelod/driver"
	"github.com/arcusgl/spherelod/engine/internal/ctxt"
)

func constantDesc(nr int) driver.Descriptor {
	return driver.Descriptor{
		Type:   driver.DConstant,
		Stages: driver.SVertex | driver.SFragment,
		Nr:     nr,
		Len:    1,
	}
}

func textureDesc(nr int) driver.Descriptor {
	return driver.Descriptor{
		Type:   driver.DTexture,
		Stages: driver.SVertex | driver.SFragment,
		Nr:     nr,
		Len:    1,
	}
}

func samplerDesc(nr int) driver.Descriptor {
	return driver.Descriptor{
		Type:   driver.DSampler,
		Stages: driver.SVertex | driver.SFragment,
		Nr:     nr,
		Len:    1,
	}
}

// newFrameHeap creates a new driver.DescHeap suitable for
// per-frame uniform data (FrameLayout) plus the height and
// normal atlas bindings that every patch instance samples
// from by way of its atlas layer.
func newFrameHeap() (driver.DescHeap, error) {
	return ctxt.GPU().NewDescHeap([]driver.Descriptor{
		// Frame.
		constantDesc(0),
		// Height atlas.
		textureDesc(1), samplerDesc(2),
		// Normal atlas.
		textureDesc(3), samplerDesc(4),
	})
}

// newDescTable creates a new driver.DescTable wrapping the
// frame heap. A single heap is enough for this pipeline: the
// per-contribution data (InstanceLayout) is read directly from
// the persistently-mapped instance buffer bound as a vertex
// input, not through a descriptor.
func newDescTable() (driver.DescTable, error) {
	dh, err := newFrameHeap()
	if err != nil {
		return nil, err
	}
	return ctxt.GPU().NewDescTable([]driver.DescHeap{dh})
}
