// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package sw implements an in-process driver.Driver that keeps
// all GPU-side state as plain Go memory.
//
// It exists so that code written against the driver package can
// be exercised without a windowing system or a real graphics
// device present, which is useful for headless tests and for
// any tool that only needs to observe the buffer contracts that
// a real back-end would consume (e.g., the planet renderer's
// draw packer). It performs no actual rasterization: draw calls
// are recorded as DrawCmd entries in CmdBuffer.Draws, and copy
// commands are applied synchronously using ordinary slice
// operations.
package sw

import (
	"errors"

	"github.com/arcusgl/spherelod/driver"
)

func init() { driver.Register(swDriver{}) }

// Name is the value returned by swDriver.Name.
const Name = "software"

// swDriver implements driver.Driver.
type swDriver struct{}

// opened is the GPU returned by Open until Close is called.
var opened *GPU

func (swDriver) Name() string { return Name }

func (swDriver) Open() (driver.GPU, error) {
	if opened != nil {
		return opened, nil
	}
	opened = &GPU{
		limits: driver.Limits{
			MaxImage1D:        16384,
			MaxImage2D:        16384,
			MaxImageCube:      16384,
			MaxImage3D:        2048,
			MaxLayers:         2048,
			MaxDescHeaps:      4,
			MaxDBuffer:        4,
			MaxDImage:         4,
			MaxDConstant:      12,
			MaxDTexture:       16,
			MaxDSampler:       16,
			MaxDBufferRange:   1 << 30,
			MaxDConstantRange: 1 << 14,
			MaxColorTargets:   8,
			MaxFBSize:         [2]int{16384, 16384},
			MaxFBLayers:       2048,
			MaxPointSize:      64,
			MaxViewports:      16,
			MaxVertexIn:       16,
			MaxFragmentIn:     32,
			MaxDispatch:       [3]int{65535, 65535, 65535},
		},
	}
	return opened, nil
}

func (swDriver) Close() { opened = nil }

var errDestroyed = errors.New("sw: use of destroyed resource")

// GPU implements driver.GPU.
type GPU struct {
	limits driver.Limits
}

func (g *GPU) Driver() driver.Driver { return swDriver{} }

// Commit applies every recorded command buffer and reports
// success. Recording already performs all of the buffer/image
// side effects eagerly (there is no asynchronous device to wait
// on), so Commit's only job is to validate that every cb was
// ended and to signal the caller.
func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	for _, c := range cb {
		cmd := c.(*CmdBuffer)
		if !cmd.ended {
			ch <- errors.New("sw: Commit called with a command buffer that was not ended")
			return
		}
	}
	ch <- nil
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) { return &CmdBuffer{gpu: g}, nil }

func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	a := make([]driver.Attachment, len(att))
	copy(a, att)
	s := make([]driver.Subpass, len(sub))
	copy(s, sub)
	return &RenderPass{att: a, sub: s}, nil
}

func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	b := make([]byte, len(data))
	copy(b, data)
	return &ShaderCode{data: b}, nil
}

func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	d := make([]driver.Descriptor, len(ds))
	copy(d, ds)
	return &DescHeap{descs: d}, nil
}

func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	h := make([]driver.DescHeap, len(dh))
	copy(h, dh)
	return &DescTable{heaps: h}, nil
}

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch state.(type) {
	case *driver.GraphState, *driver.CompState:
		return &Pipeline{}, nil
	default:
		return nil, errors.New("sw: NewPipeline requires *driver.GraphState or *driver.CompState")
	}
}

func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size <= 0 {
		return nil, errors.New("sw: NewBuffer requires size > 0")
	}
	return &Buffer{data: make([]byte, size), visible: visible, usage: usg}, nil
}

func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	if layers < 1 {
		layers = 1
	}
	if levels < 1 {
		levels = 1
	}
	img := &Image{
		gpu:    g,
		format: pf,
		size:   size,
		layers: layers,
		levels: levels,
		usage:  usg,
		data:   make([][][]byte, layers),
	}
	psz := pf.Size()
	for l := range img.data {
		img.data[l] = make([][]byte, levels)
		w, h, d := size.Width, size.Height, size.Depth
		for lv := 0; lv < levels; lv++ {
			n := w * h * d * psz
			if n < psz {
				n = psz
			}
			img.data[l][lv] = make([]byte, n)
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
	}
	return img, nil
}

func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) { return &Sampler{}, nil }

func (g *GPU) Limits() driver.Limits { return g.limits }

// Stub Destroyer-only types.

type RenderPass struct {
	destroyed bool
	att       []driver.Attachment
	sub       []driver.Subpass
}

func (r *RenderPass) Destroy() { r.destroyed = true }

func (r *RenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	return &Framebuf{}, nil
}

type Framebuf struct{ destroyed bool }

func (f *Framebuf) Destroy() { f.destroyed = true }

type ShaderCode struct {
	destroyed bool
	data      []byte
}

func (s *ShaderCode) Destroy() { s.destroyed = true }

type DescHeap struct {
	destroyed bool
	descs     []driver.Descriptor
	count     int
}

func (d *DescHeap) Destroy() { d.destroyed = true }

func (d *DescHeap) New(n int) error {
	if n == d.count {
		return nil
	}
	d.count = n
	return nil
}

func (d *DescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {}
func (d *DescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView)                    {}
func (d *DescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler)                  {}
func (d *DescHeap) Count() int                                                            { return d.count }

type DescTable struct {
	destroyed bool
	heaps     []driver.DescHeap
}

func (d *DescTable) Destroy() { d.destroyed = true }

type Pipeline struct{ destroyed bool }

func (p *Pipeline) Destroy() { p.destroyed = true }

type Sampler struct{ destroyed bool }

func (s *Sampler) Destroy() { s.destroyed = true }
