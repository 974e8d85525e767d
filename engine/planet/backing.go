// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"fmt"
	"math"

	"github.com/arcusgl/spherelod/driver"
	"github.com/arcusgl/spherelod/internal/bitm"
)

// vertexSize is the byte size of one Vertex entry: three V2s
// (position, morph target, texcoord) and one [3]float32 color,
// all float32 (8+8+8+12 bytes).
const vertexSize = 2*4*3 + 3*4

// NodeStore is the fixed-capacity GPU-side arena backing every live
// quadtree node: one vertex-buffer slice, one height-texture layer
// and one two-mip normal-texture layer per slot. Its capacity is
// fixed at construction and never grows; acquire fails once every
// slot is in use.
type NodeStore struct {
	cfg *Config

	slots bitm.Bitm[uint64]

	vertexBuf driver.Buffer
	heightImg driver.Image
	normalImg driver.Image

	staging driver.Buffer
	cmd     driver.CmdBuffer
	gpu     driver.GPU
}

// NewNodeStore allocates the backing store's GPU resources: a
// persistently-mapped vertex buffer sized for cfg.MaxPatches slots,
// a single-channel R32f height-texture array and an RGBA32f (the
// driver has no RGB32f format, so the alpha channel goes unused)
// normal-texture array with two mip levels.
func NewNodeStore(gpu driver.GPU, cfg *Config) (*NodeStore, error) {
	s := &NodeStore{cfg: cfg, gpu: gpu}
	s.slots.Grow(cfg.MaxPatches / 64)
	if rem := cfg.MaxPatches % 64; rem != 0 {
		s.slots.Grow(1)
	}

	vertsPerSlot := cfg.VerticesPerPatch * cfg.VerticesPerPatch
	vbufSize := int64(cfg.MaxPatches * vertsPerSlot * vertexSize)
	vbuf, err := gpu.NewBuffer(vbufSize, true, driver.UVertexData|driver.UShaderRead)
	if err != nil {
		return nil, fmt.Errorf("%w: vertex buffer: %v", ErrMappingFailed, err)
	}
	if vbuf.Bytes() == nil {
		return nil, fmt.Errorf("%w: vertex buffer not host visible", ErrMappingFailed)
	}
	s.vertexBuf = vbuf

	n := cfg.NormalGridSize()
	himg, err := gpu.NewImage(driver.R32f, driver.Dim3D{Width: cfg.VerticesPerPatch, Height: cfg.VerticesPerPatch, Depth: 1}, cfg.MaxPatches, 1, 1, driver.UShaderSample)
	if err != nil {
		return nil, fmt.Errorf("%w: height image: %v", ErrMappingFailed, err)
	}
	s.heightImg = himg

	nimg, err := gpu.NewImage(driver.RGBA32f, driver.Dim3D{Width: n, Height: n, Depth: 1}, cfg.MaxPatches, 2, 1, driver.UShaderSample)
	if err != nil {
		return nil, fmt.Errorf("%w: normal image: %v", ErrMappingFailed, err)
	}
	s.normalImg = nimg

	stagingSize := int64(n * n * driver.RGBA32f.Size())
	staging, err := gpu.NewBuffer(stagingSize, true, driver.UGeneric)
	if err != nil {
		return nil, fmt.Errorf("%w: staging buffer: %v", ErrMappingFailed, err)
	}
	s.staging = staging

	cmd, err := gpu.NewCmdBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: command buffer: %v", ErrMappingFailed, err)
	}
	s.cmd = cmd

	return s, nil
}

// Acquire reserves a slot, returning ErrCapacity once every
// configured slot is in use.
func (s *NodeStore) Acquire() (slot int, err error) {
	idx, ok := s.slots.Search()
	if !ok || idx >= s.cfg.MaxPatches {
		return 0, ErrCapacity
	}
	s.slots.Set(idx)
	return idx, nil
}

// Release returns slot to the free list. The caller must ensure no
// in-flight GPU command still references it.
func (s *NodeStore) Release(slot int) {
	s.slots.Unset(slot)
}

// VertexBase returns the first vertex index of slot's region of
// the shared vertex buffer, for use as DrawIndexedIndirect's
// BaseVertex.
func (s *NodeStore) VertexBase(slot int) int {
	return slot * s.cfg.VerticesPerPatch * s.cfg.VerticesPerPatch
}

// AtlasLayer returns slot's texture-array layer, shared by both
// the height and normal atlases.
func (s *NodeStore) AtlasLayer(slot int) uint32 {
	return uint32(slot)
}

// WriteVertices copies verts into slot's region of the persistent
// vertex buffer. len(verts) must equal VerticesPerPatch^2.
func (s *NodeStore) WriteVertices(slot int, verts []Vertex) {
	base := s.VertexBase(slot) * vertexSize
	dst := s.vertexBuf.Bytes()[base:]
	for i, v := range verts {
		off := i * vertexSize
		putV2(dst[off:], v.Position)
		putV2(dst[off+8:], v.MorphTarget)
		putV2(dst[off+16:], v.LocalTexcoord)
		putFloats(dst[off+24:], v.Color[:])
	}
}

// WriteHeight uploads a VerticesPerPatch^2 single-channel height
// grid into mip level 0 of slot's height atlas layer.
func (s *NodeStore) WriteHeight(slot int, data []float32) error {
	return s.upload(s.heightImg, slot, 0, s.cfg.VerticesPerPatch, driver.R32f, data)
}

// WriteNormals uploads a normal grid (RGB packed into RGBA32f, A
// unused) into the given mip level (0: N×N, 1: (N/2)×(N/2)) of
// slot's normal atlas layer.
func (s *NodeStore) WriteNormals(slot, mip int, rgb []float32) error {
	n := s.cfg.NormalGridSize() >> mip
	padded := make([]float32, 0, n*n*4)
	for i := 0; i+2 < len(rgb); i += 3 {
		padded = append(padded, rgb[i], rgb[i+1], rgb[i+2], 0)
	}
	return s.upload(s.normalImg, slot, mip, n, driver.RGBA32f, padded)
}

// upload stages data as bytes and records/commits a one-shot
// transfer command copying it into img's (slot, mip) layer/level.
func (s *NodeStore) upload(img driver.Image, slot, mip, side int, pf driver.PixelFmt, data []float32) error {
	buf := s.staging.Bytes()
	putFloats(buf, data)

	if err := s.cmd.Begin(); err != nil {
		return fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}
	s.cmd.BeginBlit(false)
	s.cmd.CopyBufToImg(&driver.BufImgCopy{
		Buf:    s.staging,
		BufOff: 0,
		Stride: [2]int64{int64(side), int64(side)},
		Img:    img,
		ImgOff: driver.Off3D{},
		Layer:  slot,
		Level:  mip,
		Size:   driver.Dim3D{Width: side, Height: side, Depth: 1},
	})
	s.cmd.EndBlit()
	if err := s.cmd.End(); err != nil {
		return fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}

	ch := make(chan error, 1)
	s.gpu.Commit([]driver.CmdBuffer{s.cmd}, ch)
	if err := <-ch; err != nil {
		return fmt.Errorf("%w: %v", ErrMappingFailed, err)
	}
	return s.cmd.Reset()
}

func putV2(dst []byte, v [2]float32) {
	putFloats(dst, v[:])
}

func putFloats(dst []byte, vs []float32) {
	for i, f := range vs {
		putFloat32(dst[i*4:], f)
	}
}

func putFloat32(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
