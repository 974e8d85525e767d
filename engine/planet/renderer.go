// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"encoding/binary"
	"fmt"

	"github.com/arcusgl/spherelod/driver"
	"github.com/arcusgl/spherelod/engine/internal/shader"
	"github.com/arcusgl/spherelod/linear"
)

// Pose is the minimal per-frame camera state the LOD selector,
// residency controller and draw packer need: a position for
// distance tests and camera-relative translation, plus the
// view/projection matrices the selector's frustum is extracted
// from. Position is kept in double precision so that subtracting
// it from a patch's origin doesn't lose significance at planetary
// distances from the world origin. A full camera-control
// collaborator is out of scope; tests build a Pose directly.
type Pose struct {
	Position   Vec3d
	View       linear.M4
	Projection linear.M4
}

// ViewProjection returns Projection ⋅ View.
func (p *Pose) ViewProjection() linear.M4 {
	var vp linear.M4
	vp.Mul(&p.Projection, &p.View)
	return vp
}

// indirectCmdSize matches driver/sw's decoding of a packed
// indexed-indirect command: five uint32 fields.
const indirectCmdSize = 20

// DrawPacker owns the three persistently-mapped buffers the
// shaders read: the MAX_PATCHES-sized instance buffer and indirect
// command buffer, and the shared index buffer tessellating one
// patch's V×V grid into four contiguous quadrants (TL, TR, BL,
// BR), so a partial contribution can address just one quadrant's
// index range.
type DrawPacker struct {
	cfg *Config

	instanceBuf driver.Buffer
	cmdBuf      driver.Buffer
	indexBuf    driver.Buffer

	quadrantCount int // indices per quadrant
	count         int // draw entries packed by the last Pack call
}

// NewDrawPacker allocates the three persistent buffers and fills
// the shared index buffer once.
func NewDrawPacker(gpu driver.GPU, cfg *Config) (*DrawPacker, error) {
	p := &DrawPacker{cfg: cfg}

	instSize := int64(cfg.MaxPatches) * int64(len(shader.InstanceLayout{})) * 4
	ibuf, err := gpu.NewBuffer(instSize, true, driver.UShaderRead)
	if err != nil {
		return nil, fmt.Errorf("%w: instance buffer: %v", ErrMappingFailed, err)
	}
	if ibuf.Bytes() == nil {
		return nil, fmt.Errorf("%w: instance buffer not host visible", ErrMappingFailed)
	}
	p.instanceBuf = ibuf

	cmdSize := int64(cfg.MaxPatches) * indirectCmdSize
	cbuf, err := gpu.NewBuffer(cmdSize, true, driver.UGeneric)
	if err != nil {
		return nil, fmt.Errorf("%w: command buffer: %v", ErrMappingFailed, err)
	}
	if cbuf.Bytes() == nil {
		return nil, fmt.Errorf("%w: command buffer not host visible", ErrMappingFailed)
	}
	p.cmdBuf = cbuf

	idx, quadCount := buildIndices(cfg.VerticesPerPatch)
	p.quadrantCount = quadCount
	xbuf, err := gpu.NewBuffer(int64(len(idx)*4), true, driver.UIndexData)
	if err != nil {
		return nil, fmt.Errorf("%w: index buffer: %v", ErrMappingFailed, err)
	}
	p.indexBuf = xbuf
	dst := xbuf.Bytes()
	for i, v := range idx {
		binary.LittleEndian.PutUint32(dst[i*4:], v)
	}

	return p, nil
}

// buildIndices tessellates a V×V grid into two triangles per cell,
// laid out as four contiguous blocks of indices in TL, TR, BL, BR
// order, and returns the index count of a single quadrant.
func buildIndices(v int) (idx []uint32, quadCount int) {
	half := (v - 1) / 2
	quadOf := func(cx, cy int) int {
		switch {
		case cx < half && cy < half:
			return 0 // TL
		case cx >= half && cy < half:
			return 1 // TR
		case cx < half && cy >= half:
			return 2 // BL
		default:
			return 3 // BR
		}
	}
	buckets := make([][]uint32, 4)
	for cy := 0; cy < v-1; cy++ {
		for cx := 0; cx < v-1; cx++ {
			q := quadOf(cx, cy)
			i0 := uint32(cy*v + cx)
			i1 := uint32(cy*v + cx + 1)
			i2 := uint32((cy+1)*v + cx)
			i3 := uint32((cy+1)*v + cx + 1)
			buckets[q] = append(buckets[q], i0, i2, i1, i1, i2, i3)
		}
	}
	quadCount = len(buckets[0])
	for _, b := range buckets {
		idx = append(idx, b...)
	}
	return
}

// Pack writes one instance + indirect-command entry per
// contribution into the persistent buffers, camera-relative: the
// CPU subtracts the camera position from the patch origin in
// double precision (via Go's native float64 arithmetic) before
// handing the result to 32-bit GPU matrices, so all downstream math
// runs in floats centred near zero.
func (p *DrawPacker) Pack(contribs []Contribution, store *NodeStore, pose *Pose) {
	p.count = 0
	instData := p.instanceBuf.Bytes()
	cmdData := p.cmdBuf.Bytes()

	for i, c := range contribs {
		if i >= p.cfg.MaxPatches {
			break
		}
		n := c.Node

		var layout shader.InstanceLayout
		poseCam := poseCameraOf(n.Frame, pose.Position)
		layout.SetPoseCamera(&poseCam)
		layout.SetAtlasLayer(store.AtlasLayer(n.Slot))
		layout.SetMorphRange(c.MorphRange[0], c.MorphRange[1])
		layout.SetLODLevel(uint16(n.Loc.LODLevel))
		copy(instData[i*len(layout)*4:], f32sToBytes(layout[:]))

		firstIndex, count := p.indexRange(c)
		writeIndirectCmd(cmdData[i*indirectCmdSize:], uint32(count), 1, uint32(firstIndex), uint32(store.VertexBase(n.Slot)), uint32(i))

		p.count++
	}
}

// indexRange returns (firstIndex, count) into the shared index
// buffer for a contribution: the whole buffer, or just one
// quadrant's contiguous block.
func (p *DrawPacker) indexRange(c Contribution) (first, count int) {
	if c.Whole {
		return 0, p.quadrantCount * 4
	}
	return int(c.Quadrant) * p.quadrantCount, p.quadrantCount
}

// Submit issues the single multi-draw call covering every
// contribution packed by the last Pack, via CmdBuffer's
// DrawIndexedIndirect.
func (p *DrawPacker) Submit(cb driver.CmdBuffer) {
	if p.count == 0 {
		return
	}
	cb.SetIndexBuf(driver.Index32, p.indexBuf, 0)
	cb.DrawIndexedIndirect(p.cmdBuf, 0, p.count, indirectCmdSize)
}

// poseCameraOf computes translation(origin − cameraPosition)
// composed with the patch's reference rotation: rotate into the
// patch's local frame first, then translate into camera-relative
// space. The subtraction happens in double precision, and only the
// small camera-relative result is narrowed to float32.
func poseCameraOf(frame Frame, cameraPos Vec3d) linear.M4 {
	rel := frame.Origin.Sub(cameraPos).ToV3()

	var rot linear.M4
	rot.FromM3(&frame.Basis)

	var trans linear.M4
	trans.Translate(rel[0], rel[1], rel[2])

	var pose linear.M4
	pose.Mul(&trans, &rot)
	return pose
}

func writeIndirectCmd(dst []byte, indexCount, instCount, firstIndex, baseVertex, baseInstance uint32) {
	binary.LittleEndian.PutUint32(dst[0:], indexCount)
	binary.LittleEndian.PutUint32(dst[4:], instCount)
	binary.LittleEndian.PutUint32(dst[8:], firstIndex)
	binary.LittleEndian.PutUint32(dst[12:], baseVertex)
	binary.LittleEndian.PutUint32(dst[16:], baseInstance)
}

func f32sToBytes(vs []float32) []byte {
	out := make([]byte, len(vs)*4)
	for i, f := range vs {
		putFloat32(out[i*4:], f)
	}
	return out
}
