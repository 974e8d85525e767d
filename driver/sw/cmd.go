// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package sw

import (
	"encoding/binary"
	"errors"

	"github.com/arcusgl/spherelod/driver"
)

// DrawCmd records the parameters of a single Draw, DrawIndexed or
// DrawIndexedIndirect call, so tests can inspect exactly what a
// render pass submitted without a real rasterizer.
type DrawCmd struct {
	Indexed   bool
	Indirect  bool
	VertCount int
	IdxCount  int
	InstCount int
	BaseVert  int
	BaseIdx   int
	BaseInst  int
	Pipeline  driver.Pipeline
	VertexBuf []driver.Buffer
	VertexOff []int64
	IndexBuf  driver.Buffer
	IndexOff  int64
	IndexFmt  driver.IndexFmt
}

// CmdBuffer implements driver.CmdBuffer.
//
// Every copy/fill command takes effect immediately against the
// target Buffer/Image's backing slice: there is no device queue to
// wait on, so Commit only needs to confirm recording ended cleanly.
// Draw calls are appended to Draws rather than rasterized.
type CmdBuffer struct {
	destroyed bool
	gpu       *GPU

	recording bool
	ended     bool
	inPass    bool
	inWork    bool
	inBlit    bool

	pipeline driver.Pipeline
	vbuf     []driver.Buffer
	voff     []int64
	ibuf     driver.Buffer
	ioff     int64
	ifmt     driver.IndexFmt

	Draws []DrawCmd
}

func (cb *CmdBuffer) Destroy() { cb.destroyed = true }

func (cb *CmdBuffer) Begin() error {
	cb.recording = true
	cb.ended = false
	cb.Draws = nil
	return nil
}

func (cb *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	cb.inPass = true
}

func (cb *CmdBuffer) NextSubpass() {}

func (cb *CmdBuffer) EndPass() { cb.inPass = false }

func (cb *CmdBuffer) BeginWork(wait bool) { cb.inWork = true }

func (cb *CmdBuffer) EndWork() { cb.inWork = false }

func (cb *CmdBuffer) BeginBlit(wait bool) { cb.inBlit = true }

func (cb *CmdBuffer) EndBlit() { cb.inBlit = false }

func (cb *CmdBuffer) SetPipeline(pl driver.Pipeline) { cb.pipeline = pl }

func (cb *CmdBuffer) SetViewport(vp []driver.Viewport) {}

func (cb *CmdBuffer) SetScissor(sciss []driver.Scissor) {}

func (cb *CmdBuffer) SetBlendColor(r, g, b, a float32) {}

func (cb *CmdBuffer) SetStencilRef(value uint32) {}

func (cb *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	n := start + len(buf)
	if n > len(cb.vbuf) {
		grown := make([]driver.Buffer, n)
		growo := make([]int64, n)
		copy(grown, cb.vbuf)
		copy(growo, cb.voff)
		cb.vbuf, cb.voff = grown, growo
	}
	copy(cb.vbuf[start:], buf)
	copy(cb.voff[start:], off)
}

func (cb *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	cb.ifmt = format
	cb.ibuf = buf
	cb.ioff = off
}

func (cb *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}

func (cb *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {}

func (cb *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	cb.Draws = append(cb.Draws, DrawCmd{
		VertCount: vertCount,
		InstCount: instCount,
		BaseVert:  baseVert,
		BaseInst:  baseInst,
		Pipeline:  cb.pipeline,
		VertexBuf: append([]driver.Buffer(nil), cb.vbuf...),
		VertexOff: append([]int64(nil), cb.voff...),
	})
}

func (cb *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	cb.Draws = append(cb.Draws, DrawCmd{
		Indexed:   true,
		IdxCount:  idxCount,
		InstCount: instCount,
		BaseIdx:   baseIdx,
		BaseVert:  vertOff,
		BaseInst:  baseInst,
		Pipeline:  cb.pipeline,
		VertexBuf: append([]driver.Buffer(nil), cb.vbuf...),
		VertexOff: append([]int64(nil), cb.voff...),
		IndexBuf:  cb.ibuf,
		IndexOff:  cb.ioff,
		IndexFmt:  cb.ifmt,
	})
}

// indirectCmdSize is the byte size of a single indexed-indirect
// command entry: IndexCount, InstanceCount, FirstIndex, BaseVertex,
// BaseInstance, all little-endian uint32.
const indirectCmdSize = 20

func (cb *CmdBuffer) DrawIndexedIndirect(buf driver.Buffer, off int64, drawCount int, stride int64) {
	b := buf.(*Buffer).data
	for i := 0; i < drawCount; i++ {
		base := off + int64(i)*stride
		raw := b[base : base+indirectCmdSize]
		idxCount := binary.LittleEndian.Uint32(raw[0:4])
		instCount := binary.LittleEndian.Uint32(raw[4:8])
		firstIdx := binary.LittleEndian.Uint32(raw[8:12])
		baseVert := int32(binary.LittleEndian.Uint32(raw[12:16]))
		baseInst := binary.LittleEndian.Uint32(raw[16:20])
		cb.Draws = append(cb.Draws, DrawCmd{
			Indexed:   true,
			Indirect:  true,
			IdxCount:  int(idxCount),
			InstCount: int(instCount),
			BaseIdx:   int(firstIdx),
			BaseVert:  int(baseVert),
			BaseInst:  int(baseInst),
			Pipeline:  cb.pipeline,
			VertexBuf: append([]driver.Buffer(nil), cb.vbuf...),
			VertexOff: append([]int64(nil), cb.voff...),
			IndexBuf:  cb.ibuf,
			IndexOff:  cb.ioff,
			IndexFmt:  cb.ifmt,
		})
	}
}

func (cb *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {}

func (cb *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	from := param.From.(*Buffer).data[param.FromOff:]
	to := param.To.(*Buffer).data[param.ToOff:]
	copy(to[:param.Size], from[:param.Size])
}

func (cb *CmdBuffer) CopyImage(param *driver.ImageCopy) {
	from := param.From.(*Image)
	to := param.To.(*Image)
	for l := 0; l < param.Layers; l++ {
		src := from.data[param.FromLayer+l][param.FromLevel]
		dst := to.data[param.ToLayer+l][param.ToLevel]
		copy(dst, src)
	}
}

func (cb *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	img := param.Img.(*Image)
	dst := img.data[param.Layer][param.Level]
	src := param.Buf.(*Buffer).data[param.BufOff:]
	copy(dst, src[:len(dst)])
}

func (cb *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	img := param.Img.(*Image)
	src := img.data[param.Layer][param.Level]
	dst := param.Buf.(*Buffer).data[param.BufOff:]
	copy(dst[:len(src)], src)
}

func (cb *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	b := buf.(*Buffer).data
	rng := b[off : off+size]
	for i := range rng {
		rng[i] = value
	}
}

func (cb *CmdBuffer) Barrier(b []driver.Barrier) {}

func (cb *CmdBuffer) Transition(t []driver.Transition) {}

func (cb *CmdBuffer) End() error {
	if !cb.recording {
		return errors.New("sw: End called on a command buffer that was not begun")
	}
	cb.recording = false
	cb.ended = true
	return nil
}

func (cb *CmdBuffer) Reset() error {
	cb.recording = false
	cb.ended = false
	cb.Draws = nil
	cb.pipeline = nil
	cb.vbuf = nil
	cb.voff = nil
	cb.ibuf = nil
	return nil
}
