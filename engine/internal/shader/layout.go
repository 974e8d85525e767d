// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Data as presented to shader programs.
//
// The data layouts defined here represent exactly what
// will be fed to shaders as constant/uniform and storage
// buffers. One should use the Set* methods of a given
// *Layout type to update data in place.
//
// Constants that are updated using vector and matrices
// (i.e., linear.V*/linear.M* types) will be defined in
// the shaders as equivalent types. These data will be
// aligned to 16 bytes for portability.

package shader

import (
	"time"
	"unsafe"

	"github.com/arcusgl/spherelod/driver"
	"github.com/arcusgl/spherelod/linear"
)

func copyM4(dst []float32, m *linear.M4) {
	copy(dst, unsafe.Slice((*float32)(unsafe.Pointer(m)), 16))
}

// FrameLayout is the layout of per-frame, global data.
// It is defined as follows:
//
//	[0:16]  | view-projection matrix
//	[16]    | number of vertices along one edge of a patch (V)
//	[17]    | camera far plane distance
//	[18]    | logarithmic depth constant (k)
//	[19]    | elapsed time in seconds
//	[20:24] | viewport (x, y, width, height)
//	[24:64] | (unused)
type FrameLayout [64]float32

// SetVP sets the view-projection matrix.
func (l *FrameLayout) SetVP(m *linear.M4) { copyM4(l[:16], m) }

// SetVerticesPerPatch sets V, the number of vertices
// along one edge of a patch.
func (l *FrameLayout) SetVerticesPerPatch(v int32) { l[16] = *(*float32)(unsafe.Pointer(&v)) }

// SetCameraFar sets the camera's far plane distance.
func (l *FrameLayout) SetCameraFar(far float32) { l[17] = far }

// SetLogZConstant sets the logarithmic depth constant k
// used by the vertex shader's depth transform.
func (l *FrameLayout) SetLogZConstant(k float32) { l[18] = k }

// SetTime sets the elapsed time.
func (l *FrameLayout) SetTime(d time.Duration) { l[19] = float32(d.Seconds()) }

// SetViewport sets the viewport bounds.
func (l *FrameLayout) SetViewport(b *driver.Viewport) {
	l[20] = b.X
	l[21] = b.Y
	l[22] = b.Width
	l[23] = b.Height
}

// InstanceLayout is the per-contribution layout written by the
// draw packer, matching instanceBuffer's element format.
// It is defined as follows:
//
//	[0:16]  | poseCamera matrix (patch-local to camera-relative, rotation+translation)
//	[16]    | atlas layer index
//	[17:19] | morph range (t0, t1)
//	[19]    | LOD level
type InstanceLayout [20]float32

// SetPoseCamera sets the camera-relative pose matrix.
func (l *InstanceLayout) SetPoseCamera(m *linear.M4) { copyM4(l[:16], m) }

// SetAtlasLayer sets the backing-store atlas layer to sample.
func (l *InstanceLayout) SetAtlasLayer(layer uint32) {
	l[16] = *(*float32)(unsafe.Pointer(&layer))
}

// SetMorphRange sets the (t0, t1) distance range over which the
// vertex shader interpolates toward the parent's geometry.
func (l *InstanceLayout) SetMorphRange(t0, t1 float32) { l[17], l[18] = t0, t1 }

// SetLODLevel sets the contribution's LOD level.
func (l *InstanceLayout) SetLODLevel(lod uint16) {
	var lod32 uint32 = uint32(lod)
	l[19] = *(*float32)(unsafe.Pointer(&lod32))
}
