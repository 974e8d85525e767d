// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import "github.com/arcusgl/spherelod/linear"

// Quadrant identifies one of a patch's four children.
type Quadrant int

// The four quadrants, in the fixed TL, TR, BL, BR order used by
// the shared index buffer's layout.
const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// quadrantOffset is the (du, dv) added to a parent's offset,
// scaled by the child's size, to obtain a given quadrant's offset.
var quadrantOffset = [4][2]float32{
	TopLeft:     {0, 0},
	TopRight:    {1, 0},
	BottomLeft:  {0, 1},
	BottomRight: {1, 1},
}

// PatchLocation identifies a square sub-region of a face-local
// unit square. Offset is in [0,1]^2; Size is in (0,1]; LODLevel is
// the quadtree depth (0 = whole face).
type PatchLocation struct {
	Face     Face
	Offset   linear.V2
	Size     float32
	LODLevel int
}

// RootLocation returns the (face, (0,0), 1, 0) root location for f.
func RootLocation(f Face) PatchLocation {
	return PatchLocation{Face: f, Offset: linear.V2{0, 0}, Size: 1, LODLevel: 0}
}

// Split returns the location of one of ℓ's four children. A
// child's size is ℓ.Size/2, its LODLevel is ℓ.LODLevel+1, and its
// offset is aligned to the child's size: the four children's
// offsets exactly tile ℓ with no gaps or overlap.
func (l PatchLocation) Split(q Quadrant) PatchLocation {
	half := l.Size / 2
	d := quadrantOffset[q]
	return PatchLocation{
		Face:     l.Face,
		Offset:   linear.V2{l.Offset[0] + d[0]*half, l.Offset[1] + d[1]*half},
		Size:     half,
		LODLevel: l.LODLevel + 1,
	}
}

// AddDX returns ℓ with its offset's X component translated by k
// face-local units. When ox = ℓ.Offset[0]+k falls outside [0,1), the
// translation carries the patch across a cube edge: the result names
// the neighbouring face and the corresponding offset on it, per
// crossDX. Around the four equatorial faces (Front, Right, Back,
// Left) this is a pure ring rotation, so AddDX(k) composed with
// AddDX(-k) is the identity there for every k with |k| <= l.Size;
// crossing into a pole face (Top or Bottom) turns the direction of
// travel onto that face's other axis and does not round-trip through
// a second AddDX call. Size and LODLevel are unchanged.
func (l PatchLocation) AddDX(k float32) PatchLocation {
	ox := l.Offset[0] + k
	if ox >= 0 && ox < 1 {
		l.Offset[0] = ox
		return l
	}
	f, nx, ny := crossDX(l.Face, ox, l.Offset[1])
	l.Face = f
	l.Offset = linear.V2{nx, ny}
	return l
}

// AddDY is the Y-axis equivalent of AddDX, using crossDY. Front's
// edges with Top and Bottom carry its X offset across unreflected, so
// AddDY(k) composed with AddDY(-k) is the identity there for every k
// with |k| <= l.Size; Back's edges with Top and Bottom mirror the X
// offset (see crossDY) and so do not round-trip the same way, and
// Right/Left's edges with Top/Bottom turn the direction of travel
// onto the other axis, same as AddDX's pole crossings.
func (l PatchLocation) AddDY(k float32) PatchLocation {
	oy := l.Offset[1] + k
	if oy >= 0 && oy < 1 {
		l.Offset[1] = oy
		return l
	}
	f, nx, ny := crossDY(l.Face, l.Offset[0], oy)
	l.Face = f
	l.Offset = linear.V2{nx, ny}
	return l
}

// crossDX maps an X offset ox that has overflowed [0,1) on face f,
// together with the offset's unaffected Y component oy, to the
// neighbouring face and the offset it lands on there. Grounded on
// CubeCoord.add_dx's ring rotation for the four equatorial faces and
// its coordinate-swap special-casing for the pole faces (see
// original_source/src/bin/diamond_square.rs), but with this
// package's own face adjacency substituted for the reference's ring
// order: CubePoint's rotations (face.go) put Left, not Right, across
// Front's +X edge, so the ring here runs Front-Left-Back-Right-Front
// rather than Front-Right-Back-Left.
func crossDX(f Face, ox, oy float32) (Face, float32, float32) {
	switch f {
	case Front:
		if ox >= 1 {
			return Left, ox - 1, oy
		}
		return Right, 1 + ox, oy
	case Right:
		if ox >= 1 {
			return Front, ox - 1, oy
		}
		return Back, 1 + ox, oy
	case Back:
		if ox >= 1 {
			return Right, ox - 1, oy
		}
		return Left, 1 + ox, oy
	case Left:
		if ox >= 1 {
			return Back, ox - 1, oy
		}
		return Front, 1 + ox, oy
	case Top:
		if ox >= 1 {
			return Left, 1 - oy, ox - 1
		}
		return Right, oy, -ox
	case Bottom:
		if ox >= 1 {
			return Left, oy, 2 - ox
		}
		return Right, 1 - oy, 1 + ox
	}
	panic("planet: invalid face")
}

// crossDY is the Y-axis equivalent of crossDX: it maps a Y offset oy
// that has overflowed [0,1) on face f, together with the unaffected
// X offset ox, to the neighbouring face and offset. Front's edges
// with the poles carry ox across unchanged and Back's mirror it
// (1-ox); Right and Left swap axes at the pole, mirroring crossDX's
// swap at Top and Bottom.
func crossDY(f Face, ox, oy float32) (Face, float32, float32) {
	switch f {
	case Front:
		if oy >= 1 {
			return Bottom, ox, oy - 1
		}
		return Top, ox, 1 + oy
	case Right:
		if oy >= 1 {
			return Bottom, oy - 1, 1 - ox
		}
		return Top, -oy, ox
	case Back:
		if oy >= 1 {
			return Bottom, 1 - ox, 2 - oy
		}
		return Top, 1 - ox, -oy
	case Left:
		if oy >= 1 {
			return Bottom, 2 - oy, ox
		}
		return Top, 1 + oy, 1 - ox
	case Top:
		if oy >= 1 {
			return Front, ox, oy - 1
		}
		return Back, 1 - ox, -oy
	case Bottom:
		if oy >= 1 {
			return Back, 1 - ox, 2 - oy
		}
		return Front, ox, 1 + oy
	}
	panic("planet: invalid face")
}

// center returns the offset of ℓ's midpoint in the face-local
// square, used by the residency controller to build the patch's
// AABB.
func (l PatchLocation) center() (u, v float32) {
	return l.Offset[0] + l.Size/2, l.Offset[1] + l.Size/2
}

// Vertex is one entry of the persistent vertex buffer shared by
// every patch slot: position2, positionMorphTarget2,
// localTexcoord2, color3.
type Vertex struct {
	Position      linear.V2
	MorphTarget   linear.V2
	LocalTexcoord linear.V2
	Color         [3]float32
}

// MorphTargetIndex implements the morph target rule: for a vertex
// at grid (x,y), its morph target is the grid point (x - x%2,
// y - y%2), the nearest point whose indices are both even, i.e.
// the point that survives when the tessellation is halved.
func MorphTargetIndex(x, y int) (mx, my int) {
	return x - x%2, y - y%2
}
