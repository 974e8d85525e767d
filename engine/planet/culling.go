// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"

	"github.com/arcusgl/spherelod/linear"
)

// Plane is ax+by+cz+d=0 with (a,b,c) not necessarily unit length.
type Plane struct {
	Normal linear.V3
	D      float32
}

// distance returns the signed distance from p to the plane, along
// its (possibly non-unit) normal.
func (p Plane) distance(pt linear.V3) float32 {
	return p.Normal.Dot(&pt) + p.D
}

// Frustum is the six planes (left, right, bottom, top, near, far)
// of a view-projection matrix, in that order.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum derives the six frustum planes from vp by
// row-combination (Gribb/Hartmann): each plane is a linear
// combination of vp's rows, read directly off the matrix without
// any trigonometry.
func ExtractFrustum(vp *linear.M4) *Frustum {
	row := func(i int) linear.V4 {
		return linear.V4{vp[0][i], vp[1][i], vp[2][i], vp[3][i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	comb := func(a, b linear.V4, sign float32) Plane {
		var c linear.V4
		if sign > 0 {
			c.Add(&a, &b)
		} else {
			c.Sub(&a, &b)
		}
		return Plane{Normal: linear.V3{c[0], c[1], c[2]}, D: c[3]}
	}

	return &Frustum{Planes: [6]Plane{
		comb(r3, r0, 1),  // left
		comb(r3, r0, -1), // right
		comb(r3, r1, 1),  // bottom
		comb(r3, r1, -1), // top
		comb(r3, r2, 1),  // near
		comb(r3, r2, -1), // far
	}}
}

// Classification is the result of testing an AABB against a set of
// planes or a culling volume.
type Classification int

const (
	Outside Classification = iota
	Inside
	Intersects
)

// Classify tests a against every frustum plane, using the
// n-vertex/p-vertex method: if the AABB's most-positive corner
// along a plane's normal (p-vertex) is behind that plane, the whole
// box is outside. If its most-negative corner (n-vertex) is in
// front of every plane, the box is entirely inside.
func (f *Frustum) Classify(a AABB) Classification {
	allInside := true
	for _, pl := range f.Planes {
		var nVert, pVert linear.V3
		for i := 0; i < 3; i++ {
			if pl.Normal[i] >= 0 {
				nVert[i], pVert[i] = a.Min[i], a.Max[i]
			} else {
				nVert[i], pVert[i] = a.Max[i], a.Min[i]
			}
		}
		if pl.distance(pVert) < 0 {
			return Outside
		}
		if pl.distance(nVert) < 0 {
			allInside = false
		}
	}
	if allInside {
		return Inside
	}
	return Intersects
}

// MayBeVisible is a coarse frustum test used only to bias the
// priority of a Pending node whose real geometry/AABB doesn't
// exist yet: Outside is the only classification treated as "not
// visible."
func (f *Frustum) MayBeVisible(a AABB) bool {
	return f.Classify(a) != Outside
}

// expectedAABB estimates a not-yet-resident patch's bounding box
// from its four corner directions scaled by radius alone (ignoring
// the height displacement, which is bounded and small relative to
// radius), good enough to bias load priority toward in-view tiles.
func expectedAABB(loc PatchLocation, radius float32) AABB {
	corners := [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	pts := make([]linear.V3, 4)
	for i, c := range corners {
		u := (loc.Offset[0] + c[0]*loc.Size) * 2 - 1
		v := (loc.Offset[1] + c[1]*loc.Size) * 2 - 1
		d := loc.Face.Direction(u, v)
		var p linear.V3
		p.Scale(radius, &d)
		pts[i] = p
	}
	return boundsOf(pts)
}

// HorizonCone is the culling volume formed by a camera's tangent
// lines to the planet sphere: anything entirely inside it is
// hidden by the planet's curvature (Cesium's horizon-culling
// method).
type HorizonCone struct {
	Apex         linear.V3
	Axis         linear.V3 // unit vector from apex toward the planet center
	NearDistance float32
	CosHalfAngle float32
}

// NewHorizonCone builds the cone for a camera at cameraPos looking
// toward a sphere of the given radius centred at the origin.
func NewHorizonCone(cameraPos linear.V3, radius float32) HorizonCone {
	var toCenter linear.V3
	var center linear.V3
	toCenter.Sub(&center, &cameraPos)
	d := toCenter.Len()
	toCenter.Norm(&toCenter)

	near := d - radius*radius/d
	cosHalf := near / float32(math.Sqrt(float64(d*d-radius*radius)))

	return HorizonCone{Apex: cameraPos, Axis: toCenter, NearDistance: near, CosHalfAngle: cosHalf}
}

// contains reports whether point p lies inside the cone (i.e., is
// hidden by the planet).
func (h HorizonCone) contains(p linear.V3) bool {
	var v linear.V3
	v.Sub(&p, &h.Apex)
	along := h.Axis.Dot(&v)
	if along <= h.NearDistance {
		return false
	}
	return along/v.Len() > h.CosHalfAngle
}

// Contains reports whether every one of a's eight corners lies
// inside the cone; only then is the whole AABB considered hidden
// by planet curvature.
func (h HorizonCone) Contains(a AABB) bool {
	for _, c := range a.Corners() {
		if !h.contains(c) {
			return false
		}
	}
	return true
}
