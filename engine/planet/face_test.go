// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"
	"testing"

	"github.com/arcusgl/spherelod/linear"
)

func TestFaces(t *testing.T) {
	fs := Faces()
	if len(fs) != 6 {
		t.Fatalf("Faces: len:\nhave %d\nwant 6", len(fs))
	}
	seen := map[Face]bool{}
	for _, f := range fs {
		if seen[f] {
			t.Fatalf("Faces: %v repeated", f)
		}
		seen[f] = true
	}
}

func TestFaceString(t *testing.T) {
	for _, x := range [...]struct {
		f    Face
		want string
	}{
		{Front, "Front"},
		{Right, "Right"},
		{Back, "Back"},
		{Left, "Left"},
		{Top, "Top"},
		{Bottom, "Bottom"},
		{faceCount, "Face(invalid)"},
	} {
		if s := x.f.String(); s != x.want {
			t.Fatalf("Face.String:\nhave %q\nwant %q", s, x.want)
		}
	}
}

func approxEqV3(a, b linear.V3, eps float32) bool {
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > eps {
			return false
		}
	}
	return true
}

// TestCubePointCenters checks that the center of every face's local
// square maps to a point along that face's cube axis, and that the
// six faces cover all six signed axis directions exactly once (no
// gap, no overlap).
func TestCubePointCenters(t *testing.T) {
	for _, x := range [...]struct {
		f    Face
		want linear.V3
	}{
		{Front, linear.V3{0, 0, 1}},
		{Back, linear.V3{0, 0, -1}},
		{Right, linear.V3{-1, 0, 0}},
		{Left, linear.V3{1, 0, 0}},
		{Top, linear.V3{0, -1, 0}},
		{Bottom, linear.V3{0, 1, 0}},
	} {
		p := x.f.CubePoint(0, 0)
		if !approxEqV3(p, x.want, 1e-5) {
			t.Fatalf("Face.CubePoint(%v, 0, 0):\nhave %v\nwant %v", x.f, p, x.want)
		}
	}
}

// TestCubePointAxisConstant checks that, for every face, the
// component lying along that face's cube axis stays fixed at +-1
// across the whole (u, v) domain: the face orientations are
// multiples of a 90-degree rotation, so they only permute and
// negate coordinates, never blend them.
func TestCubePointAxisConstant(t *testing.T) {
	samples := []float32{-1, -0.6, 0, 0.3, 1}
	for _, f := range Faces() {
		center := f.CubePoint(0, 0)
		axis, want := -1, float32(0)
		for i, c := range center {
			if c > 0.5 || c < -0.5 {
				axis, want = i, c
			}
		}
		for _, u := range samples {
			for _, v := range samples {
				p := f.CubePoint(u, v)
				if p[axis] != want {
					t.Fatalf("Face(%v).CubePoint(%f, %f)[%d]:\nhave %f\nwant %f", f, u, v, axis, p[axis], want)
				}
			}
		}
	}
}

// TestSpherifyUnitLength checks that Spherify always maps a cube
// surface point (one component at +-1) to a unit-length direction,
// since the spherification formula is only well-defined there.
func TestSpherifyUnitLength(t *testing.T) {
	for _, u := range []float32{-1, -0.5, 0, 0.3, 1} {
		for _, v := range []float32{-1, -0.7, 0, 0.6, 1} {
			p := linear.V3{u, v, 1}
			d := Spherify(p)
			l := d.Len()
			if l < 0.999 || l > 1.001 {
				t.Fatalf("Spherify(%v): length:\nhave %f\nwant ~1", p, l)
			}
		}
	}
}

// TestDirectionSeam checks that adjacent faces agree on the
// direction of a point along their shared cube edge, so that the
// geometry each face generates along that edge coincides exactly
// rather than leaving a crack.
func TestDirectionSeam(t *testing.T) {
	for _, x := range [...]struct {
		fa, fb Face
		ua, ub float32
	}{
		{Front, Left, 1, -1},
		{Front, Right, -1, 1},
	} {
		for _, v := range []float32{-1, -0.4, 0, 0.6, 1} {
			a := x.fa.Direction(x.ua, v)
			b := x.fb.Direction(x.ub, v)
			if !approxEqV3(a, b, 1e-5) {
				t.Fatalf("Direction seam %v/%v at v=%f:\nhave %v\nwant %v", x.fa, x.fb, v, a, b)
			}
		}
	}
}

func TestAxisAngleIdentity(t *testing.T) {
	q := axisAngle(linear.V3{0, 1, 0}, 0)
	var v linear.V3
	in := linear.V3{1, 2, 3}
	q.RotateV3(&v, &in)
	if !approxEqV3(v, in, 1e-5) {
		t.Fatalf("axisAngle(0) rotation:\nhave %v\nwant %v", v, in)
	}
}

func TestOrientationIsUnit(t *testing.T) {
	for _, f := range Faces() {
		q := f.Orientation()
		n := q.V.Dot(&q.V) + q.R*q.R
		if math.Abs(float64(n)-1) > 1e-4 {
			t.Fatalf("Face(%v).Orientation: not unit:\nhave |q|^2=%f", f, n)
		}
	}
}
