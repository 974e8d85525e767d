// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"
	"testing"

	"github.com/arcusgl/spherelod/linear"
)

// unitCubeFrustum returns a Frustum bounding [-1,1]^3, built by hand
// (rather than via ExtractFrustum) so Classify's n-vertex/p-vertex
// logic can be checked against simple, known plane equations.
func unitCubeFrustum() *Frustum {
	return &Frustum{Planes: [6]Plane{
		{Normal: linear.V3{1, 0, 0}, D: 1},
		{Normal: linear.V3{-1, 0, 0}, D: 1},
		{Normal: linear.V3{0, 1, 0}, D: 1},
		{Normal: linear.V3{0, -1, 0}, D: 1},
		{Normal: linear.V3{0, 0, 1}, D: 1},
		{Normal: linear.V3{0, 0, -1}, D: 1},
	}}
}

func TestClassifyInside(t *testing.T) {
	f := unitCubeFrustum()
	a := AABB{Min: linear.V3{-0.5, -0.5, -0.5}, Max: linear.V3{0.5, 0.5, 0.5}}
	if c := f.Classify(a); c != Inside {
		t.Fatalf("Classify(inside box):\nhave %v\nwant Inside", c)
	}
}

func TestClassifyOutside(t *testing.T) {
	f := unitCubeFrustum()
	a := AABB{Min: linear.V3{2, 2, 2}, Max: linear.V3{3, 3, 3}}
	if c := f.Classify(a); c != Outside {
		t.Fatalf("Classify(outside box):\nhave %v\nwant Outside", c)
	}
}

func TestClassifyIntersects(t *testing.T) {
	f := unitCubeFrustum()
	a := AABB{Min: linear.V3{0.5, 0.5, 0.5}, Max: linear.V3{1.5, 1.5, 1.5}}
	if c := f.Classify(a); c != Intersects {
		t.Fatalf("Classify(straddling box):\nhave %v\nwant Intersects", c)
	}
}

func TestMayBeVisible(t *testing.T) {
	f := unitCubeFrustum()
	inside := AABB{Min: linear.V3{-0.1, -0.1, -0.1}, Max: linear.V3{0.1, 0.1, 0.1}}
	outside := AABB{Min: linear.V3{10, 10, 10}, Max: linear.V3{11, 11, 11}}
	if !f.MayBeVisible(inside) {
		t.Fatal("MayBeVisible(inside): have false, want true")
	}
	if f.MayBeVisible(outside) {
		t.Fatal("MayBeVisible(outside): have true, want false")
	}
}

// TestExtractFrustumClassifiesAlongView checks that a point straight
// ahead of the camera, within the near/far range, classifies as not
// Outside, while a point behind the camera and a point far outside
// the lateral field of view both classify as Outside.
func TestExtractFrustumClassifiesAlongView(t *testing.T) {
	var proj, view, vp linear.M4
	proj.Perspective(math.Pi/2, 1, 1, 100)
	view.I()
	vp.Mul(&proj, &view)
	f := ExtractFrustum(&vp)

	ahead := AABB{Min: linear.V3{0, 0, -10}, Max: linear.V3{0, 0, -10}}
	if f.Classify(ahead) == Outside {
		t.Fatal("Classify(ahead): have Outside, want Inside or Intersects")
	}

	behind := AABB{Min: linear.V3{0, 0, 10}, Max: linear.V3{0, 0, 10}}
	if f.Classify(behind) != Outside {
		t.Fatalf("Classify(behind):\nhave %v\nwant Outside", f.Classify(behind))
	}

	lateral := AABB{Min: linear.V3{1000, 0, -10}, Max: linear.V3{1000, 0, -10}}
	if f.Classify(lateral) != Outside {
		t.Fatalf("Classify(far lateral):\nhave %v\nwant Outside", f.Classify(lateral))
	}
}

// TestHorizonConeFarSideHidden checks that a point on the
// far side of the planet from the camera is always reported as
// hidden by the horizon cone, while a point between the camera and
// the planet's near surface is always reported as visible.
func TestHorizonConeFarSideHidden(t *testing.T) {
	radius := float32(10)
	cam := linear.V3{0, 0, 30}
	cone := NewHorizonCone(cam, radius)

	farSide := linear.V3{0, 0, -radius}
	if !cone.contains(farSide) {
		t.Fatal("HorizonCone.contains(far side): have false, want true")
	}

	nearSide := linear.V3{0, 0, radius + 1}
	if cone.contains(nearSide) {
		t.Fatal("HorizonCone.contains(near side): have true, want false")
	}
}

func TestHorizonConeContainsRequiresAllCorners(t *testing.T) {
	radius := float32(10)
	cam := linear.V3{0, 0, 30}
	cone := NewHorizonCone(cam, radius)

	hidden := AABB{Min: linear.V3{-1, -1, -radius - 1}, Max: linear.V3{1, 1, -radius + 1}}
	if !cone.Contains(hidden) {
		t.Fatal("HorizonCone.Contains(far-side box): have false, want true")
	}

	straddling := AABB{Min: linear.V3{-1, -1, -radius - 1}, Max: linear.V3{1, 1, radius + 1}}
	if cone.Contains(straddling) {
		t.Fatal("HorizonCone.Contains(straddling box): have true, want false")
	}
}
