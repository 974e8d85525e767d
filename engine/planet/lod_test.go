// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"
	"testing"

	"github.com/arcusgl/spherelod/linear"
)

// permissiveFrustum never culls anything: every plane's D is large
// enough that any AABB in these tests classifies as Inside.
func permissiveFrustum() *Frustum {
	var f Frustum
	for i, n := range [6]linear.V3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
		f.Planes[i] = Plane{Normal: n, D: 1e9}
	}
	return &f
}

// opaqueFrustum culls everything: every plane's D is so negative
// that any finite AABB classifies as Outside.
func opaqueFrustum() *Frustum {
	var f Frustum
	for i, n := range [6]linear.V3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
		f.Planes[i] = Plane{Normal: n, D: -1e9}
	}
	return &f
}

// neverHidingCone never reports anything as hidden by the horizon.
func neverHidingCone() HorizonCone {
	return HorizonCone{NearDistance: math.MaxFloat32, CosHalfAngle: 2}
}

func leafNode(f Face, lod int) *Node {
	return &Node{
		Loc:   PatchLocation{Face: f, Offset: linear.V2{0, 0}, Size: 1, LODLevel: lod},
		State: stateResident,
		AABB:  AABB{Min: linear.V3{0, 0, 0}, Max: linear.V3{0, 0, 0}},
	}
}

// TestSelectFarCameraWholeFaces checks that with every face's root
// Resident and childless, and a distance far beyond any split
// threshold, Select still emits exactly one whole contribution per
// face (the root itself never range-culls) and never recurses.
func TestSelectFarCameraWholeFaces(t *testing.T) {
	c := DefaultConfig()
	c.MaxLOD = 4
	splitDist := c.splitDistances()

	var all []Contribution
	for _, f := range Faces() {
		root := leafNode(f, 0)
		all = append(all, Select(root, linear.V3{1e6, 1e6, 1e6}, permissiveFrustum(), neverHidingCone(), &c, splitDist)...)
	}
	if len(all) != 6 {
		t.Fatalf("Select: total contributions:\nhave %d\nwant 6", len(all))
	}
	for _, ctr := range all {
		if !ctr.Whole {
			t.Fatalf("Select: contribution for %v: have partial, want whole", ctr.Node.Loc.Face)
		}
	}
}

// TestSelectEmptyFrustum checks that when every face's root classifies
// as Outside the frustum, Select returns zero contributions.
func TestSelectEmptyFrustum(t *testing.T) {
	c := DefaultConfig()
	c.MaxLOD = 4
	splitDist := c.splitDistances()

	var all []Contribution
	for _, f := range Faces() {
		root := leafNode(f, 0)
		all = append(all, Select(root, linear.V3{0, 0, 0}, opaqueFrustum(), neverHidingCone(), &c, splitDist)...)
	}
	if len(all) != 0 {
		t.Fatalf("Select with opaque frustum: total contributions:\nhave %d\nwant 0", len(all))
	}
}

// TestSelectPartialQuadrants checks that when one child is Resident
// and selected while its three siblings are still Pending, the
// parent emits exactly one partial contribution per unselected
// quadrant, alongside the selected child's own whole contribution.
func TestSelectPartialQuadrants(t *testing.T) {
	c := DefaultConfig()
	c.MaxLOD = 2
	c.SplitDistanceBase = 1
	splitDist := c.splitDistances()

	root := leafNode(Front, 0)
	child := leafNode(Front, 1)
	root.Children[TopLeft] = child

	out := Select(root, linear.V3{0, 0, 0}, permissiveFrustum(), neverHidingCone(), &c, splitDist)
	if len(out) != 4 {
		t.Fatalf("Select: len(out):\nhave %d\nwant 4", len(out))
	}

	var wholeCount int
	partials := map[Quadrant]bool{}
	for _, ctr := range out {
		if ctr.Whole {
			wholeCount++
			if ctr.Node != child {
				t.Fatalf("Select: whole contribution Node:\nhave %p\nwant %p (child)", ctr.Node, child)
			}
		} else {
			if ctr.Node != root {
				t.Fatalf("Select: partial contribution Node:\nhave %p\nwant %p (root)", ctr.Node, root)
			}
			partials[ctr.Quadrant] = true
		}
	}
	if wholeCount != 1 {
		t.Fatalf("Select: whole contributions:\nhave %d\nwant 1", wholeCount)
	}
	for _, q := range []Quadrant{TopRight, BottomLeft, BottomRight} {
		if !partials[q] {
			t.Fatalf("Select: missing partial contribution for quadrant %v", q)
		}
	}
	if partials[TopLeft] {
		t.Fatal("Select: unexpected partial contribution for the selected quadrant TopLeft")
	}
}

func TestMorphRangeForRoot(t *testing.T) {
	splitDist := []float32{128, 64, 32}
	got := morphRangeFor(0, splitDist)
	want := [2]float32{128 * 0.9, 128}
	if got != want {
		t.Fatalf("morphRangeFor(0):\nhave %v\nwant %v", got, want)
	}
}

func TestMorphRangeForDeeperLevel(t *testing.T) {
	splitDist := []float32{128, 64, 32}
	got := morphRangeFor(2, splitDist)
	want := [2]float32{64 * 0.9, 64}
	if got != want {
		t.Fatalf("morphRangeFor(2):\nhave %v\nwant %v", got, want)
	}
}
