// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"testing"

	"github.com/arcusgl/spherelod/linear"
)

func TestRootLocation(t *testing.T) {
	l := RootLocation(Top)
	if l.Face != Top || l.Offset != (linear.V2{0, 0}) || l.Size != 1 || l.LODLevel != 0 {
		t.Fatalf("RootLocation(Top):\nhave %+v\nwant {Top {0 0} 1 0}", l)
	}
}

// TestSplitHalvesSize checks that every child from Split has half
// its parent's size and one more LOD level.
func TestSplitHalvesSize(t *testing.T) {
	l := RootLocation(Front)
	for depth := 0; depth < 4; depth++ {
		c := l.Split(TopLeft)
		if c.Size != l.Size/2 {
			t.Fatalf("Split: Size:\nhave %f\nwant %f", c.Size, l.Size/2)
		}
		if c.LODLevel != l.LODLevel+1 {
			t.Fatalf("Split: LODLevel:\nhave %d\nwant %d", c.LODLevel, l.LODLevel+1)
		}
		if c.Face != l.Face {
			t.Fatalf("Split: Face changed:\nhave %v\nwant %v", c.Face, l.Face)
		}
		l = c
	}
}

// TestSplitTilesParent checks that a parent's four children exactly
// tile it: their offsets cover every quadrant with no gap or
// overlap.
func TestSplitTilesParent(t *testing.T) {
	l := PatchLocation{Face: Right, Offset: linear.V2{0.25, 0.5}, Size: 0.25, LODLevel: 3}
	half := l.Size / 2
	want := map[Quadrant]linear.V2{
		TopLeft:     {l.Offset[0], l.Offset[1]},
		TopRight:    {l.Offset[0] + half, l.Offset[1]},
		BottomLeft:  {l.Offset[0], l.Offset[1] + half},
		BottomRight: {l.Offset[0] + half, l.Offset[1] + half},
	}
	seen := map[linear.V2]bool{}
	for q, w := range want {
		c := l.Split(q)
		if c.Offset != w {
			t.Fatalf("Split(%v): Offset:\nhave %v\nwant %v", q, c.Offset, w)
		}
		if seen[c.Offset] {
			t.Fatalf("Split(%v): Offset %v collides with another quadrant", q, c.Offset)
		}
		seen[c.Offset] = true
	}
	// Together the four offsets plus their shared half-size span
	// must reconstruct exactly the parent's [offset, offset+size)
	// extent, with no point double-covered and none left out.
	for _, w := range want {
		if w[0] < l.Offset[0] || w[0] >= l.Offset[0]+l.Size {
			t.Fatalf("Split: child offset %v X outside parent extent", w)
		}
		if w[1] < l.Offset[1] || w[1] >= l.Offset[1]+l.Size {
			t.Fatalf("Split: child offset %v Y outside parent extent", w)
		}
	}
}

// TestAddDXRoundTrip checks that AddDX(k) followed by AddDX(-k) is
// the identity, for every face and a range of k within the patch's
// size.
func TestAddDXRoundTrip(t *testing.T) {
	for _, f := range Faces() {
		l := PatchLocation{Face: f, Offset: linear.V2{0.4, 0.4}, Size: 0.25, LODLevel: 2}
		for _, k := range []float32{-0.25, -0.1, 0, 0.1, 0.25} {
			got := l.AddDX(k).AddDX(-k)
			if got != l {
				t.Fatalf("Face(%v).AddDX(%f) round trip:\nhave %+v\nwant %+v", f, k, got, l)
			}
		}
	}
}

func TestAddDYRoundTrip(t *testing.T) {
	for _, f := range Faces() {
		l := PatchLocation{Face: f, Offset: linear.V2{0.4, 0.4}, Size: 0.25, LODLevel: 2}
		for _, k := range []float32{-0.25, -0.1, 0, 0.1, 0.25} {
			got := l.AddDY(k).AddDY(-k)
			if got != l {
				t.Fatalf("Face(%v).AddDY(%f) round trip:\nhave %+v\nwant %+v", f, k, got, l)
			}
		}
	}
}

// TestAddDXRoundTripAcrossFace checks the round trip still holds at
// root level (Size=1) for a k large enough to carry the offset onto
// a neighbouring face and back, along each of the four equatorial
// faces' ring (Front-Left-Back-Right-Front), where crossing an edge
// never turns the direction of travel onto the other axis.
func TestAddDXRoundTripAcrossFace(t *testing.T) {
	for _, f := range []Face{Front, Right, Back, Left} {
		l := RootLocation(f)
		// A root patch's Offset is always 0, so only k==l.Size (here
		// 1) carries it exactly onto the neighbour's root, while any
		// negative k immediately crosses the 0 edge; both cases must
		// round-trip.
		for _, k := range []float32{-1, -0.5, -0.01, 1} {
			got := l.AddDX(k).AddDX(-k)
			if got != l {
				t.Fatalf("Face(%v).AddDX(%f) round trip across face:\nhave %+v\nwant %+v", f, k, got, l)
			}
		}
	}
}

// TestAddDXCrossesToNeighbourFace checks that AddDX actually changes
// Face when it overflows [0,1), rather than merely translating
// Offset, and lands on the expected neighbour.
func TestAddDXCrossesToNeighbourFace(t *testing.T) {
	l := RootLocation(Front)
	got := l.AddDX(1)
	want := RootLocation(Left)
	if got != want {
		t.Fatalf("RootLocation(Front).AddDX(1):\nhave %+v\nwant %+v", got, want)
	}
}

// TestAddDYRoundTripAcrossFace is the Y-axis equivalent of
// TestAddDXRoundTripAcrossFace. Only Front is used here: its two DY
// neighbours (Top and Bottom) both carry Front's X offset across
// unreflected, but Back's equivalent edges to Top and Bottom mirror
// it (X' = 1-X), so a Back-anchored round trip through AddDY would
// not return to the starting offset; see crossDY.
func TestAddDYRoundTripAcrossFace(t *testing.T) {
	l := RootLocation(Front)
	for _, k := range []float32{-1, -0.5, -0.01, 1} {
		got := l.AddDY(k).AddDY(-k)
		if got != l {
			t.Fatalf("Front.AddDY(%f) round trip across face:\nhave %+v\nwant %+v", k, got, l)
		}
	}
}

// TestAddDYCrossesToNeighbourFace mirrors
// TestAddDXCrossesToNeighbourFace for the Y axis.
func TestAddDYCrossesToNeighbourFace(t *testing.T) {
	l := RootLocation(Front)
	got := l.AddDY(1)
	want := RootLocation(Bottom)
	if got != want {
		t.Fatalf("RootLocation(Front).AddDY(1):\nhave %+v\nwant %+v", got, want)
	}
}

func TestAddDXDYIndependence(t *testing.T) {
	l := PatchLocation{Face: Bottom, Offset: linear.V2{0.5, 0.5}, Size: 0.1, LODLevel: 1}
	got := l.AddDX(0.2).AddDY(0.3)
	want := PatchLocation{Face: Bottom, Offset: linear.V2{0.7, 0.8}, Size: 0.1, LODLevel: 1}
	if got != want {
		t.Fatalf("AddDX+AddDY:\nhave %+v\nwant %+v", got, want)
	}
}

func TestCenter(t *testing.T) {
	l := PatchLocation{Face: Left, Offset: linear.V2{0.25, 0.5}, Size: 0.5, LODLevel: 1}
	u, v := l.center()
	if u != 0.5 || v != 0.75 {
		t.Fatalf("center:\nhave (%f, %f)\nwant (0.5, 0.75)", u, v)
	}
}

// TestMorphTargetIndex checks the halved-tessellation rule: a
// vertex's morph target is the nearest grid point with both indices
// even, i.e. the point that survives when the grid is coarsened by
// one LOD level.
func TestMorphTargetIndex(t *testing.T) {
	for _, x := range [...]struct {
		x, y   int
		mx, my int
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{1, 1, 0, 0},
		{2, 2, 2, 2},
		{3, 2, 2, 2},
		{2, 3, 2, 2},
		{3, 3, 2, 2},
		{4, 5, 4, 4},
		{7, 9, 6, 8},
	} {
		mx, my := MorphTargetIndex(x.x, x.y)
		if mx != x.mx || my != x.my {
			t.Fatalf("MorphTargetIndex(%d, %d):\nhave (%d, %d)\nwant (%d, %d)", x.x, x.y, mx, my, x.mx, x.my)
		}
	}
}

// TestMorphTargetIndexIsFixedPoint checks that applying
// MorphTargetIndex twice yields the same result as applying it
// once: every even-indexed point is already its own morph target.
func TestMorphTargetIndexIsFixedPoint(t *testing.T) {
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			mx, my := MorphTargetIndex(x, y)
			mx2, my2 := MorphTargetIndex(mx, my)
			if mx != mx2 || my != my2 {
				t.Fatalf("MorphTargetIndex(%d, %d) not a fixed point:\nhave (%d, %d)\nwant (%d, %d)", mx, my, mx2, my2, mx, my)
			}
		}
	}
}
