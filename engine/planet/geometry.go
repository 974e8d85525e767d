// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"

	"github.com/arcusgl/spherelod/linear"
)

// PatchGeometry is the pure output of computeGeometry: a patch's
// positions at the coarser V×V vertex grid, normals at the finer
// N×N grid, colors at the V×V grid, and each V×V vertex's morph
// target (the position of the matching vertex one LOD level up,
// found at the nearest even grid index).
type PatchGeometry struct {
	Positions    []linear.V3
	MorphTargets []linear.V3
	Normals      []linear.V3
	Colors       []linear.V3
}

// normalEps is the finite-differencing step used to compute
// normals, applied to the [-1,1] face-local (u,v) coordinates that
// CubePoint takes rather than to PatchLocation's [0,1) offsets.
const normalEps = 1e-4

// height evaluates the terrain's height function at a unit
// direction d. It is a placeholder low-frequency ripple standing in
// for a real terrain generator; any pure function of d is a
// conforming oracle.
func height(d linear.V3) float32 {
	return 0.05 * float32(math.Sin(30*float64(d[0]+d[1]+d[2])))
}

// colorOf derives a vertex color from height, dry lowlands shading
// toward green midlands and white peaks.
func colorOf(h float32) linear.V3 {
	t := (h + 0.05) / 0.1
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	switch {
	case t < 0.5:
		u := t / 0.5
		return linear.V3{0.6 - 0.4*u, 0.5 + 0.1*u, 0.2 - 0.1*u}
	default:
		u := (t - 0.5) / 0.5
		return linear.V3{0.2 + 0.8*u, 0.6 + 0.4*u, 0.1 + 0.9*u}
	}
}

// surfacePoint maps a face-local (u,v) coordinate, in [-1,1]^2, to
// its planet-space position (direction scaled by radius+height) and
// the unmodified direction, so callers needing only the direction
// don't pay for a second evaluation.
func surfacePoint(f Face, u, v, radius float32) (pos, dir linear.V3) {
	dir = f.Direction(u, v)
	pos.Scale(radius+height(dir), &dir)
	return
}

// patchToCube remaps a grid index in [0,steps-1] within a patch of
// the given offset/size (themselves in face-local [0,1]^2) to the
// [-1,1]^2 coordinate CubePoint/Direction expect.
func patchToCube(i, steps int, offset, size float32) float32 {
	t := float32(i) / float32(steps-1)
	return (offset+t*size)*2 - 1
}

// computeGeometry is the geometry oracle's contract: given a
// PatchLocation, produce its full PatchGeometry. It is pure (same
// location always yields the same geometry, up to floating-point
// determinism) and safe to call concurrently from multiple workers,
// since it touches no shared state.
func computeGeometry(l PatchLocation, c *Config) PatchGeometry {
	v := c.VerticesPerPatch
	n := c.NormalGridSize()
	g := PatchGeometry{
		Positions:    make([]linear.V3, v*v),
		MorphTargets: make([]linear.V3, v*v),
		Colors:       make([]linear.V3, v*v),
		Normals:      make([]linear.V3, n*n),
	}

	for y := 0; y < v; y++ {
		vv := patchToCube(y, v, l.Offset[1], l.Size)
		for x := 0; x < v; x++ {
			u := patchToCube(x, v, l.Offset[0], l.Size)
			pos, dir := surfacePoint(l.Face, u, vv, c.Radius)
			g.Positions[y*v+x] = pos
			g.Colors[y*v+x] = colorOf(height(dir))

			mx, my := MorphTargetIndex(x, y)
			mu := patchToCube(mx, v, l.Offset[0], l.Size)
			mv := patchToCube(my, v, l.Offset[1], l.Size)
			g.MorphTargets[y*v+x], _ = surfacePoint(l.Face, mu, mv, c.Radius)
		}
	}

	for y := 0; y < n; y++ {
		vv := patchToCube(y, n, l.Offset[1], l.Size)
		for x := 0; x < n; x++ {
			u := patchToCube(x, n, l.Offset[0], l.Size)
			g.Normals[y*n+x] = finiteDiffNormal(l.Face, u, vv, c.Radius)
		}
	}
	return g
}

// finiteDiffNormal computes a surface normal at face-local (u,v) by
// central-differencing the height-offset surface along both axes
// with a small epsilon, then taking the normalised cross product of
// the two tangents.
func finiteDiffNormal(f Face, u, v, radius float32) linear.V3 {
	eps := float32(normalEps)
	pu0, _ := surfacePoint(f, u-eps, v, radius)
	pu1, _ := surfacePoint(f, u+eps, v, radius)
	pv0, _ := surfacePoint(f, u, v-eps, radius)
	pv1, _ := surfacePoint(f, u, v+eps, radius)

	var tu, tv, nrm linear.V3
	tu.Sub(&pu1, &pu0)
	tv.Sub(&pv1, &pv0)
	nrm.Cross(&tu, &tv)
	nrm.Norm(&nrm)
	return nrm
}
