// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"math"

	"github.com/arcusgl/spherelod/linear"
)

// Face identifies one of the six faces of the cube that the planet
// is parametrised over.
type Face int

// The six faces, with a fixed numeric mapping pinned by
// faceOrientation and relied upon by every test in this package.
const (
	Front Face = iota
	Right
	Back
	Left
	Top
	Bottom
	faceCount
)

func (f Face) String() string {
	switch f {
	case Front:
		return "Front"
	case Right:
		return "Right"
	case Back:
		return "Back"
	case Left:
		return "Left"
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		return "Face(invalid)"
	}
}

// Faces returns the six faces in the fixed order used throughout
// this package.
func Faces() [6]Face {
	return [6]Face{Front, Right, Back, Left, Top, Bottom}
}

func axisAngle(axis linear.V3, rad float64) linear.Q {
	s := float32(math.Sin(rad / 2))
	c := float32(math.Cos(rad / 2))
	var v linear.V3
	v.Scale(s, &axis)
	return linear.Q{V: v, R: c}
}

// faceOrientation holds, for each Face, the rotation R_f that maps
// the face-local plane z=+1 square to that face of the cube. The
// axis convention matches the reference Euler-angle table (X-axis
// pitch for Top/Bottom, Y-axis yaw for Left/Right/Back).
var faceOrientation = [faceCount]linear.Q{
	Front:  {R: 1},
	Right:  axisAngle(linear.V3{0, 1, 0}, -math.Pi/2),
	Back:   axisAngle(linear.V3{0, 1, 0}, math.Pi),
	Left:   axisAngle(linear.V3{0, 1, 0}, math.Pi/2),
	Top:    axisAngle(linear.V3{1, 0, 0}, math.Pi/2),
	Bottom: axisAngle(linear.V3{1, 0, 0}, -math.Pi/2),
}

// Orientation returns R_f, the rotation that carries the
// face-local square into this face's position on the cube.
func (f Face) Orientation() linear.Q { return faceOrientation[f] }

// CubePoint maps a face-local coordinate (u,v) in [-1,1]^2 to the
// corresponding point on the cube (w=+1 before rotation). Every R_f
// is a multiple of a quarter turn, so its matrix is rounded to exact
// 0/±1 entries: the result only permutes and negates u, v and 1.
func (f Face) CubePoint(u, v float32) linear.V3 {
	local := linear.V3{u, v, 1}
	q := faceOrientation[f]
	var m linear.M3
	q.M3(&m)
	var p linear.V3
	for i := range m {
		for j := range m[i] {
			p[j] += float32(math.Round(float64(m[i][j]))) * local[i]
		}
	}
	return p
}

// Spherify maps a cube point to a unit direction using the
// three-axis symmetric spherification formula (not simple
// normalisation): continuous derivatives are preserved across face
// seams because every face evaluates the same function of the same
// cube point.
func Spherify(p linear.V3) linear.V3 {
	x2, y2, z2 := p[0]*p[0], p[1]*p[1], p[2]*p[2]
	return linear.V3{
		p[0] * float32(math.Sqrt(float64(1-0.5*y2-0.5*z2+y2*z2/3))),
		p[1] * float32(math.Sqrt(float64(1-0.5*z2-0.5*x2+z2*x2/3))),
		p[2] * float32(math.Sqrt(float64(1-0.5*x2-0.5*y2+x2*y2/3))),
	}
}

// Direction maps a face-local coordinate directly to its unit
// direction on the sphere, composing CubePoint and Spherify.
func (f Face) Direction(u, v float32) linear.V3 {
	return Spherify(f.CubePoint(u, v))
}
