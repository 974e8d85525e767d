// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// Mul sets q to contain l ⋅ r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// RotateV3 sets v to contain w rotated by q.
// q is assumed to be a unit quaternion.
func (q *Q) RotateV3(v *V3, w *V3) {
	var t, u V3
	t.Cross(&q.V, w)
	t.Scale(2, &t)
	u.Cross(&q.V, &t)
	t.Scale(q.R, &t)
	t.Add(&t, w)
	t.Add(&t, &u)
	*v = t
}

// M3 sets m to the 3x3 rotation matrix equivalent to q.
// q is assumed to be a unit quaternion.
func (q *Q) M3(m *M3) {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	x2, y2, z2 := x+x, y+y, z+z
	xx, yy, zz := x*x2, y*y2, z*z2
	xy, xz, yz := x*y2, x*z2, y*z2
	wx, wy, wz := w*x2, w*y2, w*z2
	m[0] = V3{1 - (yy + zz), xy + wz, xz - wy}
	m[1] = V3{xy - wz, 1 - (xx + zz), yz + wx}
	m[2] = V3{xz + wy, yz - wx, 1 - (xx + yy)}
}
