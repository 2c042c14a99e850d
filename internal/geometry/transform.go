package geometry

import "math"

// Matrix4 is a row-major affine transform acting on column vectors.
type Matrix4 [4][4]float64

// Identity returns the identity transform.
func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation moves points by d.
func Translation(d Vec3) Matrix4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = d.X, d.Y, d.Z
	return m
}

// ScaleAbout scales uniformly by s about center.
func ScaleAbout(center Vec3, s float64) Matrix4 {
	m := Matrix4{
		{s, 0, 0, 0},
		{0, s, 0, 0},
		{0, 0, s, 0},
		{0, 0, 0, 1},
	}
	return Translation(center).Mul(m).Mul(Translation(center.Scale(-1)))
}

// RotationZ rotates counter-clockwise (seen from +Z) by angle radians about
// the vertical axis through center.
func RotationZ(angle float64, center Vec3) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	r := Matrix4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	return Translation(center).Mul(r).Mul(Translation(center.Scale(-1)))
}

// Mul returns m*n, which applies n first.
func (m Matrix4) Mul(n Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += m[i][k] * n[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Then returns the transform that applies m and then n.
func (m Matrix4) Then(n Matrix4) Matrix4 { return n.Mul(m) }

// Apply transforms the point p.
func (m Matrix4) Apply(p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}
