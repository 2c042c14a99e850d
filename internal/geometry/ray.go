package geometry

import "math"

const rayEpsilon = 1e-12

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// IntersectMesh returns the nearest point where r hits m.
func (r Ray) IntersectMesh(m *Mesh) (Vec3, bool) {
	best := math.Inf(1)
	for _, t := range m.Triangles() {
		if d, ok := r.intersectTriangle(m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]); ok && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return Vec3{}, false
	}
	return r.Origin.Add(r.Dir.Scale(best)), true
}

// intersectTriangle is the Moller-Trumbore test. Hits on an edge count.
func (r Ray) intersectTriangle(a, b, c Vec3) (float64, bool) {
	e1, e2 := b.Sub(a), c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
