package geometry

import "math"

// HalfSpace is the set of points p with Normal·p <= Offset.
type HalfSpace struct {
	Normal Vec3
	Offset float64
}

func (h HalfSpace) dist(p Vec3) float64 { return h.Normal.Dot(p) - h.Offset }

// Solid is a convex region: the intersection of its half-spaces.
type Solid []HalfSpace

// Contains reports whether p lies inside or on the boundary of s.
func (s Solid) Contains(p Vec3) bool {
	for _, h := range s {
		if h.dist(p) > 0 {
			return false
		}
	}
	return true
}

// BoxSolid returns an axis-aligned box centered at c.
func BoxSolid(c Vec3, halfX, halfY, halfZ float64) Solid {
	return Solid{
		{Normal: Vec3{1, 0, 0}, Offset: c.X + halfX},
		{Normal: Vec3{-1, 0, 0}, Offset: -(c.X - halfX)},
		{Normal: Vec3{0, 1, 0}, Offset: c.Y + halfY},
		{Normal: Vec3{0, -1, 0}, Offset: -(c.Y - halfY)},
		{Normal: Vec3{0, 0, 1}, Offset: c.Z + halfZ},
		{Normal: Vec3{0, 0, -1}, Offset: -(c.Z - halfZ)},
	}
}

// CylinderSolid approximates a vertical cylinder of the given radius around
// c with a regular prism whose vertices lie on the circle.
func CylinderSolid(c Vec3, radius float64, segments int, halfZ float64) Solid {
	if segments < 3 {
		segments = 3
	}
	apothem := radius * math.Cos(math.Pi/float64(segments))
	s := make(Solid, 0, segments+2)
	for k := 0; k < segments; k++ {
		theta := (float64(k) + 0.5) * 2 * math.Pi / float64(segments)
		n := Vec3{math.Cos(theta), math.Sin(theta), 0}
		s = append(s, HalfSpace{Normal: n, Offset: n.Dot(c) + apothem})
	}
	s = append(s,
		HalfSpace{Normal: Vec3{0, 0, 1}, Offset: c.Z + halfZ},
		HalfSpace{Normal: Vec3{0, 0, -1}, Offset: -(c.Z - halfZ)},
	)
	return s
}

// Clip returns the part of m inside s. Faces entirely inside are kept as
// they are; faces crossing the boundary are cut into triangles. Cut points
// are computed from canonically ordered edge endpoints, so neighbouring
// faces produce identical points and stay connected after welding.
func Clip(m *Mesh, s Solid) *Mesh {
	w := newWelder()
	out := &Mesh{}

	for _, f := range m.Faces {
		corners := f.Corners()
		pts := make([]Vec3, len(corners))
		for i, vi := range corners {
			pts[i] = m.Vertices[vi]
		}
		if outsideAny(s, pts) {
			continue
		}
		if allInside(s, pts) {
			var nf Face
			for i := range nf {
				nf[i] = w.index(m.Vertices[f[i]])
			}
			out.Faces = append(out.Faces, nf)
			continue
		}

		tris := [][3]Vec3{{pts[0], pts[1], pts[2]}}
		if f.IsQuad() {
			tris = append(tris, [3]Vec3{pts[0], pts[2], pts[3]})
		}
		for _, t := range tris {
			poly := []Vec3{t[0], t[1], t[2]}
			for _, h := range s {
				poly = clipPolygon(poly, h)
				if len(poly) < 3 {
					break
				}
			}
			poly = dedupe(poly)
			for i := 1; i+1 < len(poly); i++ {
				a, b, c := poly[0], poly[i], poly[i+1]
				if b.Sub(a).Cross(c.Sub(a)).Len() == 0 {
					continue
				}
				out.Faces = append(out.Faces, Tri(w.index(a), w.index(b), w.index(c)))
			}
		}
	}
	out.Vertices = w.points
	return out
}

// SplitInside clips m by s and returns the connected fragments inside s.
func SplitInside(m *Mesh, s Solid) []*Mesh {
	return Clip(m, s).Components()
}

func outsideAny(s Solid, pts []Vec3) bool {
	for _, h := range s {
		out := true
		for _, p := range pts {
			if h.dist(p) <= 0 {
				out = false
				break
			}
		}
		if out {
			return true
		}
	}
	return false
}

func allInside(s Solid, pts []Vec3) bool {
	for _, p := range pts {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

// clipPolygon is one Sutherland-Hodgman pass.
func clipPolygon(poly []Vec3, h HalfSpace) []Vec3 {
	n := len(poly)
	out := make([]Vec3, 0, n+1)
	for i := 0; i < n; i++ {
		cur, prev := poly[i], poly[(i+n-1)%n]
		dc, dp := h.dist(cur), h.dist(prev)
		if dc <= 0 {
			if dp > 0 {
				out = append(out, cutEdge(prev, cur, h))
			}
			out = append(out, cur)
		} else if dp <= 0 {
			out = append(out, cutEdge(prev, cur, h))
		}
	}
	return out
}

func cutEdge(a, b Vec3, h HalfSpace) Vec3 {
	if b.Less(a) {
		a, b = b, a
	}
	da, db := h.dist(a), h.dist(b)
	return a.Lerp(b, da/(da-db))
}

func dedupe(poly []Vec3) []Vec3 {
	out := poly[:0:0]
	for i, p := range poly {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// welder assigns one index per distinct point.
type welder struct {
	idx    map[Vec3]int
	points []Vec3
}

func newWelder() *welder { return &welder{idx: map[Vec3]int{}} }

func (w *welder) index(p Vec3) int {
	if i, ok := w.idx[p]; ok {
		return i
	}
	i := len(w.points)
	w.idx[p] = i
	w.points = append(w.points, p)
	return i
}
