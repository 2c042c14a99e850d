package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// maxLoftRings caps the vertical subdivision of a loft.
const maxLoftRings = 256

// Loft builds a straight ruled mesh between two polylines with the same
// number of points. rings >= 1 is the number of bands between them.
// A closed upper polyline gives a closed wall. When upper winds
// counter-clockwise seen from above and lower lies below it, faces point
// outwards.
func Loft(upper, lower Polyline, rings int) *Mesh {
	n := len(upper.Points)
	if n < 2 || n != len(lower.Points) {
		return &Mesh{}
	}
	if rings < 1 {
		rings = 1
	}
	m := &Mesh{Vertices: make([]Vec3, 0, n*(rings+1))}
	for r := 0; r <= rings; r++ {
		t := float64(r) / float64(rings)
		for i := 0; i < n; i++ {
			m.Vertices = append(m.Vertices, upper.Points[i].Lerp(lower.Points[i], t))
		}
	}
	cols := n - 1
	if upper.Closed {
		cols = n
	}
	for r := 0; r < rings; r++ {
		for i := 0; i < cols; i++ {
			j := (i + 1) % n
			m.Faces = append(m.Faces, Quad(r*n+i, (r+1)*n+i, (r+1)*n+j, r*n+j))
		}
	}
	return m
}

// LoftRings returns the band count that keeps vertical edges of a loft
// between upper and lower at or below maxEdge.
func LoftRings(upper, lower Polyline, maxEdge float64) int {
	if maxEdge <= 0 {
		return 1
	}
	var h float64
	for i := range upper.Points {
		if i >= len(lower.Points) {
			break
		}
		h = math.Max(h, upper.Points[i].Dist(lower.Points[i]))
	}
	rings := int(math.Ceil(h / maxEdge))
	if rings < 1 {
		rings = 1
	}
	if rings > maxLoftRings {
		rings = maxLoftRings
	}
	return rings
}

// ProjectZ returns p with every point moved onto the plane z = h.
func ProjectZ(p Polyline, h float64) Polyline {
	out := Polyline{Points: make([]Vec3, len(p.Points)), Closed: p.Closed}
	for i, v := range p.Points {
		out.Points[i] = Vec3{v.X, v.Y, h}
	}
	return out
}

// PlanarCap triangulates a closed loop lying in a horizontal plane by ear
// clipping in XY. faceDown selects triangles facing -Z instead of +Z.
func PlanarCap(loop Polyline, faceDown bool) *Mesh {
	pts := loop.Points
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	m := &Mesh{Vertices: append([]Vec3(nil), pts...)}
	if len(pts) < 3 {
		return m
	}

	ring := make(orb.Ring, len(pts))
	for i, p := range pts {
		ring[i] = orb.Point{p.X, p.Y}
	}
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	if ring.Orientation() == orb.CW {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	emit := func(a, b, c int) {
		if faceDown {
			m.Faces = append(m.Faces, Tri(a, c, b))
		} else {
			m.Faces = append(m.Faces, Tri(a, b, c))
		}
	}

	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			a := idx[(i+len(idx)-1)%len(idx)]
			b := idx[i]
			c := idx[(i+1)%len(idx)]
			if !isEar(pts, idx, a, b, c) {
				continue
			}
			emit(a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate input: drop the vertex with the flattest corner.
			i := flattestCorner(pts, idx)
			idx = append(idx[:i], idx[i+1:]...)
		}
	}
	if cross2(pts[idx[0]], pts[idx[1]], pts[idx[2]]) > 0 {
		emit(idx[0], idx[1], idx[2])
	}
	return m
}

func cross2(a, b, c Vec3) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func isEar(pts []Vec3, idx []int, a, b, c int) bool {
	if cross2(pts[a], pts[b], pts[c]) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		p := pts[k]
		if p == pts[a] || p == pts[b] || p == pts[c] {
			continue
		}
		if cross2(pts[a], pts[b], p) >= 0 && cross2(pts[b], pts[c], p) >= 0 && cross2(pts[c], pts[a], p) >= 0 {
			return false
		}
	}
	return true
}

func flattestCorner(pts []Vec3, idx []int) int {
	best, bestArea := 0, math.Inf(1)
	for i := range idx {
		a := pts[idx[(i+len(idx)-1)%len(idx)]]
		c := pts[idx[(i+1)%len(idx)]]
		if area := math.Abs(cross2(a, pts[idx[i]], c)); area < bestArea {
			best, bestArea = i, area
		}
	}
	return best
}
