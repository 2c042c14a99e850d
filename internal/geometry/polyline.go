package geometry

import "math"

// Polyline is an ordered chain of points. A closed polyline implicitly
// connects its last point back to the first.
type Polyline struct {
	Points []Vec3
	Closed bool
}

// Len returns the number of points.
func (p Polyline) Len() int { return len(p.Points) }

// Length returns the arc length, including the closing segment.
func (p Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(p.Points); i++ {
		l += p.Points[i].Dist(p.Points[i-1])
	}
	if p.Closed && len(p.Points) > 1 {
		l += p.Points[0].Dist(p.Points[len(p.Points)-1])
	}
	return l
}

// BBox returns the bounding box of the points.
func (p Polyline) BBox() BBox { return BBoxOf(p.Points) }

// Transform returns a copy of p with t applied to every point.
func (p Polyline) Transform(t Matrix4) Polyline {
	out := Polyline{Points: make([]Vec3, len(p.Points)), Closed: p.Closed}
	for i, v := range p.Points {
		out.Points[i] = t.Apply(v)
	}
	return out
}

// SignedAreaXY returns the signed area of the closed polyline projected onto
// the XY plane; positive for counter-clockwise.
func (p Polyline) SignedAreaXY() float64 {
	var a float64
	n := len(p.Points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += p.Points[i].X*p.Points[j].Y - p.Points[j].X*p.Points[i].Y
	}
	return a / 2
}

// Densify inserts points so that no segment is longer than maxEdge.
func (p Polyline) Densify(maxEdge float64) Polyline {
	if maxEdge <= 0 || len(p.Points) < 2 {
		return p
	}
	out := Polyline{Closed: p.Closed}
	n := len(p.Points)
	segs := n - 1
	if p.Closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		k := int(math.Ceil(a.Dist(b) / maxEdge))
		if k < 1 {
			k = 1
		}
		for s := 0; s < k; s++ {
			out.Points = append(out.Points, a.Lerp(b, float64(s)/float64(k)))
		}
	}
	if !p.Closed {
		out.Points = append(out.Points, p.Points[n-1])
	}
	return out
}
