package geometry

import (
	"fmt"
	"math"
)

// Surface is an open interpolating patch through a row-major grid of
// points. Each parametric direction has degree min(3, n-1): degree 1 is
// evaluated linearly, degree 2 with the parabola through its three points
// and degree 3 with a Catmull-Rom cubic, so the surface passes through
// every grid point.
type Surface struct {
	Rows, Cols int
	Points     []Vec3
	DegreeU    int // Along rows (v = row index).
	DegreeV    int // Along columns.
}

// NewSurface builds a surface through points.
func NewSurface(points []Vec3, rows, cols int) (*Surface, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("surface needs at least 2x2 points, got %dx%d", rows, cols)
	}
	if len(points) != rows*cols {
		return nil, fmt.Errorf("surface has %d points, expected %d", len(points), rows*cols)
	}
	return &Surface{
		Rows:    rows,
		Cols:    cols,
		Points:  append([]Vec3(nil), points...),
		DegreeU: min(3, cols-1),
		DegreeV: min(3, rows-1),
	}, nil
}

func (s *Surface) at(r, c int) Vec3 { return s.Points[r*s.Cols+c] }

// Evaluate returns the point at (row, col) parameters, each ranging over
// [0, Rows-1] and [0, Cols-1]. Integer parameters hit grid points exactly.
func (s *Surface) Evaluate(row, col float64) Vec3 {
	row = math.Max(0, math.Min(float64(s.Rows-1), row))
	col = math.Max(0, math.Min(float64(s.Cols-1), col))

	r0 := int(math.Floor(row))
	if r0 >= s.Rows-1 {
		r0 = s.Rows - 2
	}
	tr := row - float64(r0)

	evalRow := func(r int) Vec3 {
		return interp1(s.Cols, func(i int) Vec3 { return s.at(r, i) }, col, s.DegreeU)
	}
	switch s.DegreeV {
	case 1:
		return evalRow(r0).Lerp(evalRow(r0+1), tr)
	case 2:
		return quadratic(evalRow(0), evalRow(1), evalRow(2), row)
	}
	rows := [4]Vec3{}
	for k := -1; k <= 2; k++ {
		r := r0 + k
		if r < 0 || r >= s.Rows {
			continue
		}
		rows[k+1] = evalRow(r)
	}
	return catmullRom(rows, r0, s.Rows, tr)
}

// Tessellate samples the surface density times per grid cell in each
// direction and returns the sampled quad mesh.
func (s *Surface) Tessellate(density int) *Mesh {
	if density < 1 {
		density = 1
	}
	rows := (s.Rows-1)*density + 1
	cols := (s.Cols-1)*density + 1
	pts := make([]Vec3, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pts = append(pts, s.Evaluate(float64(r)/float64(density), float64(c)/float64(density)))
		}
	}
	m, _ := GridMesh(pts, rows, cols)
	return m
}

// Transform applies t to the control points in place.
func (s *Surface) Transform(t Matrix4) {
	for i, p := range s.Points {
		s.Points[i] = t.Apply(p)
	}
}

// interp1 interpolates n samples at parameter x in [0, n-1].
func interp1(n int, get func(int) Vec3, x float64, degree int) Vec3 {
	i0 := int(math.Floor(x))
	if i0 >= n-1 {
		i0 = n - 2
	}
	t := x - float64(i0)
	switch degree {
	case 1:
		return get(i0).Lerp(get(i0+1), t)
	case 2:
		return quadratic(get(0), get(1), get(2), x)
	}
	var p [4]Vec3
	for k := -1; k <= 2; k++ {
		i := i0 + k
		if i < 0 || i >= n {
			continue
		}
		p[k+1] = get(i)
	}
	return catmullRom(p, i0, n, t)
}

// quadratic evaluates the parabola through p0, p1, p2 at parameters 0, 1, 2.
func quadratic(p0, p1, p2 Vec3, x float64) Vec3 {
	l0 := (x - 1) * (x - 2) / 2
	l1 := -x * (x - 2)
	l2 := x * (x - 1) / 2
	return p0.Scale(l0).Add(p1.Scale(l1)).Add(p2.Scale(l2))
}

// catmullRom evaluates the segment p[1]..p[2] of a uniform Catmull-Rom
// spline. Missing neighbours at the ends are mirrored, which gives the
// open (non-periodic) end condition.
func catmullRom(p [4]Vec3, i0, n int, t float64) Vec3 {
	if i0 == 0 {
		p[0] = p[1].Scale(2).Sub(p[2])
	}
	if i0+2 >= n {
		p[3] = p[2].Scale(2).Sub(p[1])
	}
	t2 := t * t
	t3 := t2 * t
	a := p[1].Scale(2)
	b := p[2].Sub(p[0]).Scale(t)
	c := p[0].Scale(2).Sub(p[1].Scale(5)).Add(p[2].Scale(4)).Sub(p[3]).Scale(t2)
	d := p[1].Scale(3).Sub(p[0]).Sub(p[2].Scale(3)).Add(p[3]).Scale(t3)
	return a.Add(b).Add(c).Add(d).Scale(0.5)
}
