package geometry

import (
	"fmt"
	"image/color"
	"sort"
)

// Face is a quad or a triangle. Triangles repeat their third index in the
// fourth slot (F[2] == F[3]).
type Face [4]int

// Tri builds a triangular face.
func Tri(a, b, c int) Face { return Face{a, b, c, c} }

// Quad builds a quadrilateral face.
func Quad(a, b, c, d int) Face { return Face{a, b, c, d} }

// IsQuad reports whether f has four distinct corners.
func (f Face) IsQuad() bool { return f[2] != f[3] }

// Corners returns the 3 or 4 vertex indices of f in winding order.
func (f Face) Corners() []int {
	if f.IsQuad() {
		return []int{f[0], f[1], f[2], f[3]}
	}
	return []int{f[0], f[1], f[2]}
}

// Mesh is an indexed polygon mesh with optional per-vertex colors.
type Mesh struct {
	Vertices []Vec3
	Faces    []Face
	// Colors is either nil or parallel to Vertices.
	Colors []color.RGBA
}

// GridMesh builds a quad mesh over a row-major grid of points. Row 0 is the
// northern (largest Y) row, so faces wind counter-clockwise seen from above.
func GridMesh(points []Vec3, rows, cols int) (*Mesh, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("grid must be at least 2x2, got %dx%d", rows, cols)
	}
	if len(points) != rows*cols {
		return nil, fmt.Errorf("grid has %d points, expected %d", len(points), rows*cols)
	}
	m := &Mesh{
		Vertices: append([]Vec3(nil), points...),
		Faces:    make([]Face, 0, (rows-1)*(cols-1)),
	}
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i := r*cols + c
			m.Faces = append(m.Faces, Quad(i, i+cols, i+cols+1, i+1))
		}
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices: append([]Vec3(nil), m.Vertices...),
		Faces:    append([]Face(nil), m.Faces...),
	}
	if m.Colors != nil {
		c.Colors = append([]color.RGBA(nil), m.Colors...)
	}
	return c
}

// HasColors reports whether every vertex carries a color.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) == len(m.Vertices) && len(m.Vertices) > 0
}

// Append adds o's vertices and faces to m. Colors survive only when both
// meshes are fully colored.
func (m *Mesh) Append(o *Mesh) {
	keepColors := m.HasColors() && o.HasColors()
	off := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, Face{f[0] + off, f[1] + off, f[2] + off, f[3] + off})
	}
	if keepColors {
		m.Colors = append(m.Colors, o.Colors...)
	} else {
		m.Colors = nil
	}
}

// Triangles returns the faces split into triangles (quads along the 0-2 diagonal).
func (m *Mesh) Triangles() [][3]int {
	out := make([][3]int, 0, len(m.Faces)*2)
	for _, f := range m.Faces {
		out = append(out, [3]int{f[0], f[1], f[2]})
		if f.IsQuad() {
			out = append(out, [3]int{f[0], f[2], f[3]})
		}
	}
	return out
}

// BBox returns the bounding box of the vertices referenced by faces.
func (m *Mesh) BBox() BBox {
	b := EmptyBBox()
	for _, f := range m.Faces {
		for _, i := range f.Corners() {
			b = b.Extend(m.Vertices[i])
		}
	}
	return b
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	area, _ := m.AreaCentroid()
	return area
}

// AreaCentroid returns the surface area and the area-weighted centroid.
func (m *Mesh) AreaCentroid() (float64, Vec3) {
	var total float64
	var acc Vec3
	for _, t := range m.Triangles() {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		area := b.Sub(a).Cross(c.Sub(a)).Len() / 2
		if area == 0 {
			continue
		}
		total += area
		acc = acc.Add(a.Add(b).Add(c).Scale(area / 3))
	}
	if total == 0 {
		return 0, Vec3{}
	}
	return total, acc.Scale(1 / total)
}

// Transform applies t to every vertex in place.
func (m *Mesh) Transform(t Matrix4) {
	for i, v := range m.Vertices {
		m.Vertices[i] = t.Apply(v)
	}
}

// Compact drops vertices that no face references, keeping vertex order.
func (m *Mesh) Compact() {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, i := range f.Corners() {
			used[i] = true
		}
	}
	remap := make([]int, len(m.Vertices))
	verts := m.Vertices[:0:0]
	var colors []color.RGBA
	hasColors := m.HasColors()
	for i, v := range m.Vertices {
		if !used[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(verts)
		verts = append(verts, v)
		if hasColors {
			colors = append(colors, m.Colors[i])
		}
	}
	for fi, f := range m.Faces {
		m.Faces[fi] = Face{remap[f[0]], remap[f[1]], remap[f[2]], remap[f[3]]}
	}
	m.Vertices = verts
	m.Colors = colors
}

// Components splits m into its connected pieces. Faces are connected when
// they share a vertex index. Pieces are ordered by their first face.
func (m *Mesh) Components() []*Mesh {
	uf := newUnionFind(len(m.Vertices))
	for _, f := range m.Faces {
		c := f.Corners()
		for _, i := range c[1:] {
			uf.union(c[0], i)
		}
	}

	groups := map[int]int{}
	var order [][]int
	for fi, f := range m.Faces {
		root := uf.find(f[0])
		g, ok := groups[root]
		if !ok {
			g = len(order)
			groups[root] = g
			order = append(order, nil)
		}
		order[g] = append(order[g], fi)
	}

	out := make([]*Mesh, 0, len(order))
	for _, faces := range order {
		out = append(out, m.subMesh(faces))
	}
	return out
}

func (m *Mesh) subMesh(faces []int) *Mesh {
	idx := map[int]int{}
	var verts []int
	for _, fi := range faces {
		for _, v := range m.Faces[fi].Corners() {
			if _, ok := idx[v]; !ok {
				idx[v] = -1
				verts = append(verts, v)
			}
		}
	}
	sort.Ints(verts)
	sub := &Mesh{Vertices: make([]Vec3, len(verts))}
	hasColors := m.HasColors()
	if hasColors {
		sub.Colors = make([]color.RGBA, len(verts))
	}
	for i, v := range verts {
		idx[v] = i
		sub.Vertices[i] = m.Vertices[v]
		if hasColors {
			sub.Colors[i] = m.Colors[v]
		}
	}
	sub.Faces = make([]Face, len(faces))
	for i, fi := range faces {
		f := m.Faces[fi]
		sub.Faces[i] = Face{idx[f[0]], idx[f[1]], idx[f[2]], idx[f[3]]}
	}
	return sub
}

type edgeKey struct{ a, b int }

func undirected(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// NakedEdges returns the edges used by exactly one face, directed as they
// appear in that face and ordered by face.
func (m *Mesh) NakedEdges() [][2]int {
	count := map[edgeKey]int{}
	var directed [][2]int
	for _, f := range m.Faces {
		c := f.Corners()
		for i := range c {
			a, b := c[i], c[(i+1)%len(c)]
			count[undirected(a, b)]++
			directed = append(directed, [2]int{a, b})
		}
	}
	var out [][2]int
	for _, e := range directed {
		if count[undirected(e[0], e[1])] == 1 {
			out = append(out, e)
		}
	}
	return out
}

// BoundaryLoops chains the naked edges into polylines. Consistently wound
// meshes give closed loops; anything else yields open chains.
func (m *Mesh) BoundaryLoops() []Polyline {
	edges := m.NakedEdges()
	out := map[int][]int{}
	for i, e := range edges {
		out[e[0]] = append(out[e[0]], i)
	}
	used := make([]bool, len(edges))

	nextFrom := func(v int) int {
		for _, ei := range out[v] {
			if !used[ei] {
				return ei
			}
		}
		return -1
	}

	var loops []Polyline
	for start := range edges {
		if used[start] {
			continue
		}
		used[start] = true
		first := edges[start][0]
		pts := []Vec3{m.Vertices[first]}
		cur := edges[start][1]
		closed := false
		for {
			if cur == first {
				closed = true
				break
			}
			pts = append(pts, m.Vertices[cur])
			ei := nextFrom(cur)
			if ei < 0 {
				break
			}
			used[ei] = true
			cur = edges[ei][1]
		}
		loops = append(loops, Polyline{Points: pts, Closed: closed})
	}
	return loops
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
