package geometry

// SliceZ intersects m with the horizontal plane z = h and returns the
// intersection chained into polylines. Vertices exactly on the plane count
// as above it.
func SliceZ(m *Mesh, h float64) []Polyline {
	var segs [][2]Vec3
	for _, t := range m.Triangles() {
		p := [3]Vec3{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
		var hits []Vec3
		for i := 0; i < 3; i++ {
			a, b := p[i], p[(i+1)%3]
			if (a.Z >= h) != (b.Z >= h) {
				hits = append(hits, planeCut(a, b, h))
			}
		}
		if len(hits) == 2 && hits[0] != hits[1] {
			segs = append(segs, [2]Vec3{hits[0], hits[1]})
		}
	}
	return chainSegments(segs)
}

func planeCut(a, b Vec3, h float64) Vec3 {
	if b.Less(a) {
		a, b = b, a
	}
	p := a.Lerp(b, (h-a.Z)/(b.Z-a.Z))
	p.Z = h
	return p
}

// chainSegments joins segments sharing end points. Open chains are traced
// from their free ends first; the remainder forms closed loops.
func chainSegments(segs [][2]Vec3) []Polyline {
	adj := map[Vec3][]int{}
	for i, s := range segs {
		adj[s[0]] = append(adj[s[0]], i)
		adj[s[1]] = append(adj[s[1]], i)
	}
	used := make([]bool, len(segs))

	next := func(p Vec3) int {
		for _, si := range adj[p] {
			if !used[si] {
				return si
			}
		}
		return -1
	}

	trace := func(start Vec3) Polyline {
		pl := Polyline{Points: []Vec3{start}}
		cur := start
		for {
			si := next(cur)
			if si < 0 {
				break
			}
			used[si] = true
			s := segs[si]
			if s[0] == cur {
				cur = s[1]
			} else {
				cur = s[0]
			}
			if cur == start {
				pl.Closed = true
				break
			}
			pl.Points = append(pl.Points, cur)
		}
		return pl
	}

	var out []Polyline
	for i, s := range segs {
		if used[i] {
			continue
		}
		for _, end := range s {
			if len(adj[end]) == 1 {
				out = append(out, trace(end))
				break
			}
		}
	}
	for i, s := range segs {
		if used[i] {
			continue
		}
		out = append(out, trace(s[0]))
	}
	return out
}
