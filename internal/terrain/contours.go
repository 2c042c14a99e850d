package terrain

import (
	"go.ngs.io/terrain-api/internal/geometry"
)

// ContourLevel is the set of curves cut by one horizontal plane.
type ContourLevel struct {
	Z     float64 // Plane height in the frame the lines are expressed in.
	Lines []geometry.Polyline
}

// ContourHeights returns n heights evenly spaced strictly between the
// vertical extent of m.
func ContourHeights(m *geometry.Mesh, n int) []float64 {
	if n <= 0 {
		return nil
	}
	b := m.BBox()
	if b.IsEmpty() || b.Max.Z <= b.Min.Z {
		return nil
	}
	step := (b.Max.Z - b.Min.Z) / float64(n+1)
	hs := make([]float64, n)
	for i := range hs {
		hs[i] = b.Min.Z + float64(i+1)*step
	}
	return hs
}

// Contours slices m at n evenly spaced heights. Planes that miss the mesh
// are skipped, so at most n levels are returned.
func Contours(m *geometry.Mesh, n int) []ContourLevel {
	var out []ContourLevel
	for _, h := range ContourHeights(m, n) {
		lines := geometry.SliceZ(m, h)
		if len(lines) == 0 {
			continue
		}
		out = append(out, ContourLevel{Z: h, Lines: lines})
	}
	return out
}
