package terrain

import (
	"image/color"

	"go.ngs.io/terrain-api/internal/geometry"
)

// ColorRamp maps elevations to colors, one per input value, in order.
type ColorRamp interface {
	Colors(values []float64) []color.RGBA
}

// ColorMesh colors every vertex of m by its Z value.
func ColorMesh(m *geometry.Mesh, ramp ColorRamp) {
	if ramp == nil || len(m.Vertices) == 0 {
		return
	}
	zs := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		zs[i] = v.Z
	}
	colors := ramp.Colors(zs)
	if len(colors) != len(m.Vertices) {
		m.Colors = nil
		return
	}
	m.Colors = colors
}
