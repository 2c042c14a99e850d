package terrain

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

func TestContourHeights(t *testing.T) {
	m := &geometry.Mesh{
		Vertices: []geometry.Vec3{{Z: 0}, {X: 1, Z: 10}, {Y: 1, Z: 5}},
		Faces:    []geometry.Face{geometry.Tri(0, 1, 2)},
	}
	assert.Equal(t, []float64{2, 4, 6, 8}, ContourHeights(m, 4))
	assert.Nil(t, ContourHeights(m, 0))
	assert.Nil(t, ContourHeights(m, -3))

	flat := &geometry.Mesh{
		Vertices: []geometry.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    []geometry.Face{geometry.Tri(0, 1, 2)},
	}
	assert.Nil(t, ContourHeights(flat, 5))
}

func TestContoursStrictlyInside(t *testing.T) {
	tr := buildPlane(t, domain.RepresentationMesh)
	frag, err := Clip(tr, DefaultClipOptions(500, domain.Style{Footprint: domain.FootprintCircular}))
	require.NoError(t, err)

	b := frag.Mesh.BBox()
	for _, n := range []int{1, 3, 10} {
		levels := Contours(frag.Mesh, n)
		assert.LessOrEqual(t, len(levels), n)
		assert.NotEmpty(t, levels)
		for _, lvl := range levels {
			assert.Greater(t, lvl.Z, b.Min.Z)
			assert.Less(t, lvl.Z, b.Max.Z)
			require.NotEmpty(t, lvl.Lines)
			for _, l := range lvl.Lines {
				for _, p := range l.Points {
					assert.Equal(t, lvl.Z, p.Z)
				}
			}
		}
	}
	assert.Empty(t, Contours(frag.Mesh, 0))
}

func TestPlacement(t *testing.T) {
	north, err := domain.NorthFromDegrees(90)
	require.NoError(t, err)
	p := Placement{LocationPoint: geometry.Vec3{X: 0.5, Y: 0.5, Z: 3}, North: north}

	m := p.Matrix()
	got := m.Apply(geometry.Vec3{X: 0.5, Y: 0.5, Z: 3})
	assert.InDelta(t, 0.0, got.Len(), 1e-9, "location point lands on the origin")

	// One construction unit north becomes 100 m east after a 90 degree clockwise turn.
	got = m.Apply(geometry.Vec3{X: 0.5, Y: 1.5, Z: 3})
	assert.InDelta(t, 100.0, got.X, 1e-9)
	assert.InDelta(t, 0.0, got.Y, 1e-9)

	shifted := Placement{
		LocationPoint: geometry.Vec3{X: 1, Y: 1, Z: 1},
		Origin:        geometry.Vec3{X: 10, Y: 20, Z: 5},
	}
	got = shifted.Matrix().Apply(geometry.Vec3{X: 1, Y: 1, Z: 2})
	assert.InDelta(t, 10.0, got.X, 1e-9)
	assert.InDelta(t, 20.0, got.Y, 1e-9)
	assert.InDelta(t, 105.0, got.Z, 1e-9)

	levels := shifted.ApplyContours([]ContourLevel{
		{Z: 2, Lines: []geometry.Polyline{{Points: []geometry.Vec3{{X: 1, Y: 1, Z: 2}}}}},
		{Z: 3},
	})
	require.Len(t, levels, 1, "empty levels are skipped")
	assert.InDelta(t, 105.0, levels[0].Z, 1e-9)

	shifted.ApplyMesh(nil)
}

type indexRamp struct{}

func (indexRamp) Colors(values []float64) []color.RGBA {
	out := make([]color.RGBA, len(values))
	for i, v := range values {
		out[i] = color.RGBA{R: uint8(math.Round(v)), A: 255}
	}
	return out
}

type shortRamp struct{}

func (shortRamp) Colors([]float64) []color.RGBA { return nil }

func TestColorMesh(t *testing.T) {
	m := &geometry.Mesh{
		Vertices: []geometry.Vec3{{Z: 1}, {X: 1, Z: 2}, {Y: 1, Z: 3}},
		Faces:    []geometry.Face{geometry.Tri(0, 1, 2)},
	}
	ColorMesh(m, indexRamp{})
	require.Len(t, m.Colors, 3)
	assert.Equal(t, uint8(3), m.Colors[2].R)

	ColorMesh(m, shortRamp{})
	assert.Nil(t, m.Colors)
}
