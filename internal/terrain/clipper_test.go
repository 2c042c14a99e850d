package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

func square(cx, cy, z, half float64) *geometry.Mesh {
	return &geometry.Mesh{
		Vertices: []geometry.Vec3{
			{X: cx - half, Y: cy + half, Z: z},
			{X: cx - half, Y: cy - half, Z: z},
			{X: cx + half, Y: cy - half, Z: z},
			{X: cx + half, Y: cy + half, Z: z},
		},
		Faces: []geometry.Face{geometry.Quad(0, 1, 2, 3)},
	}
}

func TestEffectiveRadius(t *testing.T) {
	assert.InDelta(t, 1.99, EffectiveRadius(199), 1e-12)
	assert.InDelta(t, 1.8, EffectiveRadius(200), 1e-12)
	assert.InDelta(t, 4.5, EffectiveRadius(500), 1e-12)
}

// TestSelectNearestOrderIndependent checks that the fragment under the
// location point wins however the pieces are enumerated.
func TestSelectNearestOrderIndependent(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(10, 0, 1, 3)
	c := square(0, -12, 1, 5)
	loc := geometry.Vec3{Z: 1}

	orders := [][]*geometry.Mesh{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, pieces := range orders {
		idx := SelectNearest(pieces, loc)
		require.GreaterOrEqual(t, idx, 0)
		assert.Same(t, a, pieces[idx])
	}

	assert.Equal(t, -1, SelectNearest(nil, loc))
}

func TestSelectNearestTieKeepsFirst(t *testing.T) {
	a := square(5, 0, 0, 1)
	b := square(-5, 0, 0, 1)
	assert.Equal(t, 0, SelectNearest([]*geometry.Mesh{a, b}, geometry.Vec3{}))
	assert.Equal(t, 0, SelectNearest([]*geometry.Mesh{b, a}, geometry.Vec3{}))
}

func buildPlane(t *testing.T, rep domain.Representation) *Terrain {
	t.Helper()
	h := utmWindow(41, 30, 500000, 4983000, 7, 11)
	r := newFnRaster(h, func(x, y float64) float64 { return 300 + 0.1*(x-500000) + 0.05*(y-4983000) })
	g, err := Sample(r, 500000, 4983000)
	require.NoError(t, err)
	tr, err := Build(g, rep, 2)
	require.NoError(t, err)
	return tr
}

// perimeterXY is the length of the closed polyline projected onto the XY plane.
func perimeterXY(p geometry.Polyline) float64 {
	var l float64
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		l += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return l
}

func TestClipRectangular(t *testing.T) {
	tr := buildPlane(t, domain.RepresentationMesh)
	style := domain.Style{Representation: domain.RepresentationMesh, Footprint: domain.FootprintRectangular}
	frag, err := Clip(tr, DefaultClipOptions(500, style))
	require.NoError(t, err)

	b := frag.Mesh.BBox()
	assert.InDelta(t, -4.5, b.Min.X, 1e-9)
	assert.InDelta(t, 4.5, b.Max.X, 1e-9)
	assert.InDelta(t, -4.5, b.Min.Y, 1e-9)
	assert.InDelta(t, 4.5, b.Max.Y, 1e-9)
	assert.Equal(t, 1, frag.Candidates)

	assert.True(t, frag.Boundary.Closed)
	assert.InDelta(t, 36.0, perimeterXY(frag.Boundary), 1e-6)
	assert.Greater(t, frag.Boundary.SignedAreaXY(), 0.0)
}

func TestClipCircular(t *testing.T) {
	for _, rep := range []domain.Representation{domain.RepresentationMesh, domain.RepresentationSurface} {
		tr := buildPlane(t, rep)
		style := domain.Style{Representation: rep, Footprint: domain.FootprintCircular}
		frag, err := Clip(tr, DefaultClipOptions(300, style))
		require.NoError(t, err)

		r := EffectiveRadius(300)
		for _, v := range frag.Mesh.Vertices {
			assert.LessOrEqual(t, math.Hypot(v.X, v.Y), r+1e-9)
		}
		b := frag.Mesh.BBox()
		assert.InDelta(t, 2*r, b.Size().Y, 0.01)
	}
}

func TestClipKeepsFragmentUnderLocation(t *testing.T) {
	// A wall of high cells splits the footprint in two; the piece holding
	// the location point is kept.
	h := utmWindow(41, 30, 500000, 4983000, 7, 11)
	r := newFnRaster(h, func(x, y float64) float64 {
		if math.Abs(x-500100) < 20 {
			return 9000
		}
		return 100
	})
	g, err := Sample(r, 500000, 4983000)
	require.NoError(t, err)
	tr, err := Build(g, domain.RepresentationMesh, 1)
	require.NoError(t, err)

	opts := DefaultClipOptions(150, domain.Style{Footprint: domain.FootprintRectangular})
	opts.HeightFactorMesh = 1
	frag, err := Clip(tr, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, frag.Candidates)
	b := frag.Mesh.BBox()
	assert.Less(t, b.Max.X, 1.0)
	assert.InDelta(t, -1.5, b.Min.X, 1e-9)
}

func TestStandMaxEdge(t *testing.T) {
	tests := []struct {
		radius float64
		edge   float64
	}{
		{20, 0.1}, {300, 0.1}, {301, 0.2}, {400, 0.2}, {500, 0.3}, {501, 0.4},
		{1000, 0.4}, {2000, 0.5}, {3000, 0.7}, {4000, 0.9}, {4001, 10}, {100000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.edge, StandMaxEdge(tt.radius), "radius %v", tt.radius)
	}
}

func TestBuildStand(t *testing.T) {
	tr := buildPlane(t, domain.RepresentationMesh)
	frag, err := Clip(tr, DefaultClipOptions(500, domain.Style{Footprint: domain.FootprintRectangular}))
	require.NoError(t, err)

	assert.Nil(t, BuildStand(frag, 0, 500))

	stand := BuildStand(frag, 20, 500)
	require.NotNil(t, stand)
	low := frag.Mesh.BBox().Min.Z
	b := stand.BBox()
	assert.InDelta(t, low-0.2, b.Min.Z, 1e-12)
	assert.InDelta(t, 9.0*9.0, geometry.PlanarCap(geometry.ProjectZ(frag.Boundary, 0), true).Area(), 1e-6)

	for _, f := range stand.Faces {
		for _, vi := range f.Corners() {
			v := stand.Vertices[vi]
			assert.LessOrEqual(t, math.Abs(v.X), 4.5+1e-9)
			assert.LessOrEqual(t, math.Abs(v.Y), 4.5+1e-9)
		}
	}
}

func TestBuildStandNeedsClosedBoundary(t *testing.T) {
	tr := buildPlane(t, domain.RepresentationMesh)
	frag, err := Clip(tr, DefaultClipOptions(500, domain.Style{Footprint: domain.FootprintRectangular}))
	require.NoError(t, err)

	open := *frag
	open.Boundary = geometry.Polyline{Points: frag.Boundary.Points[:len(frag.Boundary.Points)/2]}
	require.GreaterOrEqual(t, open.Boundary.Len(), 3)
	assert.Nil(t, BuildStand(&open, 20, 500))
}
