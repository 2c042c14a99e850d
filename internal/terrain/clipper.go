package terrain

import (
	"log/slog"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

const (
	// marginThresholdM is the radius from which the clip shrinks by marginFactor.
	marginThresholdM = 200
	marginFactor     = 0.9
)

// ClipOptions controls the footprint clip.
type ClipOptions struct {
	RadiusM float64
	Style   domain.Style
	// HeightFactorMesh and HeightFactorSurface size the clip solid
	// vertically as multiples of the effective radius.
	HeightFactorMesh    float64
	HeightFactorSurface float64
	// CircleSegments is the polygon resolution of the circular footprint.
	CircleSegments int
}

// DefaultClipOptions returns the stock clip parameters for radius and style.
func DefaultClipOptions(radiusM float64, style domain.Style) ClipOptions {
	return ClipOptions{
		RadiusM:             radiusM,
		Style:               style,
		HeightFactorMesh:    8,
		HeightFactorSurface: 5,
		CircleSegments:      128,
	}
}

// Fragment is the piece of terrain kept after the clip.
type Fragment struct {
	Mesh *geometry.Mesh
	// Boundary is the outer naked-edge loop, counter-clockwise seen from above.
	Boundary geometry.Polyline
	// Candidates is the number of disjoint pieces the clip produced.
	Candidates int
}

// EffectiveRadius returns the clip radius in construction units.
func EffectiveRadius(radiusM float64) float64 {
	if radiusM < marginThresholdM {
		return radiusM * ScaleFactor
	}
	return radiusM * marginFactor * ScaleFactor
}

// ClipSolid returns the solid the terrain is clipped against, centered on
// the location point.
func ClipSolid(center geometry.Vec3, opts ClipOptions) geometry.Solid {
	r := EffectiveRadius(opts.RadiusM)
	factor := opts.HeightFactorMesh
	if opts.Style.Representation == domain.RepresentationSurface {
		factor = opts.HeightFactorSurface
	}
	halfZ := r * factor
	if opts.Style.Footprint == domain.FootprintCircular {
		return geometry.CylinderSolid(center, r, opts.CircleSegments, halfZ)
	}
	return geometry.BoxSolid(center, r, r, halfZ)
}

// Clip cuts the terrain to the footprint and keeps the fragment whose area
// centroid is nearest to the location point.
func Clip(t *Terrain, opts ClipOptions) (*Fragment, error) {
	pieces := geometry.SplitInside(t.Working(opts.Style.Representation), ClipSolid(t.LocationPoint, opts))
	idx := SelectNearest(pieces, t.LocationPoint)
	if idx < 0 {
		return nil, domain.NewError(domain.KindOriginOutsideTerrain,
			"no terrain remains inside the %s footprint", opts.Style.Footprint)
	}
	slog.Debug("terrain clipped",
		"style", opts.Style.Label(),
		"radius_m", opts.RadiusM,
		"fragments", len(pieces),
		"kept", idx)

	frag := &Fragment{Mesh: pieces[idx], Candidates: len(pieces)}
	frag.Boundary = outerLoop(frag.Mesh)
	return frag, nil
}

// SelectNearest returns the index of the piece whose area centroid is
// closest to p. Ties keep the lowest index; -1 means no pieces.
func SelectNearest(pieces []*geometry.Mesh, p geometry.Vec3) int {
	best := -1
	var bestDist float64
	for i, m := range pieces {
		area, c := m.AreaCentroid()
		if area == 0 {
			continue
		}
		d := c.Dist(p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// outerLoop picks the longest closed boundary loop, falling back to the
// longest open chain.
func outerLoop(m *geometry.Mesh) geometry.Polyline {
	var best geometry.Polyline
	bestClosed := false
	bestLen := -1.0
	for _, l := range m.BoundaryLoops() {
		length := l.Length()
		if (l.Closed && !bestClosed) || (l.Closed == bestClosed && length > bestLen) {
			best, bestClosed, bestLen = l, l.Closed, length
		}
	}
	if bestClosed && best.SignedAreaXY() < 0 {
		pts := best.Points
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return best
}
