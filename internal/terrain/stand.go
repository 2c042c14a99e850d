package terrain

import (
	"log/slog"

	"go.ngs.io/terrain-api/internal/geometry"
)

// standStep maps an upper radius bound to the stand's maximum edge length.
type standStep struct {
	maxRadiusM float64
	edge       float64
}

var standSteps = []standStep{
	{300, 0.1},
	{400, 0.2},
	{500, 0.3},
	{1000, 0.4},
	{2000, 0.5},
	{3000, 0.7},
	{4000, 0.9},
}

// coarsestStandEdge applies above the last step.
const coarsestStandEdge = 10

// StandMaxEdge returns the maximum stand edge length (construction units)
// for a terrain of the given radius.
func StandMaxEdge(radiusM float64) float64 {
	for _, s := range standSteps {
		if radiusM <= s.maxRadiusM {
			return s.edge
		}
	}
	return coarsestStandEdge
}

// BuildStand extrudes the fragment boundary down to a flat base standThicknessM
// meters below the fragment's lowest point. The result is the lofted wall
// plus a downward-facing planar cap. A zero thickness returns nil, as does a
// fragment without a closed boundary loop.
func BuildStand(frag *Fragment, standThicknessM, radiusM float64) *geometry.Mesh {
	if standThicknessM <= 0 || len(frag.Boundary.Points) < 3 {
		return nil
	}
	if !frag.Boundary.Closed {
		slog.Warn("skipping stand, terrain boundary is not a closed loop",
			"boundary_points", len(frag.Boundary.Points))
		return nil
	}
	d := standThicknessM / 100
	baseZ := frag.Mesh.BBox().Min.Z - d

	maxEdge := StandMaxEdge(radiusM)
	upper := frag.Boundary.Densify(maxEdge)
	lower := geometry.ProjectZ(upper, baseZ)

	stand := geometry.Loft(upper, lower, geometry.LoftRings(upper, lower, maxEdge))
	stand.Append(geometry.PlanarCap(lower, true))
	return stand
}
