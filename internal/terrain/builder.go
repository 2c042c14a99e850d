package terrain

import (
	"fmt"
	"math"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

// originRayHeightM is how far above the origin the location ray starts.
const originRayHeightM = 10000

// Terrain is the full, unclipped model built from a Grid.
type Terrain struct {
	Mesh    *geometry.Mesh
	Surface *geometry.Surface
	// SurfaceMesh is the tessellated Surface; nil unless the surface
	// representation was requested.
	SurfaceMesh *geometry.Mesh

	// LocationPoint is where a vertical ray through the local origin meets the mesh.
	LocationPoint geometry.Vec3
	ElevationM    float64
}

// Working returns the mesh that stands in for the requested representation.
func (t *Terrain) Working(rep domain.Representation) *geometry.Mesh {
	if rep == domain.RepresentationSurface && t.SurfaceMesh != nil {
		return t.SurfaceMesh
	}
	return t.Mesh
}

// Build creates the mesh and the interpolating surface from g and projects
// the local origin onto the mesh. surfaceDensity is the number of surface
// samples per grid cell used when rep is the surface representation.
func Build(g Grid, rep domain.Representation, surfaceDensity int) (*Terrain, error) {
	mesh, err := geometry.GridMesh(g.Points, g.Rows, g.Cols)
	if err != nil {
		return nil, fmt.Errorf("failed to build terrain mesh: %w", err)
	}
	srf, err := geometry.NewSurface(g.Points, g.Rows, g.Cols)
	if err != nil {
		return nil, fmt.Errorf("failed to build terrain surface: %w", err)
	}

	t := &Terrain{Mesh: mesh, Surface: srf}
	if rep == domain.RepresentationSurface {
		t.SurfaceMesh = srf.Tessellate(surfaceDensity)
	}

	ray := geometry.Ray{
		Origin: geometry.Vec3{Z: originRayHeightM * ScaleFactor},
		Dir:    geometry.Vec3{Z: -1},
	}
	pt, ok := ray.IntersectMesh(mesh)
	if !ok {
		return nil, domain.NewError(domain.KindOriginOutsideTerrain,
			"the location does not lie over the sampled terrain")
	}
	t.LocationPoint = pt
	t.ElevationM = roundToDecimal(pt.Z/ScaleFactor, 2)
	return t, nil
}

// roundToDecimal rounds a value to the specified number of decimal places.
func roundToDecimal(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
