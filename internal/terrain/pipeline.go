package terrain

import (
	"fmt"
	"log/slog"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

// Options are the tunables of the pipeline that do not vary per request.
type Options struct {
	HeightFactorMesh    float64
	HeightFactorSurface float64
	CircleSegments      int
	SurfaceDensity      int
}

// DefaultOptions returns the stock pipeline options.
func DefaultOptions() Options {
	return Options{
		HeightFactorMesh:    8,
		HeightFactorSurface: 5,
		CircleSegments:      128,
		SurfaceDensity:      4,
	}
}

// Request is a validated terrain request.
type Request struct {
	RadiusM         float64
	Style           domain.Style
	North           domain.North
	Origin          geometry.Vec3
	StandThicknessM float64
	NumContours     int
}

// Result is a placed terrain model.
type Result struct {
	Style domain.Style

	// Terrain is the clipped terrain with the stand appended when one was
	// requested. Mesh outputs are vertex-colored; surface outputs carry the
	// tessellated surface.
	Terrain *geometry.Mesh
	// Surface is the interpolating surface through the whole sampled grid,
	// placed. It is not clipped: the clipped footprint is its tessellation
	// in Terrain. Only set for the surface representation.
	Surface *geometry.Surface
	// StandFaces is the number of trailing faces of Terrain that belong to the stand.
	StandFaces int
	Contours   []ContourLevel
	// LocalContours are the contours in the construction frame: XY are scaled
	// offsets from the projected center, Z is scaled elevation.
	LocalContours []ContourLevel

	LocationPoint geometry.Vec3 // Construction frame.
	ElevationM    float64
	Fragments     int
}

// Generate runs sampling, building, clipping, stand, coloring, contouring and
// placement on a raster already projected around the center (originX,
// originY). ramp may be nil for surface outputs.
func Generate(raster domain.ElevationGrid, originX, originY float64, req Request, opts Options, ramp ColorRamp) (*Result, error) {
	grid, err := Sample(raster, originX, originY)
	if err != nil {
		return nil, err
	}
	t, err := Build(grid, req.Style.Representation, opts.SurfaceDensity)
	if err != nil {
		return nil, err
	}

	frag, err := Clip(t, ClipOptions{
		RadiusM:             req.RadiusM,
		Style:               req.Style,
		HeightFactorMesh:    opts.HeightFactorMesh,
		HeightFactorSurface: opts.HeightFactorSurface,
		CircleSegments:      opts.CircleSegments,
	})
	if err != nil {
		return nil, err
	}

	// Contours are cut from the terrain fragment alone; the stand would only
	// add wall rings.
	local := Contours(frag.Mesh, req.NumContours)

	out := frag.Mesh.Clone()
	stand := BuildStand(frag, req.StandThicknessM, req.RadiusM)
	if stand != nil {
		out.Append(stand)
	}
	if req.Style.Representation == domain.RepresentationMesh {
		ColorMesh(out, ramp)
	}

	res := &Result{
		Style:         req.Style,
		Terrain:       out,
		LocalContours: local,
		LocationPoint: t.LocationPoint,
		ElevationM:    t.ElevationM,
		Fragments:     frag.Candidates,
	}
	if stand != nil {
		res.StandFaces = len(stand.Faces)
	}

	place := Placement{LocationPoint: t.LocationPoint, Origin: req.Origin, North: req.North}
	place.ApplyMesh(res.Terrain)
	res.Contours = place.ApplyContours(local)
	if req.Style.Representation == domain.RepresentationSurface {
		res.Surface = t.Surface
		res.Surface.Transform(place.Matrix())
	}

	slog.Debug("terrain generated",
		"style", req.Style.Label(),
		"vertices", len(res.Terrain.Vertices),
		"faces", len(res.Terrain.Faces),
		"stand_faces", res.StandFaces,
		"contour_levels", len(res.Contours),
		"elevation_m", res.ElevationM)
	return res, nil
}

// Title returns the caption printed with a generated terrain.
func Title(name string, center domain.GeodeticPoint, radiusM float64, north domain.North) string {
	return fmt.Sprintf("Location: %s\nLatitude: %v, Longitude: %v\nRadius: %vm, North: %d",
		name, center.LatDeg, center.LonDeg, radiusM, north.Degrees())
}
