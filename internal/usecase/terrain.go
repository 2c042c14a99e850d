package usecase

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"go.ngs.io/terrain-api/internal/adapter/colorramp"
	"go.ngs.io/terrain-api/internal/adapter/raster"
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/export"
	"go.ngs.io/terrain-api/internal/geometry"
	"go.ngs.io/terrain-api/internal/metrics"
	"go.ngs.io/terrain-api/internal/terrain"
)

// DefaultContours is the contour count used when the caller gives none.
const DefaultContours = 10

const maxContours = 500

// TerrainRequest encapsulates a terrain generation request.
type TerrainRequest struct {
	Lat *float64
	Lon *float64

	// Name labels the location in the title.
	Name string

	// RadiusM defaults to domain.DefaultRadiusM when nil.
	RadiusM *float64

	Style  domain.Style
	North  domain.North
	Origin geometry.Vec3

	// Negative values are treated as zero.
	StandThicknessM float64
	// NumContours defaults to DefaultContours when nil; negative means none.
	NumContours *int

	// Colors overrides the color ramp with #RRGGBB stops.
	Colors []string
}

// Validate checks the request and fills defaults.
func (r *TerrainRequest) Validate() error {
	if r.Lat == nil || r.Lon == nil {
		return domain.NewError(domain.KindInvalidRequest, "lat and lon must be provided")
	}
	if err := r.Center().Validate(); err != nil {
		return err
	}

	if r.RadiusM == nil {
		def := float64(domain.DefaultRadiusM)
		r.RadiusM = &def
	}
	if err := domain.ValidateRadius(*r.RadiusM); err != nil {
		return err
	}

	if math.IsNaN(r.StandThicknessM) || math.IsInf(r.StandThicknessM, 0) {
		return domain.NewError(domain.KindInvalidRequest, "stand thickness must be a finite number")
	}
	if r.StandThicknessM < 0 {
		slog.Info("negative stand thickness treated as no stand", "stand_m", r.StandThicknessM)
		r.StandThicknessM = 0
	}

	if r.NumContours == nil {
		def := DefaultContours
		r.NumContours = &def
	}
	if *r.NumContours < 0 {
		slog.Info("negative contour count treated as no contours", "contours", *r.NumContours)
		zero := 0
		r.NumContours = &zero
	}
	if *r.NumContours > maxContours {
		return domain.NewError(domain.KindInvalidRequest, "at most %d contours may be requested", maxContours)
	}
	return nil
}

// Center returns the requested location.
func (r *TerrainRequest) Center() domain.GeodeticPoint {
	return domain.GeodeticPoint{LatDeg: *r.Lat, LonDeg: *r.Lon}
}

// TerrainOptions configures the terrain use case.
type TerrainOptions struct {
	Pipeline terrain.Options
	Project  raster.ProjectOptions
	// MinFetchRadiusM is the smallest raster window; domain.MinFetchRadiusM when zero.
	MinFetchRadiusM float64
}

// TerrainUseCase orchestrates raster retrieval and the terrain pipeline.
type TerrainUseCase struct {
	source raster.Source
	opts   TerrainOptions
}

// NewTerrainUseCase creates a new terrain use case.
func NewTerrainUseCase(source raster.Source, opts TerrainOptions) *TerrainUseCase {
	if opts.Pipeline == (terrain.Options{}) {
		opts.Pipeline = terrain.DefaultOptions()
	}
	if opts.MinFetchRadiusM <= 0 {
		opts.MinFetchRadiusM = domain.MinFetchRadiusM
	}
	return &TerrainUseCase{source: source, opts: opts}
}

// SourceName returns the name of the configured raster source.
func (uc *TerrainUseCase) SourceName() string { return uc.source.Name() }

// TerrainResult is a generated terrain with the context needed to render
// or export it.
type TerrainResult struct {
	RunID     string
	Request   TerrainRequest
	Center    domain.GeodeticPoint
	Title     string
	FetchR    float64
	Clamp     domain.ClampResult
	Window    *raster.Window
	Model     *terrain.Result
	Generated time.Time
}

// Execute validates the request, fetches and projects the raster and runs
// the terrain pipeline.
func (uc *TerrainUseCase) Execute(ctx context.Context, req TerrainRequest) (*TerrainResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	center := req.Center()
	radius := *req.RadiusM

	if err := domain.CheckCoverage(center); err != nil {
		return nil, err
	}
	fetchR := math.Max(radius, uc.opts.MinFetchRadiusM)
	clamp, err := domain.ClampRadius(center, fetchR)
	if err != nil {
		return nil, err
	}
	region, err := domain.Region(center, fetchR)
	if err != nil {
		return nil, fmt.Errorf("failed to compute bounding region: %w", err)
	}

	ramp, err := uc.ramp(req)
	if err != nil {
		return nil, err
	}

	win, err := raster.LoadWindow(ctx, uc.source, region, fetchR, uc.opts.Project)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	model, err := terrain.Generate(win.Grid, win.OriginX, win.OriginY, terrain.Request{
		RadiusM:         radius,
		Style:           req.Style,
		North:           req.North,
		Origin:          req.Origin,
		StandThicknessM: req.StandThicknessM,
		NumContours:     *req.NumContours,
	}, uc.opts.Pipeline, ramp)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("generate", start)

	res := &TerrainResult{
		RunID:     uuid.NewString(),
		Request:   req,
		Center:    center,
		Title:     terrain.Title(req.Name, center, radius, req.North),
		FetchR:    fetchR,
		Clamp:     clamp,
		Window:    win,
		Model:     model,
		Generated: time.Now().UTC(),
	}
	slog.Info("terrain generated",
		"run", res.RunID,
		"lat", center.LatDeg,
		"lon", center.LonDeg,
		"radius_m", radius,
		"style", req.Style.Label(),
		"elevation_m", model.ElevationM,
		"vertices", len(model.Terrain.Vertices),
		"contour_levels", len(model.Contours))
	return res, nil
}

func (uc *TerrainUseCase) ramp(req TerrainRequest) (terrain.ColorRamp, error) {
	if req.Style.Representation != domain.RepresentationMesh {
		return nil, nil
	}
	if len(req.Colors) == 0 {
		return colorramp.Default(), nil
	}
	r, err := colorramp.Parse(req.Colors)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidRequest, err, "invalid color ramp")
	}
	return r, nil
}

// GeoContours returns the contours in WGS84.
func (r *TerrainResult) GeoContours() ([]export.GeoContour, error) {
	start := time.Now()
	defer metrics.ObserveStage("export", start)
	return export.GeodeticContours(r.Model.LocalContours, r.Window.Projector, r.Window.OriginX, r.Window.OriginY)
}

// OBJHeader returns the header block for an OBJ export of the result.
func (r *TerrainResult) OBJHeader() export.OBJHeader {
	return export.OBJHeader{
		RunID:      r.RunID,
		Title:      r.Title,
		ElevationM: r.Model.ElevationM,
		RadiusM:    *r.Request.RadiusM,
		NorthDeg:   r.Request.North.Degrees(),
		Style:      r.Request.Style.Label(),
		Created:    r.Generated,
	}
}

// TerrainResponse is the JSON form of a generated terrain.
type TerrainResponse struct {
	RunID         string            `json:"run_id"`
	Title         string            `json:"title"`
	Location      LocationInfo      `json:"location"`
	ElevationM    float64           `json:"elevation_m"`
	RadiusM       float64           `json:"radius_m"`
	Style         string            `json:"style"`
	NorthDeg      int               `json:"north_deg"`
	Origin        [3]float64        `json:"origin"`
	LocationPoint [3]float64        `json:"location_point"`
	Fragments     int               `json:"fragments"`
	Terrain       *MeshJSON         `json:"terrain,omitempty"`
	Surface       *SurfaceJSON      `json:"surface,omitempty"`
	Stand         *StandJSON        `json:"stand,omitempty"`
	Contours      []ContourJSON     `json:"contours"`
	Raster        RasterInfo        `json:"raster"`
	Meta          map[string]string `json:"meta"`
}

// LocationInfo identifies the requested location.
type LocationInfo struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// MeshJSON is an indexed mesh; faces hold 3 or 4 zero-based indices.
type MeshJSON struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
	Colors   []string     `json:"colors,omitempty"`
}

// SurfaceJSON is the interpolating surface's control grid plus its clipped
// tessellation. The control grid covers the whole sampled window; Mesh is
// the footprint that was kept.
type SurfaceJSON struct {
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	DegreeU int          `json:"degree_u"`
	DegreeV int          `json:"degree_v"`
	Points  [][3]float64 `json:"points"`
	Mesh    MeshJSON     `json:"mesh"`
}

// StandJSON describes the stand appended to the terrain.
type StandJSON struct {
	ThicknessM float64 `json:"thickness_m"`
	// Faces is the number of trailing faces of the terrain mesh that form the stand.
	Faces int `json:"faces"`
}

// ContourJSON is one contour level in placed coordinates.
type ContourJSON struct {
	ElevationM float64        `json:"elevation_m"`
	Z          float64        `json:"z"`
	Lines      [][][3]float64 `json:"lines"`
}

// RasterInfo describes the projected raster the terrain was sampled from.
type RasterInfo struct {
	Source    string  `json:"source"`
	Zone      string  `json:"utm_zone"`
	EPSG      int     `json:"epsg"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	CellSizeM float64 `json:"cell_size_m"`
	FetchR    float64 `json:"fetch_radius_m"`
}

// Response converts the result to its JSON form.
func (r *TerrainResult) Response(source string) *TerrainResponse {
	m := r.Model
	lp := m.LocationPoint.Scale(1 / terrain.ScaleFactor)
	resp := &TerrainResponse{
		RunID: r.RunID,
		Title: r.Title,
		Location: LocationInfo{
			Name: r.Request.Name,
			Lat:  r.Center.LatDeg,
			Lon:  r.Center.LonDeg,
		},
		ElevationM:    m.ElevationM,
		RadiusM:       *r.Request.RadiusM,
		Style:         r.Request.Style.Label(),
		NorthDeg:      r.Request.North.Degrees(),
		Origin:        vec(r.Request.Origin),
		LocationPoint: [3]float64{roundToDecimal(lp.X, 3), roundToDecimal(lp.Y, 3), roundToDecimal(lp.Z, 3)},
		Fragments:     m.Fragments,
		Contours:      make([]ContourJSON, 0, len(m.Contours)),
		Raster: RasterInfo{
			Source:    source,
			Zone:      r.Window.Projector.Zone().String(),
			EPSG:      r.Window.Projector.Zone().EPSG(),
			Rows:      r.Window.Grid.H.NumRows,
			Cols:      r.Window.Grid.H.NumCols,
			CellSizeM: roundToDecimal(r.Window.Grid.H.CellSizeX, 3),
			FetchR:    r.FetchR,
		},
		Meta: map[string]string{
			"generated_at": r.Generated.Format(time.RFC3339),
			"units":        "meters",
		},
	}

	if r.Request.Style.Representation == domain.RepresentationSurface && m.Surface != nil {
		s := m.Surface
		resp.Surface = &SurfaceJSON{
			Rows:    s.Rows,
			Cols:    s.Cols,
			DegreeU: s.DegreeU,
			DegreeV: s.DegreeV,
			Points:  vecs(s.Points),
			Mesh:    meshJSON(m.Terrain),
		}
	} else {
		mj := meshJSON(m.Terrain)
		resp.Terrain = &mj
	}
	if m.StandFaces > 0 {
		resp.Stand = &StandJSON{ThicknessM: r.Request.StandThicknessM, Faces: m.StandFaces}
	}

	for i, lvl := range m.Contours {
		cj := ContourJSON{Z: roundToDecimal(lvl.Z, 6)}
		if i < len(m.LocalContours) {
			cj.ElevationM = roundToDecimal(m.LocalContours[i].Z/terrain.ScaleFactor, 2)
		}
		for _, l := range lvl.Lines {
			pts := vecs(l.Points)
			if l.Closed && len(pts) > 0 {
				pts = append(pts, pts[0])
			}
			cj.Lines = append(cj.Lines, pts)
		}
		resp.Contours = append(resp.Contours, cj)
	}
	return resp
}

func meshJSON(m *geometry.Mesh) MeshJSON {
	out := MeshJSON{
		Vertices: vecs(m.Vertices),
		Faces:    make([][]int, len(m.Faces)),
	}
	for i, f := range m.Faces {
		out.Faces[i] = f.Corners()
	}
	if m.HasColors() {
		out.Colors = make([]string, len(m.Colors))
		for i, c := range m.Colors {
			out.Colors[i] = hex(c)
		}
	}
	return out
}

func vec(v geometry.Vec3) [3]float64 {
	return [3]float64{roundToDecimal(v.X, 6), roundToDecimal(v.Y, 6), roundToDecimal(v.Z, 6)}
}

func vecs(pts []geometry.Vec3) [][3]float64 {
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = vec(p)
	}
	return out
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// roundToDecimal rounds a value to the specified number of decimal places.
func roundToDecimal(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
