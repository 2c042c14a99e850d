package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/export"
	"go.ngs.io/terrain-api/internal/usecase"
)

var generateFlags struct {
	lat, lon  float64
	name      string
	radius    float64
	style     string
	north     float64
	origin    []float64
	stand     float64
	contours  int
	colors    []string
	objPath   string
	jsonPath  string
	geojson   string
	shapefile string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "generate a terrain model and write it to files",
	Long: `
Generates the terrain model of a location and writes the mesh as Wavefront
OBJ, the full model as JSON and the contours as GeoJSON or Shapefile. At
least one output must be given.
`,
	Example: `  terrain-export generate --lat 35.3606 --lon 138.7274 --radius 2000 --obj fuji.obj
  terrain-export generate --lat -33.96 --lon 18.40 --style surface-circular --json table.json --shp table.shp`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Float64Var(&generateFlags.lat, "lat", 0, "latitude in degrees (required)")
	f.Float64Var(&generateFlags.lon, "lon", 0, "longitude in degrees (required)")
	f.StringVar(&generateFlags.name, "name", "", "location name used in the title")
	f.Float64Var(&generateFlags.radius, "radius", domain.DefaultRadiusM, "radius in meters")
	f.StringVar(&generateFlags.style, "style", domain.DefaultStyle.Label(), "mesh|surface and rectangular|circular, or a code 0-3")
	f.Float64Var(&generateFlags.north, "north", 0, "clockwise angle of north from +Y in degrees")
	f.Float64SliceVar(&generateFlags.origin, "origin", nil, "model origin as x,y,z")
	f.Float64Var(&generateFlags.stand, "stand", 0, "stand thickness in meters, 0 for none")
	f.IntVar(&generateFlags.contours, "contours", usecase.DefaultContours, "number of contour levels")
	f.StringSliceVar(&generateFlags.colors, "colors", nil, "color ramp stops as #RRGGBB")
	f.StringVar(&generateFlags.objPath, "obj", "", "write the terrain mesh as OBJ")
	f.StringVar(&generateFlags.jsonPath, "json", "", "write the full model as JSON")
	f.StringVar(&generateFlags.geojson, "geojson", "", "write the contours as GeoJSON")
	f.StringVar(&generateFlags.shapefile, "shp", "", "write the contours as a Shapefile")
	_ = generateCmd.MarkFlagRequired("lat")
	_ = generateCmd.MarkFlagRequired("lon")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	fl := generateFlags
	if fl.objPath == "" && fl.jsonPath == "" && fl.geojson == "" && fl.shapefile == "" {
		return fmt.Errorf("no output given, use --obj, --json, --geojson or --shp")
	}

	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Terrain.Execute(cmd.Context(), req)
	if err != nil {
		var hint string
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindRadiusTooLarge {
			hint = fmt.Sprintf(" (try --radius %d)", de.CorrectedRadiusM)
		}
		return fmt.Errorf("%w%s", err, hint)
	}

	if fl.objPath != "" {
		if err := writeFile(fl.objPath, func(f *os.File) error {
			return export.WriteOBJ(f, res.Model.Terrain, res.OBJHeader())
		}); err != nil {
			return err
		}
	}
	if fl.jsonPath != "" {
		if err := writeFile(fl.jsonPath, func(f *os.File) error {
			return printJSON(f, res.Response(a.Terrain.SourceName()))
		}); err != nil {
			return err
		}
	}
	if fl.geojson != "" || fl.shapefile != "" {
		contours, err := res.GeoContours()
		if err != nil {
			return err
		}
		if fl.geojson != "" {
			data, err := export.FeatureCollection(contours).MarshalJSON()
			if err != nil {
				return fmt.Errorf("failed to encode contours: %w", err)
			}
			//nolint:gosec // G306: export output.
			if err := os.WriteFile(fl.geojson, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", fl.geojson, err)
			}
		}
		if fl.shapefile != "" {
			if err := export.WriteShapefile(fl.shapefile, contours); err != nil {
				return err
			}
		}
	}

	slog.Info("Export complete",
		"run", res.RunID,
		"title", strings.ReplaceAll(res.Title, "\n", " | "),
		"elevation_m", res.Model.ElevationM)
	return nil
}

func buildRequest(cmd *cobra.Command) (usecase.TerrainRequest, error) {
	fl := generateFlags
	req := usecase.TerrainRequest{
		Lat:             &fl.lat,
		Lon:             &fl.lon,
		Name:            fl.name,
		RadiusM:         &fl.radius,
		StandThicknessM: fl.stand,
		NumContours:     &fl.contours,
		Colors:          fl.colors,
	}

	var err error
	if req.Style, err = domain.ParseStyle(fl.style); err != nil {
		return req, err
	}
	if cmd.Flags().Changed("north") {
		if req.North, err = domain.NorthFromDegrees(fl.north); err != nil {
			return req, err
		}
	}
	if len(fl.origin) > 0 {
		if len(fl.origin) != 3 {
			return req, fmt.Errorf("--origin takes x,y,z, got %d values", len(fl.origin))
		}
		req.Origin.X, req.Origin.Y, req.Origin.Z = fl.origin[0], fl.origin[1], fl.origin[2]
	}
	return req, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
