// Command terrain-export generates terrain models offline and writes them as
// OBJ, GeoJSON or Shapefile, and answers geodesic queries from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"go.ngs.io/terrain-api/internal/app"
	"go.ngs.io/terrain-api/internal/config"
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/logging"
	"go.ngs.io/terrain-api/internal/usecase"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "terrain-export",
	Short:         "generate terrain models and solve geodesic problems",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var inverseCmd = &cobra.Command{
	Use:   "inverse LAT1 LON1 LAT2 LON2",
	Short: "distance and bearings between two points",
	Args:  cobra.ExactArgs(4),
	RunE:  runInverse,
}

var directCmd = &cobra.Command{
	Use:   "direct LAT LON BEARING DISTANCE",
	Short: "destination from a point, bearing and distance",
	Args:  cobra.ExactArgs(4),
	RunE:  runDirect,
}

var regionCmd = &cobra.Command{
	Use:   "region LAT LON RADIUS",
	Short: "bounding region and radius clamp of a center and radius",
	Args:  cobra.ExactArgs(3),
	RunE:  runRegion,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.PathFromEnv(), "YAML configuration file")
	rootCmd.AddCommand(generateCmd, inverseCmd, directCmd, regionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and wires the use cases.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func runInverse(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	resp, err := usecase.NewGeodesyUseCase().Inverse(
		domain.GeodeticPoint{LatDeg: v[0], LonDeg: v[1]},
		domain.GeodeticPoint{LatDeg: v[2], LonDeg: v[3]},
	)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runDirect(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	resp, err := usecase.NewGeodesyUseCase().Direct(domain.GeodeticPoint{LatDeg: v[0], LonDeg: v[1]}, v[2], v[3])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runRegion(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	resp, err := usecase.NewGeodesyUseCase().Region(domain.GeodeticPoint{LatDeg: v[0], LonDeg: v[1]}, v[2])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = f
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
