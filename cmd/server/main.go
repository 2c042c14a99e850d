// Package main provides the terrain API HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"go.ngs.io/terrain-api/internal/app"
	"go.ngs.io/terrain-api/internal/config"
	httpHandler "go.ngs.io/terrain-api/internal/http"
	"go.ngs.io/terrain-api/internal/logging"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", config.PathFromEnv(), "Path to the YAML configuration file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("terrain-api version %s\n", version)
		return
	}

	// Load configuration from file, .env and environment.
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	log.Printf("Starting Terrain API server...")
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Raster source: %s", cfg.Raster.Source)
	if cfg.Raster.Source == config.SourceNetCDF {
		log.Printf("  DEM path: %s", cfg.Raster.NetCDFPath)
		if cfg.Raster.EllipsoidalHeights {
			log.Printf("  Geoid path: %s (heights corrected to orthometric)", cfg.Raster.GeoidPath)
		}
	} else if cfg.Raster.OpenTopography.APIKey == "" {
		log.Printf("  Warning: OPENTOPOGRAPHY_API_KEY is not set, downloads will be rejected")
	}
	if cfg.Cache.Path != "" {
		log.Printf("Cache: %s (max age %s)", cfg.Cache.Path, cfg.Cache.MaxAge.Std())
	} else {
		log.Printf("Cache disabled (no path configured)")
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Setup router.
	router := httpHandler.SetupRouter(a.Terrain, a.Geodesy, cfg.Server.CORSAllowedOrigins)
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		log.Printf("CORS origins: %s", strings.Join(cfg.Server.CORSAllowedOrigins, ", "))
	}

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/terrain")
	log.Printf("  - GET /v1/terrain.obj")
	log.Printf("  - GET /v1/terrain/contours.geojson")
	log.Printf("  - GET /v1/region")
	log.Printf("  - GET /v1/geodesic/inverse")
	log.Printf("  - GET /v1/geodesic/direct")

	if err := router.Run(addr); err != nil {
		_ = a.Close()
		log.Fatalf("Failed to start server: %v", err)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Terrain API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  terrain-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -config PATH   YAML configuration file (default: $TERRAIN_CONFIG or ./config.yaml)")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                      Server port (default: 8080)")
	fmt.Println("  CORS_ALLOWED_ORIGINS      Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL                 DEBUG, INFO, WARN or ERROR (default: INFO)")
	fmt.Println("  OPENTOPOGRAPHY_API_KEY    OpenTopography API key")
	fmt.Println("  OPENTOPOGRAPHY_URL        OpenTopography endpoint (default: globaldem)")
	fmt.Println("  DEM_NETCDF_PATH           Local DEM NetCDF file; selects the netcdf source")
	fmt.Println("  GEOID_EGM2008_PATH        Path to EGM2008 geoid NetCDF file (for ellipsoidal DEMs)")
	fmt.Println("  CACHE_DB_PATH             SQLite cache path (default: ./data/cache.db)")
	fmt.Println("  RASTER_MAX_CELLS          Row and column cap of the projected window (default: 1201)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  OPENTOPOGRAPHY_API_KEY=... terrain-api")
	fmt.Println()
	fmt.Println("  # Serve from a local DEM on a custom port")
	fmt.Println("  PORT=3000 DEM_NETCDF_PATH=/mnt/dem/srtm.nc terrain-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                          Health check")
	fmt.Println("  GET /metrics                         Prometheus metrics")
	fmt.Println("  GET /v1/terrain                      Generate a terrain model (JSON)")
	fmt.Println("  GET /v1/terrain.obj                  Generate a terrain mesh (Wavefront OBJ)")
	fmt.Println("  GET /v1/terrain/contours.geojson     Contours of a terrain model (GeoJSON)")
	fmt.Println("  GET /v1/region                       Bounding region and radius clamp")
	fmt.Println("  GET /v1/geodesic/inverse             Distance and bearings between two points")
	fmt.Println("  GET /v1/geodesic/direct              Destination from a point, bearing and distance")
	fmt.Println()
}
