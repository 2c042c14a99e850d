// Package config loads the service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when TERRAIN_CONFIG is unset.
const DefaultPath = "./config.yaml"

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Raster  RasterConfig  `yaml:"raster"`
	Cache   CacheConfig   `yaml:"cache"`
	Terrain TerrainConfig `yaml:"terrain"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"` // Empty allows all origins.
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text, json
}

// RasterConfig selects and configures the elevation source.
type RasterConfig struct {
	Source             string               `yaml:"source"` // netcdf, opentopography
	NetCDFPath         string               `yaml:"netcdf_path"`
	EllipsoidalHeights bool                 `yaml:"ellipsoidal_heights"`
	GeoidPath          string               `yaml:"geoid_path"`
	MaxCells           int                  `yaml:"max_cells"`
	OpenTopography     OpenTopographyConfig `yaml:"opentopography"`
}

// OpenTopographyConfig holds the OpenTopography client settings.
type OpenTopographyConfig struct {
	URL               string   `yaml:"url"`
	APIKey            string   `yaml:"api_key"`
	DEMType           string   `yaml:"dem_type"`
	Timeout           Duration `yaml:"timeout"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// CacheConfig holds the asset cache settings.
type CacheConfig struct {
	Path   string   `yaml:"path"` // Empty disables the cache.
	MaxAge Duration `yaml:"max_age"`
}

// TerrainConfig holds the pipeline tunables.
type TerrainConfig struct {
	MinFetchRadiusM         float64 `yaml:"min_fetch_radius_m"`
	RectHeightFactorMesh    float64 `yaml:"rect_height_factor_mesh"`
	RectHeightFactorSurface float64 `yaml:"rect_height_factor_surface"`
	CircleSegments          int     `yaml:"circle_segments"`
	SurfaceDensity          int     `yaml:"surface_density"`
}

// Source names.
const (
	SourceNetCDF         = "netcdf"
	SourceOpenTopography = "opentopography"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
		Raster: RasterConfig{
			Source:   SourceOpenTopography,
			MaxCells: 1201,
			OpenTopography: OpenTopographyConfig{
				URL:               "https://portal.opentopography.org/API/globaldem",
				DEMType:           "SRTMGL1",
				Timeout:           Duration(60 * time.Second),
				RequestsPerMinute: 10,
			},
		},
		Cache: CacheConfig{
			Path:   "./data/cache.db",
			MaxAge: Duration(30 * Day),
		},
		Terrain: TerrainConfig{
			MinFetchRadiusM:         200,
			RectHeightFactorMesh:    8,
			RectHeightFactorSurface: 5,
			CircleSegments:          128,
			SurfaceDensity:          4,
		},
	}
}

// Load reads the configuration at path on top of the defaults, loads .env
// from the working directory and applies environment overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PathFromEnv returns the config path from TERRAIN_CONFIG.
func PathFromEnv() string {
	return getEnv("TERRAIN_CONFIG", DefaultPath)
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.CORSAllowedOrigins = splitList(origins)
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if p := os.Getenv("DEM_NETCDF_PATH"); p != "" {
		c.Raster.NetCDFPath = p
		c.Raster.Source = SourceNetCDF
	}
	c.Raster.GeoidPath = getEnv("GEOID_EGM2008_PATH", c.Raster.GeoidPath)
	c.Raster.OpenTopography.APIKey = getEnv("OPENTOPOGRAPHY_API_KEY", c.Raster.OpenTopography.APIKey)
	c.Raster.OpenTopography.URL = getEnv("OPENTOPOGRAPHY_URL", c.Raster.OpenTopography.URL)
	c.Cache.Path = getEnv("CACHE_DB_PATH", c.Cache.Path)

	if v := os.Getenv("RASTER_MAX_CELLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RASTER_MAX_CELLS: %w", err)
		}
		c.Raster.MaxCells = n
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Raster.Source {
	case SourceOpenTopography:
	case SourceNetCDF:
		if c.Raster.NetCDFPath == "" {
			return fmt.Errorf("raster.netcdf_path is required for the netcdf source")
		}
		if c.Raster.EllipsoidalHeights && c.Raster.GeoidPath == "" {
			return fmt.Errorf("raster.geoid_path is required for ellipsoidal heights")
		}
	default:
		return fmt.Errorf("unknown raster source %q", c.Raster.Source)
	}
	if c.Raster.MaxCells != 0 && c.Raster.MaxCells < 4 {
		return fmt.Errorf("raster.max_cells must be at least 4, got %d", c.Raster.MaxCells)
	}
	if c.Terrain.MinFetchRadiusM < 0 {
		return fmt.Errorf("terrain.min_fetch_radius_m must not be negative")
	}
	if c.Terrain.RectHeightFactorMesh <= 0 || c.Terrain.RectHeightFactorSurface <= 0 {
		return fmt.Errorf("terrain height factors must be positive")
	}
	if c.Terrain.CircleSegments < 8 {
		return fmt.Errorf("terrain.circle_segments must be at least 8, got %d", c.Terrain.CircleSegments)
	}
	if c.Terrain.SurfaceDensity < 1 {
		return fmt.Errorf("terrain.surface_density must be at least 1, got %d", c.Terrain.SurfaceDensity)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
