// Package app assembles the elevation source and use cases from a configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.ngs.io/terrain-api/internal/adapter/cache"
	"go.ngs.io/terrain-api/internal/adapter/geoid"
	"go.ngs.io/terrain-api/internal/adapter/raster"
	"go.ngs.io/terrain-api/internal/config"
	"go.ngs.io/terrain-api/internal/terrain"
	"go.ngs.io/terrain-api/internal/usecase"
)

// App holds the wired use cases and the resources they own.
type App struct {
	Terrain *usecase.TerrainUseCase
	Geodesy *usecase.GeodesyUseCase

	store *cache.Store
	geoid *geoid.Store
}

// New wires the configured raster source into the use cases.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Geodesy: usecase.NewGeodesyUseCase()}

	if cfg.Cache.Path != "" {
		st, err := cache.Open(cfg.Cache.Path, cfg.Cache.MaxAge.Std())
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		a.store = st
		if n, err := st.Prune(ctx, cfg.Cache.MaxAge.Std()); err != nil {
			slog.Warn("Cache prune failed", "error", err)
		} else if n > 0 {
			slog.Info("Pruned expired cache entries", "count", n)
		}
	}

	if cfg.Raster.GeoidPath != "" {
		a.geoid = geoid.NewStore(cfg.Raster.GeoidPath)
	}

	src, err := a.source(cfg.Raster)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Terrain = usecase.NewTerrainUseCase(src, usecase.TerrainOptions{
		Pipeline: terrain.Options{
			HeightFactorMesh:    cfg.Terrain.RectHeightFactorMesh,
			HeightFactorSurface: cfg.Terrain.RectHeightFactorSurface,
			CircleSegments:      cfg.Terrain.CircleSegments,
			SurfaceDensity:      cfg.Terrain.SurfaceDensity,
		},
		Project:         raster.ProjectOptions{MaxCells: cfg.Raster.MaxCells},
		MinFetchRadiusM: cfg.Terrain.MinFetchRadiusM,
	})
	slog.Info("Terrain source ready", "source", src.Name(), "cache", cfg.Cache.Path != "")
	return a, nil
}

func (a *App) source(cfg config.RasterConfig) (raster.Source, error) {
	switch cfg.Source {
	case config.SourceNetCDF:
		var model raster.GeoidModel
		if cfg.EllipsoidalHeights {
			if a.geoid == nil {
				return nil, fmt.Errorf("ellipsoidal heights require a geoid path")
			}
			model = a.geoid
		}
		return raster.NewNetCDFSource(cfg.NetCDFPath, model), nil
	case config.SourceOpenTopography:
		var blobs raster.BlobCache
		if a.store != nil {
			blobs = a.store
		}
		return raster.NewOpenTopography(raster.OpenTopographyConfig{
			BaseURL:           cfg.OpenTopography.URL,
			APIKey:            cfg.OpenTopography.APIKey,
			DEMType:           cfg.OpenTopography.DEMType,
			Timeout:           cfg.OpenTopography.Timeout.Std(),
			RequestsPerMinute: cfg.OpenTopography.RequestsPerMinute,
		}, blobs), nil
	default:
		return nil, fmt.Errorf("unknown raster source %q", cfg.Source)
	}
}

// Close releases the cache and geoid resources.
func (a *App) Close() error {
	if a.geoid != nil {
		_ = a.geoid.Close()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
