package raster

import (
	"context"
	"log/slog"
	"time"

	"go.ngs.io/terrain-api/internal/adapter/projection"
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

// Request describes the geographic window a Source must cover.
type Request struct {
	Center  domain.GeodeticPoint
	RadiusM float64
	Region  domain.BoundingRegion
}

// Source provides geographic (lon/lat) elevation grids covering a region.
// Elevations are orthometric meters.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) (*Grid, error)
}

// Window is a projected raster around a geodetic center, ready for the
// terrain pipeline.
type Window struct {
	Grid      *Grid
	Projector *projection.Projector
	Center    domain.GeodeticPoint
	// OriginX and OriginY are the projected coordinates of Center.
	OriginX, OriginY float64
}

// LoadWindow fetches the region from src, fills missing samples and
// reprojects the result to the UTM zone of the region center.
func LoadWindow(ctx context.Context, src Source, region domain.BoundingRegion, radiusM float64, opts ProjectOptions) (*Window, error) {
	start := time.Now()
	geo, err := src.Fetch(ctx, Request{Center: region.Center, RadiusM: radiusM, Region: region})
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("fetch", start)

	filled, err := geo.FillNoData()
	if err != nil {
		return nil, domain.WrapError(domain.KindDownloadFailed, err, "raster for %s is empty", region.Center)
	}
	if filled > 0 {
		slog.Info("filled missing raster samples", "source", src.Name(), "cells", filled)
	}

	start = time.Now()
	p, err := projection.ForPoint(region.Center)
	if err != nil {
		return nil, err
	}
	grid, x, y, err := Reproject(geo, p, region.Center, radiusM, opts)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("reproject", start)

	slog.Debug("raster window loaded",
		"source", src.Name(),
		"zone", p.Zone().String(),
		"rows", grid.H.NumRows,
		"cols", grid.H.NumCols,
		"cell_m", grid.H.CellSizeX)
	return &Window{Grid: grid, Projector: p, Center: region.Center, OriginX: x, OriginY: y}, nil
}
