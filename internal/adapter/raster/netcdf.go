package raster

import (
	"context"
	"fmt"
	"math"

	"go.ngs.io/terrain-api/internal/adapter/ncgrid"
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

// GeoidModel returns the geoid separation N at a location.
type GeoidModel interface {
	GeoidHeight(lat, lon float64) (float64, error)
}

// NetCDFSource reads DEM windows from a local (or FUSE-mounted) NetCDF file.
type NetCDFSource struct {
	path  string
	names ncgrid.Names
	// geoid converts ellipsoidal heights to orthometric ones; nil when the
	// file already stores orthometric heights.
	geoid GeoidModel
}

// NewNetCDFSource creates a source for path. Pass a geoid model when the
// file holds ellipsoidal heights.
func NewNetCDFSource(path string, geoid GeoidModel) *NetCDFSource {
	return &NetCDFSource{path: path, names: ncgrid.DefaultNames, geoid: geoid}
}

// Name implements Source.
func (s *NetCDFSource) Name() string { return "netcdf" }

// Fetch implements Source.
func (s *NetCDFSource) Fetch(ctx context.Context, req Request) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := ncgrid.Window{
		South: req.Region.South(),
		North: req.Region.North(),
		West:  req.Region.West(),
		East:  req.Region.East(),
	}
	g2d, err := ncgrid.Load(s.path, s.names, w)
	if err != nil {
		metrics.UpstreamFetches.WithLabelValues(s.Name(), "error").Inc()
		return nil, domain.WrapError(domain.KindDownloadFailed, err, "failed to read DEM %s", s.path)
	}
	metrics.UpstreamFetches.WithLabelValues(s.Name(), "ok").Inc()

	if s.geoid != nil {
		for i, lat := range g2d.Y {
			for j, lon := range g2d.X {
				if math.IsNaN(g2d.Values[i][j]) {
					continue
				}
				n, err := s.geoid.GeoidHeight(lat, lon)
				if err != nil {
					return nil, fmt.Errorf("geoid correction failed: %w", err)
				}
				g2d.Values[i][j] -= n
			}
		}
	}
	return FromGrid2D(g2d)
}
