// Package geoid provides access to EGM2008 geoid data for datum corrections.
package geoid

import (
	"fmt"
	"sync"

	"go.ngs.io/terrain-api/internal/adapter/interp"
	"go.ngs.io/terrain-api/internal/adapter/ncgrid"
)

// loadMarginDeg is the half-width of the geoid window read around a query.
const loadMarginDeg = 2.0

// Store provides geoid height lookups for coordinate transformations.
type Store struct {
	geoidPath string // Path to EGM2008 NetCDF file.
	grid      *interp.Grid2D
	mu        sync.Mutex
}

// NewStore creates a new geoid store.
func NewStore(geoidPath string) *Store {
	return &Store{geoidPath: geoidPath}
}

// GeoidHeight returns the EGM2008 geoid height (N) at a given location.
// This is the separation between the WGS84 ellipsoid and the geoid (mean sea level).
// Positive values mean the geoid is above the ellipsoid.
//
// To convert from ellipsoidal height (h) to orthometric height (H):
//
//	H = h - N
//
// The grid window is reloaded whenever a query falls outside the cached one.
func (s *Store) GeoidHeight(lat, lon float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grid == nil || !s.grid.Contains(ncgrid.NormalizeLon(s.grid.X, lon), lat) {
		grid, err := ncgrid.Load(s.geoidPath, ncgrid.GeoidNames, ncgrid.Around(lat, lon, loadMarginDeg))
		if err != nil {
			return 0, fmt.Errorf("failed to load geoid grid: %w", err)
		}
		s.grid = grid
	}

	height, err := s.grid.InterpolateAt(ncgrid.NormalizeLon(s.grid.X, lon), lat)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate geoid height: %w", err)
	}
	return height, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
