package raster

import (
	"fmt"
	"math"

	"go.ngs.io/terrain-api/internal/adapter/projection"
	"go.ngs.io/terrain-api/internal/domain"
)

// DefaultMaxCells caps the rows and columns of a reprojected window.
const DefaultMaxCells = 1201

// ProjectOptions tune Reproject.
type ProjectOptions struct {
	// CellSizeM is the target cell size. Zero derives it from the source
	// latitude spacing.
	CellSizeM float64
	// MaxCells bounds rows and columns; the cell size grows to fit. Zero
	// means DefaultMaxCells.
	MaxCells int
}

// Reproject resamples a geographic grid onto a UTM grid covering the square
// of half-width radiusM around center, using bilinear interpolation. Target
// cells are aligned on multiples of the cell size, so the center generally
// falls inside a cell. Samples that overshoot the source footprint take the
// nearest edge value. It returns the projected grid and the projected
// coordinates of center.
func Reproject(src *Grid, p *projection.Projector, center domain.GeodeticPoint, radiusM float64, opts ProjectOptions) (*Grid, float64, float64, error) {
	if radiusM <= 0 {
		return nil, 0, 0, fmt.Errorf("reprojection radius must be positive, got %v", radiusM)
	}
	cx, cy, err := p.Forward(center)
	if err != nil {
		return nil, 0, 0, err
	}

	cell := opts.CellSizeM
	if cell <= 0 {
		cell = domain.Deg2Rad(src.H.CellSizeY) * domain.WGS84.A
	}
	maxCells := opts.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	if maxCells < 4 {
		maxCells = 4
	}
	if minCell := 2 * radiusM / float64(maxCells-3); cell < minCell {
		cell = minCell
	}

	x0, cols := alignedAxis(cx, radiusM, cell)
	y0, rows := alignedAxis(cy, radiusM, cell)
	dst, err := NewGrid(domain.RasterHeader{
		NumRows:   rows,
		NumCols:   cols,
		CellSizeX: cell,
		CellSizeY: cell,
		XllCenter: x0,
		YllCenter: y0,
	})
	if err != nil {
		return nil, 0, 0, err
	}

	lookup := src.Grid2D()
	if err := lookup.Validate(); err != nil {
		return nil, 0, 0, fmt.Errorf("invalid source grid: %w", err)
	}
	minLon, maxLon, _, _ := lookup.Bounds()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := dst.H.CellCenter(r, c)
			geo, err := p.Inverse(x, y)
			if err != nil {
				return nil, 0, 0, err
			}
			lon := alignLon(geo.LonDeg, minLon, maxLon)
			dst.Set(r, c, lookup.InterpolateClamped(lon, geo.LatDeg))
		}
	}
	return dst, cx, cy, nil
}

// alignedAxis returns the first cell center and the cell count of an axis
// aligned on multiples of cell that covers [c-r, c+r].
func alignedAxis(c, r, cell float64) (float64, int) {
	start := math.Floor((c-r)/cell) * cell
	n := int(math.Ceil((c+r-start)/cell)) + 1
	if n < 2 {
		n = 2
	}
	return start, n
}

// alignLon shifts lon by a full turn when that brings it into [minLon, maxLon].
func alignLon(lon, minLon, maxLon float64) float64 {
	if lon >= minLon && lon <= maxLon {
		return lon
	}
	for _, shifted := range []float64{lon + 360, lon - 360} {
		if shifted >= minLon && shifted <= maxLon {
			return shifted
		}
	}
	return lon
}
