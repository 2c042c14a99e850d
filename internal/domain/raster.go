package domain

import "fmt"

// MaxRasterCells bounds the cell count of any grid, about 1 GiB of float64
// samples. A 100 km window of 1 arc-second data at 60 degrees latitude stays
// well below it.
const MaxRasterCells = 1 << 27

// RasterHeader describes a regular elevation grid in a projected coordinate
// system. Row 0 is the northernmost row; XllCenter/YllCenter locate the
// center of the lower-left cell.
type RasterHeader struct {
	NumRows   int     `json:"nrows"`
	NumCols   int     `json:"ncols"`
	CellSizeX float64 `json:"cellsize_x"`
	CellSizeY float64 `json:"cellsize_y"`
	XllCenter float64 `json:"xllcenter"`
	YllCenter float64 `json:"yllcenter"`
	NoData    float64 `json:"nodata_value"`
	HasNoData bool    `json:"-"`
}

// Validate checks that the header describes a usable grid.
func (h RasterHeader) Validate() error {
	if h.NumRows < 2 || h.NumCols < 2 {
		return fmt.Errorf("raster must be at least 2x2 cells, got %dx%d", h.NumRows, h.NumCols)
	}
	if h.NumRows > MaxRasterCells/h.NumCols {
		return fmt.Errorf("raster of %dx%d cells exceeds the %d cell limit", h.NumRows, h.NumCols, MaxRasterCells)
	}
	if h.CellSizeX <= 0 || h.CellSizeY <= 0 {
		return fmt.Errorf("raster cell size must be positive, got %vx%v", h.CellSizeX, h.CellSizeY)
	}
	return nil
}

// CellCenter returns the projected coordinates of the center of (row, col).
func (h RasterHeader) CellCenter(row, col int) (x, y float64) {
	x = h.XllCenter + float64(col)*h.CellSizeX
	y = h.YllCenter + float64(h.NumRows-1-row)*h.CellSizeY
	return x, y
}

// ElevationGrid is a read-only raster of elevations in meters.
type ElevationGrid interface {
	Header() RasterHeader
	Elevation(row, col int) float64
}
