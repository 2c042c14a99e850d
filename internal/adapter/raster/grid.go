// Package raster provides elevation rasters: in-memory grids, ESRI ASCII
// grids, NetCDF and OpenTopography sources, and reprojection to UTM.
package raster

import (
	"fmt"
	"math"

	"go.ngs.io/terrain-api/internal/adapter/interp"
	"go.ngs.io/terrain-api/internal/domain"
)

// Grid is an in-memory raster stored row-major, row 0 north. It implements
// domain.ElevationGrid. For geographic grids X is longitude and Y latitude
// in degrees; for projected grids both are meters.
type Grid struct {
	H    domain.RasterHeader
	Data []float64
}

// NewGrid allocates a zeroed grid for h.
func NewGrid(h domain.RasterHeader) (*Grid, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &Grid{H: h, Data: make([]float64, h.NumRows*h.NumCols)}, nil
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{H: g.H, Data: append([]float64(nil), g.Data...)}
}

// Header implements domain.ElevationGrid.
func (g *Grid) Header() domain.RasterHeader { return g.H }

// Elevation implements domain.ElevationGrid.
func (g *Grid) Elevation(row, col int) float64 { return g.Data[row*g.H.NumCols+col] }

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v float64) { g.Data[row*g.H.NumCols+col] = v }

// isNoData reports whether v marks a missing sample.
func (g *Grid) isNoData(v float64) bool {
	return math.IsNaN(v) || (g.H.HasNoData && v == g.H.NoData)
}

// FillNoData replaces missing samples with the mean of their valid
// neighbours, growing inwards until every sample is set. It fails when the
// grid holds no valid sample at all.
func (g *Grid) FillNoData() (int, error) {
	rows, cols := g.H.NumRows, g.H.NumCols
	missing := 0
	for _, v := range g.Data {
		if g.isNoData(v) {
			missing++
		}
	}
	if missing == 0 {
		return 0, nil
	}
	if missing == len(g.Data) {
		return 0, fmt.Errorf("raster holds no valid elevation")
	}

	filled := 0
	for missing > 0 {
		next := append([]float64(nil), g.Data...)
		progress := 0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if !g.isNoData(g.Elevation(r, c)) {
					continue
				}
				var sum float64
				n := 0
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						rr, cc := r+dr, c+dc
						if rr < 0 || rr >= rows || cc < 0 || cc >= cols || (dr == 0 && dc == 0) {
							continue
						}
						if v := g.Elevation(rr, cc); !g.isNoData(v) {
							sum += v
							n++
						}
					}
				}
				if n > 0 {
					next[r*cols+c] = sum / float64(n)
					progress++
				}
			}
		}
		g.Data = next
		missing -= progress
		filled += progress
	}
	return filled, nil
}

// Grid2D returns the grid as an interpolation grid with increasing axes.
// The rows share storage with g.
func (g *Grid) Grid2D() *interp.Grid2D {
	rows, cols := g.H.NumRows, g.H.NumCols
	out := &interp.Grid2D{
		X:      make([]float64, cols),
		Y:      make([]float64, rows),
		Values: make([][]float64, rows),
	}
	for c := 0; c < cols; c++ {
		out.X[c], _ = g.H.CellCenter(0, c)
	}
	for i := 0; i < rows; i++ {
		row := rows - 1 - i
		_, out.Y[i] = g.H.CellCenter(row, 0)
		out.Values[i] = g.Data[row*cols : (row+1)*cols]
	}
	return out
}

// FromGrid2D converts a regularly spaced interpolation grid into a Grid.
// Missing samples (NaN) are kept and flagged through HasNoData.
func FromGrid2D(src *interp.Grid2D) (*Grid, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	rows, cols := len(src.Y), len(src.X)
	h := domain.RasterHeader{
		NumRows:   rows,
		NumCols:   cols,
		CellSizeX: (src.X[cols-1] - src.X[0]) / float64(cols-1),
		CellSizeY: (src.Y[rows-1] - src.Y[0]) / float64(rows-1),
		XllCenter: src.X[0],
		YllCenter: src.Y[0],
		NoData:    math.NaN(),
		HasNoData: true,
	}
	g, err := NewGrid(h)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		copy(g.Data[(rows-1-i)*cols:(rows-i)*cols], src.Values[i])
	}
	return g, nil
}

// Bounds returns the extent of the cell centers as (minX, maxX, minY, maxY).
func (g *Grid) Bounds() (minX, maxX, minY, maxY float64) {
	minX, minY = g.H.CellCenter(g.H.NumRows-1, 0)
	maxX, maxY = g.H.CellCenter(0, g.H.NumCols-1)
	return minX, maxX, minY, maxY
}
