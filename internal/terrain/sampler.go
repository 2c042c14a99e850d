// Package terrain turns an elevation raster around a geodetic center into a
// clipped, optionally standed and contoured terrain model.
package terrain

import (
	"fmt"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

// ScaleFactor maps real meters to construction units.
const ScaleFactor = 0.01

// Grid is the row-major point grid sampled from a raster.
type Grid struct {
	Rows, Cols int
	Points     []geometry.Vec3
}

// Sample places one construction-frame point per raster cell. originX and
// originY are the projected coordinates of the terrain center; they become
// the local XY origin. Each cell is read exactly once.
func Sample(r domain.ElevationGrid, originX, originY float64) (Grid, error) {
	h := r.Header()
	if err := h.Validate(); err != nil {
		return Grid{}, fmt.Errorf("invalid raster header: %w", err)
	}

	g := Grid{
		Rows:   h.NumRows,
		Cols:   h.NumCols,
		Points: make([]geometry.Vec3, 0, h.NumRows*h.NumCols),
	}
	startX := (h.XllCenter - originX) * ScaleFactor
	startY := (h.YllCenter + float64(h.NumRows-1)*h.CellSizeY - originY) * ScaleFactor
	for row := 0; row < h.NumRows; row++ {
		for col := 0; col < h.NumCols; col++ {
			g.Points = append(g.Points, geometry.Vec3{
				X: startX + float64(col)*h.CellSizeX*ScaleFactor,
				Y: startY - float64(row)*h.CellSizeY*ScaleFactor,
				Z: r.Elevation(row, col) * ScaleFactor,
			})
		}
	}
	return g, nil
}
