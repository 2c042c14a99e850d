// Package interp resamples regular grids.
package interp

import (
	"fmt"
	"math"
	"sort"
)

// GridCell represents a cell in a regular grid with four corner values.
type GridCell struct {
	// Corner coordinates (forming a rectangle).
	X0, X1 float64 // X boundaries (e.g., longitude).
	Y0, Y1 float64 // Y boundaries (e.g., latitude).

	// Values at the four corners:
	// V00: value at (X0, Y0).
	// V10: value at (X1, Y0).
	// V01: value at (X0, Y1).
	// V11: value at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate performs bilinear interpolation within a grid cell
// Formula:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where:
//
//	t = (x - x0) / (x1 - x0)
//	u = (y - y0) / (y1 - y0)
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := clamp01((x - cell.X0) / (cell.X1 - cell.X0))
	u := clamp01((y - cell.Y0) / (cell.Y1 - cell.Y0))
	return blend(cell, t, u), nil
}

func blend(cell GridCell, t, u float64) float64 {
	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Grid2D is a regular grid of samples. Both axes are strictly increasing.
type Grid2D struct {
	X      []float64   // X coordinates (e.g., longitudes or eastings).
	Y      []float64   // Y coordinates (e.g., latitudes or northings).
	Values [][]float64 // Values[i][j] corresponds to (X[j], Y[i]).
}

// Validate checks if the grid is valid.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates")
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	if !strictlyIncreasing(g.X) {
		return fmt.Errorf("X coordinates must be strictly increasing")
	}
	if !strictlyIncreasing(g.Y) {
		return fmt.Errorf("Y coordinates must be strictly increasing")
	}
	return nil
}

func strictlyIncreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}

// Bounds returns the extent covered by the grid axes.
func (g *Grid2D) Bounds() (minX, maxX, minY, maxY float64) {
	return g.X[0], g.X[len(g.X)-1], g.Y[0], g.Y[len(g.Y)-1]
}

// Contains reports whether (x, y) lies inside the grid extent.
func (g *Grid2D) Contains(x, y float64) bool {
	if len(g.X) < 2 || len(g.Y) < 2 {
		return false
	}
	minX, maxX, minY, maxY := g.Bounds()
	return x >= minX && x <= maxX && y >= minY && y <= maxY
}

// InterpolateAt performs bilinear interpolation at a given point.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	xi, ok := locate(g.X, x)
	if !ok {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid range [%.6f, %.6f]", x, g.X[0], g.X[len(g.X)-1])
	}
	yi, ok := locate(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid range [%.6f, %.6f]", y, g.Y[0], g.Y[len(g.Y)-1])
	}
	return BilinearInterpolate(g.cell(xi, yi), x, y)
}

// InterpolateClamped interpolates at (x, y) after clamping it into the grid
// extent. It is meant for resampling where target samples may overshoot the
// source footprint by a fraction of a cell. The grid must be valid.
func (g *Grid2D) InterpolateClamped(x, y float64) float64 {
	minX, maxX, minY, maxY := g.Bounds()
	x = math.Max(minX, math.Min(maxX, x))
	y = math.Max(minY, math.Min(maxY, y))
	xi, _ := locate(g.X, x)
	yi, _ := locate(g.Y, y)
	c := g.cell(xi, yi)
	return blend(c, clamp01((x-c.X0)/(c.X1-c.X0)), clamp01((y-c.Y0)/(c.Y1-c.Y0)))
}

func (g *Grid2D) cell(xi, yi int) GridCell {
	return GridCell{
		X0:  g.X[xi],
		X1:  g.X[xi+1],
		Y0:  g.Y[yi],
		Y1:  g.Y[yi+1],
		V00: g.Values[yi][xi],
		V10: g.Values[yi][xi+1],
		V01: g.Values[yi+1][xi],
		V11: g.Values[yi+1][xi+1],
	}
}

// locate returns the index i of the interval [axis[i], axis[i+1]] holding v.
func locate(axis []float64, v float64) (int, bool) {
	n := len(axis)
	if v < axis[0] || v > axis[n-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(axis, v) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	return i, true
}
