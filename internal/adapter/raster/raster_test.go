package raster

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/adapter/projection"
	"go.ngs.io/terrain-api/internal/domain"
)

const sampleASCII = `ncols 4
nrows 3
xllcorner 139.0
yllcorner 35.0
cellsize 0.5
NODATA_value -9999
1 2 3 4
5 -9999 7 8
9 10 11 12
`

func TestParseASCII(t *testing.T) {
	g, err := ParseASCII(strings.NewReader(sampleASCII))
	require.NoError(t, err)

	h := g.Header()
	assert.Equal(t, 4, h.NumCols)
	assert.Equal(t, 3, h.NumRows)
	assert.InDelta(t, 139.25, h.XllCenter, 1e-12, "corner registration shifts by half a cell")
	assert.InDelta(t, 35.25, h.YllCenter, 1e-12)
	assert.True(t, h.HasNoData)
	assert.Equal(t, 1.0, g.Elevation(0, 0), "row 0 is the first data line")
	assert.Equal(t, 12.0, g.Elevation(2, 3))

	x, y := h.CellCenter(0, 0)
	assert.InDelta(t, 139.25, x, 1e-12)
	assert.InDelta(t, 36.25, y, 1e-12)
}

func TestParseASCIIErrors(t *testing.T) {
	tests := map[string]string{
		"short data":   "ncols 2\nnrows 2\nxllcenter 0\nyllcenter 0\ncellsize 1\n1 2 3\n",
		"extra data":   "ncols 2\nnrows 2\nxllcenter 0\nyllcenter 0\ncellsize 1\n1 2 3 4 5\n",
		"bad value":    "ncols 2\nnrows 2\nxllcenter 0\nyllcenter 0\ncellsize 1\n1 x 3 4\n",
		"no origin":    "ncols 2\nnrows 2\ncellsize 1\n1 2 3 4\n",
		"no cell size": "ncols 2\nnrows 2\nxllcenter 0\nyllcenter 0\n1 2 3 4\n",
		"html":         "<html><body>Bad request</body></html>",
	}
	for name, body := range tests {
		_, err := ParseASCII(strings.NewReader(body))
		assert.Error(t, err, name)
	}
}

func TestParseASCIIRejectsOversizedHeader(t *testing.T) {
	for _, dims := range []string{
		"ncols 4000000000\nnrows 4000000000\n",
		"ncols 1e30\nnrows 2\n",
		"ncols NaN\nnrows 2\n",
		"ncols 20000\nnrows 20000\n",
	} {
		body := dims + "xllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3 4\n"
		_, err := ParseASCII(strings.NewReader(body))
		assert.Error(t, err, dims)
	}
}

func TestWriteASCIIRoundTrip(t *testing.T) {
	g, err := ParseASCII(strings.NewReader(sampleASCII))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.WriteASCII(&buf))
	assert.Contains(t, buf.String(), "xllcenter 139.25")

	back, err := ParseASCII(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.H, back.H)
	assert.Equal(t, g.Data, back.Data)
}

func TestFillNoData(t *testing.T) {
	g, err := ParseASCII(strings.NewReader(sampleASCII))
	require.NoError(t, err)

	n, err := g.FillNoData()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// Mean of the eight neighbours of (1, 1).
	assert.InDelta(t, (1+2+3+5+7+9+10+11)/8.0, g.Elevation(1, 1), 1e-12)

	empty, err := NewGrid(domain.RasterHeader{NumRows: 2, NumCols: 2, CellSizeX: 1, CellSizeY: 1})
	require.NoError(t, err)
	for i := range empty.Data {
		empty.Data[i] = math.NaN()
	}
	_, err = empty.FillNoData()
	assert.Error(t, err)
}

func TestFillNoDataGrowsInwards(t *testing.T) {
	g, err := NewGrid(domain.RasterHeader{NumRows: 5, NumCols: 5, CellSizeX: 1, CellSizeY: 1})
	require.NoError(t, err)
	for i := range g.Data {
		g.Data[i] = math.NaN()
	}
	g.Set(0, 0, 42)

	n, err := g.FillNoData()
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	for _, v := range g.Data {
		assert.Equal(t, 42.0, v)
	}
}

func TestGrid2DConversion(t *testing.T) {
	g, err := ParseASCII(strings.NewReader(sampleASCII))
	require.NoError(t, err)

	g2d := g.Grid2D()
	require.NoError(t, g2d.Validate())
	assert.InDelta(t, 35.25, g2d.Y[0], 1e-12, "Y increases southwards-first")
	assert.Equal(t, 9.0, g2d.Values[0][0], "first interpolation row is the southern raster row")

	back, err := FromGrid2D(g2d)
	require.NoError(t, err)
	assert.Equal(t, g.Data, back.Data)
	assert.InDelta(t, g.H.XllCenter, back.H.XllCenter, 1e-12)
	assert.InDelta(t, g.H.CellSizeY, back.H.CellSizeY, 1e-12)
}

// planeGrid returns a geographic grid sampling f on a regular lattice.
func planeGrid(t *testing.T, lat0, lon0, step float64, n int, f func(lat, lon float64) float64) *Grid {
	t.Helper()
	g, err := NewGrid(domain.RasterHeader{
		NumRows:   n,
		NumCols:   n,
		CellSizeX: step,
		CellSizeY: step,
		XllCenter: lon0,
		YllCenter: lat0,
	})
	require.NoError(t, err)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			lon, lat := g.H.CellCenter(r, c)
			g.Set(r, c, f(lat, lon))
		}
	}
	return g
}

func TestReproject(t *testing.T) {
	plane := func(lat, lon float64) float64 { return 1000*(lat-35) + 500*(lon-139) + 250 }
	src := planeGrid(t, 34.98, 138.98, 1.0/3600, 145, plane)
	center := domain.GeodeticPoint{LatDeg: 35.0, LonDeg: 139.0}

	p, err := projection.ForPoint(center)
	require.NoError(t, err)
	dst, cx, cy, err := Reproject(src, p, center, 1000, ProjectOptions{CellSizeM: 30})
	require.NoError(t, err)

	h := dst.Header()
	assert.Equal(t, 30.0, h.CellSizeX)
	assert.InDelta(t, 0.0, math.Mod(h.XllCenter, 30), 1e-6, "cells are aligned on the cell size")
	minX, maxX, minY, maxY := dst.Bounds()
	assert.LessOrEqual(t, minX, cx-1000)
	assert.GreaterOrEqual(t, maxX, cx+1000)
	assert.LessOrEqual(t, minY, cy-1000)
	assert.GreaterOrEqual(t, maxY, cy+1000)

	for _, rc := range [][2]int{{0, 0}, {h.NumRows / 2, h.NumCols / 2}, {h.NumRows - 1, 3}, {10, h.NumCols - 1}} {
		x, y := h.CellCenter(rc[0], rc[1])
		geo, err := p.Inverse(x, y)
		require.NoError(t, err)
		assert.InDelta(t, plane(geo.LatDeg, geo.LonDeg), dst.Elevation(rc[0], rc[1]), 1e-6, "cell %v", rc)
	}
}

func TestReprojectMaxCells(t *testing.T) {
	src := planeGrid(t, 34.9, 138.9, 0.001, 201, func(lat, lon float64) float64 { return 0 })
	center := domain.GeodeticPoint{LatDeg: 35.0, LonDeg: 139.0}
	p, err := projection.ForPoint(center)
	require.NoError(t, err)

	dst, _, _, err := Reproject(src, p, center, 5000, ProjectOptions{MaxCells: 51})
	require.NoError(t, err)
	assert.LessOrEqual(t, dst.H.NumRows, 51)
	assert.LessOrEqual(t, dst.H.NumCols, 51)
	assert.GreaterOrEqual(t, dst.H.CellSizeX, 10000.0/48)

	_, _, _, err = Reproject(src, p, center, 0, ProjectOptions{})
	assert.Error(t, err)
}

func TestAlignLon(t *testing.T) {
	assert.Equal(t, 359.5, alignLon(-0.5, 350, 360))
	assert.Equal(t, -179.5, alignLon(180.5, -180, -170))
	assert.Equal(t, 10.0, alignLon(10, 0, 20))
}
