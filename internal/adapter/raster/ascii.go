package raster

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.ngs.io/terrain-api/internal/domain"
)

// ParseASCII reads an ESRI ASCII grid (AAIGrid). Both corner and center
// registration are accepted, as are the dx/dy extension for non-square cells.
func ParseASCII(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<26)
	sc.Split(bufio.ScanWords)

	var (
		h                domain.RasterHeader
		xCorner, yCorner bool
		haveX, haveY     bool
		cellSize, dx, dy float64
		pending          string
		havePending      bool
	)

	// Header lines are key/value pairs; the first token that does not parse
	// as a known key starts the data block.
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		switch key {
		case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter", "cellsize", "dx", "dy", "nodata_value":
		default:
			pending, havePending = sc.Text(), true
		}
		if havePending {
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("ascii grid: missing value for %q", key)
		}
		val := sc.Text()
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: invalid %s %q: %w", key, val, err)
		}
		if (key == "ncols" || key == "nrows") && !(f >= 0 && f <= domain.MaxRasterCells) {
			return nil, fmt.Errorf("ascii grid: %s %q out of range", key, val)
		}
		switch key {
		case "ncols":
			h.NumCols = int(f)
		case "nrows":
			h.NumRows = int(f)
		case "xllcorner":
			h.XllCenter, xCorner, haveX = f, true, true
		case "xllcenter":
			h.XllCenter, haveX = f, true
		case "yllcorner":
			h.YllCenter, yCorner, haveY = f, true, true
		case "yllcenter":
			h.YllCenter, haveY = f, true
		case "cellsize":
			cellSize = f
		case "dx":
			dx = f
		case "dy":
			dy = f
		case "nodata_value":
			h.NoData, h.HasNoData = f, true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if !haveX || !haveY {
		return nil, fmt.Errorf("ascii grid: missing lower-left coordinates")
	}

	h.CellSizeX, h.CellSizeY = cellSize, cellSize
	if dx > 0 {
		h.CellSizeX = dx
	}
	if dy > 0 {
		h.CellSizeY = dy
	}
	if xCorner {
		h.XllCenter += h.CellSizeX / 2
	}
	if yCorner {
		h.YllCenter += h.CellSizeY / 2
	}

	g, err := NewGrid(h)
	if err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}

	n := 0
	parse := func(tok string) error {
		if n >= len(g.Data) {
			return fmt.Errorf("ascii grid: more than %d values", len(g.Data))
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("ascii grid: invalid value %q at index %d: %w", tok, n, err)
		}
		g.Data[n] = v
		n++
		return nil
	}
	if havePending {
		if err := parse(pending); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if n != len(g.Data) {
		return nil, fmt.Errorf("ascii grid: expected %d values, got %d", len(g.Data), n)
	}
	return g, nil
}

// WriteASCII writes g as an ESRI ASCII grid with center registration.
func (g *Grid) WriteASCII(w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := g.H
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", h.NumCols, h.NumRows)
	fmt.Fprintf(bw, "xllcenter %s\nyllcenter %s\n", ftoa(h.XllCenter), ftoa(h.YllCenter))
	if h.CellSizeX == h.CellSizeY {
		fmt.Fprintf(bw, "cellsize %s\n", ftoa(h.CellSizeX))
	} else {
		fmt.Fprintf(bw, "dx %s\ndy %s\n", ftoa(h.CellSizeX), ftoa(h.CellSizeY))
	}
	if h.HasNoData {
		fmt.Fprintf(bw, "NODATA_value %s\n", ftoa(h.NoData))
	}
	for r := 0; r < h.NumRows; r++ {
		for c := 0; c < h.NumCols; c++ {
			if c > 0 {
				_ = bw.WriteByte(' ')
			}
			_, _ = bw.WriteString(ftoa(g.Elevation(r, c)))
		}
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
