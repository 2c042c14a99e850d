// Package ncgrid reads rectangular lat/lon windows out of 2-D NetCDF grids
// such as GEBCO, SRTM mosaics or EGM2008.
package ncgrid

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/terrain-api/internal/adapter/interp"
)

// Names lists the variable names tried, in order, for each axis and for the data.
type Names struct {
	Lat  []string
	Lon  []string
	Data []string
}

// DefaultNames matches the common CF-style layouts.
var DefaultNames = Names{
	Lat:  []string{"lat", "latitude", "y"},
	Lon:  []string{"lon", "longitude", "x"},
	Data: []string{"elevation", "z", "Band1", "data"},
}

// GeoidNames matches EGM2008 geoid grids.
var GeoidNames = Names{
	Lat:  []string{"lat", "latitude", "y"},
	Lon:  []string{"lon", "longitude", "x"},
	Data: []string{"geoid", "geoid_height", "N", "height", "z"},
}

// Window is a geographic box in degrees.
type Window struct {
	South, North float64
	West, East   float64
}

// Around returns the window of ±margin degrees around a point.
func Around(lat, lon, margin float64) Window {
	return Window{South: lat - margin, North: lat + margin, West: lon - margin, East: lon + margin}
}

// Load reads the smallest subset of the data variable that covers w, plus
// one sample on every side when available. The returned grid has X =
// longitude and Y = latitude, both increasing, in the axis convention of the
// file (0..360 longitudes are kept as such; callers normalise queries with
// NormalizeLon).
//
//nolint:gocyclo // NetCDF loading has many layout cases.
func Load(path string, names Names, w Window) (*interp.Grid2D, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	latData, err := readAxis(nc, names.Lat)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lonData, err := readAxis(nc, names.Lon)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}

	west := NormalizeLon(lonData, w.West)
	east := NormalizeLon(lonData, w.East)
	if east < west {
		return nil, fmt.Errorf("window [%v, %v] wraps the longitude axis seam", w.West, w.East)
	}

	latStart, latEnd, err := span(latData, w.South, w.North)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lonStart, lonEnd, err := span(lonData, west, east)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}

	dataVar, err := findVar(nc, names.Data)
	if err != nil {
		return nil, err
	}
	dims, err := dataVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected 2D data, got %dD", len(dims))
	}
	dim0Len, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1Len, err := dims[1].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim1 length: %w", err)
	}

	nLat, nLon := len(latData), len(lonData)
	nSubLat, nSubLon := latEnd-latStart, lonEnd-lonStart

	var values [][]float64
	switch {
	case dim0Len == uint64(nLat) && dim1Len == uint64(nLon):
		values, err = readSubset(dataVar, latStart, lonStart, nSubLat, nSubLon)
	case dim0Len == uint64(nLon) && dim1Len == uint64(nLat):
		var transposed [][]float64
		transposed, err = readSubset(dataVar, lonStart, latStart, nSubLon, nSubLat)
		if err == nil {
			values = transpose2D(transposed)
		}
	default:
		return nil, fmt.Errorf("dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			dim0Len, dim1Len, nLat, nLon, nLon, nLat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	grid := &interp.Grid2D{
		X:      append([]float64(nil), lonData[lonStart:lonEnd]...),
		Y:      append([]float64(nil), latData[latStart:latEnd]...),
		Values: values,
	}
	orientIncreasing(grid)
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	return grid, nil
}

// NormalizeLon maps lon into the convention of a longitude axis: 0..360
// when the axis is, -180..180 otherwise.
func NormalizeLon(axis []float64, lon float64) float64 {
	if lonAxisRequiresWrap(axis) {
		lon = math.Mod(lon, 360)
		if lon < 0 {
			lon += 360
		}
	}
	return lon
}

func lonAxisRequiresWrap(lons []float64) bool {
	if len(lons) == 0 {
		return false
	}
	minVal, maxVal := lons[0], lons[len(lons)-1]
	if minVal > maxVal {
		minVal, maxVal = maxVal, minVal
	}
	return minVal >= 0 && maxVal > 180
}

func findVar(nc netcdf.Dataset, names []string) (netcdf.Var, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			return v, nil
		}
	}
	return netcdf.Var{}, fmt.Errorf("data variable not found (tried: %v)", names)
}

func readAxis(nc netcdf.Dataset, names []string) ([]float64, error) {
	for _, name := range names {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		data, err := readFloat64Var(v)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("variable not found (tried: %v)", names)
}

// span returns the half-open index range of axis covering [lo, hi], widened
// by one sample on each side and to at least two samples. The axis may be
// ascending or descending.
func span(axis []float64, lo, hi float64) (int, int, error) {
	n := len(axis)
	if n < 2 {
		return 0, 0, fmt.Errorf("axis has %d samples", n)
	}
	first, last := axis[0], axis[n-1]
	if first > last {
		first, last = last, first
	}
	if hi < first || lo > last {
		return 0, 0, fmt.Errorf("window [%v, %v] outside axis range [%v, %v]", lo, hi, first, last)
	}

	a := findNearestIndex(axis, lo)
	b := findNearestIndex(axis, hi)
	if a > b {
		a, b = b, a
	}
	start := clamp(a-1, 0, n-2)
	end := clamp(b+2, start+2, n)
	return start, end, nil
}

// orientIncreasing flips the axes of g so both increase.
func orientIncreasing(g *interp.Grid2D) {
	if len(g.Y) > 1 && g.Y[0] > g.Y[len(g.Y)-1] {
		for i, j := 0, len(g.Y)-1; i < j; i, j = i+1, j-1 {
			g.Y[i], g.Y[j] = g.Y[j], g.Y[i]
			g.Values[i], g.Values[j] = g.Values[j], g.Values[i]
		}
	}
	if len(g.X) > 1 && g.X[0] > g.X[len(g.X)-1] {
		for i, j := 0, len(g.X)-1; i < j; i, j = i+1, j-1 {
			g.X[i], g.X[j] = g.X[j], g.X[i]
			for _, row := range g.Values {
				row[i], row[j] = row[j], row[i]
			}
		}
	}
}

// readFloat64Var reads a 1D float64 array from a NetCDF variable.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	data := make([]float64, length)
	if err := v.ReadFloat64s(data); err != nil {
		return nil, err
	}
	return data, nil
}

// readSubset reads [startRow, startCol] + [nRows, nCols] of a 2D variable as
// float64, applying scale_factor and add_offset and turning _FillValue into NaN.
func readSubset(v netcdf.Var, startRow, startCol, nRows, nCols int) ([][]float64, error) {
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	total := nRows * nCols
	//nolint:gosec // G115: indices are non-negative.
	start := []uint64{uint64(startRow), uint64(startCol)}
	//nolint:gosec // G115: counts are non-negative.
	count := []uint64{uint64(nRows), uint64(nCols)}

	flat := make([]float64, total)
	switch varType {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float64 subset: %w", err)
		}
	case netcdf.FLOAT:
		buf := make([]float32, total)
		if err := v.ReadFloat32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float32 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	case netcdf.SHORT:
		buf := make([]int16, total)
		if err := v.ReadInt16Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int16 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	case netcdf.INT:
		buf := make([]int32, total)
		if err := v.ReadInt32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int32 subset: %w", err)
		}
		for i, val := range buf {
			flat[i] = float64(val)
		}
	case netcdf.BYTE, netcdf.UBYTE, netcdf.CHAR, netcdf.USHORT, netcdf.UINT, netcdf.INT64, netcdf.UINT64, netcdf.STRING:
		return nil, fmt.Errorf("unsupported data type: %v (expected DOUBLE, FLOAT, INT, or SHORT)", varType)
	}

	if fill, ok := attrFloat(v, "_FillValue"); ok {
		for i, val := range flat {
			if val == fill {
				flat[i] = math.NaN()
			}
		}
	}
	scale, hasScale := attrFloat(v, "scale_factor")
	offset, hasOffset := attrFloat(v, "add_offset")
	if (hasScale && scale != 0) || hasOffset {
		if !hasScale || scale == 0 {
			scale = 1
		}
		for i := range flat {
			flat[i] = flat[i]*scale + offset
		}
	}

	values := make([][]float64, nRows)
	for i := 0; i < nRows; i++ {
		values[i] = flat[i*nCols : (i+1)*nCols]
	}
	return values, nil
}

// attrFloat reads a numeric scalar attribute stored as double, float, int or short.
func attrFloat(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if a.ReadFloat64s(buf) == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if a.ReadFloat32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if a.ReadInt32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if a.ReadInt16s(buf) == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// transpose2D transposes a 2D array.
func transpose2D(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	nRows, nCols := len(data), len(data[0])
	transposed := make([][]float64, nCols)
	for i := 0; i < nCols; i++ {
		transposed[i] = make([]float64, nRows)
		for j := 0; j < nRows; j++ {
			transposed[i][j] = data[j][i]
		}
	}
	return transposed
}

// findNearestIndex finds the index of the value closest to target in a
// monotonic array.
func findNearestIndex(arr []float64, target float64) int {
	if len(arr) == 0 {
		return 0
	}
	descending := arr[0] > arr[len(arr)-1]
	left, right := 0, len(arr)-1
	for left < right {
		mid := (left + right) / 2
		if (arr[mid] < target) != descending {
			left = mid + 1
		} else {
			right = mid
		}
	}
	best := left
	if left > 0 && math.Abs(arr[left-1]-target) < math.Abs(arr[left]-target) {
		best = left - 1
	}
	return best
}

// clamp ensures value is within [minVal, maxVal] range.
func clamp(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
