// Package colorramp maps elevations to colors.
package colorramp

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// defaultStops runs from low blue through yellow to high red.
var defaultStops = []color.RGBA{
	{75, 107, 169, 255},
	{115, 147, 202, 255},
	{170, 200, 247, 255},
	{193, 213, 208, 255},
	{245, 239, 103, 255},
	{252, 230, 74, 255},
	{239, 156, 21, 255},
	{234, 123, 0, 255},
	{234, 74, 0, 255},
	{234, 38, 0, 255},
}

// Ramp is a piecewise linear gradient over evenly spaced stops, stretched
// across the value range it is applied to.
type Ramp struct {
	stops []color.RGBA
}

// Default returns the stock elevation ramp.
func Default() *Ramp {
	return &Ramp{stops: defaultStops}
}

// New builds a ramp from at least one stop.
func New(stops []color.RGBA) (*Ramp, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("color ramp needs at least one stop")
	}
	return &Ramp{stops: append([]color.RGBA(nil), stops...)}, nil
}

// Parse builds a ramp from hex colors ("#4b6ba9" or "4b6ba9").
func Parse(hex []string) (*Ramp, error) {
	stops := make([]color.RGBA, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		stops = append(stops, c)
	}
	return New(stops)
}

// ParseHex parses an opaque #RRGGBB color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Stops returns a copy of the ramp's stops.
func (r *Ramp) Stops() []color.RGBA {
	return append([]color.RGBA(nil), r.stops...)
}

// Colors maps each value onto the ramp over the range of values. A flat
// input takes the first stop.
func (r *Ramp) Colors(values []float64) []color.RGBA {
	if len(values) == 0 {
		return nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	out := make([]color.RGBA, len(values))
	for i, v := range values {
		t := 0.0
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		out[i] = r.At(t)
	}
	return out
}

// At returns the color at t in [0, 1]; t is clamped.
func (r *Ramp) At(t float64) color.RGBA {
	n := len(r.stops)
	if n == 1 || math.IsNaN(t) || t <= 0 {
		return r.stops[0]
	}
	if t >= 1 {
		return r.stops[n-1]
	}
	pos := t * float64(n-1)
	i := int(pos)
	f := pos - float64(i)
	a, b := r.stops[i], r.stops[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: lerp(a.A, b.A, f),
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
