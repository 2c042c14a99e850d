package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Representation selects the output geometry type.
type Representation int

const (
	RepresentationMesh Representation = iota
	RepresentationSurface
)

func (r Representation) String() string {
	if r == RepresentationSurface {
		return "surface"
	}
	return "mesh"
}

// Footprint selects the horizontal clipping shape.
type Footprint int

const (
	FootprintRectangular Footprint = iota
	FootprintCircular
)

func (f Footprint) String() string {
	if f == FootprintCircular {
		return "circular"
	}
	return "rectangular"
}

// Style is the two-axis output style.
type Style struct {
	Representation Representation
	Footprint      Footprint
}

// DefaultStyle is mesh-circular.
var DefaultStyle = Style{Representation: RepresentationMesh, Footprint: FootprintCircular}

// Label returns the style label, e.g. "mesh-circular".
func (s Style) Label() string {
	return s.Representation.String() + "-" + s.Footprint.String()
}

func (s Style) String() string { return s.Label() }

// Code returns the legacy integer style code (0-3).
func (s Style) Code() int {
	return int(s.Representation)*2 + int(s.Footprint)
}

// StyleFromCode maps a legacy integer code to a Style.
// Codes outside 0-3 fall back to mesh-rectangular.
func StyleFromCode(code int) Style {
	if code < 0 || code > 3 {
		return Style{Representation: RepresentationMesh, Footprint: FootprintRectangular}
	}
	return Style{Representation: Representation(code / 2), Footprint: Footprint(code % 2)}
}

// ParseStyle accepts a style label or a legacy integer code.
// An empty string yields DefaultStyle.
func ParseStyle(s string) (Style, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DefaultStyle, nil
	}
	if code, err := strconv.Atoi(s); err == nil {
		return StyleFromCode(code), nil
	}
	for code := 0; code <= 3; code++ {
		st := StyleFromCode(code)
		if st.Label() == s {
			return st, nil
		}
	}
	return Style{}, NewError(KindInvalidRequest, "unknown style %q", s)
}

// North is the caller's north direction expressed as a clockwise angle from +Y.
type North struct {
	ClockwiseRad float64
}

// NorthFromDegrees builds a North from a clockwise angle in [0, 360].
func NorthFromDegrees(deg float64) (North, error) {
	if math.IsNaN(deg) || deg < 0 || deg > 360 {
		return North{}, NewError(KindInvalidAngle, "north angle must be between 0 and 360, got %v", deg)
	}
	return North{ClockwiseRad: Deg2Rad(deg)}, nil
}

// NorthFromVector builds a North from a planar direction vector.
func NorthFromVector(x, y float64) (North, error) {
	if x == 0 && y == 0 {
		return North{}, NewError(KindInvalidAngle, "north vector must not be zero")
	}
	a := math.Atan2(x, y)
	if a < 0 {
		a += 2 * math.Pi
	}
	return North{ClockwiseRad: a}, nil
}

// Degrees returns the whole-degree north angle in [0, 360).
func (n North) Degrees() int {
	// Absorb round-off from the degree/radian round trip before truncating.
	d := int(math.Floor(Rad2Deg(n.ClockwiseRad) + 1e-9))
	return d % 360
}

// Vector returns the unit north vector in the XY plane.
func (n North) Vector() (x, y float64) {
	return math.Sin(n.ClockwiseRad), math.Cos(n.ClockwiseRad)
}

func (n North) String() string {
	return fmt.Sprintf("%d", n.Degrees())
}
