package domain

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// MinRadiusM and MaxRadiusM bound the caller-facing visibility radius.
	MinRadiusM = 20
	MaxRadiusM = 100000
	// DefaultRadiusM is used when the caller does not supply a radius.
	DefaultRadiusM = 100

	// MinFetchRadiusM is the smallest window requested from a raster source.
	MinFetchRadiusM = 200
	// MinEdgeDistanceM is the closest a center may sit to the coverage edge.
	MinEdgeDistanceM = 200

	// CoverageNorthDeg and CoverageSouthDeg are the SRTM latitude limits.
	CoverageNorthDeg = 60.0
	CoverageSouthDeg = -56.0
	// coverageNorthCheckDeg rejects centers that would round onto the northern limit.
	coverageNorthCheckDeg = 59.99999
)

// BoundingRegion is the geodetic rectangle spanned by a center and a radius.
type BoundingRegion struct {
	Center GeodeticPoint `json:"center"`
	Top    GeodeticPoint `json:"top"`
	Bottom GeodeticPoint `json:"bottom"`
	Left   GeodeticPoint `json:"left"`
	Right  GeodeticPoint `json:"right"`
}

// North returns the northern latitude of the region.
func (r BoundingRegion) North() float64 { return r.Top.LatDeg }

// South returns the southern latitude of the region.
func (r BoundingRegion) South() float64 { return r.Bottom.LatDeg }

// West returns the western longitude of the region.
func (r BoundingRegion) West() float64 { return r.Left.LonDeg }

// East returns the eastern longitude of the region.
func (r BoundingRegion) East() float64 { return r.Right.LonDeg }

// CrossesAntimeridian reports whether the region wraps around +/-180.
func (r BoundingRegion) CrossesAntimeridian() bool {
	return r.West() > r.East()
}

// Bound returns the region as an orb.Bound (lon/lat order).
// Regions crossing the antimeridian are returned with East shifted by 360.
func (r BoundingRegion) Bound() orb.Bound {
	east := r.East()
	if r.CrossesAntimeridian() {
		east += 360
	}
	return orb.Bound{
		Min: orb.Point{r.West(), r.South()},
		Max: orb.Point{east, r.North()},
	}
}

// Region computes the bounding region of center and radiusM by solving the
// direct problem towards north, south, west and east.
func Region(center GeodeticPoint, radiusM float64) (BoundingRegion, error) {
	bearings := [4]float64{0, 180, 270, 90}
	var pts [4]GeodeticPoint
	for i, brg := range bearings {
		sol, err := Direct(center, brg, radiusM)
		if err != nil && KindOf(err) != KindNonConvergence {
			return BoundingRegion{}, err
		}
		pts[i] = sol.Point
	}
	return BoundingRegion{
		Center: center,
		Top:    pts[0],
		Bottom: pts[1],
		Left:   pts[2],
		Right:  pts[3],
	}, nil
}

// ClampResult describes the outcome of a radius check against the coverage limits.
type ClampResult struct {
	Valid            bool    `json:"valid"`
	CorrectedRadiusM int     `json:"corrected_radius_m"`
	EdgeDistanceM    float64 `json:"edge_distance_m"`
	EdgeLatDeg       float64 `json:"edge_lat_deg"`
}

// CoverageEdge returns the latitude limit closer to center's hemisphere.
func CoverageEdge(center GeodeticPoint) float64 {
	if center.LatDeg >= 0 {
		return CoverageNorthDeg
	}
	return CoverageSouthDeg
}

// CheckCoverage fails with KindUnsupportedLocation for centers outside the
// elevation data latitude range.
func CheckCoverage(center GeodeticPoint) error {
	if center.LatDeg > coverageNorthCheckDeg || center.LatDeg < CoverageSouthDeg {
		return NewError(KindUnsupportedLocation,
			"latitude %.5f is outside the elevation data coverage (%.0f to %.0f)",
			center.LatDeg, CoverageSouthDeg, CoverageNorthDeg)
	}
	return nil
}

// ClampRadius checks radiusM against the distance from center to the nearer
// coverage edge. A result is always returned; the error is
// KindUnsupportedLocation when the center is closer than MinEdgeDistanceM to
// the edge, or KindRadiusTooLarge (with CorrectedRadiusM set) when the radius
// must shrink.
func ClampRadius(center GeodeticPoint, radiusM float64) (ClampResult, error) {
	edge := CoverageEdge(center)
	sol, err := Inverse(center, GeodeticPoint{LatDeg: edge, LonDeg: center.LonDeg})
	if err != nil && KindOf(err) != KindNonConvergence {
		return ClampResult{}, err
	}

	res := ClampResult{EdgeDistanceM: sol.DistanceM, EdgeLatDeg: edge}
	switch {
	case sol.DistanceM < MinEdgeDistanceM:
		return res, NewError(KindUnsupportedLocation,
			"location is %.0f m from the %.0f latitude coverage limit; at least %d m is required",
			sol.DistanceM, edge, MinEdgeDistanceM)
	case sol.DistanceM < radiusM:
		res.CorrectedRadiusM = int(math.Floor(sol.DistanceM))
		e := NewError(KindRadiusTooLarge,
			"location is %d m from the %.0f latitude coverage limit; use radius %d",
			res.CorrectedRadiusM, edge, res.CorrectedRadiusM)
		e.CorrectedRadiusM = res.CorrectedRadiusM
		return res, e
	default:
		res.Valid = true
		res.CorrectedRadiusM = int(radiusM)
		return res, nil
	}
}

// FetchRadius returns the radius used to request raster data.
func FetchRadius(radiusM float64) float64 {
	return math.Max(radiusM, MinFetchRadiusM)
}

// ValidateRadius checks radiusM against [MinRadiusM, MaxRadiusM].
func ValidateRadius(radiusM float64) error {
	if math.IsNaN(radiusM) || radiusM < MinRadiusM || radiusM > MaxRadiusM {
		return NewError(KindInvalidRadius, "radius must be between %d and %d meters, got %v", MinRadiusM, MaxRadiusM, radiusM)
	}
	return nil
}
