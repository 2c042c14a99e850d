package usecase

import (
	"log/slog"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

// GeodesyUseCase exposes the geodesic solver, the bounding region and the
// radius clamp.
type GeodesyUseCase struct{}

// NewGeodesyUseCase creates a new geodesy use case.
func NewGeodesyUseCase() *GeodesyUseCase {
	return &GeodesyUseCase{}
}

// InverseResponse is the result of an inverse query.
type InverseResponse struct {
	From domain.GeodeticPoint `json:"from"`
	To   domain.GeodeticPoint `json:"to"`
	domain.InverseSolution
	Converged bool `json:"converged"`
}

// DirectResponse is the result of a direct query.
type DirectResponse struct {
	From       domain.GeodeticPoint `json:"from"`
	BearingDeg float64              `json:"bearing_deg"`
	DistanceM  float64              `json:"distance_m"`
	domain.DirectSolution
	Converged bool `json:"converged"`
}

// RegionResponse is the bounding region of a center and radius together
// with the coverage clamp.
type RegionResponse struct {
	Region       domain.BoundingRegion `json:"region"`
	Bounds       [4]float64            `json:"bbox"` // west, south, east, north
	FetchRadiusM float64               `json:"fetch_radius_m"`
	Clamp        domain.ClampResult    `json:"clamp"`
}

// Inverse solves the inverse problem. A solution that hit the iteration cap
// is returned with Converged false.
func (uc *GeodesyUseCase) Inverse(p1, p2 domain.GeodeticPoint) (*InverseResponse, error) {
	if err := p1.Validate(); err != nil {
		return nil, err
	}
	if err := p2.Validate(); err != nil {
		return nil, err
	}
	sol, err := domain.Inverse(p1, p2)
	converged, err := advisory(err)
	if err != nil {
		return nil, err
	}
	sol.DistanceM = roundToDecimal(sol.DistanceM, 4)
	sol.ForwardBearingDeg = roundToDecimal(sol.ForwardBearingDeg, 9)
	sol.ReverseBearingDeg = roundToDecimal(sol.ReverseBearingDeg, 9)
	return &InverseResponse{From: p1, To: p2, InverseSolution: sol, Converged: converged}, nil
}

// Direct solves the direct problem.
func (uc *GeodesyUseCase) Direct(p domain.GeodeticPoint, bearingDeg, distanceM float64) (*DirectResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sol, err := domain.Direct(p, bearingDeg, distanceM)
	converged, err := advisory(err)
	if err != nil {
		return nil, err
	}
	return &DirectResponse{
		From:           p,
		BearingDeg:     bearingDeg,
		DistanceM:      distanceM,
		DirectSolution: sol,
		Converged:      converged,
	}, nil
}

// Region returns the bounding region used to fetch raster data for center
// and radiusM, and the result of clamping that radius against the data
// coverage. A radius that must shrink is reported in the clamp result, not
// as an error.
func (uc *GeodesyUseCase) Region(center domain.GeodeticPoint, radiusM float64) (*RegionResponse, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateRadius(radiusM); err != nil {
		return nil, err
	}
	if err := domain.CheckCoverage(center); err != nil {
		return nil, err
	}

	fetchR := domain.FetchRadius(radiusM)
	clamp, err := domain.ClampRadius(center, fetchR)
	if err != nil && domain.KindOf(err) != domain.KindRadiusTooLarge {
		return nil, err
	}
	region, err := domain.Region(center, fetchR)
	if err != nil {
		return nil, err
	}
	b := region.Bound()
	return &RegionResponse{
		Region:       region,
		Bounds:       [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]},
		FetchRadiusM: fetchR,
		Clamp:        clamp,
	}, nil
}

// advisory separates the non-fatal NonConvergence signal from real errors.
func advisory(err error) (converged bool, fatal error) {
	if err == nil {
		return true, nil
	}
	if domain.KindOf(err) == domain.KindNonConvergence {
		metrics.NonConvergence.Inc()
		slog.Warn("geodesic solution did not converge", "error", err)
		return false, nil
	}
	return false, err
}
