package domain

import (
	"fmt"
	"math"
)

// Ellipsoid holds the defining constants of a reference ellipsoid.
type Ellipsoid struct {
	A float64 // Equatorial radius in meters.
	B float64 // Polar radius in meters.
	F float64 // Flattening (a-b)/a.
}

// WGS84 is the only ellipsoid used by the terrain pipeline.
var WGS84 = Ellipsoid{
	A: 6378137,
	B: 6356752.314245,
	F: 0.00335281066474,
}

const (
	// InverseMaxIterations caps the longitude-difference iteration of the inverse solution.
	InverseMaxIterations = 100
	// DirectMaxIterations caps the angular-distance iteration of the direct solution.
	DirectMaxIterations = 200
	// ConvergenceTolerance is the iteration stop criterion in radians.
	ConvergenceTolerance = 1e-12
)

// GeodeticPoint is a position on the ellipsoid in decimal degrees.
type GeodeticPoint struct {
	LatDeg float64 `json:"lat"`
	LonDeg float64 `json:"lon"`
}

// Validate checks latitude and longitude ranges.
func (p GeodeticPoint) Validate() error {
	if math.IsNaN(p.LatDeg) || p.LatDeg < -90 || p.LatDeg > 90 {
		return NewError(KindInvalidAngle, "latitude must be between -90 and 90, got %v", p.LatDeg)
	}
	if math.IsNaN(p.LonDeg) || p.LonDeg < -180 || p.LonDeg > 180 {
		return NewError(KindInvalidAngle, "longitude must be between -180 and 180, got %v", p.LonDeg)
	}
	return nil
}

func (p GeodeticPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.LatDeg, p.LonDeg)
}

// InverseSolution is the result of the inverse geodetic problem.
type InverseSolution struct {
	DistanceM         float64 `json:"distance_m"`
	ForwardBearingDeg float64 `json:"forward_bearing_deg"` // Azimuth at p1, [0, 360).
	ReverseBearingDeg float64 `json:"reverse_bearing_deg"` // Azimuth of the geodesic at p2, [0, 360).
	Iterations        int     `json:"iterations"`
}

// DirectSolution is the result of the direct geodetic problem.
type DirectSolution struct {
	Point             GeodeticPoint `json:"point"`
	ReverseBearingDeg float64       `json:"reverse_bearing_deg"` // Azimuth of the geodesic at the destination, [0, 360).
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeBearing maps any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d == 360 {
		d = 0
	}
	return d
}

// Inverse solves the inverse problem on WGS84 with Vincenty's method.
// When the iteration cap is hit the best-effort solution is returned together
// with a KindNonConvergence error; callers may log it and keep the result.
func Inverse(p1, p2 GeodeticPoint) (InverseSolution, error) {
	return WGS84.Inverse(p1, p2)
}

// Direct solves the direct problem on WGS84 with Vincenty's method.
func Direct(p1 GeodeticPoint, bearingDeg, distanceM float64) (DirectSolution, error) {
	return WGS84.Direct(p1, bearingDeg, distanceM)
}

// Inverse solves the inverse problem on the ellipsoid.
func (e Ellipsoid) Inverse(p1, p2 GeodeticPoint) (InverseSolution, error) {
	if err := p1.Validate(); err != nil {
		return InverseSolution{}, err
	}
	if err := p2.Validate(); err != nil {
		return InverseSolution{}, err
	}

	a, b, f := e.A, e.B, e.F
	L := Deg2Rad(p2.LonDeg - p1.LonDeg)
	if L > math.Pi {
		L -= 2 * math.Pi
	} else if L < -math.Pi {
		L += 2 * math.Pi
	}
	tanU1 := (1 - f) * math.Tan(Deg2Rad(p1.LatDeg))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1
	tanU2 := (1 - f) * math.Tan(Deg2Rad(p2.LatDeg))
	cosU2 := 1 / math.Sqrt(1+tanU2*tanU2)
	sinU2 := tanU2 * cosU2

	var (
		sinLambda, cosLambda float64
		sinSigma, cosSigma   float64
		sigma                float64
		sinAlpha, cosSqAlpha float64
		cos2SigmaM           float64
	)
	// evaluate sets the auxiliary-sphere terms for lambda.
	evaluate := func(lambda float64) {
		sinLambda = math.Sin(lambda)
		cosLambda = math.Cos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		if sinSigma == 0 {
			sinAlpha, cosSqAlpha, cos2SigmaM = 0, 1, 0
			return
		}
		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Equatorial line.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
	}

	lambda := L
	converged := false
	iterations := 0
	for iterations < InverseMaxIterations {
		iterations++
		evaluate(lambda)
		if sinSigma == 0 {
			// Coincident points.
			return InverseSolution{Iterations: iterations}, nil
		}
		C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) <= ConvergenceTolerance {
			converged = true
			break
		}
	}
	// Distance and azimuths use the terms of the final lambda.
	evaluate(lambda)

	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	sol := InverseSolution{
		DistanceM:         b * A * (sigma - deltaSigma),
		ForwardBearingDeg: NormalizeBearing(Rad2Deg(math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))),
		ReverseBearingDeg: NormalizeBearing(Rad2Deg(math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda))),
		Iterations:        iterations,
	}
	if !converged {
		return sol, NewError(KindNonConvergence, "inverse solution %v -> %v did not converge in %d iterations", p1, p2, InverseMaxIterations)
	}
	return sol, nil
}

// Direct solves the direct problem on the ellipsoid. The bearing must lie in [0, 360).
func (e Ellipsoid) Direct(p1 GeodeticPoint, bearingDeg, distanceM float64) (DirectSolution, error) {
	if math.IsNaN(bearingDeg) || bearingDeg < 0 || bearingDeg >= 360 {
		return DirectSolution{}, NewError(KindInvalidAngle, "bearing must be in [0, 360), got %v", bearingDeg)
	}
	if err := p1.Validate(); err != nil {
		return DirectSolution{}, err
	}
	if math.IsNaN(distanceM) || math.IsInf(distanceM, 0) || distanceM < 0 {
		return DirectSolution{}, NewError(KindInvalidRequest, "distance must be a non-negative finite number, got %v", distanceM)
	}

	a, b, f := e.A, e.B, e.F
	alpha1 := Deg2Rad(bearingDeg)
	sinAlpha1 := math.Sin(alpha1)
	cosAlpha1 := math.Cos(alpha1)
	tanU1 := (1 - f) * math.Tan(Deg2Rad(p1.LatDeg))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1
	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distanceM / (b * A)
	var sinSigma, cosSigma, cos2SigmaM float64
	converged := false
	for i := 0; i < DirectMaxIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma = math.Sin(sigma)
		cosSigma = math.Cos(sigma)
		deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		prev := sigma
		sigma = distanceM/(b*A) + deltaSigma
		if math.Abs(sigma-prev) <= ConvergenceTolerance {
			converged = true
			break
		}
	}
	// Refresh the trigonometric terms for the final sigma.
	cos2SigmaM = math.Cos(2*sigma1 + sigma)
	sinSigma = math.Sin(sigma)
	cosSigma = math.Cos(sigma)

	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1, (1-f)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	L := lambda - (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
	lon2 := math.Mod(Deg2Rad(p1.LonDeg)+L+3*math.Pi, 2*math.Pi) - math.Pi

	sol := DirectSolution{
		Point:             GeodeticPoint{LatDeg: Rad2Deg(lat2), LonDeg: Rad2Deg(lon2)},
		ReverseBearingDeg: NormalizeBearing(Rad2Deg(math.Atan2(sinAlpha, -tmp))),
	}
	if !converged {
		return sol, NewError(KindNonConvergence, "direct solution from %v did not converge", p1)
	}
	return sol, nil
}
