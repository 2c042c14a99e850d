package domain

import (
	"errors"
	"math"
	"testing"
)

func angleDiffDeg(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// TestDirectInverseRoundTrip checks that inverse(p, direct(p, brg, s)) recovers s and brg.
func TestDirectInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		start      GeodeticPoint
		bearingDeg float64
		distanceM  float64
	}{
		{"very short NE", GeodeticPoint{45, 15}, 30, 5},
		{"short NE", GeodeticPoint{45, 15}, 30, 50},
		{"NE", GeodeticPoint{45, 15}, 30, 500},
		{"southern SE", GeodeticPoint{-33.9, 18.4}, 135, 1_000_000},
		{"west long", GeodeticPoint{10, -70}, 270, 5_000_000},
		{"equator diagonal", GeodeticPoint{0, 0}, 45, 10_000_000},
		{"high latitude", GeodeticPoint{59.5, 100}, 200, 100_000},
		{"near antimeridian", GeodeticPoint{-20, 179.9}, 80, 50_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, err := Direct(tt.start, tt.bearingDeg, tt.distanceM)
			if err != nil {
				t.Fatalf("Direct failed: %v", err)
			}
			inv, err := Inverse(tt.start, dst.Point)
			if err != nil {
				t.Fatalf("Inverse failed: %v", err)
			}
			if rel := math.Abs(inv.DistanceM-tt.distanceM) / tt.distanceM; rel > 1e-6 {
				t.Errorf("distance: expected %.6f, got %.6f (rel %.3e)", tt.distanceM, inv.DistanceM, rel)
			}
			if d := Deg2Rad(angleDiffDeg(inv.ForwardBearingDeg, tt.bearingDeg)); d > 1e-9 {
				t.Errorf("forward bearing: expected %.10f, got %.10f", tt.bearingDeg, inv.ForwardBearingDeg)
			}
			if d := angleDiffDeg(inv.ReverseBearingDeg, dst.ReverseBearingDeg); d > 1e-7 {
				t.Errorf("reverse bearing: direct %.10f, inverse %.10f", dst.ReverseBearingDeg, inv.ReverseBearingDeg)
			}
		})
	}
}

// TestInverseSymmetry checks that the distance does not depend on argument order.
func TestInverseSymmetry(t *testing.T) {
	pairs := [][2]GeodeticPoint{
		{{45, 15}, {45.01, 15.02}},
		{{-56, -70}, {-40, -60}},
		{{51.5, -0.12}, {40.7, -74}},
		{{0, 0}, {30, 30}},
	}
	for _, p := range pairs {
		a, err := Inverse(p[0], p[1])
		if err != nil {
			t.Fatalf("Inverse(%v, %v): %v", p[0], p[1], err)
		}
		b, err := Inverse(p[1], p[0])
		if err != nil {
			t.Fatalf("Inverse(%v, %v): %v", p[1], p[0], err)
		}
		if rel := math.Abs(a.DistanceM-b.DistanceM) / a.DistanceM; rel > 1e-9 {
			t.Errorf("asymmetric distance %v <-> %v: %.9f vs %.9f", p[0], p[1], a.DistanceM, b.DistanceM)
		}
	}
}

// TestInverseEquator covers the cos^2(alpha) == 0 branch.
func TestInverseEquator(t *testing.T) {
	sol, err := Inverse(GeodeticPoint{0, 0}, GeodeticPoint{0, 10})
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	if math.IsNaN(sol.DistanceM) || math.IsInf(sol.DistanceM, 0) {
		t.Fatalf("distance is not finite: %v", sol.DistanceM)
	}
	expected := WGS84.A * Deg2Rad(10)
	if math.Abs(sol.DistanceM-expected) > 1e-3 {
		t.Errorf("expected %.4f, got %.4f", expected, sol.DistanceM)
	}
	if math.Abs(sol.ForwardBearingDeg-90) > 1e-9 {
		t.Errorf("expected bearing 90, got %.10f", sol.ForwardBearingDeg)
	}
}

func TestInverseCoincidentPoints(t *testing.T) {
	sol, err := Inverse(GeodeticPoint{45, 15}, GeodeticPoint{45, 15})
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	if sol.DistanceM != 0 {
		t.Errorf("expected 0, got %v", sol.DistanceM)
	}
}

// TestInverseNearAntipodal only requires a best-effort result.
func TestInverseNearAntipodal(t *testing.T) {
	_, err := Inverse(GeodeticPoint{0, 0}, GeodeticPoint{0.5, 179.7})
	if err != nil && KindOf(err) != KindNonConvergence {
		t.Fatalf("expected nil or NonConvergence, got %v", err)
	}
}

func TestDirectInvalidAngle(t *testing.T) {
	for _, brg := range []float64{-1, 360, 720, math.NaN()} {
		_, err := Direct(GeodeticPoint{45, 15}, brg, 100)
		if !errors.Is(err, ErrInvalidAngle) {
			t.Errorf("bearing %v: expected InvalidAngle, got %v", brg, err)
		}
	}
}

func TestInvalidCoordinates(t *testing.T) {
	_, err := Inverse(GeodeticPoint{91, 0}, GeodeticPoint{0, 0})
	if KindOf(err) != KindInvalidAngle {
		t.Errorf("expected InvalidAngle, got %v", err)
	}
	_, err = Direct(GeodeticPoint{0, 181}, 0, 10)
	if KindOf(err) != KindInvalidAngle {
		t.Errorf("expected InvalidAngle, got %v", err)
	}
}

func TestDirectNormalizesLongitude(t *testing.T) {
	sol, err := Direct(GeodeticPoint{0, 179.999}, 90, 1000)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}
	if sol.Point.LonDeg > -179 || sol.Point.LonDeg < -180 {
		t.Errorf("expected longitude wrapped to about -179.99, got %.6f", sol.Point.LonDeg)
	}
}

func TestNormalizeBearing(t *testing.T) {
	tests := map[float64]float64{0: 0, 360: 0, -90: 270, 450: 90, 359.5: 359.5}
	for in, want := range tests {
		if got := NormalizeBearing(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("NormalizeBearing(%v) = %v, want %v", in, got, want)
		}
	}
}
