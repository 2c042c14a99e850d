package domain

import (
	"errors"
	"math"
	"testing"
)

func TestRegion(t *testing.T) {
	center := GeodeticPoint{45, 15}
	r, err := Region(center, 500)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if !(r.North() > center.LatDeg && center.LatDeg > r.South()) {
		t.Errorf("latitudes do not bracket center: %v %v", r.North(), r.South())
	}
	if !(r.West() < center.LonDeg && center.LonDeg < r.East()) {
		t.Errorf("longitudes do not bracket center: %v %v", r.West(), r.East())
	}
	for name, p := range map[string]GeodeticPoint{"top": r.Top, "bottom": r.Bottom, "left": r.Left, "right": r.Right} {
		inv, err := Inverse(center, p)
		if err != nil {
			t.Fatalf("Inverse to %s: %v", name, err)
		}
		if rel := math.Abs(inv.DistanceM-500) / 500; rel > 1e-6 {
			t.Errorf("%s: expected 500 m, got %.9f", name, inv.DistanceM)
		}
	}
	b := r.Bound()
	if !b.Contains([2]float64{15, 45}) {
		t.Errorf("bound %v does not contain center", b)
	}
}

func TestRegionAntimeridian(t *testing.T) {
	r, err := Region(GeodeticPoint{0, 179.999}, 1000)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if !r.CrossesAntimeridian() {
		t.Fatalf("expected region to cross the antimeridian: west %v east %v", r.West(), r.East())
	}
	b := r.Bound()
	if b.Max[0] <= b.Min[0] {
		t.Errorf("expected unwrapped bound, got %v", b)
	}
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		name      string
		center    GeodeticPoint
		radiusM   float64
		wantKind  Kind
		wantValid bool
	}{
		{"far from edge", GeodeticPoint{45, 15}, 5000, KindUnknown, true},
		{"north near edge valid", GeodeticPoint{59.99, 10}, 500, KindUnknown, true},
		{"north near edge too large", GeodeticPoint{59.99, 10}, 2000, KindRadiusTooLarge, false},
		{"south near edge too large", GeodeticPoint{-55.99, -70}, 2000, KindRadiusTooLarge, false},
		{"north too close", GeodeticPoint{59.999, 10}, 200, KindUnsupportedLocation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ClampRadius(tt.center, tt.radiusM)
			if KindOf(err) != tt.wantKind {
				t.Fatalf("expected kind %v, got %v (%v)", tt.wantKind, KindOf(err), err)
			}
			if res.Valid != tt.wantValid {
				t.Errorf("expected valid=%v, got %v", tt.wantValid, res.Valid)
			}
			if tt.wantKind == KindRadiusTooLarge {
				var de *Error
				if !errors.As(err, &de) {
					t.Fatalf("expected *Error, got %T", err)
				}
				if de.CorrectedRadiusM != res.CorrectedRadiusM {
					t.Errorf("error carries %d, result carries %d", de.CorrectedRadiusM, res.CorrectedRadiusM)
				}
				if res.CorrectedRadiusM != int(math.Floor(res.EdgeDistanceM)) {
					t.Errorf("expected floor(%v), got %d", res.EdgeDistanceM, res.CorrectedRadiusM)
				}
				if float64(res.CorrectedRadiusM) >= tt.radiusM {
					t.Errorf("corrected radius %d not below requested %v", res.CorrectedRadiusM, tt.radiusM)
				}
			}
		})
	}
}

// TestClampRadiusMonotonic checks that growing the request never shrinks the corrected radius.
func TestClampRadiusMonotonic(t *testing.T) {
	center := GeodeticPoint{59.99, 10}
	prev := 0
	for r := 100.0; r <= 3000; r += 50 {
		res, err := ClampRadius(center, r)
		if err != nil && KindOf(err) != KindRadiusTooLarge {
			t.Fatalf("radius %v: unexpected error %v", r, err)
		}
		if res.CorrectedRadiusM < prev {
			t.Errorf("radius %v: corrected %d dropped below %d", r, res.CorrectedRadiusM, prev)
		}
		if float64(res.CorrectedRadiusM) > r {
			t.Errorf("radius %v: corrected %d exceeds request", r, res.CorrectedRadiusM)
		}
		prev = res.CorrectedRadiusM
	}
}

func TestCheckCoverage(t *testing.T) {
	tests := []struct {
		lat float64
		ok  bool
	}{
		{0, true},
		{59.99999, true},
		{60, false},
		{-56, true},
		{-56.1, false},
	}
	for _, tt := range tests {
		err := CheckCoverage(GeodeticPoint{tt.lat, 0})
		if (err == nil) != tt.ok {
			t.Errorf("lat %v: expected ok=%v, got %v", tt.lat, tt.ok, err)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedLocation) {
			t.Errorf("lat %v: expected UnsupportedLocation, got %v", tt.lat, err)
		}
	}
}

func TestFetchRadiusAndValidate(t *testing.T) {
	if FetchRadius(50) != MinFetchRadiusM {
		t.Errorf("expected floor %d, got %v", MinFetchRadiusM, FetchRadius(50))
	}
	if FetchRadius(1500) != 1500 {
		t.Errorf("expected 1500, got %v", FetchRadius(1500))
	}
	for _, r := range []float64{19.9, 100000.1, math.NaN()} {
		if !errors.Is(ValidateRadius(r), ErrInvalidRadius) {
			t.Errorf("radius %v: expected InvalidRadius", r)
		}
	}
	for _, r := range []float64{20, 100, 100000} {
		if err := ValidateRadius(r); err != nil {
			t.Errorf("radius %v: unexpected %v", r, err)
		}
	}
}
