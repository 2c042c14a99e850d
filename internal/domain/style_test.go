package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStyleCodes(t *testing.T) {
	tests := []struct {
		code  int
		label string
	}{
		{0, "mesh-rectangular"},
		{1, "mesh-circular"},
		{2, "surface-rectangular"},
		{3, "surface-circular"},
		{-1, "mesh-rectangular"},
		{9, "mesh-rectangular"},
	}
	for _, tt := range tests {
		st := StyleFromCode(tt.code)
		if st.Label() != tt.label {
			t.Errorf("code %d: expected %s, got %s", tt.code, tt.label, st.Label())
		}
		if tt.code >= 0 && tt.code <= 3 && st.Code() != tt.code {
			t.Errorf("code %d round-tripped to %d", tt.code, st.Code())
		}
	}
}

func TestParseStyle(t *testing.T) {
	st, err := ParseStyle("")
	if err != nil || st != DefaultStyle {
		t.Errorf("empty: expected default, got %v %v", st, err)
	}
	st, err = ParseStyle("Surface-Circular")
	if err != nil || st.Representation != RepresentationSurface || st.Footprint != FootprintCircular {
		t.Errorf("label: got %v %v", st, err)
	}
	st, err = ParseStyle("2")
	if err != nil || st.Label() != "surface-rectangular" {
		t.Errorf("code: got %v %v", st, err)
	}
	if _, err = ParseStyle("voxel"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown: expected InvalidRequest, got %v", err)
	}
}

func TestNorth(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		deg  int
	}{
		{"y axis", 0, 1, 0},
		{"x axis", 1, 0, 90},
		{"negative y", 0, -1, 180},
		{"negative x", -1, 0, 270},
		{"diagonal", 1, 1, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NorthFromVector(tt.x, tt.y)
			if err != nil {
				t.Fatalf("NorthFromVector: %v", err)
			}
			if n.Degrees() != tt.deg {
				t.Errorf("expected %d, got %d", tt.deg, n.Degrees())
			}
		})
	}

	for _, deg := range []int{0, 1, 45, 90, 179, 270, 359} {
		n, err := NorthFromDegrees(float64(deg))
		if err != nil {
			t.Fatalf("NorthFromDegrees(%d): %v", deg, err)
		}
		if n.Degrees() != deg {
			t.Errorf("degrees %d reported as %d", deg, n.Degrees())
		}
		if n.String() != fmt.Sprint(deg) {
			t.Errorf("String() = %q", n.String())
		}
	}

	n, _ := NorthFromDegrees(360)
	if n.Degrees() != 0 {
		t.Errorf("360 should report 0, got %d", n.Degrees())
	}
	if _, err := NorthFromDegrees(400); !errors.Is(err, ErrInvalidAngle) {
		t.Errorf("expected InvalidAngle, got %v", err)
	}
	if _, err := NorthFromVector(0, 0); !errors.Is(err, ErrInvalidAngle) {
		t.Errorf("expected InvalidAngle for zero vector, got %v", err)
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", WrapError(KindDownloadFailed, errors.New("eof"), "fetch failed"))
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("expected DownloadFailed to match through wrapping")
	}
	if errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("DownloadFailed must not match ServiceUnavailable")
	}
	if KindOf(err) != KindDownloadFailed {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Errorf("plain errors should be KindUnknown")
	}
	if got := err.Error(); got != "pipeline: fetch failed: eof" {
		t.Errorf("unexpected message %q", got)
	}
}
