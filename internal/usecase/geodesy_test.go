package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/domain"
)

func TestGeodesyInverseDirect(t *testing.T) {
	uc := NewGeodesyUseCase()
	from := domain.GeodeticPoint{LatDeg: 35.6938, LonDeg: 139.7034}

	d, err := uc.Direct(from, 45, 10000)
	require.NoError(t, err)
	assert.True(t, d.Converged)

	inv, err := uc.Inverse(from, d.Point)
	require.NoError(t, err)
	assert.True(t, inv.Converged)
	assert.InDelta(t, 10000, inv.DistanceM, 1e-3)
	assert.InDelta(t, 45, inv.ForwardBearingDeg, 1e-6)
}

func TestGeodesyValidation(t *testing.T) {
	uc := NewGeodesyUseCase()
	ok := domain.GeodeticPoint{LatDeg: 1, LonDeg: 1}

	_, err := uc.Inverse(domain.GeodeticPoint{LatDeg: 91}, ok)
	assert.Equal(t, domain.KindInvalidAngle, domain.KindOf(err))

	_, err = uc.Direct(ok, 360, 10)
	assert.Equal(t, domain.KindInvalidAngle, domain.KindOf(err))

	_, err = uc.Direct(ok, 10, -1)
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))
}

func TestGeodesyAntipodalIsAdvisory(t *testing.T) {
	uc := NewGeodesyUseCase()
	inv, err := uc.Inverse(domain.GeodeticPoint{LatDeg: 0, LonDeg: 0}, domain.GeodeticPoint{LatDeg: 0.5, LonDeg: 179.7})
	require.NoError(t, err)
	assert.Greater(t, inv.DistanceM, 19e6)
}

func TestGeodesyRegion(t *testing.T) {
	uc := NewGeodesyUseCase()

	resp, err := uc.Region(domain.GeodeticPoint{LatDeg: 45, LonDeg: 15}, 100)
	require.NoError(t, err)
	assert.Equal(t, 200.0, resp.FetchRadiusM)
	assert.True(t, resp.Clamp.Valid)
	assert.Less(t, resp.Bounds[0], 15.0)
	assert.Greater(t, resp.Bounds[2], 15.0)
	assert.Less(t, resp.Bounds[1], 45.0)
	assert.Greater(t, resp.Bounds[3], 45.0)

	clamped, err := uc.Region(domain.GeodeticPoint{LatDeg: 59.99, LonDeg: 15}, 5000)
	require.NoError(t, err, "a radius that must shrink is reported, not rejected")
	assert.False(t, clamped.Clamp.Valid)
	assert.Less(t, clamped.Clamp.CorrectedRadiusM, 5000)

	_, err = uc.Region(domain.GeodeticPoint{LatDeg: 70, LonDeg: 15}, 500)
	assert.Equal(t, domain.KindUnsupportedLocation, domain.KindOf(err))

	_, err = uc.Region(domain.GeodeticPoint{LatDeg: 45, LonDeg: 15}, 5)
	assert.Equal(t, domain.KindInvalidRadius, domain.KindOf(err))
}
