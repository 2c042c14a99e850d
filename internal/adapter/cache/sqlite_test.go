package cache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

func TestKey(t *testing.T) {
	tokyo := domain.GeodeticPoint{LatDeg: 35.6938, LonDeg: 139.7034}
	k := Key(tokyo, 500.7, "raster")
	parts := strings.Split(k, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 12)
	assert.True(t, strings.HasPrefix(parts[0], "xn7"), "geohash %s", parts[0])
	assert.Equal(t, "500", parts[1])
	assert.Equal(t, "raster", parts[2])

	assert.NotEqual(t, k, Key(tokyo, 500, "mesh-circular"))
	assert.NotEqual(t, k, Key(domain.GeodeticPoint{LatDeg: 35.6939, LonDeg: 139.7034}, 500, "raster"))
	assert.Equal(t, "raster", kindOf(k))
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "assets.db"), 0)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	key := Key(domain.GeodeticPoint{LatDeg: 44.8, LonDeg: 20.46}, 200, "raster")
	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte(strings.Repeat("ncols 3\nnrows 3\n", 50))
	hits := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("raster", "hit"))
	require.NoError(t, s.Put(ctx, key, payload))
	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("raster", "hit")))

	require.NoError(t, s.Put(ctx, key, []byte("replaced")))
	got, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "replaced", string(got))
}

func TestStoreMaxAgeAndPrune(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "assets.db"), time.Hour)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	key := Key(domain.GeodeticPoint{LatDeg: 1, LonDeg: 2}, 300, "raster")
	require.NoError(t, s.Put(ctx, key, []byte("x")))
	_, err = s.db.ExecContext(ctx, "UPDATE assets SET created_at = ? WHERE key = ?",
		time.Now().UTC().Add(-2*time.Hour), key)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entries past max age are misses")

	n, err := s.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
