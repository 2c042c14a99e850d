package raster

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"go.ngs.io/terrain-api/internal/adapter/cache"
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

// DefaultOpenTopographyURL is the global DEM endpoint.
const DefaultOpenTopographyURL = "https://portal.opentopography.org/API/globaldem"

// maxResponseBytes bounds a single DEM download.
const maxResponseBytes = 512 << 20

// BlobCache stores raw downloads.
type BlobCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// OpenTopographyConfig configures the OpenTopography client.
type OpenTopographyConfig struct {
	BaseURL           string
	APIKey            string
	DEMType           string // SRTMGL1 when empty.
	Timeout           time.Duration
	RequestsPerMinute int // Zero disables throttling.
}

// OpenTopography downloads SRTM windows as ESRI ASCII grids.
type OpenTopography struct {
	cfg     OpenTopographyConfig
	client  *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	cache   BlobCache
}

// NewOpenTopography creates a client. blobs may be nil to disable caching.
func NewOpenTopography(cfg OpenTopographyConfig, blobs BlobCache) *OpenTopography {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenTopographyURL
	}
	if cfg.DEMType == "" {
		cfg.DEMType = "SRTMGL1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &OpenTopography{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		cache:   blobs,
	}
}

// Name implements Source.
func (o *OpenTopography) Name() string { return "opentopography" }

// URL returns the request URL for a region.
func (o *OpenTopography) URL(region domain.BoundingRegion) string {
	q := url.Values{}
	q.Set("demtype", o.cfg.DEMType)
	q.Set("south", strconv.FormatFloat(region.South(), 'f', -1, 64))
	q.Set("north", strconv.FormatFloat(region.North(), 'f', -1, 64))
	q.Set("west", strconv.FormatFloat(region.West(), 'f', -1, 64))
	q.Set("east", strconv.FormatFloat(region.East(), 'f', -1, 64))
	q.Set("outputFormat", "AAIGrid")
	if o.cfg.APIKey != "" {
		q.Set("API_Key", o.cfg.APIKey)
	}
	return o.cfg.BaseURL + "?" + q.Encode()
}

// Fetch implements Source. Cached downloads are reused; concurrent requests
// for the same window share one download.
func (o *OpenTopography) Fetch(ctx context.Context, req Request) (*Grid, error) {
	key := cache.Key(req.Center, req.RadiusM, "raster")

	if o.cache != nil {
		data, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("raster cache read failed", "key", key, "error", err)
		}
		if ok {
			g, err := ParseASCII(bytes.NewReader(data))
			if err == nil {
				return g, nil
			}
			slog.Warn("discarding unreadable cached raster", "key", key, "error", err)
		}
	}

	// The shared download outlives any single caller's cancellation; the
	// client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := o.group.Do(key, func() (any, error) {
		body, err := o.download(shared, req.Region)
		if err != nil {
			return nil, err
		}
		g, err := ParseASCII(bytes.NewReader(body))
		if err != nil {
			return nil, domain.WrapError(domain.KindDownloadFailed, err, "OpenTopography returned an unreadable grid")
		}
		if o.cache != nil {
			if err := o.cache.Put(shared, key, body); err != nil {
				slog.Warn("raster cache write failed", "key", key, "error", err)
			}
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing a download get their own copy of the grid.
	return v.(*Grid).Clone(), nil
}

func (o *OpenTopography) download(ctx context.Context, region domain.BoundingRegion) ([]byte, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError(domain.KindServiceUnavailable, err, "OpenTopography request throttled")
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL(region), nil)
	if err != nil {
		return nil, domain.WrapError(domain.KindDownloadFailed, err, "failed to build OpenTopography request")
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		o.count("error")
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, domain.WrapError(domain.KindDownloadFailed, err, "OpenTopography request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		o.count("unavailable")
		return nil, domain.NewError(domain.KindServiceUnavailable, "OpenTopography responded %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		o.count("error")
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewError(domain.KindDownloadFailed, "OpenTopography responded %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		o.count("error")
		return nil, domain.WrapError(domain.KindDownloadFailed, err, "failed to read OpenTopography response")
	}
	o.count("ok")
	slog.Info("downloaded DEM window",
		"source", o.Name(),
		"south", region.South(), "north", region.North(),
		"west", region.West(), "east", region.East(),
		"bytes", len(body),
		"elapsed", time.Since(start))
	return body, nil
}

func (o *OpenTopography) count(result string) {
	metrics.UpstreamFetches.WithLabelValues(o.Name(), result).Inc()
}

var (
	_ Source = (*OpenTopography)(nil)
	_ Source = (*NetCDFSource)(nil)
)
