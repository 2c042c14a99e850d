package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/export"
	"go.ngs.io/terrain-api/internal/geometry"
	"go.ngs.io/terrain-api/internal/usecase"
)

// Handler handles HTTP requests for terrain generation and geodesy.
type Handler struct {
	terrainUC *usecase.TerrainUseCase
	geodesyUC *usecase.GeodesyUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(terrainUC *usecase.TerrainUseCase, geodesyUC *usecase.GeodesyUseCase) *Handler {
	return &Handler{
		terrainUC: terrainUC,
		geodesyUC: geodesyUC,
	}
}

// GetTerrain handles GET /v1/terrain.
func (h *Handler) GetTerrain(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Response(h.terrainUC.SourceName()))
}

// GetTerrainContours handles GET /v1/terrain/contours.geojson.
func (h *Handler) GetTerrainContours(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}
	contours, err := res.GeoContours()
	if err != nil {
		writeError(c, err)
		return
	}
	fc := export.FeatureCollection(contours)
	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(c, fmt.Errorf("failed to encode contours: %w", err))
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// GetTerrainOBJ handles GET /v1/terrain.obj.
func (h *Handler) GetTerrainOBJ(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "model/obj")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="terrain-%s.obj"`, res.RunID))
	c.Status(http.StatusOK)
	if err := export.WriteOBJ(c.Writer, res.Model.Terrain, res.OBJHeader()); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) generate(c *gin.Context) (*usecase.TerrainResult, bool) {
	req, err := parseTerrainRequest(c)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	res, err := h.terrainUC.Execute(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return res, true
}

// GetInverse handles GET /v1/geodesic/inverse.
func (h *Handler) GetInverse(c *gin.Context) {
	p1, err := queryPoint(c, "lat1", "lon1")
	if err != nil {
		writeError(c, err)
		return
	}
	p2, err := queryPoint(c, "lat2", "lon2")
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.geodesyUC.Inverse(p1, p2)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDirect handles GET /v1/geodesic/direct.
func (h *Handler) GetDirect(c *gin.Context) {
	p, err := queryPoint(c, "lat", "lon")
	if err != nil {
		writeError(c, err)
		return
	}
	bearing, err := requiredFloat(c, "bearing")
	if err != nil {
		writeError(c, err)
		return
	}
	distance, err := requiredFloat(c, "distance")
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.geodesyUC.Direct(p, bearing, distance)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRegion handles GET /v1/region.
func (h *Handler) GetRegion(c *gin.Context) {
	p, err := queryPoint(c, "lat", "lon")
	if err != nil {
		writeError(c, err)
		return
	}
	radius := float64(domain.DefaultRadiusM)
	if c.Query("radius") != "" {
		if radius, err = requiredFloat(c, "radius"); err != nil {
			writeError(c, err)
			return
		}
	}
	resp, err := h.geodesyUC.Region(p, radius)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": h.terrainUC.SourceName(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// parseTerrainRequest builds a terrain request from the query string.
func parseTerrainRequest(c *gin.Context) (usecase.TerrainRequest, error) {
	var req usecase.TerrainRequest

	p, err := queryPoint(c, "lat", "lon")
	if err != nil {
		return req, err
	}
	req.Lat, req.Lon = &p.LatDeg, &p.LonDeg
	req.Name = c.Query("name")

	if c.Query("radius") != "" {
		r, err := requiredFloat(c, "radius")
		if err != nil {
			return req, err
		}
		req.RadiusM = &r
	}

	style := c.Query("style")
	if style == "" {
		style = c.Query("type")
	}
	if req.Style, err = domain.ParseStyle(style); err != nil {
		return req, err
	}

	if req.North, err = parseNorth(c); err != nil {
		return req, err
	}

	if o := c.Query("origin"); o != "" {
		if req.Origin, err = parseVec3(o); err != nil {
			return req, err
		}
	}

	if c.Query("stand") != "" {
		if req.StandThicknessM, err = requiredFloat(c, "stand"); err != nil {
			return req, err
		}
	}

	if s := c.Query("contours"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, domain.NewError(domain.KindInvalidRequest, "invalid contours: %v", err)
		}
		req.NumContours = &n
	}

	if colors := c.Query("colors"); colors != "" {
		for _, col := range strings.Split(colors, ",") {
			if col = strings.TrimSpace(col); col != "" {
				req.Colors = append(req.Colors, col)
			}
		}
	}
	return req, nil
}

// parseNorth reads north as degrees or as a north_x/north_y vector.
func parseNorth(c *gin.Context) (domain.North, error) {
	if c.Query("north_x") != "" || c.Query("north_y") != "" {
		x, err := requiredFloat(c, "north_x")
		if err != nil {
			return domain.North{}, err
		}
		y, err := requiredFloat(c, "north_y")
		if err != nil {
			return domain.North{}, err
		}
		return domain.NorthFromVector(x, y)
	}
	if c.Query("north") == "" {
		return domain.North{}, nil
	}
	deg, err := requiredFloat(c, "north")
	if err != nil {
		return domain.North{}, err
	}
	return domain.NorthFromDegrees(deg)
}

func parseVec3(s string) (geometry.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geometry.Vec3{}, domain.NewError(domain.KindInvalidRequest, "origin must be x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Vec3{}, domain.NewError(domain.KindInvalidRequest, "invalid origin: %v", err)
		}
		v[i] = f
	}
	return geometry.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func queryPoint(c *gin.Context, latKey, lonKey string) (domain.GeodeticPoint, error) {
	lat, err := requiredFloat(c, latKey)
	if err != nil {
		return domain.GeodeticPoint{}, err
	}
	lon, err := requiredFloat(c, lonKey)
	if err != nil {
		return domain.GeodeticPoint{}, err
	}
	return domain.GeodeticPoint{LatDeg: lat, LonDeg: lon}, nil
}

func requiredFloat(c *gin.Context, key string) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return 0, domain.NewError(domain.KindInvalidRequest, "%s parameter is required", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.NewError(domain.KindInvalidRequest, "invalid %s: %v", key, err)
	}
	return v, nil
}

// statusFor maps an error kind to an HTTP status code.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidRadius, domain.KindInvalidAngle, domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindRadiusTooLarge, domain.KindUnsupportedLocation, domain.KindOriginOutsideTerrain:
		return http.StatusUnprocessableEntity
	case domain.KindDownloadFailed:
		return http.StatusBadGateway
	case domain.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"error", "kind"[, "corrected_radius_m"]}.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	body := gin.H{"error": err.Error(), "kind": kind.String()}

	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindRadiusTooLarge {
		body["corrected_radius_m"] = de.CorrectedRadiusM
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		body["error"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}
