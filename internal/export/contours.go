// Package export writes generated terrain to interchange formats.
package export

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"go.ngs.io/terrain-api/internal/adapter/projection"
	"go.ngs.io/terrain-api/internal/terrain"
)

// GeoContour is one contour level in WGS84 longitude/latitude.
type GeoContour struct {
	ElevationM float64
	Lines      orb.MultiLineString
}

// GeodeticContours converts construction-frame contour levels back to
// geodetic coordinates through the inverse projection. originX and originY
// are the projected coordinates of the terrain center.
func GeodeticContours(levels []terrain.ContourLevel, p *projection.Projector, originX, originY float64) ([]GeoContour, error) {
	out := make([]GeoContour, 0, len(levels))
	for _, lvl := range levels {
		gc := GeoContour{ElevationM: roundToDecimal(lvl.Z/terrain.ScaleFactor, 2)}
		for _, line := range lvl.Lines {
			if line.Len() < 2 {
				continue
			}
			ls := make(orb.LineString, 0, line.Len())
			for _, pt := range line.Points {
				geo, err := p.Inverse(pt.X/terrain.ScaleFactor+originX, pt.Y/terrain.ScaleFactor+originY)
				if err != nil {
					return nil, fmt.Errorf("failed to unproject contour point: %w", err)
				}
				ls = append(ls, orb.Point{geo.LonDeg, geo.LatDeg})
			}
			if line.Closed {
				ls = append(ls, ls[0])
			}
			gc.Lines = append(gc.Lines, ls)
		}
		if len(gc.Lines) > 0 {
			out = append(out, gc)
		}
	}
	return out, nil
}

// FeatureCollection returns one MultiLineString feature per contour level
// with an elevation_m property.
func FeatureCollection(contours []GeoContour) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, c := range contours {
		f := geojson.NewFeature(c.Lines)
		f.Properties["elevation_m"] = c.ElevationM
		f.Properties["level"] = i
		fc.Append(f)
	}
	return fc
}

// DBF attribute layout. Numeric values are written right-justified and
// space-padded to the full field width.
const (
	elevWidth, elevPrecision = 12, 2
	levelWidth               = 6
)

// WriteShapefile writes the contours as a PolyLine shapefile (path plus the
// .shx and .dbf siblings) with an ELEV_M attribute.
func WriteShapefile(path string, contours []GeoContour) error {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("failed to create shapefile: %w", err)
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{
		shp.FloatField("ELEV_M", elevWidth, elevPrecision),
		shp.NumberField("LEVEL", levelWidth),
	}); err != nil {
		return fmt.Errorf("failed to set shapefile fields: %w", err)
	}

	for i, c := range contours {
		parts := make([][]shp.Point, 0, len(c.Lines))
		for _, ls := range c.Lines {
			part := make([]shp.Point, len(ls))
			for j, p := range ls {
				part[j] = shp.Point{X: p[0], Y: p[1]}
			}
			parts = append(parts, part)
		}
		row := int(w.Write(shp.NewPolyLine(parts)))
		if err := w.WriteAttribute(row, 0, fmt.Sprintf("%*.*f", elevWidth, elevPrecision, c.ElevationM)); err != nil {
			return fmt.Errorf("failed to write contour elevation: %w", err)
		}
		if err := w.WriteAttribute(row, 1, fmt.Sprintf("%*d", levelWidth, i)); err != nil {
			return fmt.Errorf("failed to write contour level: %w", err)
		}
	}
	return nil
}
