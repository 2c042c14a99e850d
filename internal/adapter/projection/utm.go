// Package projection converts between WGS84 geographic coordinates and UTM.
package projection

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"

	"go.ngs.io/terrain-api/internal/domain"
)

// Zone is a UTM zone.
type Zone struct {
	Number int  // 1..60
	South  bool // Southern hemisphere (false northing 10 000 km).
}

// ZoneFor returns the UTM zone holding p.
func ZoneFor(p domain.GeodeticPoint) Zone {
	n := int(math.Floor((p.LonDeg+180)/6))%60 + 1
	if n <= 0 {
		n += 60
	}
	return Zone{Number: n, South: p.LatDeg < 0}
}

// EPSG returns the WGS84 / UTM EPSG code of the zone.
func (z Zone) EPSG() int {
	if z.South {
		return 32700 + z.Number
	}
	return 32600 + z.Number
}

// CentralMeridian returns the longitude of the zone's central meridian.
func (z Zone) CentralMeridian() float64 {
	return float64(z.Number)*6 - 183
}

// Proj4 returns the PROJ.4 definition of the zone.
func (z Zone) Proj4() string {
	def := fmt.Sprintf("+proj=utm +zone=%d +ellps=WGS84 +datum=WGS84 +units=m +no_defs", z.Number)
	if z.South {
		def += " +south"
	}
	return def
}

func (z Zone) String() string {
	h := "N"
	if z.South {
		h = "S"
	}
	return fmt.Sprintf("%d%s", z.Number, h)
}

// Projector converts coordinates for one UTM zone.
type Projector struct {
	zone    Zone
	forward proj.Transformer
	inverse proj.Transformer
}

// NewProjector builds the forward and inverse transforms of z.
func NewProjector(z Zone) (*Projector, error) {
	if z.Number < 1 || z.Number > 60 {
		return nil, fmt.Errorf("invalid UTM zone %d", z.Number)
	}
	geo, err := proj.Parse("+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("failed to parse geographic reference: %w", err)
	}
	utm, err := proj.Parse(z.Proj4())
	if err != nil {
		return nil, fmt.Errorf("failed to parse UTM zone %s: %w", z, err)
	}
	fwd, err := geo.NewTransform(utm)
	if err != nil {
		return nil, fmt.Errorf("failed to build forward transform: %w", err)
	}
	inv, err := utm.NewTransform(geo)
	if err != nil {
		return nil, fmt.Errorf("failed to build inverse transform: %w", err)
	}
	return &Projector{zone: z, forward: fwd, inverse: inv}, nil
}

// ForPoint returns the projector of the zone holding p.
func ForPoint(p domain.GeodeticPoint) (*Projector, error) {
	return NewProjector(ZoneFor(p))
}

// Zone returns the projector's zone.
func (p *Projector) Zone() Zone { return p.zone }

// Forward projects a geographic point to easting and northing in meters.
func (p *Projector) Forward(pt domain.GeodeticPoint) (x, y float64, err error) {
	x, y, err = p.forward(pt.LonDeg, pt.LatDeg)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to project %s: %w", pt, err)
	}
	return x, y, nil
}

// Inverse converts easting and northing back to a geographic point.
func (p *Projector) Inverse(x, y float64) (domain.GeodeticPoint, error) {
	lon, lat, err := p.inverse(x, y)
	if err != nil {
		return domain.GeodeticPoint{}, fmt.Errorf("failed to unproject (%.3f, %.3f): %w", x, y, err)
	}
	return domain.GeodeticPoint{LatDeg: lat, LonDeg: lon}, nil
}
