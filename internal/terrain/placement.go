package terrain

import (
	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/geometry"
)

// Placement moves a terrain from its construction frame to the caller's
// origin and north.
type Placement struct {
	LocationPoint geometry.Vec3
	Origin        geometry.Vec3
	North         domain.North
}

// Matrix returns the composed transform: translate the location point onto
// the origin, undo the construction scale about the origin, then rotate
// clockwise by the north angle about the vertical axis through the origin.
func (p Placement) Matrix() geometry.Matrix4 {
	return geometry.Translation(p.Origin.Sub(p.LocationPoint)).
		Then(geometry.ScaleAbout(p.Origin, 1/ScaleFactor)).
		Then(geometry.RotationZ(-p.North.ClockwiseRad, p.Origin))
}

// ApplyMesh transforms m in place; nil meshes are skipped.
func (p Placement) ApplyMesh(m *geometry.Mesh) {
	if m == nil {
		return
	}
	m.Transform(p.Matrix())
}

// ApplyContours returns transformed copies of the contour levels. Levels
// without lines are dropped.
func (p Placement) ApplyContours(levels []ContourLevel) []ContourLevel {
	t := p.Matrix()
	out := make([]ContourLevel, 0, len(levels))
	for _, lvl := range levels {
		if len(lvl.Lines) == 0 {
			continue
		}
		placed := ContourLevel{
			Z:     t.Apply(geometry.Vec3{Z: lvl.Z}).Z,
			Lines: make([]geometry.Polyline, 0, len(lvl.Lines)),
		}
		for _, l := range lvl.Lines {
			if len(l.Points) == 0 {
				continue
			}
			placed.Lines = append(placed.Lines, l.Transform(t))
		}
		out = append(out, placed)
	}
	return out
}
