// Package geometry is the small mesh kernel the terrain pipeline builds on:
// grid meshes, interpolating surfaces, convex-solid clipping, boundary
// extraction, plane slicing, lofting and affine transforms.
package geometry

import "math"

// Vec3 is a point or vector in the local construction frame.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a x b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length.
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Dist returns the Euclidean distance between a and b.
func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Len() }

// Lerp returns a + t*(b-a).
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y), a.Z + t*(b.Z-a.Z)}
}

// Less orders points lexicographically by X, Y, Z.
func (a Vec3) Less(b Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// BBox is an axis-aligned bounding box. The zero value is not empty;
// use EmptyBBox to start accumulating.
type BBox struct {
	Min, Max Vec3
}

// EmptyBBox returns a box that any Extend call will replace.
func EmptyBBox() BBox {
	inf := math.Inf(1)
	return BBox{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// IsEmpty reports whether no point has been added.
func (b BBox) IsEmpty() bool { return b.Min.X > b.Max.X }

// Extend grows the box to contain p.
func (b BBox) Extend(p Vec3) BBox {
	return BBox{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Size returns the extent along each axis.
func (b BBox) Size() Vec3 { return b.Max.Sub(b.Min) }

// BBoxOf returns the bounding box of pts.
func BBoxOf(pts []Vec3) BBox {
	b := EmptyBBox()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}
