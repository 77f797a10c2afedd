// Package physics provides the lightweight vector math shared by agent
// blackboards and field geometry. It is intentionally minimal: value types,
// no allocation, no external dependencies.
package physics

import "math"

// Vec2 is a 2D point or direction in field space (meters).
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec3 is a 3D point or direction in world space (meters).
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec2{v.X / l, v.Y / l}
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// XY projects onto the ground plane.
func (v Vec3) XY() Vec2 { return Vec2{v.X, v.Y} }

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Distance3 computes Euclidean distance between two 3D points.
func Distance3(a, b Vec3) float64 { return b.Sub(a).Length() }

// Lerp interpolates between a and b; t is clamped to [0,1].
func Lerp(a, b Vec3, t float64) Vec3 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(b.Sub(a).Scale(t))
}

// MoveToward advances from a toward b by at most step, stopping exactly on b.
func MoveToward(a, b Vec3, step float64) Vec3 {
	d := b.Sub(a)
	l := d.Length()
	if l <= step || l == 0 {
		return b
	}
	return a.Add(d.Scale(step / l))
}
