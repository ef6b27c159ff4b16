package physics

import (
	"fmt"
	"math"
)

// Vector is a point or direction in world units. Methods never modify the receiver.
type Vector struct {
	X, Y float64
}

func (v Vector) String() string {
	return fmt.Sprintf("%f,%f", v.X, v.Y)
}

func (v Vector) Equal(other Vector) bool {
	return v == other
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

func (v Vector) Mult(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s}
}

func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the signed area of the parallelogram spanned by v and other,
// positive when other is counter-clockwise from v.
func (v Vector) Cross(other Vector) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perp is v turned a quarter counter-clockwise. r.Perp().Mult(w) is the velocity of
// a point at offset r on a body spinning at w.
func (v Vector) Perp() Vector {
	return Vector{X: -v.Y, Y: v.X}
}

// ReversePerp is v turned a quarter clockwise.
func (v Vector) ReversePerp() Vector {
	return Vector{X: v.Y, Y: -v.X}
}

// Project is the component of v along other.
func (v Vector) Project(other Vector) Vector {
	return other.Mult(v.Dot(other) / other.LengthSq())
}

// ForAngle is the unit vector at the given angle in radians, the rotation a body at that angle applies.
func ForAngle(radians float64) Vector {
	return Vector{X: math.Cos(radians), Y: math.Sin(radians)}
}

func (v Vector) ToAngle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate turns v by the angle of rot and scales it by rot's length.
func (v Vector) Rotate(rot Vector) Vector {
	return Vector{
		X: v.X*rot.X - v.Y*rot.Y,
		Y: v.X*rot.Y + v.Y*rot.X,
	}
}

// Unrotate undoes Rotate for a unit rot.
func (v Vector) Unrotate(rot Vector) Vector {
	return Vector{
		X: v.X*rot.X + v.Y*rot.Y,
		Y: v.Y*rot.X - v.X*rot.Y,
	}
}

func (v Vector) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Lerp moves from v towards other, t=0 gives v and t=1 gives other.
func (v Vector) Lerp(other Vector, t float64) Vector {
	return v.Add(other.Sub(v).Mult(t))
}

// Normalize returns v scaled to length 1, or the zero vector unchanged.
func (v Vector) Normalize() Vector {
	length := v.Length()
	if length == 0 {
		return Vector{}
	}
	return v.Mult(1 / length)
}

// Clamp shortens v to at most length.
func (v Vector) Clamp(length float64) Vector {
	if v.LengthSq() <= length*length {
		return v
	}
	return v.Normalize().Mult(length)
}

func (v Vector) Distance(other Vector) float64 {
	return v.Sub(other).Length()
}

func (v Vector) DistanceSq(other Vector) float64 {
	return v.Sub(other).LengthSq()
}

// Near reports whether other is closer than d.
func (v Vector) Near(other Vector, d float64) bool {
	return v.DistanceSq(other) < d*d
}

// IsFinite is false when either component is NaN or infinite.
func (v Vector) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// ClosestPointOnSegment projects p onto the segment ab.
func (p Vector) ClosestPointOnSegment(a, b Vector) Vector {
	ab := b.Sub(a)
	lengthSq := ab.LengthSq()
	if lengthSq == 0 {
		return a
	}
	return a.Add(ab.Mult(Clamp01(p.Sub(a).Dot(ab) / lengthSq)))
}

func Clamp(f, min, max float64) float64 {
	return math.Min(math.Max(f, min), max)
}

func Clamp01(f float64) float64 {
	return Clamp(f, 0, 1)
}

func Lerp(f1, f2, t float64) float64 {
	return f1 + (f2-f1)*t
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
