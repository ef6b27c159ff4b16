package physics

import "math"

const INFINITY = math.MaxFloat64

// MAGIC_EPSILON is the distance under which two points are treated as coincident.
const MAGIC_EPSILON = 1e-5

// SAT_AXIS_TOLERANCE is how much larger the second shape's separation must be before
// its axis replaces the first shape's axis. Equal axes keep the first shape's.
const SAT_AXIS_TOLERANCE = 1e-6

// MAX_CONTACTS_PER_ARBITER is the most contact points a single shape pair produces.
const MAX_CONTACTS_PER_ARBITER = 2

// CROWDED_ARBITER_COUNT is the number of touching pairs above which Step logs a warning.
const CROWDED_ARBITER_COUNT = 1000

const DegreeConst = 180 / math.Pi

// Shape classes. The order matters: collision functions expect their arguments sorted by it.
const (
	SHAPE_TYPE_CIRCLE = iota
	SHAPE_TYPE_SEGMENT
	SHAPE_TYPE_POLY
	SHAPE_TYPE_NUM
)

type HashValue uint

type CollisionType uint

var WILDCARD_COLLISION_TYPE CollisionType = ^CollisionType(0)

// ShapeMassInfo stores a shape's moment per unit mass so it can be rescaled when the mass changes.
type ShapeMassInfo struct {
	m, i, area float64
	cog        Vector
}

type PointQueryInfo struct {
	// The nearest shape, nil if no shape was within range.
	Shape *Shape
	// The closest point on the shape's surface (in world space coordinates).
	Point Vector
	// The distance to the point. The distance is negative if the point is inside the shape.
	Distance float64
	// The gradient of the signed distance function.
	Gradient Vector
}

// ShapeFilter decides which shapes may collide.
type ShapeFilter struct {
	// Two objects with the same non-zero group value do not collide.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	Categories uint
	// A bitmask of user definable category types that this object collides with.
	Mask uint
}

const ALL_CATEGORIES = ^uint(0)

var SHAPE_FILTER_ALL = ShapeFilter{0, ALL_CATEGORIES, ALL_CATEGORIES}
var SHAPE_FILTER_NONE = ShapeFilter{0, ^ALL_CATEGORIES, ^ALL_CATEGORIES}

// Reject reports whether the filters forbid a collision.
func (a ShapeFilter) Reject(b ShapeFilter) bool {
	return (a.Group != 0 && a.Group == b.Group) ||
		(a.Categories&b.Mask) == 0 ||
		(b.Categories&a.Mask) == 0
}

// MomentForCircle is the moment of inertia of a hollow circle, r1 and r2 are the inner and outer radii.
// A solid disk has an inner radius of 0, giving ½mr².
func MomentForCircle(m, r1, r2 float64, offset Vector) float64 {
	return m * (0.5*(r1*r1+r2*r2) + offset.LengthSq())
}

func AreaForCircle(r1, r2 float64) float64 {
	return math.Pi * math.Abs(r1*r1-r2*r2)
}

// MomentForSegment approximates a rounded segment as a box of length len+2r and height 2r.
func MomentForSegment(m float64, a, b Vector, r float64) float64 {
	offset := a.Lerp(b, 0.5)
	length := b.Distance(a) + 2*r
	return m * ((length*length+4*r*r)/12 + offset.LengthSq())
}

func AreaForSegment(a, b Vector, r float64) float64 {
	return r * (math.Pi*r + 2*a.Distance(b))
}

// MomentForPoly is the moment of a solid polygon about offset. The radius does not contribute.
func MomentForPoly(m float64, verts []Vector, offset Vector, r float64) float64 {
	count := len(verts)
	if count == 2 {
		return MomentForSegment(m, verts[0], verts[1], 0)
	}

	var sum1, sum2 float64
	for i := 0; i < count; i++ {
		v1 := verts[i].Add(offset)
		v2 := verts[(i+1)%count].Add(offset)

		a := v2.Cross(v1)
		b := v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2)

		sum1 += a * b
		sum2 += a
	}

	return (m * sum1) / (6 * sum2)
}

// AreaForPoly returns the signed area of a polygon, positive for counter-clockwise winding,
// plus the area added by rounding it with radius r.
func AreaForPoly(verts []Vector, r float64) float64 {
	var area, perimeter float64
	count := len(verts)
	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]

		area += v1.Cross(v2)
		perimeter += v1.Distance(v2)
	}

	return r*(math.Pi*math.Abs(r)+perimeter) + area/2
}

func CentroidForPoly(verts []Vector) Vector {
	var sum float64
	var vsum Vector
	count := len(verts)

	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]
		cross := v1.Cross(v2)

		sum += cross
		vsum = vsum.Add(v1.Add(v2).Mult(cross))
	}

	return vsum.Mult(1 / (3 * sum))
}

// MomentForBox is m(w²+h²)/12 for a box centered on the body.
func MomentForBox(m, width, height float64) float64 {
	return m * (width*width + height*height) / 12
}

func MomentForBox2(m float64, box BB) float64 {
	width := box.R - box.L
	height := box.T - box.B
	offset := Vector{box.L + box.R, box.B + box.T}.Mult(0.5)

	return MomentForBox(m, width, height) + m*offset.LengthSq()
}
