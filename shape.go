package physics

import (
	"fmt"

	"github.com/pkg/errors"
)

// ShapeClass is implemented by the concrete shape types: *Circle, *Segment and *PolyShape.
type ShapeClass interface {
	// CacheData recomputes the world space geometry from the body transform and returns the new bounding box.
	CacheData(transform Transform) BB
	PointQuery(p Vector, info *PointQueryInfo)
	order() int
}

// Shape is the collision geometry and material of a body. Its world space geometry is always
// derived from the body's transform, it is recomputed whenever the transform changes.
type Shape struct {
	Class    ShapeClass
	space    *Space
	body     *Body
	massInfo ShapeMassInfo
	bb       BB

	// elasticity and friction
	e, u float64

	collisionType CollisionType
	filter        ShapeFilter
	color         *FColor

	UserData interface{}

	hashid HashValue
}

func newShape(class ShapeClass, body *Body, massInfo ShapeMassInfo) *Shape {
	return &Shape{
		Class:    class,
		body:     body,
		massInfo: massInfo,
		filter:   SHAPE_FILTER_ALL,
	}
}

func (s *Shape) String() string {
	return fmt.Sprintf("Shape %d (%T)", s.hashid, s.Class)
}

func (s *Shape) Order() int {
	return s.Class.order()
}

func (s *Shape) Body() *Body {
	return s.body
}

func (s *Shape) Space() *Space {
	return s.space
}

func (s *Shape) BB() BB {
	return s.bb
}

func (s *Shape) HashId() HashValue {
	return s.hashid
}

// CacheBB refreshes the world space geometry from the body's current transform.
func (s *Shape) CacheBB() BB {
	return s.Update(s.body.transform)
}

func (s *Shape) Update(transform Transform) BB {
	s.bb = s.Class.CacheData(transform)
	return s.bb
}

func (s *Shape) PointQuery(p Vector) PointQueryInfo {
	info := PointQueryInfo{nil, Vector{}, INFINITY, Vector{}}
	s.Class.PointQuery(p, &info)
	return info
}

func (s *Shape) Elasticity() float64 {
	return s.e
}

// SetElasticity sets the restitution, 0 for no bounce and 1 for a perfect bounce.
func (s *Shape) SetElasticity(e float64) error {
	if !(e >= 0 && e <= 1) {
		return errors.Wrapf(ErrInvalidGeometry, "elasticity %v is outside [0, 1]", e)
	}
	s.e = e
	return nil
}

func (s *Shape) Friction() float64 {
	return s.u
}

// SetFriction sets the Coulomb friction coefficient.
func (s *Shape) SetFriction(u float64) error {
	if !(u >= 0) || !isFinite(u) {
		return errors.Wrapf(ErrInvalidGeometry, "friction %v must be finite and non-negative", u)
	}
	s.u = u
	return nil
}

func (s *Shape) Mass() float64 {
	return s.massInfo.m
}

// SetMass sets an explicit mass for the shape, which is then used to compute the body's mass and moment.
func (s *Shape) SetMass(mass float64) error {
	if !(mass >= 0) || !isFinite(mass) {
		return errors.Wrapf(ErrInvalidGeometry, "mass %v must be finite and non-negative", mass)
	}
	s.massInfo.m = mass
	s.body.AccumulateMassFromShapes()
	return nil
}

func (s *Shape) Density() float64 {
	return s.massInfo.m / s.massInfo.area
}

// SetDensity sets the mass from the shape's area.
func (s *Shape) SetDensity(density float64) error {
	if !(density >= 0) || !isFinite(density) {
		return errors.Wrapf(ErrInvalidGeometry, "density %v must be finite and non-negative", density)
	}
	return s.SetMass(density * s.massInfo.area)
}

// Moment is the shape's moment of inertia about its own center of gravity.
func (s *Shape) Moment() float64 {
	return s.massInfo.m * s.massInfo.i
}

func (s *Shape) Area() float64 {
	return s.massInfo.area
}

// CenterOfGravity is in body local coordinates.
func (s *Shape) CenterOfGravity() Vector {
	return s.massInfo.cog
}

func (s *Shape) Filter() ShapeFilter {
	return s.filter
}

func (s *Shape) SetFilter(filter ShapeFilter) {
	s.filter = filter
}

func (s *Shape) CollisionType() CollisionType {
	return s.collisionType
}

func (s *Shape) SetCollisionType(collisionType CollisionType) {
	s.collisionType = collisionType
}

// Color returns the render tag set with SetColor, if any.
func (s *Shape) Color() (FColor, bool) {
	if s.color == nil {
		return FColor{}, false
	}
	return *s.color, true
}

func (s *Shape) SetColor(color FColor) {
	s.color = &color
}

func checkShapeBody(body *Body) error {
	if body == nil {
		return errors.Wrap(ErrDanglingReference, "shape must be attached to a body")
	}
	return nil
}
