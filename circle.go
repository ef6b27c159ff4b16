package physics

import "github.com/pkg/errors"

type Circle struct {
	*Shape
	c, tc Vector
	r     float64
}

// NewCircle creates a solid circle attached to body, centered at offset in body coordinates.
func NewCircle(body *Body, radius float64, offset Vector) (*Shape, error) {
	if err := checkShapeBody(body); err != nil {
		return nil, err
	}
	if !(radius > 0) || !isFinite(radius) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "circle radius %v must be positive", radius)
	}
	if !offset.IsFinite() {
		return nil, errors.Wrapf(ErrInvalidGeometry, "circle offset %v is not finite", offset)
	}

	circle := &Circle{
		c: offset,
		r: radius,
	}
	circle.Shape = newShape(circle, body, CircleShapeMassInfo(0, radius, offset))
	circle.CacheBB()
	return circle.Shape, nil
}

func CircleShapeMassInfo(mass, radius float64, center Vector) ShapeMassInfo {
	return ShapeMassInfo{
		m:    mass,
		i:    MomentForCircle(1, 0, radius, Vector{}),
		cog:  center,
		area: AreaForCircle(0, radius),
	}
}

func (circle *Circle) CacheData(transform Transform) BB {
	circle.tc = transform.Point(circle.c)
	return NewBBForCircle(circle.tc, circle.r)
}

func (*Circle) order() int {
	return SHAPE_TYPE_CIRCLE
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

func (circle *Circle) Offset() Vector {
	return circle.c
}

// TransformC is the world space center.
func (circle *Circle) TransformC() Vector {
	return circle.tc
}

func (circle *Circle) PointQuery(p Vector, info *PointQueryInfo) {
	delta := p.Sub(circle.tc)
	d := delta.Length()
	r := circle.r

	info.Shape = circle.Shape
	info.Distance = d - r

	if d > MAGIC_EPSILON {
		info.Gradient = delta.Mult(1 / d)
	} else {
		info.Gradient = Vector{0, 1}
	}
	info.Point = circle.tc.Add(info.Gradient.Mult(r))
}
