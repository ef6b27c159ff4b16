package physics

import (
	"math"

	"github.com/pkg/errors"
)

// Segment is a line segment with a thickness radius: a capsule.
type Segment struct {
	*Shape

	a, b, n    Vector
	ta, tb, tn Vector
	r          float64
}

func NewSegment(body *Body, a, b Vector, r float64) (*Shape, error) {
	if err := checkShapeBody(body); err != nil {
		return nil, err
	}
	if !a.IsFinite() || !b.IsFinite() {
		return nil, errors.Wrapf(ErrInvalidGeometry, "segment endpoints %v, %v are not finite", a, b)
	}
	if a.Near(b, MAGIC_EPSILON) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "segment endpoints %v and %v coincide", a, b)
	}
	if !(r >= 0) || !isFinite(r) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "segment radius %v must be finite and non-negative", r)
	}

	segment := &Segment{
		a: a,
		b: b,
		n: b.Sub(a).Normalize().ReversePerp(),
		r: r,
	}
	segment.Shape = newShape(segment, body, SegmentShapeMassInfo(0, a, b, r))
	segment.CacheBB()
	return segment.Shape, nil
}

func SegmentShapeMassInfo(mass float64, a, b Vector, r float64) ShapeMassInfo {
	return ShapeMassInfo{
		m:    mass,
		i:    MomentForBox(1, a.Distance(b)+2*r, 2*r),
		cog:  a.Lerp(b, 0.5),
		area: AreaForSegment(a, b, r),
	}
}

func (seg *Segment) CacheData(transform Transform) BB {
	seg.ta = transform.Point(seg.a)
	seg.tb = transform.Point(seg.b)
	seg.tn = transform.Vect(seg.n)

	l := math.Min(seg.ta.X, seg.tb.X)
	r := math.Max(seg.ta.X, seg.tb.X)
	b := math.Min(seg.ta.Y, seg.tb.Y)
	t := math.Max(seg.ta.Y, seg.tb.Y)

	rad := seg.r
	return BB{l - rad, b - rad, r + rad, t + rad}
}

func (*Segment) order() int {
	return SHAPE_TYPE_SEGMENT
}

func (seg *Segment) A() Vector {
	return seg.a
}

func (seg *Segment) B() Vector {
	return seg.b
}

// TA and TB are the world space endpoints.
func (seg *Segment) TA() Vector {
	return seg.ta
}

func (seg *Segment) TB() Vector {
	return seg.tb
}

// Normal is the world space normal, on the right of a->b.
func (seg *Segment) Normal() Vector {
	return seg.tn
}

func (seg *Segment) Radius() float64 {
	return seg.r
}

func (seg *Segment) PointQuery(p Vector, info *PointQueryInfo) {
	closest := p.ClosestPointOnSegment(seg.ta, seg.tb)

	delta := p.Sub(closest)
	d := delta.Length()
	r := seg.r

	info.Shape = seg.Shape
	info.Distance = d - r

	// Use the segment's normal if the distance is very small.
	if d > MAGIC_EPSILON {
		info.Gradient = delta.Mult(1 / d)
	} else {
		info.Gradient = seg.tn
	}
	info.Point = closest.Add(info.Gradient.Mult(r))
}

// planes views the segment as a two sided polygon for the separating axis test.
func (seg *Segment) planes() [2]SplittingPlane {
	return [2]SplittingPlane{
		{v0: seg.ta, n: seg.tn.Neg()},
		{v0: seg.tb, n: seg.tn},
	}
}
