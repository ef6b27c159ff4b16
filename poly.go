package physics

import (
	"math"

	"github.com/pkg/errors"
)

// SplittingPlane is a polygon edge: v0 is the edge's end vertex and n its outward normal.
type SplittingPlane struct {
	v0, n Vector
}

// PolyShape is a convex polygon, optionally rounded by a radius.
type PolyShape struct {
	*Shape

	r float64

	count int

	// The untransformed planes are appended at the end of the transformed planes.
	planes []SplittingPlane
}

// NewPolyShape transforms verts, takes their convex hull and builds a polygon from it.
func NewPolyShape(body *Body, verts []Vector, transform Transform, radius float64) (*Shape, error) {
	hullVerts := make([]Vector, 0, len(verts))
	for _, vert := range verts {
		hullVerts = append(hullVerts, transform.Point(vert))
	}
	for _, v := range hullVerts {
		if !v.IsFinite() {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon vertex %v is not finite", v)
		}
	}
	if len(hullVerts) < 3 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "polygon needs at least 3 vertices, got %d", len(hullVerts))
	}
	return NewPolyShapeRaw(body, ConvexHull(hullVerts, 0), radius)
}

// NewPolyShapeRaw builds a polygon from verts as given. They must describe a convex polygon,
// clockwise input is rewound counter-clockwise.
func NewPolyShapeRaw(body *Body, verts []Vector, radius float64) (*Shape, error) {
	if err := checkShapeBody(body); err != nil {
		return nil, err
	}
	if !(radius >= 0) || !isFinite(radius) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "polygon radius %v must be finite and non-negative", radius)
	}
	verts, err := validatePolyVerts(verts)
	if err != nil {
		return nil, err
	}

	poly := &PolyShape{
		r: radius,
	}
	poly.Shape = newShape(poly, body, PolyShapeMassInfo(0, verts, radius))
	poly.setVerts(verts)
	poly.CacheBB()
	return poly.Shape, nil
}

// NewBox makes a w by h box centered on the body.
func NewBox(body *Body, w, h, r float64) (*Shape, error) {
	if !(w > 0 && h > 0) || !isFinite(w) || !isFinite(h) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "box size %vx%v must be positive", w, h)
	}
	hw := w / 2.0
	hh := h / 2.0
	return NewBox2(body, BB{-hw, -hh, hw, hh}, r)
}

func NewBox2(body *Body, box BB, r float64) (*Shape, error) {
	verts := []Vector{
		{box.R, box.B},
		{box.R, box.T},
		{box.L, box.T},
		{box.L, box.B},
	}
	return NewPolyShapeRaw(body, verts, r)
}

// validatePolyVerts returns a counter-clockwise copy of verts, or an error when they do not
// form a convex polygon with a non-zero area.
func validatePolyVerts(verts []Vector) ([]Vector, error) {
	count := len(verts)
	if count < 3 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "polygon needs at least 3 vertices, got %d", count)
	}
	for i, v := range verts {
		if !v.IsFinite() {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon vertex %d %v is not finite", i, v)
		}
		if v.Near(verts[(i+1)%count], MAGIC_EPSILON) {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon vertices %d and %d coincide", i, (i+1)%count)
		}
	}

	area := AreaForPoly(verts, 0)
	if math.Abs(area) < MAGIC_EPSILON {
		return nil, errors.Wrap(ErrInvalidGeometry, "polygon has zero area")
	}

	ccw := make([]Vector, count)
	if area > 0 {
		copy(ccw, verts)
	} else {
		for i, v := range verts {
			ccw[count-1-i] = v
		}
	}

	// Every turn must be to the left and the turns must add up to a single revolution.
	var turning float64
	for i := 0; i < count; i++ {
		e1 := ccw[(i+1)%count].Sub(ccw[i])
		e2 := ccw[(i+2)%count].Sub(ccw[(i+1)%count])
		cross := e1.Cross(e2)
		if cross < -MAGIC_EPSILON*e1.Length()*e2.Length() {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon is not convex at vertex %d", (i+1)%count)
		}
		turning += math.Atan2(cross, e1.Dot(e2))
	}
	if turning > 2*math.Pi+1e-6 {
		return nil, errors.Wrap(ErrInvalidGeometry, "polygon is self intersecting")
	}

	return ccw, nil
}

func PolyShapeMassInfo(mass float64, verts []Vector, r float64) ShapeMassInfo {
	centroid := CentroidForPoly(verts)
	return ShapeMassInfo{
		m:    mass,
		i:    MomentForPoly(1, verts, centroid.Neg(), r),
		cog:  centroid,
		area: AreaForPoly(verts, r),
	}
}

func (poly *PolyShape) setVerts(verts []Vector) {
	count := len(verts)
	poly.count = count
	poly.planes = make([]SplittingPlane, count*2)

	for i := 0; i < count; i++ {
		a := verts[(i-1+count)%count]
		b := verts[i]
		n := b.Sub(a).ReversePerp().Normalize()

		poly.planes[i+count].v0 = b
		poly.planes[i+count].n = n
	}
}

func (poly *PolyShape) CacheData(transform Transform) BB {
	count := poly.count
	dst := poly.planes
	src := poly.planes[count:]

	l := INFINITY
	r := -INFINITY
	b := INFINITY
	t := -INFINITY

	for i := 0; i < count; i++ {
		v := transform.Point(src[i].v0)
		n := transform.Vect(src[i].n)

		dst[i].v0 = v
		dst[i].n = n

		l = math.Min(l, v.X)
		r = math.Max(r, v.X)
		b = math.Min(b, v.Y)
		t = math.Max(t, v.Y)
	}

	radius := poly.r
	return BB{l - radius, b - radius, r + radius, t + radius}
}

func (*PolyShape) order() int {
	return SHAPE_TYPE_POLY
}

func (poly *PolyShape) Count() int {
	return poly.count
}

// Vert is the i-th vertex in world space.
func (poly *PolyShape) Vert(i int) Vector {
	return poly.planes[i].v0
}

// LocalVert is the i-th vertex in body coordinates.
func (poly *PolyShape) LocalVert(i int) Vector {
	return poly.planes[i+poly.count].v0
}

func (poly *PolyShape) Radius() float64 {
	return poly.r
}

// WorldVerts returns a copy of the world space vertices in counter-clockwise order.
func (poly *PolyShape) WorldVerts() []Vector {
	verts := make([]Vector, poly.count)
	for i := range verts {
		verts[i] = poly.planes[i].v0
	}
	return verts
}

func (poly *PolyShape) PointQuery(p Vector, info *PointQueryInfo) {
	count := poly.count
	planes := poly.planes
	r := poly.r

	v0 := planes[count-1].v0
	minDist := INFINITY
	closestPoint := Vector{}
	closestNormal := Vector{}
	outside := false

	for i := 0; i < count; i++ {
		v1 := planes[i].v0
		if !outside {
			outside = planes[i].n.Dot(p.Sub(v1)) > 0
		}

		closest := p.ClosestPointOnSegment(v0, v1)

		dist := p.Distance(closest)
		if dist < minDist {
			minDist = dist
			closestPoint = closest
			closestNormal = planes[i].n
		}

		v0 = v1
	}

	var dist float64
	if outside {
		dist = minDist
	} else {
		dist = -minDist
	}
	g := closestNormal
	if minDist > MAGIC_EPSILON {
		g = p.Sub(closestPoint).Mult(1.0 / dist)
	}

	info.Shape = poly.Shape
	info.Point = closestPoint.Add(g.Mult(r))
	info.Distance = dist - r
	info.Gradient = g
}

// ConvexHull returns the convex hull of verts using QuickHull. Points within tol of
// a hull edge are dropped. The input slice is not modified.
func ConvexHull(verts []Vector, tol float64) []Vector {
	count := len(verts)
	result := make([]Vector, count)
	copy(result, verts)
	if count < 3 {
		return result
	}

	start, end := LoopIndexes(result)
	if start == end {
		return result[:1]
	}

	result[0], result[start] = result[start], result[0]
	if end == 0 {
		result[1], result[start] = result[start], result[1]
	} else {
		result[1], result[end] = result[end], result[1]
	}

	a := result[0]
	b := result[1]

	n := QHullReduce(tol, result[2:], count-2, a, b, a, result[1:]) + 1
	return result[:n]
}

// LoopIndexes finds the lowest-leftmost and highest-rightmost points.
func LoopIndexes(verts []Vector) (int, int) {
	start := 0
	end := 0

	min := verts[0]
	max := min

	for i, v := range verts {
		if v.X < min.X || (v.X == min.X && v.Y < min.Y) {
			min = v
			start = i
		} else if v.X > max.X || (v.X == max.X && v.Y > max.Y) {
			max = v
			end = i
		}
	}

	return start, end
}

func QHullReduce(tol float64, verts []Vector, count int, a, pivot, b Vector, result []Vector) int {
	if count < 0 {
		return 0
	}

	if count == 0 {
		result[0] = pivot
		return 1
	}

	leftCount := QHullPartition(verts, count, a, pivot, tol)
	index := QHullReduce(tol, verts[1:], leftCount-1, a, verts[0], pivot, result)

	result[index] = pivot
	index++

	rightCount := QHullPartition(verts[leftCount:], count-leftCount, pivot, b, tol)

	// verts[leftCount] does not exist when nothing is right of the pivot.
	if rightCount == 0 {
		return index
	}

	return index + QHullReduce(tol, verts[leftCount+1:], rightCount-1, pivot, verts[leftCount], b, result[index:])
}

func QHullPartition(verts []Vector, count int, a, b Vector, tol float64) int {
	if count == 0 {
		return 0
	}

	max := 0.0
	pivot := 0

	delta := b.Sub(a)
	valueTol := tol * delta.Length()

	head := 0
	for tail := count - 1; head <= tail; {
		value := verts[head].Sub(a).Cross(delta)
		if value > valueTol {
			if value > max {
				max = value
				pivot = head
			}

			head++
		} else {
			verts[head], verts[tail] = verts[tail], verts[head]
			tail--
		}
	}

	// move the new pivot to the front if it's not already there.
	if pivot != 0 {
		verts[0], verts[pivot] = verts[pivot], verts[0]
	}
	return head
}
