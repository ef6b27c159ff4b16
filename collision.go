package physics

import "math"

// PARALLEL_TOLERANCE is the sine of the angle under which two segments count as parallel
// and produce a contact at each end of their overlap.
const PARALLEL_TOLERANCE = 1e-3

// CollisionInfo is the narrow phase result for one shape pair.
type CollisionInfo struct {
	a, b *Shape
	// Unit normal pointing from a to b.
	n     Vector
	count int
	arr   [MAX_CONTACTS_PER_ARBITER]Contact
}

func (info *CollisionInfo) Normal() Vector {
	return info.n
}

func (info *CollisionInfo) Count() int {
	return info.count
}

// Points returns the surface point on a, the surface point on b and their signed distance along the normal.
func (info *CollisionInfo) Points(i int) (Vector, Vector, float64) {
	con := &info.arr[i]
	return con.r1, con.r2, con.r2.Sub(con.r1).Dot(info.n)
}

// PushContact adds a contact. p1 is on the surface of a, p2 on the surface of b, both in world coordinates.
func (info *CollisionInfo) PushContact(p1, p2 Vector) {
	if info.count >= MAX_CONTACTS_PER_ARBITER {
		warn("dropping a contact between %v and %v", info.a, info.b)
		return
	}

	con := &info.arr[info.count]
	con.r1 = p1
	con.r2 = p2

	info.count++
}

type CollisionFunc func(a, b *Shape, info *CollisionInfo)

// Indexed by a.Order() + b.Order()*SHAPE_TYPE_NUM.
var collisionFuncs = [SHAPE_TYPE_NUM * SHAPE_TYPE_NUM]CollisionFunc{
	CircleToCircle, CollisionError, CollisionError,
	CircleToSegment, SegmentToSegment, CollisionError,
	CircleToPoly, SegmentToPoly, PolyToPoly,
}

// Collide runs the narrow phase on two shapes. The result may have its shapes swapped so that
// they are ordered circle, segment, poly.
func Collide(a, b *Shape) CollisionInfo {
	// Their shape types must be in order.
	if a.Order() > b.Order() {
		a, b = b, a
	}
	info := CollisionInfo{a: a, b: b}
	collisionFuncs[a.Order()+b.Order()*SHAPE_TYPE_NUM](a, b, &info)
	return info
}

func CollisionError(a, b *Shape, info *CollisionInfo) {
	panic("physics: collision shape types are not sorted")
}

// circle2circleQuery collides two discs. fallback is the normal used when the centers coincide.
func circle2circleQuery(p1, p2 Vector, r1, r2 float64, fallback Vector, info *CollisionInfo) {
	mindist := r1 + r2
	delta := p2.Sub(p1)
	distsq := delta.LengthSq()

	if distsq < mindist*mindist {
		dist := math.Sqrt(distsq)
		var n Vector
		if dist > MAGIC_EPSILON {
			n = delta.Mult(1.0 / dist)
		} else {
			n = fallback
		}
		info.n = n
		info.PushContact(p1.Add(n.Mult(r1)), p2.Add(n.Mult(-r2)))
	}
}

func CircleToCircle(a, b *Shape, info *CollisionInfo) {
	c1 := a.Class.(*Circle)
	c2 := b.Class.(*Circle)
	circle2circleQuery(c1.tc, c2.tc, c1.r, c2.r, Vector{0, 1}, info)
}

func CircleToSegment(a, b *Shape, info *CollisionInfo) {
	circle := a.Class.(*Circle)
	segment := b.Class.(*Segment)

	center := circle.tc
	closest := center.ClosestPointOnSegment(segment.ta, segment.tb)

	// Push the circle away from the side of the segment it is on.
	fallback := segment.tn
	if segment.tn.Dot(center.Sub(segment.ta)) > 0 {
		fallback = segment.tn.Neg()
	}
	circle2circleQuery(center, closest, circle.r, segment.r, fallback, info)
}

func SegmentToSegment(a, b *Shape, info *CollisionInfo) {
	seg1 := a.Class.(*Segment)
	seg2 := b.Class.(*Segment)

	mindist := seg1.r + seg2.r
	p1, p2 := closestPointsOnSegments(seg1.ta, seg1.tb, seg2.ta, seg2.tb)
	delta := p2.Sub(p1)
	distsq := delta.LengthSq()
	if distsq >= mindist*mindist {
		return
	}

	var n Vector
	if dist := math.Sqrt(distsq); dist > MAGIC_EPSILON {
		n = delta.Mult(1.0 / dist)
	} else {
		// The segments cross, separate along the first one's normal.
		n = seg1.tn
		if n.Dot(seg2.ta.Lerp(seg2.tb, 0.5).Sub(seg1.ta)) < 0 {
			n = n.Neg()
		}
	}
	info.n = n

	// Overlapping parallel segments touch along a span, report both ends of it.
	d1 := seg1.tb.Sub(seg1.ta)
	d2 := seg2.tb.Sub(seg2.ta)
	t1 := d1.Normalize()
	if math.Abs(t1.Cross(d2.Normalize())) < PARALLEL_TOLERANCE {
		s2a := t1.Dot(seg2.ta.Sub(seg1.ta))
		s2b := t1.Dot(seg2.tb.Sub(seg1.ta))
		lo := math.Max(0, math.Min(s2a, s2b))
		hi := math.Min(d1.Length(), math.Max(s2a, s2b))
		if hi-lo > MAGIC_EPSILON {
			for _, s := range [2]float64{lo, hi} {
				q1 := seg1.ta.Add(t1.Mult(s))
				q2 := q1.ClosestPointOnSegment(seg2.ta, seg2.tb)
				if q2.Sub(q1).Dot(n) < mindist {
					info.PushContact(q1.Add(n.Mult(seg1.r)), q2.Add(n.Mult(-seg2.r)))
				}
			}
			if info.count > 0 {
				return
			}
		}
	}

	info.PushContact(p1.Add(n.Mult(seg1.r)), p2.Add(n.Mult(-seg2.r)))
}

// closestPointsOnSegments returns the closest pair of points on segments p1q1 and p2q2.
func closestPointsOnSegments(p1, q1, p2, q2 Vector) (Vector, Vector) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= MAGIC_EPSILON && e <= MAGIC_EPSILON:
		return p1, p2
	case a <= MAGIC_EPSILON:
		t = Clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= MAGIC_EPSILON {
			s = Clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			if denom := a*e - b*b; denom != 0 {
				s = Clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = Clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = Clamp01((b - c) / a)
			}
		}
	}
	return p1.Add(d1.Mult(s)), p2.Add(d2.Mult(t))
}

func CircleToPoly(a, b *Shape, info *CollisionInfo) {
	circle := a.Class.(*Circle)
	poly := b.Class.(*PolyShape)

	c := circle.tc
	mindist := circle.r + poly.r
	planes := poly.planes
	count := poly.count

	// Find the face of least penetration.
	sep := -INFINITY
	face := 0
	for i := 0; i < count; i++ {
		s := planes[i].n.Dot(c.Sub(planes[i].v0))
		if s > mindist {
			return
		}
		if s > sep {
			sep = s
			face = i
		}
	}

	n := planes[face].n
	v1 := planes[(face-1+count)%count].v0
	v2 := planes[face].v0

	// The center is inside the polygon's core: push it out through the nearest face.
	if sep < MAGIC_EPSILON {
		info.n = n.Neg()
		info.PushContact(c.Add(n.Mult(-circle.r)), c.Add(n.Mult(poly.r-sep)))
		return
	}

	if c.Sub(v1).Dot(v2.Sub(v1)) <= 0 {
		circle2circleQuery(c, v1, circle.r, poly.r, n.Neg(), info)
		return
	}
	if c.Sub(v2).Dot(v1.Sub(v2)) <= 0 {
		circle2circleQuery(c, v2, circle.r, poly.r, n.Neg(), info)
		return
	}

	info.n = n.Neg()
	info.PushContact(c.Add(n.Mult(-circle.r)), c.Add(n.Mult(poly.r-sep)))
}

// satPoly is a convex outline for the separating axis test. Segments are two sided polygons.
type satPoly struct {
	planes []SplittingPlane
	r      float64
}

func (p satPoly) count() int {
	return len(p.planes)
}

// Edge is a polygon face: the vertices a and b with outward normal n.
type Edge struct {
	a, b, n Vector
}

func (p satPoly) edge(i int) Edge {
	count := p.count()
	return Edge{p.planes[(i-1+count)%count].v0, p.planes[i].v0, p.planes[i].n}
}

func segmentSatPoly(seg *Segment) satPoly {
	planes := seg.planes()
	return satPoly{planes[:], seg.r}
}

func polySatPoly(poly *PolyShape) satPoly {
	return satPoly{poly.planes[:poly.count], poly.r}
}

// findMaxSeparation returns the face of p1 that p2 is furthest outside of.
func findMaxSeparation(p1, p2 satPoly) (float64, int) {
	maxSep := -INFINITY
	index := 0
	for i, plane := range p1.planes {
		si := INFINITY
		for _, other := range p2.planes {
			if d := plane.n.Dot(other.v0.Sub(plane.v0)); d < si {
				si = d
			}
		}
		if si > maxSep {
			maxSep = si
			index = i
		}
	}
	return maxSep, index
}

// incidentEdge is the face of p most anti-parallel to n.
func incidentEdge(p satPoly, n Vector) Edge {
	index := 0
	minDot := INFINITY
	for i, plane := range p.planes {
		if d := n.Dot(plane.n); d < minDot {
			minDot = d
			index = i
		}
	}
	return p.edge(index)
}

// clipSegmentToLine keeps the part of the segment behind the plane normal·p = offset.
func clipSegmentToLine(vIn [2]Vector, normal Vector, offset float64) ([2]Vector, bool) {
	var vOut [2]Vector
	num := 0

	d0 := normal.Dot(vIn[0]) - offset
	d1 := normal.Dot(vIn[1]) - offset

	if d0 <= 0 {
		vOut[num] = vIn[0]
		num++
	}
	if d1 <= 0 {
		vOut[num] = vIn[1]
		num++
	}
	if d0*d1 < 0 {
		vOut[num] = vIn[0].Lerp(vIn[1], d0/(d0-d1))
		num++
	}
	return vOut, num == 2
}

// polyToPoly collides two convex outlines by clipping the incident face against the reference face.
func polyToPoly(p1, p2 satPoly, info *CollisionInfo) {
	mindist := p1.r + p2.r

	sepA, edgeA := findMaxSeparation(p1, p2)
	if sepA > mindist {
		return
	}
	sepB, edgeB := findMaxSeparation(p2, p1)
	if sepB > mindist {
		return
	}

	ref, inc := p1, p2
	face := edgeA
	flip := false
	if sepB > sepA+SAT_AXIS_TOLERANCE {
		ref, inc = p2, p1
		face = edgeB
		flip = true
	}

	refEdge := ref.edge(face)
	incEdge := incidentEdge(inc, refEdge.n)
	n := refEdge.n

	tangent := refEdge.b.Sub(refEdge.a).Normalize()
	clip, ok := clipSegmentToLine([2]Vector{incEdge.a, incEdge.b}, tangent.Neg(), -tangent.Dot(refEdge.a))
	if !ok {
		return
	}
	clip, ok = clipSegmentToLine(clip, tangent, tangent.Dot(refEdge.b))
	if !ok {
		return
	}

	if flip {
		info.n = n.Neg()
	} else {
		info.n = n
	}

	refOffset := n.Dot(refEdge.a)
	for _, cp := range clip {
		sep := n.Dot(cp) - refOffset
		if sep > mindist {
			continue
		}
		pRef := cp.Add(n.Mult(ref.r - sep))
		pInc := cp.Add(n.Mult(-inc.r))
		if flip {
			info.PushContact(pInc, pRef)
		} else {
			info.PushContact(pRef, pInc)
		}
	}
}

func SegmentToPoly(a, b *Shape, info *CollisionInfo) {
	polyToPoly(segmentSatPoly(a.Class.(*Segment)), polySatPoly(b.Class.(*PolyShape)), info)
}

func PolyToPoly(a, b *Shape, info *CollisionInfo) {
	polyToPoly(polySatPoly(a.Class.(*PolyShape)), polySatPoly(b.Class.(*PolyShape)), info)
}
