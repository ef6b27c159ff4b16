package physics

import (
	"math"
	"testing"
)

func staticAt(p Vector) *Body {
	body := NewStaticBody()
	body.SetPosition(p)
	return body
}

func circleAt(t *testing.T, p Vector, r float64) *Shape {
	t.Helper()
	shape, err := NewCircle(staticAt(p), r, Vector{})
	if err != nil {
		t.Fatal(err)
	}
	return shape
}

func boxAt(t *testing.T, p Vector, w, h float64) *Shape {
	t.Helper()
	shape, err := NewBox(staticAt(p), w, h, 0)
	if err != nil {
		t.Fatal(err)
	}
	return shape
}

func checkContacts(t *testing.T, info CollisionInfo, count int, normal Vector, distance float64) {
	t.Helper()
	if info.Count() != count {
		t.Fatalf("Expected %d contacts, got %d", count, info.Count())
	}
	if !info.Normal().Near(normal, 1e-9) {
		t.Errorf("Expected normal %v, got %v", normal, info.Normal())
	}
	for i := 0; i < info.Count(); i++ {
		_, _, d := info.Points(i)
		if math.Abs(d-distance) > 1e-9 {
			t.Errorf("Contact %d: expected distance %v, got %v", i, distance, d)
		}
	}
}

func TestCollide_CircleCircle(t *testing.T) {
	a := circleAt(t, Vector{0, 0}, 1)
	b := circleAt(t, Vector{1.5, 0}, 1)
	checkContacts(t, Collide(a, b), 1, Vector{1, 0}, -0.5)

	far := circleAt(t, Vector{3, 0}, 1)
	checkContacts(t, Collide(a, far), 0, Vector{}, 0)
}

func TestCollide_CircleConcentric(t *testing.T) {
	a := circleAt(t, Vector{0, 0}, 1)
	b := circleAt(t, Vector{0, 0}, 2)
	info := Collide(a, b)
	if info.Count() != 1 {
		t.Fatalf("Expected 1 contact, got %d", info.Count())
	}
	if n := info.Normal(); math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Expected a unit fallback normal, got %v", n)
	}
}

func TestCollide_CirclePoly(t *testing.T) {
	box := boxAt(t, Vector{0, 0}, 2, 2)
	circle := circleAt(t, Vector{0, 1.8}, 1)

	info := Collide(box, circle)
	if info.a != circle {
		t.Fatal("Collide must order the shapes circle first")
	}
	checkContacts(t, info, 1, Vector{0, -1}, -0.2)

	// Near a corner the contact is against the vertex.
	corner := circleAt(t, Vector{1.5, 1.5}, 1)
	info = Collide(corner, box)
	checkContacts(t, info, 1, Vector{-1, -1}.Normalize(), math.Sqrt(0.5)-1)

	away := circleAt(t, Vector{0, 3.1}, 1)
	checkContacts(t, Collide(away, box), 0, Vector{}, 0)
}

func TestCollide_CircleSegment(t *testing.T) {
	segment, err := NewSegment(staticAt(Vector{}), Vector{-5, 0}, Vector{5, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}

	above := circleAt(t, Vector{1, 0.75}, 1)
	checkContacts(t, Collide(segment, above), 1, Vector{0, -1}, -0.25)

	below := circleAt(t, Vector{1, -0.75}, 1)
	checkContacts(t, Collide(below, segment), 1, Vector{0, 1}, -0.25)
}

func TestCollide_PolyPoly(t *testing.T) {
	a := boxAt(t, Vector{0, 0}, 2, 2)
	b := boxAt(t, Vector{0.5, 1.9}, 2, 2)
	checkContacts(t, Collide(a, b), 2, Vector{0, 1}, -0.1)

	// Swapping the arguments flips the normal.
	checkContacts(t, Collide(b, a), 2, Vector{0, -1}, -0.1)

	c := boxAt(t, Vector{3, 0}, 2, 2)
	checkContacts(t, Collide(a, c), 0, Vector{}, 0)
}

func TestCollide_SegmentPoly(t *testing.T) {
	segment, err := NewSegment(staticAt(Vector{}), Vector{-5, 0}, Vector{5, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	box := boxAt(t, Vector{0, 0.9}, 2, 2)
	checkContacts(t, Collide(box, segment), 2, Vector{0, 1}, -0.1)
}

func TestCollide_SegmentSegmentParallel(t *testing.T) {
	a, err := NewSegment(staticAt(Vector{}), Vector{0, 0}, Vector{10, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSegment(staticAt(Vector{}), Vector{5, 1.5}, Vector{15, 1.5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	info := Collide(a, b)
	checkContacts(t, info, 2, Vector{0, 1}, -0.5)

	p1, _, _ := info.Points(0)
	p2, _, _ := info.Points(1)
	if !p1.Near(Vector{5, 1}, 1e-9) || !p2.Near(Vector{10, 1}, 1e-9) {
		t.Errorf("Expected contacts at both ends of the overlap, got %v and %v", p1, p2)
	}
}

func TestCollide_SegmentSegmentCrossing(t *testing.T) {
	a, _ := NewSegment(staticAt(Vector{}), Vector{-1, 0}, Vector{1, 0}, 0.1)
	b, _ := NewSegment(staticAt(Vector{}), Vector{0, -1}, Vector{0, 1}, 0.1)
	info := Collide(a, b)
	if info.Count() != 1 {
		t.Fatalf("Expected 1 contact, got %d", info.Count())
	}
	if n := info.Normal(); math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Expected a unit normal, got %v", n)
	}
}
