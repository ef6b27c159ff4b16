package physics

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestShapeMass(t *testing.T) {
	body := NewBody(0, 0)
	circle, err := NewCircle(body, 5, Vector{0, 0})
	if err != nil {
		t.Fatal(err)
	}

	mass := 10.0
	if err := circle.SetMass(mass); err != nil {
		t.Fatal(err)
	}
	body.AddShape(circle)

	if circle.Mass() != mass {
		t.Fail()
	}
	if body.Mass() != mass {
		t.Errorf("Expected body mass %v, got %v", mass, body.Mass())
	}
	if body.Moment() != MomentForCircle(mass, 0, 5, Vector{}) {
		t.Errorf("Unexpected moment %v", body.Moment())
	}
}

func TestShapeCircleArea(t *testing.T) {
	body := NewBody(0, 0)
	circle, _ := NewCircle(body, 2, Vector{0, 0})

	if circle.Area() != 4*math.Pi {
		t.Fail()
	}
}

func TestShapeCircleDensity(t *testing.T) {
	body := NewBody(0, 0)
	circle, _ := NewCircle(body, 1, Vector{0, 0})

	if err := circle.SetMass(math.Pi); err != nil {
		t.Fatal(err)
	}

	if circle.Density() != 1.0 {
		t.Fail()
	}

	if err := circle.SetDensity(2); err != nil {
		t.Fatal(err)
	}
	if math.Abs(circle.Mass()-2*math.Pi) > 1e-12 {
		t.Errorf("Expected mass 2pi, got %v", circle.Mass())
	}
}

func TestShapeBoxMoment(t *testing.T) {
	body := NewBody(0, 0)
	box, err := NewBox(body, 40, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	body.AddShape(box)
	if err := box.SetMass(3); err != nil {
		t.Fatal(err)
	}

	if box.Area() != 800 {
		t.Errorf("Expected area 800, got %v", box.Area())
	}
	if expected := MomentForBox(3, 40, 20); math.Abs(body.Moment()-expected) > 1e-9 {
		t.Errorf("Expected moment %v, got %v", expected, body.Moment())
	}
}

func TestShapeInvalidGeometry(t *testing.T) {
	body := NewBody(0, 0)

	for name, build := range map[string]func() (*Shape, error){
		"zero radius circle": func() (*Shape, error) {
			return NewCircle(body, 0, Vector{})
		},
		"negative radius circle": func() (*Shape, error) {
			return NewCircle(body, -1, Vector{})
		},
		"NaN circle offset": func() (*Shape, error) {
			return NewCircle(body, 1, Vector{math.NaN(), 0})
		},
		"degenerate segment": func() (*Shape, error) {
			return NewSegment(body, Vector{1, 1}, Vector{1, 1}, 0)
		},
		"negative segment radius": func() (*Shape, error) {
			return NewSegment(body, Vector{0, 0}, Vector{1, 1}, -1)
		},
		"two vertex polygon": func() (*Shape, error) {
			return NewPolyShapeRaw(body, []Vector{{0, 0}, {1, 0}}, 0)
		},
		"collinear polygon": func() (*Shape, error) {
			return NewPolyShapeRaw(body, []Vector{{0, 0}, {1, 0}, {2, 0}}, 0)
		},
		"concave polygon": func() (*Shape, error) {
			return NewPolyShapeRaw(body, []Vector{{0, 0}, {4, 0}, {1, 1}, {0, 4}}, 0)
		},
		"repeated vertex": func() (*Shape, error) {
			return NewPolyShapeRaw(body, []Vector{{0, 0}, {1, 0}, {1, 0}, {0, 1}}, 0)
		},
		"infinite vertex": func() (*Shape, error) {
			return NewPolyShape(body, []Vector{{0, 0}, {math.Inf(1), 0}, {0, 1}}, NewTransformIdentity(), 0)
		},
		"zero size box": func() (*Shape, error) {
			return NewBox(body, 0, 10, 0)
		},
	} {
		if _, err := build(); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("%s: expected ErrInvalidGeometry, got %v", name, err)
		}
	}
}

func TestShapeNilBody(t *testing.T) {
	if _, err := NewCircle(nil, 1, Vector{}); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("Expected ErrDanglingReference, got %v", err)
	}
}

func TestShapeInvalidMaterial(t *testing.T) {
	shape, _ := NewCircle(NewBody(0, 0), 1, Vector{})

	if err := shape.SetElasticity(1.5); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry for elasticity, got %v", err)
	}
	if err := shape.SetFriction(-1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry for friction, got %v", err)
	}
	if err := shape.SetMass(math.NaN()); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry for mass, got %v", err)
	}
	if shape.Elasticity() != 0 || shape.Friction() != 0 || shape.Mass() != 0 {
		t.Error("Rejected values must not be stored")
	}
}

func TestPolyShapeRewindsClockwise(t *testing.T) {
	cw := []Vector{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	shape, err := NewPolyShapeRaw(NewBody(0, 0), cw, 0)
	if err != nil {
		t.Fatal(err)
	}
	poly := shape.Class.(*PolyShape)

	verts := make([]Vector, poly.Count())
	for i := range verts {
		verts[i] = poly.LocalVert(i)
	}
	if area := AreaForPoly(verts, 0); area <= 0 {
		t.Errorf("Expected counter-clockwise vertices, got %v", verts)
	}
	if shape.Area() != 1 {
		t.Errorf("Expected area 1, got %v", shape.Area())
	}
}

func TestConvexHull(t *testing.T) {
	verts := []Vector{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 0.5}}
	hull := ConvexHull(verts, 0)

	if len(hull) != 4 {
		t.Fatalf("Expected 4 hull vertices, got %v", hull)
	}
	if AreaForPoly(hull, 0) != 4 {
		t.Errorf("Expected a 2x2 counter-clockwise hull, got %v", hull)
	}
	if verts[2] != (Vector{1, 1}) {
		t.Error("ConvexHull must not modify its input")
	}

	shape, err := NewPolyShape(NewBody(0, 0), verts, NewTransformTranslate(Vector{5, 5}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if bb := shape.BB(); bb != (BB{5, 5, 7, 7}) {
		t.Errorf("Expected translated hull, got %v", bb)
	}
}

func TestShapePointQuery(t *testing.T) {
	body := NewStaticBody()
	body.SetPosition(Vector{10, 0})

	circle, _ := NewCircle(body, 2, Vector{})
	body.AddShape(circle)
	info := circle.PointQuery(Vector{15, 0})
	if math.Abs(info.Distance-3) > 1e-12 || !info.Point.Near(Vector{12, 0}, 1e-12) {
		t.Errorf("Unexpected circle query %+v", info)
	}

	box, _ := NewBox(body, 4, 4, 0)
	body.AddShape(box)
	info = box.PointQuery(Vector{10, 1})
	if math.Abs(info.Distance-(-1)) > 1e-12 {
		t.Errorf("Expected distance -1 inside the box, got %v", info.Distance)
	}
	info = box.PointQuery(Vector{10, 5})
	if math.Abs(info.Distance-3) > 1e-12 || info.Shape != box {
		t.Errorf("Unexpected box query %+v", info)
	}

	segment, _ := NewSegment(body, Vector{-5, 0}, Vector{5, 0}, 1)
	body.AddShape(segment)
	info = segment.PointQuery(Vector{10, 4})
	if math.Abs(info.Distance-3) > 1e-12 {
		t.Errorf("Expected distance 3 from the segment, got %v", info.Distance)
	}
}

func TestShapeFilterReject(t *testing.T) {
	a := ShapeFilter{Group: 1, Categories: ALL_CATEGORIES, Mask: ALL_CATEGORIES}
	if !a.Reject(a) {
		t.Error("Shapes in the same group do not collide")
	}
	b := ShapeFilter{Categories: 1, Mask: 2}
	c := ShapeFilter{Categories: 2, Mask: 2}
	if !b.Reject(c) {
		t.Error("b does not accept category 2 in both directions")
	}
	if SHAPE_FILTER_ALL.Reject(SHAPE_FILTER_ALL) {
		t.Error("The default filter accepts everything")
	}
}
