package physics

import (
	"math"
	"testing"
)

func TestVector_Normalize(t *testing.T) {
	v := Vector{}
	u := v.Normalize()
	if u.X != 0.0 || u.Y != 0.0 {
		t.Errorf("Expected zero vector, got %v", u)
	}

	u = Vector{3, 4}.Normalize()
	if math.Abs(u.Length()-1) > 1e-12 || !u.Near(Vector{0.6, 0.8}, 1e-12) {
		t.Errorf("Expected unit vector (0.6, 0.8), got %v", u)
	}
}

func TestVector_Cross(t *testing.T) {
	if c := (Vector{1, 0}).Cross(Vector{0, 1}); c != 1 {
		t.Errorf("Expected 1, got %v", c)
	}
	if c := (Vector{0, 1}).Cross(Vector{1, 0}); c != -1 {
		t.Errorf("Expected -1, got %v", c)
	}
}

func TestVector_Perp(t *testing.T) {
	v := Vector{2, 1}
	if p := v.Perp(); p != (Vector{-1, 2}) {
		t.Errorf("Expected (-1, 2), got %v", p)
	}
	if p := v.ReversePerp(); p != (Vector{1, -2}) {
		t.Errorf("Expected (1, -2), got %v", p)
	}
	if d := v.Dot(v.Perp()); d != 0 {
		t.Errorf("Perpendicular is not orthogonal: %v", d)
	}
}

func TestVector_Rotate(t *testing.T) {
	v := Vector{1, 0}.Rotate(ForAngle(math.Pi / 2))
	if !v.Near(Vector{0, 1}, 1e-12) {
		t.Errorf("Expected (0, 1), got %v", v)
	}
	back := v.Unrotate(ForAngle(math.Pi / 2))
	if !back.Near(Vector{1, 0}, 1e-12) {
		t.Errorf("Expected (1, 0), got %v", back)
	}
}

func TestVector_Clamp(t *testing.T) {
	v := Vector{30, 40}.Clamp(5)
	if !v.Near(Vector{3, 4}, 1e-12) {
		t.Errorf("Expected (3, 4), got %v", v)
	}
	v = Vector{1, 1}.Clamp(5)
	if v != (Vector{1, 1}) {
		t.Errorf("Short vectors are unchanged, got %v", v)
	}
}

func TestVector_ClosestPointOnSegment(t *testing.T) {
	a := Vector{0, 0}
	b := Vector{10, 0}

	for _, test := range []struct {
		p, expected Vector
	}{
		{Vector{5, 5}, Vector{5, 0}},
		{Vector{-5, 5}, Vector{0, 0}},
		{Vector{15, -3}, Vector{10, 0}},
	} {
		if got := test.p.ClosestPointOnSegment(a, b); !got.Near(test.expected, 1e-12) {
			t.Errorf("%v: expected %v, got %v", test.p, test.expected, got)
		}
	}
}

func TestVector_IsFinite(t *testing.T) {
	if !(Vector{1, 2}).IsFinite() {
		t.Error("Expected finite")
	}
	if (Vector{math.NaN(), 0}).IsFinite() || (Vector{0, math.Inf(-1)}).IsFinite() {
		t.Error("Expected not finite")
	}
}

func TestTransform_Inverse(t *testing.T) {
	transform := NewTransformRigid(Vector{3, -2}, 0.7)
	p := Vector{5, 8}
	back := transform.Inverse().Point(transform.Point(p))
	if !back.Near(p, 1e-9) {
		t.Errorf("Expected %v, got %v", p, back)
	}
	back = NewTransformRigidInverse(transform).Point(transform.Point(p))
	if !back.Near(p, 1e-9) {
		t.Errorf("Expected %v, got %v", p, back)
	}
}

func TestBB_Merge(t *testing.T) {
	a := BB{0, 0, 1, 1}
	b := BB{2, -1, 3, 0.5}
	m := a.Merge(b)
	if m != (BB{0, -1, 3, 1}) {
		t.Errorf("Unexpected merge %v", m)
	}
	if !m.Contains(a) || !m.Contains(b) {
		t.Error("Merged box must contain both boxes")
	}
	if a.Intersects(b) {
		t.Error("Boxes should not intersect")
	}
	if a.MergedArea(b) != m.Area() {
		t.Errorf("Expected merged area %v, got %v", m.Area(), a.MergedArea(b))
	}
}
