package physics

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func addConstraint(t *testing.T, space *Space, constraint *Constraint, err error) *Constraint {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := space.AddConstraint(constraint); err != nil {
		t.Fatal(err)
	}
	return constraint
}

// pinned adds a ball pivoted to the world at its center, free only to rotate.
func pinned(t *testing.T, space *Space, pos Vector) *Body {
	t.Helper()
	body, _ := addBall(t, space, pos, 10, 1)
	joint, err := NewPivotJoint(space.StaticBody, body, pos)
	addConstraint(t, space, joint, err)
	return body
}

func TestConstraint_Bodies(t *testing.T) {
	body := NewBody(1, 1)
	if _, err := NewPivotJoint(nil, body, Vector{}); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration for a nil body, got %v", err)
	}
	if _, err := NewPivotJoint(body, body, Vector{}); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration for a body linked to itself, got %v", err)
	}

	space := NewSpace()
	joint, err := NewPivotJoint(space.StaticBody, body, Vector{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := space.AddConstraint(joint); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("Bodies must be in the space first, got %v", err)
	}

	if err := joint.SetMaxForce(-1); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected an error for a negative max force, got %v", err)
	}
	if err := joint.SetErrorBias(2); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected an error for an error bias above 1, got %v", err)
	}
}

func TestPivotJoint_Pendulum(t *testing.T) {
	space := NewSpace()
	space.SetGravity(Vector{0, -981})

	bob, _ := addBall(t, space, Vector{100, 0}, 10, 5)
	joint, err := NewPivotJoint2(space.StaticBody, bob, Vector{}, Vector{-100, 0})
	addConstraint(t, space, joint, err)

	for i := 0; i < 600; i++ {
		if i == 300 {
			bob.ApplyImpulseAtWorldPoint(Vector{0, 500}, bob.Position())
		}
		step(t, space, 1.0/120, 1)

		a, b := joint.WorldAnchors()
		if d := a.Distance(b); d > 5 {
			t.Fatalf("Step %d: anchors %v apart", i, d)
		}
	}
	if bob.Position().Distance(Vector{}) > 105 {
		t.Errorf("Bob should stay on its circle, it is at %v", bob.Position())
	}
}

func TestPinJoint(t *testing.T) {
	space := NewSpace()
	space.SetGravity(Vector{0, -981})
	bob, _ := addBall(t, space, Vector{0, -50}, 5, 1)

	joint, err := NewPinJoint(space.StaticBody, bob, Vector{}, Vector{})
	addConstraint(t, space, joint, err)
	if pin := joint.Class.(*PinJoint); pin.Dist != 50 {
		t.Errorf("Expected distance 50, got %v", pin.Dist)
	}

	bob.SetVelocity(100, 0)
	for i := 0; i < 300; i++ {
		step(t, space, 1.0/60, 1)
		a, b := joint.WorldAnchors()
		if d := a.Distance(b); math.Abs(d-50) > 1 {
			t.Fatalf("Step %d: pin length %v", i, d)
		}
	}
}

func TestPinJoint_CoincidentAnchors(t *testing.T) {
	space := NewSpace()
	space.SetGravity(Vector{0, -981})
	bob, _ := addBall(t, space, Vector{100, 0}, 10, 5)

	joint, err := NewPinJoint(space.StaticBody, bob, Vector{100, 0}, Vector{})
	addConstraint(t, space, joint, err)
	if pin := joint.Class.(*PinJoint); pin.Dist != 0 {
		t.Errorf("Expected distance 0, got %v", pin.Dist)
	}

	for i := 0; i < 600; i++ {
		if i == 300 {
			bob.ApplyImpulseAtWorldPoint(Vector{0, 500}, bob.Position())
		}
		step(t, space, 1.0/120, 1)

		a, b := joint.WorldAnchors()
		if d := a.Distance(b); d > 1 {
			t.Fatalf("Step %d: anchors %v apart", i, d)
		}
	}
	if joint.Impulse() == 0 {
		t.Error("The joint should be holding the bob up against gravity")
	}
}

func TestSlideJoint(t *testing.T) {
	if _, err := NewSlideJoint(NewBody(1, 1), NewBody(1, 1), Vector{}, Vector{}, 10, 5); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration for min > max, got %v", err)
	}

	space := NewSpace()
	space.SetGravity(Vector{0, -981})
	bob, _ := addBall(t, space, Vector{0, -20}, 5, 1)
	joint, err := NewSlideJoint(space.StaticBody, bob, Vector{}, Vector{}, 10, 40)
	addConstraint(t, space, joint, err)

	step(t, space, 1.0/60, 120)
	a, b := joint.WorldAnchors()
	if d := a.Distance(b); math.Abs(d-40) > 1 {
		t.Errorf("Bob should hang at the max length, got %v", d)
	}
}

func TestDampedSpring(t *testing.T) {
	if _, err := NewDampedSpring(NewBody(1, 1), NewBody(1, 1), Vector{}, Vector{}, 10, -1, 0); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration for negative stiffness, got %v", err)
	}

	space := NewSpace()
	a, _ := addBall(t, space, Vector{0, 0}, 5, 1)
	b, _ := addBall(t, space, Vector{100, 0}, 5, 1)
	spring, err := NewDampedSpring(a, b, Vector{}, Vector{}, 50, 100, 5)
	addConstraint(t, space, spring, err)

	step(t, space, 1.0/60, 600)
	if d := a.Position().Distance(b.Position()); math.Abs(d-50) > 1 {
		t.Errorf("Spring should settle at its rest length, got %v", d)
	}
	if c := a.Position().Lerp(b.Position(), 0.5); !c.Near(Vector{50, 0}, 1e-6) {
		t.Errorf("Internal forces do not move the center of mass, got %v", c)
	}
}

func TestGrooveJoint(t *testing.T) {
	if _, err := NewGrooveJoint(NewBody(1, 1), NewBody(1, 1), Vector{1, 1}, Vector{1, 1}, Vector{}); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration for an empty groove, got %v", err)
	}

	space := NewSpace()
	space.SetGravity(Vector{0, -981})
	bead, _ := addBall(t, space, Vector{}, 5, 1)
	joint, err := NewGrooveJoint(space.StaticBody, bead, Vector{-50, 0}, Vector{50, 0}, Vector{})
	addConstraint(t, space, joint, err)

	bead.SetVelocity(200, 0)
	step(t, space, 1.0/60, 120)

	p := bead.Position()
	if math.Abs(p.Y) > 1 {
		t.Errorf("Bead should stay on the groove, it is at %v", p)
	}
	if p.X > 51 || p.X < -51 {
		t.Errorf("Bead should stop at the end of the groove, it is at %v", p)
	}
}

func TestRotaryLimitJoint(t *testing.T) {
	if _, err := NewRotaryLimitJoint(NewBody(1, 1), NewBody(1, 1), 1, -1); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration, got %v", err)
	}

	space := NewSpace()
	wheel := pinned(t, space, Vector{})
	limit, err := NewRotaryLimitJoint(space.StaticBody, wheel, -1, 1)
	addConstraint(t, space, limit, err)

	wheel.SetAngularVelocity(5)
	for i := 0; i < 120; i++ {
		step(t, space, 1.0/60, 1)
		if a := wheel.Angle(); a > 1.2 || a < -1.2 {
			t.Fatalf("Step %d: angle %v is past the limit", i, a)
		}
	}
}

func TestSimpleMotor(t *testing.T) {
	space := NewSpace()
	wheel := pinned(t, space, Vector{})
	motor, err := NewSimpleMotor(space.StaticBody, wheel, math.Pi)
	addConstraint(t, space, motor, err)

	step(t, space, 1.0/60, 10)
	if w := wheel.AngularVelocity(); math.Abs(w+math.Pi) > 1e-6 {
		t.Errorf("Expected angular velocity %v, got %v", -math.Pi, w)
	}

	if _, err := NewSimpleMotor(space.StaticBody, wheel, math.Inf(1)); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration, got %v", err)
	}
}

func TestGearJoint(t *testing.T) {
	space := NewSpace()
	a := pinned(t, space, Vector{0, 0})
	b := pinned(t, space, Vector{50, 0})
	gear, err := NewGearJoint(a, b, 0, 2)
	addConstraint(t, space, gear, err)

	a.SetAngularVelocity(4)
	step(t, space, 1.0/60, 60)
	if wa, wb := a.AngularVelocity(), b.AngularVelocity(); math.Abs(wa-2*wb) > 0.05 {
		t.Errorf("Expected a to spin twice as fast as b, got %v and %v", wa, wb)
	}

	if _, err := NewGearJoint(a, b, 0, 0); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration, got %v", err)
	}
}

func TestRatchetJoint(t *testing.T) {
	space := NewSpace()
	wheel := pinned(t, space, Vector{})
	ratchet, err := NewRatchetJoint(space.StaticBody, wheel, 0, math.Pi/2)
	addConstraint(t, space, ratchet, err)

	// turning forward is free
	wheel.SetAngularVelocity(3)
	step(t, space, 1.0/60, 40)
	if wheel.Angle() < 1.9 {
		t.Errorf("Ratchet should let the wheel turn forward, angle %v", wheel.Angle())
	}

	// turning back is caught at the last click
	wheel.SetAngularVelocity(-3)
	step(t, space, 1.0/60, 60)
	if wheel.Angle() < math.Pi/2-0.2 {
		t.Errorf("Ratchet should stop the wheel at %v, angle %v", math.Pi/2, wheel.Angle())
	}

	if _, err := NewRatchetJoint(space.StaticBody, wheel, 0, 0); !errors.Is(err, ErrInvalidConstraintConfiguration) {
		t.Errorf("Expected ErrInvalidConstraintConfiguration, got %v", err)
	}
}

func TestDampedRotarySpring(t *testing.T) {
	space := NewSpace()
	wheel := pinned(t, space, Vector{})
	wheel.SetAngle(1)
	spring, err := NewDampedRotarySpring(space.StaticBody, wheel, 0, 5000, 100)
	addConstraint(t, space, spring, err)

	step(t, space, 1.0/60, 600)
	if a := wheel.Angle(); math.Abs(a) > 0.05 {
		t.Errorf("Spring should return the wheel to its rest angle, got %v", a)
	}
}

func TestConstraint_CollideBodies(t *testing.T) {
	space := NewSpace()
	a, _ := addBall(t, space, Vector{0, 0}, 10, 1)
	b, _ := addBall(t, space, Vector{5, 0}, 10, 1)
	joint, err := NewPivotJoint(a, b, Vector{2.5, 0})
	addConstraint(t, space, joint, err)
	joint.SetCollideBodies(false)

	step(t, space, 1.0/60, 1)
	if space.ArbiterCount() != 0 {
		t.Errorf("Linked bodies should not collide, got %d arbiters", space.ArbiterCount())
	}
}

func TestConstraint_RemovedBody(t *testing.T) {
	space := NewSpace()
	a, _ := addBall(t, space, Vector{0, 0}, 10, 1)
	b, _ := addBall(t, space, Vector{50, 0}, 10, 1)
	joint, err := NewPinJoint(a, b, Vector{}, Vector{})
	addConstraint(t, space, joint, err)

	if err := space.RemoveBody(b); err != nil {
		t.Fatal(err)
	}
	if err := space.Step(1.0 / 60); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("Expected ErrDanglingReference for a joint to a removed body, got %v", err)
	}

	if err := space.RemoveConstraint(joint); err != nil {
		t.Fatal(err)
	}
	if err := space.Step(1.0 / 60); err != nil {
		t.Errorf("Step should succeed once the joint is gone, got %v", err)
	}
	if err := space.RemoveConstraint(joint); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("Expected ErrDanglingReference removing twice, got %v", err)
	}
}

func TestConstraint_StaticOnlySkipped(t *testing.T) {
	space := NewSpace()
	body := NewStaticBody()
	body.SetPosition(Vector{10, 0})
	if _, err := space.AddBody(body); err != nil {
		t.Fatal(err)
	}
	joint, err := NewPinJoint(space.StaticBody, body, Vector{}, Vector{})
	addConstraint(t, space, joint, err)

	step(t, space, 1.0/60, 5)
	if body.Position() != (Vector{10, 0}) {
		t.Errorf("Static body moved to %v", body.Position())
	}
}
