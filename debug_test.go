package physics

import (
	"bytes"
	"math"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(&buf)
	t.Cleanup(func() {
		SetLogger(os.Stderr)
	})
	return &buf
}

func TestStep_WarnsNonFiniteImpulse(t *testing.T) {
	buf := captureLog(t)

	space := NewSpace()
	a, _ := addBall(t, space, Vector{0, 0}, 10, 1)
	b, _ := addBall(t, space, Vector{100, 0}, 10, 1)
	joint, err := NewDampedSpring(a, b, Vector{}, Vector{}, 100, 10, 1)
	addConstraint(t, space, joint, err)

	step(t, space, 1.0/60, 1)
	if buf.Len() != 0 {
		t.Fatalf("Expected no warnings, got %q", buf.String())
	}

	joint.Class.(*DampedSpring).SpringForceFunc = func(*DampedSpring, float64) float64 {
		return math.NaN()
	}
	step(t, space, 1.0/60, 1)
	if !strings.Contains(buf.String(), "non-finite impulse") {
		t.Errorf("Expected a non-finite impulse warning, got %q", buf.String())
	}
}

func TestStep_WarnsOnceWhenCrowded(t *testing.T) {
	buf := captureLog(t)

	space := NewSpace()
	// 50 coincident balls touch pairwise: 1225 arbiters.
	for i := 0; i < 50; i++ {
		addBall(t, space, Vector{}, 10, 1)
	}

	step(t, space, 1.0/60, 1)
	if space.ArbiterCount() <= CROWDED_ARBITER_COUNT {
		t.Fatalf("Expected more than %d arbiters, got %d", CROWDED_ARBITER_COUNT, space.ArbiterCount())
	}
	if got := strings.Count(buf.String(), "shape pairs in contact"); got != 1 {
		t.Errorf("Expected one crowding warning, got %d: %q", got, buf.String())
	}

	step(t, space, 1.0/60, 1)
	if got := strings.Count(buf.String(), "shape pairs in contact"); space.ArbiterCount() > CROWDED_ARBITER_COUNT && got != 1 {
		t.Errorf("A space that stays crowded warns once, got %d warnings", got)
	}
}
