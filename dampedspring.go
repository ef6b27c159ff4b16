package physics

import (
	"math"

	"github.com/pkg/errors"
)

type DampedSpringForceFunc func(spring *DampedSpring, dist float64) float64

// DampedSpring pulls the anchors toward RestLength apart. The spring force is applied
// once per step, the damping is solved implicitly by the iterations.
type DampedSpring struct {
	anchored
	RestLength, Stiffness, Damping float64
	SpringForceFunc                DampedSpringForceFunc

	n                Vector
	nMass            float64
	targetVrn, vCoef float64
	jAcc             float64
}

func NewDampedSpring(a, b *Body, anchorA, anchorB Vector, restLength, stiffness, damping float64) (*Constraint, error) {
	if !(restLength >= 0) || !(stiffness >= 0) || !(damping >= 0) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration,
			"spring rest length %v, stiffness %v and damping %v must be non-negative", restLength, stiffness, damping)
	}
	spring := &DampedSpring{
		anchored:        anchored{AnchorA: anchorA, AnchorB: anchorB},
		RestLength:      restLength,
		Stiffness:       stiffness,
		Damping:         damping,
		SpringForceFunc: DefaultSpringForce,
	}
	constraint, err := NewConstraint(spring, a, b)
	if err != nil {
		return nil, err
	}
	spring.Constraint = constraint
	return constraint, nil
}

// DefaultSpringForce is Hooke's law.
func DefaultSpringForce(spring *DampedSpring, dist float64) float64 {
	return (spring.RestLength - dist) * spring.Stiffness
}

func (spring *DampedSpring) PreStep(dt float64) {
	var dist float64
	spring.n, dist = spring.axis()

	k := spring.normalMass(spring.n)
	spring.nMass = 1 / k
	spring.targetVrn = 0
	spring.vCoef = 1 - math.Exp(-spring.Damping*dt*k)

	spring.jAcc = spring.SpringForceFunc(spring, dist) * dt
	spring.apply(spring.n.Mult(spring.jAcc))
}

// ApplyCachedImpulse does nothing, PreStep already applied the spring force.
func (spring *DampedSpring) ApplyCachedImpulse(dt_coef float64) {}

func (spring *DampedSpring) ApplyImpulse(dt float64) {
	vrn := spring.velocity().Dot(spring.n)

	vDamp := (spring.targetVrn - vrn) * spring.vCoef
	spring.targetVrn = vrn + vDamp

	jDamp := vDamp * spring.nMass
	spring.jAcc += jDamp
	spring.apply(spring.n.Mult(jDamp))
}

func (spring *DampedSpring) GetImpulse() float64 {
	return spring.jAcc
}
