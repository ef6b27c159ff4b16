package physics

import (
	"math"

	"github.com/pkg/errors"
)

// SlideJoint is a pin joint with slack: the anchor distance may vary between Min and Max.
type SlideJoint struct {
	anchored
	Min, Max float64

	n                  Vector
	nMass, jnAcc, bias float64
}

func NewSlideJoint(a, b *Body, anchorA, anchorB Vector, min, max float64) (*Constraint, error) {
	if !(min >= 0) || !(max >= min) || !isFinite(max) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "slide joint limits [%v, %v] are invalid", min, max)
	}
	joint := &SlideJoint{
		anchored: anchored{AnchorA: anchorA, AnchorB: anchorB},
		Min:      min,
		Max:      max,
	}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	return constraint, nil
}

func (joint *SlideJoint) PreStep(dt float64) {
	n, dist := joint.axis()

	// n points the way the joint pushes, zero while slack.
	var pdist float64
	switch {
	case dist > joint.Max:
		pdist = dist - joint.Max
		joint.n = n
	case dist < joint.Min:
		pdist = joint.Min - dist
		joint.n = n.Neg()
	default:
		joint.n = Vector{}
		joint.jnAcc = 0
	}

	joint.nMass = 1 / joint.normalMass(joint.n)
	joint.bias = joint.biasFor(pdist, dt)
}

func (joint *SlideJoint) ApplyCachedImpulse(dt_coef float64) {
	joint.apply(joint.n.Mult(joint.jnAcc * dt_coef))
}

func (joint *SlideJoint) ApplyImpulse(dt float64) {
	if joint.n == (Vector{}) {
		return
	}

	vrn := joint.velocity().Dot(joint.n)

	// Slack joints only pull.
	jn := (joint.bias - vrn) * joint.nMass
	jnOld := joint.jnAcc
	joint.jnAcc = Clamp(jnOld+jn, -joint.maxForce*dt, 0)

	joint.apply(joint.n.Mult(joint.jnAcc - jnOld))
}

func (joint *SlideJoint) GetImpulse() float64 {
	return math.Abs(joint.jnAcc)
}
