package physics

import "math"

// PinJoint keeps the anchors at the distance they had when the joint was created.
// Anchors that start out coincident stay coincident.
type PinJoint struct {
	anchored
	Dist float64

	n                  Vector
	nMass, jnAcc, bias float64

	// set when Dist is zero, a rod of no length has no axis to push along
	lock *pointLock
}

// NewPinJoint links the anchors with a massless rod. Position both bodies before calling it.
func NewPinJoint(a, b *Body, anchorA, anchorB Vector) (*Constraint, error) {
	joint := &PinJoint{anchored: anchored{AnchorA: anchorA, AnchorB: anchorB}}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint

	p1, p2 := constraint.WorldAnchors()
	joint.Dist = p1.Distance(p2)
	if joint.Dist < MAGIC_EPSILON {
		joint.Dist = 0
		joint.lock = &pointLock{}
	}
	return constraint, nil
}

func (joint *PinJoint) PreStep(dt float64) {
	if joint.lock != nil {
		joint.lock.preStep(&joint.anchored, dt)
		return
	}

	var dist float64
	joint.n, dist = joint.axis()
	joint.nMass = 1 / joint.normalMass(joint.n)
	joint.bias = joint.biasFor(dist-joint.Dist, dt)
}

func (joint *PinJoint) ApplyCachedImpulse(dt_coef float64) {
	if joint.lock != nil {
		joint.lock.applyCachedImpulse(&joint.anchored, dt_coef)
		return
	}
	joint.apply(joint.n.Mult(joint.jnAcc * dt_coef))
}

func (joint *PinJoint) ApplyImpulse(dt float64) {
	if joint.lock != nil {
		joint.lock.applyImpulse(&joint.anchored, dt)
		return
	}

	vrn := joint.velocity().Dot(joint.n)
	jnMax := joint.maxForce * dt

	jn := (joint.bias - vrn) * joint.nMass
	jnOld := joint.jnAcc
	joint.jnAcc = Clamp(jnOld+jn, -jnMax, jnMax)

	joint.apply(joint.n.Mult(joint.jnAcc - jnOld))
}

func (joint *PinJoint) GetImpulse() float64 {
	if joint.lock != nil {
		return joint.lock.jAcc.Length()
	}
	return math.Abs(joint.jnAcc)
}
