package physics

import "github.com/pkg/errors"

// GrooveJoint lets the anchor on body B slide along a groove fixed to body A.
type GrooveJoint struct {
	*Constraint

	GrooveA, GrooveB Vector
	AnchorB          Vector

	grooveN  Vector
	grooveTn Vector
	clamp    float64
	r1, r2   Vector
	k        Mat2x2

	jAcc, bias Vector
}

// NewGrooveJoint takes the groove endpoints in body A coordinates and the anchor in body B coordinates.
func NewGrooveJoint(a, b *Body, grooveA, grooveB, anchorB Vector) (*Constraint, error) {
	if grooveA.Near(grooveB, 1e-9) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "groove %v to %v has no length", grooveA, grooveB)
	}
	joint := &GrooveJoint{
		GrooveA: grooveA,
		GrooveB: grooveB,
		AnchorB: anchorB,
		grooveN: grooveB.Sub(grooveA).Normalize().Perp(),
	}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	return constraint, nil
}

func (joint *GrooveJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	ta := a.transform.Point(joint.GrooveA)
	tb := a.transform.Point(joint.GrooveB)

	n := a.transform.Vect(joint.grooveN)
	d := ta.Dot(n)

	joint.grooveTn = n
	joint.r2 = b.transform.Vect(joint.AnchorB.Sub(b.cog))

	// position of the anchor along the groove
	td := b.p.Add(joint.r2).Cross(n)

	switch {
	case td <= ta.Cross(n):
		joint.clamp = 1
		joint.r1 = ta.Sub(a.p)
	case td >= tb.Cross(n):
		joint.clamp = -1
		joint.r1 = tb.Sub(a.p)
	default:
		joint.clamp = 0
		joint.r1 = n.Perp().Mult(-td).Add(n.Mult(d)).Sub(a.p)
	}

	joint.k = k_tensor(a, b, joint.r1, joint.r2)

	delta := b.p.Add(joint.r2).Sub(a.p.Add(joint.r1))
	joint.bias = delta.Mult(-bias_coef(joint.errorBias, dt) / dt).Clamp(joint.maxBias)
}

func (joint *GrooveJoint) ApplyCachedImpulse(dt_coef float64) {
	apply_impulses(joint.a, joint.b, joint.r1, joint.r2, joint.jAcc.Mult(dt_coef))
}

// constrain drops the component of j that would pull the anchor past an end of the groove.
func (joint *GrooveJoint) constrain(j Vector, dt float64) Vector {
	n := joint.grooveTn
	jClamp := j
	if joint.clamp*j.Cross(n) <= 0 {
		jClamp = j.Project(n)
	}
	return jClamp.Clamp(joint.maxForce * dt)
}

func (joint *GrooveJoint) ApplyImpulse(dt float64) {
	a := joint.a
	b := joint.b

	vr := relative_velocity(a, b, joint.r1, joint.r2)

	j := joint.k.Transform(joint.bias.Sub(vr))
	jOld := joint.jAcc
	joint.jAcc = joint.constrain(jOld.Add(j), dt)
	j = joint.jAcc.Sub(jOld)

	apply_impulses(a, b, joint.r1, joint.r2, j)
}

func (joint *GrooveJoint) GetImpulse() float64 {
	return joint.jAcc.Length()
}

// Anchors reports the middle of the groove for body A.
func (joint *GrooveJoint) Anchors() (Vector, Vector) {
	return joint.GrooveA.Lerp(joint.GrooveB, 0.5), joint.AnchorB
}
