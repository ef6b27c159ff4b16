package physics

// PivotJoint holds two anchors together, letting the bodies rotate about the shared point.
type PivotJoint struct {
	anchored
	lock pointLock
}

// pointLock drives the offset between two anchors to zero on both axes at once.
type pointLock struct {
	k          Mat2x2
	jAcc, bias Vector
}

func (l *pointLock) preStep(j *anchored, dt float64) {
	delta := j.update()
	l.k = k_tensor(j.a, j.b, j.r1, j.r2)
	l.bias = delta.Mult(-bias_coef(j.errorBias, dt) / dt).Clamp(j.maxBias)
}

func (l *pointLock) applyCachedImpulse(j *anchored, dt_coef float64) {
	j.apply(l.jAcc.Mult(dt_coef))
}

func (l *pointLock) applyImpulse(j *anchored, dt float64) {
	impulse := l.k.Transform(l.bias.Sub(j.velocity()))
	jOld := l.jAcc
	l.jAcc = l.jAcc.Add(impulse).Clamp(j.maxForce * dt)

	j.apply(l.jAcc.Sub(jOld))
}

// NewPivotJoint pins both bodies at a world point.
func NewPivotJoint(a, b *Body, pivot Vector) (*Constraint, error) {
	var anchorA, anchorB Vector
	if a != nil {
		anchorA = a.WorldToLocal(pivot)
	}
	if b != nil {
		anchorB = b.WorldToLocal(pivot)
	}
	return NewPivotJoint2(a, b, anchorA, anchorB)
}

// NewPivotJoint2 takes the anchors in body coordinates. If they do not coincide yet the solver pulls them together.
func NewPivotJoint2(a, b *Body, anchorA, anchorB Vector) (*Constraint, error) {
	joint := &PivotJoint{anchored: anchored{AnchorA: anchorA, AnchorB: anchorB}}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	return constraint, nil
}

func (joint *PivotJoint) PreStep(dt float64) {
	joint.lock.preStep(&joint.anchored, dt)
}

func (joint *PivotJoint) ApplyCachedImpulse(dt_coef float64) {
	joint.lock.applyCachedImpulse(&joint.anchored, dt_coef)
}

func (joint *PivotJoint) ApplyImpulse(dt float64) {
	joint.lock.applyImpulse(&joint.anchored, dt)
}

func (joint *PivotJoint) GetImpulse() float64 {
	return joint.lock.jAcc.Length()
}
