package physics

import (
	"math"

	"github.com/pkg/errors"
)

// The joints in this file only act on the relative angle of the two bodies.

// rotary reports the centres of gravity as anchors so the joints can be drawn.
type rotary struct {
	*Constraint
}

func (r rotary) Anchors() (Vector, Vector) {
	return r.a.cog, r.b.cog
}

func apply_angular_impulse(a, b *Body, j float64) {
	a.w -= j * a.i_inv
	b.w += j * b.i_inv
}

func angular_mass(a, b *Body) float64 {
	return 1.0 / (a.i_inv + b.i_inv)
}

// RotaryLimitJoint keeps the angle of B relative to A between Min and Max.
type RotaryLimitJoint struct {
	rotary

	Min, Max float64

	iSum, bias, jAcc float64
}

func NewRotaryLimitJoint(a, b *Body, min, max float64) (*Constraint, error) {
	if !(min <= max) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "rotary limit min %v is above max %v", min, max)
	}
	joint := &RotaryLimitJoint{Min: min, Max: max}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	return constraint, nil
}

func (joint *RotaryLimitJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	dist := b.a - a.a
	pdist := 0.0
	if dist > joint.Max {
		pdist = joint.Max - dist
	} else if dist < joint.Min {
		pdist = joint.Min - dist
	}

	joint.iSum = angular_mass(a, b)

	joint.bias = Clamp(-bias_coef(joint.errorBias, dt)*pdist/dt, -joint.maxBias, joint.maxBias)

	// inside the limits there is nothing to push against
	if joint.bias == 0 {
		joint.jAcc = 0
	}
}

func (joint *RotaryLimitJoint) ApplyCachedImpulse(dt_coef float64) {
	apply_angular_impulse(joint.a, joint.b, joint.jAcc*dt_coef)
}

func (joint *RotaryLimitJoint) ApplyImpulse(dt float64) {
	if joint.bias == 0 {
		return
	}

	wr := joint.b.w - joint.a.w
	jMax := joint.maxForce * dt

	j := -(joint.bias + wr) * joint.iSum
	jOld := joint.jAcc
	if joint.bias < 0 {
		joint.jAcc = Clamp(jOld+j, 0, jMax)
	} else {
		joint.jAcc = Clamp(jOld+j, -jMax, 0)
	}

	apply_angular_impulse(joint.a, joint.b, joint.jAcc-jOld)
}

func (joint *RotaryLimitJoint) GetImpulse() float64 {
	return math.Abs(joint.jAcc)
}

// SimpleMotor drives B to spin at Rate relative to A, within the constraint's max force.
type SimpleMotor struct {
	rotary

	Rate float64

	iSum, jAcc float64
}

func NewSimpleMotor(a, b *Body, rate float64) (*Constraint, error) {
	if !isFinite(rate) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "motor rate %v is not finite", rate)
	}
	motor := &SimpleMotor{Rate: rate}
	constraint, err := NewConstraint(motor, a, b)
	if err != nil {
		return nil, err
	}
	motor.Constraint = constraint
	return constraint, nil
}

func (motor *SimpleMotor) PreStep(dt float64) {
	motor.iSum = angular_mass(motor.a, motor.b)
}

func (motor *SimpleMotor) ApplyCachedImpulse(dt_coef float64) {
	apply_angular_impulse(motor.a, motor.b, motor.jAcc*dt_coef)
}

func (motor *SimpleMotor) ApplyImpulse(dt float64) {
	wr := motor.b.w - motor.a.w + motor.Rate
	jMax := motor.maxForce * dt

	j := -wr * motor.iSum
	jOld := motor.jAcc
	motor.jAcc = Clamp(jOld+j, -jMax, jMax)

	apply_angular_impulse(motor.a, motor.b, motor.jAcc-jOld)
}

func (motor *SimpleMotor) GetImpulse() float64 {
	return math.Abs(motor.jAcc)
}

// GearJoint keeps the angular velocity ratio of the two bodies constant.
type GearJoint struct {
	rotary

	Phase float64
	ratio float64

	iSum, bias, jAcc float64
}

func NewGearJoint(a, b *Body, phase, ratio float64) (*Constraint, error) {
	if ratio == 0 || !isFinite(ratio) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "gear ratio %v must be finite and non-zero", ratio)
	}
	joint := &GearJoint{Phase: phase, ratio: ratio}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	return constraint, nil
}

func (joint *GearJoint) Ratio() float64 {
	return joint.ratio
}

func (joint *GearJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	joint.iSum = 1.0 / (a.i_inv/joint.ratio + joint.ratio*b.i_inv)
	joint.bias = Clamp(-bias_coef(joint.errorBias, dt)*(b.a*joint.ratio-a.a-joint.Phase)/dt, -joint.maxBias, joint.maxBias)
}

func (joint *GearJoint) apply(j float64) {
	joint.a.w -= j * joint.a.i_inv / joint.ratio
	joint.b.w += j * joint.b.i_inv
}

func (joint *GearJoint) ApplyCachedImpulse(dt_coef float64) {
	joint.apply(joint.jAcc * dt_coef)
}

func (joint *GearJoint) ApplyImpulse(dt float64) {
	wr := joint.b.w*joint.ratio - joint.a.w
	jMax := joint.maxForce * dt

	j := (joint.bias - wr) * joint.iSum
	jOld := joint.jAcc
	joint.jAcc = Clamp(jOld+j, -jMax, jMax)

	joint.apply(joint.jAcc - jOld)
}

func (joint *GearJoint) GetImpulse() float64 {
	return math.Abs(joint.jAcc)
}

// RatchetJoint lets B turn freely one way relative to A and catches it every Ratchet radians the other way.
type RatchetJoint struct {
	rotary

	Angle, Phase, Ratchet float64

	iSum, bias, jAcc float64
}

func NewRatchetJoint(a, b *Body, phase, ratchet float64) (*Constraint, error) {
	if ratchet == 0 || !isFinite(ratchet) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "ratchet spacing %v must be finite and non-zero", ratchet)
	}
	joint := &RatchetJoint{Phase: phase, Ratchet: ratchet}
	constraint, err := NewConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = constraint
	joint.Angle = b.a - a.a
	return constraint, nil
}

func (joint *RatchetJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	delta := b.a - a.a
	diff := joint.Angle - delta
	pdist := 0.0

	if diff*joint.Ratchet > 0 {
		pdist = diff
	} else {
		joint.Angle = math.Floor((delta-joint.Phase)/joint.Ratchet)*joint.Ratchet + joint.Phase
	}

	joint.iSum = angular_mass(a, b)
	joint.bias = Clamp(-bias_coef(joint.errorBias, dt)*pdist/dt, -joint.maxBias, joint.maxBias)

	if joint.bias == 0 {
		joint.jAcc = 0
	}
}

func (joint *RatchetJoint) ApplyCachedImpulse(dt_coef float64) {
	apply_angular_impulse(joint.a, joint.b, joint.jAcc*dt_coef)
}

func (joint *RatchetJoint) ApplyImpulse(dt float64) {
	if joint.bias == 0 {
		return
	}

	wr := joint.b.w - joint.a.w
	ratchet := joint.Ratchet
	jMax := joint.maxForce * dt

	j := -(joint.bias + wr) * joint.iSum
	jOld := joint.jAcc
	joint.jAcc = Clamp((jOld+j)*ratchet, 0, jMax*math.Abs(ratchet)) / ratchet

	apply_angular_impulse(joint.a, joint.b, joint.jAcc-jOld)
}

func (joint *RatchetJoint) GetImpulse() float64 {
	return math.Abs(joint.jAcc)
}

type DampedRotarySpringTorqueFunc func(spring *DampedRotarySpring, relativeAngle float64) float64

// DampedRotarySpring twists B toward RestAngle relative to A.
type DampedRotarySpring struct {
	rotary

	RestAngle, Stiffness, Damping float64
	SpringTorqueFunc              DampedRotarySpringTorqueFunc

	targetWrn, wCoef float64
	iSum, jAcc       float64
}

func DefaultSpringTorque(spring *DampedRotarySpring, relativeAngle float64) float64 {
	return (relativeAngle - spring.RestAngle) * spring.Stiffness
}

func NewDampedRotarySpring(a, b *Body, restAngle, stiffness, damping float64) (*Constraint, error) {
	if !(stiffness >= 0) || !(damping >= 0) {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration,
			"rotary spring stiffness %v and damping %v must be non-negative", stiffness, damping)
	}
	spring := &DampedRotarySpring{
		RestAngle:        restAngle,
		Stiffness:        stiffness,
		Damping:          damping,
		SpringTorqueFunc: DefaultSpringTorque,
	}
	constraint, err := NewConstraint(spring, a, b)
	if err != nil {
		return nil, err
	}
	spring.Constraint = constraint
	return constraint, nil
}

// PreStep applies the spring torque directly, the solver iterations only handle damping.
func (spring *DampedRotarySpring) PreStep(dt float64) {
	a := spring.a
	b := spring.b

	moment := a.i_inv + b.i_inv
	spring.iSum = 1.0 / moment

	spring.wCoef = 1.0 - math.Exp(-spring.Damping*dt*moment)
	spring.targetWrn = 0

	jSpring := spring.SpringTorqueFunc(spring, a.a-b.a) * dt
	spring.jAcc = jSpring

	a.w -= jSpring * a.i_inv
	b.w += jSpring * b.i_inv
}

func (spring *DampedRotarySpring) ApplyCachedImpulse(dt_coef float64) {}

func (spring *DampedRotarySpring) ApplyImpulse(dt float64) {
	a := spring.a
	b := spring.b

	wrn := a.w - b.w

	wDamp := (spring.targetWrn - wrn) * spring.wCoef
	spring.targetWrn = wrn + wDamp

	jDamp := wDamp * spring.iSum
	spring.jAcc += jDamp

	a.w += jDamp * a.i_inv
	b.w -= jDamp * b.i_inv
}

func (spring *DampedRotarySpring) GetImpulse() float64 {
	return spring.jAcc
}
