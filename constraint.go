package physics

import (
	"math"

	"github.com/pkg/errors"
)

// Constrainer is implemented by the joint types.
type Constrainer interface {
	PreStep(dt float64)
	ApplyCachedImpulse(dt_coef float64)
	ApplyImpulse(dt float64)
	GetImpulse() float64
	// Anchors returns the anchor points in the local coordinates of body A and body B.
	Anchors() (Vector, Vector)
}

type ConstraintPreSolveFunc func(*Constraint, *Space)
type ConstraintPostSolveFunc func(*Constraint, *Space)

// Constraint links two bodies. The solver runs it after the contacts of each iteration.
type Constraint struct {
	Class Constrainer
	space *Space

	a, b *Body

	maxForce, errorBias, maxBias float64

	collideBodies bool
	PreSolve      ConstraintPreSolveFunc
	PostSolve     ConstraintPostSolveFunc

	UserData interface{}
}

func NewConstraint(class Constrainer, a, b *Body) (*Constraint, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(ErrInvalidConstraintConfiguration, "a constraint needs two bodies, use the space's static body to pin to the world")
	}
	if a == b {
		return nil, errors.Wrapf(ErrInvalidConstraintConfiguration, "%v cannot be constrained to itself", a)
	}
	return &Constraint{
		Class: class,
		a:     a,
		b:     b,

		maxForce:  INFINITY,
		errorBias: math.Pow(1.0-0.1, 60.0),
		maxBias:   INFINITY,

		collideBodies: true,
	}, nil
}

func (c *Constraint) Space() *Space {
	return c.space
}

func (c *Constraint) BodyA() *Body {
	return c.a
}

func (c *Constraint) BodyB() *Body {
	return c.b
}

func (c *Constraint) MaxForce() float64 {
	return c.maxForce
}

// SetMaxForce caps the force the constraint can apply.
func (c *Constraint) SetMaxForce(max float64) error {
	if !(max >= 0) {
		return errors.Wrapf(ErrInvalidConstraintConfiguration, "max force %v must be non-negative", max)
	}
	c.maxForce = max
	return nil
}

func (c *Constraint) MaxBias() float64 {
	return c.maxBias
}

// SetMaxBias caps the speed at which the constraint corrects its error.
func (c *Constraint) SetMaxBias(max float64) error {
	if !(max >= 0) {
		return errors.Wrapf(ErrInvalidConstraintConfiguration, "max bias %v must be non-negative", max)
	}
	c.maxBias = max
	return nil
}

func (c *Constraint) ErrorBias() float64 {
	return c.errorBias
}

// SetErrorBias sets the fraction of error left after one second.
func (c *Constraint) SetErrorBias(errorBias float64) error {
	if !(errorBias >= 0 && errorBias <= 1) {
		return errors.Wrapf(ErrInvalidConstraintConfiguration, "error bias %v is outside [0, 1]", errorBias)
	}
	c.errorBias = errorBias
	return nil
}

func (c *Constraint) CollideBodies() bool {
	return c.collideBodies
}

// SetCollideBodies controls whether the shapes of the two linked bodies collide with each other.
func (c *Constraint) SetCollideBodies(collideBodies bool) {
	c.collideBodies = collideBodies
}

// WorldAnchors returns the current world position of both anchors.
func (c *Constraint) WorldAnchors() (Vector, Vector) {
	anchorA, anchorB := c.Class.Anchors()
	return c.a.transform.Point(anchorA), c.b.transform.Point(anchorB)
}

// Impulse is the most recent impulse the constraint applied.
func (c *Constraint) Impulse() float64 {
	return c.Class.GetImpulse()
}

// solvable reports whether at least one of the bodies can move.
func (c *Constraint) solvable() bool {
	return c.a.typ == BODY_DYNAMIC || c.b.typ == BODY_DYNAMIC
}

// anchored is embedded by the joints that act between a point on each body.
type anchored struct {
	*Constraint
	AnchorA, AnchorB Vector

	// anchors relative to the centers of gravity, in world orientation
	r1, r2 Vector
}

func (j *anchored) Anchors() (Vector, Vector) {
	return j.AnchorA, j.AnchorB
}

// update refreshes r1 and r2 and returns the offset from anchor A to anchor B.
func (j *anchored) update() Vector {
	a, b := j.a, j.b
	j.r1 = a.transform.Vect(j.AnchorA.Sub(a.cog))
	j.r2 = b.transform.Vect(j.AnchorB.Sub(b.cog))
	return b.p.Add(j.r2).Sub(a.p.Add(j.r1))
}

// axis is update split into a unit direction and a length. Coincident anchors have no direction.
func (j *anchored) axis() (Vector, float64) {
	delta := j.update()
	dist := delta.Length()
	if dist == 0 {
		return Vector{}, 0
	}
	return delta.Mult(1 / dist), dist
}

func (j *anchored) normalMass(n Vector) float64 {
	return k_scalar(j.a, j.b, j.r1, j.r2, n)
}

// biasFor is the velocity that removes this step's share of a positional error.
func (j *anchored) biasFor(offset, dt float64) float64 {
	return Clamp(-bias_coef(j.errorBias, dt)*offset/dt, -j.maxBias, j.maxBias)
}

func (j *anchored) velocity() Vector {
	return relative_velocity(j.a, j.b, j.r1, j.r2)
}

func (j *anchored) apply(impulse Vector) {
	apply_impulses(j.a, j.b, j.r1, j.r2, impulse)
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1_sum := a.v.Add(r1.Perp().Mult(a.w))
	v2_sum := b.v.Add(r2.Perp().Mult(b.w))
	return v2_sum.Sub(v1_sum)
}

func normal_relative_velocity(a, b *Body, r1, r2, n Vector) float64 {
	return relative_velocity(a, b, r1, r2).Dot(n)
}

func apply_impulse(body *Body, j, r Vector) {
	body.v = body.v.Add(j.Mult(body.m_inv))
	body.w += body.i_inv * r.Cross(j)
}

func apply_impulses(a, b *Body, r1, r2, j Vector) {
	apply_impulse(a, j.Neg(), r1)
	apply_impulse(b, j, r2)
}

func apply_bias_impulse(body *Body, j, r Vector) {
	body.v_bias = body.v_bias.Add(j.Mult(body.m_inv))
	body.w_bias += body.i_inv * r.Cross(j)
}

func apply_bias_impulses(a, b *Body, r1, r2, j Vector) {
	apply_bias_impulse(a, j.Neg(), r1)
	apply_bias_impulse(b, j, r2)
}

func k_scalar_body(body *Body, r, n Vector) float64 {
	rcn := r.Cross(n)
	return body.m_inv + body.i_inv*rcn*rcn
}

// k_scalar is the effective mass of the two bodies along n.
func k_scalar(a, b *Body, r1, r2, n Vector) float64 {
	return k_scalar_body(a, r1, n) + k_scalar_body(b, r2, n)
}

// k_tensor is the inverse of the effective mass matrix of a point to point constraint.
func k_tensor(a, b *Body, r1, r2 Vector) Mat2x2 {
	m_sum := a.m_inv + b.m_inv

	// start with Identity*m_sum
	k11 := m_sum
	k12 := 0.0
	k21 := 0.0
	k22 := m_sum

	// add the influence from r1
	a_i_inv := a.i_inv
	r1xsq := r1.X * r1.X * a_i_inv
	r1ysq := r1.Y * r1.Y * a_i_inv
	r1nxy := -r1.X * r1.Y * a_i_inv
	k11 += r1ysq
	k12 += r1nxy
	k21 += r1nxy
	k22 += r1xsq

	// add the influence from r2
	b_i_inv := b.i_inv
	r2xsq := r2.X * r2.X * b_i_inv
	r2ysq := r2.Y * r2.Y * b_i_inv
	r2nxy := -r2.X * r2.Y * b_i_inv
	k11 += r2ysq
	k12 += r2nxy
	k21 += r2nxy
	k22 += r2xsq

	// invert
	det := k11*k22 - k12*k21
	det_inv := 1.0 / det

	return Mat2x2{
		k22 * det_inv, -k12 * det_inv,
		-k21 * det_inv, k11 * det_inv,
	}
}

// bias_coef is the fraction of the error to correct this step, given the fraction left after one second.
func bias_coef(errorBias, dt float64) float64 {
	return 1.0 - math.Pow(errorBias, dt)
}

type Mat2x2 struct {
	a, b, c, d float64
}

func (m Mat2x2) Transform(v Vector) Vector {
	return Vector{v.X*m.a + v.Y*m.b, v.X*m.c + v.Y*m.d}
}
