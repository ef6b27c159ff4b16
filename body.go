package physics

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Rigid body velocity update function type.
type BodyVelocityFunc func(body *Body, gravity Vector, damping float64, dt float64)

// Rigid body position update function type.
type BodyPositionFunc func(body *Body, dt float64)

type BodyType int

// body types
const (
	BODY_DYNAMIC BodyType = iota
	BODY_KINEMATIC
	BODY_STATIC
)

func (t BodyType) String() string {
	switch t {
	case BODY_DYNAMIC:
		return "dynamic"
	case BODY_KINEMATIC:
		return "kinematic"
	case BODY_STATIC:
		return "static"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

type Body struct {
	id  int
	typ BodyType

	// Integration functions
	velocity_func BodyVelocityFunc
	position_func BodyPositionFunc

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia and it's inverse
	i     float64
	i_inv float64

	// center of gravity
	cog Vector

	// position, velocity, force
	p Vector
	v Vector
	f Vector

	// Angle, angular velocity, torque (radians)
	a float64
	w float64
	t float64

	transform Transform

	UserData interface{}

	// "pseudo-velocities" used for eliminating overlap.
	// Erin Catto has some papers that talk about what these are.
	v_bias Vector
	w_bias float64

	space *Space

	shapeList      []*Shape
	constraintList []*Constraint
}

func (body *Body) String() string {
	return fmt.Sprint("Body ", body.id)
}

// NewBody creates a dynamic body. A mass and moment of 0 is fine when the attached
// shapes are given a mass or density: the body's values are then computed from them.
func NewBody(mass, moment float64) *Body {
	body := &Body{
		transform:     NewTransformIdentity(),
		velocity_func: BodyUpdateVelocity,
		position_func: BodyUpdatePosition,
	}

	body.SetMass(mass)
	body.SetMoment(moment)
	body.SetAngle(0)

	return body
}

func NewStaticBody() *Body {
	body := NewBody(0, 0)
	body.setType(BODY_STATIC)
	return body
}

func NewKinematicBody() *Body {
	body := NewBody(0, 0)
	body.setType(BODY_KINEMATIC)
	return body
}

func (body *Body) Space() *Space {
	return body.space
}

func (body *Body) GetType() BodyType {
	return body.typ
}

// SetType converts the body between dynamic, kinematic and static. A body that becomes dynamic
// takes its mass from its shapes and starts at rest. A body that stops being dynamic
// loses its velocity.
func (body *Body) SetType(newType BodyType) error {
	if body.space != nil && body.space.locked > 0 {
		return errors.Wrapf(ErrSpaceLocked, "cannot change the type of %v during a step", body)
	}
	if body.space != nil && body == body.space.StaticBody {
		return errors.Wrap(ErrDanglingReference, "cannot change the type of the space's static body")
	}
	oldType := body.typ
	if oldType == newType {
		return nil
	}
	body.setType(newType)

	// If the body is added to a space already, we'll need to update some space data structures.
	if body.space != nil {
		body.space.bodyTypeChanged(body, oldType)
	}
	return nil
}

func (body *Body) setType(newType BodyType) {
	body.typ = newType

	if newType == BODY_DYNAMIC {
		body.m = 0
		body.i = 0
		body.m_inv = INFINITY
		body.i_inv = INFINITY

		body.AccumulateMassFromShapes()
	} else {
		body.m = INFINITY
		body.i = INFINITY
		body.m_inv = 0
		body.i_inv = 0

		body.v = Vector{}
		body.w = 0
	}

	body.f = Vector{}
	body.t = 0
	body.v_bias = Vector{}
	body.w_bias = 0
}

// AccumulateMassFromShapes recomputes the mass, moment and center of gravity of a dynamic body
// from the shapes that carry a mass. The body's own values are kept when none do.
func (body *Body) AccumulateMassFromShapes() {
	if body == nil || body.typ != BODY_DYNAMIC {
		return
	}

	var m, i float64
	var cog Vector
	for _, shape := range body.shapeList {
		info := shape.massInfo
		if info.m > 0 {
			msum := m + info.m
			i += info.m*info.i + cog.DistanceSq(info.cog)*(info.m*m)/msum
			cog = cog.Lerp(info.cog, info.m/msum)
			m = msum
		}
	}
	if m == 0 {
		return
	}

	// cache position, realign at the end
	pos := body.Position()

	body.m = m
	body.i = i
	body.cog = cog
	body.m_inv = 1.0 / m
	body.i_inv = 1.0 / i

	body.SetPosition(pos)
}

func (body *Body) Mass() float64 {
	return body.m
}

// SetMass only applies to dynamic bodies, the others have infinite mass.
func (body *Body) SetMass(mass float64) {
	if body.typ != BODY_DYNAMIC {
		return
	}
	body.m = mass
	body.m_inv = 1 / mass
}

func (body *Body) Moment() float64 {
	return body.i
}

func (body *Body) SetMoment(moment float64) {
	if body.typ != BODY_DYNAMIC {
		return
	}
	body.i = moment
	body.i_inv = 1 / moment
}

func (body *Body) validMass() bool {
	return body.m > 0 && !math.IsInf(body.m, 0) && body.i > 0 && !math.IsInf(body.i, 0) &&
		!math.IsNaN(body.m) && !math.IsNaN(body.i)
}

func (body *Body) CenterOfGravity() Vector {
	return body.cog
}

func (body *Body) Angle() float64 {
	return body.a
}

func (body *Body) SetAngle(angle float64) {
	body.a = angle
	body.SetTransform(body.p, angle)
}

func (body *Body) Rotation() Vector {
	return Vector{body.transform.a, body.transform.b}
}

// Position is the world position of the body's origin.
func (body *Body) Position() Vector {
	return body.transform.Point(Vector{})
}

func (body *Body) SetPosition(position Vector) {
	body.p = body.transform.Vect(body.cog).Add(position)
	body.SetTransform(body.p, body.a)
}

func (body *Body) Transform() Transform {
	return body.transform
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(x, y float64) {
	body.SetVelocityVector(Vector{x, y})
}

// SetVelocityVector is ignored for static bodies, they never move.
func (body *Body) SetVelocityVector(v Vector) {
	if body.typ == BODY_STATIC {
		return
	}
	body.v = v
}

func (body *Body) AngularVelocity() float64 {
	return body.w
}

func (body *Body) SetAngularVelocity(angularVelocity float64) {
	if body.typ == BODY_STATIC {
		return
	}
	body.w = angularVelocity
}

func (body *Body) Force() Vector {
	return body.f
}

func (body *Body) SetForce(force Vector) {
	if body.typ != BODY_DYNAMIC {
		return
	}
	body.f = force
}

func (body *Body) Torque() float64 {
	return body.t
}

// SetTransform positions the center of gravity at p and refreshes the world geometry of every attached shape.
func (body *Body) SetTransform(p Vector, a float64) {
	body.transform = NewTransformRigid(p.Sub(body.cog.Rotate(ForAngle(a))), a)

	for _, shape := range body.shapeList {
		shape.Update(body.transform)
	}
	if body.typ == BODY_STATIC && body.space != nil {
		for _, shape := range body.shapeList {
			if shape.space != nil {
				body.space.staticShapes.class.ReindexObject(shape, shape.hashid)
			}
		}
	}
}

func (body *Body) AddShape(shape *Shape) *Shape {
	body.shapeList = append(body.shapeList, shape)
	shape.Update(body.transform)
	if shape.massInfo.m > 0 {
		body.AccumulateMassFromShapes()
	}
	return shape
}

func (body *Body) RemoveShape(shape *Shape) {
	for i, s := range body.shapeList {
		if s == shape {
			body.shapeList = append(body.shapeList[:i], body.shapeList[i+1:]...)
			break
		}
	}
	if shape.massInfo.m > 0 {
		body.AccumulateMassFromShapes()
	}
}

func (body *Body) RemoveConstraint(constraint *Constraint) {
	for i, c := range body.constraintList {
		if c == constraint {
			body.constraintList = append(body.constraintList[:i], body.constraintList[i+1:]...)
			return
		}
	}
}

func (body *Body) KineticEnergy() float64 {
	// Need to do some fudging to avoid NaNs
	vsq := body.v.Dot(body.v)
	wsq := body.w * body.w
	var a, b float64
	if vsq != 0 {
		a = vsq * body.m
	}
	if wsq != 0 {
		b = wsq * body.i
	}
	return 0.5 * (a + b)
}

func (body *Body) WorldToLocal(point Vector) Vector {
	return NewTransformRigidInverse(body.transform).Point(point)
}

func (body *Body) LocalToWorld(point Vector) Vector {
	return body.transform.Point(point)
}

// ApplyForceAtWorldPoint accumulates a force until the next step. Only dynamic bodies react to forces.
func (body *Body) ApplyForceAtWorldPoint(force, point Vector) {
	if body.typ != BODY_DYNAMIC {
		return
	}
	body.f = body.f.Add(force)

	r := point.Sub(body.transform.Point(body.cog))
	body.t += r.Cross(force)
}

func (body *Body) ApplyForceAtLocalPoint(force, point Vector) {
	body.ApplyForceAtWorldPoint(body.transform.Vect(force), body.transform.Point(point))
}

// ApplyImpulseAtWorldPoint changes the velocity immediately. Only dynamic bodies react to impulses.
func (body *Body) ApplyImpulseAtWorldPoint(impulse, point Vector) {
	if body.typ != BODY_DYNAMIC {
		return
	}

	r := point.Sub(body.transform.Point(body.cog))
	apply_impulse(body, impulse, r)
}

// ApplyImpulseAtLocalPoint takes both the impulse and the point in body coordinates.
func (body *Body) ApplyImpulseAtLocalPoint(impulse, point Vector) {
	body.ApplyImpulseAtWorldPoint(body.transform.Vect(impulse), body.transform.Point(point))
}

func (body *Body) VelocityAtLocalPoint(point Vector) Vector {
	r := body.transform.Vect(point.Sub(body.cog))
	return body.v.Add(r.Perp().Mult(body.w))
}

func (body *Body) VelocityAtWorldPoint(point Vector) Vector {
	r := point.Sub(body.transform.Point(body.cog))
	return body.v.Add(r.Perp().Mult(body.w))
}

func BodyUpdateVelocity(body *Body, gravity Vector, damping, dt float64) {
	if body.typ != BODY_DYNAMIC {
		return
	}

	body.v = body.v.Mult(damping).Add(gravity.Add(body.f.Mult(body.m_inv)).Mult(dt))
	body.w = body.w*damping + body.t*body.i_inv*dt

	body.f = Vector{}
	body.t = 0
}

func BodyUpdatePosition(body *Body, dt float64) {
	body.p = body.p.Add(body.v.Add(body.v_bias).Mult(dt))
	body.a = body.a + (body.w+body.w_bias)*dt
	body.SetTransform(body.p, body.a)

	body.v_bias = Vector{}
	body.w_bias = 0
}

func (body *Body) SetVelocityUpdateFunc(f BodyVelocityFunc) {
	body.velocity_func = f
}

func (body *Body) SetPositionUpdateFunc(f BodyPositionFunc) {
	body.position_func = f
}

func (body *Body) EachShape(f func(*Shape)) {
	for _, shape := range body.shapeList {
		f(shape)
	}
}

func (body *Body) EachConstraint(f func(*Constraint)) {
	for _, constraint := range body.constraintList {
		f(constraint)
	}
}
