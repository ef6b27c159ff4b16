package physics

import "math"

// Arbiter states
const (
	// Arbiter is active and its the first collision.
	ARBITER_STATE_FIRST_COLLISION = iota
	// Arbiter is active and its not the first collision.
	ARBITER_STATE_NORMAL
	// Collision has been explicitly ignored.
	// Either by returning false from a begin collision handler or calling Arbiter.Ignore().
	ARBITER_STATE_IGNORE
)

// Contact is one contact point. r1 and r2 are relative to the bodies' centers of gravity.
type Contact struct {
	r1, r2 Vector

	nMass, tMass float64
	bounce       float64

	jnAcc, jtAcc, jBias float64
	bias                float64
}

// Arbiter holds the contacts between a pair of shapes for the current step.
type Arbiter struct {
	e, u float64

	UserData interface{}

	a, b           *Shape
	body_a, body_b *Body

	count    int
	contacts [MAX_CONTACTS_PER_ARBITER]Contact
	n        Vector

	handler, handlerA, handlerB *CollisionHandler
	swapped                     bool

	state int
}

// Init fills the arbiter from a narrow phase result.
func (arb *Arbiter) Init(info *CollisionInfo, space *Space) *Arbiter {
	a := info.a
	b := info.b

	arb.UserData = nil
	arb.a = a
	arb.body_a = a.body
	arb.b = b
	arb.body_b = b.body

	arb.count = info.count
	arb.n = info.n
	for i := 0; i < info.count; i++ {
		con := info.arr[i]

		con.r1 = con.r1.Sub(a.body.p)
		con.r2 = con.r2.Sub(b.body.p)

		// Contacts are not warm started.
		con.jnAcc = 0
		con.jtAcc = 0

		arb.contacts[i] = con
	}

	arb.e = math.Sqrt(a.e * b.e)
	arb.u = math.Sqrt(a.u * b.u)

	typeA := info.a.collisionType
	typeB := info.b.collisionType
	handler := space.LookupHandler(typeA, typeB, space.defaultHandler)
	arb.handler = handler

	swapped := typeA != handler.TypeA && handler.TypeA != WILDCARD_COLLISION_TYPE
	arb.swapped = swapped

	arb.handlerA = &CollisionHandlerDoNothing
	arb.handlerB = &CollisionHandlerDoNothing
	if handler != space.defaultHandler || space.usesWildcards {
		if swapped {
			arb.handlerA = space.LookupHandler(typeB, WILDCARD_COLLISION_TYPE, &CollisionHandlerDoNothing)
			arb.handlerB = space.LookupHandler(typeA, WILDCARD_COLLISION_TYPE, &CollisionHandlerDoNothing)
		} else {
			arb.handlerA = space.LookupHandler(typeA, WILDCARD_COLLISION_TYPE, &CollisionHandlerDoNothing)
			arb.handlerB = space.LookupHandler(typeB, WILDCARD_COLLISION_TYPE, &CollisionHandlerDoNothing)
		}
	}

	arb.state = ARBITER_STATE_NORMAL
	return arb
}

// PreStep computes the effective masses, penetration bias and bounce target of each contact.
func (arb *Arbiter) PreStep(dt, slop, bias, bounceThreshold float64) {
	a := arb.body_a
	b := arb.body_b
	n := arb.n
	bodyDelta := b.p.Sub(a.p)

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]

		// Calculate the mass normal and mass tangent.
		con.nMass = 1.0 / k_scalar(a, b, con.r1, con.r2, n)
		con.tMass = 1.0 / k_scalar(a, b, con.r1, con.r2, n.Perp())

		// Calculate the target bias velocity.
		dist := con.r2.Sub(con.r1).Add(bodyDelta).Dot(n)
		con.bias = -bias * math.Min(0, dist+slop) / dt
		con.jBias = 0.0

		// Calculate the target bounce velocity. Slow approaches do not bounce, so resting contacts stay at rest.
		vrn := normal_relative_velocity(a, b, con.r1, con.r2, n)
		if vrn < -bounceThreshold {
			con.bounce = vrn * arb.e
		} else {
			con.bounce = 0
		}

		con.jnAcc = 0
		con.jtAcc = 0
	}
}

// ApplyImpulse runs one sequential impulse iteration over the contacts: non-penetration,
// penetration bias and Coulomb friction.
func (arb *Arbiter) ApplyImpulse() {
	a := arb.body_a
	b := arb.body_b
	n := arb.n
	friction := arb.u

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]
		nMass := con.nMass
		r1 := con.r1
		r2 := con.r2

		vb1 := a.v_bias.Add(r1.Perp().Mult(a.w_bias))
		vb2 := b.v_bias.Add(r2.Perp().Mult(b.w_bias))
		vr := relative_velocity(a, b, r1, r2)

		vbn := vb2.Sub(vb1).Dot(n)
		vrn := vr.Dot(n)
		vrt := vr.Dot(n.Perp())

		jbn := (con.bias - vbn) * nMass
		jbnOld := con.jBias
		con.jBias = math.Max(jbnOld+jbn, 0)

		jn := -(con.bounce + vrn) * nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = Clamp(jtOld+jt, -jtMax, jtMax)

		apply_bias_impulses(a, b, r1, r2, n.Mult(con.jBias-jbnOld))
		apply_impulses(a, b, r1, r2, n.Rotate(Vector{con.jnAcc - jnOld, con.jtAcc - jtOld}))
	}
}

func (arb *Arbiter) IsFirstContact() bool {
	return arb.state == ARBITER_STATE_FIRST_COLLISION
}

// Ignore makes the space skip this pair until the shapes separate. It returns false
// so a begin or pre-solve handler can end with `return arb.Ignore()`.
func (arb *Arbiter) Ignore() bool {
	arb.state = ARBITER_STATE_IGNORE
	return false
}

func (arb *Arbiter) Count() int {
	return arb.count
}

// Normal points from the first shape returned by Shapes to the second.
func (arb *Arbiter) Normal() Vector {
	if arb.swapped {
		return arb.n.Neg()
	}
	return arb.n
}

func (arb *Arbiter) Shapes() (*Shape, *Shape) {
	if arb.swapped {
		return arb.b, arb.a
	}
	return arb.a, arb.b
}

func (arb *Arbiter) Bodies() (*Body, *Body) {
	shapeA, shapeB := arb.Shapes()
	return shapeA.body, shapeB.body
}

func (arb *Arbiter) Elasticity() float64 {
	return arb.e
}

// SetElasticity overrides the mixed elasticity, call it from a pre-solve handler.
func (arb *Arbiter) SetElasticity(e float64) {
	arb.e = e
}

func (arb *Arbiter) Friction() float64 {
	return arb.u
}

func (arb *Arbiter) SetFriction(u float64) {
	arb.u = u
}

// TotalImpulse is the impulse applied this step to resolve the collision, valid in post-solve handlers.
func (arb *Arbiter) TotalImpulse() Vector {
	var sum Vector

	for i := 0; i < arb.count; i++ {
		con := arb.contacts[i]
		sum = sum.Add(arb.n.Rotate(Vector{con.jnAcc, con.jtAcc}))
	}

	if arb.swapped {
		return sum
	}
	return sum.Neg()
}

// TotalKE is the kinetic energy lost to the collision this step.
func (arb *Arbiter) TotalKE() float64 {
	eCoef := (1 - arb.e) / (1 + arb.e)
	sum := 0.0

	for i := 0; i < arb.count; i++ {
		con := arb.contacts[i]
		jnAcc := con.jnAcc
		jtAcc := con.jtAcc

		sum += eCoef*jnAcc*jnAcc/con.nMass + jtAcc*jtAcc/con.tMass
	}

	return sum
}

type ContactPoint struct {
	// Points on the surfaces of the two shapes, in world coordinates.
	PointA, PointB Vector
	// Distance along the normal, negative when the shapes overlap.
	Distance float64
}

type ContactPointSet struct {
	Count  int
	Normal Vector
	Points [MAX_CONTACTS_PER_ARBITER]ContactPoint
}

func (arb *Arbiter) ContactPointSet() ContactPointSet {
	var set ContactPointSet
	set.Count = arb.count

	swapped := arb.swapped
	n := arb.n
	if swapped {
		set.Normal = n.Neg()
	} else {
		set.Normal = n
	}

	for i := 0; i < arb.count; i++ {
		// Contact points are relative to body CoGs
		p1 := arb.body_a.p.Add(arb.contacts[i].r1)
		p2 := arb.body_b.p.Add(arb.contacts[i].r2)

		if swapped {
			set.Points[i].PointA = p2
			set.Points[i].PointB = p1
		} else {
			set.Points[i].PointA = p1
			set.Points[i].PointB = p2
		}
		set.Points[i].Distance = p2.Sub(p1).Dot(n)
	}

	return set
}

// Depth is the deepest penetration among the contacts, 0 when the shapes only touch.
func (arb *Arbiter) Depth() float64 {
	depth := 0.0
	for i := 0; i < arb.count; i++ {
		con := arb.contacts[i]
		dist := con.r2.Sub(con.r1).Add(arb.body_b.p.Sub(arb.body_a.p)).Dot(arb.n)
		depth = math.Max(depth, -dist)
	}
	return depth
}

func (arb *Arbiter) CallWildcardBeginA(space *Space) bool {
	handler := arb.handlerA
	return handler.begin(arb, space)
}

func (arb *Arbiter) CallWildcardBeginB(space *Space) bool {
	handler := arb.handlerB
	arb.swapped = !arb.swapped
	retVal := handler.begin(arb, space)
	arb.swapped = !arb.swapped
	return retVal
}

func (arb *Arbiter) CallWildcardPreSolveA(space *Space) bool {
	handler := arb.handlerA
	return handler.preSolve(arb, space)
}

func (arb *Arbiter) CallWildcardPreSolveB(space *Space) bool {
	handler := arb.handlerB
	arb.swapped = !arb.swapped
	retval := handler.preSolve(arb, space)
	arb.swapped = !arb.swapped
	return retval
}

func (arb *Arbiter) CallWildcardPostSolveA(space *Space) {
	handler := arb.handlerA
	handler.postSolve(arb, space)
}

func (arb *Arbiter) CallWildcardPostSolveB(space *Space) {
	handler := arb.handlerB
	arb.swapped = !arb.swapped
	handler.postSolve(arb, space)
	arb.swapped = !arb.swapped
}

func (arb *Arbiter) CallWildcardSeparateA(space *Space) {
	handler := arb.handlerA
	handler.separate(arb, space)
}

func (arb *Arbiter) CallWildcardSeparateB(space *Space) {
	handler := arb.handlerB
	arb.swapped = !arb.swapped
	handler.separate(arb, space)
	arb.swapped = !arb.swapped
}
