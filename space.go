package physics

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Space is the simulation world. It owns bodies, shapes and constraints and advances them with Step.
// A Space is not safe for concurrent use.
type Space struct {
	// Solver iterations per step. More iterations give stiffer stacks and joints.
	Iterations uint

	gravity Vector
	damping float64

	collisionSlop   float64
	collisionBias   float64
	bounceThreshold float64

	UserData interface{}

	stamp   uint
	curr_dt float64

	dynamicBodies []*Body
	staticBodies  []*Body
	bodyIDCounter int

	shapeIDCounter HashValue
	shapes         []*Shape
	staticShapes   *SpatialIndex
	dynamicShapes  *SpatialIndex

	constraints []*Constraint

	arbiters       []*Arbiter
	pooledArbiters []*Arbiter
	pairs          []shapePair
	touching       map[pairKey]*touchingPair

	locked int
	// set while the arbiter count is above CROWDED_ARBITER_COUNT
	crowded bool

	usesWildcards     bool
	collisionHandlers map[typePair]*CollisionHandler
	defaultHandler    *CollisionHandler

	postStepCallbacks []PostStepCallback

	// StaticBody is a built in static body for attaching level geometry and anchoring joints to the world.
	StaticBody *Body
}

type shapePair struct {
	a, b *Shape
}

// pairKey identifies a pair of shapes by their ids, lowest first.
type pairKey struct {
	a, b HashValue
}

func newPairKey(a, b HashValue) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// touchingPair remembers a pair of shapes that were in contact during the last step,
// so begin and separate run once per contact episode.
type touchingPair struct {
	stamp   uint
	ignored bool
	last    Arbiter
}

type PostStepCallbackFunc func(space *Space, key interface{}, data interface{})

type PostStepCallback struct {
	callback PostStepCallbackFunc
	key      interface{}
	data     interface{}
}

func NewSpace() *Space {
	space := &Space{
		Iterations:        10,
		damping:           1.0,
		collisionSlop:     0.1,
		collisionBias:     math.Pow(1.0-0.2, 60),
		bounceThreshold:   1.0,
		touching:          map[pairKey]*touchingPair{},
		collisionHandlers: map[typePair]*CollisionHandler{},
	}
	handler := CollisionHandlerDoNothing
	space.defaultHandler = &handler

	space.staticShapes = NewSweepIndex(ShapeGetBB, nil)
	space.dynamicShapes = NewSweepIndex(ShapeGetBB, space.staticShapes)

	space.StaticBody = NewStaticBody()
	space.StaticBody.space = space
	return space
}

func (space *Space) Gravity() Vector {
	return space.gravity
}

func (space *Space) SetGravity(gravity Vector) {
	space.gravity = gravity
}

func (space *Space) Damping() float64 {
	return space.damping
}

// SetDamping sets the fraction of velocity bodies keep after one second, 1 means no damping.
func (space *Space) SetDamping(damping float64) error {
	if !(damping >= 0) || !isFinite(damping) {
		return errors.Errorf("damping %v must be finite and non-negative", damping)
	}
	space.damping = damping
	return nil
}

func (space *Space) CollisionSlop() float64 {
	return space.collisionSlop
}

// SetCollisionSlop sets the overlap allowed between shapes before the solver pushes them apart.
func (space *Space) SetCollisionSlop(slop float64) {
	space.collisionSlop = slop
}

func (space *Space) CollisionBias() float64 {
	return space.collisionBias
}

// SetCollisionBias sets the fraction of overlap left after one second.
func (space *Space) SetCollisionBias(bias float64) {
	space.collisionBias = bias
}

func (space *Space) BounceThreshold() float64 {
	return space.bounceThreshold
}

// SetBounceThreshold sets the approach speed under which contacts do not bounce.
// The step raises it to twice the speed gravity adds in one step.
func (space *Space) SetBounceThreshold(threshold float64) {
	space.bounceThreshold = threshold
}

func (space *Space) CurrentTimeStep() float64 {
	return space.curr_dt
}

// Stamp counts the steps taken.
func (space *Space) Stamp() uint {
	return space.stamp
}

// IsLocked reports whether the space is inside Step, where it cannot be modified.
func (space *Space) IsLocked() bool {
	return space.locked > 0
}

// UseSpatialHash switches the broad phase to a spatial hash with the given cell size and cell count.
func (space *Space) UseSpatialHash(dim float64, count int) {
	staticShapes := NewSpaceHash(dim, count, ShapeGetBB, nil)
	dynamicShapes := NewSpaceHash(dim, count, ShapeGetBB, staticShapes)
	space.replaceIndexes(staticShapes, dynamicShapes)
}

// UseBBTree switches the broad phase to bounding box trees.
func (space *Space) UseBBTree() {
	staticShapes := NewBBTree(ShapeGetBB, nil)
	dynamicShapes := NewBBTree(ShapeGetBB, staticShapes)
	dynamicShapes.class.(*BBTree).SetVelocityFunc(func(obj *Shape) Vector {
		return obj.body.v
	})
	space.replaceIndexes(staticShapes, dynamicShapes)
}

func (space *Space) replaceIndexes(staticShapes, dynamicShapes *SpatialIndex) {
	space.staticShapes.class.Each(func(shape *Shape) {
		staticShapes.class.Insert(shape, shape.hashid)
	})
	space.dynamicShapes.class.Each(func(shape *Shape) {
		dynamicShapes.class.Insert(shape, shape.hashid)
	})

	space.staticShapes = staticShapes
	space.dynamicShapes = dynamicShapes
}

func (space *Space) checkUnlocked(op string) error {
	if space.locked > 0 {
		return errors.Wrapf(ErrSpaceLocked, "cannot %s during a step, use a post-step callback", op)
	}
	return nil
}

// Add adds bodies, shapes and constraints. Bodies are added first, then shapes, then constraints,
// so a body and its shapes can be passed in any order.
func (space *Space) Add(objs ...interface{}) error {
	for _, obj := range objs {
		switch obj.(type) {
		case *Body, *Shape, *Constraint:
		default:
			return errors.Errorf("cannot add %T to a space", obj)
		}
	}
	for _, obj := range objs {
		if body, ok := obj.(*Body); ok {
			if _, err := space.AddBody(body); err != nil {
				return err
			}
		}
	}
	for _, obj := range objs {
		if shape, ok := obj.(*Shape); ok {
			if _, err := space.AddShape(shape); err != nil {
				return err
			}
		}
	}
	for _, obj := range objs {
		if constraint, ok := obj.(*Constraint); ok {
			if _, err := space.AddConstraint(constraint); err != nil {
				return err
			}
		}
	}
	return nil
}

// Remove removes constraints, shapes and bodies, in that order. Removing a body also removes its shapes.
func (space *Space) Remove(objs ...interface{}) error {
	for _, obj := range objs {
		switch obj.(type) {
		case *Body, *Shape, *Constraint:
		default:
			return errors.Errorf("cannot remove %T from a space", obj)
		}
	}
	for _, obj := range objs {
		if constraint, ok := obj.(*Constraint); ok {
			if err := space.RemoveConstraint(constraint); err != nil {
				return err
			}
		}
	}
	for _, obj := range objs {
		if shape, ok := obj.(*Shape); ok {
			if err := space.RemoveShape(shape); err != nil {
				return err
			}
		}
	}
	for _, obj := range objs {
		if body, ok := obj.(*Body); ok {
			if err := space.RemoveBody(body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (space *Space) AddBody(body *Body) (*Body, error) {
	if err := space.checkUnlocked("add a body"); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.Wrap(ErrDanglingReference, "cannot add a nil body")
	}
	if body.space != nil {
		return nil, errors.Wrapf(ErrDanglingReference, "%v is already added to a space", body)
	}

	space.bodyIDCounter++
	body.id = space.bodyIDCounter

	if body.typ == BODY_STATIC {
		space.staticBodies = append(space.staticBodies, body)
	} else {
		space.dynamicBodies = append(space.dynamicBodies, body)
	}
	body.space = space
	return body, nil
}

func (space *Space) AddShape(shape *Shape) (*Shape, error) {
	if err := space.checkUnlocked("add a shape"); err != nil {
		return nil, err
	}
	if shape == nil {
		return nil, errors.Wrap(ErrDanglingReference, "cannot add a nil shape")
	}
	if shape.space != nil {
		return nil, errors.Wrapf(ErrDanglingReference, "%v is already added to a space", shape)
	}
	body := shape.body
	if body.space != space {
		return nil, errors.Wrapf(ErrDanglingReference, "the body of %v must be added to the space first", shape)
	}

	space.shapeIDCounter++
	shape.hashid = space.shapeIDCounter

	body.AddShape(shape)

	if body.typ == BODY_STATIC {
		space.staticShapes.class.Insert(shape, shape.hashid)
	} else {
		space.dynamicShapes.class.Insert(shape, shape.hashid)
	}

	shape.space = space
	space.shapes = append(space.shapes, shape)
	return shape, nil
}

func (space *Space) AddConstraint(constraint *Constraint) (*Constraint, error) {
	if err := space.checkUnlocked("add a constraint"); err != nil {
		return nil, err
	}
	if constraint == nil {
		return nil, errors.Wrap(ErrDanglingReference, "cannot add a nil constraint")
	}
	if constraint.space != nil {
		return nil, errors.Wrap(ErrDanglingReference, "constraint is already added to a space")
	}
	a, b := constraint.a, constraint.b
	if a.space != space || b.space != space {
		return nil, errors.Wrapf(ErrDanglingReference, "constraint between %v and %v: add both bodies to the space first", a, b)
	}

	space.constraints = append(space.constraints, constraint)
	a.constraintList = append(a.constraintList, constraint)
	b.constraintList = append(b.constraintList, constraint)
	constraint.space = space
	return constraint, nil
}

func (space *Space) RemoveShape(shape *Shape) error {
	if err := space.checkUnlocked("remove a shape"); err != nil {
		return err
	}
	if shape == nil || shape.space != space {
		return errors.Wrapf(ErrDanglingReference, "%v is not in this space", shape)
	}

	body := shape.body
	if body.typ == BODY_STATIC {
		space.staticShapes.class.Remove(shape, shape.hashid)
	} else {
		space.dynamicShapes.class.Remove(shape, shape.hashid)
	}
	body.RemoveShape(shape)

	for i, s := range space.shapes {
		if s == shape {
			space.shapes = append(space.shapes[:i], space.shapes[i+1:]...)
			break
		}
	}

	arbiters := space.arbiters[:0]
	for _, arb := range space.arbiters {
		if arb.a == shape || arb.b == shape {
			space.pooledArbiters = append(space.pooledArbiters, arb)
			continue
		}
		arbiters = append(arbiters, arb)
	}
	space.arbiters = arbiters

	shape.space = nil

	space.separate(func(last *Arbiter) bool {
		return last.a == shape || last.b == shape
	})
	return nil
}

func (space *Space) RemoveBody(body *Body) error {
	if err := space.checkUnlocked("remove a body"); err != nil {
		return err
	}
	if body == nil || body.space != space {
		return errors.Wrapf(ErrDanglingReference, "%v is not in this space", body)
	}
	if body == space.StaticBody {
		return errors.Wrap(ErrDanglingReference, "cannot remove the space's static body")
	}

	shapes := make([]*Shape, len(body.shapeList))
	copy(shapes, body.shapeList)
	for _, shape := range shapes {
		if shape.space == space {
			if err := space.RemoveShape(shape); err != nil {
				return err
			}
		}
	}

	if body.typ == BODY_STATIC {
		space.staticBodies = removeBody(space.staticBodies, body)
	} else {
		space.dynamicBodies = removeBody(space.dynamicBodies, body)
	}
	body.space = nil
	return nil
}

func (space *Space) RemoveConstraint(constraint *Constraint) error {
	if err := space.checkUnlocked("remove a constraint"); err != nil {
		return err
	}
	if constraint == nil || constraint.space != space {
		return errors.Wrap(ErrDanglingReference, "constraint is not in this space")
	}

	for i, c := range space.constraints {
		if c == constraint {
			space.constraints = append(space.constraints[:i], space.constraints[i+1:]...)
			break
		}
	}
	constraint.a.RemoveConstraint(constraint)
	constraint.b.RemoveConstraint(constraint)
	constraint.space = nil
	return nil
}

func (space *Space) ContainsBody(body *Body) bool {
	return body != nil && body.space == space
}

func (space *Space) ContainsShape(shape *Shape) bool {
	return shape != nil && shape.space == space
}

func (space *Space) ContainsConstraint(constraint *Constraint) bool {
	return constraint != nil && constraint.space == space
}

func removeBody(bodies []*Body, body *Body) []*Body {
	for i, b := range bodies {
		if b == body {
			return append(bodies[:i], bodies[i+1:]...)
		}
	}
	return bodies
}

// bodyTypeChanged moves a body and its shapes between the static and dynamic lists and indexes.
func (space *Space) bodyTypeChanged(body *Body, oldType BodyType) {
	newType := body.typ
	if oldType == BODY_STATIC {
		space.staticBodies = removeBody(space.staticBodies, body)
		space.dynamicBodies = append(space.dynamicBodies, body)
	} else if newType == BODY_STATIC {
		space.dynamicBodies = removeBody(space.dynamicBodies, body)
		space.staticBodies = append(space.staticBodies, body)
	}

	var fromIndex, toIndex *SpatialIndex
	if oldType == BODY_STATIC {
		fromIndex = space.staticShapes
	} else {
		fromIndex = space.dynamicShapes
	}
	if newType == BODY_STATIC {
		toIndex = space.staticShapes
	} else {
		toIndex = space.dynamicShapes
	}

	if fromIndex != toIndex {
		for _, shape := range body.shapeList {
			fromIndex.class.Remove(shape, shape.hashid)
			toIndex.class.Insert(shape, shape.hashid)
		}
	}
}

// EachBody visits the dynamic and kinematic bodies, then the static ones, in the order they were added.
// The space's StaticBody is not included.
func (space *Space) EachBody(f func(body *Body)) {
	space.Lock()
	defer space.Unlock(true)

	for _, body := range space.dynamicBodies {
		f(body)
	}
	for _, body := range space.staticBodies {
		f(body)
	}
}

func (space *Space) EachShape(f func(shape *Shape)) {
	space.Lock()
	defer space.Unlock(true)

	for _, shape := range space.shapes {
		f(shape)
	}
}

func (space *Space) EachConstraint(f func(constraint *Constraint)) {
	space.Lock()
	defer space.Unlock(true)

	for _, constraint := range space.constraints {
		f(constraint)
	}
}

// EachArbiter visits the contacts resolved by the last step.
func (space *Space) EachArbiter(f func(arb *Arbiter)) {
	space.Lock()
	defer space.Unlock(true)

	for _, arb := range space.arbiters {
		f(arb)
	}
}

func (space *Space) ArbiterCount() int {
	return len(space.arbiters)
}

// PointQueryNearest finds the shape closest to point within maxDistance.
// The result's Shape is nil when there is none.
func (space *Space) PointQueryNearest(point Vector, maxDistance float64, filter ShapeFilter) PointQueryInfo {
	out := PointQueryInfo{nil, Vector{}, maxDistance, Vector{}}
	for _, shape := range space.shapes {
		if filter.Reject(shape.filter) {
			continue
		}
		if info := shape.PointQuery(point); info.Distance < out.Distance {
			out = info
		}
	}
	return out
}

// AddPostStepCallback schedules f to run once the current step finishes, when the space can be modified again.
// Only the first callback registered for a key is kept, key must be comparable.
// Outside of a step f runs immediately.
func (space *Space) AddPostStepCallback(f PostStepCallbackFunc, key, data interface{}) bool {
	if space.locked == 0 {
		f(space, key, data)
		return true
	}
	for _, callback := range space.postStepCallbacks {
		if callback.key == key {
			return false
		}
	}
	space.postStepCallbacks = append(space.postStepCallbacks, PostStepCallback{f, key, data})
	return true
}

func (space *Space) Lock() {
	space.locked++
}

// Unlock releases a Lock, running the post-step callbacks when the last lock is released.
func (space *Space) Unlock(runPostStep bool) {
	space.locked--
	if space.locked < 0 {
		panic("physics: space lock underflow")
	}

	if space.locked != 0 || !runPostStep {
		return
	}

	for len(space.postStepCallbacks) > 0 {
		callbacks := space.postStepCallbacks
		space.postStepCallbacks = nil
		for _, callback := range callbacks {
			callback.callback(space, callback.key, callback.data)
		}
	}
}

// QueryReject filters out the pairs that can never collide.
func QueryReject(a, b *Shape) bool {
	return !a.bb.Intersects(b.bb) ||
		a.body == b.body ||
		(a.body.typ != BODY_DYNAMIC && b.body.typ != BODY_DYNAMIC) ||
		a.filter.Reject(b.filter) ||
		QueryRejectConstraints(a.body, b.body)
}

// QueryRejectConstraints reports whether a joint between a and b disables their collisions.
func QueryRejectConstraints(a, b *Body) bool {
	for _, constraint := range a.constraintList {
		if !constraint.collideBodies && ((constraint.a == a && constraint.b == b) ||
			(constraint.a == b && constraint.b == a)) {
			return true
		}
	}

	return false
}

func (space *Space) validateStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return errors.Wrapf(ErrInvalidTimestep, "dt = %v", dt)
	}
	if err := space.checkUnlocked("step"); err != nil {
		return err
	}
	for _, constraint := range space.constraints {
		if constraint.a.space != space || constraint.b.space != space {
			return errors.Wrapf(ErrDanglingReference,
				"constraint between %v and %v references a removed body", constraint.a, constraint.b)
		}
	}
	for _, body := range space.dynamicBodies {
		if body.typ == BODY_DYNAMIC && !body.validMass() {
			return errors.Wrapf(ErrInvalidMass, "%v has mass %v and moment %v", body, body.m, body.i)
		}
	}
	return nil
}

// Step advances the simulation by dt. Nothing is modified when it returns an error.
func (space *Space) Step(dt float64) error {
	if err := space.validateStep(dt); err != nil {
		return err
	}

	space.stamp++

	prev_dt := space.curr_dt
	space.curr_dt = dt

	bodies := space.dynamicBodies

	// Recycle last step's arbiters.
	space.pooledArbiters = append(space.pooledArbiters, space.arbiters...)
	space.arbiters = space.arbiters[:0]

	space.Lock()
	{
		// Integrate velocities.
		damping := math.Pow(space.damping, dt)
		gravity := space.gravity
		for _, body := range bodies {
			body.velocity_func(body, gravity, damping, dt)
		}

		// Find the candidate pairs and run the narrow phase on them in a fixed order.
		space.pairs = space.pairs[:0]
		space.dynamicShapes.class.ReindexQuery(space.collectPair)
		space.dynamicShapes.CollideStatic(space.staticShapes, space.collectPair)
		sort.Slice(space.pairs, func(i, j int) bool {
			pi, pj := space.pairs[i], space.pairs[j]
			if pi.a.hashid != pj.a.hashid {
				return pi.a.hashid < pj.a.hashid
			}
			return pi.b.hashid < pj.b.hashid
		})
		for _, pair := range space.pairs {
			space.collideShapes(pair.a, pair.b)
		}

		arbiters := space.arbiters
		constraints := make([]*Constraint, 0, len(space.constraints))
		for _, constraint := range space.constraints {
			if constraint.solvable() {
				constraints = append(constraints, constraint)
			}
		}

		// Prestep the arbiters and constraints.
		slop := space.collisionSlop
		biasCoef := 1 - math.Pow(space.collisionBias, dt)
		bounceThreshold := math.Max(space.bounceThreshold, 2*gravity.Length()*dt)
		for _, arb := range arbiters {
			arb.PreStep(dt, slop, biasCoef, bounceThreshold)
		}

		for _, constraint := range constraints {
			if constraint.PreSolve != nil {
				constraint.PreSolve(constraint, space)
			}
			constraint.Class.PreStep(dt)
		}

		// Warm start the joints.
		dt_coef := 0.0
		if prev_dt != 0 {
			dt_coef = dt / prev_dt
		}
		for _, constraint := range constraints {
			constraint.Class.ApplyCachedImpulse(dt_coef)
		}

		// Run the impulse solver.
		for i := uint(0); i < space.Iterations; i++ {
			for _, arb := range arbiters {
				arb.ApplyImpulse()
			}
			for _, constraint := range constraints {
				constraint.Class.ApplyImpulse(dt)
			}
		}

		for _, constraint := range constraints {
			if j := constraint.Class.GetImpulse(); !isFinite(j) {
				warn("constraint between %v and %v produced a non-finite impulse %v", constraint.a, constraint.b, j)
			}
		}
		crowded := len(arbiters) > CROWDED_ARBITER_COUNT
		if crowded && !space.crowded {
			warn("%d shape pairs in contact, the solver will slow down", len(arbiters))
		}
		space.crowded = crowded

		// Integrate positions.
		for _, body := range bodies {
			body.position_func(body, dt)
		}

		// Run the constraint post-solve callbacks
		for _, constraint := range constraints {
			if constraint.PostSolve != nil {
				constraint.PostSolve(constraint, space)
			}
		}

		// run the post-solve callbacks
		for _, arb := range arbiters {
			arb.handler.postSolve(arb, space)
		}

		// Pairs that did not touch this step have separated.
		space.separate(func(last *Arbiter) bool {
			return false
		})
	}
	space.Unlock(true)
	return nil
}

func (space *Space) collectPair(a, b *Shape) {
	if QueryReject(a, b) {
		return
	}
	if a.hashid > b.hashid {
		a, b = b, a
	}
	space.pairs = append(space.pairs, shapePair{a, b})
}

func (space *Space) getArbiter() *Arbiter {
	if n := len(space.pooledArbiters); n > 0 {
		arb := space.pooledArbiters[n-1]
		space.pooledArbiters = space.pooledArbiters[:n-1]
		return arb
	}
	return &Arbiter{}
}

// collideShapes runs the narrow phase on a pair and the begin and pre-solve handlers.
func (space *Space) collideShapes(a, b *Shape) {
	info := Collide(a, b)
	if info.count == 0 {
		// shapes are not colliding
		return
	}

	arb := space.getArbiter().Init(&info, space)

	key := newPairKey(a.hashid, b.hashid)
	touch, ok := space.touching[key]
	if !ok {
		touch = &touchingPair{}
		space.touching[key] = touch

		arb.state = ARBITER_STATE_FIRST_COLLISION
		if !arb.handler.begin(arb, space) {
			arb.Ignore()
		}
	} else {
		arb.UserData = touch.last.UserData
		if touch.ignored {
			arb.state = ARBITER_STATE_IGNORE
		}
	}
	touch.stamp = space.stamp

	if arb.state != ARBITER_STATE_IGNORE && arb.handler.preSolve(arb, space) && arb.state != ARBITER_STATE_IGNORE {
		space.arbiters = append(space.arbiters, arb)
	} else {
		space.pooledArbiters = append(space.pooledArbiters, arb)
	}
	touch.ignored = arb.state == ARBITER_STATE_IGNORE
	touch.last = *arb
}

// separate calls the separate handlers of the pairs that did not touch this step, or that match remove.
func (space *Space) separate(remove func(last *Arbiter) bool) {
	var ended []pairKey
	for key, touch := range space.touching {
		if touch.stamp != space.stamp || remove(&touch.last) {
			ended = append(ended, key)
		}
	}
	if len(ended) == 0 {
		return
	}
	sort.Slice(ended, func(i, j int) bool {
		if ended[i].a != ended[j].a {
			return ended[i].a < ended[j].a
		}
		return ended[i].b < ended[j].b
	})

	space.Lock()
	for _, key := range ended {
		touch := space.touching[key]
		delete(space.touching, key)

		arb := touch.last
		arb.handler.separate(&arb, space)
	}
	space.Unlock(true)
}
