package physics

// CollisionBeginFunc is called the first step two shapes touch. Returning false ignores the
// pair until the shapes separate.
type CollisionBeginFunc func(arb *Arbiter, space *Space, userData interface{}) bool

// CollisionPreSolveFunc is called every step the shapes touch, before the solver. Returning false skips the pair for this step.
type CollisionPreSolveFunc func(arb *Arbiter, space *Space, userData interface{}) bool

// CollisionPostSolveFunc is called every step the shapes touch, after the solver.
type CollisionPostSolveFunc func(arb *Arbiter, space *Space, userData interface{})

// CollisionSeparateFunc is called the first step two shapes stop touching, or when one of them is removed.
type CollisionSeparateFunc func(arb *Arbiter, space *Space, userData interface{})

// CollisionHandler reacts to contacts between shapes of TypeA and TypeB. Nil funcs are skipped.
type CollisionHandler struct {
	TypeA, TypeB  CollisionType
	BeginFunc     CollisionBeginFunc
	PreSolveFunc  CollisionPreSolveFunc
	PostSolveFunc CollisionPostSolveFunc
	SeparateFunc  CollisionSeparateFunc
	UserData      interface{}
}

func (handler *CollisionHandler) begin(arb *Arbiter, space *Space) bool {
	if handler.BeginFunc == nil {
		return true
	}
	return handler.BeginFunc(arb, space, handler.UserData)
}

func (handler *CollisionHandler) preSolve(arb *Arbiter, space *Space) bool {
	if handler.PreSolveFunc == nil {
		return true
	}
	return handler.PreSolveFunc(arb, space, handler.UserData)
}

func (handler *CollisionHandler) postSolve(arb *Arbiter, space *Space) {
	if handler.PostSolveFunc != nil {
		handler.PostSolveFunc(arb, space, handler.UserData)
	}
}

func (handler *CollisionHandler) separate(arb *Arbiter, space *Space) {
	if handler.SeparateFunc != nil {
		handler.SeparateFunc(arb, space, handler.UserData)
	}
}

var CollisionHandlerDoNothing = CollisionHandler{
	WILDCARD_COLLISION_TYPE,
	WILDCARD_COLLISION_TYPE,
	AlwaysCollide,
	AlwaysCollide,
	DoNothing,
	DoNothing,
	nil,
}

// CollisionHandlerDefault forwards to the wildcard handlers of both shapes.
var CollisionHandlerDefault = CollisionHandler{
	WILDCARD_COLLISION_TYPE,
	WILDCARD_COLLISION_TYPE,
	DefaultBegin,
	DefaultPreSolve,
	DefaultPostSolve,
	DefaultSeparate,
	nil,
}

func AlwaysCollide(_ *Arbiter, _ *Space, _ interface{}) bool {
	return true
}

func DoNothing(_ *Arbiter, _ *Space, _ interface{}) {}

func DefaultBegin(arb *Arbiter, space *Space, _ interface{}) bool {
	return arb.CallWildcardBeginA(space) && arb.CallWildcardBeginB(space)
}

func DefaultPreSolve(arb *Arbiter, space *Space, _ interface{}) bool {
	return arb.CallWildcardPreSolveA(space) && arb.CallWildcardPreSolveB(space)
}

func DefaultPostSolve(arb *Arbiter, space *Space, _ interface{}) {
	arb.CallWildcardPostSolveA(space)
	arb.CallWildcardPostSolveB(space)
}

func DefaultSeparate(arb *Arbiter, space *Space, _ interface{}) {
	arb.CallWildcardSeparateA(space)
	arb.CallWildcardSeparateB(space)
}

// typePair identifies a handler by its collision types, lowest first. The wildcard type
// sorts last, so a wildcard handler for t is keyed {t, WILDCARD_COLLISION_TYPE}.
type typePair struct {
	a, b CollisionType
}

func newTypePair(a, b CollisionType) typePair {
	if a > b {
		a, b = b, a
	}
	return typePair{a, b}
}

// LookupHandler finds the handler registered for the pair of types in either order.
func (space *Space) LookupHandler(a, b CollisionType, defaultValue *CollisionHandler) *CollisionHandler {
	if handler, ok := space.collisionHandlers[newTypePair(a, b)]; ok {
		return handler
	}
	return defaultValue
}

// NewCollisionHandler returns the handler for collisions between shapes of types a and b,
// creating it on first use. Its default funcs run the wildcard handlers of both types.
func (space *Space) NewCollisionHandler(collisionTypeA, collisionTypeB CollisionType) *CollisionHandler {
	key := newTypePair(collisionTypeA, collisionTypeB)
	if handler, ok := space.collisionHandlers[key]; ok {
		return handler
	}

	handler := &CollisionHandler{
		TypeA:         collisionTypeA,
		TypeB:         collisionTypeB,
		BeginFunc:     DefaultBegin,
		PreSolveFunc:  DefaultPreSolve,
		PostSolveFunc: DefaultPostSolve,
		SeparateFunc:  DefaultSeparate,
	}
	space.collisionHandlers[key] = handler
	return handler
}

// NewWildcardCollisionHandler returns the handler called for every collision involving collisionType.
func (space *Space) NewWildcardCollisionHandler(collisionType CollisionType) *CollisionHandler {
	space.UseWildcardDefaultHandler()

	key := newTypePair(collisionType, WILDCARD_COLLISION_TYPE)
	if handler, ok := space.collisionHandlers[key]; ok {
		return handler
	}

	handler := &CollisionHandler{
		TypeA:         collisionType,
		TypeB:         WILDCARD_COLLISION_TYPE,
		BeginFunc:     AlwaysCollide,
		PreSolveFunc:  AlwaysCollide,
		PostSolveFunc: DoNothing,
		SeparateFunc:  DoNothing,
	}
	space.collisionHandlers[key] = handler
	return handler
}

// NewDefaultCollisionHandler returns the handler used when no other handler matches.
func (space *Space) NewDefaultCollisionHandler() *CollisionHandler {
	space.UseWildcardDefaultHandler()
	return space.defaultHandler
}

func (space *Space) UseWildcardDefaultHandler() {
	if !space.usesWildcards {
		space.usesWildcards = true
		handler := CollisionHandlerDefault
		space.defaultHandler = &handler
	}
}
