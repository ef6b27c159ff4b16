package physics

//Draw flags
const (
	DRAW_SHAPES           = 1 << 0
	DRAW_CONSTRAINTS      = 1 << 1
	DRAW_COLLISION_POINTS = 1 << 2
)

// FColor is an RGBA color with components in [0, 1].
type FColor struct {
	R, G, B, A float32
}

// Drawer renders the debug view of a space. All coordinates are in world space.
type Drawer interface {
	DrawCircle(pos Vector, angle, radius float64, outline, fill FColor, data interface{})
	DrawSegment(a, b Vector, fill FColor, data interface{})
	DrawFatSegment(a, b Vector, radius float64, outline, fill FColor, data interface{})
	DrawPolygon(verts []Vector, radius float64, outline, fill FColor, data interface{})
	DrawDot(size float64, pos Vector, fill FColor, data interface{})

	Flags() uint
	OutlineColor() FColor
	ShapeColor(shape *Shape, data interface{}) FColor
	ConstraintColor() FColor
	CollisionPointColor() FColor
	Data() interface{}
}

func DrawShape(shape *Shape, options Drawer) {
	body := shape.body
	data := options.Data()

	outline := options.OutlineColor()
	fill := options.ShapeColor(shape, data)

	switch class := shape.Class.(type) {
	case *Circle:
		options.DrawCircle(class.tc, body.a, class.r, outline, fill, data)
	case *Segment:
		options.DrawFatSegment(class.ta, class.tb, class.r, outline, fill, data)
	case *PolyShape:
		options.DrawPolygon(class.WorldVerts(), class.r, outline, fill, data)
	default:
		panic("Unknown shape type")
	}
}

// DrawConstraint draws a joint as a line between its anchors.
func DrawConstraint(constraint *Constraint, options Drawer) {
	data := options.Data()
	color := options.ConstraintColor()

	a, b := constraint.WorldAnchors()

	switch constraint.Class.(type) {
	case *PivotJoint:
		options.DrawDot(3, a, color, data)
		options.DrawDot(3, b, color, data)
	case *DampedSpring:
		options.DrawDot(5, a, color, data)
		options.DrawDot(5, b, color, data)
		options.DrawSegment(a, b, color, data)
	default:
		options.DrawDot(5, a, color, data)
		options.DrawDot(5, b, color, data)
		options.DrawSegment(a, b, color, data)
	}
}

func DrawSpace(space *Space, options Drawer) {
	flags := options.Flags()

	if flags&DRAW_SHAPES != 0 {
		for _, shape := range space.shapes {
			DrawShape(shape, options)
		}
	}

	if flags&DRAW_CONSTRAINTS != 0 {
		for _, constraint := range space.constraints {
			DrawConstraint(constraint, options)
		}
	}

	if flags&DRAW_COLLISION_POINTS != 0 {
		data := options.Data()
		color := options.CollisionPointColor()

		for _, arb := range space.arbiters {
			n := arb.n

			for j := 0; j < arb.count; j++ {
				p1 := arb.body_a.p.Add(arb.contacts[j].r1)
				p2 := arb.body_b.p.Add(arb.contacts[j].r2)

				a := p1.Add(n.Mult(-2))
				b := p2.Add(n.Mult(2))
				options.DrawSegment(a, b, color, data)
			}
		}
	}
}
