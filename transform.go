package physics

// Transform is a 2x3 affine matrix. Columns a,b and c,d are the images of the x and y axes,
// tx,ty is the translation:
//
//	| a c tx |
//	| b d ty |
type Transform struct {
	a, b, c, d, tx, ty float64
}

func NewTransformIdentity() Transform {
	return Transform{a: 1, d: 1}
}

func NewTransformTranslate(translate Vector) Transform {
	return Transform{a: 1, d: 1, tx: translate.X, ty: translate.Y}
}

// NewTransformRigid rotates about the origin, then translates.
func NewTransformRigid(translate Vector, radians float64) Transform {
	rot := ForAngle(radians)
	return Transform{
		a: rot.X, b: rot.Y,
		c: -rot.Y, d: rot.X,
		tx: translate.X, ty: translate.Y,
	}
}

// NewTransformRigidInverse inverts a transform with no scale or shear by transposing its rotation.
func NewTransformRigidInverse(t Transform) Transform {
	return Transform{a: t.a, b: t.c, c: t.b, d: t.d}.translated(t)
}

func (t Transform) Inverse() Transform {
	det := t.a*t.d - t.c*t.b
	return Transform{a: t.d / det, b: -t.b / det, c: -t.c / det, d: t.a / det}.translated(t)
}

// translated sets the translation of the inverse linear part inv so that it undoes t.
func (inv Transform) translated(t Transform) Transform {
	offset := inv.Vect(Vector{t.tx, t.ty}).Neg()
	inv.tx, inv.ty = offset.X, offset.Y
	return inv
}

// Point maps a position, the translation applies.
func (t Transform) Point(p Vector) Vector {
	return t.Vect(p).Add(Vector{t.tx, t.ty})
}

// Vect maps a direction, the translation does not apply.
func (t Transform) Vect(v Vector) Vector {
	return Vector{t.a*v.X + t.c*v.Y, t.b*v.X + t.d*v.Y}
}
