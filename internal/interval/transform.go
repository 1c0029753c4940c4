package interval

import (
	"math/big"

	brocoterrors "brocot/internal/errors"
)

// Transform is the 2x2 integer linear map applied to every descendant
// coordinate when a subtree is reparented:
//
//	p' = Cpp*p + Cpq*q
//	q' = Cqp*p + Cqq*q
//
// It is the unique Mobius-type map carrying the old covered interval onto
// the new one while preserving interior structure, so descendants keep
// their exact relative positions and never need re-derivation.
type Transform struct {
	Cpp *big.Int
	Cpq *big.Int
	Cqp *big.Int
	Cqq *big.Int
}

// RelocationTransform derives the transform that moves the subtree covered
// by (old, rightOf(old)] onto (new, rightOf(new)]. newLeft must already be
// an allocated free slot under the new parent; the transform maps oldLeft
// to exactly newLeft, which doubles as a cheap self-test for callers.
func (a *Algebra) RelocationTransform(oldLeft, newLeft Coordinate) (Transform, error) {
	oldRight, err := a.RightEndpoint(oldLeft)
	if err != nil {
		return Transform{}, err
	}
	newRight, err := a.RightEndpoint(newLeft)
	if err != nil {
		return Transform{}, err
	}

	mulSub := func(a1, b1, a2, b2 *big.Int) *big.Int {
		out := new(big.Int).Mul(a1, b1)
		return out.Sub(out, new(big.Int).Mul(a2, b2))
	}
	return Transform{
		Cpp: mulSub(oldLeft.Q, newRight.P, oldRight.Q, newLeft.P),
		Cpq: mulSub(oldRight.P, newLeft.P, oldLeft.P, newRight.P),
		Cqp: mulSub(oldLeft.Q, newRight.Q, oldRight.Q, newLeft.Q),
		Cqq: mulSub(oldRight.P, newLeft.Q, oldLeft.P, newRight.Q),
	}, nil
}

// Apply maps one coordinate through the transform. The map is derived from
// coprime neighbor pairs, so reduced input stays reduced; Apply verifies
// that post-condition rather than re-reducing, because an unreduced result
// means the transform was built from inconsistent endpoints.
func (t Transform) Apply(c Coordinate) (Coordinate, error) {
	p := new(big.Int).Mul(t.Cpp, c.P)
	p.Add(p, new(big.Int).Mul(t.Cpq, c.Q))
	q := new(big.Int).Mul(t.Cqp, c.P)
	q.Add(q, new(big.Int).Mul(t.Cqq, c.Q))

	out := Coordinate{P: p, Q: q}
	if err := out.Check(); err != nil {
		return Coordinate{}, brocoterrors.Wrap(brocoterrors.InvariantViolation,
			"relocation transform produced an invalid coordinate", err)
	}
	return out, nil
}
