package interval

import (
	"math/big"
)

// Mediant returns (a.P+b.P)/(a.Q+b.Q), the rational strictly between a and
// b with the smallest denominator. The mediant of two Stern-Brocot
// neighbors is always reduced, so no gcd step is needed here.
func Mediant(a, b Coordinate) Coordinate {
	return Coordinate{
		P: new(big.Int).Add(a.P, b.P),
		Q: new(big.Int).Add(a.Q, b.Q),
	}
}

// NextChild computes the next free child slot under the parent at left
// coordinate parent. lastChild is the existing child with the largest
// denominator (the most recently allocated slot), or nil when the parent
// has no children yet:
//
//	no children: mediant of the parent's endpoints
//	otherwise:   mediant of the parent's left endpoint and lastChild
//
// Each allocation lands strictly between the parent's left endpoint and
// the previous slot, so sibling intervals stay disjoint and no existing
// coordinate ever has to move. The caller must hold the parent locked for
// the read-compute-insert window; two writers racing here would mint the
// same slot.
func (a *Algebra) NextChild(parent Coordinate, lastChild *Coordinate) (Coordinate, error) {
	if err := parent.Check(); err != nil {
		return Coordinate{}, err
	}
	if lastChild == nil {
		right, err := a.RightEndpoint(parent)
		if err != nil {
			return Coordinate{}, err
		}
		return Mediant(parent, right), nil
	}
	if err := lastChild.Check(); err != nil {
		return Coordinate{}, err
	}
	return Mediant(parent, *lastChild), nil
}
