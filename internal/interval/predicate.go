package interval

import (
	"math/big"
)

// IsDescendant reports whether the node at candidate is a strict descendant
// of the node whose covered interval is (ancestor, ancestorRight]. The test
// is pure integer cross-multiplication:
//
//	candidate > ancestor        (strictly right of the left endpoint)
//	candidate < ancestorRight   (left of the right endpoint)
//
// A coordinate equal to ancestorRight is the next sibling's left endpoint,
// not a descendant, so the right-hand comparison is strict; with reduced
// fractions that matches the half-open interval minus its boundary point.
// Floats never participate here: at depth ~20 the
// denominators exceed float64 precision and an approximate test produces
// wrong ancestry.
func IsDescendant(candidate, ancestor, ancestorRight Coordinate) bool {
	// candidate.P * ancestor.Q > candidate.Q * ancestor.P
	left := new(big.Int).Mul(candidate.P, ancestor.Q)
	right := new(big.Int).Mul(candidate.Q, ancestor.P)
	if left.Cmp(right) <= 0 {
		return false
	}
	// candidate.P * ancestorRight.Q < candidate.Q * ancestorRight.P
	left.Mul(candidate.P, ancestorRight.Q)
	right.Mul(candidate.Q, ancestorRight.P)
	return left.Cmp(right) < 0
}

// DescendantOf is the two-argument form used by callers that only hold left
// coordinates; it derives the ancestor's right endpoint itself.
func (a *Algebra) DescendantOf(candidate, ancestor Coordinate) (bool, error) {
	right, err := a.RightEndpoint(ancestor)
	if err != nil {
		return false, err
	}
	return IsDescendant(candidate, ancestor, right), nil
}
