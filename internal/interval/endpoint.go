package interval

import (
	"math/big"

	brocoterrors "brocot/internal/errors"
)

// Algebra bundles the coordinate operations that need the integer-division
// strategy. One Algebra is safe for concurrent use; it holds no mutable
// state.
type Algebra struct {
	div Divider
}

// NewAlgebra builds an Algebra with the given division strategy. A nil
// divider selects the in-process ExactDivider.
func NewAlgebra(div Divider) *Algebra {
	if div == nil {
		div = ExactDivider{}
	}
	return &Algebra{div: div}
}

// RightEndpoint derives the right endpoint of the interval covered by the
// node at c. Only the left endpoint is ever stored; the right one is a pure
// function of it:
//
//	p = 0: right is 1/1 (the root covers the whole unit interval)
//	p = 1: right is 1/(q-1)
//	else:  rp = inverse(q, p), rq = (rp*q - 1)/p
//
// The general case follows from the Stern-Brocot neighbor identity
// q*rp = 1 + p*rq, which also guarantees the division is exact.
func (a *Algebra) RightEndpoint(c Coordinate) (Coordinate, error) {
	if err := c.Check(); err != nil {
		return Coordinate{}, err
	}
	if c.P.Sign() == 0 {
		return Coordinate{P: big.NewInt(1), Q: big.NewInt(1)}, nil
	}
	if c.P.Cmp(bigOne) == 0 {
		if c.Q.Cmp(bigOne) == 0 {
			// 1/1 is only ever a right endpoint, never a stored left one.
			return Coordinate{}, brocoterrors.New(brocoterrors.InvariantViolation,
				"1/1 is not a valid node coordinate")
		}
		return Coordinate{P: big.NewInt(1), Q: new(big.Int).Sub(c.Q, bigOne)}, nil
	}

	rp, err := Inverse(c.Q, c.P)
	if err != nil {
		return Coordinate{}, err
	}
	num := new(big.Int).Mul(rp, c.Q)
	num.Sub(num, bigOne)
	rq, err := a.div.Divide(num, c.P)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{P: rp, Q: rq}, nil
}
