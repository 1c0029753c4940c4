package interval

import (
	"math/big"

	brocoterrors "brocot/internal/errors"
)

// Divider is the integer-division strategy used by endpoint derivation and
// the ancestor walk. Every division in the algebra is exact by the neighbor
// identity, but storage backends that push division into their query engine
// truncate large integers differently; isolating the operation behind a
// strategy keeps that branching out of the algebra.
type Divider interface {
	// Divide returns a/b. b is never zero and a is always an exact
	// multiple of b when called from the algebra.
	Divide(a, b *big.Int) (*big.Int, error)
}

// ExactDivider is the in-process implementation: plain big.Int quotient,
// with a remainder check that surfaces broken invariants instead of
// silently truncating.
type ExactDivider struct{}

// Divide implements Divider.
func (ExactDivider) Divide(a, b *big.Int) (*big.Int, error) {
	quot, rem := new(big.Int).QuoRem(a, b, new(big.Int))
	if rem.Sign() != 0 {
		return nil, brocoterrors.Newf(brocoterrors.InvariantViolation,
			"expected exact division, %s / %s leaves remainder %s", a, b, rem)
	}
	return quot, nil
}
