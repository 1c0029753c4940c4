// Package interval implements the rational-coordinate algebra that encodes
// a mutable tree into a relational store. Every node owns a reduced positive
// rational p/q, the left endpoint of a half-open interval (p/q, rp/rq] the
// node covers; interval containment encodes ancestry. Coordinates are built
// from Stern-Brocot mediants, so inserting or moving a subtree never forces
// a renumbering of unrelated rows.
package interval

import (
	"fmt"
	"math/big"

	brocoterrors "brocot/internal/errors"
)

// Coordinate is a reduced rational p/q with q > 0, the left endpoint of a
// node's covered interval. The zero value is not valid; use New or Root.
type Coordinate struct {
	P *big.Int
	Q *big.Int
}

// Root returns the fixed root coordinate 0/1. Its implicit right endpoint
// is 1/1, so a root covers the whole unit interval (0, 1].
func Root() Coordinate {
	return Coordinate{P: big.NewInt(0), Q: big.NewInt(1)}
}

// New builds a coordinate from int64 parts. Intended for tests and fixtures;
// production values flow through the mediant construction and never need
// reduction here, but New validates anyway.
func New(p, q int64) (Coordinate, error) {
	return NewFromBig(big.NewInt(p), big.NewInt(q))
}

// NewFromBig builds a coordinate from big integers, validating the
// coordinate invariants: q > 0, p >= 0, gcd(p, q) = 1.
func NewFromBig(p, q *big.Int) (Coordinate, error) {
	c := Coordinate{P: new(big.Int).Set(p), Q: new(big.Int).Set(q)}
	if err := c.Check(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Check verifies the stored-coordinate invariants and returns an
// INVARIANT_VIOLATION error describing the first failure.
func (c Coordinate) Check() error {
	if c.P == nil || c.Q == nil {
		return brocoterrors.New(brocoterrors.InvariantViolation, "coordinate has nil parts")
	}
	if c.Q.Sign() <= 0 {
		return brocoterrors.New(brocoterrors.InvariantViolation,
			fmt.Sprintf("denominator must be positive, got %s", c.Q))
	}
	if c.P.Sign() < 0 {
		return brocoterrors.New(brocoterrors.InvariantViolation,
			fmt.Sprintf("numerator must be non-negative, got %s", c.P))
	}
	g := new(big.Int).GCD(nil, nil, c.P, c.Q)
	// gcd(0, q) = q, so the root 0/1 passes and 0/q for q > 1 does not.
	if g.Cmp(bigOne) != 0 {
		return brocoterrors.New(brocoterrors.InvariantViolation,
			fmt.Sprintf("coordinate %s/%s is not reduced (gcd %s)", c.P, c.Q, g))
	}
	return nil
}

// IsRoot reports whether c is the root coordinate 0/1.
func (c Coordinate) IsRoot() bool {
	return c.P.Sign() == 0
}

// Clone returns a deep copy. big.Int values are mutable, so anything that
// stores a Coordinate long-term should clone it first.
func (c Coordinate) Clone() Coordinate {
	return Coordinate{P: new(big.Int).Set(c.P), Q: new(big.Int).Set(c.Q)}
}

// Equal reports exact equality. Both sides are reduced, so comparing the
// parts is the same as comparing the rational values.
func (c Coordinate) Equal(other Coordinate) bool {
	return c.P.Cmp(other.P) == 0 && c.Q.Cmp(other.Q) == 0
}

// Cmp compares two coordinates as rationals by cross-multiplication:
// -1 if c < other, 0 if equal, +1 if c > other. No floating point.
func (c Coordinate) Cmp(other Coordinate) int {
	left := new(big.Int).Mul(c.P, other.Q)
	right := new(big.Int).Mul(other.P, c.Q)
	return left.Cmp(right)
}

// Float64 returns a floating approximation of the coordinate. Callers use
// this only as an index hint; it has no correctness role (precision loss at
// depth would otherwise corrupt ancestry queries).
func (c Coordinate) Float64() float64 {
	f, _ := new(big.Rat).SetFrac(c.P, c.Q).Float64()
	return f
}

// String renders "p/q".
func (c Coordinate) String() string {
	return fmt.Sprintf("%s/%s", c.P, c.Q)
}

var bigOne = big.NewInt(1)
