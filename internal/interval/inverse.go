package interval

import (
	"math/big"

	brocoterrors "brocot/internal/errors"
)

// Inverse computes the multiplicative inverse of a modulo m via the
// extended Euclidean algorithm, tracking the Bezout coefficient of a.
// The result is the canonical representative in [0, m); callers depend on
// canonicality, not just correctness mod m. a may lie outside [0, m),
// including negative values. Returns NO_MODULAR_INVERSE when gcd(a, m) != 1,
// which in this codebase always means a coordinate invariant was broken
// upstream of the call.
func Inverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, brocoterrors.Newf(brocoterrors.NoModularInverse,
			"modulus must be positive, got %v", m)
	}
	// Normalize into [0, m) first; big.Int.Mod is Euclidean for m > 0 so
	// negative a lands in range too.
	r := new(big.Int).Mod(a, m)

	// Extended Euclid over (r, m). oldS tracks the coefficient of a, which
	// is all we need; the coefficient of m is dropped.
	oldR, curR := new(big.Int).Set(r), new(big.Int).Set(m)
	oldS, curS := big.NewInt(1), big.NewInt(0)
	quot, tmp := new(big.Int), new(big.Int)

	for curR.Sign() != 0 {
		quot.Div(oldR, curR)

		tmp.Mul(quot, curR)
		oldR.Sub(oldR, tmp)
		oldR, curR = curR, oldR

		tmp.Mul(quot, curS)
		oldS.Sub(oldS, tmp)
		oldS, curS = curS, oldS
	}

	if oldR.Cmp(bigOne) != 0 {
		return nil, brocoterrors.Newf(brocoterrors.NoModularInverse,
			"%s has no inverse modulo %s (gcd %s)", a, m, oldR)
	}
	if oldS.Sign() < 0 {
		oldS.Add(oldS, m)
	}
	return oldS, nil
}
