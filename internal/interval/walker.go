package interval

import (
	"math/big"
)

// Ancestors returns the chain of ancestor coordinates of c, nearest parent
// first, ending with the root 0/1. The root's own chain is empty. The walk
// needs nothing but the leaf coordinate: each step inverts the mediant
// construction, so
//
//	x = inverse(p, q);  (p, q) <- ((x*p - 1)/q, x)
//
// recovers the parent's left coordinate exactly. The walk is pure and can
// be recomputed at any time; it terminates because denominators strictly
// decrease and bottom out at the root.
func (a *Algebra) Ancestors(c Coordinate) ([]Coordinate, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	var chain []Coordinate
	p := new(big.Int).Set(c.P)
	q := new(big.Int).Set(c.Q)
	for p.Sign() != 0 {
		x, err := Inverse(p, q)
		if err != nil {
			return nil, err
		}
		num := new(big.Int).Mul(x, p)
		num.Sub(num, bigOne)
		nextP, err := a.div.Divide(num, q)
		if err != nil {
			return nil, err
		}
		p, q = nextP, x
		chain = append(chain, Coordinate{P: new(big.Int).Set(p), Q: new(big.Int).Set(q)})
	}
	return chain, nil
}

// Depth returns the walk length of c: 0 for a root, 1 for its children,
// and so on.
func (a *Algebra) Depth(c Coordinate) (int, error) {
	chain, err := a.Ancestors(c)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// Parent returns the immediate parent coordinate of c, or ok=false when c
// is the root. Cheaper than Ancestors when only one step is needed.
func (a *Algebra) Parent(c Coordinate) (Coordinate, bool, error) {
	if err := c.Check(); err != nil {
		return Coordinate{}, false, err
	}
	if c.IsRoot() {
		return Coordinate{}, false, nil
	}
	x, err := Inverse(c.P, c.Q)
	if err != nil {
		return Coordinate{}, false, err
	}
	num := new(big.Int).Mul(x, c.P)
	num.Sub(num, bigOne)
	p, err := a.div.Divide(num, c.Q)
	if err != nil {
		return Coordinate{}, false, err
	}
	return Coordinate{P: p, Q: x}, true, nil
}
