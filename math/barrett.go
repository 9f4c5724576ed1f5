/*
Package math holds the modular arithmetic used underneath the RSA operations of rsapad.

The central type is [BarrettReduction], a reduction context bound to a single modulus.
It is what the rsapad Blinder uses to multiply and square its blinding factors.
*/
package math

import (
	"fmt"
	"math/big"
)

// BarrettReduction reduces integers modulo a fixed n using Barrett's method (HAC 14.42, base 2).
//
// For 0 <= x < 2^(2k), where k is the bit length of n, a reduction costs two multiplications
// and at most two subtractions. Anything outside that range falls back to [big.Int.Mod].
//
// A BarrettReduction is immutable after construction and may be shared between goroutines.
type BarrettReduction struct {
	modulus *big.Int
	mu      *big.Int // floor(2^(2k) / n)
	k       uint
	bound   *big.Int // 2^(2k)
}

// NewBarrettReduction returns a reduction context for the modulus n, which must be greater than 1
func NewBarrettReduction(n *big.Int) (*BarrettReduction, error) {
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 {
		return nil, fmt.Errorf("barrett reduction requires a modulus greater than 1")
	}

	k := uint(n.BitLen())
	bound := new(big.Int).Lsh(big.NewInt(1), 2*k)
	mu := new(big.Int).Quo(bound, n)

	return &BarrettReduction{
		modulus: new(big.Int).Set(n),
		mu:      mu,
		k:       k,
		bound:   bound,
	}, nil
}

// Modulus returns a copy of n
func (br *BarrettReduction) Modulus() *big.Int {
	return new(big.Int).Set(br.modulus)
}

// ModulusBits returns the bit length of n
func (br *BarrettReduction) ModulusBits() int {
	return int(br.k)
}

// Reduce returns x mod n in a newly allocated integer
func (br *BarrettReduction) Reduce(x *big.Int) *big.Int {
	if x.Sign() < 0 || x.Cmp(br.bound) >= 0 {
		return new(big.Int).Mod(x, br.modulus)
	}

	// q <- ((x >> (k-1)) * mu) >> (k+1)
	q := new(big.Int).Rsh(x, br.k-1)
	q.Mul(q, br.mu)
	q.Rsh(q, br.k+1)

	// r <- x - q*n, which is off from x mod n by at most 2n
	r := new(big.Int).Mul(q, br.modulus)
	r.Sub(x, r)
	for r.Cmp(br.modulus) >= 0 {
		r.Sub(r, br.modulus)
	}

	return r
}

// Multiply returns x * y mod n
func (br *BarrettReduction) Multiply(x, y *big.Int) *big.Int {
	return br.Reduce(new(big.Int).Mul(x, y))
}

// Square returns x^2 mod n
func (br *BarrettReduction) Square(x *big.Int) *big.Int {
	return br.Reduce(new(big.Int).Mul(x, x))
}
