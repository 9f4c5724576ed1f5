package math

import (
	"math/big"
)

// check that n divides (a - b)
func CongruentModN(a *big.Int, b *big.Int, N *big.Int) bool {
	aModN := new(big.Int).Mod(a, N)
	bModN := new(big.Int).Mod(b, N)

	return aModN.Cmp(bModN) == 0
}

// EulerTotient calculates phi(N) from the prime factors of N, however many there are
func EulerTotient(primes []*big.Int) *big.Int {
	one := big.NewInt(1)

	// phi <- (p[0] - 1) * (p[1] - 1) * ... * (p[k-1] - 1)
	phi := big.NewInt(1)
	for _, p := range primes {
		pm1 := new(big.Int).Sub(p, one)
		phi.Mul(phi, pm1)
	}

	return phi
}
