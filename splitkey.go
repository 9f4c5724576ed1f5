package rsapad

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"

	bzmath "github.com/bastionzero/rsapad/math"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// SplitBy determines the algorithm used to split a private exponent and to combine partial signatures
type SplitBy int

const (
	// shards multiply to D (mod phi(N)); partial signatures are chained by exponentiation
	Multiplication SplitBy = iota
	// shards add up to D (mod phi(N)); partial signatures are multiplied together
	Addition
)

// A KeyShard is one piece of a split RSA private exponent. The public key matches that of the whole original key.
//
// Shards sign encoded representatives directly and are never blinded: a shard exponent is not the
// inverse of E, so the k^E mask would not cancel.
type KeyShard struct {
	PublicKey *rsa.PublicKey
	D         *big.Int
}

// SplitD returns k shards that together compose priv.D.
// Whichever SplitBy is used here must also be used when combining signatures with SignNext
func SplitD(random io.Reader, priv *rsa.PrivateKey, k int, splitBy SplitBy) ([]*KeyShard, error) {
	if k < 2 {
		return nil, fmt.Errorf("cannot split key into fewer than 2 shards")
	}
	if priv == nil || len(priv.Primes) < 2 {
		return nil, fmt.Errorf("cannot split a key without its prime factors")
	}
	if random == nil {
		random = rand.Reader
	}

	phi := bzmath.EulerTotient(priv.Primes)

	switch splitBy {
	case Multiplication:
		return splitMultiplicative(random, priv, k, phi)
	case Addition:
		return splitAdditive(random, priv, k, phi)
	default:
		return nil, fmt.Errorf("unrecognized splitBy argument: %v", splitBy)
	}
}

// each round splits the current seed into a pair whose product is congruent to it (mod phi).
// One half becomes a shard and the other the next seed, until only the last shard is left
func splitMultiplicative(random io.Reader, priv *rsa.PrivateKey, k int, phi *big.Int) ([]*KeyShard, error) {
	shards := make([]*KeyShard, 0, k)
	seed := priv.D

	for len(shards) < k-1 {
		shardA, err := shardCandidate(random, phi, seed)
		if err != nil {
			return nil, err
		}

		// shardCandidate guarantees shardA is coprime to phi, so the inverse exists
		shardAInverse := new(big.Int).ModInverse(shardA, phi)
		if shardAInverse == nil {
			continue
		}

		shards = append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: shardA})

		// seed <- seed / shardA (mod phi)
		seed = new(big.Int).Mul(seed, shardAInverse)
		seed.Mod(seed, phi)
	}

	return append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: seed}), nil
}

// picks k-1 random shards and lets the last one make up the difference to D (mod phi)
func splitAdditive(random io.Reader, priv *rsa.PrivateKey, k int, phi *big.Int) ([]*KeyShard, error) {
	for {
		shards := make([]*KeyShard, 0, k)
		sum := new(big.Int)

		for len(shards) < k-1 {
			d, err := shardCandidate(random, phi, priv.D)
			if err != nil {
				return nil, err
			}
			if shardIn(shards, d) {
				continue
			}
			shards = append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: d})
			sum.Add(sum, d)
		}

		// last <- D - sum (mod phi)
		last := new(big.Int).Sub(priv.D, sum)
		last.Mod(last, phi)

		// a zero or duplicate final shard is astronomically unlikely, but not allowed; start over
		if last.Sign() == 0 || shardIn(shards, last) {
			continue
		}

		return append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: last}), nil
	}
}

// returns a random number between 1 and phi that is coprime to phi and not equal to 0, 1 or seed
func shardCandidate(random io.Reader, phi *big.Int, seed *big.Int) (*big.Int, error) {
	for {
		r, err := rand.Int(random, phi)
		if err != nil {
			return nil, fmt.Errorf("failed to draw shard: %w", err)
		}

		if r.Cmp(bigZero) == 0 || r.Cmp(bigOne) == 0 || r.Cmp(seed) == 0 {
			continue
		}

		gcd := new(big.Int).GCD(nil, nil, r, phi)
		if gcd.Cmp(bigOne) != 0 {
			continue
		}

		return r, nil
	}
}

func shardIn(shards []*KeyShard, d *big.Int) bool {
	for _, s := range shards {
		if s.D.Cmp(d) == 0 {
			return true
		}
	}
	return false
}

// EncodeForSplitSigning encodes msg with the named padding scheme for pub's key size, producing the
// representative that every party signs. Randomized schemes are refused: all parties have to sign
// exactly the same representative
func EncodeForSplitSigning(padding string, pub *rsa.PublicKey, msg []byte) ([]byte, error) {
	scheme, err := CreateOrError(padding)
	if err != nil {
		return nil, err
	}
	if ds2, ok := scheme.(*ISO9796DS2); ok && ds2.saltLen > 0 {
		return nil, invalidArgument("%s is randomized and cannot be used for split signing", scheme.Name())
	}

	scheme.Update(msg)
	raw, err := scheme.RawData()
	if err != nil {
		return nil, err
	}

	return scheme.EncodingOf(raw, representativeBits(pub), nil)
}

// SignFirst uses the given key shard to make the first partial signature over an encoded representative
func SignFirst(shard *KeyShard, representative []byte) ([]byte, error) {
	m := new(big.Int).SetBytes(representative)
	if m.Cmp(shard.PublicKey.N) >= 0 {
		return nil, ErrMessageTooLong
	}

	sig := new(big.Int).Exp(m, shard.D, shard.PublicKey.N)
	return sig.FillBytes(make([]byte, shard.PublicKey.Size())), nil
}

// SignNext uses the given key shard to extend a partial signature
//
// If [SplitBy].Multiplication is used, nextSig <- partialSig^shard (mod N), i.e. a chain of exponentiation
//
// If [SplitBy].Addition is used, nextSig <- partialSig * representative^shard (mod N), i.e. a chain of multiplication
func SignNext(shard *KeyShard, representative []byte, splitBy SplitBy, partialSig []byte) ([]byte, error) {
	n := shard.PublicKey.N
	partial := new(big.Int).SetBytes(partialSig)
	if partial.Cmp(n) >= 0 {
		return nil, fmt.Errorf("partial signature is out of range for the public key")
	}

	var next *big.Int
	switch splitBy {
	case Multiplication:
		next = new(big.Int).Exp(partial, shard.D, n)
	case Addition:
		base, err := SignFirst(shard, representative)
		if err != nil {
			return nil, err
		}
		next = new(big.Int).SetBytes(base)
		next.Mul(next, partial)
		next.Mod(next, n)
	default:
		return nil, fmt.Errorf("unrecognized splitBy argument: %v", splitBy)
	}

	return next.FillBytes(make([]byte, shard.PublicKey.Size())), nil
}
