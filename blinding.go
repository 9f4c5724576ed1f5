package rsapad

import (
	"fmt"
	"io"
	"math/big"

	"github.com/go-logr/logr"
)

// DefaultReinitInterval is how many blindings a Blinder performs before drawing a fresh nonce
const DefaultReinitInterval = 64

// A Reducer performs arithmetic modulo a fixed modulus. *math.BarrettReduction satisfies it
type Reducer interface {
	Multiply(x, y *big.Int) *big.Int
	Square(x *big.Int) *big.Int
	ModulusBits() int
}

// A BlindingFunc maps a blinding nonce to one half of a blinding-factor pair
type BlindingFunc func(k *big.Int) *big.Int

// A Blinder hides the input of a private-key operation behind a random multiplicative mask.
//
// For RSA, fwd(k) = k^e mod n and inv(k) = k^-1 mod n: the private operation turns x * k^e into
// x^d * k, and multiplying by k^-1 removes the mask again. Between two nonces, both factors are
// squared on every use, which keeps e * d ≡ 1 while still changing the mask each time.
//
// fwd and inv must be exact inverses of each other for every nonce; that is not checked.
//
// A Blinder mutates itself on every call to Blind and is not safe for concurrent use.
type Blinder struct {
	reducer        Reducer
	random         io.Reader
	fwd            BlindingFunc
	inv            BlindingFunc
	modulusBits    int
	reinitInterval int
	logger         logr.Logger

	// current blinding-factor pair, e = fwd(k) and d = inv(k) for some k that is never kept
	e       *big.Int
	d       *big.Int
	counter int
}

// BlinderOption configures a Blinder
type BlinderOption func(*Blinder)

// WithReinitInterval sets how many calls to Blind happen before a fresh nonce is drawn.
// Zero disables reinitialization, so the initial nonce is squared forever
func WithReinitInterval(n int) BlinderOption {
	return func(b *Blinder) {
		b.reinitInterval = n
	}
}

// WithBlinderLogger sets the logger used to report nonce refreshes
func WithBlinderLogger(logger logr.Logger) BlinderOption {
	return func(b *Blinder) {
		b.logger = logger
	}
}

// NewBlinder draws an initial nonce from random and derives the first blinding-factor pair.
// The reducer and random source are borrowed for the lifetime of the Blinder
func NewBlinder(reducer Reducer, random io.Reader, fwd, inv BlindingFunc, opts ...BlinderOption) (*Blinder, error) {
	if reducer == nil || random == nil || fwd == nil || inv == nil {
		return nil, fmt.Errorf("blinder requires a reducer, a random source and both blinding functions")
	}

	b := &Blinder{
		reducer:        reducer,
		random:         random,
		fwd:            fwd,
		inv:            inv,
		modulusBits:    reducer.ModulusBits(),
		reinitInterval: DefaultReinitInterval,
		logger:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.modulusBits < 2 {
		return nil, fmt.Errorf("cannot blind modulo a %d-bit modulus", b.modulusBits)
	}
	if b.reinitInterval < 0 {
		return nil, fmt.Errorf("blinder reinit interval must not be negative, got %d", b.reinitInterval)
	}

	if err := b.reinit(); err != nil {
		return nil, err
	}

	return b, nil
}

// ReinitInterval returns the configured reinitialization interval
func (b *Blinder) ReinitInterval() int {
	return b.reinitInterval
}

// Blind returns x * e mod n, first advancing the blinding factors: squared on most calls,
// freshly derived from a new nonce once more than ReinitInterval calls have happened since the last one
func (b *Blinder) Blind(x *big.Int) (*big.Int, error) {
	b.counter++

	if b.reinitInterval > 0 && b.counter > b.reinitInterval {
		if err := b.reinit(); err != nil {
			return nil, err
		}
		b.logger.V(1).Info("refreshed blinding nonce", "modulusBits", b.modulusBits)
	} else {
		b.e = b.reducer.Square(b.e)
		b.d = b.reducer.Square(b.d)
	}

	return b.reducer.Multiply(x, b.e), nil
}

// Unblind returns y * d mod n, undoing the most recent Blind
func (b *Blinder) Unblind(y *big.Int) *big.Int {
	return b.reducer.Multiply(y, b.d)
}

// reinit draws a fresh nonce and derives a new factor pair from it, resetting the counter
func (b *Blinder) reinit() error {
	k, err := b.nonce()
	if err != nil {
		return err
	}

	e := b.fwd(k)
	d := b.inv(k)
	if e == nil || d == nil {
		return fmt.Errorf("blinding functions produced no factor for the drawn nonce")
	}

	b.e, b.d = e, d
	b.counter = 0
	return nil
}

// nonce returns a random integer of exactly modulusBits - 1 bits
func (b *Blinder) nonce() (*big.Int, error) {
	bits := b.modulusBits - 1
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(b.random, buf); err != nil {
		return nil, fmt.Errorf("failed to draw blinding nonce: %w", err)
	}

	// trim the excess bits of the leading byte, then force the top bit so the size is exact
	excess := uint(len(buf)*8 - bits)
	buf[0] &= byte(0xFF >> excess)
	buf[0] |= byte(0x80 >> excess)

	return new(big.Int).SetBytes(buf), nil
}
