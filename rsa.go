package rsapad

import (
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"

	"github.com/go-logr/logr"

	bzmath "github.com/bastionzero/rsapad/math"
)

// A Signer produces RSA signatures with a configurable padding scheme.
//
// Every private-key operation is blinded: the encoded representative m is multiplied by k^e before
// exponentiation and the result by k^-1 afterwards, so the time the exponentiation takes does not
// depend on m. The blinding state advances on every signature, so a Signer is not safe for
// concurrent use. Give every goroutine its own.
type Signer struct {
	priv    *rsa.PrivateKey
	padding string
	random  io.Reader
	blinder *Blinder
	logger  logr.Logger

	noBlinding     bool
	blinderOptions []BlinderOption
}

// SignerOption configures a Signer
type SignerOption func(*Signer)

// WithLogger sets the logger of the Signer and of its Blinder
func WithLogger(logger logr.Logger) SignerOption {
	return func(s *Signer) {
		s.logger = logger
	}
}

// WithBlinderOptions passes options through to the Signer's Blinder
func WithBlinderOptions(opts ...BlinderOption) SignerOption {
	return func(s *Signer) {
		s.blinderOptions = append(s.blinderOptions, opts...)
	}
}

// WithoutBlinding turns blinding off. This isn't advisable except for testing and
// interoperability checks, since the exponentiation then leaks timing information about D
func WithoutBlinding() SignerOption {
	return func(s *Signer) {
		s.noBlinding = true
	}
}

// NewSigner returns a Signer for priv that encodes messages with the padding scheme named by padding,
// for example "PKCS1v15(SHA-256)" or "ISO_9796_DS2(SHA-256,imp)". random is used for blinding and by
// randomized padding schemes
func NewSigner(random io.Reader, priv *rsa.PrivateKey, padding string, opts ...SignerOption) (*Signer, error) {
	if priv == nil || priv.N == nil || priv.N.Sign() <= 0 || priv.D == nil {
		return nil, fmt.Errorf("cannot sign with a nil or incomplete private key")
	}
	if random == nil {
		return nil, fmt.Errorf("a random source is required for signing")
	}
	if _, err := CreateOrError(padding); err != nil {
		return nil, err
	}

	s := &Signer{
		priv:    priv,
		padding: padding,
		random:  random,
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.noBlinding {
		reducer, err := bzmath.NewBarrettReduction(priv.N)
		if err != nil {
			return nil, err
		}

		e := big.NewInt(int64(priv.E))
		fwd := func(k *big.Int) *big.Int {
			return new(big.Int).Exp(k, e, priv.N)
		}
		inv := func(k *big.Int) *big.Int {
			return new(big.Int).ModInverse(k, priv.N)
		}

		blinderOpts := append([]BlinderOption{WithBlinderLogger(s.logger)}, s.blinderOptions...)
		s.blinder, err = NewBlinder(reducer, random, fwd, inv, blinderOpts...)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("created signer", "padding", padding, "keyBits", priv.N.BitLen(), "blinding", !s.noBlinding)

	return s, nil
}

// Padding returns the padding scheme specification the Signer was created with
func (s *Signer) Padding() string {
	return s.padding
}

// Sign encodes msg with a fresh instance of the padding scheme and signs the result.
// The signature is always as long as the modulus
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	scheme, err := CreateOrError(s.padding)
	if err != nil {
		return nil, err
	}

	scheme.Update(msg)
	raw, err := scheme.RawData()
	if err != nil {
		return nil, err
	}

	em, err := scheme.EncodingOf(raw, representativeBits(&s.priv.PublicKey), s.random)
	if err != nil {
		return nil, err
	}

	sig, err := s.signRepresentative(em)
	if err != nil {
		return nil, err
	}

	s.logger.V(1).Info("signed message", "padding", scheme.Name(), "messageBytes", len(msg))

	return sig, nil
}

// signRepresentative applies the private key to an encoded representative
func (s *Signer) signRepresentative(em []byte) ([]byte, error) {
	m := new(big.Int).SetBytes(em)
	if m.Cmp(s.priv.N) >= 0 {
		return nil, ErrMessageTooLong
	}

	c, err := s.decrypt(m)
	if err != nil {
		return nil, err
	}

	// guard against faults in the exponentiation, which would otherwise leak the factors of N
	check := encrypt(&s.priv.PublicKey, c)
	if check.Cmp(m) != 0 {
		return nil, ErrVerification
	}

	return c.FillBytes(make([]byte, s.priv.Size())), nil
}

// decrypt performs the (blinded) RSA private-key operation m^D mod N
func (s *Signer) decrypt(m *big.Int) (*big.Int, error) {
	if s.blinder == nil {
		return new(big.Int).Exp(m, s.priv.D, s.priv.N), nil
	}

	blinded, err := s.blinder.Blind(m)
	if err != nil {
		return nil, err
	}

	c := new(big.Int).Exp(blinded, s.priv.D, s.priv.N)
	return s.blinder.Unblind(c), nil
}

// A Verifier checks RSA signatures made with a given padding scheme.
// It holds no mutable state and may be shared
type Verifier struct {
	pub     *rsa.PublicKey
	padding string
}

// NewVerifier returns a Verifier for pub and the padding scheme named by padding
func NewVerifier(pub *rsa.PublicKey, padding string) (*Verifier, error) {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 || pub.E < 2 {
		return nil, fmt.Errorf("cannot verify with a nil or incomplete public key")
	}
	if _, err := CreateOrError(padding); err != nil {
		return nil, err
	}
	return &Verifier{pub: pub, padding: padding}, nil
}

// Verify reports whether sig is a valid signature of msg
func (v *Verifier) Verify(msg, sig []byte) bool {
	if len(sig) != v.pub.Size() {
		return false
	}

	s := new(big.Int).SetBytes(sig)
	if s.Cmp(v.pub.N) >= 0 {
		return false
	}

	outputBits := representativeBits(v.pub)
	m := encrypt(v.pub, s)
	if m.BitLen() > 8*encodedLength(outputBits) {
		return false
	}

	scheme, err := CreateOrError(v.padding)
	if err != nil {
		return false
	}

	scheme.Update(msg)
	raw, err := scheme.RawData()
	if err != nil {
		return false
	}

	em := m.FillBytes(make([]byte, encodedLength(outputBits)))
	return scheme.Verify(em, raw, outputBits)
}

// representativeBits is the size of the encoded representative for pub: one bit less than the
// modulus, so any representative is numerically smaller than N
func representativeBits(pub *rsa.PublicKey) int {
	return pub.N.BitLen() - 1
}

// encrypt performs the RSA public-key operation m^E mod N
func encrypt(pub *rsa.PublicKey, m *big.Int) *big.Int {
	e := big.NewInt(int64(pub.E))
	return new(big.Int).Exp(m, e, pub.N)
}
