package rsapad

import (
	"crypto/subtle"
	"io"
)

// A Scheme is an RSA signature padding scheme: it turns a message into the fixed-width
// representative that is fed into the private-key operation, and checks a recovered
// representative against a message on the way back.
//
// Previously called 'EMSA' in IEEE 1363 ("Encoding Method for Signatures, Appendix").
//
// A Scheme accumulates state across calls and is not safe for concurrent use.
// Construct a fresh one for every signature or verification, usually through [Create].
type Scheme interface {
	// Update adds more message data to the signature computation
	Update(p []byte)

	// RawData finalizes the accumulated input and returns it: a digest, or the buffered
	// message bytes for schemes that need them. The internal state is drained, so a second
	// call without further Update returns the representation of an empty input
	RawData() ([]byte, error)

	// EncodingOf returns the encoding of msg, which must be the result of RawData, sized to
	// outputBits. Failures wrap ErrEncoding. Only randomized schemes read from random
	EncodingOf(msg []byte, outputBits int, random io.Reader) ([]byte, error)

	// Verify reports whether encoding is a valid encoding of raw (the result of RawData) for a
	// key of keyBits bits. It never fails loudly: malformed input of any kind is simply false
	Verify(encoding, raw []byte, keyBits int) bool

	// HashFunction returns the canonical name of the hash this scheme uses, or "" if none
	HashFunction() string

	// Name returns the algorithm specification that [Create] turns back into an equivalent scheme
	Name() string
}

// encodedLength is the number of bytes in a representative of outputBits bits
func encodedLength(outputBits int) int {
	return (outputBits + 7) / 8
}

// constantTimeEqual compares a and b in time that depends only on their lengths
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
