package rsapad

import (
	"fmt"
	"io"
)

// Raw signs its input directly, with no padding at all.
// It is only sensible for inputs that are already padded, or for interoperating with systems that do the padding themselves
type Raw struct {
	message  []byte
	hashName string
	hashLen  int
}

// NewRaw returns a Raw scheme that accepts input of any length
func NewRaw() *Raw {
	return &Raw{}
}

// NewRawWithHash returns a Raw scheme that only accepts digests of the named hash
func NewRawWithHash(hashName string) (*Raw, error) {
	h, canonical, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}
	return &Raw{hashName: canonical, hashLen: h.Size()}, nil
}

func (r *Raw) Update(p []byte) {
	r.message = append(r.message, p...)
}

func (r *Raw) RawData() ([]byte, error) {
	ret := r.message
	r.message = nil

	if r.hashLen > 0 && len(ret) != r.hashLen {
		return nil, encodingError("Raw was configured for a %d byte %s digest but got %d bytes", r.hashLen, r.hashName, len(ret))
	}
	if ret == nil {
		ret = []byte{}
	}

	return ret, nil
}

// EncodingOf returns a copy of msg; outputBits and random are not used
func (r *Raw) EncodingOf(msg []byte, _ int, _ io.Reader) ([]byte, error) {
	if r.hashLen > 0 && len(msg) != r.hashLen {
		return nil, encodingError("Raw was configured for a %d byte %s digest but got %d bytes", r.hashLen, r.hashName, len(msg))
	}
	return append([]byte{}, msg...), nil
}

// Verify accepts an encoding equal to raw. Since the encoding passes through an integer, leading
// zero bytes may have been lost or added on the way, so both sides are compared as numbers
func (r *Raw) Verify(encoding, raw []byte, _ int) bool {
	if r.hashLen > 0 && len(raw) != r.hashLen {
		return false
	}

	n := len(raw)
	if len(encoding) > n {
		n = len(encoding)
	}

	return constantTimeEqual(leftPad(encoding, n), leftPad(raw, n))
}

func (r *Raw) HashFunction() string {
	return r.hashName
}

func (r *Raw) Name() string {
	if r.hashName == "" {
		return "Raw"
	}
	return fmt.Sprintf("Raw(%s)", r.hashName)
}

func newRawFromSpec(spec *AlgorithmSpec) (Scheme, error) {
	switch spec.ArgCount() {
	case 0:
		return NewRaw(), nil
	case 1:
		raw, err := NewRawWithHash(spec.Arg(0, ""))
		if err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, errUnsupportedArgs
	}
}

// leftPad returns b preceded by enough zero bytes to make it n bytes long
func leftPad(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}
