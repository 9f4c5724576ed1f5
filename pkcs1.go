package rsapad

import (
	"fmt"
	"hash"
	"io"
)

// minimum number of 0xFF padding bytes (RFC 8017, section 9.2, note 1)
const pkcs1MinPadding = 8

// PKCS1v15 is the EMSA-PKCS1-v1_5 signature encoding from RFC 8017:
//
//	EM = 0x00 || 0x01 || PS || 0x00 || DigestInfo prefix || H
//
// where PS is at least 8 bytes of 0xFF.
type PKCS1v15 struct {
	hash     hash.Hash
	hashName string
	hashID   []byte
}

// NewPKCS1v15 returns a PKCS #1 v1.5 scheme over the named hash
func NewPKCS1v15(hashName string) (*PKCS1v15, error) {
	h, canonical, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}

	hashID, err := PKCSHashID(canonical)
	if err != nil {
		return nil, err
	}

	return &PKCS1v15{
		hash:     h,
		hashName: canonical,
		hashID:   hashID,
	}, nil
}

func (p *PKCS1v15) Update(b []byte) {
	p.hash.Write(b)
}

func (p *PKCS1v15) RawData() ([]byte, error) {
	return finalize(p.hash), nil
}

// EncodingOf ignores random; the encoding is deterministic
func (p *PKCS1v15) EncodingOf(msg []byte, outputBits int, _ io.Reader) ([]byte, error) {
	if len(msg) != p.hash.Size() {
		return nil, encodingError("PKCS #1 v1.5 input must be a %d byte %s digest, got %d bytes", p.hash.Size(), p.hashName, len(msg))
	}
	return pkcs1v15Encoding(msg, outputBits, p.hashID)
}

func (p *PKCS1v15) Verify(encoding, raw []byte, keyBits int) bool {
	if len(raw) != p.hash.Size() {
		return false
	}

	expected, err := pkcs1v15Encoding(raw, keyBits, p.hashID)
	if err != nil {
		return false
	}

	return constantTimeEqual(encoding, expected)
}

func (p *PKCS1v15) HashFunction() string {
	return p.hashName
}

func (p *PKCS1v15) Name() string {
	return fmt.Sprintf("PKCS1v15(%s)", p.hashName)
}

// PKCS1v15Raw uses the PKCS #1 v1.5 signature layout but signs the message bytes directly
// rather than hashing them. The caller is expected to supply an already computed digest.
//
// When bound to a hash, the DigestInfo prefix of that hash is included and the message must be
// exactly as long as its output. Unbound, there is no prefix and any length fits.
type PKCS1v15Raw struct {
	message  []byte
	hashName string
	hashID   []byte
	hashLen  int
}

// NewPKCS1v15Raw returns an unbound raw PKCS #1 v1.5 scheme
func NewPKCS1v15Raw() *PKCS1v15Raw {
	return &PKCS1v15Raw{}
}

// NewPKCS1v15RawWithHash returns a raw PKCS #1 v1.5 scheme expecting digests of the named hash
func NewPKCS1v15RawWithHash(hashName string) (*PKCS1v15Raw, error) {
	h, canonical, err := NewHash(hashName)
	if err != nil {
		return nil, err
	}

	hashID, err := PKCSHashID(canonical)
	if err != nil {
		return nil, err
	}

	return &PKCS1v15Raw{
		hashName: canonical,
		hashID:   hashID,
		hashLen:  h.Size(),
	}, nil
}

func (p *PKCS1v15Raw) Update(b []byte) {
	p.message = append(p.message, b...)
}

func (p *PKCS1v15Raw) RawData() ([]byte, error) {
	// hand the buffer over rather than copying it
	ret := p.message
	p.message = nil

	if p.hashLen > 0 && len(ret) != p.hashLen {
		return nil, encodingError("PKCS #1 v1.5 raw input must be a %d byte %s digest, got %d bytes", p.hashLen, p.hashName, len(ret))
	}
	if ret == nil {
		ret = []byte{}
	}

	return ret, nil
}

// EncodingOf ignores random; the encoding is deterministic
func (p *PKCS1v15Raw) EncodingOf(msg []byte, outputBits int, _ io.Reader) ([]byte, error) {
	if p.hashLen > 0 && len(msg) != p.hashLen {
		return nil, encodingError("PKCS #1 v1.5 raw input must be a %d byte %s digest, got %d bytes", p.hashLen, p.hashName, len(msg))
	}
	return pkcs1v15Encoding(msg, outputBits, p.hashID)
}

func (p *PKCS1v15Raw) Verify(encoding, raw []byte, keyBits int) bool {
	if p.hashLen > 0 && len(raw) != p.hashLen {
		return false
	}

	expected, err := pkcs1v15Encoding(raw, keyBits, p.hashID)
	if err != nil {
		return false
	}

	return constantTimeEqual(encoding, expected)
}

func (p *PKCS1v15Raw) HashFunction() string {
	return p.hashName
}

func (p *PKCS1v15Raw) Name() string {
	if p.hashName == "" {
		return "PKCS1v15(Raw)"
	}
	return fmt.Sprintf("PKCS1v15(Raw,%s)", p.hashName)
}

// pkcs1v15Encoding lays out EM = 0x00 || 0x01 || PS || 0x00 || hashID || msg
func pkcs1v15Encoding(msg []byte, outputBits int, hashID []byte) ([]byte, error) {
	k := encodedLength(outputBits)
	tLen := len(hashID) + len(msg)

	// the separators take 3 bytes, and PS may never be shorter than 8
	if k < tLen+3+pkcs1MinPadding {
		return nil, encodingError("PKCS #1 v1.5 output length %d is too small for %d bytes of payload", k, tLen)
	}

	em := make([]byte, k)
	em[1] = 1
	for i := 2; i < k-tLen-1; i++ {
		em[i] = 0xff
	}
	copy(em[k-tLen:k-len(msg)], hashID)
	copy(em[k-len(msg):k], msg)

	return em, nil
}

func newPKCS1v15FromSpec(spec *AlgorithmSpec) (Scheme, error) {
	switch {
	case spec.ArgCount() == 2 && spec.Arg(0, "") == "Raw":
		raw, err := NewPKCS1v15RawWithHash(spec.Arg(1, ""))
		if err != nil {
			return nil, err
		}
		return raw, nil
	case spec.ArgCount() == 1 && spec.Arg(0, "") == "Raw":
		return NewPKCS1v15Raw(), nil
	case spec.ArgCount() == 1:
		pkcs1, err := NewPKCS1v15(spec.Arg(0, ""))
		if err != nil {
			return nil, err
		}
		return pkcs1, nil
	default:
		return nil, errUnsupportedArgs
	}
}
