package rsapad

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
)

// ISO/IEC 9796-2 trailer bytes
const (
	trailerImplicit = 0xBC
	trailerExplicit = 0xCC
)

// iso9796 holds what the two ISO/IEC 9796-2 message recovery schemes share.
// DS3 is DS2 with an empty salt.
//
// The representative has the layout
//
//	EM = MGF1-masked(0x00.. || 0x01 || M1 || salt) || H || trailer
//
// where M1 is the recoverable prefix of the message and
// H = Hash(bitlen(M1) as uint64 || M1 || Hash(M2) || salt), M2 being the rest of the message.
// The trailer is 0xBC (implicit) or the hash identifier followed by 0xCC (explicit).
type iso9796 struct {
	hash     hash.Hash
	hashName string
	implicit bool
	saltLen  int
	message  []byte
}

func newISO9796(hashName string, implicit bool, saltLen int) (iso9796, error) {
	if saltLen < 0 {
		return iso9796{}, invalidArgument("negative ISO 9796-2 salt size %d", saltLen)
	}

	h, canonical, err := NewHash(hashName)
	if err != nil {
		return iso9796{}, err
	}

	return iso9796{
		hash:     h,
		hashName: canonical,
		implicit: implicit,
		saltLen:  saltLen,
	}, nil
}

// the whole message has to be buffered: its recoverable part goes into the representative as-is
func (s *iso9796) Update(p []byte) {
	s.message = append(s.message, p...)
}

func (s *iso9796) RawData() ([]byte, error) {
	ret := s.message
	s.message = nil
	if ret == nil {
		ret = []byte{}
	}
	return ret, nil
}

func (s *iso9796) HashFunction() string {
	return s.hashName
}

func (s *iso9796) trailerName() string {
	if s.implicit {
		return "imp"
	}
	return "exp"
}

// layout returns the representative length, the mask applied to its leftmost byte and the number of
// leading bytes that cannot carry data. The leftmost bit of the representative is always cleared, and
// when that leaves nothing of the first byte, the byte is skipped entirely.
func iso9796Layout(outputBits int) (emLen int, mask byte, reserved int) {
	emLen = encodedLength(outputBits)
	shift := uint(8*emLen - outputBits + 1)
	mask = byte(0xFF >> shift)
	if mask == 0 {
		reserved = 1
	}
	return emLen, mask, reserved
}

// capacity is the number of message bytes that fit into the representative
func (s *iso9796) capacity(emLen, reserved, tLen int) int {
	return emLen - reserved - s.hash.Size() - s.saltLen - tLen - 1
}

// splitMessage returns the recoverable prefix of msg and the digest of the remainder
func (s *iso9796) splitMessage(msg []byte, capacity int) ([]byte, []byte) {
	s.hash.Reset()
	if len(msg) > capacity {
		s.hash.Write(msg[capacity:])
		return msg[:capacity], finalize(s.hash)
	}
	return msg, finalize(s.hash)
}

// recoveryHash computes H = Hash(bitlen(m1) || m1 || hm2 || salt)
func (s *iso9796) recoveryHash(m1, hm2, salt []byte) []byte {
	var bitLen [8]byte
	binary.BigEndian.PutUint64(bitLen[:], uint64(len(m1))*8)

	s.hash.Reset()
	s.hash.Write(bitLen[:])
	s.hash.Write(m1)
	s.hash.Write(hm2)
	s.hash.Write(salt)
	return finalize(s.hash)
}

func (s *iso9796) encode(msg []byte, outputBits int, random io.Reader) ([]byte, error) {
	hLen := s.hash.Size()
	tLen := 2
	if s.implicit {
		tLen = 1
	}

	emLen, mask, reserved := iso9796Layout(outputBits)
	if outputBits <= 0 || emLen-reserved <= hLen+s.saltLen+tLen {
		return nil, encodingError("ISO 9796-2 output length of %d bits is too small", outputBits)
	}

	var hashID byte
	if !s.implicit {
		hashID = IEEE1363HashID(s.hashName)
		if hashID == 0 {
			return nil, encodingError("ISO 9796-2 has no explicit trailer identifier for %s", s.hashName)
		}
	}

	m1, hm2 := s.splitMessage(msg, s.capacity(emLen, reserved, tLen))

	salt := make([]byte, s.saltLen)
	if s.saltLen > 0 {
		if random == nil {
			return nil, encodingError("ISO 9796-2 needs a random source to draw a %d byte salt", s.saltLen)
		}
		if _, err := io.ReadFull(random, salt); err != nil {
			return nil, encodingError("failed to draw ISO 9796-2 salt: %s", err)
		}
	}

	h := s.recoveryHash(m1, hm2, salt)

	em := make([]byte, emLen)
	dbLen := emLen - hLen - tLen
	db := em[:dbLen]

	// DB = 0x00.. || 0x01 || M1 || salt
	offset := dbLen - s.saltLen - len(m1) - 1
	db[offset] = 0x01
	copy(db[offset+1:], m1)
	copy(db[offset+1+len(m1):], salt)

	mgf1XOR(db, s.hash, h)
	copy(em[dbLen:], h)

	if s.implicit {
		em[emLen-1] = trailerImplicit
	} else {
		em[emLen-2] = hashID
		em[emLen-1] = trailerExplicit
	}

	em[0] &= mask

	return em, nil
}

func (s *iso9796) verify(encoding, raw []byte, keyBits int) bool {
	hLen := s.hash.Size()
	emLen, mask, reserved := iso9796Layout(keyBits)
	if keyBits <= 0 || len(encoding) != emLen || emLen < 2 {
		return false
	}

	// the trailer is public, so it may be checked in variable time
	var tLen int
	switch {
	case encoding[emLen-1] == trailerImplicit:
		tLen = 1
	case encoding[emLen-1] == trailerExplicit && encoding[emLen-2] != 0 && encoding[emLen-2] == IEEE1363HashID(s.hashName):
		tLen = 2
	default:
		return false
	}

	if emLen-reserved <= hLen+s.saltLen+tLen {
		return false
	}

	// bits cleared by the encoder must still be clear
	if encoding[0]&^mask != 0 {
		return false
	}

	dbLen := emLen - hLen - tLen
	h := encoding[dbLen : dbLen+hLen]

	db := make([]byte, dbLen)
	copy(db, encoding[:dbLen])
	mgf1XOR(db, s.hash, h)
	db[0] &= mask

	// locate the 0x01 delimiter behind the zero padding without branching on the data
	lookingForDelim := 1
	invalid := 0
	zeros := 0
	for _, b := range db {
		isZero := subtle.ConstantTimeByteEq(b, 0x00)
		isOne := subtle.ConstantTimeByteEq(b, 0x01)

		zeros += lookingForDelim & isZero
		invalid |= lookingForDelim &^ (isZero | isOne)
		lookingForDelim &= isZero
	}
	invalid |= lookingForDelim

	// the salt has to fit behind the delimiter; if anything is off, carry on with an empty M1
	m1Offset := zeros + 1
	saltOffset := dbLen - s.saltLen
	invalid |= subtle.ConstantTimeLessOrEq(saltOffset+1, m1Offset)
	m1Offset = subtle.ConstantTimeSelect(invalid, saltOffset, m1Offset)

	m1 := db[m1Offset:saltOffset]
	salt := db[saltOffset:]

	m1Raw, hm2 := s.splitMessage(raw, s.capacity(emLen, reserved, tLen))
	expected := s.recoveryHash(m1Raw, hm2, salt)
	recovered := s.recoveryHash(m1, hm2, salt)

	valid := subtle.ConstantTimeCompare(expected, h) &
		subtle.ConstantTimeCompare(recovered, expected) &
		(invalid ^ 1)

	return valid == 1
}

// ISO9796DS2 is ISO/IEC 9796-2 digital signature scheme 2: probabilistic, with partial message recovery.
// Two encodings of the same message differ in their salt and therefore never match.
type ISO9796DS2 struct {
	iso9796
}

// NewISO9796DS2 returns a DS2 scheme over the named hash, drawing saltLen bytes of salt per encoding
func NewISO9796DS2(hashName string, implicit bool, saltLen int) (*ISO9796DS2, error) {
	base, err := newISO9796(hashName, implicit, saltLen)
	if err != nil {
		return nil, err
	}
	return &ISO9796DS2{iso9796: base}, nil
}

func (s *ISO9796DS2) EncodingOf(msg []byte, outputBits int, random io.Reader) ([]byte, error) {
	return s.encode(msg, outputBits, random)
}

func (s *ISO9796DS2) Verify(encoding, raw []byte, keyBits int) bool {
	return s.verify(encoding, raw, keyBits)
}

func (s *ISO9796DS2) Name() string {
	return fmt.Sprintf("ISO_9796_DS2(%s,%s,%d)", s.hashName, s.trailerName(), s.saltLen)
}

// ISO9796DS3 is ISO/IEC 9796-2 digital signature scheme 3: deterministic, with partial message recovery
type ISO9796DS3 struct {
	iso9796
}

// NewISO9796DS3 returns a DS3 scheme over the named hash
func NewISO9796DS3(hashName string, implicit bool) (*ISO9796DS3, error) {
	base, err := newISO9796(hashName, implicit, 0)
	if err != nil {
		return nil, err
	}
	return &ISO9796DS3{iso9796: base}, nil
}

// EncodingOf ignores random; the encoding is deterministic
func (s *ISO9796DS3) EncodingOf(msg []byte, outputBits int, _ io.Reader) ([]byte, error) {
	return s.encode(msg, outputBits, nil)
}

func (s *ISO9796DS3) Verify(encoding, raw []byte, keyBits int) bool {
	return s.verify(encoding, raw, keyBits)
}

func (s *ISO9796DS3) Name() string {
	return fmt.Sprintf("ISO_9796_DS3(%s,%s)", s.hashName, s.trailerName())
}

func parseTrailer(spec *AlgorithmSpec, i int) (bool, error) {
	switch spec.Arg(i, "exp") {
	case "imp":
		return true, nil
	case "exp":
		return false, nil
	default:
		return false, errUnsupportedArgs
	}
}

func newISO9796DS2FromSpec(spec *AlgorithmSpec) (Scheme, error) {
	if spec.ArgCount() < 1 || spec.ArgCount() > 3 {
		return nil, errUnsupportedArgs
	}

	h, _, err := NewHash(spec.Arg(0, ""))
	if err != nil {
		return nil, err
	}

	implicit, err := parseTrailer(spec, 1)
	if err != nil {
		return nil, err
	}

	saltLen, err := spec.ArgAsInt(2, h.Size())
	if err != nil {
		return nil, invalidArgument("%s", err)
	}

	ds2, err := NewISO9796DS2(spec.Arg(0, ""), implicit, saltLen)
	if err != nil {
		return nil, err
	}
	return ds2, nil
}

func newISO9796DS3FromSpec(spec *AlgorithmSpec) (Scheme, error) {
	if spec.ArgCount() < 1 || spec.ArgCount() > 2 {
		return nil, errUnsupportedArgs
	}

	implicit, err := parseTrailer(spec, 1)
	if err != nil {
		return nil, err
	}

	ds3, err := NewISO9796DS3(spec.Arg(0, ""), implicit)
	if err != nil {
		return nil, err
	}
	return ds3, nil
}
