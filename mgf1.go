package rsapad

import (
	"encoding/binary"
	"hash"
)

// mgf1XOR XORs the bytes in out with a mask generated using the MGF1 function
// specified in PKCS#1 v2.1. h is reset before and after use.
func mgf1XOR(out []byte, h hash.Hash, seed []byte) {
	var counter [4]byte
	var digest []byte

	h.Reset()
	for done, i := 0, uint32(0); done < len(out); i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		h.Write(seed)
		h.Write(counter[:])
		digest = h.Sum(digest[:0])
		h.Reset()

		for j := 0; j < len(digest) && done < len(out); j++ {
			out[done] ^= digest[j]
			done++
		}
	}
}
