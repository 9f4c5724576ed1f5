package rsapad

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/opencontainers/go-digest"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// canonical hash names
const (
	HashMD5        = "MD5"
	HashSHA1       = "SHA-1"
	HashSHA224     = "SHA-224"
	HashSHA256     = "SHA-256"
	HashSHA384     = "SHA-384"
	HashSHA512     = "SHA-512"
	HashSHA512_224 = "SHA-512-224"
	HashSHA512_256 = "SHA-512-256"
	HashRIPEMD160  = "RIPEMD-160"
	HashSHA3_224   = "SHA-3(224)"
	HashSHA3_256   = "SHA-3(256)"
	HashSHA3_384   = "SHA-3(384)"
	HashSHA3_512   = "SHA-3(512)"
	HashBLAKE2b256 = "BLAKE2b(256)"
	HashBLAKE2b512 = "BLAKE2b(512)"
)

var hashConstructors = map[string]func() hash.Hash{
	HashMD5:        md5.New,
	HashSHA1:       sha1.New,
	HashSHA224:     sha256.New224,
	HashSHA256:     sha256.New,
	HashSHA384:     sha512.New384,
	HashSHA512:     sha512.New,
	HashSHA512_224: sha512.New512_224,
	HashSHA512_256: sha512.New512_256,
	HashRIPEMD160:  ripemd160.New,
	HashSHA3_224:   sha3.New224,
	HashSHA3_256:   sha3.New256,
	HashSHA3_384:   sha3.New384,
	HashSHA3_512:   sha3.New512,
	HashBLAKE2b256: newBLAKE2b256,
	HashBLAKE2b512: newBLAKE2b512,
}

// alternative spellings accepted wherever a hash name is expected.
// The OCI digest algorithm identifiers are accepted too, so a digest.Digest's algorithm can be passed as-is
var hashAliases = map[string]string{
	"SHA1":        HashSHA1,
	"SHA-160":     HashSHA1,
	"SHA224":      HashSHA224,
	"SHA256":      HashSHA256,
	"SHA384":      HashSHA384,
	"SHA512":      HashSHA512,
	"SHA-512/224": HashSHA512_224,
	"SHA-512/256": HashSHA512_256,
	"RIPEMD160":   HashRIPEMD160,
	"SHA3-224":    HashSHA3_224,
	"SHA3-256":    HashSHA3_256,
	"SHA3-384":    HashSHA3_384,
	"SHA3-512":    HashSHA3_512,
	"BLAKE2b":     HashBLAKE2b512,

	digest.SHA256.String(): HashSHA256,
	digest.SHA384.String(): HashSHA384,
	digest.SHA512.String(): HashSHA512,
}

// blake2b only fails to construct when given an oversized key, and we never pass one
func newBLAKE2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func newBLAKE2b512() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

// CanonicalHashName returns the canonical spelling of a hash name, or false if the name is unknown
func CanonicalHashName(name string) (string, bool) {
	if alias, ok := hashAliases[name]; ok {
		name = alias
	}
	if _, ok := hashConstructors[name]; !ok {
		return "", false
	}
	return name, true
}

// NewHash returns a fresh digest engine for the named hash, along with its canonical name.
// Unknown names produce a *LookupError
func NewHash(name string) (hash.Hash, string, error) {
	canonical, ok := CanonicalHashName(name)
	if !ok {
		return nil, "", &LookupError{Spec: name}
	}
	return hashConstructors[canonical](), canonical, nil
}

// finalize returns the digest of everything written to h and resets it for the next message
func finalize(h hash.Hash) []byte {
	sum := h.Sum(nil)
	h.Reset()
	return sum
}
