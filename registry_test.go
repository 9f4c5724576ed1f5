package rsapad

import (
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {

	Context("Name round trip", func() {
		specs := []string{
			"PKCS1v15(SHA-256)",
			"PKCS1v15(SHA-1)",
			"PKCS1v15(MD5)",
			"PKCS1v15(SHA-3(256))",
			"PKCS1v15(Raw)",
			"PKCS1v15(Raw,SHA-512)",
			"EMSA_PKCS1(SHA-384)",
			"EMSA-PKCS1-v1_5(SHA-224)",
			"EMSA3(RIPEMD160)",
			"ISO_9796_DS2(SHA-256)",
			"ISO_9796_DS2(SHA-256,imp)",
			"ISO_9796_DS2(SHA-1,exp,0)",
			"ISO_9796_DS2(BLAKE2b(512),imp,16)",
			"ISO_9796_DS3(SHA-256)",
			"ISO_9796_DS3(SHA-512,imp)",
			"Raw",
			"Raw(SHA-256)",
		}

		for _, spec := range specs {
			spec := spec
			It(fmt.Sprintf("Rebuilds %s from its name", spec), func() {
				scheme, err := CreateOrError(spec)
				Expect(err).To(BeNil(), fmt.Sprintf("failed to create %s: %s", spec, err))

				rebuilt := Create(scheme.Name())
				Expect(rebuilt).NotTo(BeNil(), fmt.Sprintf("failed to rebuild %s", scheme.Name()))
				Expect(rebuilt.Name()).To(Equal(scheme.Name()))
				Expect(rebuilt.HashFunction()).To(Equal(scheme.HashFunction()))
			})
		}

		It("Resolves aliases to the same scheme", func() {
			Expect(Create("EMSA3(SHA-256)").Name()).To(Equal("PKCS1v15(SHA-256)"))
			Expect(Create("PKCS1v15(SHA256)").Name()).To(Equal("PKCS1v15(SHA-256)"))
			Expect(Create("PKCS1v15(SHA3-256)").Name()).To(Equal("PKCS1v15(SHA-3(256))"))
			Expect(Create("ISO_9796_DS2(SHA-256)").Name()).To(Equal("ISO_9796_DS2(SHA-256,exp,32)"))
			Expect(Create("ISO_9796_DS3(SHA-1)").Name()).To(Equal("ISO_9796_DS3(SHA-1,exp)"))
		})

		It("Accepts OCI digest algorithm names", func() {
			for alg, canonical := range map[digest.Algorithm]string{
				digest.SHA256: HashSHA256,
				digest.SHA384: HashSHA384,
				digest.SHA512: HashSHA512,
			} {
				scheme := Create(fmt.Sprintf("PKCS1v15(%s)", alg))
				Expect(scheme).NotTo(BeNil(), fmt.Sprintf("failed to create a scheme over %s", alg))
				Expect(scheme.HashFunction()).To(Equal(canonical))
			}
		})

		It("Hashes the same way as an OCI digest", func() {
			content := []byte("hello world")
			dgst := digest.FromBytes(content)

			scheme := Create(fmt.Sprintf("PKCS1v15(%s)", dgst.Algorithm()))
			Expect(scheme).NotTo(BeNil())
			scheme.Update(content)
			raw, err := scheme.RawData()
			Expect(err).To(BeNil())
			Expect(digest.NewDigestFromBytes(dgst.Algorithm(), raw)).To(Equal(dgst))
		})
	})

	Context("Unknown names", func() {
		for _, spec := range []string{"PKCS1v15(YYZ)", "ISO_9796_DS2(YYZ)", "ISO_9796_DS3(YYZ)", "Raw(YYZ)", "YYZ", "YYZ(SHA-256)"} {
			spec := spec
			It(fmt.Sprintf("Fails to look up %s", spec), func() {
				Expect(Create(spec)).To(BeNil())

				_, err := CreateOrError(spec)
				Expect(err).NotTo(BeNil())
				Expect(err.Error()).To(Equal(`Could not find any algorithm named "` + spec + `"`))

				var lookupErr *LookupError
				Expect(errors.As(err, &lookupErr)).To(BeTrue())
				Expect(lookupErr.Spec).To(Equal(spec))
			})
		}

		It("Treats malformed specifications and unsupported arguments as unknown", func() {
			for _, spec := range []string{
				"",
				"(SHA-256)",
				"PKCS1v15(SHA-256",
				"PKCS1v15()",
				"PKCS1v15",
				"PKCS1v15(SHA-256,SHA-1)",
				"ISO_9796_DS2(SHA-256,both)",
				"ISO_9796_DS2(SHA-256,exp,1,2)",
				"ISO_9796_DS3(SHA-256,exp,0)",
				"Raw(SHA-256,SHA-1)",
			} {
				_, err := CreateOrError(spec)
				var lookupErr *LookupError
				Expect(errors.As(err, &lookupErr)).To(BeTrue(), fmt.Sprintf("expected a lookup error for %q, got %v", spec, err))
			}
		})
	})

	Context("Known hashes a scheme cannot use", func() {
		It("Reports an invalid argument rather than a lookup failure", func() {
			for _, spec := range []string{"PKCS1v15(BLAKE2b(512))", "PKCS1v15(Raw,BLAKE2b(256))", "ISO_9796_DS2(SHA-256,exp,abc)"} {
				Expect(Create(spec)).To(BeNil())

				_, err := CreateOrError(spec)
				Expect(errors.Is(err, ErrInvalidArgument)).To(BeTrue(), fmt.Sprintf("expected an invalid argument error for %s, got %v", spec, err))

				var lookupErr *LookupError
				Expect(errors.As(err, &lookupErr)).To(BeFalse())
			}
		})
	})

	It("Refuses to register a name twice", func() {
		Expect(func() { Register("PKCS1v15", newPKCS1v15FromSpec) }).To(Panic())
		Expect(func() { Register("Unused", nil) }).To(Panic())
	})
})

var _ = Describe("Algorithm specifications", func() {

	It("Splits top-level arguments only", func() {
		spec, err := ParseAlgorithmSpec("PKCS1v15(Raw,SHA-3(256))")
		Expect(err).To(BeNil())
		Expect(spec.Name).To(Equal("PKCS1v15"))
		Expect(spec.Args).To(Equal([]string{"Raw", "SHA-3(256)"}))
		Expect(spec.String()).To(Equal("PKCS1v15(Raw,SHA-3(256))"))
	})

	It("Parses a bare name", func() {
		spec, err := ParseAlgorithmSpec("Raw")
		Expect(err).To(BeNil())
		Expect(spec.ArgCount()).To(Equal(0))
		Expect(spec.Arg(0, "default")).To(Equal("default"))
		Expect(spec.String()).To(Equal("Raw"))
	})

	It("Parses integer arguments", func() {
		spec, err := ParseAlgorithmSpec("ISO_9796_DS2(SHA-1,imp,20)")
		Expect(err).To(BeNil())

		n, err := spec.ArgAsInt(2, 0)
		Expect(err).To(BeNil())
		Expect(n).To(Equal(20))

		n, err = spec.ArgAsInt(3, 7)
		Expect(err).To(BeNil())
		Expect(n).To(Equal(7))

		_, err = spec.ArgAsInt(1, 0)
		Expect(err).NotTo(BeNil())
	})

	It("Rejects malformed input", func() {
		for _, s := range []string{"", "A(", "A)", "(B)", "A(B))", "A((B)", "A(B,)", "A(,B)", "A,B"} {
			_, err := ParseAlgorithmSpec(s)
			Expect(err).NotTo(BeNil(), fmt.Sprintf("parsed %q", s))
		}
	})
})

var _ = Describe("Hash identifiers", func() {

	It("Ends every DigestInfo prefix with the digest's OCTET STRING header", func() {
		for name, id := range pkcsHashIDs {
			h, _, err := NewHash(name)
			Expect(err).To(BeNil())

			Expect(id[0]).To(Equal(byte(0x30)), name)
			Expect(int(id[1])).To(Equal(len(id)-2+h.Size()), name)
			Expect(id[len(id)-2]).To(Equal(byte(0x04)), name)
			Expect(int(id[len(id)-1])).To(Equal(h.Size()), name)
		}
	})

	It("Hands out copies", func() {
		id, err := PKCSHashID(HashSHA256)
		Expect(err).To(BeNil())
		id[0] = 0xFF

		again, err := PKCSHashID("SHA256")
		Expect(err).To(BeNil())
		Expect(again[0]).To(Equal(byte(0x30)))
	})

	It("Fails for hashes without a DigestInfo prefix", func() {
		_, err := PKCSHashID(HashBLAKE2b256)
		Expect(errors.Is(err, ErrInvalidArgument)).To(BeTrue())

		_, err = PKCSHashID("YYZ")
		Expect(errors.Is(err, ErrInvalidArgument)).To(BeTrue())
	})

	It("Knows the ISO/IEC 10118 identifiers", func() {
		Expect(IEEE1363HashID(HashRIPEMD160)).To(Equal(byte(0x31)))
		Expect(IEEE1363HashID("SHA1")).To(Equal(byte(0x33)))
		Expect(IEEE1363HashID(HashSHA256)).To(Equal(byte(0x34)))
		Expect(IEEE1363HashID(HashSHA512)).To(Equal(byte(0x35)))
		Expect(IEEE1363HashID(HashSHA384)).To(Equal(byte(0x36)))
		Expect(IEEE1363HashID(HashSHA224)).To(Equal(byte(0x38)))
		Expect(IEEE1363HashID(HashMD5)).To(Equal(byte(0)))
		Expect(IEEE1363HashID("YYZ")).To(Equal(byte(0)))
	})

	It("Creates every known hash", func() {
		for name := range hashConstructors {
			h, canonical, err := NewHash(name)
			Expect(err).To(BeNil())
			Expect(canonical).To(Equal(name))
			Expect(h.Size()).To(BeNumerically(">", 0))
		}

		_, _, err := NewHash("YYZ")
		var lookupErr *LookupError
		Expect(errors.As(err, &lookupErr)).To(BeTrue())
	})
})
