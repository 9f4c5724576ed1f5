package rsapad

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// messages of interesting lengths around the recoverable capacity
func iso9796Messages(capacity int) [][]byte {
	lengths := []int{0, 1, capacity - 1, capacity, capacity + 1, 1000}

	messages := make([][]byte, 0, len(lengths))
	for _, n := range lengths {
		if n < 0 {
			continue
		}
		msg := make([]byte, n)
		for i := range msg {
			msg[i] = byte(i*7 + 3)
		}
		messages = append(messages, msg)
	}
	return messages
}

func iso9796Capacity(s *iso9796, outputBits int) int {
	emLen, _, reserved := iso9796Layout(outputBits)
	tLen := 2
	if s.implicit {
		tLen = 1
	}
	return s.capacity(emLen, reserved, tLen)
}

var _ = Describe("ISO 9796-2", func() {

	type schemeCase struct {
		name    string
		build   func() (Scheme, *iso9796)
		random  bool
		outputs []int
	}

	cases := []schemeCase{
		{
			name: "DS2 with an explicit trailer",
			build: func() (Scheme, *iso9796) {
				s, err := NewISO9796DS2("SHA-256", false, 32)
				Expect(err).To(BeNil())
				return s, &s.iso9796
			},
			random: true,
		},
		{
			name: "DS2 with an implicit trailer and a short salt",
			build: func() (Scheme, *iso9796) {
				s, err := NewISO9796DS2("SHA-1", true, 8)
				Expect(err).To(BeNil())
				return s, &s.iso9796
			},
			random: true,
		},
		{
			name: "DS2 without a salt",
			build: func() (Scheme, *iso9796) {
				s, err := NewISO9796DS2("SHA-512", false, 0)
				Expect(err).To(BeNil())
				return s, &s.iso9796
			},
		},
		{
			name: "DS3 with an explicit trailer",
			build: func() (Scheme, *iso9796) {
				s, err := NewISO9796DS3("SHA-256", false)
				Expect(err).To(BeNil())
				return s, &s.iso9796
			},
		},
		{
			name: "DS3 with an implicit trailer",
			build: func() (Scheme, *iso9796) {
				s, err := NewISO9796DS3("RIPEMD160", true)
				Expect(err).To(BeNil())
				return s, &s.iso9796
			},
		},
	}

	for _, c := range cases {
		c := c
		Context(c.name, func() {
			for _, bits := range []int{1024, 1025, 1031, 2047, 2048} {
				bits := bits
				It(fmt.Sprintf("Round trips messages of every size at %d bits", bits), func() {
					scheme, base := c.build()

					for _, msg := range iso9796Messages(iso9796Capacity(base, bits)) {
						scheme.Update(msg)
						raw, err := scheme.RawData()
						Expect(err).To(BeNil())
						Expect(raw).To(Equal(msg))

						em, err := scheme.EncodingOf(raw, bits, rand.Reader)
						Expect(err).To(BeNil(), fmt.Sprintf("failed to encode %d byte message: %s", len(msg), err))
						Expect(em).To(HaveLen((bits + 7) / 8))
						Expect(scheme.Verify(em, raw, bits)).To(BeTrue(), fmt.Sprintf("failed to verify %d byte message", len(msg)))

						tampered := append(append([]byte(nil), msg...), 0x00)
						Expect(scheme.Verify(em, tampered, bits)).To(BeFalse(), "verified a longer message")
					}
				})
			}

			It("Clears the bits above the output size", func() {
				scheme, _ := c.build()

				for i := 0; i < 16; i++ {
					em, err := scheme.EncodingOf([]byte("message"), 1020, rand.Reader)
					Expect(err).To(BeNil())
					Expect(em).To(HaveLen(128))
					Expect(em[0] & 0xF8).To(Equal(byte(0)))
				}
			})

			It("Rejects every single-bit flip", func() {
				scheme, _ := c.build()
				msg := []byte("ISO/IEC 9796-2 message")

				em, err := scheme.EncodingOf(msg, 1024, rand.Reader)
				Expect(err).To(BeNil())

				forEachBitFlip(em, func(tampered []byte, i int, bit uint) {
					Expect(scheme.Verify(tampered, msg, 1024)).To(BeFalse(), fmt.Sprintf("accepted a flip of bit %d in byte %d", bit, i))
				})
			})

			It("Rejects encodings of the wrong size", func() {
				scheme, _ := c.build()

				em, err := scheme.EncodingOf([]byte("message"), 1024, rand.Reader)
				Expect(err).To(BeNil())
				Expect(scheme.Verify(em[1:], []byte("message"), 1024)).To(BeFalse())
				Expect(scheme.Verify(append([]byte{0}, em...), []byte("message"), 1024)).To(BeFalse())
				Expect(scheme.Verify(em, []byte("message"), 1032)).To(BeFalse())
				Expect(scheme.Verify(nil, []byte("message"), 1024)).To(BeFalse())
				Expect(scheme.Verify(em, []byte("message"), 0)).To(BeFalse())
			})

			if c.random {
				It("Draws a fresh salt for each encoding", func() {
					scheme, _ := c.build()

					first, err := scheme.EncodingOf([]byte("message"), 1024, rand.Reader)
					Expect(err).To(BeNil())
					second, err := scheme.EncodingOf([]byte("message"), 1024, rand.Reader)
					Expect(err).To(BeNil())
					Expect(first).NotTo(Equal(second))
				})

				It("Fails without a random source", func() {
					scheme, _ := c.build()

					_, err := scheme.EncodingOf([]byte("message"), 1024, nil)
					Expect(errors.Is(err, ErrEncoding)).To(BeTrue(), fmt.Sprintf("expected an encoding error, got %v", err))
				})

				It("Fails when the random source runs dry", func() {
					scheme, _ := c.build()

					_, err := scheme.EncodingOf([]byte("message"), 1024, bytes.NewReader([]byte{1, 2, 3}))
					Expect(errors.Is(err, ErrEncoding)).To(BeTrue())
				})
			} else {
				It("Is deterministic", func() {
					scheme, _ := c.build()

					first, err := scheme.EncodingOf([]byte("message"), 1024, rand.Reader)
					Expect(err).To(BeNil())
					second, err := scheme.EncodingOf([]byte("message"), 1024, nil)
					Expect(err).To(BeNil())
					Expect(first).To(Equal(second))
				})
			}
		})
	}

	Context("Trailers", func() {
		It("Ends an explicit encoding with the hash identifier and 0xCC", func() {
			scheme, err := NewISO9796DS3("SHA-256", false)
			Expect(err).To(BeNil())

			em, err := scheme.EncodingOf([]byte("abc"), 1024, nil)
			Expect(err).To(BeNil())
			Expect(em[len(em)-2:]).To(Equal([]byte{0x34, 0xCC}))
		})

		It("Ends an implicit encoding with 0xBC", func() {
			scheme, err := NewISO9796DS3("SHA-256", true)
			Expect(err).To(BeNil())

			em, err := scheme.EncodingOf([]byte("abc"), 1024, nil)
			Expect(err).To(BeNil())
			Expect(em[len(em)-1]).To(Equal(byte(0xBC)))
		})

		It("Accepts either trailer whichever is configured", func() {
			explicit, err := NewISO9796DS3("SHA-256", false)
			Expect(err).To(BeNil())
			implicit, err := NewISO9796DS3("SHA-256", true)
			Expect(err).To(BeNil())

			em, err := implicit.EncodingOf([]byte("abc"), 1024, nil)
			Expect(err).To(BeNil())
			Expect(explicit.Verify(em, []byte("abc"), 1024)).To(BeTrue())

			em, err = explicit.EncodingOf([]byte("abc"), 1024, nil)
			Expect(err).To(BeNil())
			Expect(implicit.Verify(em, []byte("abc"), 1024)).To(BeTrue())
		})

		It("Rejects an explicit trailer naming another hash", func() {
			scheme, err := NewISO9796DS3("SHA-256", false)
			Expect(err).To(BeNil())

			em, err := scheme.EncodingOf([]byte("abc"), 1024, nil)
			Expect(err).To(BeNil())
			em[len(em)-2] = IEEE1363HashID(HashSHA1)
			Expect(scheme.Verify(em, []byte("abc"), 1024)).To(BeFalse())
		})

		It("Refuses an explicit trailer for a hash with no identifier", func() {
			scheme, err := NewISO9796DS3(HashBLAKE2b512, false)
			Expect(err).To(BeNil())

			_, err = scheme.EncodingOf([]byte("abc"), 2048, nil)
			Expect(errors.Is(err, ErrEncoding)).To(BeTrue())

			implicit, err := NewISO9796DS3(HashBLAKE2b512, true)
			Expect(err).To(BeNil())

			em, err := implicit.EncodingOf([]byte("abc"), 2048, nil)
			Expect(err).To(BeNil())
			Expect(implicit.Verify(em, []byte("abc"), 2048)).To(BeTrue())
		})
	})

	Context("Sizing", func() {
		It("Refuses an output too small for the hash, salt and trailer", func() {
			scheme, err := NewISO9796DS2("SHA-256", false, 32)
			Expect(err).To(BeNil())

			_, err = scheme.EncodingOf([]byte("abc"), 512, rand.Reader)
			Expect(errors.Is(err, ErrEncoding)).To(BeTrue())

			_, err = scheme.EncodingOf([]byte("abc"), 0, rand.Reader)
			Expect(errors.Is(err, ErrEncoding)).To(BeTrue())
		})

		It("Skips the leading byte when no bit of it is usable", func() {
			emLen, mask, reserved := iso9796Layout(1025)
			Expect(emLen).To(Equal(129))
			Expect(mask).To(Equal(byte(0)))
			Expect(reserved).To(Equal(1))

			emLen, mask, reserved = iso9796Layout(1024)
			Expect(emLen).To(Equal(128))
			Expect(mask).To(Equal(byte(0x7F)))
			Expect(reserved).To(Equal(0))
		})

		It("Rejects a negative salt size", func() {
			_, err := NewISO9796DS2("SHA-256", false, -1)
			Expect(errors.Is(err, ErrInvalidArgument)).To(BeTrue())
		})
	})

	It("Names itself so that the name rebuilds it", func() {
		ds2, err := NewISO9796DS2("sha256", true, 20)
		Expect(err).To(BeNil())
		Expect(ds2.Name()).To(Equal("ISO_9796_DS2(SHA-256,imp,20)"))
		Expect(ds2.HashFunction()).To(Equal(HashSHA256))

		ds3, err := NewISO9796DS3("SHA-1", false)
		Expect(err).To(BeNil())
		Expect(ds3.Name()).To(Equal("ISO_9796_DS3(SHA-1,exp)"))
	})
})
