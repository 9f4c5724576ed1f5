/*
Package rsapad implements RSA signature padding schemes and blinding for the RSA private-key operation

# Overview

An RSA signature is not computed over a message directly. The message is first turned into a
representative the width of the key, and it is that representative which is raised to the private
exponent. How the representative is built is the job of a padding scheme ([Scheme]); this package
provides PKCS #1 v1.5 (with and without a hash), ISO/IEC 9796-2 schemes 2 and 3 (message recovery),
and a Raw pass-through.

Both directions are security critical. A sloppy encoder or verifier gives you forgeable signatures
(Bleichenbacher's attacks on malformed PKCS #1 structures are the classic example), and an
unblinded exponentiation leaks the private exponent through its timing.

# Schemes are created by name

	scheme, err := rsapad.CreateOrError("PKCS1v15(SHA-256)")

	scheme.Update(message)
	digest, err := scheme.RawData()
	encoded, err := scheme.EncodingOf(digest, 2048, rand.Reader)

Names follow the grammar Name, Name(Hash) or Name(Hash,Param...):

  - PKCS1v15(SHA-256), also reachable as EMSA_PKCS1, EMSA-PKCS1-v1_5 and EMSA3
  - PKCS1v15(Raw) and PKCS1v15(Raw,SHA-512), which sign a caller-supplied digest
  - ISO_9796_DS2(SHA-256), ISO_9796_DS2(SHA-256,imp) or ISO_9796_DS2(SHA-256,exp,20)
  - ISO_9796_DS3(SHA-256) and ISO_9796_DS3(SHA-256,imp)
  - Raw and Raw(SHA-256)

Every scheme's Name() is accepted by [Create], so a scheme can always be rebuilt from its name.
Unknown names fail with a [*LookupError] whose message is exactly

	Could not find any algorithm named "PKCS1v15(YYZ)"

A scheme instance carries the state of one message. Build a new one for every signature or
verification and don't share it between goroutines.

# Encoding fails loudly, verification never does

EncodingOf returns an error wrapping [ErrEncoding] whenever it cannot produce a correct
representative, for example when the key is too small for the mandatory eight bytes of 0xFF padding.
Verify only ever answers true or false. Malformed input is rejected the same way as a mismatched
one, and the final comparison takes constant time, so a forger learns nothing about why a
signature was refused.

# Blinding

A [Blinder] wraps a modular exponentiation with a random mask. For RSA the mask is built from a
nonce k as the pair (k^e, k^-1); the input is multiplied by the first before exponentiation and the
result by the second afterwards. The pair is squared on every use and rebuilt from a fresh nonce
every [DefaultReinitInterval] uses, see [WithReinitInterval].

[Signer] and [Verifier] put the pieces together:

	signer, err := rsapad.NewSigner(rand.Reader, key, "ISO_9796_DS2(SHA-256,imp)")
	sig, err := signer.Sign(message)

	verifier, err := rsapad.NewVerifier(&key.PublicKey, "ISO_9796_DS2(SHA-256,imp)")
	ok := verifier.Verify(message, sig)

# Split keys

[SplitD] breaks a private exponent into shards, either multiplicatively (d1 * d2 * ... * dk ≡ d mod phi(N))
or additively (d1 + d2 + ... + dk ≡ d mod phi(N)). Each party signs the same encoded representative
with [SignFirst] or [SignNext], and only the combination of all shards verifies. Because every party has
to sign the same representative, only deterministic schemes can be used; see [EncodeForSplitSigning].

# Sources

	[1] https://www.rfc-editor.org/rfc/rfc8017 (PKCS #1 v2.2)
	[2] ISO/IEC 9796-2:2010, Digital signature schemes giving message recovery, part 2
	[3] https://eprint.iacr.org/2001/060.pdf (two-party RSA key splitting)
*/
package rsapad
