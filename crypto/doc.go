// Package crypto implements the cryptographic primitive layer that the
// brontide handshake state machine treats as a black box: secp256k1 key
// generation and ECDH, HKDF-SHA256, and ChaCha20-Poly1305 AEAD.
//
// Nothing in this package knows about handshake acts, nonces, or wire
// framing (package brontide owns all of that and only calls down into
// here for the primitive operations BOLT #8 specifies).
//
//	kp, err := crypto.GeneratePair()
//	shared, err := crypto.ECDH(peerPub, kp.Priv)
//	ck, tempK, err := crypto.HKDF2(ck[:], shared[:])
//	ciphertext, err := crypto.Seal(tempK, nonce, ad, plaintext)
//
// Secret material (private scalars, chaining keys, AEAD keys) should be
// wiped with [Zero] once no longer needed.
package crypto
