package brontide

import (
	"crypto/sha256"

	"github.com/olaviolacerda/node-lightning/crypto"
)

const (
	protocolName = "Noise_XK_secp256k1_ChaChaPoly_SHA256"
	prologue     = "lightning"
)

var zeroNonce [12]byte

// act3Nonce is the little-endian 12-byte nonce used for the two AEAD calls
// in act three that encrypt/decrypt the initiator's static key: counter=1
// in the first 8-byte counter position (BOLT #8, Act Three).
var act3Nonce = [12]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// symmetricState carries the handshake hash and chaining key mixed across
// every act (BOLT #8's handshake state, h and ck).
type symmetricState struct {
	h  [32]byte
	ck [32]byte
}

// initialize runs BOLT #8's fixed three-step handshake-state init, seeded
// with the initiator's rpk or the responder's lpk.
func (s *symmetricState) initialize(seedPub [33]byte) {
	s.h = sha256.Sum256([]byte(protocolName))
	s.ck = s.h
	s.h = sha256.Sum256(append(s.h[:], []byte(prologue)...))
	s.h = sha256.Sum256(append(s.h[:], seedPub[:]...))
}

// mixHash folds data into the rolling handshake hash.
func (s *symmetricState) mixHash(data []byte) {
	s.h = sha256.Sum256(append(s.h[:], data...))
}

// mixKey folds a Diffie-Hellman output into the chaining key via HKDF and
// returns the transient AEAD key derived alongside it.
func (s *symmetricState) mixKey(dhOutput [32]byte) (tempKey [32]byte, err error) {
	ck, tempKey, err := crypto.HKDF2(s.ck[:], dhOutput[:])
	if err != nil {
		return tempKey, err
	}
	s.ck = ck
	return tempKey, nil
}

// encryptAndHash seals plaintext under key/nonce with the current handshake
// hash as associated data, then mixes the resulting ciphertext into the
// hash, the encrypt-then-mix-hash pair BOLT #8 repeats in every act.
func (s *symmetricState) encryptAndHash(key [32]byte, nonce [12]byte, plaintext []byte) ([]byte, error) {
	ciphertext, err := crypto.Seal(key, nonce, s.h[:], plaintext)
	if err != nil {
		return nil, err
	}
	s.mixHash(ciphertext)
	return ciphertext, nil
}

// decryptAndHash is the receive-side mirror of encryptAndHash: it opens the
// ciphertext against the current hash, then mixes the ciphertext (not the
// plaintext) into the hash, exactly as the sender did.
func (s *symmetricState) decryptAndHash(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	plaintext, err := crypto.Open(key, nonce, s.h[:], ciphertext)
	if err != nil {
		return nil, err
	}
	s.mixHash(ciphertext)
	return plaintext, nil
}
