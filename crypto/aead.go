package crypto

import (
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthFailed is returned by Open when the ciphertext fails authentication.
var ErrAuthFailed = errors.New("crypto: aead authentication failed")

// Seal encrypts and authenticates plaintext under key/nonce/ad, returning
// ciphertext||tag. nonce must be 12 bytes.
func Seal(key [32]byte, nonce [12]byte, ad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, ad), nil
}

// Open decrypts and authenticates ciphertext||tag under key/nonce/ad. It
// returns ErrAuthFailed on any authentication failure, never leaking
// details about where the mismatch occurred.
func Open(key [32]byte, nonce [12]byte, ad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return pt, nil
}
