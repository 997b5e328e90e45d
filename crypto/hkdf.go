package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF2 runs HKDF-SHA256 with the given salt and input keying material and
// an empty info string, returning two 32-byte outputs, the shape every
// mixing step in the BOLT #8 handshake needs (64 output bytes read as two
// halves).
func HKDF2(salt, ikm []byte) (a, b [32]byte, err error) {
	reader := hkdf.New(sha256.New, ikm, salt, nil)
	if _, err = io.ReadFull(reader, a[:]); err != nil {
		return a, b, err
	}
	if _, err = io.ReadFull(reader, b[:]); err != nil {
		return a, b, err
	}
	return a, b, nil
}
