package crypto

import (
	"crypto/rand"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// KeyPair is a secp256k1 private scalar and its compressed public point, as
// used for both static and ephemeral keys in the handshake.
type KeyPair struct {
	Priv [32]byte
	Pub  [33]byte
}

// GeneratePair creates a new random secp256k1 key pair.
func GeneratePair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	kp := &KeyPair{}
	copy(kp.Priv[:], priv.Serialize())
	copy(kp.Pub[:], priv.PubKey().SerializeCompressed())
	return kp, nil
}

// FromPrivate builds a key pair from an existing 32-byte private scalar,
// deriving the compressed public point.
func FromPrivate(priv [32]byte) (*KeyPair, error) {
	if isZero(priv[:]) {
		return nil, errors.New("crypto: invalid private key: all zeros")
	}

	privKey := secp256k1.PrivKeyFromBytes(priv[:])
	defer privKey.Zero()

	kp := &KeyPair{Priv: priv}
	copy(kp.Pub[:], privKey.PubKey().SerializeCompressed())
	return kp, nil
}

// Derive returns the 33-byte compressed public key for a 32-byte private
// scalar, without keeping a full KeyPair around.
func Derive(priv [32]byte) ([33]byte, error) {
	kp, err := FromPrivate(priv)
	if err != nil {
		return [33]byte{}, err
	}
	return kp.Pub, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// RandomBytes fills buf with cryptographically secure random bytes. It
// exists so callers outside crypto never import "crypto/rand" directly for
// key material, keeping the primitive layer's entropy source in one place.
func RandomBytes(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}
