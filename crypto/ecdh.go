package crypto

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ECDH computes the BOLT #8 elliptic-curve Diffie-Hellman shared secret:
// SHA-256 of the compressed secp256k1 point priv*peerPub. peerPub must be a
// 33-byte compressed public key.
func ECDH(peerPub [33]byte, priv [32]byte) ([32]byte, error) {
	pub, err := secp256k1.ParsePubKey(peerPub[:])
	if err != nil {
		return [32]byte{}, errors.New("crypto: invalid peer public key")
	}

	privKey := secp256k1.PrivKeyFromBytes(priv[:])
	defer privKey.Zero()

	var point secp256k1.JacobianPoint
	pub.AsJacobian(&point)

	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&privKey.Key, &point, &result)
	result.ToAffine()

	shared := secp256k1.NewPublicKey(&result.X, &result.Y)
	return sha256.Sum256(shared.SerializeCompressed()), nil
}
