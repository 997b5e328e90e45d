package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// Wipe securely erases the contents of a byte slice containing sensitive
// data. It returns an error if the slice is nil.
func Wipe(data []byte) error {
	if data == nil {
		return errors.New("crypto: cannot wipe nil data")
	}

	// Overwrite the data with zeros. subtle.ConstantTimeCompare touches
	// every byte first so the compiler can't prove the copy is dead and
	// elide it.
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)

	return nil
}

// Zero erases the contents of a byte slice, ignoring the error from Wipe.
func Zero(data []byte) {
	_ = Wipe(data)
}

// WipeKeyPair securely erases the private scalar in a KeyPair.
func WipeKeyPair(kp *KeyPair) error {
	if kp == nil {
		return errors.New("crypto: cannot wipe nil key pair")
	}
	return Wipe(kp.Priv[:])
}
