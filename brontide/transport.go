package brontide

import (
	"encoding/binary"

	"github.com/olaviolacerda/node-lightning/crypto"
)

// rotationInterval is the fixed message count after which a direction's
// key is rotated (BOLT #8's key rotation rule).
const rotationInterval = 1000

// Sender is the write half of a completed handshake, owning the send key,
// chaining key, and nonce independently of the read half so the two can be
// driven from separate goroutines.
type Sender struct {
	key   [32]byte
	ck    [32]byte
	nonce [12]byte
}

// Receiver is the read half of a completed handshake.
type Receiver struct {
	key   [32]byte
	ck    [32]byte
	nonce [12]byte
}

// Split consumes a handshake-complete Machine and returns the owned
// Sender/Receiver pair. The Machine must not be used afterward.
func (m *Machine) Split() (*Sender, *Receiver, error) {
	if m.state != stateTransport {
		return nil, nil, ErrOutOfSequence
	}

	s := &Sender{key: m.sendKey, ck: m.sym.ck}
	r := &Receiver{key: m.recvKey, ck: m.sym.ck}

	crypto.Zero(m.sendKey[:])
	crypto.Zero(m.recvKey[:])
	crypto.Zero(m.ls.Priv[:])
	crypto.Zero(m.es.Priv[:])

	return s, r, nil
}

// nextNonce increments the low counter (bytes 4..5, little-endian) of a
// 12-byte transport nonce and returns the resulting counter value. Bytes
// 0..3 and 6..11 always stay zero (BOLT #8's nonce encoding).
func nextNonce(nonce *[12]byte) uint16 {
	counter := binary.LittleEndian.Uint16(nonce[4:6])
	counter++
	binary.LittleEndian.PutUint16(nonce[4:6], counter)
	return counter
}

// rotateSend and rotateRecv implement BOLT #8's key rotation for each
// direction: after the message that
// pushes a direction's counter to >= 1000, that direction's key is
// rederived from (ck, key) via HKDF and its nonce resets to zero. The check
// runs on the post-increment counter: the 1000th message still uses
// counter 999, and the rotation happens immediately after.
func rotateSend(s *Sender, counter uint16) error {
	if counter < rotationInterval {
		return nil
	}
	ck, key, err := crypto.HKDF2(s.ck[:], s.key[:])
	if err != nil {
		return err
	}
	s.ck, s.key = ck, key
	s.nonce = [12]byte{}
	return nil
}

func rotateRecv(r *Receiver, counter uint16) error {
	if counter < rotationInterval {
		return nil
	}
	ck, key, err := crypto.HKDF2(r.ck[:], r.key[:])
	if err != nil {
		return err
	}
	r.ck, r.key = ck, key
	r.nonce = [12]byte{}
	return nil
}

// WriteMessage encrypts m as a length-prefixed transport frame per BOLT
// #8's encrypting-and-sending rule: a sealed 2-byte big-endian length,
// followed by the sealed payload, each under its own nonce increment and
// rotation check.
func (s *Sender) WriteMessage(m []byte) ([]byte, error) {
	if len(m) > 65535 {
		return nil, ErrMessageTooLarge
	}

	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(m)))

	lc, err := crypto.Seal(s.key, s.nonce, nil, l[:])
	if err != nil {
		return nil, err
	}
	if err := rotateSend(s, nextNonce(&s.nonce)); err != nil {
		return nil, err
	}

	c, err := crypto.Seal(s.key, s.nonce, nil, m)
	if err != nil {
		return nil, err
	}
	if err := rotateSend(s, nextNonce(&s.nonce)); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(lc)+len(c))
	out = append(out, lc...)
	out = append(out, c...)
	return out, nil
}

// DecryptLength is the first phase of BOLT #8's two-phase receive: it
// authenticates and returns the plaintext big-endian length prefix from an
// 18-byte sealed length frame.
func (r *Receiver) DecryptLength(lc []byte) (uint16, error) {
	l, err := crypto.Open(r.key, r.nonce, nil, lc)
	if err != nil {
		return 0, ErrTransportBadTag
	}
	if err := rotateRecv(r, nextNonce(&r.nonce)); err != nil {
		return 0, err
	}
	if len(l) != 2 {
		return 0, ErrTransportBadTag
	}
	return binary.BigEndian.Uint16(l), nil
}

// DecryptMessage is the second phase of BOLT #8's two-phase receive: it
// authenticates and returns the plaintext payload. Callers must call
// DecryptLength immediately before this for every frame; calling out of
// order desynchronizes rn and every subsequent decrypt fails.
func (r *Receiver) DecryptMessage(ct []byte) ([]byte, error) {
	m, err := crypto.Open(r.key, r.nonce, nil, ct)
	if err != nil {
		return nil, ErrTransportBadTag
	}
	if err := rotateRecv(r, nextNonce(&r.nonce)); err != nil {
		return nil, err
	}
	return m, nil
}
