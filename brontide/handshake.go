package brontide

import (
	"fmt"

	"github.com/olaviolacerda/node-lightning/crypto"
	"github.com/sirupsen/logrus"
)

// Role distinguishes the two sides of a handshake in the type system
// itself, rather than as a bool that could be flipped by accident at the
// act three key-split site.
type Role uint8

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

// state tracks progress through the BOLT #8 handshake. Only the
// transitions the protocol defines are legal; anything else is
// ErrOutOfSequence.
type state uint8

const (
	stateInit state = iota
	stateAct1Sent
	stateAct1Recv
	stateAct2Sent
	stateAct2Recv
	stateTransport
	stateTerminated
)

// Machine is the mid-handshake Noise state: the symmetric state, local
// static/ephemeral keys, and whatever remote keys have been learned so
// far. It carries no transport nonces and has no framing methods: the
// sk/rk derived at the end of act three are only held until Split() moves
// them into a Sender/Receiver pair, so a mid-handshake Machine cannot
// accidentally be used for transport framing.
type Machine struct {
	role  Role
	state state
	sym   symmetricState

	ls *crypto.KeyPair
	es *crypto.KeyPair

	rpk  [33]byte
	repk [33]byte

	// tempK2 survives from act two into act three: the initiator needs it
	// to encrypt its static key, the responder needs it to decrypt the
	// same field.
	tempK2 [32]byte

	// sendKey/recvKey hold the transport keys derived at the end of act
	// three until Split() consumes them into an owned Sender/Receiver
	// pair.
	sendKey [32]byte
	recvKey [32]byte
}

// NewInitiator builds a Machine that will drive the initiator side of the
// handshake against a known remote static public key.
func NewInitiator(ls *crypto.KeyPair, remoteStatic [33]byte) (*Machine, error) {
	es, err := crypto.GeneratePair()
	if err != nil {
		return nil, fmt.Errorf("brontide: generate ephemeral key: %w", err)
	}
	return newMachine(Initiator, ls, es, remoteStatic)
}

// NewResponder builds a Machine that will drive the responder side of the
// handshake; the remote static key is not known until RecvActThree.
func NewResponder(ls *crypto.KeyPair) (*Machine, error) {
	es, err := crypto.GeneratePair()
	if err != nil {
		return nil, fmt.Errorf("brontide: generate ephemeral key: %w", err)
	}
	return newMachine(Responder, ls, es, [33]byte{})
}

// NewInitiatorWithEphemeral and NewResponderWithEphemeral pin the ephemeral
// key instead of generating one, for deterministic BOLT #8 test-vector
// reproduction.
func NewInitiatorWithEphemeral(ls, es *crypto.KeyPair, remoteStatic [33]byte) (*Machine, error) {
	return newMachine(Initiator, ls, es, remoteStatic)
}

func NewResponderWithEphemeral(ls, es *crypto.KeyPair) (*Machine, error) {
	return newMachine(Responder, ls, es, [33]byte{})
}

func newMachine(role Role, ls, es *crypto.KeyPair, remoteStatic [33]byte) (*Machine, error) {
	if ls == nil || es == nil {
		return nil, fmt.Errorf("brontide: static and ephemeral key pairs are required")
	}
	m := &Machine{
		role:  role,
		state: stateInit,
		ls:    ls,
		es:    es,
	}
	if role == Initiator {
		m.rpk = remoteStatic
	}
	return m, nil
}

func (m *Machine) fail(err error) error {
	m.state = stateTerminated
	return err
}

func (m *Machine) log() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"component": "brontide",
		"role":      m.role.String(),
	})
}

// GenActOne produces the initiator's 50-byte act one message per BOLT #8's
// Act One. It also runs the handshake-state init, seeded with the known
// remote static key.
func (m *Machine) GenActOne() ([]byte, error) {
	if m.role != Initiator || m.state != stateInit {
		return nil, ErrOutOfSequence
	}

	m.sym.initialize(m.rpk)
	m.sym.mixHash(m.es.Pub[:])

	ss, err := crypto.ECDH(m.rpk, m.es.Priv)
	if err != nil {
		return nil, m.fail(err)
	}
	tempK1, err := m.sym.mixKey(ss)
	if err != nil {
		return nil, m.fail(err)
	}

	c, err := m.sym.encryptAndHash(tempK1, zeroNonce, nil)
	if err != nil {
		return nil, m.fail(err)
	}

	m.state = stateAct1Sent
	m.log().Debug("generated act one")

	msg := make([]byte, 0, 50)
	msg = append(msg, 0x00)
	msg = append(msg, m.es.Pub[:]...)
	msg = append(msg, c...)
	return msg, nil
}

// RecvActOne consumes the initiator's act one message per BOLT #8's Act
// One.
func (m *Machine) RecvActOne(msg []byte) error {
	if m.role != Responder || m.state != stateInit {
		return ErrOutOfSequence
	}
	if len(msg) != 50 {
		return m.fail(ErrAct1Read)
	}
	if msg[0] != 0x00 {
		return m.fail(ErrAct1BadVersion)
	}

	var re [33]byte
	copy(re[:], msg[1:34])
	c := msg[34:50]

	m.sym.initialize(m.ls.Pub)
	m.repk = re
	m.sym.mixHash(re[:])

	ss, err := crypto.ECDH(re, m.ls.Priv)
	if err != nil {
		return m.fail(err)
	}
	tempK1, err := m.sym.mixKey(ss)
	if err != nil {
		return m.fail(err)
	}

	if _, err := m.sym.decryptAndHash(tempK1, zeroNonce, c); err != nil {
		return m.fail(ErrAct1BadTag)
	}

	m.state = stateAct1Recv
	m.log().Debug("received act one")
	return nil
}

// GenActTwo produces the responder's 50-byte act two message per BOLT #8's
// Act Two.
func (m *Machine) GenActTwo() ([]byte, error) {
	if m.role != Responder || m.state != stateAct1Recv {
		return nil, ErrOutOfSequence
	}

	m.sym.mixHash(m.es.Pub[:])

	ss, err := crypto.ECDH(m.repk, m.es.Priv)
	if err != nil {
		return nil, m.fail(err)
	}
	tempK2, err := m.sym.mixKey(ss)
	if err != nil {
		return nil, m.fail(err)
	}
	m.tempK2 = tempK2

	c, err := m.sym.encryptAndHash(tempK2, zeroNonce, nil)
	if err != nil {
		return nil, m.fail(err)
	}

	m.state = stateAct2Sent
	m.log().Debug("generated act two")

	msg := make([]byte, 0, 50)
	msg = append(msg, 0x00)
	msg = append(msg, m.es.Pub[:]...)
	msg = append(msg, c...)
	return msg, nil
}

// RecvActTwo consumes the responder's act two message per BOLT #8's Act
// Two.
func (m *Machine) RecvActTwo(msg []byte) error {
	if m.role != Initiator || m.state != stateAct1Sent {
		return ErrOutOfSequence
	}
	if len(msg) != 50 {
		return m.fail(ErrAct2Read)
	}
	if msg[0] != 0x00 {
		return m.fail(ErrAct2BadVersion)
	}

	var re [33]byte
	copy(re[:], msg[1:34])
	c := msg[34:50]

	m.repk = re
	m.sym.mixHash(re[:])

	ss, err := crypto.ECDH(re, m.es.Priv)
	if err != nil {
		return m.fail(err)
	}
	tempK2, err := m.sym.mixKey(ss)
	if err != nil {
		return m.fail(err)
	}
	m.tempK2 = tempK2

	if _, err := m.sym.decryptAndHash(tempK2, zeroNonce, c); err != nil {
		return m.fail(ErrAct2BadTag)
	}

	m.state = stateAct2Recv
	m.log().Debug("received act two")
	return nil
}

// GenActThree produces the initiator's 66-byte act three message and
// completes the handshake, deriving the transport keys, per BOLT #8's Act
// Three. The initiator's static key must never be used before this point.
func (m *Machine) GenActThree() ([]byte, error) {
	if m.role != Initiator || m.state != stateAct2Recv {
		return nil, ErrOutOfSequence
	}

	c, err := m.sym.encryptAndHash(m.tempK2, act3Nonce, m.ls.Pub[:])
	if err != nil {
		return nil, m.fail(err)
	}

	ss, err := crypto.ECDH(m.repk, m.ls.Priv)
	if err != nil {
		return nil, m.fail(err)
	}
	tempK3, err := m.sym.mixKey(ss)
	if err != nil {
		return nil, m.fail(err)
	}

	t, err := m.sym.encryptAndHash(tempK3, zeroNonce, nil)
	if err != nil {
		return nil, m.fail(err)
	}

	// Initiator assignment (BOLT #8, Act Three): sk is the first half, rk
	// the second, the mirror image of the responder's split, which is the
	// entire reason the two sides agree on directions.
	sk, rk, err := crypto.HKDF2(m.sym.ck[:], nil)
	if err != nil {
		return nil, m.fail(err)
	}

	m.state = stateTransport
	m.log().Debug("generated act three, handshake complete")

	msg := make([]byte, 0, 66)
	msg = append(msg, 0x00)
	msg = append(msg, c...)
	msg = append(msg, t...)

	m.sendKey, m.recvKey = sk, rk
	return msg, nil
}

// RecvActThree consumes the initiator's act three message, authenticating
// its static key and completing the handshake, per BOLT #8's Act Three.
func (m *Machine) RecvActThree(msg []byte) error {
	if m.role != Responder || m.state != stateAct2Sent {
		return ErrOutOfSequence
	}
	if len(msg) != 66 {
		return m.fail(ErrAct3Read)
	}
	if msg[0] != 0x00 {
		return m.fail(ErrAct3BadVersion)
	}
	c := msg[1:50]
	t := msg[50:66]

	rs, err := m.sym.decryptAndHash(m.tempK2, act3Nonce, c)
	if err != nil {
		return m.fail(ErrAct3BadTag)
	}
	copy(m.rpk[:], rs)

	ss, err := crypto.ECDH(m.rpk, m.es.Priv)
	if err != nil {
		return m.fail(err)
	}
	tempK3, err := m.sym.mixKey(ss)
	if err != nil {
		return m.fail(err)
	}

	if _, err := m.sym.decryptAndHash(tempK3, zeroNonce, t); err != nil {
		return m.fail(ErrAct3BadTag)
	}

	// Responder assignment (BOLT #8, Act Three): rk first, sk second,
	// mirrored from the initiator's split so initiator.sk == responder.rk.
	rk, sk, err := crypto.HKDF2(m.sym.ck[:], nil)
	if err != nil {
		return m.fail(err)
	}

	m.state = stateTransport
	m.log().Debug("received act three, handshake complete")

	m.sendKey, m.recvKey = sk, rk
	return nil
}

// RemoteStatic returns the peer's authenticated static public key. Valid
// only once the handshake has completed.
func (m *Machine) RemoteStatic() ([33]byte, error) {
	if m.state != stateTransport {
		return [33]byte{}, fmt.Errorf("brontide: handshake not complete")
	}
	return m.rpk, nil
}
