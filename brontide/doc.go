// Package brontide implements the Noise_XK_secp256k1_ChaChaPoly_SHA256
// handshake and transport-encryption state machine used by the Lightning
// Network peer-to-peer protocol (BOLT #8).
//
// A [Machine] drives the three-act handshake for either role:
//
//	m, err := brontide.NewInitiator(localStatic, remoteStaticPub)
//	act1, err := m.GenActOne()
//	// write act1 to the wire, read act2 back
//	err = m.RecvActTwo(act2)
//	act3, err := m.GenActThree()
//	// write act3 to the wire; the handshake is now complete
//
// Once complete, [Machine.Split] consumes the Machine and returns an owned
// [Sender]/[Receiver] pair so the read and write halves of a connection can
// be driven from separate goroutines without a mutex. [Conn] wraps this
// whole sequence around a real net.Conn for the common case of a single
// TCP-backed peer connection.
//
// Every operation here is a pure state transition over caller-supplied
// bytes; no I/O happens inside Machine, Sender, or Receiver themselves.
package brontide
