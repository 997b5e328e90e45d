package brontide

import "errors"

// Handshake and transport errors. Every one is terminal: on any of these
// the caller must drop the connection. There is no retry or resync.
var (
	ErrAct1Read       = errors.New("brontide: act one message has invalid length")
	ErrAct1BadVersion = errors.New("brontide: act one version byte is not zero")
	ErrAct1BadTag     = errors.New("brontide: act one authentication failed")

	ErrAct2Read       = errors.New("brontide: act two message has invalid length")
	ErrAct2BadVersion = errors.New("brontide: act two version byte is not zero")
	ErrAct2BadTag     = errors.New("brontide: act two authentication failed")

	ErrAct3Read       = errors.New("brontide: act three message has invalid length")
	ErrAct3BadVersion = errors.New("brontide: act three version byte is not zero")
	ErrAct3BadTag     = errors.New("brontide: act three authentication failed")

	ErrTransportBadTag = errors.New("brontide: transport authentication failed")
	ErrOutOfSequence   = errors.New("brontide: handshake method called out of sequence")
	ErrMessageTooLarge = errors.New("brontide: message exceeds maximum frame size of 65535 bytes")
)
