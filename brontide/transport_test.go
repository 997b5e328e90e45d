package brontide

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportEmptyPayload(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	frame, err := iSender.WriteMessage(nil)
	require.NoError(t, err)
	assert.Len(t, frame, 18+16, "empty payload frame is 18+16 = 34 bytes")

	length, err := rReceiver.DecryptLength(frame[:18])
	require.NoError(t, err)
	assert.EqualValues(t, 0, length)

	pt, err := rReceiver.DecryptMessage(frame[18:])
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestTransportMaxPayload(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	msg := bytes.Repeat([]byte{0x42}, 65535)
	frame, err := iSender.WriteMessage(msg)
	require.NoError(t, err)

	length, err := rReceiver.DecryptLength(frame[:18])
	require.NoError(t, err)
	assert.EqualValues(t, 65535, length)

	pt, err := rReceiver.DecryptMessage(frame[18 : 18+int(length)+16])
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestTransportRejectsOversizedPayload(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, _ := completeHandshake(t, initiator, responder)

	_, err := iSender.WriteMessage(make([]byte, 65536))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestTransportSequentialRoundTrip(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	for i := 0; i < 25; i++ {
		msg := bytes.Repeat([]byte{byte(i)}, i+1)
		frame, err := iSender.WriteMessage(msg)
		require.NoError(t, err)

		length, err := rReceiver.DecryptLength(frame[:18])
		require.NoError(t, err)
		require.EqualValues(t, len(msg), length)

		pt, err := rReceiver.DecryptMessage(frame[18:])
		require.NoError(t, err)
		assert.Equal(t, msg, pt)
	}
}

func TestTransportMutatedCiphertextFailsAuth(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	frame, err := iSender.WriteMessage([]byte("hello"))
	require.NoError(t, err)
	frame[20] ^= 0xff

	_, err = rReceiver.DecryptLength(frame[:18])
	require.NoError(t, err)
	_, err = rReceiver.DecryptMessage(frame[18:])
	assert.ErrorIs(t, err, ErrTransportBadTag)
}

func TestTransportOutOfOrderDesyncsReceiver(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	frame1, err := iSender.WriteMessage([]byte("first"))
	require.NoError(t, err)
	frame2, err := iSender.WriteMessage([]byte("second"))
	require.NoError(t, err)

	// Skip frame1's length decrypt and go straight to frame2's length
	// bytes: rn is now desynchronized and authentication must fail.
	_, err = rReceiver.DecryptLength(frame2[:18])
	assert.Error(t, err)
	_ = frame1
}

// TestTransportRotatesAtMessage1000And2000 exercises BOLT #8's key
// rotation check. Each WriteMessage/DecryptLength+DecryptMessage triple
// performs two nonce increments (one for the length frame, one for the
// body), so the cumulative nonce-use count that §4.10/§4.11 compare
// against 1000 reaches it after the 500th application message, and 2000
// after the 1000th.
func TestTransportRotatesAtMessage1000And2000(t *testing.T) {
	initiator, responder := newHandshakingPair(t)
	iSender, _, _, rReceiver := completeHandshake(t, initiator, responder)

	var lastSendCK, lastRecvCK [32]byte
	for i := 1; i <= 1000; i++ {
		frame, err := iSender.WriteMessage([]byte("x"))
		require.NoError(t, err)

		length, err := rReceiver.DecryptLength(frame[:18])
		require.NoError(t, err)
		_, err = rReceiver.DecryptMessage(frame[18 : 18+int(length)+16])
		require.NoError(t, err)

		switch i {
		case 499:
			assert.NotEqual(t, [12]byte{}, iSender.nonce, "no rotation yet before cumulative use 1000")
		case 500:
			assert.Equal(t, [12]byte{}, iSender.nonce, "sender nonce resets once cumulative use hits 1000")
			assert.Equal(t, [12]byte{}, rReceiver.nonce, "receiver nonce resets once cumulative use hits 1000")
			lastSendCK, lastRecvCK = iSender.ck, rReceiver.ck
		case 999:
			assert.NotEqual(t, [12]byte{}, iSender.nonce, "no second rotation yet before cumulative use 2000")
		case 1000:
			assert.Equal(t, [12]byte{}, iSender.nonce, "sender nonce resets again once cumulative use hits 2000")
			assert.Equal(t, [12]byte{}, rReceiver.nonce, "receiver nonce resets again once cumulative use hits 2000")
			assert.NotEqual(t, lastSendCK, iSender.ck, "chaining key advances on each rotation")
			assert.NotEqual(t, lastRecvCK, rReceiver.ck)
		}
	}
}
