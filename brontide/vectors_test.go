package brontide

import (
	"encoding/hex"
	"testing"

	"github.com/olaviolacerda/node-lightning/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BOLT #8's published test vectors: fixed static and ephemeral keys for
// both roles, and the expected act one/two wire bytes and initiator
// transport keys.
const (
	vecInitiatorStatic    = "1111111111111111111111111111111111111111111111111111111111111111"
	vecInitiatorEphemeral = "1212121212121212121212121212121212121212121212121212121212121212"
	vecResponderStatic    = "2121212121212121212121212121212121212121212121212121212121212121"
	vecResponderEphemeral = "2222222222222222222222222222222222222222222222222222222222222222"

	vecAct1 = "00036360e856310ce5d294e8be33fc807077dc56ac80d95d9cd4ddbd21325eff73f70df6086551151f58b8afe6c195782c6a"
	vecAct2 = "0002466d7fcae563e5cb09a0d1870bb580344804617879a14949cf22285f1bae3f276e2470b93aac583c9ef6eafca3f730ae"

	vecInitiatorSendKey = "969ab31b4d288cedf6218839b27a3e2140827047f2c0f01bf5c04435d43511a9"
	vecInitiatorRecvKey = "bb9020b8965f4df047e07f955f3c4b88418984aadc5cdb35096b9ea8fa5c3442"
)

func keyFromHex(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	var out [32]byte
	copy(out[:], b)
	return out
}

func newVectorPair(t *testing.T) (*Machine, *Machine) {
	t.Helper()

	iStatic, err := crypto.FromPrivate(keyFromHex(t, vecInitiatorStatic))
	require.NoError(t, err)
	iEphemeral, err := crypto.FromPrivate(keyFromHex(t, vecInitiatorEphemeral))
	require.NoError(t, err)
	rStatic, err := crypto.FromPrivate(keyFromHex(t, vecResponderStatic))
	require.NoError(t, err)
	rEphemeral, err := crypto.FromPrivate(keyFromHex(t, vecResponderEphemeral))
	require.NoError(t, err)

	initiator, err := NewInitiatorWithEphemeral(iStatic, iEphemeral, rStatic.Pub)
	require.NoError(t, err)
	responder, err := NewResponderWithEphemeral(rStatic, rEphemeral)
	require.NoError(t, err)

	return initiator, responder
}

func TestBOLT8VectorActOneAndTwo(t *testing.T) {
	initiator, responder := newVectorPair(t)

	act1, err := initiator.GenActOne()
	require.NoError(t, err)
	assert.Equal(t, vecAct1, hex.EncodeToString(act1))

	require.NoError(t, responder.RecvActOne(act1))

	act2, err := responder.GenActTwo()
	require.NoError(t, err)
	assert.Equal(t, vecAct2, hex.EncodeToString(act2))
}

func TestBOLT8VectorFullHandshakeAndTransportKeys(t *testing.T) {
	initiator, responder := newVectorPair(t)

	act1, err := initiator.GenActOne()
	require.NoError(t, err)
	require.NoError(t, responder.RecvActOne(act1))

	act2, err := responder.GenActTwo()
	require.NoError(t, err)
	require.NoError(t, initiator.RecvActTwo(act2))

	act3, err := initiator.GenActThree()
	require.NoError(t, err)
	assert.Len(t, act3, 66, "act three is version(1)||ciphertext(49)||tag(16)")

	require.NoError(t, responder.RecvActThree(act3))

	iSender, iReceiver, err := initiator.Split()
	require.NoError(t, err)
	rSender, rReceiver, err := responder.Split()
	require.NoError(t, err)

	assert.Equal(t, keyFromHex(t, vecInitiatorSendKey), iSender.key)
	assert.Equal(t, keyFromHex(t, vecInitiatorRecvKey), iReceiver.key)

	// BOLT #8: initiator.sk == responder.rk, initiator.rk == responder.sk.
	assert.Equal(t, iSender.key, rReceiver.key)
	assert.Equal(t, iReceiver.key, rSender.key)

	remote, err := responder.RemoteStatic()
	require.NoError(t, err)
	want, err := crypto.FromPrivate(keyFromHex(t, vecInitiatorStatic))
	require.NoError(t, err)
	assert.Equal(t, want.Pub, remote)
}

// TestBOLT8VectorFirstTransportMessage checks the first transport frame
// against the pinned initiator sending key (vecInitiatorSendKey) and
// confirms it decrypts back to "hello" on the peer. BOLT #8's published
// test vectors also give byte-exact ciphertexts for messages 0, 1, 500,
// 501, 1000, and 1001 to pin the rotation direction independently of
// either side's internal state; those literals aren't reproduced here
// verbatim, since getting even one hex digit wrong would assert a false
// byte-exact claim, which is worse than the functional check below plus
// TestTransportRotatesAtMessage1000And2000's cross-peer agreement at both
// rotation boundaries.
func TestBOLT8VectorFirstTransportMessage(t *testing.T) {
	initiator, responder := newVectorPair(t)

	act1, err := initiator.GenActOne()
	require.NoError(t, err)
	require.NoError(t, responder.RecvActOne(act1))
	act2, err := responder.GenActTwo()
	require.NoError(t, err)
	require.NoError(t, initiator.RecvActTwo(act2))
	act3, err := initiator.GenActThree()
	require.NoError(t, err)
	require.NoError(t, responder.RecvActThree(act3))

	iSender, _, err := initiator.Split()
	require.NoError(t, err)
	_, rReceiver, err := responder.Split()
	require.NoError(t, err)

	frame, err := iSender.WriteMessage([]byte("hello"))
	require.NoError(t, err)

	// The body ciphertext must match sealing "hello" directly under the
	// pinned vecInitiatorSendKey at counter 1 (the length frame consumes
	// counter 0), independently of whatever internal nonce/key bookkeeping
	// WriteMessage does.
	bodyNonce := [12]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	wantBody, err := crypto.Seal(keyFromHex(t, vecInitiatorSendKey), bodyNonce, nil, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, wantBody, frame[18:])

	length, err := rReceiver.DecryptLength(frame[:18])
	require.NoError(t, err)
	assert.EqualValues(t, 5, length)

	pt, err := rReceiver.DecryptMessage(frame[18:])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(pt))
}
