package brontide

import (
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/olaviolacerda/node-lightning/crypto"
	"github.com/sirupsen/logrus"
)

// Config controls how Dial/Accept drive the handshake over a net.Conn. BOLT
// #8's handshake state machine performs no I/O of its own, but a connection
// wrapper without a deadline hangs forever against a silent peer, so this
// carries a handshake timeout as a struct field instead of a package-level
// constant.
type Config struct {
	HandshakeTimeout time.Duration
}

// DefaultConfig returns a Config with a 30-second handshake timeout. Dial
// and Accept use the Config they are given as-is; a zero HandshakeTimeout
// is not replaced by this default.
func DefaultConfig() Config {
	return Config{HandshakeTimeout: 30 * time.Second}
}

// Conn wraps a net.Conn with a completed brontide handshake, framing
// Read/Write through the transport cipher per BOLT #8's message exchange
// rules. It plugs the handshake state machine into a real TCP connection.
type Conn struct {
	id     uuid.UUID
	role   Role
	nc     net.Conn
	sender *Sender
	recv   *Receiver
	remote [33]byte

	pending []byte // leftover plaintext from a partially-consumed frame
}

func (c *Conn) log() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"component": "brontide",
		"conn_id":   c.id.String(),
		"role":      c.role.String(),
		"remote":    c.nc.RemoteAddr(),
	})
}

// Dial connects to addr, performs the initiator side of the handshake
// against the given remote static key, and returns a ready-to-use Conn.
func Dial(network, addr string, ls *crypto.KeyPair, remoteStatic [33]byte, cfg Config) (*Conn, error) {
	nc, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}

	m, err := NewInitiator(ls, remoteStatic)
	if err != nil {
		nc.Close()
		return nil, err
	}

	if err := runInitiatorHandshake(nc, m, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	return finishHandshake(nc, m, Initiator)
}

// Accept performs the responder side of the handshake over an already
// accepted net.Conn (e.g. from a net.Listener).
func Accept(nc net.Conn, ls *crypto.KeyPair, cfg Config) (*Conn, error) {
	m, err := NewResponder(ls)
	if err != nil {
		return nil, err
	}

	if err := runResponderHandshake(nc, m, cfg); err != nil {
		return nil, err
	}

	return finishHandshake(nc, m, Responder)
}

func runInitiatorHandshake(nc net.Conn, m *Machine, cfg Config) error {
	deadline := time.Now().Add(cfg.HandshakeTimeout)
	if err := nc.SetDeadline(deadline); err != nil {
		return err
	}
	defer nc.SetDeadline(time.Time{})

	act1, err := m.GenActOne()
	if err != nil {
		return err
	}
	if _, err := nc.Write(act1); err != nil {
		return err
	}

	act2 := make([]byte, 50)
	if _, err := io.ReadFull(nc, act2); err != nil {
		return err
	}
	if err := m.RecvActTwo(act2); err != nil {
		return err
	}

	act3, err := m.GenActThree()
	if err != nil {
		return err
	}
	_, err = nc.Write(act3)
	return err
}

func runResponderHandshake(nc net.Conn, m *Machine, cfg Config) error {
	deadline := time.Now().Add(cfg.HandshakeTimeout)
	if err := nc.SetDeadline(deadline); err != nil {
		return err
	}
	defer nc.SetDeadline(time.Time{})

	act1 := make([]byte, 50)
	if _, err := io.ReadFull(nc, act1); err != nil {
		return err
	}
	if err := m.RecvActOne(act1); err != nil {
		return err
	}

	act2, err := m.GenActTwo()
	if err != nil {
		return err
	}
	if _, err := nc.Write(act2); err != nil {
		return err
	}

	act3 := make([]byte, 66)
	if _, err := io.ReadFull(nc, act3); err != nil {
		return err
	}
	return m.RecvActThree(act3)
}

func finishHandshake(nc net.Conn, m *Machine, role Role) (*Conn, error) {
	remote, err := m.RemoteStatic()
	if err != nil {
		return nil, err
	}
	sender, recv, err := m.Split()
	if err != nil {
		return nil, err
	}

	c := &Conn{
		id:     uuid.New(),
		role:   role,
		nc:     nc,
		sender: sender,
		recv:   recv,
		remote: remote,
	}
	c.log().Debug("brontide handshake complete")
	return c, nil
}

// RemoteStatic returns the peer's authenticated static public key.
func (c *Conn) RemoteStatic() [33]byte { return c.remote }

// Close closes the underlying net.Conn.
func (c *Conn) Close() error { return c.nc.Close() }

// Write encrypts p as one or more transport frames, each at most 65535
// plaintext bytes per BOLT #8's message length limit, and writes them to
// the underlying connection.
func (c *Conn) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > 65535 {
			chunk = chunk[:65535]
		}
		frame, err := c.sender.WriteMessage(chunk)
		if err != nil {
			return total, err
		}
		if _, err := c.nc.Write(frame); err != nil {
			return total, err
		}
		total += len(chunk)
		p = p[len(chunk):]
	}
	return total, nil
}

// Read fills p with decrypted application bytes, reading and authenticating
// whole transport frames from the underlying connection as needed. It
// reads each frame atomically internally, so a caller of Conn can never
// desynchronize rn by interleaving length/body reads incorrectly.
func (c *Conn) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		frame, err := c.readFrame()
		if err != nil {
			return 0, err
		}
		c.pending = frame
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Conn) readFrame() ([]byte, error) {
	lc := make([]byte, 18)
	if _, err := io.ReadFull(c.nc, lc); err != nil {
		return nil, err
	}
	length, err := c.recv.DecryptLength(lc)
	if err != nil {
		return nil, err
	}

	ct := make([]byte, int(length)+16)
	if _, err := io.ReadFull(c.nc, ct); err != nil {
		return nil, err
	}
	return c.recv.DecryptMessage(ct)
}

// LocalAddr and RemoteAddr expose the underlying connection's endpoints.
func (c *Conn) LocalAddr() net.Addr  { return c.nc.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// SetDeadline forwards to the underlying connection, for transport-phase
// timeouts (the handshake phase manages its own deadline internally).
func (c *Conn) SetDeadline(t time.Time) error      { return c.nc.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.nc.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.nc.SetWriteDeadline(t) }
