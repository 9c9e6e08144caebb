package pipelink

import (
	"encoding/json"
	"fmt"
	"net"
	"unicode/utf8"

	"github.com/duplexio/pipelink/pipelink/auth"
	"github.com/duplexio/pipelink/pipelink/crypto"
	"github.com/duplexio/pipelink/pipelink/pipe"
	"github.com/duplexio/pipelink/pipelink/protocol"
)

// Connection is one end of an established duplex channel. It owns the
// transport handle, the framer, and the optional cipher for its lifetime.
//
// A Connection belongs to a single goroutine at a time: calls observe
// program order as issued by their owner, and concurrent use from two call
// sites requires external synchronization. There are no implicit retries
// and no reconnection; once the channel errors or Close is called, the
// Connection is done.
type Connection struct {
	conn     net.Conn
	framer   *protocol.Framer
	cipher   *crypto.Cipher
	compress bool
	pipeName string
	peerPath string
	closed   bool
}

func newConnection(conn net.Conn, pipeName string, cfg Config) (*Connection, error) {
	cipher, err := cfg.cipher()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Connection{
		conn:     conn,
		framer:   protocol.NewFramer(conn, cfg.MaxFramePayload),
		cipher:   cipher,
		compress: cfg.Compress,
		pipeName: pipeName,
	}, nil
}

// verifyPeer runs the same-executable check against the process on the
// other end and records its path. Any failure means the peer must not be
// trusted; callers tear the Connection down.
func (c *Connection) verifyPeer(r auth.Resolver) error {
	pid, err := pipe.PeerPID(c.conn)
	if err != nil {
		return fmt.Errorf("pipelink: peer verification: %w", err)
	}
	path, err := auth.Verifier{Resolver: r}.Verify(pid)
	if err != nil {
		return err
	}
	c.peerPath = path
	return nil
}

// SendBytes writes one framed message. With encryption configured the
// payload is sealed first; with compression configured it is compressed
// before sealing. Exactly one transport write cycle, no retries.
func (c *Connection) SendBytes(payload []byte) error {
	if c.closed {
		return ErrNotConnected
	}
	var err error
	if c.compress {
		if payload, err = protocol.Compress(payload, protocol.CompressionDefault); err != nil {
			return err
		}
	}
	if c.cipher != nil {
		if payload, err = c.cipher.Seal(payload); err != nil {
			return err
		}
	}
	return c.framer.WriteFrame(payload)
}

// ReceiveBytes blocks until one complete frame arrives and returns its
// payload, opened and decompressed as configured.
//
// A crypto.ErrDecryptionFailed return does not close the Connection:
// framing integrity is independent of payload authenticity, so the stream
// is still parseable and the caller decides whether to keep reading or
// tear down.
func (c *Connection) ReceiveBytes() ([]byte, error) {
	if c.closed {
		return nil, ErrNotConnected
	}
	payload, err := c.framer.ReadFrame()
	if err != nil {
		return nil, err
	}
	if c.cipher != nil {
		if payload, err = c.cipher.Open(payload); err != nil {
			return nil, err
		}
	}
	if c.compress {
		if payload, err = protocol.Decompress(payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// SendString sends a UTF-8 string message.
func (c *Connection) SendString(s string) error {
	return c.SendBytes([]byte(s))
}

// ReceiveString receives one message and interprets it as UTF-8.
func (c *Connection) ReceiveString() (string, error) {
	data, err := c.ReceiveBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: message is not valid UTF-8", ErrSerialization)
	}
	return string(data), nil
}

// SendJSON serializes v as JSON and sends it as one message.
func (c *Connection) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return c.SendBytes(data)
}

// ReceiveJSON receives one message and unmarshals it into v, which must be
// a pointer as with encoding/json.
func (c *Connection) ReceiveJSON(v interface{}) error {
	data, err := c.ReceiveBytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

// PipeName returns the endpoint name this Connection was established on.
func (c *Connection) PipeName() string { return c.pipeName }

// PeerPath returns the peer's verified executable path, or "" when the
// same-path check did not run.
func (c *Connection) PeerPath() string { return c.peerPath }

// IsConnected reports whether Close has not yet been called.
func (c *Connection) IsConnected() bool { return !c.closed }

// Close releases the transport handle. Safe to call more than once.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
