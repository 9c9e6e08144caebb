package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultMaxFramePayload limits a single frame payload unless the
	// caller configures a different bound.
	DefaultMaxFramePayload = 1 << 20 // 1 MiB

	lenSize = 4
)

var (
	ErrFrameTooLarge   = errors.New("protocol: frame payload too large")
	ErrIncompleteFrame = errors.New("protocol: stream ended mid-frame")
)

// Framer reads and writes length-prefixed frames on a byte stream.
// Format:
//
//	4 bytes: payload length (little endian)
//	N bytes: payload
//
// The underlying transport may deliver fewer bytes than requested; the
// Framer keeps its buffers across calls, so a frame split over many short
// reads is reassembled transparently. A Framer is not safe for concurrent
// use; it belongs to the single owner of its connection.
type Framer struct {
	br  *bufio.Reader
	bw  *bufio.Writer
	max uint32
}

// NewFramer wraps rw. maxPayload bounds the declared length of incoming
// frames and the size of outgoing ones; zero or negative selects
// DefaultMaxFramePayload.
func NewFramer(rw io.ReadWriter, maxPayload int) *Framer {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxFramePayload
	}
	return &Framer{
		br:  bufio.NewReader(rw),
		bw:  bufio.NewWriter(rw),
		max: uint32(maxPayload),
	}
}

// WriteFrame writes one frame containing payload. An empty payload is a
// valid frame.
func (f *Framer) WriteFrame(payload []byte) error {
	if uint64(len(payload)) > uint64(f.max) {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var lenBuf [lenSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := f.bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := f.bw.Write(payload); err != nil {
			return err
		}
	}
	return f.bw.Flush()
}

// ReadFrame blocks until one complete frame has arrived and returns its
// payload. A clean end of stream before any length byte is io.EOF; an end
// of stream after a frame has started is ErrIncompleteFrame. A declared
// length above the configured maximum is rejected before any payload is
// read or allocated.
func (f *Framer) ReadFrame() ([]byte, error) {
	var lenBuf [lenSize]byte
	if _, err := io.ReadFull(f.br, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrIncompleteFrame
		}
		return nil, err
	}
	payloadLen := binary.LittleEndian.Uint32(lenBuf[:])
	if payloadLen > f.max {
		return nil, fmt.Errorf("%w: %d bytes declared", ErrFrameTooLarge, payloadLen)
	}
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(f.br, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrIncompleteFrame
			}
			return nil, err
		}
	}
	return payload, nil
}
