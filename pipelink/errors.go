package pipelink

import "errors"

var (
	ErrNotConnected  = errors.New("pipelink: not connected")
	ErrEmptyPipeName = errors.New("pipelink: pipe name must not be empty")
	ErrServerClosed  = errors.New("pipelink: server closed")
	// ErrSerialization marks structured-codec failures (JSON encode/decode,
	// invalid UTF-8 in a string message), distinct from transport and
	// encryption errors.
	ErrSerialization = errors.New("pipelink: serialization failed")
)
