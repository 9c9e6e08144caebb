package pipelink

import (
	"net"
	"sync"

	"github.com/duplexio/pipelink/pipelink/pipe"
)

// Handler consumes one Connection. Each accepted connection gets its own
// invocation on its own goroutine; a returned error is confined to that
// connection and never stops the server.
type Handler func(*Connection) error

// Server binds a named endpoint and serves many concurrent clients. The
// accept loop and the spawned handlers share nothing mutable beyond the
// immutable Config.
type Server struct {
	name string
	cfg  Config

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	handlers sync.WaitGroup
}

// NewServer validates the configuration and returns a Server. It does not
// bind the endpoint; Start does.
func NewServer(name string, cfg Config) (*Server, error) {
	if name == "" {
		return nil, ErrEmptyPipeName
	}
	if _, err := cfg.cipher(); err != nil {
		return nil, err
	}
	return &Server{name: name, cfg: cfg}, nil
}

// Start binds the endpoint, then loops: accept a connection, wrap it, run
// the same-path check when configured (a rejected peer is closed and the
// loop continues), and hand the Connection to handler on a fresh
// goroutine without waiting for it to finish.
//
// Start blocks until Close or Shutdown, returning nil, or until an
// accept-level transport error, which is fatal and returned.
func (s *Server) Start(handler Handler) error {
	ln, err := pipe.Listen(s.name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}

		c, err := newConnection(conn, s.name, s.cfg)
		if err != nil {
			conn.Close()
			continue
		}
		if s.cfg.EnforceSamePath {
			if err := c.verifyPeer(s.cfg.Resolver); err != nil {
				c.Close()
				continue
			}
		}

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			defer c.Close()
			_ = handler(c)
		}()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the accept loop. Handlers already in flight keep running
// against their own Connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Shutdown stops the accept loop and waits for all in-flight handlers to
// finish.
func (s *Server) Shutdown() error {
	err := s.Close()
	s.handlers.Wait()
	return err
}
