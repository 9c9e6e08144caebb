package pipelink

import (
	"context"

	"github.com/duplexio/pipelink/pipelink/pipe"
)

// Client opens the named endpoint as the connecting side. A Client may be
// reused to connect again after a disconnect; each successful Connect
// yields exactly one live Connection.
type Client struct {
	name string
	cfg  Config
}

// NewClient validates the configuration and returns a Client. It does not
// connect; Connect does.
func NewClient(name string, cfg Config) (*Client, error) {
	if name == "" {
		return nil, ErrEmptyPipeName
	}
	if _, err := cfg.cipher(); err != nil {
		return nil, err
	}
	return &Client{name: name, cfg: cfg}, nil
}

// Connect dials the endpoint, retrying while the server is not yet
// listening until ctx is done, and returns the established Connection.
// With EnforceSamePath configured, the same-executable check runs before
// the Connection is returned; on failure the channel is closed and no
// Connection is handed out.
func (cl *Client) Connect(ctx context.Context) (*Connection, error) {
	conn, err := pipe.Dial(ctx, cl.name)
	if err != nil {
		return nil, err
	}
	c, err := newConnection(conn, cl.name, cl.cfg)
	if err != nil {
		return nil, err
	}
	if cl.cfg.EnforceSamePath {
		if err := c.verifyPeer(cl.cfg.Resolver); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}
