package pipelink

import (
	"github.com/duplexio/pipelink/pipelink/auth"
	"github.com/duplexio/pipelink/pipelink/crypto"
)

// Config carries the immutable per-endpoint settings shared by Server and
// Client. The zero value is a plaintext, unverified channel. For two
// parties to communicate, Encrypted/Key and Compress must match on both
// sides; the library performs no negotiation.
type Config struct {
	// Encrypted seals every outgoing frame and opens every incoming one.
	// With a nil Key the built-in crypto.DefaultKey is used.
	Encrypted bool
	// Key is an explicit 32-byte symmetric key. Setting it implies
	// Encrypted. Key agreement is out-of-band; see crypto.DeriveKey.
	Key []byte
	// Compress LZ4-compresses payloads before sealing.
	Compress bool
	// EnforceSamePath rejects peers not launched from this process's
	// executable image, before any application data is exchanged.
	EnforceSamePath bool
	// MaxFramePayload bounds frame payloads in both directions; zero
	// selects protocol.DefaultMaxFramePayload.
	MaxFramePayload int
	// Resolver overrides executable-path resolution for the same-path
	// check; nil selects the OS resolver.
	Resolver auth.Resolver
}

// cipher builds the Cipher this configuration calls for, or nil for a
// plaintext channel. A malformed Key is rejected here, which lets the
// Server and Client constructors fail fast.
func (cfg Config) cipher() (*crypto.Cipher, error) {
	switch {
	case cfg.Key != nil:
		return crypto.NewCipher(cfg.Key)
	case cfg.Encrypted:
		return crypto.NewCipher(crypto.DefaultKey[:])
	default:
		return nil, nil
	}
}
