package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the required symmetric key length.
	KeySize = chacha20poly1305.KeySize // 32
	// NonceSize is the per-message nonce length.
	NonceSize = chacha20poly1305.NonceSize // 12
)

var (
	ErrBadKeySize         = errors.New("crypto: key must be exactly 32 bytes")
	ErrCiphertextTooShort = errors.New("crypto: sealed message too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
)

// DefaultKey is the built-in key used when encryption is requested without
// an explicit key. It is a compiled-in convenience, not a secret: any copy
// of this library can decrypt traffic protected with it. Supply your own
// key (or DeriveKey one from a shared secret) for anything sensitive.
var DefaultKey = [KeySize]byte{
	0x6b, 0x23, 0xf1, 0x8a, 0x4d, 0x09, 0xc7, 0x5e,
	0xb2, 0x71, 0x3c, 0xd8, 0x95, 0x0a, 0xe4, 0x46,
	0x1f, 0x88, 0x52, 0xcb, 0x07, 0x9d, 0x64, 0xa3,
	0x3e, 0xf0, 0x29, 0xb7, 0x5c, 0x81, 0xda, 0x15,
}

// Cipher wraps ChaCha20-Poly1305 under one symmetric key. Every Seal call
// draws a fresh random nonce, so a (key, nonce) pair is never reused by
// construction; nonce collision probability is negligible over realistic
// message volumes. The Cipher keeps no per-message sequence state, so
// replay of a previously valid sealed message is not independently
// detected.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts and authenticates plaintext.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts and verifies a sealed message produced by Seal.
// Input format: nonce (12 bytes) || ciphertext || tag (16 bytes)
// It fails closed: truncated input or any tag mismatch yields an error and
// no partial plaintext.
func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize+c.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce := sealed[:NonceSize]
	ct := sealed[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Overhead returns the bytes Seal adds on top of the plaintext length.
func (c *Cipher) Overhead() int { return NonceSize + c.aead.Overhead() }
