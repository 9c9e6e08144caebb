// Package crypto provides the message-protection primitives for pipelink.
//
// Design:
//   - AEAD encryption via ChaCha20-Poly1305 (RFC 8439), 32-byte keys
//   - Fresh random 96-bit nonce per message, carried as a prefix
//   - Key derivation from out-of-band secrets via HKDF-SHA256
//
// There is no key exchange on the wire: both ends of a channel must be
// configured with byte-identical keys, distributed out-of-band.
package crypto
