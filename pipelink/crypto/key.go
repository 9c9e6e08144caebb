package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a 32-byte symmetric key from an out-of-band shared
// secret using HKDF-SHA256. salt can be nil (uses zero salt); info binds
// the key to a context, so distinct subsystems sharing one secret get
// distinct keys. This is key derivation, not key exchange: both sides must
// already hold the same secret.
func DeriveKey(secret, salt []byte, info string) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}
