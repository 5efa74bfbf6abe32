// Package auth implements the salted password key derivation used by the
// credential store: PBKDF2-HMAC-SHA1 with a fixed iteration count, a
// 128-bit derived key and a per-user random salt, both stored hex-encoded.
package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 65536
	keyLen     = 16
	saltLen    = 16
)

// Hash derives a key from password under a fresh random salt and returns
// both hex-encoded.
func Hash(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(derive(password, raw)), hex.EncodeToString(raw), nil
}

// Verify re-derives the key from password under the stored salt and
// compares it with the stored hash in constant time.
func Verify(password, hashHex, saltHex string) bool {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derive(password, salt), stored) == 1
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha1.New)
}
