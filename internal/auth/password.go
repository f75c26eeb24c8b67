package auth

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Digest returns the stored verifier for a password: lowercase hex of
// SHA3-256 over the raw bytes. There is no per-user salt, so identical
// passwords produce identical digests; every verifier in the users table
// depends on this mapping staying stable.
func Digest(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password produces the given digest.
func Verify(password, digest string) bool {
	computed := Digest(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
