// Package cryptox implements the credential scheme: passwords are never
// stored, only a per-user random salt and a verifier derived from the
// password via Argon2id.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a password with the given salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier reduces a derived key to the value persisted alongside the
// salt and compared on sign-in.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifyPassword reports whether password matches the stored (salt, verifier)
// pair. The comparison is constant-time.
func VerifyPassword(password []byte, salt []byte, verifier []byte) bool {
	candidate := MakeVerifier(DeriveKey(password, salt))
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
