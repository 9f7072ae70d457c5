package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashFingerprint returns a stable hex digest of a client fingerprint so the
// raw value never reaches storage.
func HashFingerprint(fp string) string {
	sum := sha256.Sum256([]byte(fp))
	return hex.EncodeToString(sum[:])
}

// FingerprintTag is the form of a fingerprint that may appear in logs: a
// short prefix of its hash, or "" when fp is empty.
func FingerprintTag(fp string) string {
	if fp == "" {
		return ""
	}
	return HashFingerprint(fp)[:12]
}
