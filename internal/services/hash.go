package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText returns the hex-encoded SHA-256 digest of text. Stored credentials
// compare by digest equality.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashAnswer normalizes a security answer before hashing. Answers are
// lower-cased on both registration and verification, so "Pizza" and "pizza"
// produce the same digest.
func HashAnswer(answer string) string {
	return HashText(strings.ToLower(strings.TrimSpace(answer)))
}
