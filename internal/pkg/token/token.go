package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ValueLen is the length of a token value in characters.
const ValueLen = 64

// NewValue generates a cryptographically random 64-character hex token value
// suitable for embedding in a confirmation link.
func NewValue() (string, error) {
	b := make([]byte, ValueLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token value: %w", err)
	}
	return hex.EncodeToString(b), nil
}
