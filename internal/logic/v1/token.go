package v1

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// 32 bytes = 256 bits of entropy.
	sessionIDBytes = 32
	csrfTokenBytes = 32
)

// randomToken returns size random bytes encoded as unpadded base64url.
func randomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
