package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewSessionToken returns an opaque 256-bit token. The token is the only
// thing the client ever holds; the session record lives server-side.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
