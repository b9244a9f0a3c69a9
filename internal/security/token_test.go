package security_test

import (
	"strings"
	"testing"

	"github.com/tazhibayda/portal-service/internal/security"
)

func TestNewSessionToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := security.NewSessionToken()
		if err != nil {
			t.Fatal(err)
		}
		if len(tok) != 43 { // 32 bytes, base64url without padding
			t.Fatalf("token length %d: %q", len(tok), tok)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token not cookie-safe: %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token: %q", tok)
		}
		seen[tok] = true
	}
}
