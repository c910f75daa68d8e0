// ABOUTME: Gateway token generation for token-mode auth
// ABOUTME: 256 bits from crypto/rand, hex encoded

package wizard

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a fresh cryptographically random gateway token.
func GenerateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; there is
		// no sane recovery for a credential generator.
		panic("reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
