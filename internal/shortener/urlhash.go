package shortener

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashURL returns the hex-encoded SHA-256 of rawURL. The URL is hashed
// verbatim so a deduplicated mapping always resolves to the exact string
// that was submitted.
func HashURL(rawURL string) URLHash {
	h := sha256.Sum256([]byte(rawURL))
	return URLHash(hex.EncodeToString(h[:]))
}
