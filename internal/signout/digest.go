package signout

import (
	"crypto/subtle"
	"encoding/hex"
)

// TokenDigest is the revocation hash of a full token string: HMAC-SHA256
// keyed with the process secret, hex encoded (64 chars). The store persists
// this digest instead of the token, so a database read alone can never
// reconstruct a usable sign-out link.
func TokenDigest(secret []byte, token string) string {
	return hex.EncodeToString(hmacSHA256(secret, []byte(token)))
}

// DigestEqual compares two hex digests in constant time.
func DigestEqual(a, b string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
