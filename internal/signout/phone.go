package signout

import (
	"encoding/hex"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const phoneHashLen = 16

// PhoneBinder maps a phone number, however the visitor typed it, to a stable
// 16-hex-char keyed hash. National and international renderings of the same
// number canonicalize to the same E.164 form and therefore hash identically;
// sign-out usability depends on that.
//
// The region is a single configured default. Serving tenants across regions
// would need a per-request region; that is a known scope limitation.
type PhoneBinder struct {
	secret []byte
	region string
}

func NewPhoneBinder(secret []byte, defaultRegion string) *PhoneBinder {
	return &PhoneBinder{secret: secret, region: defaultRegion}
}

// HashPhone returns hex(HMAC-SHA256(secret, canonical))[:16]. 64 bits is
// enough for binding a token to a number; it is not a standalone secret.
func (b *PhoneBinder) HashPhone(raw string) string {
	sum := hmacSHA256(b.secret, []byte(b.canonical(raw)))
	return hex.EncodeToString(sum)[:phoneHashLen]
}

func (b *PhoneBinder) canonical(raw string) string {
	num, err := phonenumbers.Parse(raw, b.region)
	if err == nil && phonenumbers.IsPossibleNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	return digitsOnly(raw)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
