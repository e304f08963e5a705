package signout

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidFormat    = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Payload is the signed content of a sign-out token. The struct field order
// fixes the JSON layout, so encoding the same payload always yields the same
// bytes.
type Payload struct {
	SignInRecordID string `json:"signInRecordId"`
	PhoneHash      string `json:"phoneHash"`
	ExpiresAt      int64  `json:"expiresAt"` // unix milliseconds
}

// Codec encodes and decodes sign-out tokens. A token is
// base64url(payload JSON) + "." + base64url(HMAC-SHA256(secret, part A)).
// The codec knows nothing about expiry or phone binding.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec { return &Codec{secret: secret} }

func (c *Codec) Encode(p Payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	partA := base64.RawURLEncoding.EncodeToString(body)
	sig := hmacSHA256(c.secret, []byte(partA))
	return partA + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Decode verifies the signature before it parses anything: a forged payload
// must never reach the JSON layer. Signature comparison is constant-time.
func (c *Codec) Decode(token string) (Payload, error) {
	partA, partB, ok := splitToken(token)
	if !ok {
		return Payload{}, ErrInvalidFormat
	}

	sig, err := base64.RawURLEncoding.DecodeString(partB)
	if err != nil {
		return Payload{}, ErrInvalidSignature
	}
	expected := hmacSHA256(c.secret, []byte(partA))
	if len(sig) != len(expected) || !hmac.Equal(sig, expected) {
		return Payload{}, ErrInvalidSignature
	}

	body, err := base64.RawURLEncoding.DecodeString(partA)
	if err != nil {
		return Payload{}, ErrInvalidFormat
	}
	return parsePayload(body)
}

func splitToken(token string) (partA, partB string, ok bool) {
	if strings.Count(token, ".") != 1 {
		return "", "", false
	}
	partA, partB, _ = strings.Cut(token, ".")
	if partA == "" || partB == "" {
		return "", "", false
	}
	return partA, partB, true
}

// parsePayload rejects missing, mistyped and unknown fields: the payload is a
// closed shape, not a bag of optional claims.
func parsePayload(body []byte) (Payload, error) {
	var raw struct {
		SignInRecordID *string `json:"signInRecordId"`
		PhoneHash      *string `json:"phoneHash"`
		ExpiresAt      *int64  `json:"expiresAt"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Payload{}, ErrInvalidFormat
	}
	if dec.More() {
		return Payload{}, ErrInvalidFormat
	}
	if raw.SignInRecordID == nil || raw.PhoneHash == nil || raw.ExpiresAt == nil {
		return Payload{}, ErrInvalidFormat
	}
	return Payload{
		SignInRecordID: *raw.SignInRecordID,
		PhoneHash:      *raw.PhoneHash,
		ExpiresAt:      *raw.ExpiresAt,
	}, nil
}

func hmacSHA256(secret, message []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return mac.Sum(nil)
}
