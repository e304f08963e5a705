package signout

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-please-rotate")

func signPart(t *testing.T, secret []byte, partA string) string {
	t.Helper()
	return partA + "." + base64.RawURLEncoding.EncodeToString(hmacSHA256(secret, []byte(partA)))
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(testSecret)
	in := Payload{SignInRecordID: "rec-1", PhoneHash: "0123456789abcdef", ExpiresAt: 1700000000000}

	token, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(token)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestCodec_Format(t *testing.T) {
	c := NewCodec(testSecret)
	for _, token := range []string{
		"",
		"nodothere",
		"a.b.c",
		".sigonly",
		"payloadonly.",
		".",
	} {
		_, err := c.Decode(token)
		require.ErrorIs(t, err, ErrInvalidFormat, "token %q", token)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	c := NewCodec(testSecret)
	token, err := c.Encode(Payload{SignInRecordID: "rec-1", PhoneHash: "00ff00ff00ff00ff", ExpiresAt: 1})
	require.NoError(t, err)

	other := NewCodec([]byte("another-secret"))
	_, err = other.Decode(token)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_UndecodableSignature(t *testing.T) {
	c := NewCodec(testSecret)
	token, err := c.Encode(Payload{SignInRecordID: "rec-1", PhoneHash: "00ff00ff00ff00ff", ExpiresAt: 1})
	require.NoError(t, err)

	partA, _, _ := splitToken(token)
	_, err = c.Decode(partA + "." + "%%%not-base64%%%")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

// A structurally valid, correctly signed part A must still be rejected when
// the payload shape is off: missing fields, unknown fields, wrong types.
func TestCodec_StrictPayload(t *testing.T) {
	c := NewCodec(testSecret)
	for name, body := range map[string]string{
		"missing field":  `{"signInRecordId":"rec-1","phoneHash":"00ff00ff00ff00ff"}`,
		"unknown field":  `{"signInRecordId":"rec-1","phoneHash":"00ff00ff00ff00ff","expiresAt":1,"admin":true}`,
		"mistyped field": `{"signInRecordId":"rec-1","phoneHash":"00ff00ff00ff00ff","expiresAt":"soon"}`,
		"not an object":  `["rec-1"]`,
		"trailing data":  `{"signInRecordId":"rec-1","phoneHash":"00ff00ff00ff00ff","expiresAt":1}{}`,
		"not json":       `hello`,
	} {
		partA := base64.RawURLEncoding.EncodeToString([]byte(body))
		_, err := c.Decode(signPart(t, testSecret, partA))
		require.ErrorIs(t, err, ErrInvalidFormat, name)
	}
}

func TestTokenDigest(t *testing.T) {
	d := TokenDigest(testSecret, "a.b")
	require.Len(t, d, 64)
	require.Regexp(t, "^[0-9a-f]{64}$", d)

	require.NotEqual(t, d, TokenDigest(testSecret, "a.c"))
	require.NotEqual(t, d, TokenDigest([]byte("other"), "a.b"))

	require.True(t, DigestEqual(d, TokenDigest(testSecret, "a.b")))
	require.False(t, DigestEqual(d, ""))
	require.False(t, DigestEqual("", ""))
}
