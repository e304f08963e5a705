package signout

import (
	"crypto/subtle"
	"errors"
	"time"
)

// DefaultTTL is how long a freshly issued sign-out token stays usable.
const DefaultTTL = 8 * time.Hour

// Tag is the closed set of verification failure reasons. Results never carry
// the decoded payload or any part of the secret; the public endpoint this
// feeds is unauthenticated and must not become an oracle.
type Tag string

const (
	TagInvalidFormat    Tag = "INVALID_FORMAT"
	TagInvalidSignature Tag = "INVALID_SIGNATURE"
	TagExpired          Tag = "EXPIRED"
	TagPhoneMismatch    Tag = "PHONE_MISMATCH"
)

type Result struct {
	Valid          bool
	SignInRecordID string
	Error          Tag
}

type Config struct {
	Secret        []byte
	DefaultRegion string
	Now           func() time.Time
}

// Verifier is the single authority for "is this sign-out attempt valid". It
// composes the codec and the phone binder; persistence (single-use
// enforcement) stays with the caller.
type Verifier struct {
	codec  *Codec
	phones *PhoneBinder
	secret []byte
	now    func() time.Time
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signout: secret is required")
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Verifier{
		codec:  NewCodec(cfg.Secret),
		phones: NewPhoneBinder(cfg.Secret, cfg.DefaultRegion),
		secret: cfg.Secret,
		now:    now,
	}, nil
}

// Issue mints a token bound to the record and the visitor's phone. The ttl is
// taken verbatim; a negative ttl produces an already-expired token, which
// Verify must reject like any other expired one (a deliberate test seam).
func (v *Verifier) Issue(signInRecordID, phone string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := v.now().Add(ttl)
	token, err := v.codec.Encode(Payload{
		SignInRecordID: signInRecordID,
		PhoneHash:      v.phones.HashPhone(phone),
		ExpiresAt:      expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks signature, then expiry, then phone binding, in that order.
// The order is contractual: a forged payload never reaches the expiry check,
// and an expired token reports EXPIRED without revealing whether the phone
// would have matched.
func (v *Verifier) Verify(token, suppliedPhone string) Result {
	p, err := v.codec.Decode(token)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return Result{Error: TagInvalidSignature}
		}
		return Result{Error: TagInvalidFormat}
	}
	if v.now().UnixMilli() > p.ExpiresAt {
		return Result{Error: TagExpired}
	}
	supplied := v.phones.HashPhone(suppliedPhone)
	if len(supplied) != len(p.PhoneHash) ||
		subtle.ConstantTimeCompare([]byte(supplied), []byte(p.PhoneHash)) != 1 {
		return Result{Error: TagPhoneMismatch}
	}
	return Result{Valid: true, SignInRecordID: p.SignInRecordID}
}

// Digest returns the revocation hash for a full token string.
func (v *Verifier) Digest(token string) string {
	return TokenDigest(v.secret, token)
}
