package visit

import "time"

// SignIn is one visitor sign-in at a site kiosk. The sign-out token itself is
// never stored; only its keyed digest and a mirrored expiry live on the
// record, and both are cleared the moment sign-out succeeds.
type SignIn struct {
	ID                 string
	VisitorName        string
	Phone              string
	SignedInAt         time.Time
	SignedOutAt        *time.Time
	SignOutTokenHash   *string
	SignOutTokenExpiry *time.Time
}

// Open reports whether the visit has not been finalized yet.
func (s *SignIn) Open() bool { return s.SignedOutAt == nil }
