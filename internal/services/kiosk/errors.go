package kiosk

import "errors"

// Logical sign-out failures. Format and signature problems share one error on
// purpose: distinguishing them publicly would tell an attacker how close a
// guessed token is to a valid structure. Expiry and phone mismatch are safe to
// report distinctly (a phone mismatch already requires a correctly signed
// token).
var (
	ErrInvalidLink      = errors.New("sign-out link is not valid")
	ErrLinkExpired      = errors.New("sign-out link has expired")
	ErrPhoneMismatch    = errors.New("phone number does not match")
	ErrAlreadySignedOut = errors.New("visitor already signed out")

	// ErrTokenNotPersisted means the sign-in could not be given a working
	// sign-out path; the whole transaction is rolled back.
	ErrTokenNotPersisted = errors.New("sign-out token could not be stored")
)
