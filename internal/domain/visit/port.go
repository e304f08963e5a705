package visit

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("sign-in not found")

type Repo interface {
	Create(ctx context.Context, s *SignIn) error
	GetByID(ctx context.Context, id string) (*SignIn, error)

	// SetSignOutToken persists the revocation digest and mirrored expiry for a
	// freshly created record. Callers run it in the same transaction as Create
	// so a record can never exist with a half-written sign-out path.
	SetSignOutToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ConsumeSignOut finalizes the visit if and only if it is still open, the
	// stored digest equals expectedHash and the stored expiry has not passed.
	// It must be a single conditional UPDATE: a read-then-write pair would
	// reopen the race between two concurrent sign-out attempts. Returns false,
	// with nothing changed, when any predicate fails.
	ConsumeSignOut(ctx context.Context, id, expectedHash string) (bool, error)
}
