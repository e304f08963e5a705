package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/foyerhq/foyer/internal/domain/visit"
)

var _ visit.Repo = (*VisitRepo)(nil)

type VisitRepo struct{ db *DB }

func NewVisitRepo(db *DB) *VisitRepo { return &VisitRepo{db: db} }

const (
	qVisitCreate = `
INSERT INTO sign_ins (id, visitor_name, phone, signed_in_at)
VALUES ($1, $2, $3, NOW())
RETURNING signed_in_at;
`

	qVisitGet = `
SELECT id, visitor_name, phone, signed_in_at, signed_out_at, signout_token_hash, signout_token_expires_at
FROM sign_ins
WHERE id = $1;
`

	qVisitSetToken = `
UPDATE sign_ins
SET signout_token_hash = $2, signout_token_expires_at = $3
WHERE id = $1 AND signed_out_at IS NULL;
`

	// The whole single-use contract lives in this one statement: finalize the
	// visit only while it is still open, the stored digest matches and the
	// stored expiry has not passed. Splitting it into a read plus a write
	// would reintroduce the check-then-act race it exists to close.
	qVisitConsume = `
UPDATE sign_ins
SET signed_out_at = NOW(), signout_token_hash = NULL, signout_token_expires_at = NULL
WHERE id = $1
  AND signed_out_at IS NULL
  AND signout_token_hash = $2
  AND (signout_token_expires_at IS NULL OR signout_token_expires_at >= NOW());
`
)

func (r *VisitRepo) Create(ctx context.Context, s *visit.SignIn) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := eq.QueryRow(ctx, qVisitCreate, s.ID, s.VisitorName, s.Phone).Scan(&s.SignedInAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create sign-in: %w", err)
	}
	return nil
}

func (r *VisitRepo) GetByID(ctx context.Context, id string) (*visit.SignIn, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s visit.SignIn
	err := r.db.Pool.QueryRow(ctx, qVisitGet, id).Scan(
		&s.ID,
		&s.VisitorName,
		&s.Phone,
		&s.SignedInAt,
		&s.SignedOutAt,
		&s.SignOutTokenHash,
		&s.SignOutTokenExpiry,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, visit.ErrNotFound
		}
		return nil, fmt.Errorf("get sign-in: %w", err)
	}
	return &s, nil
}

func (r *VisitRepo) SetSignOutToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	tag, err := eq.Exec(ctx, qVisitSetToken, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set sign-out token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return visit.ErrNotFound
	}
	return nil
}

func (r *VisitRepo) ConsumeSignOut(ctx context.Context, id, expectedHash string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	tag, err := eq.Exec(ctx, qVisitConsume, id, expectedHash)
	if err != nil {
		return false, fmt.Errorf("consume sign-out: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
