package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	outboxdomain "github.com/foyerhq/foyer/internal/domain/outbox"
	"github.com/foyerhq/foyer/internal/domain/visit"
	ob "github.com/foyerhq/foyer/internal/outbox"
	"github.com/foyerhq/foyer/internal/signout"
)

var (
	ErrNameRequired  = errors.New("visitor name is required")
	ErrPhoneRequired = errors.New("phone number is required")
)

var (
	mSignIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_sign_ins_total", Help: "Completed kiosk sign-ins.",
	})
	mSignOuts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_sign_outs_total", Help: "Sign-out attempts by outcome.",
	}, []string{"outcome"})
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	TokenTTL time.Duration
	Now      func() time.Time
}

// Usecase drives the kiosk flows. Verification itself is pure; the only
// mutation on the sign-out path is the repo's atomic consume.
type Usecase struct {
	log    *zap.Logger
	visits visit.Repo
	box    outboxdomain.Repository
	tx     Transactor
	tokens *signout.Verifier
	ttl    time.Duration
	now    func() time.Time
}

func NewUsecase(log *zap.Logger, visits visit.Repo, box outboxdomain.Repository, tx Transactor, tokens *signout.Verifier, cfg Config) *Usecase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = signout.DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{
		log:    log,
		visits: visits,
		box:    box,
		tx:     tx,
		tokens: tokens,
		ttl:    cfg.TokenTTL,
		now:    cfg.Now,
	}
}

type SignInResult struct {
	SignInID     string
	SignOutToken string
	TokenExpires time.Time
}

// SignIn creates the record, mints its sign-out token and stores the token's
// revocation digest, all in one transaction: a record either gets a complete
// sign-out path or does not exist. The signed-in event rides the same
// transaction through the outbox.
func (u *Usecase) SignIn(ctx context.Context, name, phone string) (*SignInResult, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, ErrNameRequired
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	rec := &visit.SignIn{ID: uuid.NewString(), VisitorName: name, Phone: phone}
	var out SignInResult

	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.visits.Create(ctx, rec); err != nil {
			return fmt.Errorf("create sign-in: %w", err)
		}

		token, exp, err := u.tokens.Issue(rec.ID, phone, u.ttl)
		if err != nil {
			return fmt.Errorf("issue sign-out token: %w", err)
		}
		if err := u.visits.SetSignOutToken(ctx, rec.ID, u.tokens.Digest(token), exp); err != nil {
			return fmt.Errorf("%w: %v", ErrTokenNotPersisted, err)
		}

		data, err := json.Marshal(ob.SignedInPayload{SignInID: rec.ID, At: u.now()})
		if err != nil {
			return fmt.Errorf("marshal signed-in payload: %w", err)
		}
		if err := u.box.Enqueue(ctx, uuid.NewString(), outboxdomain.KindVisitorSignedIn, data); err != nil {
			return fmt.Errorf("enqueue signed-in event: %w", err)
		}

		out = SignInResult{SignInID: rec.ID, SignOutToken: token, TokenExpires: exp}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mSignIns.Inc()
	u.log.Info("visitor signed in", zap.String("sign_in_id", rec.ID))
	return &out, nil
}

// SignOut verifies the token, then finalizes the visit with a single atomic
// consume. A false consume is diagnosed by re-reading the record; the re-read
// never re-attempts the mutation.
func (u *Usecase) SignOut(ctx context.Context, token, phone string) (string, error) {
	res := u.tokens.Verify(token, phone)
	if !res.Valid {
		mSignOuts.WithLabelValues(strings.ToLower(string(res.Error))).Inc()
		switch res.Error {
		case signout.TagExpired:
			return "", ErrLinkExpired
		case signout.TagPhoneMismatch:
			return "", ErrPhoneMismatch
		default:
			return "", ErrInvalidLink
		}
	}

	digest := u.tokens.Digest(token)
	var consumed bool
	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := u.visits.ConsumeSignOut(ctx, res.SignInRecordID, digest)
		if err != nil {
			return fmt.Errorf("consume sign-out: %w", err)
		}
		consumed = ok
		if !ok {
			return nil
		}

		data, err := json.Marshal(ob.SignedOutPayload{SignInID: res.SignInRecordID, At: u.now()})
		if err != nil {
			return fmt.Errorf("marshal signed-out payload: %w", err)
		}
		return u.box.Enqueue(ctx, uuid.NewString(), outboxdomain.KindVisitorSignedOut, data)
	})
	if err != nil {
		mSignOuts.WithLabelValues("error").Inc()
		return "", err
	}

	if !consumed {
		reason := u.diagnoseConsumeFailure(ctx, res.SignInRecordID, digest)
		mSignOuts.WithLabelValues("rejected").Inc()
		return "", reason
	}

	mSignOuts.WithLabelValues("ok").Inc()
	u.log.Info("visitor signed out", zap.String("sign_in_id", res.SignInRecordID))
	return res.SignInRecordID, nil
}

// diagnoseConsumeFailure turns a false consume into a user-facing reason.
// Diagnostic only: the record is re-read, never written. Unknown states fall
// back to the generic invalid-link answer.
func (u *Usecase) diagnoseConsumeFailure(ctx context.Context, id, digest string) error {
	rec, err := u.visits.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, visit.ErrNotFound) {
			u.log.Error("diagnose sign-out failure", zap.String("sign_in_id", id), zap.Error(err))
		}
		return ErrInvalidLink
	}
	switch {
	case rec.SignedOutAt != nil:
		return ErrAlreadySignedOut
	case rec.SignOutTokenHash == nil || !signout.DigestEqual(*rec.SignOutTokenHash, digest):
		return ErrInvalidLink
	case rec.SignOutTokenExpiry != nil && rec.SignOutTokenExpiry.Before(u.now()):
		return ErrLinkExpired
	default:
		return ErrInvalidLink
	}
}
