package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	outboxdomain "github.com/foyerhq/foyer/internal/domain/outbox"
	"github.com/foyerhq/foyer/internal/domain/visit"
	"github.com/foyerhq/foyer/internal/services/kiosk"
	"github.com/foyerhq/foyer/internal/signout"
)

type memStore struct {
	recs map[string]*visit.SignIn
	now  func() time.Time
}

func (m *memStore) Create(_ context.Context, s *visit.SignIn) error {
	s.SignedInAt = m.now()
	cp := *s
	m.recs[s.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*visit.SignIn, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, visit.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) SetSignOutToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	r, ok := m.recs[id]
	if !ok || r.SignedOutAt != nil {
		return visit.ErrNotFound
	}
	r.SignOutTokenHash = &tokenHash
	r.SignOutTokenExpiry = &expiresAt
	return nil
}

func (m *memStore) ConsumeSignOut(_ context.Context, id, expectedHash string) (bool, error) {
	r, ok := m.recs[id]
	if !ok || r.SignedOutAt != nil {
		return false, nil
	}
	if r.SignOutTokenHash == nil || *r.SignOutTokenHash != expectedHash {
		return false, nil
	}
	if r.SignOutTokenExpiry != nil && r.SignOutTokenExpiry.Before(m.now()) {
		return false, nil
	}
	t := m.now()
	r.SignedOutAt = &t
	r.SignOutTokenHash = nil
	r.SignOutTokenExpiry = nil
	return true, nil
}

type memOutbox struct{ n int }

func (m *memOutbox) Enqueue(context.Context, string, outboxdomain.Kind, []byte) error {
	m.n++
	return nil
}

func (m *memOutbox) PickBatch(context.Context, int, time.Duration) ([]outboxdomain.Message, error) {
	return nil, nil
}

func (m *memOutbox) MarkSuccess(context.Context, []string) error { return nil }

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type apiFixture struct {
	router *gin.Engine
	clock  *time.Time
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	tokens, err := signout.NewVerifier(signout.Config{
		Secret:        []byte("test-secret-please-rotate"),
		DefaultRegion: "NZ",
		Now:           now,
	})
	require.NoError(t, err)

	store := &memStore{recs: map[string]*visit.SignIn{}, now: now}
	uc := kiosk.NewUsecase(zap.NewNop(), store, &memOutbox{}, passTx{}, tokens, kiosk.Config{Now: now})

	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()))
	guard := NewOriginGuard(OriginConfig{PublicURL: "https://visits.example.com", Production: true})
	NewHandler(zap.NewNop(), uc).Register(router, guard)

	return &apiFixture{router: router, clock: &clock}
}

func (f *apiFixture) post(t *testing.T, path, origin string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const goodOrigin = "https://visits.example.com"

func TestAPI_SignInAndSignOut(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/v1/kiosk/sign-ins", goodOrigin, gin.H{
		"visitorName": "Ana Singh",
		"phone":       "+64211234567",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var in signInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &in))
	require.NotEmpty(t, in.SignInID)
	require.NotEmpty(t, in.SignOutToken)

	*f.clock = f.clock.Add(2 * time.Hour)

	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{
		"token": in.SignOutToken,
		"phone": "021 123 4567",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), in.SignInID)

	// Replay conflicts.
	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{
		"token": in.SignOutToken,
		"phone": "+64211234567",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_SignOutErrors(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/v1/kiosk/sign-ins", goodOrigin, gin.H{
		"visitorName": "Ana Singh",
		"phone":       "+64211234567",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var in signInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &in))

	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{"token": "garbage", "phone": "+64211234567"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{"token": in.SignOutToken, "phone": "+64219998877"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "phone number does not match")

	*f.clock = f.clock.Add(signout.DefaultTTL + time.Minute)
	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{"token": in.SignOutToken, "phone": "+64211234567"})
	require.Equal(t, http.StatusGone, w.Code)
}

func TestAPI_Validation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/v1/kiosk/sign-ins", goodOrigin, gin.H{"visitorName": "Ana Singh"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/v1/kiosk/sign-outs", goodOrigin, gin.H{"token": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_OriginRejected(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/v1/kiosk/sign-ins", "https://evil.example.com", gin.H{
		"visitorName": "Ana Singh",
		"phone":       "+64211234567",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.post(t, "/v1/kiosk/sign-outs", "", gin.H{"token": "abc", "phone": "x"})
	require.Equal(t, http.StatusForbidden, w.Code)
}
