package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/repository"
	"github.com/apimock/apimock-go/internal/token"
)

type gateFixture struct {
	codec    *token.Codec
	expired  *token.Codec
	sessions *repository.InMemorySessionRepository
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &gateFixture{
		codec:    token.NewCodec(key, &key.PublicKey, "apimock", time.Hour),
		expired:  token.NewCodec(key, &key.PublicKey, "apimock", -time.Minute),
		sessions: repository.NewInMemorySessionRepository(),
	}
}

// do runs one request through the gate and reports the response plus
// whether the downstream handler ran and what identity it saw.
func (f *gateFixture) do(t *testing.T, registry SessionRegistry, authHeader string) (*httptest.ResponseRecorder, bool, int64, string) {
	t.Helper()

	var handlerRan bool
	var gotUserID int64
	var gotSessionID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		gotUserID, _ = UserIDFromContext(r.Context())
		gotSessionID, _ = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	Authenticate(f.codec, registry)(next).ServeHTTP(rec, req)
	return rec, handlerRan, gotUserID, gotSessionID
}

func diagnosticMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env model.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Diagnostic.Message
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	f := newGateFixture(t)

	for _, header := range []string{"", "Token abc", "bearer abc", "Bearer "} {
		rec, ran, _, _ := f.do(t, f.sessions, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		require.False(t, ran)
		require.Equal(t, "missing or invalid authorization header", diagnosticMessage(t, rec))
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	f := newGateFixture(t)

	rec, ran, _, _ := f.do(t, f.sessions, "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "invalid token", diagnosticMessage(t, rec))
}

func TestAuthenticate_NoSubject(t *testing.T) {
	f := newGateFixture(t)

	general, err := f.codec.Sign(f.codec.GeneralClaims())
	require.NoError(t, err)

	rec, ran, _, _ := f.do(t, f.sessions, "Bearer "+general)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "no subject in token", diagnosticMessage(t, rec))
}

func TestAuthenticate_SessionGone(t *testing.T) {
	f := newGateFixture(t)

	signed, err := f.codec.Sign(f.codec.UserClaims(1, "never-created"))
	require.NoError(t, err)

	rec, ran, _, _ := f.do(t, f.sessions, "Bearer "+signed)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "session invalid or deleted", diagnosticMessage(t, rec))
}

func TestAuthenticate_Success(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	session := model.Session{UserID: 7, IPAddress: "127.0.0.1"}
	require.NoError(t, f.sessions.Create(ctx, &session))

	signed, err := f.codec.Sign(f.codec.UserClaims(7, session.ID))
	require.NoError(t, err)

	rec, ran, userID, sessionID := f.do(t, f.sessions, "Bearer "+signed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ran)
	require.Equal(t, int64(7), userID)
	require.Equal(t, session.ID, sessionID)
}

func TestAuthenticate_ExpiredTokenRevokesSession(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	session := model.Session{UserID: 7, IPAddress: "127.0.0.1"}
	require.NoError(t, f.sessions.Create(ctx, &session))

	stale, err := f.expired.Sign(f.expired.UserClaims(7, session.ID))
	require.NoError(t, err)

	// First presentation: rejected AND the referenced session is deleted.
	rec, ran, _, _ := f.do(t, f.sessions, "Bearer "+stale)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "token expired, session revoked", diagnosticMessage(t, rec))

	_, err = f.sessions.FindByID(ctx, session.ID, 7)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Second presentation: nothing left to delete, still the same rejection.
	rec, ran, _, _ = f.do(t, f.sessions, "Bearer "+stale)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "token expired, session revoked", diagnosticMessage(t, rec))
}

func TestAuthenticate_ExpiredGeneralTokenRejectedWithoutCleanup(t *testing.T) {
	f := newGateFixture(t)

	stale, err := f.expired.Sign(f.expired.GeneralClaims())
	require.NoError(t, err)

	rec, ran, _, _ := f.do(t, f.sessions, "Bearer "+stale)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
}

// faultyRegistry simulates an unreachable store.
type faultyRegistry struct{}

func (faultyRegistry) FindByID(context.Context, string, int64) (*model.Session, error) {
	return nil, errors.New("store unreachable")
}

func (faultyRegistry) Delete(context.Context, string) error {
	return errors.New("store unreachable")
}

func TestAuthenticate_StoreFaultIsInternalError(t *testing.T) {
	f := newGateFixture(t)

	signed, err := f.codec.Sign(f.codec.UserClaims(1, "s"))
	require.NoError(t, err)

	// "we could not check" is distinct from "you are not allowed".
	rec, ran, _, _ := f.do(t, faultyRegistry{}, "Bearer "+signed)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, ran)
}

func TestAuthenticate_ExpiredCleanupFaultStillUnauthorized(t *testing.T) {
	f := newGateFixture(t)

	stale, err := f.expired.Sign(f.expired.UserClaims(1, "s"))
	require.NoError(t, err)

	// Cleanup failure must not mask or replace the 401.
	rec, ran, _, _ := f.do(t, faultyRegistry{}, "Bearer "+stale)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ran)
	require.Equal(t, "token expired, session revoked", diagnosticMessage(t, rec))
}
