package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/repository"
	"github.com/apimock/apimock-go/internal/token"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	sessionIDKey contextKey = "sessionID"
)

// SessionRegistry is the slice of the session store the gate needs: a
// liveness lookup scoped to the token's owner, and the unscoped delete
// used for expired-token cleanup.
type SessionRegistry interface {
	FindByID(ctx context.Context, sessionID string, userID int64) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Authenticate returns middleware gating a route behind a valid bearer
// token AND a live session. Token signature validity is necessary but not
// sufficient: the session row the token references must still exist. On
// success the resolved user id and session id are attached to the request
// context.
func Authenticate(codec *token.Codec, sessions SessionRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || raw == "" {
				writeDiagnostic(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					revokeExpired(r.Context(), codec, sessions, raw)
					writeDiagnostic(w, http.StatusUnauthorized, "token expired, session revoked")
					return
				}
				writeDiagnostic(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if claims.UserID == 0 {
				writeDiagnostic(w, http.StatusUnauthorized, "no subject in token")
				return
			}

			if _, err := sessions.FindByID(r.Context(), claims.SessionID, claims.UserID); err != nil {
				if errors.Is(err, repository.ErrSessionNotFound) {
					writeDiagnostic(w, http.StatusUnauthorized, "session invalid or deleted")
					return
				}
				slog.Error("session lookup failed", "error", err)
				writeDiagnostic(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// revokeExpired is the side-effecting cleanup path for a token whose
// expiry has passed: the payload is decoded without re-verification to
// recover the session id, and that session is deleted since the token can
// never be revalidated. Failures here never change the 401 the caller is
// about to receive.
func revokeExpired(ctx context.Context, codec *token.Codec, sessions SessionRegistry, raw string) {
	claims, err := codec.DecodeUnverified(raw)
	if err != nil || claims.SessionID == "" {
		return
	}
	if err := sessions.Delete(ctx, claims.SessionID); err != nil {
		slog.Error("expired session cleanup failed", "session_id", claims.SessionID, "error", err)
		return
	}
	slog.Info("session deleted after token expiry", "session_id", claims.SessionID)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// SessionIDFromContext extracts the authenticated session ID from the request context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

func writeDiagnostic(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.Envelope{Diagnostic: model.NewDiagnostic(code, msg)})
}
