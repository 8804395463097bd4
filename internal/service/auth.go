package service

import (
	"context"
	"errors"

	"github.com/apimock/apimock-go/internal/crypto"
	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/token"
)

var (
	ErrCredentialsRequired    = errors.New("email and password are required")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrPasswordFieldsRequired = errors.New("all password fields are required")
	ErrPasswordMismatch       = errors.New("new password and confirmation do not match")
	ErrOldPasswordIncorrect   = errors.New("old password is incorrect")
	ErrNoSessions             = errors.New("no sessions found")
	ErrSessionNotFound        = errors.New("session not found")
)

// TokenTypeBearer is the token type reported alongside every issued token.
const TokenTypeBearer = "Bearer"

// AuthService handles login, token issuance and session lifecycle.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	codec    *token.Codec
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, codec *token.Codec) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// GeneralToken issues a token with no subject. It passes signature and
// expiry checks but cannot authenticate a user.
func (s *AuthService) GeneralToken() (model.TokenResponse, error) {
	signed, err := s.codec.Sign(s.codec.GeneralClaims())
	if err != nil {
		return model.TokenResponse{}, err
	}
	return model.TokenResponse{Token: signed, TokenType: TokenTypeBearer}, nil
}

// Login authenticates the credentials, records one new session for this
// login and issues a token bound to (userID, sessionID). Every login
// creates an independent session, even for the same user and device.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, ipAddress string) (model.TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return model.TokenResponse{}, ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if !match {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	session := model.Session{
		UserID:     user.ID,
		IPAddress:  ipAddress,
		DeviceInfo: optional(req.DeviceInfo),
		OSInfo:     optional(req.OSInfo),
		FCMToken:   optional(req.FCMToken),
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return model.TokenResponse{}, err
	}

	signed, err := s.codec.Sign(s.codec.UserClaims(user.ID, session.ID))
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{Token: signed, TokenType: TokenTypeBearer}, nil
}

// ChangePassword verifies the old password, stores a new hash and deletes
// every session of the user, forcing re-authentication everywhere. The
// delete-all is not atomic with the password write: a login racing this
// call may leave a surviving session, which is accepted.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return ErrPasswordFieldsRequired
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrOldPasswordIncorrect
		}
		return err
	}

	match, err := crypto.VerifyPassword(req.OldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrOldPasswordIncorrect
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.sessions.DeleteAllForUser(ctx, userID)
}

// Sessions lists the caller's active sessions. An empty result is
// reported as ErrNoSessions rather than an empty list.
func (s *AuthService) Sessions(ctx context.Context, userID int64) ([]model.SessionResponse, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	out := make([]model.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, model.NewSessionResponse(&sessions[i]))
	}
	return out, nil
}

// Logout deletes exactly the session referenced by the caller's token.
// Returns ErrSessionNotFound when that session is already gone.
func (s *AuthService) Logout(ctx context.Context, userID int64, sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}
	deleted, err := s.sessions.DeleteOwned(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
