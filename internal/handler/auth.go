package handler

import (
	"errors"
	"net"
	"net/http"

	"github.com/apimock/apimock-go/internal/middleware"
	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication and sessions.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleGeneral handles POST /auth/general requests: a subject-less token
// for generic API access.
func (h *AuthHandler) HandleGeneral(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GeneralToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeSuccess(w, "success", resp)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialsRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeSuccess(w, "success", resp)
}

// HandleChangePassword handles POST /auth/change-password requests.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordFieldsRequired), errors.Is(err, service.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOldPasswordIncorrect):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeSuccess(w, "password changed, please log in again", nil)
}

// HandleSessions handles GET /auth/session requests.
func (h *AuthHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.service.Sessions(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoSessions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeSuccess(w, "success", sessions)
}

// HandleLogout handles POST /auth/logout requests: deletes exactly the
// session the presented token references.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID, _ := middleware.SessionIDFromContext(r.Context())

	if err := h.service.Logout(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeSuccess(w, "session terminated", nil)
}

// clientIP extracts the remote IP, tolerating addresses without a port
// (RealIP middleware rewrites RemoteAddr to the bare client address).
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
