package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apimock/apimock-go/internal/middleware"
	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/service"
)

const (
	defaultPage    = 1
	defaultPerPage = 20
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleRegister handles POST /user/register requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeSuccess(w, "user registered", resp)
}

// HandleCurrentUser handles GET /auth/currentUser requests.
func (h *UserHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeSuccess(w, "success", resp)
}

// HandleUpdateUser handles PUT /auth/updateUser requests.
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeSuccess(w, "success", resp)
}

// HandleDeleteUser handles DELETE /auth/deleteUser requests. Deleting an
// account cascades to all of its sessions.
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeSuccess(w, "success", nil)
}

// HandleAllUserList handles GET /user/allUserList requests with
// page/perPage query parameters.
func (h *UserHandler) HandleAllUserList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	perPage := queryInt(r, "perPage", defaultPerPage)

	users, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPagination) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// data must be an array even for an empty page past the end.
	if users == nil {
		users = []model.UserResponse{}
	}
	writePage(w, "success", users, pagination)
}

// queryInt parses an integer query parameter, falling back to the default
// when the parameter is absent or not a number. Out-of-range values are
// passed through so validation can reject them.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
