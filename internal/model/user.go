package model

import "time"

// User represents a user account in the database. PasswordHash is never
// serialized into API responses.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Photo        *string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Photo    *string `json:"photo,omitempty"`
}

// LoginRequest represents a user login request. The device fields are
// optional metadata recorded on the session created by the login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"deviceInfo,omitempty"`
	OSInfo     string `json:"osInfo,omitempty"`
	FCMToken   string `json:"fcmToken,omitempty"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdateUserRequest represents a partial profile update. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Photo    *string `json:"photo,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Photo     *string   `json:"photo,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse builds the API projection of a user record.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     u.Photo,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// Pagination describes the page slice returned by list endpoints.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	LastPage    int   `json:"lastPage"`
	Total       int64 `json:"total"`
}
