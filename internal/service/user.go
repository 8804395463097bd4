package service

import (
	"context"
	"errors"

	"github.com/apimock/apimock-go/internal/crypto"
	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/repository"
)

var (
	ErrRegistrationFields = errors.New("name, email and password are required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoFieldsToUpdate   = errors.New("at least one of name, photo or verified is required")
	ErrInvalidPagination  = errors.New("invalid pagination parameters")
)

// UserService handles account registration and profile management.
type UserService struct {
	users    UserStore
	sessions SessionStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, sessions SessionStore) *UserService {
	return &UserService{users: users, sessions: sessions}
}

// Register creates a new account with a hashed password. The verified
// flag starts false.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return model.UserResponse{}, ErrRegistrationFields
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Photo:        req.Photo,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(&user), nil
}

// Get retrieves the account of the authenticated caller.
func (s *UserService) Get(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}
	return model.NewUserResponse(user), nil
}

// Update applies a partial profile update. At least one field must be
// given; updatedAt is refreshed by the store.
func (s *UserService) Update(ctx context.Context, userID int64, req model.UpdateUserRequest) (model.UserResponse, error) {
	if req.Name == nil && req.Photo == nil && req.Verified == nil {
		return model.UserResponse{}, ErrNoFieldsToUpdate
	}

	// Existence check first so an absent user surfaces as 404 rather
	// than a silent no-op update.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, req.Name, req.Photo, req.Verified)
	if err != nil {
		if isNotFound(err) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}
	return model.NewUserResponse(user), nil
}

// Delete removes the account and cascades to every session the user owns.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return s.sessions.DeleteAllForUser(ctx, userID)
}

// List returns one page of users in store order together with the total
// count and the computed last page. A page past the end yields an empty
// slice with the total still reported accurately.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.UserResponse, model.Pagination, error) {
	if page < 1 || perPage < 1 {
		return nil, model.Pagination{}, ErrInvalidPagination
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	users, err := s.users.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	items := make([]model.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, model.NewUserResponse(&users[i]))
	}

	pagination := model.Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    int((total + int64(perPage) - 1) / int64(perPage)),
		Total:       total,
	}
	return items, pagination, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound)
}
