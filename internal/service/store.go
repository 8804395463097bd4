package service

import (
	"context"

	"github.com/apimock/apimock-go/internal/model"
)

// UserStore is the credential store as seen by the services. Both the
// MySQL and in-memory repositories satisfy it.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, name, photo *string, verified *bool) (*model.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
}

// SessionStore is the session registry as seen by the services.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, sessionID string, userID int64) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteOwned(ctx context.Context, sessionID string, userID int64) (bool, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]model.Session, error)
}
