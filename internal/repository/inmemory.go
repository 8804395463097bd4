package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apimock/apimock-go/internal/model"
)

// InMemoryUserRepository is a thread-safe in-memory implementation of the
// user store. It mirrors the MySQL repository's semantics, including
// insertion-order listing, and backs tests and local development.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  []*model.User
}

// NewInMemoryUserRepository creates an empty in-memory user store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{nextID: 1}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++

	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u := r.find(id); u != nil {
		clone := *u
		return &clone, nil
	}
	return nil, ErrUserNotFound
}

func (r *InMemoryUserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.find(id)
	if u == nil {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryUserRepository) UpdateProfile(_ context.Context, id int64, name, photo *string, verified *bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.find(id)
	if u == nil {
		return nil, ErrUserNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if photo != nil {
		u.Photo = photo
	}
	if verified != nil {
		u.Verified = *verified
	}
	u.UpdatedAt = time.Now().UTC()

	clone := *u
	return &clone, nil
}

func (r *InMemoryUserRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *InMemoryUserRepository) List(_ context.Context, offset, limit int) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.users) {
		end = len(r.users)
	}

	users := make([]model.User, 0, end-offset)
	for _, u := range r.users[offset:end] {
		users = append(users, *u)
	}
	return users, nil
}

// find returns the stored record, not a copy. Callers hold the lock.
func (r *InMemoryUserRepository) find(id int64) *model.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// InMemorySessionRepository is a thread-safe in-memory session registry
// with the same semantics as the MySQL implementation.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewInMemorySessionRepository creates an empty in-memory session registry.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[string]*model.Session)}
}

func (r *InMemorySessionRepository) Create(_ context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.LoginTimestamp.IsZero() {
		session.LoginTimestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *InMemorySessionRepository) FindByID(_ context.Context, sessionID string, userID int64) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *InMemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemorySessionRepository) DeleteOwned(_ context.Context, sessionID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(r.sessions, sessionID)
	return true, nil
}

func (r *InMemorySessionRepository) DeleteAllForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *InMemorySessionRepository) ListForUser(_ context.Context, userID int64) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []model.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}
