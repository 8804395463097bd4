package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/apimock/apimock-go/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = "id, user_id, login_timestamp, ip_address, device_info, os_info, fcm_token"

// SessionRepository is the durable registry of active sessions on MySQL.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row. A fresh globally-unique session id
// and login timestamp are generated when unset; the id is distinct from
// the owning user's id.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.LoginTimestamp.IsZero() {
		session.LoginTimestamp = time.Now().UTC()
	}

	query := `INSERT INTO sessions (id, user_id, login_timestamp, ip_address, device_info, os_info, fcm_token)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.LoginTimestamp,
		session.IPAddress, session.DeviceInfo, session.OSInfo, session.FCMToken,
	)
	return err
}

// FindByID retrieves a session scoped to both the session id and the
// owning user id. A session id alone is not sufficient to authorize a
// user.
func (r *SessionRepository) FindByID(ctx context.Context, sessionID string, userID int64) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND user_id = ?`

	s := &model.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.LoginTimestamp, &s.IPAddress,
		&s.DeviceInfo, &s.OSInfo, &s.FCMToken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// Delete removes a session by id alone. Deleting a non-existent session
// is not an error; this is the lazy cleanup path for expired tokens.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteOwned removes a session scoped to its owner and reports whether
// a row was actually deleted, so logout can distinguish an
// already-terminated session.
func (r *SessionRepository) DeleteOwned(ctx context.Context, sessionID string, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ? AND user_id = ?`, sessionID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteAllForUser removes every session owned by the user. Idempotent.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// ListForUser retrieves all active sessions owned by the user. An empty
// result is a valid state.
func (r *SessionRepository) ListForUser(ctx context.Context, userID int64) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.LoginTimestamp, &s.IPAddress,
			&s.DeviceInfo, &s.OSInfo, &s.FCMToken,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
