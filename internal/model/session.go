package model

import "time"

// Session represents one authenticated login instance. A session row's
// existence is the sole source of truth for whether a previously issued
// token is still honored: deleting the row revokes the token that
// references it, regardless of the token's own expiry.
type Session struct {
	ID             string
	UserID         int64
	LoginTimestamp time.Time
	IPAddress      string
	DeviceInfo     *string
	OSInfo         *string
	FCMToken       *string
}

// SessionResponse represents one session in the session listing.
type SessionResponse struct {
	ID             string    `json:"id"`
	LoginTimestamp time.Time `json:"loginTimestamp"`
	IPAddress      string    `json:"ipAddress"`
	DeviceInfo     *string   `json:"deviceInfo,omitempty"`
	OSInfo         *string   `json:"osInfo,omitempty"`
	FCMToken       *string   `json:"fcmToken,omitempty"`
}

// NewSessionResponse builds the API projection of a session record.
func NewSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		LoginTimestamp: s.LoginTimestamp,
		IPAddress:      s.IPAddress,
		DeviceInfo:     s.DeviceInfo,
		OSInfo:         s.OSInfo,
		FCMToken:       s.FCMToken,
	}
}
