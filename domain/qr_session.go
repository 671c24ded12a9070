package domain

import "time"

const (
	QRStatusPending       = "pending"
	QRStatusScanned       = "scanned"
	QRStatusAuthenticated = "authenticated"
	QRStatusExpired       = "expired"
	QRStatusCancelled     = "cancelled"
)

// QRLoginSession is a short-lived cross-device login handshake.
//
// pending -> scanned -> authenticated; pending|scanned -> expired (passive,
// checked on every read). authenticated, expired and cancelled are terminal.
// ScannedAt is stamped at most once. authenticated implies UserID and
// AuthenticatedAt are set.
type QRLoginSession struct {
	SessionID       string     `json:"session_id"`
	QRToken         string     `json:"qr_token"`
	Status          string     `json:"status"`
	UserID          uint       `json:"user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	ScannedAt       *time.Time `json:"scanned_at,omitempty"`
	AuthenticatedAt *time.Time `json:"authenticated_at,omitempty"`
}

// Expired reports whether the session is past its logical expiry.
func (s *QRLoginSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Terminal reports whether no further transitions are allowed.
func (s *QRLoginSession) Terminal() bool {
	return s.Status == QRStatusAuthenticated ||
		s.Status == QRStatusExpired ||
		s.Status == QRStatusCancelled
}
