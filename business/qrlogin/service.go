package qrlogin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/metrics"
	"shopsphere/pkg/utils"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	sessionTTL = 5 * time.Minute

	sessionIDBytes = 16 // 128-bit
	qrTokenBytes   = 32 // 256-bit

	qrImageSize = 256
)

// SessionRepository contract interface
type SessionRepository interface {
	Save(ctx context.Context, session *domain.QRLoginSession) error
	Find(ctx context.Context, sessionID string) (*domain.QRLoginSession, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type RefreshTokenStore interface {
	StoreRefreshToken(ctx context.Context, token string, data domain.RefreshTokenData, ttl time.Duration) error
}

// qrPayload is what the rendered code encodes; the scanning device posts it
// back verbatim.
type qrPayload struct {
	SessionID string `json:"session_id"`
	QRToken   string `json:"qr_token"`
	Type      string `json:"type"`
}

// GenerateResult is returned to the device that wants to be logged in.
type GenerateResult struct {
	SessionID        string `json:"session_id"`
	QRToken          string `json:"qr_token"`
	QRCode           string `json:"qr_code"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// StatusResult carries the session status and, once authenticated, a token
// pair minted fresh on every poll.
type StatusResult struct {
	Status       string `json:"status"`
	UserID       uint   `json:"user_id,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Service drives the cross-device QR login handshake:
// pending -> scanned -> authenticated, with passive expiry on every read.
type Service struct {
	sessions SessionRepository
	users    UserRepository
	tokens   RefreshTokenStore
	jwt      *utils.JWTManager

	now func() time.Time
}

func NewService(
	sessions SessionRepository,
	users UserRepository,
	tokens RefreshTokenStore,
	jwt *utils.JWTManager,
) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		jwt:      jwt,
		now:      time.Now,
	}
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Generate creates a pending session and renders its QR code. The qrToken is
// bearer-equivalent for this session and must not be stored insecurely by
// the client.
func (s *Service) Generate(ctx context.Context) (*GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	sessionID, err := randomHex(sessionIDBytes)
	if err != nil {
		return nil, err
	}
	qrToken, err := randomHex(qrTokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.QRLoginSession{
		SessionID: sessionID,
		QRToken:   qrToken,
		Status:    domain.QRStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save qr session: %w", err)
	}

	payload, err := json.Marshal(qrPayload{
		SessionID: sessionID,
		QRToken:   qrToken,
		Type:      "login",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	metrics.QRSessionTransitions.WithLabelValues(domain.QRStatusPending).Inc()
	logger.Debug("qr session generated", "session_id", sessionID)

	return &GenerateResult{
		SessionID:        sessionID,
		QRToken:          qrToken,
		QRCode:           "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ExpiresInSeconds: int(sessionTTL.Seconds()),
	}, nil
}

// findByPair looks a session up and verifies the qrToken in constant time.
// A missing session and a token mismatch are indistinguishable to callers.
func (s *Service) findByPair(ctx context.Context, sessionID, qrToken string) (*domain.QRLoginSession, error) {
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, domain.NewBadRequest("invalid qr session")
	}

	if subtle.ConstantTimeCompare([]byte(session.QRToken), []byte(qrToken)) != 1 {
		return nil, domain.NewBadRequest("invalid qr session")
	}

	return session, nil
}

// expire persists the expired status. Best effort: the logical expiry is
// already decided by ExpiresAt.
func (s *Service) expire(ctx context.Context, session *domain.QRLoginSession) {
	session.Status = domain.QRStatusExpired
	if err := s.sessions.Save(ctx, session); err != nil {
		logger.Warn("failed to persist expired qr session", "session_id", session.SessionID, "error", err)
	}
	metrics.QRSessionTransitions.WithLabelValues(domain.QRStatusExpired).Inc()
}

// Scan marks the session as scanned. Repeated scans are no-ops: ScannedAt is
// stamped at most once and never re-stamped.
func (s *Service) Scan(ctx context.Context, sessionID, qrToken string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	session, err := s.findByPair(ctx, sessionID, qrToken)
	if err != nil {
		return err
	}

	if session.Expired(s.now()) {
		if !session.Terminal() {
			s.expire(ctx, session)
		}
		return domain.NewBadRequest("qr session expired")
	}

	if session.Status != domain.QRStatusPending {
		// Already scanned or beyond; idempotent.
		return nil
	}

	now := s.now()
	session.Status = domain.QRStatusScanned
	session.ScannedAt = &now

	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save scanned qr session: %w", err)
	}

	metrics.QRSessionTransitions.WithLabelValues(domain.QRStatusScanned).Inc()
	return nil
}

// Authenticate binds the already-authenticated mobile user to the session.
// A direct authenticate without a prior scan counts as an implicit scan.
func (s *Service) Authenticate(ctx context.Context, sessionID, qrToken string, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	session, err := s.findByPair(ctx, sessionID, qrToken)
	if err != nil {
		return err
	}

	if session.Status == domain.QRStatusAuthenticated {
		return domain.NewBadRequest("qr session already authenticated")
	}

	if session.Expired(s.now()) {
		if !session.Terminal() {
			s.expire(ctx, session)
		}
		return domain.NewBadRequest("qr session expired")
	}

	now := s.now()
	session.Status = domain.QRStatusAuthenticated
	session.UserID = userID
	session.AuthenticatedAt = &now
	if session.ScannedAt == nil {
		session.ScannedAt = &now
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save authenticated qr session: %w", err)
	}

	metrics.QRSessionTransitions.WithLabelValues(domain.QRStatusAuthenticated).Inc()
	logger.Info("qr session authenticated", "session_id", sessionID, "user_id", userID)
	return nil
}

// PollStatus reports the session status. A session past its expiry is
// flipped to expired as a side effect of the read. Once authenticated, every
// poll mints a fresh, independently-usable token pair.
func (s *Service) PollStatus(ctx context.Context, sessionID string) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, domain.NewNotFound("qr session not found")
	}

	if session.Status != domain.QRStatusAuthenticated && session.Expired(s.now()) {
		if !session.Terminal() {
			s.expire(ctx, session)
		}
		return &StatusResult{Status: domain.QRStatusExpired}, nil
	}

	if session.Status != domain.QRStatusAuthenticated {
		return &StatusResult{Status: session.Status}, nil
	}

	pair, err := s.mintTokenPair(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Status:       domain.QRStatusAuthenticated,
		UserID:       session.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *Service) mintTokenPair(ctx context.Context, userID uint) (*domain.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	uid := strconv.FormatUint(uint64(user.ID), 10)
	accessToken, err := s.jwt.GenerateAccessToken(uid, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(uid, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	err = s.tokens.StoreRefreshToken(ctx, refreshToken, domain.RefreshTokenData{
		UserID:    uid,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.jwt.RefreshTTL()),
	}, s.jwt.RefreshTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
