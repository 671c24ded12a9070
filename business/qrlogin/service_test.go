package qrlogin

import (
	"context"
	"strings"
	"testing"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	sessions map[string]*domain.QRLoginSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.QRLoginSession{}}
}

func (f *fakeSessionRepo) Save(_ context.Context, session *domain.QRLoginSession) error {
	clone := *session
	f.sessions[session.SessionID] = &clone
	return nil
}

func (f *fakeSessionRepo) Find(_ context.Context, sessionID string) (*domain.QRLoginSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.NewNotFound("qr session not found")
	}
	clone := *session
	return &clone, nil
}

type fakeUserRepo struct {
	users map[uint]domain.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NewNotFound("user %d not found", id)
	}
	return user, nil
}

type fakeTokenStore struct {
	stored []string
}

func (f *fakeTokenStore) StoreRefreshToken(_ context.Context, token string, _ domain.RefreshTokenData, _ time.Duration) error {
	f.stored = append(f.stored, token)
	return nil
}

func newTestQRService(t *testing.T) (*Service, *fakeSessionRepo, *fakeTokenStore, *time.Time) {
	t.Helper()

	sessions := newFakeSessionRepo()
	users := &fakeUserRepo{users: map[uint]domain.User{
		7: {ID: 7, FullName: "Tania", Email: "tania@example.com", Role: "customer"},
	}}
	tokens := &fakeTokenStore{}

	jwt := utils.NewJWTManager("test-secret", 15*time.Minute, 168*time.Hour)
	svc := NewService(sessions, users, tokens, jwt)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return svc, sessions, tokens, &now
}

func TestGenerateCreatesPendingSession(t *testing.T) {
	svc, sessions, _, _ := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.SessionID, 32, "128-bit session id hex-encoded")
	assert.Len(t, result.QRToken, 64, "256-bit qr token hex-encoded")
	assert.True(t, strings.HasPrefix(result.QRCode, "data:image/png;base64,"))
	assert.Equal(t, 300, result.ExpiresInSeconds)

	stored := sessions.sessions[result.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.QRStatusPending, stored.Status)
	assert.Nil(t, stored.ScannedAt)
}

func TestScanIsIdempotent(t *testing.T) {
	svc, sessions, _, now := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	require.NoError(t, svc.Scan(context.Background(), result.SessionID, result.QRToken))

	first := sessions.sessions[result.SessionID]
	require.NotNil(t, first.ScannedAt)
	firstScannedAt := *first.ScannedAt

	// A later repeated scan changes nothing.
	*now = now.Add(time.Minute)
	require.NoError(t, svc.Scan(context.Background(), result.SessionID, result.QRToken))

	second := sessions.sessions[result.SessionID]
	assert.Equal(t, domain.QRStatusScanned, second.Status)
	assert.Equal(t, firstScannedAt, *second.ScannedAt)
}

func TestScanRejectsWrongToken(t *testing.T) {
	svc, _, _, _ := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	err = svc.Scan(context.Background(), result.SessionID, "deadbeef")
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestAuthenticateTwiceFails(t *testing.T) {
	svc, sessions, _, _ := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Scan(context.Background(), result.SessionID, result.QRToken))
	require.NoError(t, svc.Authenticate(context.Background(), result.SessionID, result.QRToken, 7))

	err = svc.Authenticate(context.Background(), result.SessionID, result.QRToken, 99)
	require.Error(t, err)

	// The session keeps its original binding.
	stored := sessions.sessions[result.SessionID]
	assert.Equal(t, domain.QRStatusAuthenticated, stored.Status)
	assert.Equal(t, uint(7), stored.UserID)
}

func TestAuthenticateWithoutScanBackfillsScannedAt(t *testing.T) {
	svc, sessions, _, _ := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Authenticate(context.Background(), result.SessionID, result.QRToken, 7))

	stored := sessions.sessions[result.SessionID]
	require.NotNil(t, stored.ScannedAt)
	require.NotNil(t, stored.AuthenticatedAt)
	assert.Equal(t, *stored.AuthenticatedAt, *stored.ScannedAt)
}

func TestPollMintsFreshTokenPairPerPoll(t *testing.T) {
	svc, _, tokens, _ := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	status, err := svc.PollStatus(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.QRStatusPending, status.Status)
	assert.Empty(t, status.AccessToken)

	require.NoError(t, svc.Authenticate(context.Background(), result.SessionID, result.QRToken, 7))

	first, err := svc.PollStatus(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.QRStatusAuthenticated, first.Status)
	assert.Equal(t, uint(7), first.UserID)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)

	second, err := svc.PollStatus(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, second.RefreshToken)

	// Each poll stores its own refresh token.
	assert.Len(t, tokens.stored, 2)
	assert.NotEqual(t, tokens.stored[0], tokens.stored[1])
}

func TestPollFlipsExpiredSession(t *testing.T) {
	svc, sessions, _, now := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	*now = now.Add(6 * time.Minute)

	status, err := svc.PollStatus(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.QRStatusExpired, status.Status)

	// The flip is persisted, not just reported.
	assert.Equal(t, domain.QRStatusExpired, sessions.sessions[result.SessionID].Status)
}

func TestScanExpiredSessionFails(t *testing.T) {
	svc, _, _, now := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	*now = now.Add(6 * time.Minute)

	err = svc.Scan(context.Background(), result.SessionID, result.QRToken)
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestPollUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestQRService(t)

	_, err := svc.PollStatus(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAuthenticatedSessionOutlivesExpiryWindow(t *testing.T) {
	svc, _, _, now := newTestQRService(t)

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Authenticate(context.Background(), result.SessionID, result.QRToken, 7))

	// Authenticated is terminal; the passive expiry check no longer applies.
	*now = now.Add(6 * time.Minute)

	status, err := svc.PollStatus(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.QRStatusAuthenticated, status.Status)
}
