package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopsphere/domain"

	"github.com/redis/go-redis/v9"
)

// sessionGrace keeps sessions readable past their 5-minute logical expiry so
// a late poll can observe (and persist) the expired status instead of a
// not-found.
const sessionGrace = 10 * time.Minute

type QRSessionRepository struct {
	client *redis.Client
}

func NewQRSessionRepository(client *redis.Client) *QRSessionRepository {
	return &QRSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("qr:session:%s", sessionID)
}

func (r *QRSessionRepository) Save(ctx context.Context, session *domain.QRLoginSession) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal qr session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt) + sessionGrace
	if ttl <= 0 {
		ttl = sessionGrace
	}

	if err := r.client.Set(ctx, sessionKey(session.SessionID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save qr session: %w", err)
	}

	return nil
}

func (r *QRSessionRepository) Find(ctx context.Context, sessionID string) (*domain.QRLoginSession, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find qr session: %w", err)
	}

	var session domain.QRLoginSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal qr session: %w", err)
	}

	return &session, nil
}
