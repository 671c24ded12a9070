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

var ErrNotFound = errors.New("not found")

type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

func refreshKey(token string) string {
	return fmt.Sprintf("token:refresh:%s", token)
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func (r *TokenRepository) StoreRefreshToken(ctx context.Context, token string, data domain.RefreshTokenData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh token data: %w", err)
	}

	if err := r.client.Set(ctx, refreshKey(token), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

func (r *TokenRepository) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshTokenData, error) {
	val, err := r.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	var data domain.RefreshTokenData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh token data: %w", err)
	}

	return &data, nil
}

func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, refreshKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

func (r *TokenRepository) StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	return nil
}

func (r *TokenRepository) GetOTP(ctx context.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get otp: %w", err)
	}

	return code, nil
}

func (r *TokenRepository) DeleteOTP(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}

	return nil
}
