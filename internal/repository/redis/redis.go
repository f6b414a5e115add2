package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type SessionData struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// SessionRepository keeps an allow-list of issued login tokens. A token that
// is not in the list is rejected even if its signature is still valid.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

func userKey(userID string) string {
	return fmt.Sprintf("marketplace:session:user:%s", userID)
}

func tokenKey(token string) string {
	return fmt.Sprintf("marketplace:session:token:%s", token)
}

// StoreSession replaces the user's current session with data.
func (r *SessionRepository) StoreSession(ctx context.Context, data SessionData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if old, err := r.GetSession(ctx, data.UserID); err == nil && old.Token != data.Token {
		if err := r.client.Del(ctx, tokenKey(old.Token)).Err(); err != nil {
			return fmt.Errorf("failed to drop previous session: %w", err)
		}
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userKey(data.UserID), jsonData, ttl)
	pipe.Set(ctx, tokenKey(data.Token), data.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetSession(ctx context.Context, userID string) (*SessionData, error) {
	val, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &data, nil
}

// ValidateToken returns the user the token was issued to.
func (r *SessionRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return userID, nil
}

// RevokeSession logs the user out.
func (r *SessionRepository) RevokeSession(ctx context.Context, userID string) error {
	data, err := r.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, userKey(userID), tokenKey(data.Token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// RefreshSessionTTL extends both keys of the session.
func (r *SessionRepository) RefreshSessionTTL(ctx context.Context, userID string, ttl time.Duration) error {
	data, err := r.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Expire(ctx, userKey(userID), ttl)
	pipe.Expire(ctx, tokenKey(data.Token), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to refresh session TTL: %w", err)
	}

	return nil
}
