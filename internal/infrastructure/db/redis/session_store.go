package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

const sessionPrefix = "admsess:"

// SessionStore is the Redis-backed dashboard session store. Records live under
// "admsess:<id>" with a TTL matching the session's absolute expiry.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(id string) string {
	return sessionPrefix + id
}

// Create stores a new session record. The TTL is derived from ExpiresAt.
func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session store: missing session id")
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session store: expires_at must be in the future")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.ID), data, ttl).Err()
}

// Get returns the session for id, or (nil, nil) when none exists.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session store: get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session store: unmarshal: %w", err)
	}
	return &sess, nil
}

// Save rewrites an existing session, preserving the remaining TTL. A session
// past its expiry is deleted instead of resurrected.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session store: missing session id")
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.client.Del(ctx, s.key(sess.ID)).Err()
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.ID), data, ttl).Err()
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
