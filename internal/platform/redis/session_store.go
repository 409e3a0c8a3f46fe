// Package redis contains the Redis-backed store implementations used when
// the engine runs as a shared service across multiple processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/platform/logger"
	"github.com/lernia/review-api/internal/store"
)

const sessionKeyPrefix = "review:session:"

// SessionStore is a Redis-backed store.SessionStore. Sessions are stored as
// JSON with the configured TTL, so abandoned sessions expire on their own.
type SessionStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionStore creates a Redis session store. It pings the server once so
// misconfiguration surfaces at startup rather than on the first session.
func NewSessionStore(addr string, ttl time.Duration, log *slog.Logger) (*SessionStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be positive")
	}
	if log == nil {
		log = slog.Default()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &SessionStore{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.With(slog.String("component", "redis_session_store")),
	}, nil
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// Save implements store.SessionStore.Save
// Each save rewrites the value and refreshes the TTL.
func (s *SessionStore) Save(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: marshal session: %v", store.ErrInvalidEntity, err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: save session: %v", store.ErrStorage, err)
	}

	return nil
}

// Get implements store.SessionStore.Get
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, fmt.Errorf("%w: get session: %v", store.ErrStorage, err)
	}

	var session domain.ReviewSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: unmarshal session: %v", store.ErrStorage, err)
	}

	return &session, nil
}

// Delete implements store.SessionStore.Delete
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: delete session: %v", store.ErrStorage, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}
