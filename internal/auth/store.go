package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"edubot/internal/redis"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session already expired")
)

// SessionStore keeps live sessions between requests. ttl is the session's
// remaining lifetime as measured by the caller's clock.
type SessionStore interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore holds sessions in process memory. Expired entries are dropped
// when they are next read.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		return ErrSessionExpired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

const redisSessionPrefix = "edubot:session:"

// RedisStore keeps sessions in redis so several app instances share logins.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		return ErrSessionExpired
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, redisSessionPrefix+session.ID, data, ttl)
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisSessionPrefix+id)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisSessionPrefix+id)
}
