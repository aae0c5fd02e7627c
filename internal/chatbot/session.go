package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Step is the position of a visitor in the guided conversation.
type Step string

const (
	StepGreeting Step = "greeting"
	StepName     Step = "name"
	StepInterest Step = "interest"
	StepEmail    Step = "email"
	StepDone     Step = "done"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Turn is one line of the conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is the per-visitor conversation state.
type Session struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	Name      string    `json:"name,omitempty"`
	Interest  string    `json:"interest,omitempty"`
	Email     string    `json:"email,omitempty"`
	History   []Turn    `json:"history"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Session) clone() *Session {
	c := *s
	c.History = append([]Turn(nil), s.History...)
	return &c
}

// SessionStore keeps sessions for a limited time. Get returns nil, nil when
// the session does not exist or has expired.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local SessionStore, used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.items, id)
		return nil, nil
	}
	return e.session.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.items[s.ID] = memoryEntry{session: s.clone(), expiresAt: now.Add(m.ttl)}

	// sweep expired entries so abandoned sessions do not pile up
	for id, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// RedisStore keeps sessions as JSON values with an expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "chatbot:session:"}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.prefix+id).Err()
}
