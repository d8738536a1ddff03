package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists sessions by chat id.
type Store interface {
	Load(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, chatID int64, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (r *redisStore) key(chatID int64) string {
	return r.prefix + ":" + strconv.FormatInt(chatID, 10)
}

func (r *redisStore) Load(ctx context.Context, chatID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *redisStore) Save(ctx context.Context, chatID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(chatID), raw, r.ttl).Err()
}

func (r *redisStore) Delete(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, r.key(chatID)).Err()
}

type memoryEntry struct {
	raw []byte
	exp time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	nextGC  time.Time
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		nextGC:  time.Now().Add(ttl),
	}
}

// Sessions are stored encoded so callers never share state with the store.
func (m *memoryStore) Load(_ context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	e, ok := m.entries[chatID]
	m.mu.Unlock()
	if !ok || e.exp.Before(time.Now()) {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryStore) Save(_ context.Context, chatID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[chatID] = memoryEntry{raw: raw, exp: now.Add(m.ttl)}
	if now.After(m.nextGC) {
		for id, e := range m.entries {
			if e.exp.Before(now) {
				delete(m.entries, id)
			}
		}
		m.nextGC = now.Add(m.ttl)
	}
	return nil
}

func (m *memoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.entries, chatID)
	m.mu.Unlock()
	return nil
}

// NewMemoryStore keeps sessions in process memory.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return newMemoryStore(ttl)
}

// NewStore keeps sessions in Redis, or in memory when client is nil.
func NewStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if client == nil {
		return newMemoryStore(ttl)
	}
	return &redisStore{
		client: client,
		prefix: "nav",
		ttl:    ttl,
	}
}
