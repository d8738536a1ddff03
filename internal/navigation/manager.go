package navigation

import (
	"context"
	"sync"
)

// Manager loads and saves sessions and serialises work per chat.
type Manager struct {
	store Store
	limit int

	mu    sync.Mutex
	locks map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Manager{store: store, limit: limit, locks: make(map[int64]*chatLock)}
}

// Lock blocks until the chat is free and returns the unlock func.
func (m *Manager) Lock(chatID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &chatLock{}
		m.locks[chatID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, chatID)
		}
		m.mu.Unlock()
	}
}

// Load returns the stored session or a fresh one at the main menu.
func (m *Manager) Load(ctx context.Context, chatID int64) (*Session, error) {
	s, err := m.store.Load(ctx, chatID)
	if err != nil || s == nil {
		return NewSession(m.limit), err
	}
	s.SetLimit(m.limit)
	if s.Current.State == "" {
		s.Current.State = StateMain
	}
	return s, nil
}

func (m *Manager) Save(ctx context.Context, chatID int64, s *Session) error {
	return m.store.Save(ctx, chatID, s)
}

