package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	DefaultTTL             = 12 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// ErrNoSession is returned for an empty session id.
var ErrNoSession = errors.New("session id required")

// Store owns the session states. Update runs fn against the current state
// and commits the result only when fn returns nil.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Update(ctx context.Context, id string, fn func(*State) error) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state   *State
	touched time.Time
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	onExpire func(*State)
	now      func() time.Time
}

// NewMemoryStore builds a store whose idle sessions expire after ttl.
// onExpire, when set, sees every state dropped by the janitor.
func NewMemoryStore(ttl time.Duration, onExpire func(*State)) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		onExpire: onExpire,
		now:      time.Now,
	}
}

// Load returns a copy of the state for id; unknown ids yield an empty state.
func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return NewState(id), nil
	}
	entry.touched = m.now()
	return entry.state.Clone(), nil
}

// Update applies fn to a copy of the state and swaps it in on success.
func (m *MemoryStore) Update(_ context.Context, id string, fn func(*State) error) error {
	if id == "" {
		return ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var working *State
	if entry, ok := m.sessions[id]; ok {
		working = entry.state.Clone()
	} else {
		working = NewState(id)
	}
	if err := fn(working); err != nil {
		return err
	}
	now := m.now()
	working.UpdatedAt = now
	m.sessions[id] = &memoryEntry{state: working, touched: now}
	return nil
}

// Delete drops the state for id.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// StartJanitor expires idle sessions every interval until ctx is done.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	go m.cleanupLoop(ctx, interval)
}

func (m *MemoryStore) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.expire(); n > 0 {
				log.Printf("expired %d idle study sessions", n)
			}
		}
	}
}

func (m *MemoryStore) expire() int {
	cutoff := m.now().Add(-m.ttl)
	var stale []*State
	m.mu.Lock()
	for id, entry := range m.sessions {
		if entry.touched.Before(cutoff) {
			stale = append(stale, entry.state)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	if m.onExpire != nil {
		for _, st := range stale {
			m.onExpire(st)
		}
	}
	return len(stale)
}
