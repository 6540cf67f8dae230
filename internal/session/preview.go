package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/redis"
)

// ErrPreviewNotFound is returned for unknown or released handles.
var ErrPreviewNotFound = errors.New("preview not found")

// Preview is the original bytes of an upload kept for on-screen display.
type Preview struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// PreviewStore allocates and releases preview handles. A handle stays
// valid until Release is called for it.
type PreviewStore interface {
	Put(ctx context.Context, p Preview) (string, error)
	Get(ctx context.Context, handle string) (Preview, error)
	Release(ctx context.Context, handle string) error
}

// MemoryPreviews keeps previews in process memory.
type MemoryPreviews struct {
	mu    sync.RWMutex
	items map[string]Preview
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{items: make(map[string]Preview)}
}

func (m *MemoryPreviews) Put(_ context.Context, p Preview) (string, error) {
	handle := uuid.NewString()
	m.mu.Lock()
	m.items[handle] = p
	m.mu.Unlock()
	return handle, nil
}

func (m *MemoryPreviews) Get(_ context.Context, handle string) (Preview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[handle]
	if !ok {
		return Preview{}, ErrPreviewNotFound
	}
	return p, nil
}

func (m *MemoryPreviews) Release(_ context.Context, handle string) error {
	m.mu.Lock()
	delete(m.items, handle)
	m.mu.Unlock()
	return nil
}

// Len reports how many handles are live.
func (m *MemoryPreviews) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

const previewKeyPrefix = "study:preview:"

// RedisPreviews keeps previews in redis. RedisStore renews their TTL each
// time the owning session is written.
type RedisPreviews struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPreviews(client *redis.Client, ttl time.Duration) *RedisPreviews {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisPreviews{client: client, ttl: ttl}
}

func (r *RedisPreviews) Put(ctx context.Context, p Preview) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal preview: %w", err)
	}
	handle := uuid.NewString()
	if err := r.client.Set(ctx, previewKeyPrefix+handle, payload, r.ttl); err != nil {
		return "", fmt.Errorf("store preview: %w", err)
	}
	return handle, nil
}

func (r *RedisPreviews) Get(ctx context.Context, handle string) (Preview, error) {
	raw, err := r.client.Get(ctx, previewKeyPrefix+handle)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return Preview{}, ErrPreviewNotFound
		}
		return Preview{}, fmt.Errorf("load preview: %w", err)
	}
	var p Preview
	if err := json.Unmarshal(raw, &p); err != nil {
		return Preview{}, fmt.Errorf("decode preview: %w", err)
	}
	return p, nil
}

func (r *RedisPreviews) Release(ctx context.Context, handle string) error {
	return r.client.Del(ctx, previewKeyPrefix+handle)
}

// ReleaseOnExpire returns a hook for MemoryStore that frees the preview
// handles of every expired state.
func ReleaseOnExpire(previews PreviewStore) func(*State) {
	return func(st *State) {
		for _, f := range st.Files {
			if f.PreviewHandle == "" {
				continue
			}
			if err := previews.Release(context.Background(), f.PreviewHandle); err != nil {
				log.Printf("release preview %s: %v", f.PreviewHandle, err)
			}
		}
	}
}
