package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"studybuddy/internal/redis"
)

const stateKeyPrefix = "study:session:"

// RedisStore keeps JSON snapshots of each state in redis. Entries live for
// the session TTL only; nothing here outlives an idle session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func stateKey(id string) string {
	return stateKeyPrefix + id
}

// Load fetches and decodes the state for id.
func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	raw, err := r.client.Get(ctx, stateKey(id))
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return NewState(id), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeState(id, raw)
}

// Update runs fn inside an optimistic redis transaction so that two
// feature areas finishing together both land. The preview keys of the
// session's files get their TTL renewed along with the state.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(*State) error) error {
	if id == "" {
		return ErrNoSession
	}
	var committed *State
	err := r.client.Update(ctx, stateKey(id), r.ttl, func(current []byte) ([]byte, error) {
		st := NewState(id)
		if current != nil {
			decoded, err := decodeState(id, current)
			if err != nil {
				return nil, err
			}
			st = decoded
		}
		if err := fn(st); err != nil {
			return nil, err
		}
		st.UpdatedAt = time.Now()
		committed = st
		return json.Marshal(st)
	})
	if err != nil {
		return err
	}
	if keys := previewKeys(committed); len(keys) > 0 {
		if err := r.client.Expire(ctx, r.ttl, keys...); err != nil {
			log.Printf("refresh previews of session %s: %v", id, err)
		}
	}
	return nil
}

func previewKeys(st *State) []string {
	if st == nil {
		return nil
	}
	keys := make([]string, 0, len(st.Files))
	for _, f := range st.Files {
		if f.PreviewHandle != "" {
			keys = append(keys, previewKeyPrefix+f.PreviewHandle)
		}
	}
	return keys
}

// Delete removes the snapshot for id.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, stateKey(id))
}

func decodeState(id string, raw []byte) (*State, error) {
	st := NewState(id)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	st.ensureActivity()
	return st, nil
}
