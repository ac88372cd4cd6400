package optionset

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DocumentKey is the single fixed key the serialized cache document lives
// under. The version suffix is the only migration mechanism: bumping it
// abandons documents written by incompatible builds.
const DocumentKey = "surveillance:optionsets:v2"

// Store is the durable home of the cache document. Implementations must
// return (nil, nil) when no document exists yet.
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, doc []byte) error
}

// RedisStore persists the document under DocumentKey with no expiry; cached
// vocabularies stay authoritative until overwritten.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, DocumentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Write(ctx context.Context, doc []byte) error {
	return s.client.Set(ctx, DocumentKey, doc, 0).Err()
}

// MemoryStore keeps the document in process memory only. It backs tests and
// the degraded mode used when Redis is unreachable at startup.
type MemoryStore struct {
	mu  sync.Mutex
	doc []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, nil
	}
	out := make([]byte, len(s.doc))
	copy(out, s.doc)
	return out, nil
}

func (s *MemoryStore) Write(ctx context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = make([]byte, len(doc))
	copy(s.doc, doc)
	return nil
}
