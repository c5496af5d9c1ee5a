package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newRef() string {
	return "ev_" + uuid.NewString()
}

func checkSize(data []byte, maxBytes int) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: evidence is empty", common.ErrValidation)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", provider.ErrEvidenceTooLarge, len(data), maxBytes)
	}
	return nil
}

type evidenceBlob struct {
	contentType string
	data        []byte
}

// MemoryEvidenceStore keeps evidence in process memory.
type MemoryEvidenceStore struct {
	mu       sync.RWMutex
	blobs    map[string]evidenceBlob
	maxBytes int
}

// NewMemoryEvidenceStore creates a new MemoryEvidenceStore.
func NewMemoryEvidenceStore(maxBytes int) *MemoryEvidenceStore {
	return &MemoryEvidenceStore{blobs: make(map[string]evidenceBlob), maxBytes: maxBytes}
}

func (s *MemoryEvidenceStore) Put(_ context.Context, contentType string, data []byte) (string, error) {
	if err := checkSize(data, s.maxBytes); err != nil {
		return "", err
	}
	ref := newRef()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = evidenceBlob{contentType: contentType, data: append([]byte(nil), data...)}
	return ref, nil
}

func (s *MemoryEvidenceStore) Get(_ context.Context, ref string) (string, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[ref]
	if !ok {
		return "", nil, provider.ErrEvidenceNotFound
	}
	return b.contentType, append([]byte(nil), b.data...), nil
}

// RedisEvidenceStore keeps evidence in Redis hashes that expire after ttl.
type RedisEvidenceStore struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	maxBytes int
}

// NewRedisEvidenceStore creates a new RedisEvidenceStore over a shared client.
func NewRedisEvidenceStore(client *redis.Client, prefix string, ttl time.Duration, maxBytes int) *RedisEvidenceStore {
	return &RedisEvidenceStore{client: client, prefix: prefix + "evidence:", ttl: ttl, maxBytes: maxBytes}
}

func (s *RedisEvidenceStore) Put(ctx context.Context, contentType string, data []byte) (string, error) {
	if err := checkSize(data, s.maxBytes); err != nil {
		return "", err
	}
	ref := newRef()
	key := s.prefix + ref
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "content_type", contentType, "data", data)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store evidence: %w", err)
	}
	return ref, nil
}

func (s *RedisEvidenceStore) Get(ctx context.Context, ref string) (string, []byte, error) {
	vals, err := s.client.HGetAll(ctx, s.prefix+ref).Result()
	if err != nil {
		return "", nil, fmt.Errorf("load evidence: %w", err)
	}
	data, ok := vals["data"]
	if !ok {
		return "", nil, provider.ErrEvidenceNotFound
	}
	return vals["content_type"], []byte(data), nil
}

var (
	_ provider.EvidenceStore = (*MemoryEvidenceStore)(nil)
	_ provider.EvidenceStore = (*RedisEvidenceStore)(nil)
)
