package storage

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryKeySep joins tag and fingerprint into one flat LRU key. The
// fingerprint is hex encoded, so the separator can never appear inside
// either half.
const memoryKeySep = ":"

// Memory is a process-local LRU store. It is not persistent and exists
// for tests and for stacking a hot tier in front of a disk backend.
type Memory struct {
	cache *lru.Cache[string, []byte]
}

// NewMemory creates an in-memory store bounded to capacity entries.
func NewMemory(capacity int) (*Memory, error) {
	cache, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Memory{cache: cache}, nil
}

func memoryKey(tag string, key []byte) string {
	return tag + memoryKeySep + fmt.Sprintf("%x", key)
}

func (m *Memory) Get(tag string, key []byte) ([]byte, bool, error) {
	value, ok := m.cache.Get(memoryKey(tag, key))
	return value, ok, nil
}

func (m *Memory) Set(tag string, key, value []byte) error {
	m.cache.Add(memoryKey(tag, key), value)
	return nil
}

func (m *Memory) DeleteTag(tag string) error {
	prefix := tag + memoryKeySep
	for _, k := range m.cache.Keys() {
		// The hex fingerprint after the separator can never contain
		// the separator itself, which keeps tags that are prefixes of
		// other tags (e.g. "a" vs "a:b") apart.
		if strings.HasPrefix(k, prefix) && !strings.Contains(k[len(prefix):], memoryKeySep) {
			m.cache.Remove(k)
		}
	}
	return nil
}

func (m *Memory) Close() error {
	m.cache.Purge()
	return nil
}
