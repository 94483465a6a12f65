package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"airlinesim"
)

// MemoryStore keeps documents in process memory. Used by tests and dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[collection][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, airlinesim.ErrNotFound)
	}
	return slices.Clone(doc), nil
}

func (m *MemoryStore) Put(ctx context.Context, collection, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string][]byte)
	}
	m.docs[collection][key] = slices.Clone(doc)
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, q Query) ([][]byte, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.docs[collection]))
	for k := range m.docs[collection] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	docs := make([][]byte, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, slices.Clone(m.docs[collection][k]))
	}
	m.mu.RUnlock()

	return q.apply(docs), nil
}
