package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/serroba/url-shortener-go/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[shortener.Code]*shortener.Mapping
	byHash map[shortener.URLHash]*shortener.Mapping
	order  []*shortener.Mapping
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode: make(map[shortener.Code]*shortener.Mapping),
		byHash: make(map[shortener.URLHash]*shortener.Mapping),
	}
}

func (m *MemoryStore) Insert(_ context.Context, mapping shortener.Mapping) (*shortener.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byCode[mapping.Code]; ok {
		return nil, fmt.Errorf("code %q: %w", mapping.Code, shortener.ErrDuplicateCode)
	}

	if mapping.URLHash != "" {
		if _, ok := m.byHash[mapping.URLHash]; ok {
			return nil, shortener.ErrDuplicateURL
		}
	}

	m.nextID++
	mapping.ID = m.nextID

	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}

	stored := &mapping
	m.byCode[mapping.Code] = stored
	m.order = append(m.order, stored)

	if mapping.URLHash != "" {
		m.byHash[mapping.URLHash] = stored
	}

	return copyOf(stored), nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return copyOf(mapping), nil
}

func (m *MemoryStore) FindByURL(_ context.Context, hash shortener.URLHash) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.byHash[hash]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return copyOf(mapping), nil
}

// List returns up to limit mappings, newest first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.order))
	result := make([]*shortener.Mapping, 0, max(n, 0))

	for i := len(m.order) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, copyOf(m.order[i]))
	}

	return result, nil
}

func copyOf(mapping *shortener.Mapping) *shortener.Mapping {
	c := *mapping
	return &c
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
