package store

import (
	"context"
	"sync"

	"github.com/viant/sfxbot/service/dao"
)

// MemoryStore is a generic in-memory keyed store. Records are cloned on the
// way in and out, so callers never share state with the store; Update is the
// only way to mutate a stored record and it runs under the write lock, which
// makes it usable as a compare-and-set primitive.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	clone       func(*T) *T
}

// NewMemoryStore creates a new MemoryStore.
// keySelector extracts the entity key, clone copies an entity (nil means shallow copy).
func NewMemoryStore[K comparable, T any](keySelector func(*T) K, clone func(*T) *T) *MemoryStore[K, T] {
	if clone == nil {
		clone = func(v *T) *T {
			ret := *v
			return &ret
		}
	}
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
		clone:       clone,
	}
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = s.clone(v)
	return nil
}

// Create stores a record only when its key is not taken yet.
func (s *MemoryStore[K, T]) Create(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return dao.ErrExists
	}
	s.records[key] = s.clone(v)
	return nil
}

// Load returns a copy of a record or dao.ErrNotFound.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return s.clone(v), nil
}

// Update applies fn to a copy of the record and stores the copy when fn
// succeeds. Concurrent updates of the same key are serialised.
func (s *MemoryStore[K, T]) Update(_ context.Context, key K, fn dao.UpdateFunc[T]) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	candidate := s.clone(v)
	if err := fn(candidate); err != nil {
		return nil, err
	}
	s.records[key] = candidate
	return s.clone(candidate), nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns copies of records accepted by filter (nil accepts all).
func (s *MemoryStore[K, T]) List(_ context.Context, filter func(*T) bool) []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		if filter != nil && !filter(v) {
			continue
		}
		out = append(out, s.clone(v))
	}
	return out
}

// Len returns number of stored records.
func (s *MemoryStore[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
