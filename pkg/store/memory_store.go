package store

import (
	"context"
	"sync"

	"guestbook/pkg/domain"
)

// MemoryStore keeps entries in-process. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []domain.Entry // ascending by ID
	lastID  int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertEntry assigns the next id. Ids are never handed out twice, even after
// the newest entry is deleted.
func (m *MemoryStore) InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return domain.Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	e.ID = m.lastID
	m.entries = append(m.entries, e)
	return e, nil
}

// ListEntries returns a copy of the entries, newest first.
func (m *MemoryStore) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		res = append(res, m.entries[i])
	}
	return res, nil
}

// DeleteEntry removes the entry if present.
func (m *MemoryStore) DeleteEntry(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}
