package store

import (
	"context"
	"sync"
)

// MemoryStore keeps tables in process memory. Used by tests and the memory backend.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*Table
	// FailLoad and FailSave inject per-table errors.
	FailLoad map[string]error
	FailSave map[string]error
}

func NewMemoryStore(tables ...*Table) *MemoryStore {
	m := &MemoryStore{tables: make(map[string]*Table)}
	for _, t := range tables {
		m.tables[t.Name] = t.Clone()
	}
	return m
}

func (m *MemoryStore) LoadTable(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailLoad[name]; err != nil {
		return nil, err
	}
	t, ok := m.tables[name]
	if !ok {
		return &Table{Name: name}, nil
	}
	return t.Clone(), nil
}

func (m *MemoryStore) SaveTable(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailSave[t.Name]; err != nil {
		return err
	}
	m.tables[t.Name] = t.Clone()
	return nil
}
