package storage

import "sync"

// MemoryKV is an in-process KV, used by tests and throwaway sessions.
type MemoryKV struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string]string)}
}

func (m *MemoryKV) Get(slot string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[slot]
	return v, ok, nil
}

func (m *MemoryKV) Put(slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = value
	return nil
}

func (m *MemoryKV) Close() error { return nil }
