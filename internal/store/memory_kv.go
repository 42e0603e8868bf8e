package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV is a process-local substrate. It backs --backend=memory and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[Tier]map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[Tier]map[string][]byte{
		TierGlobal:    {},
		TierWorkspace: {},
	}}
}

func (m *MemoryKV) Get(ctx context.Context, tier Tier, key string) ([]byte, bool, error) {
	if !tier.valid() {
		return nil, false, errUnknownTier
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[tier][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(ctx context.Context, tier Tier, key string, value []byte) error {
	if !tier.valid() {
		return errUnknownTier
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tier][key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Keys(ctx context.Context, tier Tier) ([]string, error) {
	if !tier.valid() {
		return nil, errUnknownTier
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data[tier]))
	for k := range m.data[tier] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryKV) Backend() Backend { return BackendMemory }

func (m *MemoryKV) Close() error { return nil }
