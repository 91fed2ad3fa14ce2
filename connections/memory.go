package connections

import (
	"context"
	"sync"
	"time"
)

// Memory is an in process connection store for the local gateway. Rows
// expire after TTL seconds, like the table's ttl attribute.
type Memory struct {
	TTL int64

	mu      sync.Mutex
	rows    map[string]int64
	nowFunc func() time.Time
}

// NewMemory returns an empty store. A ttl <= 0 uses DefaultTTL.
func NewMemory(ttl int64) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{TTL: ttl, rows: map[string]int64{}}
}

func (m *Memory) now() time.Time {
	if m.nowFunc != nil {
		return m.nowFunc()
	}

	return time.Now()
}

// Put records id.
func (m *Memory) Put(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[id] = m.now().Unix() + m.TTL
	return nil
}

// Delete forgets id. Deleting an unknown id is not an error.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, id)
	return nil
}

// Exists reports whether id is stored and unexpired.
func (m *Memory) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expire, ok := m.rows[id]
	return ok && m.now().Unix() <= expire, nil
}
