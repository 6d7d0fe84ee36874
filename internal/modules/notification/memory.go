// README: In-memory notification store used by unit tests.
package notification

import (
	"context"
	"sort"
	"sync"

	"motorpool/internal/types"
)

type MemStore struct {
	mu   sync.RWMutex
	rows []*Notification
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Insert(ctx context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *MemStore) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Notification
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			cp := *m.rows[i]
			out = append(out, &cp)
		}
	}
	// Ties on SentAt keep reverse insertion order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
