// README: In-memory vehicle store used by unit tests; preserves status guards.
package vehicle

import (
	"context"
	"sync"
	"time"

	"motorpool/internal/types"
)

type MemStore struct {
	mu       sync.RWMutex
	vehicles map[types.ID]*Vehicle
}

func NewMemStore() *MemStore {
	return &MemStore{vehicles: make(map[types.ID]*Vehicle)}
}

func (m *MemStore) Create(ctx context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *MemStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *MemStore) ListAvailable(ctx context.Context, vehicleType string) ([]*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Vehicle
	for _, v := range m.vehicles {
		if v.Status != StatusAvailable || v.Archived {
			continue
		}
		if vehicleType != "" && v.Type != vehicleType {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemStore) MarkInUse(ctx context.Context, id types.ID, userID types.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.Status != StatusAvailable {
		return false, nil
	}
	v.Status = StatusInUse
	t := at
	v.LastUsedAt = &t
	u := userID
	v.LastUserID = &u
	return true, nil
}

func (m *MemStore) Release(ctx context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vehicles[id]; ok && v.Status == StatusInUse {
		v.Status = StatusAvailable
	}
	return nil
}

func (m *MemStore) Freeze(ctx context.Context, id types.ID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	v.Status = StatusFrozen
	r := reason
	v.FreezeReason = &r
	return nil
}

func (m *MemStore) Unfreeze(ctx context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.Status != StatusFrozen {
		return ErrInvalidState
	}
	v.Status = StatusAvailable
	v.FreezeReason = nil
	return nil
}

func (m *MemStore) AddMileage(ctx context.Context, id types.ID, km float64) error {
	if km < 0 {
		return ErrValidation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	v.MileageKm += km
	return nil
}

func (m *MemStore) Archive(ctx context.Context, id types.ID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	v.Archived = true
	t := at
	v.ArchivedAt = &t
	return nil
}
