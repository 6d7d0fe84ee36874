// README: In-memory store used by unit tests.
package identity

import (
	"context"
	"sync"

	"motorpool/internal/types"
)

type MemStore struct {
	mu    sync.RWMutex
	users map[types.ID]*User
	depts map[types.ID]*Department
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[types.ID]*User),
		depts: make(map[types.ID]*Department),
	}
}

func (m *MemStore) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.EmployeeID] = &cp
	return nil
}

func (m *MemStore) GetUser(ctx context.Context, id types.ID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) SetPendingRebook(ctx context.Context, id types.ID, pending bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.HasPendingRebook = pending
	return nil
}

func (m *MemStore) ListSupervisors(ctx context.Context, departmentID types.ID) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*User
	for _, u := range m.users {
		if u.Role == RoleSupervisor && u.DepartmentID != nil && *u.DepartmentID == departmentID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*User
	for _, u := range m.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) CreateDepartment(ctx context.Context, d *Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.depts[d.ID] = &cp
	return nil
}

func (m *MemStore) GetDepartment(ctx context.Context, id types.ID) (*Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.depts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}
