// README: In-memory ride store used by unit tests; CAS semantics match the SQL store.
package ride

import (
	"context"
	"sync"
	"time"

	"motorpool/internal/types"
)

type MemStore struct {
	mu          sync.RWMutex
	rides       map[types.ID]*Ride
	events      []*Event
	noShows     []*NoShowEvent
	nextEventID int64
}

func NewMemStore() *MemStore {
	return &MemStore{rides: make(map[types.ID]*Ride)}
}

func (m *MemStore) Create(ctx context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *MemStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	if patch.PickupAt != nil {
		r.ActualPickupAt = patch.PickupAt
	}
	if patch.ActualKm != nil {
		r.ActualKm = patch.ActualKm
	}
	if patch.CompletionDate != nil {
		r.CompletionDate = patch.CompletionDate
	}
	if patch.EmergencyEvent != nil {
		r.EmergencyEvent = patch.EmergencyEvent
	}
	if patch.CancelReason != nil {
		r.CancelReason = patch.CancelReason
	}
	return true, nil
}

func (m *MemStore) Replace(ctx context.Context, r *Ride) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rides[r.ID]
	if !ok || cur.StatusVersion != r.StatusVersion {
		return false, nil
	}
	cp := *r
	cp.StatusVersion++
	m.rides[r.ID] = &cp
	return true, nil
}

func (m *MemStore) ListActiveByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		if r.VehicleID != nil && *r.VehicleID == vehicleID && r.Status.IsActive() {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) ListOpenByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		if r.VehicleID == nil || *r.VehicleID != vehicleID {
			continue
		}
		switch r.Status {
		case StatusPending, StatusApproved, StatusInProgress:
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) ListByStatus(ctx context.Context, statuses ...Status) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		for _, st := range statuses {
			if r.Status == st {
				cp := *r
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *MemStore) ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		if (r.Status == StatusPending || r.Status == StatusApproved) &&
			r.Window.Start.Before(cutoff) && r.ActualPickupAt == nil {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) ListCompletedInMonth(ctx context.Context, year, month int) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		if r.Status != StatusCompleted || r.CompletionDate == nil {
			continue
		}
		if r.CompletionDate.Year() == year && int(r.CompletionDate.Month()) == month {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) AppendEvent(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	cp := *e
	cp.ID = m.nextEventID
	m.events = append(m.events, &cp)
	return nil
}

func (m *MemStore) InsertNoShow(ctx context.Context, e *NoShowEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.noShows = append(m.noShows, &cp)
	return nil
}

// NoShows exposes the append-only log for tests.
func (m *MemStore) NoShows() []*NoShowEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*NoShowEvent, len(m.noShows))
	copy(out, m.noShows)
	return out
}

// Events exposes the audit trail for tests.
func (m *MemStore) Events() []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}
