// README: In-memory aggregate store used by unit tests.
package usage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("usage row not found")

type MemStore struct {
	mu   sync.RWMutex
	rows map[Key]MonthlyVehicleUsage
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[Key]MonthlyVehicleUsage)}
}

func (m *MemStore) Add(ctx context.Context, fact RideFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := Key{VehicleID: fact.VehicleID, Year: fact.Year, Month: fact.Month}
	row, ok := m.rows[k]
	if !ok {
		row = MonthlyVehicleUsage{VehicleID: fact.VehicleID, Year: fact.Year, Month: fact.Month}
	}
	row.TotalRides++
	row.TotalKm += fact.Km
	row.UsageHours += fact.Hours
	m.rows[k] = row
	return nil
}

func (m *MemStore) Put(ctx context.Context, row MonthlyVehicleUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[Key{VehicleID: row.VehicleID, Year: row.Year, Month: row.Month}] = row
	return nil
}

func (m *MemStore) Get(ctx context.Context, key Key) (*MonthlyVehicleUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := row
	return &cp, nil
}

func (m *MemStore) ListPeriod(ctx context.Context, year, month int) ([]MonthlyVehicleUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MonthlyVehicleUsage
	for k, row := range m.rows {
		if k.Year == year && k.Month == month {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out, nil
}
