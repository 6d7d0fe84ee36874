// README: Vehicle service: availability checks against active ride windows, freeze/archive.
package vehicle

import (
	"context"
	"errors"
	"time"

	"motorpool/internal/types"
)

var (
	ErrNotFound     = errors.New("vehicle not found")
	ErrInvalidState = errors.New("invalid vehicle state")
	ErrValidation   = errors.New("invalid vehicle input")
)

// OverlapChecker answers whether a vehicle already has an approved or
// in-progress ride whose window intersects w. Implemented by the ride module.
type OverlapChecker interface {
	HasActiveOverlap(ctx context.Context, vehicleID types.ID, w types.Window) (bool, error)
}

type Service struct {
	store    Store
	overlaps OverlapChecker
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SetOverlapChecker wires the ride module in after construction; both
// services need each other and the ride side owns the windows.
func (s *Service) SetOverlapChecker(c OverlapChecker) {
	s.overlaps = c
}

func (s *Service) Create(ctx context.Context, v *Vehicle) error {
	if v.PlateNumber == "" || v.Type == "" {
		return ErrValidation
	}
	if v.Status == "" {
		v.Status = StatusAvailable
	}
	return s.store.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

// FindAvailable returns vehicles in status available with no active ride
// overlapping the requested window. Read-only; approvals must re-validate
// inside their own transition.
func (s *Service) FindAvailable(ctx context.Context, w types.Window, vehicleType string) ([]*Vehicle, error) {
	if !w.Valid() {
		return nil, ErrValidation
	}
	candidates, err := s.store.ListAvailable(ctx, vehicleType)
	if err != nil {
		return nil, err
	}
	if s.overlaps == nil {
		return candidates, nil
	}
	free := make([]*Vehicle, 0, len(candidates))
	for _, v := range candidates {
		busy, err := s.overlaps.HasActiveOverlap(ctx, v.ID, w)
		if err != nil {
			return nil, err
		}
		if !busy {
			free = append(free, v)
		}
	}
	return free, nil
}

func (s *Service) MarkInUse(ctx context.Context, id types.ID, userID types.ID, at time.Time) error {
	ok, err := s.store.MarkInUse(ctx, id, userID, at)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

func (s *Service) Release(ctx context.Context, id types.ID) error {
	return s.store.Release(ctx, id)
}

func (s *Service) Freeze(ctx context.Context, id types.ID, reason string) error {
	if reason == "" {
		return ErrValidation
	}
	return s.store.Freeze(ctx, id, reason)
}

func (s *Service) Unfreeze(ctx context.Context, id types.ID) error {
	return s.store.Unfreeze(ctx, id)
}

func (s *Service) AddMileage(ctx context.Context, id types.ID, km float64) error {
	return s.store.AddMileage(ctx, id, km)
}

func (s *Service) Archive(ctx context.Context, id types.ID) error {
	return s.store.Archive(ctx, id, time.Now())
}
