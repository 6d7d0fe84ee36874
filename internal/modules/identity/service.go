// README: Directory service: lookups, VIP resolution and the uniform policy gate.
package identity

import (
	"context"
	"errors"

	"motorpool/internal/types"
)

var (
	ErrNotFound  = errors.New("user or department not found")
	ErrForbidden = errors.New("actor not permitted")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetUser(ctx context.Context, id types.ID) (*User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) GetDepartment(ctx context.Context, id types.ID) (*Department, error) {
	return s.store.GetDepartment(ctx, id)
}

func (s *Service) Supervisors(ctx context.Context, departmentID types.ID) ([]*User, error) {
	return s.store.ListSupervisors(ctx, departmentID)
}

func (s *Service) Admins(ctx context.Context) ([]*User, error) {
	return s.store.ListByRole(ctx, RoleAdmin)
}

func (s *Service) SetPendingRebook(ctx context.Context, userID types.ID, pending bool) error {
	return s.store.SetPendingRebook(ctx, userID, pending)
}

// IsVIP resolves the bypass-approval capability once per request from the
// requester's department name.
func (s *Service) IsVIP(ctx context.Context, userID types.ID) (bool, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.DepartmentID == nil {
		return false, nil
	}
	d, err := s.store.GetDepartment(ctx, *u.DepartmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return d.Name == VIPDepartmentName, nil
}

// Authorize passes when the actor owns the resource or holds one of the
// elevated roles. Every state-changing operation goes through here.
func Authorize(actor Actor, ownerID types.ID, elevated ...Role) error {
	if actor.UserID == ownerID && ownerID != "" {
		return nil
	}
	for _, r := range elevated {
		if actor.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireRole passes only when the actor holds one of the given roles,
// regardless of resource ownership.
func RequireRole(actor Actor, roles ...Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
