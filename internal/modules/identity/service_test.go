// README: Policy gate and VIP resolution tests.
package identity

import (
	"context"
	"errors"
	"testing"

	"motorpool/internal/types"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		actor    Actor
		ownerID  types.ID
		elevated []Role
		want     error
	}{
		{"owner passes", Actor{UserID: "u1", Role: RoleEmployee}, "u1", nil, nil},
		{"stranger blocked", Actor{UserID: "u2", Role: RoleEmployee}, "u1", nil, ErrForbidden},
		{"admin overrides ownership", Actor{UserID: "u2", Role: RoleAdmin}, "u1", []Role{RoleAdmin}, nil},
		{"supervisor not elevated here", Actor{UserID: "u2", Role: RoleSupervisor}, "u1", []Role{RoleAdmin}, ErrForbidden},
		{"empty owner never matches", Actor{UserID: "", Role: RoleEmployee}, "", nil, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.ownerID, tc.elevated...)
			if !errors.Is(err, tc.want) && err != tc.want {
				t.Fatalf("Authorize = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	if err := RequireRole(Actor{Role: RoleSupervisor}, RoleSupervisor, RoleAdmin); err != nil {
		t.Fatalf("supervisor: %v", err)
	}
	if err := RequireRole(Actor{Role: RoleEmployee}, RoleSupervisor, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee: err = %v, want ErrForbidden", err)
	}
}

func TestIsVIP(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewService(store)

	vipDept, opsDept := types.ID("d_vip"), types.ID("d_ops")
	if err := store.CreateDepartment(ctx, &Department{ID: vipDept, Name: VIPDepartmentName}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.CreateDepartment(ctx, &Department{ID: opsDept, Name: "Operations"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedUser := func(id types.ID, dept *types.ID) {
		if err := store.CreateUser(ctx, &User{EmployeeID: id, Name: string(id), Role: RoleEmployee, DepartmentID: dept}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seedUser("vip", &vipDept)
	seedUser("ops", &opsDept)
	seedUser("lone", nil)

	cases := []struct {
		userID types.ID
		want   bool
	}{
		{"vip", true},
		{"ops", false},
		{"lone", false},
	}
	for _, tc := range cases {
		got, err := svc.IsVIP(ctx, tc.userID)
		if err != nil {
			t.Fatalf("IsVIP(%s): %v", tc.userID, err)
		}
		if got != tc.want {
			t.Errorf("IsVIP(%s) = %v, want %v", tc.userID, got, tc.want)
		}
	}

	if _, err := svc.IsVIP(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: err = %v, want ErrNotFound", err)
	}
}

func TestSetPendingRebook(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewService(store)

	if err := store.CreateUser(ctx, &User{EmployeeID: "u1", Name: "U"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.SetPendingRebook(ctx, "u1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	u, err := svc.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !u.HasPendingRebook {
		t.Fatal("rebook flag not set")
	}
}
