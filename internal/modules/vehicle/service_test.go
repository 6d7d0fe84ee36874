// README: Vehicle service tests (availability filtering, status guards).
package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"motorpool/internal/types"
)

// stubChecker marks a fixed set of vehicles as busy for any window.
type stubChecker struct {
	busy map[types.ID]bool
}

func (s *stubChecker) HasActiveOverlap(_ context.Context, vehicleID types.ID, _ types.Window) (bool, error) {
	return s.busy[vehicleID], nil
}

func seedVehicles(t *testing.T) *MemStore {
	t.Helper()
	store := NewMemStore()
	ctx := context.Background()
	for _, v := range []*Vehicle{
		{ID: "v1", PlateNumber: "AAA-111", Type: "sedan", Status: StatusAvailable},
		{ID: "v2", PlateNumber: "BBB-222", Type: "sedan", Status: StatusAvailable},
		{ID: "v3", PlateNumber: "CCC-333", Type: "4x4", Status: StatusAvailable},
		{ID: "v4", PlateNumber: "DDD-444", Type: "sedan", Status: StatusFrozen},
		{ID: "v5", PlateNumber: "EEE-555", Type: "sedan", Status: StatusAvailable, Archived: true},
	} {
		if err := store.Create(ctx, v); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func testWindow() types.Window {
	start := time.Now().Add(time.Hour)
	return types.Window{Start: start, End: start.Add(2 * time.Hour)}
}

func TestFindAvailableFiltersBusyAndFrozen(t *testing.T) {
	svc := NewService(seedVehicles(t))
	svc.SetOverlapChecker(&stubChecker{busy: map[types.ID]bool{"v1": true}})

	got, err := svc.FindAvailable(context.Background(), testWindow(), "")
	if err != nil {
		t.Fatalf("find available: %v", err)
	}
	ids := make(map[types.ID]bool, len(got))
	for _, v := range got {
		ids[v.ID] = true
	}
	// v1 busy, v4 frozen, v5 archived.
	if len(got) != 2 || !ids["v2"] || !ids["v3"] {
		t.Fatalf("available = %v, want v2 and v3", ids)
	}
}

func TestFindAvailableByType(t *testing.T) {
	svc := NewService(seedVehicles(t))
	svc.SetOverlapChecker(&stubChecker{busy: map[types.ID]bool{}})

	got, err := svc.FindAvailable(context.Background(), testWindow(), "4x4")
	if err != nil {
		t.Fatalf("find available: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v3" {
		t.Fatalf("available 4x4 = %+v, want only v3", got)
	}
}

func TestFindAvailableRejectsInvalidWindow(t *testing.T) {
	svc := NewService(seedVehicles(t))
	w := types.Window{Start: time.Now(), End: time.Now().Add(-time.Hour)}
	if _, err := svc.FindAvailable(context.Background(), w, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted window: err = %v, want ErrValidation", err)
	}
}

func TestMarkInUseGuard(t *testing.T) {
	svc := NewService(seedVehicles(t))
	ctx := context.Background()

	if err := svc.MarkInUse(ctx, "v1", "u1", time.Now()); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	err := svc.MarkInUse(ctx, "v1", "u2", time.Now())
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second mark: err = %v, want ErrInvalidState", err)
	}

	if err := svc.Release(ctx, "v1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := svc.MarkInUse(ctx, "v1", "u2", time.Now()); err != nil {
		t.Fatalf("mark after release: %v", err)
	}
}

func TestMarkInUseFrozenVehicle(t *testing.T) {
	svc := NewService(seedVehicles(t))
	err := svc.MarkInUse(context.Background(), "v4", "u1", time.Now())
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("frozen vehicle: err = %v, want ErrInvalidState", err)
	}
}

func TestFreezeUnfreezeCycle(t *testing.T) {
	svc := NewService(seedVehicles(t))
	ctx := context.Background()

	if err := svc.Freeze(ctx, "v1", "accident"); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	v, _ := svc.Get(ctx, "v1")
	if v.Status != StatusFrozen || v.FreezeReason == nil || *v.FreezeReason != "accident" {
		t.Fatalf("after freeze: %+v", v)
	}

	if err := svc.Unfreeze(ctx, "v1"); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}
	v, _ = svc.Get(ctx, "v1")
	if v.Status != StatusAvailable || v.FreezeReason != nil {
		t.Fatalf("after unfreeze: %+v", v)
	}

	// Unfreezing an available vehicle is a state error.
	if err := svc.Unfreeze(ctx, "v1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double unfreeze: err = %v, want ErrInvalidState", err)
	}
}

func TestFreezeRequiresReason(t *testing.T) {
	svc := NewService(seedVehicles(t))
	if err := svc.Freeze(context.Background(), "v1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty reason: err = %v, want ErrValidation", err)
	}
}

func TestMileageNeverDecreases(t *testing.T) {
	svc := NewService(seedVehicles(t))
	ctx := context.Background()

	if err := svc.AddMileage(ctx, "v1", 120.5); err != nil {
		t.Fatalf("add mileage: %v", err)
	}
	if err := svc.AddMileage(ctx, "v1", -10); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative mileage: err = %v, want ErrValidation", err)
	}
	v, _ := svc.Get(ctx, "v1")
	if v.MileageKm != 120.5 {
		t.Fatalf("mileage = %v, want 120.5", v.MileageKm)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemStore())
	err := svc.Create(context.Background(), &Vehicle{ID: "x", Type: "sedan"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("missing plate: err = %v, want ErrValidation", err)
	}
}
