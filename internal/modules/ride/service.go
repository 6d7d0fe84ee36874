// README: Ride service implements the booking state machine and its side effects.
package ride

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"motorpool/internal/modules/email"
	"motorpool/internal/modules/identity"
	"motorpool/internal/modules/notification"
	"motorpool/internal/modules/usage"
	"motorpool/internal/modules/vehicle"
	"motorpool/internal/scheduler"
	"motorpool/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrInvalidState = errors.New("invalid ride state transition")
	ErrConflict     = errors.New("ride state conflict")
	ErrValidation   = errors.New("invalid ride input")
)

// Vehicles is the slice of the vehicle module the state machine needs.
type Vehicles interface {
	Get(ctx context.Context, id types.ID) (*vehicle.Vehicle, error)
	MarkInUse(ctx context.Context, id types.ID, userID types.ID, at time.Time) error
	Release(ctx context.Context, id types.ID) error
	Freeze(ctx context.Context, id types.ID, reason string) error
	AddMileage(ctx context.Context, id types.ID, km float64) error
}

// Directory resolves users, departments and the VIP bypass capability.
type Directory interface {
	GetUser(ctx context.Context, id types.ID) (*identity.User, error)
	IsVIP(ctx context.Context, userID types.ID) (bool, error)
	Supervisors(ctx context.Context, departmentID types.ID) ([]*identity.User, error)
	Admins(ctx context.Context) ([]*identity.User, error)
	SetPendingRebook(ctx context.Context, userID types.ID, pending bool) error
}

// Notifier persists a notification and pushes it; failures stay inside the
// notification module.
type Notifier interface {
	Notify(ctx context.Context, req notification.Request) (*notification.Notification, error)
}

// Mailer dispatches a transactional email without blocking the caller.
type Mailer interface {
	SendAsync(kind email.Kind, rcpt email.Recipient, data map[string]any, rideID *types.ID)
}

// UsageRecorder feeds completed rides into the monthly aggregate.
type UsageRecorder interface {
	RecordCompletedRide(ctx context.Context, fact usage.RideFact) error
}

// DistanceEstimator guesses the trip length from the route endpoints.
// Optional; rides fall back to the requester's estimate.
type DistanceEstimator interface {
	EstimateKm(ctx context.Context, origin, destination string) (float64, error)
}

type Service struct {
	store     Store
	vehicles  Vehicles
	directory Directory
	notifier  Notifier
	mailer    Mailer
	usage     UsageRecorder
	sched     scheduler.Scheduler
	estimator DistanceEstimator
	log       *logrus.Logger

	noShowGrace time.Duration

	// vehMu serializes the availability check with the commit for rides
	// competing over one vehicle. The database backs this up with an
	// exclusion constraint on active ride windows.
	vehMu sync.Map
}

type Deps struct {
	Store     Store
	Vehicles  Vehicles
	Directory Directory
	Notifier  Notifier
	Mailer    Mailer
	Usage     UsageRecorder
	Scheduler scheduler.Scheduler
	Estimator DistanceEstimator
	Log       *logrus.Logger

	NoShowGrace time.Duration
}

func NewService(d Deps) *Service {
	if d.NoShowGrace <= 0 {
		d.NoShowGrace = 2 * time.Hour
	}
	if d.Log == nil {
		d.Log = logrus.New()
	}
	return &Service{
		store:       d.Store,
		vehicles:    d.Vehicles,
		directory:   d.Directory,
		notifier:    d.Notifier,
		mailer:      d.Mailer,
		usage:       d.Usage,
		sched:       d.Scheduler,
		estimator:   d.Estimator,
		log:         d.Log,
		noShowGrace: d.NoShowGrace,
	}
}

type CreateCommand struct {
	Actor            identity.Actor
	OverrideUserID   *types.ID
	VehicleID        *types.ID
	Type             Type
	Window           types.Window
	StartLocation    string
	StopLocation     string
	EstimatedKm      float64
	ExtendedReason   *string
	FourByFourReason *string
}

// Create submits a ride request. VIP-department requesters with a free
// vehicle skip the approval gate.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.Type != TypeAdministrative && cmd.Type != TypeOperational {
		return "", ErrValidation
	}
	if !cmd.Window.Valid() {
		return "", ErrValidation
	}

	r := &Ride{
		ID:               types.ID(uuid.NewString()),
		RequesterID:      cmd.Actor.UserID,
		OverrideUserID:   cmd.OverrideUserID,
		VehicleID:        cmd.VehicleID,
		Type:             cmd.Type,
		Window:           cmd.Window,
		StartLocation:    cmd.StartLocation,
		StopLocation:     cmd.StopLocation,
		EstimatedKm:      cmd.EstimatedKm,
		Status:           StatusPending,
		SubmittedAt:      time.Now(),
		ExtendedReason:   cmd.ExtendedReason,
		FourByFourReason: cmd.FourByFourReason,
	}
	if err := s.checkReasonGuards(ctx, r); err != nil {
		return "", err
	}
	if r.VehicleID != nil {
		unlock := s.lockVehicle(*r.VehicleID)
		defer unlock()
		if err := s.checkVehicleFree(ctx, *r.VehicleID, r.Window, ""); err != nil {
			return "", err
		}
	}
	if s.estimator != nil && r.StartLocation != "" && r.StopLocation != "" {
		if km, err := s.estimator.EstimateKm(ctx, r.StartLocation, r.StopLocation); err == nil {
			r.EstimatedKm = km
		}
	}

	vip, err := s.directory.IsVIP(ctx, cmd.Actor.UserID)
	if err != nil && !errors.Is(err, identity.ErrNotFound) {
		return "", err
	}
	if vip && r.VehicleID != nil {
		r.Status = StatusApproved
	}

	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	s.appendEvent(ctx, r.ID, StatusNone, r.Status, "requester", &cmd.Actor.UserID)

	if r.Status == StatusApproved {
		s.scheduleRideJobs(r)
	}
	s.notifyRider(ctx, r, "Ride request submitted",
		fmt.Sprintf("Your ride from %s to %s was submitted.", r.StartLocation, r.StopLocation), nil)
	s.mailRider(ctx, r, email.KindRideCreated, nil)
	s.notifySupervisors(ctx, r, r.RequesterID, "Ride awaiting approval",
		fmt.Sprintf("Ride %s is awaiting approval.", r.ID))
	return r.ID, nil
}

type ApproveCommand struct {
	RideID    types.ID
	Actor     identity.Actor
	VehicleID *types.ID
}

// Approve moves pending -> approved. The vehicle's availability is
// re-validated here; the earlier read-only check at creation does not count.
func (s *Service) Approve(ctx context.Context, cmd ApproveCommand) error {
	if err := identity.RequireRole(cmd.Actor, identity.RoleSupervisor, identity.RoleAdmin); err != nil {
		return err
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusApproved) {
		return ErrInvalidState
	}
	if cmd.VehicleID != nil {
		r.VehicleID = cmd.VehicleID
	}
	if r.VehicleID == nil {
		return ErrValidation
	}
	if err := s.checkReasonGuards(ctx, r); err != nil {
		return err
	}
	unlock := s.lockVehicle(*r.VehicleID)
	defer unlock()
	if err := s.checkVehicleFree(ctx, *r.VehicleID, r.Window, r.ID); err != nil {
		return err
	}

	if cmd.VehicleID != nil {
		// Persist the assignment together with the status flip.
		r.Status = StatusApproved
		ok, err := s.store.Replace(ctx, r)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
	} else {
		ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusApproved, r.StatusVersion, StatusPatch{})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
	}
	s.appendEvent(ctx, r.ID, StatusPending, StatusApproved, "supervisor", &cmd.Actor.UserID)

	r.Status = StatusApproved
	s.scheduleRideJobs(r)
	s.notifyRider(ctx, r, "Ride approved",
		fmt.Sprintf("Your ride %s was approved.", r.ID), nil)
	s.mailRider(ctx, r, email.KindRideApproved, nil)
	return nil
}

type RejectCommand struct {
	RideID types.ID
	Actor  identity.Actor
	Reason string
}

func (s *Service) Reject(ctx context.Context, cmd RejectCommand) error {
	if err := identity.RequireRole(cmd.Actor, identity.RoleSupervisor, identity.RoleAdmin); err != nil {
		return err
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusRejected) {
		return ErrInvalidState
	}
	reason := cmd.Reason
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusRejected, r.StatusVersion, StatusPatch{CancelReason: &reason})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.appendEvent(ctx, r.ID, r.Status, StatusRejected, "supervisor", &cmd.Actor.UserID)

	s.notifyRider(ctx, r, "Ride rejected",
		fmt.Sprintf("Your ride %s was rejected: %s", r.ID, reason), nil)
	s.mailRider(ctx, r, email.KindRideRejected, map[string]any{"reason": reason})
	return nil
}

type StartCommand struct {
	RideID types.ID
	// ActorID is empty for the scheduled auto-start.
	ActorID types.ID
}

// Start moves approved -> in_progress once the window has opened. The
// vehicle flip is the first commit: its available -> in_use guard loses
// cleanly when another ride got there first.
func (s *Service) Start(ctx context.Context, cmd StartCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusInProgress) {
		return ErrInvalidState
	}
	if r.VehicleID == nil {
		return ErrInvalidState
	}
	now := time.Now()
	if now.Before(r.Window.Start) {
		return ErrInvalidState
	}

	rider := r.Rider()
	if err := s.vehicles.MarkInUse(ctx, *r.VehicleID, rider, now); err != nil {
		return err
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusInProgress, r.StatusVersion, StatusPatch{PickupAt: &now})
	if err == nil && !ok {
		err = ErrConflict
	}
	if err != nil {
		// Losing the ride CAS means another transition won; hand the
		// vehicle back.
		if relErr := s.vehicles.Release(ctx, *r.VehicleID); relErr != nil {
			s.log.WithError(relErr).WithField("vehicle_id", *r.VehicleID).Error("vehicle release failed")
		}
		return err
	}

	actorType, actorID := "system", (*types.ID)(nil)
	if cmd.ActorID != "" {
		actorType, actorID = "rider", &cmd.ActorID
	}
	s.appendEvent(ctx, r.ID, StatusApproved, StatusInProgress, actorType, actorID)
	return nil
}

type CompleteCommand struct {
	RideID         types.ID
	Actor          identity.Actor
	ActualKm       *float64
	EmergencyEvent *string
	Feedback       bool
}

// Complete finishes the ride from the trip form. Mileage moves by the
// actual distance when reported, the estimate otherwise, and never down.
// An emergency event freezes the vehicle and alerts the department's
// supervisors.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if err := identity.Authorize(cmd.Actor, r.Rider(), identity.RoleAdmin); err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusCompleted) {
		return ErrInvalidState
	}
	if cmd.ActualKm != nil && *cmd.ActualKm < 0 {
		return ErrValidation
	}

	now := time.Now()
	patch := StatusPatch{
		ActualKm:       cmd.ActualKm,
		CompletionDate: &now,
		EmergencyEvent: cmd.EmergencyEvent,
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusCompleted, r.StatusVersion, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.appendEvent(ctx, r.ID, StatusInProgress, StatusCompleted, "rider", &cmd.Actor.UserID)
	s.cancelRideJobs(r.ID)

	distance := r.EstimatedKm
	if cmd.ActualKm != nil {
		distance = *cmd.ActualKm
	}
	if r.VehicleID != nil {
		if err := s.vehicles.AddMileage(ctx, *r.VehicleID, distance); err != nil {
			s.log.WithError(err).WithField("vehicle_id", *r.VehicleID).Error("mileage update failed")
		}
		if cmd.EmergencyEvent != nil && *cmd.EmergencyEvent != "" {
			if err := s.vehicles.Freeze(ctx, *r.VehicleID, vehicle.FreezeReasonAccident); err != nil {
				s.log.WithError(err).WithField("vehicle_id", *r.VehicleID).Error("vehicle freeze failed")
			}
			s.alertSupervisorsOfEmergency(ctx, r, *cmd.EmergencyEvent)
		} else {
			if err := s.vehicles.Release(ctx, *r.VehicleID); err != nil {
				s.log.WithError(err).WithField("vehicle_id", *r.VehicleID).Error("vehicle release failed")
			}
		}
	}

	if s.usage != nil && r.VehicleID != nil {
		hours := r.Window.Duration().Hours()
		if r.ActualPickupAt != nil {
			hours = now.Sub(*r.ActualPickupAt).Hours()
		}
		fact := usage.RideFact{
			VehicleID: *r.VehicleID,
			Year:      now.Year(),
			Month:     int(now.Month()),
			Km:        distance,
			Hours:     hours,
		}
		if err := s.usage.RecordCompletedRide(ctx, fact); err != nil {
			s.log.WithError(err).WithField("ride_id", r.ID).Error("usage record failed")
		}
	}

	s.notifyRider(ctx, r, "Ride completed",
		fmt.Sprintf("Your ride %s is complete.", r.ID), nil)
	s.mailRider(ctx, r, email.KindRideCompleted, nil)
	return nil
}

type CancelCommand struct {
	RideID types.ID
	Actor  identity.Actor
	Reason string
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if err := identity.Authorize(cmd.Actor, r.RequesterID, identity.RoleSupervisor, identity.RoleAdmin); err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return ErrInvalidState
	}
	reason := cmd.Reason
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusCancelled, r.StatusVersion, StatusPatch{CancelReason: &reason})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.appendEvent(ctx, r.ID, r.Status, StatusCancelled, "requester", &cmd.Actor.UserID)
	s.cancelRideJobs(r.ID)

	s.notifyRider(ctx, r, "Ride cancelled",
		fmt.Sprintf("Your ride %s was cancelled: %s", r.ID, reason), nil)
	s.mailRider(ctx, r, email.KindRideCancelled, map[string]any{"reason": reason})
	return nil
}

type UpdateCommand struct {
	Actor            identity.Actor
	RideID           types.ID
	OverrideUserID   *types.ID
	VehicleID        *types.ID
	Type             Type
	Window           types.Window
	StartLocation    string
	StopLocation     string
	EstimatedKm      float64
	ExtendedReason   *string
	FourByFourReason *string
}

// Update edits a ride request. Once approved a ride is locked, except for
// VIP-department requesters whose edits re-approve automatically.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if err := identity.Authorize(cmd.Actor, r.RequesterID, identity.RoleAdmin); err != nil {
		return err
	}
	if !cmd.Window.Valid() {
		return ErrValidation
	}

	vip, err := s.directory.IsVIP(ctx, r.RequesterID)
	if err != nil && !errors.Is(err, identity.ErrNotFound) {
		return err
	}
	switch r.Status {
	case StatusPending:
	case StatusApproved:
		if !vip {
			return ErrInvalidState
		}
	default:
		return ErrInvalidState
	}

	if cmd.Type != TypeAdministrative && cmd.Type != TypeOperational {
		return ErrValidation
	}
	r.OverrideUserID = cmd.OverrideUserID
	r.VehicleID = cmd.VehicleID
	r.Type = cmd.Type
	r.Window = cmd.Window
	r.StartLocation = cmd.StartLocation
	r.StopLocation = cmd.StopLocation
	r.EstimatedKm = cmd.EstimatedKm
	r.ExtendedReason = cmd.ExtendedReason
	r.FourByFourReason = cmd.FourByFourReason
	if err := s.checkReasonGuards(ctx, r); err != nil {
		return err
	}
	if r.VehicleID != nil {
		unlock := s.lockVehicle(*r.VehicleID)
		defer unlock()
		if err := s.checkVehicleFree(ctx, *r.VehicleID, r.Window, r.ID); err != nil {
			return err
		}
	}
	prev := r.Status
	if vip && r.VehicleID != nil {
		r.Status = StatusApproved
	}

	ok, err := s.store.Replace(ctx, r)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if prev == StatusPending && r.Status == StatusApproved {
		// The VIP auto-approve is a real transition and stays on the
		// audit trail like any supervisor approval.
		s.appendEvent(ctx, r.ID, StatusPending, StatusApproved, "requester", &cmd.Actor.UserID)
		s.notifyRider(ctx, r, "Ride approved",
			fmt.Sprintf("Your ride %s was approved.", r.ID), nil)
		s.mailRider(ctx, r, email.KindRideApproved, nil)
	}
	if r.Status == StatusApproved {
		// Edited start time replaces any pending jobs for this ride.
		s.scheduleRideJobs(r)
	}
	return nil
}

// HandleVehicleUnavailable freezes a vehicle and cancels its future rides.
// Riders are flagged for rebooking and told exactly once.
func (s *Service) HandleVehicleUnavailable(ctx context.Context, vehicleID types.ID, actor identity.Actor, reason string) error {
	if err := identity.RequireRole(actor, identity.RoleAdmin); err != nil {
		return err
	}
	if err := s.vehicles.Freeze(ctx, vehicleID, reason); err != nil {
		return err
	}
	rides, err := s.store.ListOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, r := range rides {
		if !r.Window.Start.After(now) {
			continue
		}
		if !CanTransition(r.Status, StatusVehicleGone) {
			continue
		}
		ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusVehicleGone, r.StatusVersion, StatusPatch{CancelReason: &reason})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		s.appendEvent(ctx, r.ID, r.Status, StatusVehicleGone, "admin", &actor.UserID)
		s.cancelRideJobs(r.ID)
		rider := r.Rider()
		if err := s.directory.SetPendingRebook(ctx, rider, true); err != nil {
			s.log.WithError(err).WithField("user_id", rider).Warn("rebook flag update failed")
		}
		s.notifyRider(ctx, r, "Vehicle unavailable",
			fmt.Sprintf("The vehicle for ride %s became unavailable; please rebook.", r.ID), &vehicleID)
		s.mailRider(ctx, r, email.KindRideCancelled, map[string]any{"reason": "vehicle unavailable"})
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

// HasActiveOverlap serves the availability checker: does this vehicle have
// an approved or in-progress ride whose closed window intersects w?
func (s *Service) HasActiveOverlap(ctx context.Context, vehicleID types.ID, w types.Window) (bool, error) {
	rides, err := s.store.ListActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	for _, r := range rides {
		if r.Window.Overlaps(w) {
			return true, nil
		}
	}
	return false, nil
}

// AvailableVehicles lists vehicles free for an approved ride's window.
type AvailabilityFinder interface {
	FindAvailable(ctx context.Context, w types.Window, vehicleType string) ([]*vehicle.Vehicle, error)
}

func (s *Service) AvailableVehicles(ctx context.Context, rideID types.ID, finder AvailabilityFinder, vehicleType string) ([]*vehicle.Vehicle, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusApproved {
		return nil, ErrInvalidState
	}
	return finder.FindAvailable(ctx, r.Window, vehicleType)
}

// lockVehicle takes the per-vehicle critical section and returns the unlock.
func (s *Service) lockVehicle(id types.ID) func() {
	v, _ := s.vehMu.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// checkReasonGuards enforces the conditional required-reason fields.
func (s *Service) checkReasonGuards(ctx context.Context, r *Ride) error {
	if r.Window.Duration() >= ExtendedRideThreshold {
		if r.ExtendedReason == nil || *r.ExtendedReason == "" {
			return ErrValidation
		}
	}
	if r.VehicleID != nil {
		v, err := s.vehicles.Get(ctx, *r.VehicleID)
		if err != nil {
			return err
		}
		if isFourByFour(v.Type) && (r.FourByFourReason == nil || *r.FourByFourReason == "") {
			return ErrValidation
		}
	}
	return nil
}

// checkVehicleFree re-validates status and window overlap for a vehicle.
// selfID excludes the ride being edited from its own overlap check.
func (s *Service) checkVehicleFree(ctx context.Context, vehicleID types.ID, w types.Window, selfID types.ID) error {
	v, err := s.vehicles.Get(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v.Status != vehicle.StatusAvailable || v.Archived {
		return ErrInvalidState
	}
	rides, err := s.store.ListActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	for _, other := range rides {
		if other.ID == selfID {
			continue
		}
		if other.Window.Overlaps(w) {
			return ErrInvalidState
		}
	}
	return nil
}

func isFourByFour(vehicleType string) bool {
	t := strings.ToLower(vehicleType)
	return strings.Contains(t, "4x4") || strings.Contains(t, "jeep")
}

func (s *Service) appendEvent(ctx context.Context, rideID types.ID, from, to Status, actorType string, actorID *types.ID) {
	if err := s.store.AppendEvent(ctx, &Event{
		RideID:     rideID,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}); err != nil {
		s.log.WithError(err).WithField("ride_id", rideID).Warn("audit event append failed")
	}
}

func startJobID(id types.ID) string  { return "ride:" + string(id) + ":start" }
func remindJobID(id types.ID) string { return "ride:" + string(id) + ":remind" }

// scheduleRideJobs (re)schedules the auto-start and the 24h reminder for an
// approved ride. Scheduling by ride-keyed job ID replaces older jobs, so an
// edited window never leaves duplicates behind.
func (s *Service) scheduleRideJobs(r *Ride) {
	if s.sched == nil {
		return
	}
	id := r.ID
	s.sched.Schedule(startJobID(id), r.Window.Start, func() {
		// Losing the ride CAS or the vehicle's available -> in_use guard
		// is an expected race, not a failure.
		if err := s.Start(context.Background(), StartCommand{RideID: id}); err != nil &&
			!errors.Is(err, ErrInvalidState) && !errors.Is(err, ErrConflict) &&
			!errors.Is(err, vehicle.ErrInvalidState) {
			s.log.WithError(err).WithField("ride_id", id).Error("scheduled start failed")
		}
	})
	remindAt := r.Window.Start.Add(-24 * time.Hour)
	s.sched.Schedule(remindJobID(id), remindAt, func() {
		ctx := context.Background()
		cur, err := s.store.Get(ctx, id)
		if err != nil || cur.Status.IsTerminal() {
			return
		}
		s.notifyRider(ctx, cur, "Upcoming ride",
			fmt.Sprintf("Reminder: ride %s starts at %s.", cur.ID, cur.Window.Start.Format(time.RFC3339)), nil)
	})
}

func (s *Service) cancelRideJobs(id types.ID) {
	if s.sched == nil {
		return
	}
	s.sched.Cancel(startJobID(id))
	s.sched.Cancel(remindJobID(id))
}

func (s *Service) notifyRider(ctx context.Context, r *Ride, title, message string, vehicleID *types.ID) {
	if s.notifier == nil {
		return
	}
	rideID := r.ID
	if _, err := s.notifier.Notify(ctx, notification.Request{
		UserID:    r.Rider(),
		Title:     title,
		Message:   message,
		RideID:    &rideID,
		VehicleID: vehicleID,
	}); err != nil {
		s.log.WithError(err).WithField("ride_id", r.ID).Warn("rider notification failed")
	}
}

func (s *Service) mailRider(ctx context.Context, r *Ride, kind email.Kind, extra map[string]any) {
	if s.mailer == nil {
		return
	}
	u, err := s.directory.GetUser(ctx, r.Rider())
	if err != nil {
		s.log.WithError(err).WithField("user_id", r.Rider()).Warn("mail recipient lookup failed")
		return
	}
	data := map[string]any{"name": u.Name, "ride_id": string(r.ID)}
	for k, v := range extra {
		data[k] = v
	}
	rideID := r.ID
	s.mailer.SendAsync(kind, email.Recipient{UserID: u.EmployeeID, Name: u.Name, Email: u.Email}, data, &rideID)
}

// notifySupervisors fans the message out to the supervisors of userID's
// department. Approval notices follow the requester's chain; emergency
// alerts follow the actual rider's.
func (s *Service) notifySupervisors(ctx context.Context, r *Ride, userID types.ID, title, message string) {
	if s.notifier == nil {
		return
	}
	u, err := s.directory.GetUser(ctx, userID)
	if err != nil || u.DepartmentID == nil {
		return
	}
	sups, err := s.directory.Supervisors(ctx, *u.DepartmentID)
	if err != nil {
		s.log.WithError(err).Warn("supervisor lookup failed")
		return
	}
	rideID := r.ID
	for _, sup := range sups {
		if _, err := s.notifier.Notify(ctx, notification.Request{
			UserID:       sup.EmployeeID,
			Title:        title,
			Message:      message,
			RideID:       &rideID,
			DepartmentID: u.DepartmentID,
		}); err != nil {
			s.log.WithError(err).Warn("supervisor notification failed")
		}
	}
}

func (s *Service) alertSupervisorsOfEmergency(ctx context.Context, r *Ride, event string) {
	s.notifySupervisors(ctx, r, r.Rider(), "Vehicle emergency reported",
		fmt.Sprintf("Ride %s reported an emergency: %s", r.ID, event))
}
