// README: No-show sweeper: periodic scan that cancels stale rides idempotently.
package ride

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"motorpool/internal/modules/email"
	"motorpool/internal/modules/notification"
	"motorpool/internal/types"
)

// SweepNoShows cancels every pending or approved ride whose start passed
// more than the grace period ago without a pickup. The CAS makes the sweep
// idempotent: overlapping runs, or a rider starting the ride mid-sweep,
// leave exactly one transition and one no-show record per ride.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.noShowGrace)
	candidates, err := s.store.ListNoShowCandidates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, r := range candidates {
		if !CanTransition(r.Status, StatusNoShow) {
			continue
		}
		ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusNoShow, r.StatusVersion, StatusPatch{})
		if err != nil {
			s.log.WithError(err).WithField("ride_id", r.ID).Error("no-show transition failed")
			continue
		}
		if !ok {
			// Lost the race to another transition; nothing to record.
			continue
		}
		swept++
		s.appendEvent(ctx, r.ID, r.Status, StatusNoShow, "system", nil)
		s.cancelRideJobs(r.ID)

		// Attribution follows the actual rider, not the requester.
		rider := r.Rider()
		if err := s.store.InsertNoShow(ctx, &NoShowEvent{
			ID:         types.ID(uuid.NewString()),
			UserID:     rider,
			RideID:     r.ID,
			OccurredAt: time.Now(),
		}); err != nil {
			s.log.WithError(err).WithField("ride_id", r.ID).Error("no-show record failed")
		}
		if r.VehicleID != nil {
			if err := s.vehicles.Release(ctx, *r.VehicleID); err != nil {
				s.log.WithError(err).WithField("vehicle_id", *r.VehicleID).Warn("vehicle release failed")
			}
		}
		s.notifyRider(ctx, r, "Ride cancelled: no show",
			fmt.Sprintf("Ride %s was cancelled because it was not picked up in time.", r.ID), nil)
		s.mailRider(ctx, r, email.KindRideCancelled, map[string]any{"reason": "no show"})
	}
	return swept, nil
}

// RunNoShowSweeper drives SweepNoShows on a fixed interval until ctx ends.
func (s *Service) RunNoShowSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepNoShows(ctx); err != nil {
				s.log.WithError(err).Error("no-show sweep failed")
			} else if n > 0 {
				s.log.WithField("count", n).Info("no-show sweep cancelled rides")
			}
		}
	}
}

// RunApprovalReminder nudges administrators about rides still pending once a
// day.
func (s *Service) RunApprovalReminder(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.remindPendingApprovals(ctx); err != nil {
				s.log.WithError(err).Error("approval reminder failed")
			}
		}
	}
}

func (s *Service) remindPendingApprovals(ctx context.Context) error {
	pending, err := s.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 || s.notifier == nil {
		return nil
	}
	admins, err := s.directory.Admins(ctx)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%d ride requests are awaiting approval.", len(pending))
	for _, a := range admins {
		if _, err := s.notifier.Notify(ctx, notification.Request{
			UserID:  a.EmployeeID,
			Title:   "Pending ride approvals",
			Message: msg,
		}); err != nil {
			s.log.WithError(err).Warn("approval reminder notification failed")
		}
	}
	return nil
}
