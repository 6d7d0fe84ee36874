// README: Monthly usage aggregator: incremental upserts plus idempotent recompute.
package usage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Source yields the completed-ride facts for one period. Implemented by an
// adapter over the ride store so recompute always recalculates from the
// rides themselves.
type Source interface {
	CompletedRideFacts(ctx context.Context, year, month int) ([]RideFact, error)
}

type Service struct {
	store  Store
	source Source
	log    *logrus.Logger
}

func NewService(store Store, source Source, log *logrus.Logger) *Service {
	return &Service{store: store, source: source, log: log}
}

// RecordCompletedRide applies a single completion incrementally.
func (s *Service) RecordCompletedRide(ctx context.Context, fact RideFact) error {
	return s.store.Add(ctx, fact)
}

// Recompute rebuilds every aggregate row for the period from source rides.
// Running it twice yields the same totals as running it once.
func (s *Service) Recompute(ctx context.Context, year, month int) error {
	facts, err := s.source.CompletedRideFacts(ctx, year, month)
	if err != nil {
		return err
	}
	totals := make(map[Key]MonthlyVehicleUsage)
	for _, f := range facts {
		k := Key{VehicleID: f.VehicleID, Year: year, Month: month}
		row, ok := totals[k]
		if !ok {
			row = MonthlyVehicleUsage{VehicleID: f.VehicleID, Year: year, Month: month}
		}
		row.TotalRides++
		row.TotalKm += f.Km
		row.UsageHours += f.Hours
		totals[k] = row
	}
	for _, row := range totals {
		if err := s.store.Put(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Period(ctx context.Context, year, month int) ([]MonthlyVehicleUsage, error) {
	return s.store.ListPeriod(ctx, year, month)
}

// RunMonthlyRollup recomputes the previous month's aggregates shortly after
// each month rolls over.
func (s *Service) RunMonthlyRollup(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Day() != 1 {
				continue
			}
			prev := now.AddDate(0, -1, 0)
			if err := s.Recompute(ctx, prev.Year(), int(prev.Month())); err != nil {
				s.log.WithError(err).Error("monthly usage rollup failed")
			}
		}
	}
}
