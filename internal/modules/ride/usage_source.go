// README: Adapter feeding completed rides into the monthly usage aggregator.
package ride

import (
	"context"

	"motorpool/internal/modules/usage"
)

// UsageSource lets the usage module recompute a period straight from the
// rides, which keeps the aggregate rebuildable at any time.
type UsageSource struct {
	store Store
}

func NewUsageSource(store Store) *UsageSource {
	return &UsageSource{store: store}
}

func (u *UsageSource) CompletedRideFacts(ctx context.Context, year, month int) ([]usage.RideFact, error) {
	rides, err := u.store.ListCompletedInMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	facts := make([]usage.RideFact, 0, len(rides))
	for _, r := range rides {
		if r.VehicleID == nil {
			continue
		}
		km := r.EstimatedKm
		if r.ActualKm != nil {
			km = *r.ActualKm
		}
		hours := r.Window.Duration().Hours()
		if r.ActualPickupAt != nil && r.CompletionDate != nil {
			hours = r.CompletionDate.Sub(*r.ActualPickupAt).Hours()
		}
		facts = append(facts, usage.RideFact{
			VehicleID: *r.VehicleID,
			Year:      year,
			Month:     month,
			Km:        km,
			Hours:     hours,
		})
	}
	return facts, nil
}
