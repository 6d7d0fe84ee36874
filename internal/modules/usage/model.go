// README: Per-vehicle-per-month usage aggregate.
package usage

import "motorpool/internal/types"

// Key is the composite aggregate key.
type Key struct {
	VehicleID types.ID
	Year      int
	Month     int
}

type MonthlyVehicleUsage struct {
	VehicleID  types.ID `json:"vehicle_id"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	TotalRides int      `json:"total_rides"`
	TotalKm    float64  `json:"total_km"`
	UsageHours float64  `json:"usage_hours"`
}

// RideFact is one completed ride's contribution to the aggregate.
type RideFact struct {
	VehicleID types.ID
	Year      int
	Month     int
	Km        float64
	Hours     float64
}
