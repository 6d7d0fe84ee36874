package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Estimator resolves driving distance between two addresses through the
// Google Maps Directions API. Ride requests use it to refine the requester's
// own distance estimate; it is optional and failures fall back to that
// estimate.
type Estimator struct {
	client *maps.Client
}

func NewEstimator(apiKey string) (*Estimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Estimator{client: client}, nil
}

// EstimateKm returns the driving distance in kilometers for the best route
// from origin to destination.
func (e *Estimator) EstimateKm(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := e.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / 1000.0, nil
}
