package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"routesync/internal/types"
)

// Optimizer talks to the Google Maps Directions API: polyline computation for
// a fixed order, and waypoint-order optimization with origin and destination
// pinned.
type Optimizer struct {
	client *maps.Client
}

// NewOptimizer creates an Optimizer with the given API key.
func NewOptimizer(apiKey string) (*Optimizer, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Optimizer{client: client}, nil
}

// ComputeRoute returns the encoded overview polyline for the waypoints in
// their current order.
func (o *Optimizer) ComputeRoute(ctx context.Context, waypoints []types.Waypoint) (string, error) {
	if len(waypoints) < 2 {
		return "", fmt.Errorf("need at least 2 waypoints, got %d", len(waypoints))
	}
	r := &maps.DirectionsRequest{
		Origin:      coord(waypoints[0]),
		Destination: coord(waypoints[len(waypoints)-1]),
		Waypoints:   coords(waypoints[1 : len(waypoints)-1]),
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := o.client.Directions(ctx, r)
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return "", fmt.Errorf("no route found")
	}
	return routes[0].OverviewPolyline.Points, nil
}

// OptimizeOrder reorders the intermediate waypoints for the shortest driving
// route. The first and last waypoints stay fixed. Returns the reindexed
// order and the polyline of the optimized route.
func (o *Optimizer) OptimizeOrder(ctx context.Context, waypoints []types.Waypoint) ([]types.Waypoint, string, error) {
	if len(waypoints) < 2 {
		return waypoints, "", nil
	}
	intermediates := waypoints[1 : len(waypoints)-1]
	if len(intermediates) == 0 {
		// Nothing to reorder, just fetch the polyline.
		polyline, err := o.ComputeRoute(ctx, waypoints)
		if err != nil {
			return nil, "", err
		}
		return types.Reindex(waypoints), polyline, nil
	}

	r := &maps.DirectionsRequest{
		Origin:      coord(waypoints[0]),
		Destination: coord(waypoints[len(waypoints)-1]),
		Waypoints:   coords(intermediates),
		Optimize:    true,
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := o.client.Directions(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return nil, "", fmt.Errorf("no route found")
	}

	route := routes[0]
	reordered := make([]types.Waypoint, 0, len(waypoints))
	reordered = append(reordered, waypoints[0])
	for _, idx := range route.WaypointOrder {
		if idx >= 0 && idx < len(intermediates) {
			reordered = append(reordered, intermediates[idx])
		}
	}
	if len(reordered) != len(waypoints)-1 {
		// Order list missing or truncated: keep the original order.
		reordered = append(reordered[:1], intermediates...)
	}
	reordered = append(reordered, waypoints[len(waypoints)-1])
	return types.Reindex(reordered), route.OverviewPolyline.Points, nil
}

func coord(w types.Waypoint) string {
	return fmt.Sprintf("%f,%f", w.Latitude, w.Longitude)
}

func coords(ws []types.Waypoint) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = coord(w)
	}
	return out
}
