// README: Planning service: list edits plus polyline maintenance via the optimizer.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"routesync/internal/types"
)

var (
	ErrOptimizerUnavailable = errors.New("route optimizer not configured")
	ErrTooFewWaypoints      = errors.New("not enough waypoints to optimize")
)

// Optimizer is the external directions collaborator. Both calls may fail;
// callers leave prior state untouched on failure.
type Optimizer interface {
	// ComputeRoute returns the encoded polyline for the given order.
	ComputeRoute(ctx context.Context, waypoints []types.Waypoint) (string, error)
	// OptimizeOrder reorders intermediate waypoints for the shortest path,
	// keeping origin and destination fixed, and returns the new polyline.
	OptimizeOrder(ctx context.Context, waypoints []types.Waypoint) ([]types.Waypoint, string, error)
}

type Service struct {
	store     *Store
	optimizer Optimizer // nil when no API key is configured
}

func NewService(store *Store, optimizer Optimizer) *Service {
	return &Service{store: store, optimizer: optimizer}
}

func (s *Service) Current(ctx context.Context) (RouteState, error) {
	return s.store.Current(ctx)
}

func (s *Service) AddWaypoint(ctx context.Context, w types.Waypoint) error {
	if _, err := s.store.Add(ctx, w); err != nil {
		return err
	}
	s.refreshPolyline(ctx)
	return nil
}

func (s *Service) RemoveWaypoint(ctx context.Context, index int) error {
	if _, err := s.store.Remove(ctx, index); err != nil {
		return err
	}
	s.refreshPolyline(ctx)
	return nil
}

func (s *Service) Reorder(ctx context.Context, newOrder []types.Waypoint) error {
	if _, err := s.store.ReplaceAll(ctx, newOrder); err != nil {
		return err
	}
	s.refreshPolyline(ctx)
	return nil
}

func (s *Service) ClearAll(ctx context.Context) error {
	_, err := s.store.Clear(ctx)
	return err
}

// Optimize asks the collaborator for the minimal-path order and commits the
// returned order and polyline together. Any optimizer error leaves the
// stored state unchanged.
func (s *Service) Optimize(ctx context.Context) error {
	if s.optimizer == nil {
		return ErrOptimizerUnavailable
	}
	state, err := s.store.Current(ctx)
	if err != nil {
		return err
	}
	if len(state.Waypoints) < 2 {
		return ErrTooFewWaypoints
	}
	reordered, polyline, err := s.optimizer.OptimizeOrder(ctx, state.Waypoints)
	if err != nil {
		return fmt.Errorf("optimize order: %w", err)
	}
	var p *string
	if polyline != "" {
		p = &polyline
	}
	_, err = s.store.ReplaceAllWithPolyline(ctx, reordered, p)
	return err
}

// refreshPolyline recomputes the cached polyline after a list edit, or clears
// it when fewer than two waypoints remain. Collaborator failures are logged
// and the prior polyline kept, matching the rest of the edit semantics.
func (s *Service) refreshPolyline(ctx context.Context) {
	if s.optimizer == nil {
		return
	}
	state, err := s.store.Current(ctx)
	if err != nil {
		log.Printf("planner: load state for polyline refresh: %v", err)
		return
	}
	if len(state.Waypoints) < 2 {
		if state.EncodedPolyline != nil {
			if _, err := s.store.SetPolyline(ctx, nil); err != nil {
				log.Printf("planner: clear polyline: %v", err)
			}
		}
		return
	}
	polyline, err := s.optimizer.ComputeRoute(ctx, state.Waypoints)
	if err != nil {
		log.Printf("planner: compute route: %v", err)
		return
	}
	if _, err := s.store.SetPolyline(ctx, &polyline); err != nil {
		log.Printf("planner: store polyline: %v", err)
	}
}
