// README: Event dispatcher: decodes envelopes, applies them, triggers SYNC_STATE.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"routesync/internal/modules/planner"
	"routesync/internal/modules/trip"
	"routesync/internal/types"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Broadcaster fans a finalized or advanced trip session out to every live
// connection. Planner changes don't come through here: those are picked up by
// the store subscription.
type Broadcaster interface {
	BroadcastTrip(session trip.Session)
}

type Service struct {
	planner   *planner.Service
	trips     *trip.Service
	broadcast Broadcaster
}

func NewService(plannerSvc *planner.Service, tripSvc *trip.Service, broadcast Broadcaster) *Service {
	return &Service{planner: plannerSvc, trips: tripSvc, broadcast: broadcast}
}

// Handle decodes and applies one inbound frame. A non-nil error means the
// event was rejected with no state change; the gateway reports it back to the
// originating connection only. Precondition no-ops (optimizer missing, empty
// route, no session) are logged here and return nil.
func (s *Service) Handle(ctx context.Context, raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return s.Apply(ctx, msg)
}

func (s *Service) Apply(ctx context.Context, msg Message) error {
	switch msg.Event {
	case EventAddWaypoint:
		var w types.Waypoint
		if err := decode(msg.Data, &w); err != nil {
			return fmt.Errorf("%s: %w", msg.Event, err)
		}
		if err := s.planner.AddWaypoint(ctx, w); err != nil {
			return err
		}
		log.Printf("sync: waypoint added: %s", w.Address)
		return nil

	case EventRemoveWaypoint:
		var data RemoveWaypointData
		if err := decode(msg.Data, &data); err != nil {
			return fmt.Errorf("%s: %w", msg.Event, err)
		}
		err := s.planner.RemoveWaypoint(ctx, data.WaypointIndex)
		if errors.Is(err, planner.ErrIndexOutOfRange) {
			log.Printf("sync: remove rejected, index %d out of range", data.WaypointIndex)
			return nil
		}
		if err != nil {
			return err
		}
		log.Printf("sync: waypoint removed at index %d", data.WaypointIndex)
		return nil

	case EventReorderWaypoints:
		var order []types.Waypoint
		if err := decode(msg.Data, &order); err != nil {
			return fmt.Errorf("%s: %w", msg.Event, err)
		}
		if err := s.planner.Reorder(ctx, order); err != nil {
			return err
		}
		log.Printf("sync: waypoints reordered (%d)", len(order))
		return nil

	case EventClearAll:
		if err := s.planner.ClearAll(ctx); err != nil {
			return err
		}
		log.Print("sync: all waypoints cleared")
		return nil

	case EventOptimizeRoute:
		err := s.planner.Optimize(ctx)
		switch {
		case errors.Is(err, planner.ErrOptimizerUnavailable),
			errors.Is(err, planner.ErrTooFewWaypoints):
			log.Printf("sync: optimize skipped: %v", err)
			return nil
		case err != nil:
			log.Printf("sync: optimize failed, state unchanged: %v", err)
			return nil
		}
		log.Print("sync: route optimized")
		return nil

	case EventFinalizeRoute:
		state, err := s.planner.Current(ctx)
		if err != nil {
			return err
		}
		session, err := s.trips.Finalize(ctx, state.ID, state.Waypoints)
		if errors.Is(err, trip.ErrNoWaypoints) {
			log.Print("sync: finalize skipped, no waypoints")
			return nil
		}
		if err != nil {
			return err
		}
		s.broadcast.BroadcastTrip(session)
		log.Printf("sync: route finalized, %d groups", len(session.Groups))
		return nil

	case EventGroupCompleted:
		session, err := s.trips.CompleteActiveGroup(ctx)
		if errors.Is(err, trip.ErrNoSession) {
			log.Print("sync: group completion skipped, no active trip session")
			return nil
		}
		if err != nil {
			return err
		}
		s.broadcast.BroadcastTrip(session)
		log.Printf("sync: group completed, active group now %d (%s)", session.ActiveGroupIndex, session.Status)
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(data, v)
}
