// README: Planning-state model: the single route snapshot being edited.
package planner

import (
	"routesync/internal/types"
)

// SessionID is the fixed key of the one planning document. The planner is a
// single shared session, never partitioned per user.
const SessionID = "session"

// RouteState is the full planning snapshot: the ordered waypoint list plus a
// cached encoded polyline. Clients always reconcile from this whole state,
// never from diffs. Invariant at rest: Waypoints[i].Index == i.
type RouteState struct {
	ID              string           `json:"_id"`
	Waypoints       []types.Waypoint `json:"waypoints"`
	EncodedPolyline *string          `json:"encodedPolyline"`
	UpdatedAt       int64            `json:"updatedAt"`
}

func emptyState(now int64) RouteState {
	return RouteState{
		ID:        SessionID,
		Waypoints: []types.Waypoint{},
		UpdatedAt: now,
	}
}
