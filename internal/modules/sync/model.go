// README: Wire protocol: event envelope and payload shapes.
package sync

import (
	"encoding/json"
)

type EventType string

const (
	EventAddWaypoint      EventType = "ADD_WAYPOINT"
	EventRemoveWaypoint   EventType = "REMOVE_WAYPOINT"
	EventReorderWaypoints EventType = "REORDER_WAYPOINTS"
	EventClearAll         EventType = "CLEAR_ALL"
	EventOptimizeRoute    EventType = "OPTIMIZE_ROUTE"
	EventFinalizeRoute    EventType = "FINALIZE_ROUTE"
	EventGroupCompleted   EventType = "GROUP_COMPLETED"

	// Server → client only.
	EventSyncState EventType = "SYNC_STATE"
)

// Message is the envelope for every inbound event and for SYNC_STATE pushes.
// Data is kind-specific and decoded lazily by the dispatcher.
type Message struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RemoveWaypointData struct {
	WaypointIndex int `json:"waypointIndex"`
}

// ErrorMessage is sent back to the single offending connection when an
// inbound event cannot be handled. The connection stays open.
type ErrorMessage struct {
	Error string `json:"error"`
}
