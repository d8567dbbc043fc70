// README: Trip session model: grouped navigation view of a finalized route.
package trip

import (
	"routesync/internal/types"
)

type Status string

const (
	StatusPlanning   Status = "PLANNING"
	StatusNavigating Status = "NAVIGATING"
	StatusCompleted  Status = "COMPLETED"
)

type GroupStatus string

const (
	GroupPending   GroupStatus = "PENDING"
	GroupActive    GroupStatus = "ACTIVE"
	GroupCompleted GroupStatus = "COMPLETED"
)

// MaxGroupSize bounds each group to what a Google Maps deep link accepts.
const MaxGroupSize = 9

// Group is a contiguous sub-range [WaypointStartIndex, WaypointEndIndex) of
// the session's waypoint list.
type Group struct {
	Index              int         `json:"index"`
	WaypointStartIndex int         `json:"waypointStartIndex"`
	WaypointEndIndex   int         `json:"waypointEndIndex"`
	Status             GroupStatus `json:"status"`
}

// Session is the finalized, navigable copy of a route. Waypoints is a
// point-in-time copy taken at finalize, decoupled from later planning edits.
type Session struct {
	ID               string           `json:"_id"`
	Waypoints        []types.Waypoint `json:"waypoints"`
	Groups           []Group          `json:"groups"`
	ActiveGroupIndex int              `json:"activeGroupIndex"`
	Status           Status           `json:"status"`
	CreatedAt        int64            `json:"createdAt"`
	UpdatedAt        int64            `json:"updatedAt"`
}

// GenerateGroups partitions [0, len(waypoints)) into contiguous ranges of at
// most maxGroupSize, numbered from 0. Group 0 starts ACTIVE, the rest PENDING.
func GenerateGroups(waypoints []types.Waypoint, maxGroupSize int) []Group {
	if len(waypoints) == 0 {
		return nil
	}
	var groups []Group
	for start, idx := 0, 0; start < len(waypoints); idx++ {
		end := start + maxGroupSize
		if end > len(waypoints) {
			end = len(waypoints)
		}
		status := GroupPending
		if idx == 0 {
			status = GroupActive
		}
		groups = append(groups, Group{
			Index:              idx,
			WaypointStartIndex: start,
			WaypointEndIndex:   end,
			Status:             status,
		})
		start = end
	}
	return groups
}
