// README: Shared waypoint value object used across modules.
package types

// Waypoint is one stop in a route. Index is a dense zero-based position in
// the owning list, not a stable identity: mutations that change membership
// or order reassign every index.
type Waypoint struct {
	Index     int     `json:"index"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reindex returns a copy of ws with indices reassigned to 0..len-1
// preserving order.
func Reindex(ws []Waypoint) []Waypoint {
	out := make([]Waypoint, len(ws))
	for i, w := range ws {
		w.Index = i
		out[i] = w
	}
	return out
}
