// Package gpx renders the planning route as a GPX file for external
// navigation apps (OsmAnd, Locus Map, ...).
package gpx

import (
	"fmt"
	"strings"

	"routesync/internal/types"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="routesync"
     xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
     xsi:schemaLocation="http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd">`

// Route renders waypoints as a GPX <rte> element, which navigation apps
// interpret as turn-by-turn directions.
func Route(waypoints []types.Waypoint, name string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n  <metadata>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", escape(name))
	fmt.Fprintf(&b, "    <desc>Route with %d stops</desc>\n", len(waypoints))
	b.WriteString("  </metadata>\n  <rte>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", escape(name))
	for _, w := range waypoints {
		fmt.Fprintf(&b, "    <rtept lat=\"%v\" lon=\"%v\">\n", w.Latitude, w.Longitude)
		fmt.Fprintf(&b, "      <name>%s</name>\n", escape(w.Address))
		fmt.Fprintf(&b, "      <desc>Stop %d</desc>\n", w.Index+1)
		b.WriteString("    </rtept>\n")
	}
	b.WriteString("  </rte>\n</gpx>\n")
	return b.String()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
