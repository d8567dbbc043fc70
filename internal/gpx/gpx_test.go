package gpx

import (
	"strings"
	"testing"

	"routesync/internal/types"
)

func TestRoute(t *testing.T) {
	out := Route([]types.Waypoint{
		{Index: 0, Address: "Mercado Público", Latitude: -30.027, Longitude: -51.234},
		{Index: 1, Address: "Guaíba & Sons <loading dock>", Latitude: -30.05, Longitude: -51.25},
	}, "Morning Run")

	for _, want := range []string{
		`<gpx version="1.1"`,
		`<name>Morning Run</name>`,
		`<desc>Route with 2 stops</desc>`,
		`<rtept lat="-30.027" lon="-51.234">`,
		`<name>Mercado Público</name>`,
		`<desc>Stop 1</desc>`,
		`<name>Guaíba &amp; Sons &lt;loading dock&gt;</name>`,
		`<desc>Stop 2</desc>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
