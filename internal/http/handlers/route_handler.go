// README: Route export handler (GPX download of the current planning route).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routesync/internal/gpx"
	"routesync/internal/modules/planner"
)

type RouteHandler struct {
	planner *planner.Service
}

func NewRouteHandler(svc *planner.Service) *RouteHandler {
	return &RouteHandler{planner: svc}
}

func (h *RouteHandler) ExportGPX(c *gin.Context) {
	state, err := h.planner.Current(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if len(state.Waypoints) == 0 {
		writeError(c, http.StatusNotFound, "no waypoints in current route")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="route.gpx"`)
	c.Data(http.StatusOK, "application/gpx+xml", []byte(gpx.Route(state.Waypoints, "Delivery Route")))
}
