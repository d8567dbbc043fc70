// README: WebSocket entry: credential check at connect, then hand off to the gateway.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"routesync/internal/auth"
	"routesync/internal/modules/planner"
	"routesync/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients connect from arbitrary origins (PWA + dev hosts).
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	auth    *auth.Service
	hub     *ws.Hub
	events  ws.EventHandler
	planner *planner.Service
}

func NewWSHandler(authSvc *auth.Service, hub *ws.Hub, events ws.EventHandler, plannerSvc *planner.Service) *WSHandler {
	return &WSHandler{auth: authSvc, hub: hub, events: events, planner: plannerSvc}
}

// Connect upgrades the request and runs the gateway for its lifetime. An
// invalid token gets a policy-violation close before the connection ever
// registers or receives state.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	token := c.Query("token")
	if !h.auth.ValidateToken(token) {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		_ = conn.Close()
		return
	}

	log.Print("ws: new authenticated client connected")
	ws.Serve(c.Request.Context(), h.hub, h.events, h.planner, conn)
	log.Print("ws: client disconnected")
}
