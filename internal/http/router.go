// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routesync/internal/auth"
	"routesync/internal/http/handlers"
	"routesync/internal/http/middleware"
	"routesync/internal/modules/planner"
	"routesync/internal/ws"
)

func NewRouter(
	authSvc *auth.Service,
	plannerSvc *planner.Service,
	events ws.EventHandler,
	hub *ws.Hub,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	authHandler := handlers.NewAuthHandler(authSvc)
	r.POST("/api/login", authHandler.Login)
	r.POST("/api/auth/google", authHandler.GoogleLogin)

	routeHandler := handlers.NewRouteHandler(plannerSvc)
	r.GET("/api/route.gpx", middleware.Auth(authSvc.ValidateToken), routeHandler.ExportGPX)

	wsHandler := handlers.NewWSHandler(authSvc, hub, events, plannerSvc)
	r.GET("/ws", wsHandler.Connect)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
