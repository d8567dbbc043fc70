// README: Entry point; loads config, wires stores and services, starts the sync server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routesync/internal/auth"
	"routesync/internal/config"
	httptransport "routesync/internal/http"
	"routesync/internal/infra"
	"routesync/internal/maps"
	"routesync/internal/modules/planner"
	syncproto "routesync/internal/modules/sync"
	"routesync/internal/modules/trip"
	"routesync/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var plannerBackend planner.Backend
	var tripBackend trip.Backend
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		defer dbPool.Close()

		pb := planner.NewPostgresBackend(dbPool)
		if err := pb.EnsureSchema(ctx); err != nil {
			log.Fatalf("planner schema: %v", err)
		}
		tb := trip.NewPostgresBackend(dbPool)
		if err := tb.EnsureSchema(ctx); err != nil {
			log.Fatalf("trip schema: %v", err)
		}
		plannerBackend, tripBackend = pb, tb
	} else {
		log.Print("no RS_DB_DSN configured, using in-memory stores")
		plannerBackend = planner.NewMemoryBackend()
		tripBackend = trip.NewMemoryBackend()
	}

	var optimizer planner.Optimizer
	if cfg.Maps.APIKey != "" {
		base, err := maps.NewOptimizer(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		optimizer = base
		if cfg.Redis.Addr != "" {
			cache := maps.NewPolylineCache(infra.NewRedis(cfg.Redis.Addr))
			optimizer = maps.NewCachedOptimizer(base, cache)
		}
	} else {
		log.Print("no GOOGLE_ROUTES_API_KEY configured, route optimization disabled")
	}

	plannerStore := planner.NewStore(plannerBackend)
	plannerSvc := planner.NewService(plannerStore, optimizer)

	tripStore := trip.NewStore(tripBackend)
	tripSvc := trip.NewService(tripStore, cfg.Trip.MaxGroupSize)

	hub := ws.NewHub(plannerStore)
	go hub.Run(ctx)

	syncSvc := syncproto.NewService(plannerSvc, tripSvc, hub)

	authSvc := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AppPassword, cfg.Auth.GoogleClientID)

	handler := httptransport.NewRouter(authSvc, plannerSvc, syncSvc, hub)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
