package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"github.com/bb3d/studio-api/config"
	"github.com/bb3d/studio-api/handlers"
	"github.com/bb3d/studio-api/middleware"
	"github.com/bb3d/studio-api/telemetry"
)

// newRouter wires routes and middleware. Tracing and metrics run per matched
// route; logging, CORS and recovery wrap everything including 404/405.
func newRouter(cfg *config.Config, inst *telemetry.Instruments, tracer trace.Tracer) http.Handler {
	h := handlers.New(handlers.HealthReport{
		OK:      true,
		Service: cfg.ServiceName,
		Note:    cfg.HealthNote,
	})

	r := mux.NewRouter()
	r.Use(middleware.Tracing(tracer))
	r.Use(middleware.Metrics(inst))

	// Service endpoints.
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	if cfg.StaticDir != "" {
		r.NotFoundHandler = handlers.Static(cfg.StaticDir)
	} else {
		r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	}

	return wrap(r, cfg.CORSAllowedOrigins)
}

// wrap applies the outer middleware. Recovery sits inside Logging so a
// recovered panic is still logged as a 500 with its request ID.
func wrap(h http.Handler, corsOrigins []string) http.Handler {
	h = middleware.Recovery(h)
	h = middleware.CORS(corsOrigins)(h)
	h = middleware.Logging(h)
	return h
}
