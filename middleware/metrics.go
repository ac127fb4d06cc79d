package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bb3d/studio-api/telemetry"
)

// Metrics records request count, latency, response size and in-flight
// requests per route.
func Metrics(inst *telemetry.Instruments) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			route := attribute.String("route", routeName(r))
			method := attribute.String("method", r.Method)

			inst.ActiveConnections.Add(ctx, 1)
			defer inst.ActiveConnections.Add(ctx, -1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			status := attribute.String("status", strconv.Itoa(rw.statusCode))
			inst.RequestsTotal.Add(ctx, 1, metric.WithAttributes(route, method, status))
			inst.RequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(route, method))
			inst.ResponseSize.Record(ctx, rw.written, metric.WithAttributes(route))
			if rw.statusCode >= http.StatusBadRequest {
				inst.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(route, status))
			}
		})
	}
}
