package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/bb3d/studio-api/config"
	"github.com/bb3d/studio-api/healthcheck"
	"github.com/bb3d/studio-api/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--healthcheck" {
		os.Exit(runHealthCheck("http://localhost:"+healthCheckPort(".env"), os.Stderr))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	opts := telemetry.Options{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Exporter:       cfg.OTelExporter,
		Endpoint:       cfg.OTelEndpoint,
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "init tracing")
	}
	defer flush("tracing", shutdownTracing)

	shutdownMetrics, err := telemetry.InitMetrics(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "init metrics")
	}
	defer flush("metrics", shutdownMetrics)

	meter := otel.Meter(telemetry.InstrumentationName)
	if err := telemetry.RegisterRuntimeMetrics(meter); err != nil {
		slog.Warn("runtime metrics unavailable", "error", err)
	}
	inst, err := telemetry.NewInstruments(meter)
	if err != nil {
		return errors.Wrap(err, "create instruments")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(cfg, inst, otel.Tracer(telemetry.InstrumentationName)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "service", cfg.ServiceName, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "listen")
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}

	slog.Info("server stopped gracefully")
	return nil
}

func flush(name string, shutdown telemetry.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("telemetry shutdown", "provider", name, "error", err)
	}
}

// healthCheckPort resolves the port the server would listen on, reading the
// same environment and dotenv file as the server itself.
func healthCheckPort(dotenvPath string) string {
	cfg, err := config.LoadFile(dotenvPath)
	if err != nil {
		return config.DefaultPort
	}
	return cfg.Port
}

// runHealthCheck performs an HTTP GET against the /health endpoint and returns
// a non-zero exit code on failure. Used as the container health check so that
// the distroless runtime image does not need curl or wget.
func runHealthCheck(baseURL string, stderr io.Writer) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := healthcheck.NewClient(nil).WithURL(baseURL).Check(ctx); err != nil {
		// Client errors already carry the "healthcheck:" prefix.
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
