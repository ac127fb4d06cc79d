// Package config loads service configuration from the environment.
package config

import (
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Telemetry exporter names accepted by OTEL_EXPORTER.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Defaults reproduce the identity the service reported before it was configurable.
const (
	DefaultPort            = "8080"
	DefaultServiceName     = "bb-3d-studio"
	DefaultHealthNote      = "health endpoint"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds runtime settings for the API server.
type Config struct {
	Port        string
	ServiceName string
	HealthNote  string
	LogLevel    slog.Level

	// StaticDir, when set, is served as a single-page app bundle.
	StaticDir          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	OTelExporter string
	OTelEndpoint string
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from the environment. A .env file in the working
// directory fills in variables the environment leaves unset.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		fileEnv = map[string]string{}
	}
	env := lookup(fileEnv)

	cfg := &Config{
		Port:               env.getOrDefault("PORT", DefaultPort),
		ServiceName:        env.getOrDefault("SERVICE_NAME", DefaultServiceName),
		HealthNote:         env.getOrDefault("HEALTH_NOTE", DefaultHealthNote),
		StaticDir:          env.getOrDefault("STATIC_DIR", ""),
		CORSAllowedOrigins: splitList(env.getOrDefault("CORS_ALLOWED_ORIGINS", "")),
		OTelEndpoint:       env.getOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		return nil, errors.Errorf("invalid PORT %q", cfg.Port)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env.getOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, errors.Wrap(err, "invalid LOG_LEVEL")
	}

	cfg.ShutdownTimeout = DefaultShutdownTimeout
	if raw := env.getOrDefault("SHUTDOWN_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid SHUTDOWN_TIMEOUT")
		}
		if d <= 0 {
			return nil, errors.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", d)
		}
		cfg.ShutdownTimeout = d
	}

	cfg.OTelExporter = strings.ToLower(env.getOrDefault("OTEL_EXPORTER", ""))
	switch cfg.OTelExporter {
	case "":
		cfg.OTelExporter = ExporterNone
		if cfg.OTelEndpoint != "" {
			cfg.OTelExporter = ExporterOTLP
		}
	case ExporterOTLP:
		if cfg.OTelEndpoint == "" {
			return nil, errors.New("OTEL_EXPORTER=otlp requires OTEL_EXPORTER_OTLP_ENDPOINT")
		}
	case ExporterStdout, ExporterNone:
	default:
		return nil, errors.Errorf("invalid OTEL_EXPORTER %q (expected otlp, stdout or none)", cfg.OTelExporter)
	}

	return cfg, nil
}

// lookup resolves a key from the process environment first, then the dotenv file.
type lookup map[string]string

func (l lookup) getOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(l[key]); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
