package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Credential environment variables, checked in order.
const (
	EnvAPIKey         = "ANTHROPIC_API_KEY"
	EnvAPIKeyFallback = "CLAUDE_API_KEY"
	EnvPort           = "PORT"
)

// envPrefix is prepended to every SECTION_FIELD override.
const envPrefix = "RELAY_"

// Load builds the configuration from an optional YAML file and the process
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup. Tests use it to
// avoid touching the process environment.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	// Defaults go before env overrides so an explicit zero in the
	// environment (RELAY_UPSTREAM_IDLE_TIMEOUT=0s) is not refilled.
	ApplyDefaults(cfg)

	if err := applyEnvOverrides(cfg, getenv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Files that do not exist are skipped; variables already set in
// the environment are not overwritten. With no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat env file %q: %w", f, err)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

func readFile(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return &cfg, nil
}

// envOverrides applies RELAY_SECTION_FIELD variables. Values that fail to
// parse are collected so a typo in a duration does not silently fall back to
// the default.
type envOverrides struct {
	getenv func(string) string
	errs   []FieldError
}

func (e *envOverrides) str(key string, dst *string) {
	if val := e.getenv(envPrefix + key); val != "" {
		*dst = val
	}
}

func (e *envOverrides) duration(key string, dst *time.Duration) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		e.fail(key, fmt.Sprintf("invalid duration %q", val))
		return
	}
	*dst = d
}

func (e *envOverrides) integer(key string, dst *int) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		e.fail(key, fmt.Sprintf("invalid integer %q", val))
		return
	}
	*dst = i
}

func (e *envOverrides) int64(key string, dst *int64) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		e.fail(key, fmt.Sprintf("invalid integer %q", val))
		return
	}
	*dst = i
}

func (e *envOverrides) float(key string, dst *float64) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		e.fail(key, fmt.Sprintf("invalid number %q", val))
		return
	}
	*dst = f
}

func (e *envOverrides) boolean(key string, dst *bool) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		e.fail(key, fmt.Sprintf("invalid boolean %q", val))
		return
	}
	*dst = b
}

func (e *envOverrides) boolPtr(key string, dst **bool) {
	var b bool
	before := len(e.errs)
	if e.getenv(envPrefix+key) == "" {
		return
	}
	e.boolean(key, &b)
	if len(e.errs) == before {
		*dst = &b
	}
}

func (e *envOverrides) list(key string, dst *[]string) {
	val := e.getenv(envPrefix + key)
	if val == "" {
		return
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func (e *envOverrides) fail(key, msg string) {
	e.errs = append(e.errs, FieldError{Field: envPrefix + key, Message: msg})
}

// applyEnvOverrides applies environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	e := &envOverrides{getenv: getenv}

	// Server overrides
	e.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.duration("SERVER_READ_HEADER_TIMEOUT", &cfg.Server.ReadHeaderTimeout)
	e.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	e.integer("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)

	// Upstream overrides
	e.str("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	e.str("UPSTREAM_API_KEY", &cfg.Upstream.APIKey)
	e.str("UPSTREAM_API_VERSION", &cfg.Upstream.APIVersion)
	e.str("UPSTREAM_BETA_HEADER", &cfg.Upstream.BetaHeader)
	e.duration("UPSTREAM_CONNECT_TIMEOUT", &cfg.Upstream.ConnectTimeout)
	e.duration("UPSTREAM_RESPONSE_HEADER_TIMEOUT", &cfg.Upstream.ResponseHeaderTimeout)
	e.duration("UPSTREAM_IDLE_TIMEOUT", &cfg.Upstream.IdleTimeout)

	// Relay overrides
	e.str("RELAY_FORWARD_SCOPE", &cfg.Relay.ForwardScope)
	e.boolean("RELAY_EMIT_DONE", &cfg.Relay.EmitDone)
	e.int64("RELAY_MAX_BODY_BYTES", &cfg.Relay.MaxBodyBytes)
	e.str("RELAY_DEFAULT_MODEL", &cfg.Relay.DefaultModel)
	e.integer("RELAY_DEFAULT_MAX_TOKENS", &cfg.Relay.DefaultMaxTokens)
	e.str("RELAY_DEFAULT_SYSTEM_PROMPT", &cfg.Relay.DefaultSystemPrompt)

	// CORS overrides
	e.boolPtr("CORS_ENABLED", &cfg.CORS.Enabled)
	e.list("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)
	e.list("CORS_ALLOWED_METHODS", &cfg.CORS.AllowedMethods)
	e.list("CORS_ALLOWED_HEADERS", &cfg.CORS.AllowedHeaders)
	e.integer("CORS_MAX_AGE", &cfg.CORS.MaxAge)
	e.boolean("CORS_ALLOW_CREDENTIALS", &cfg.CORS.AllowCredentials)

	// Telemetry overrides
	e.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	e.boolPtr("TELEMETRY_LOGGING_REDACT_SECRETS", &cfg.Telemetry.Logging.RedactSecrets)
	e.boolPtr("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	e.str("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	e.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	e.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	e.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	e.boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	e.duration("TELEMETRY_TRACING_TIMEOUT", &cfg.Telemetry.Tracing.Timeout)
	e.str("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)

	// Unprefixed compatibility variables. The prefixed form wins.
	if cfg.Upstream.APIKey == "" {
		if key := getenv(EnvAPIKey); key != "" {
			cfg.Upstream.APIKey = key
		} else {
			cfg.Upstream.APIKey = getenv(EnvAPIKeyFallback)
		}
	}
	if port := getenv(EnvPort); port != "" && getenv(envPrefix+"SERVER_LISTEN_ADDRESS") == "" {
		addr, err := withPort(cfg.Server.ListenAddress, port)
		if err != nil {
			e.errs = append(e.errs, FieldError{Field: EnvPort, Message: err.Error()})
		} else {
			cfg.Server.ListenAddress = addr
		}
	}

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// withPort replaces the port of addr, keeping its host.
func withPort(addr, port string) (string, error) {
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("invalid port %q", port)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = DefaultListenHost
	}
	return net.JoinHostPort(host, port), nil
}
