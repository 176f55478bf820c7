package config

import "time"

// Config is the root configuration structure for the relay.
type Config struct {
	// Server contains inbound HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the upstream LLM API.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Relay contains request defaults and stream forwarding behavior.
	Relay RelayConfig `yaml:"relay"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the inbound HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "0.0.0.0:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadHeaderTimeout bounds the time spent reading request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration of a response. Streams can run
	// for minutes, so zero (no limit) is the default.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout for client connections.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight streams
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// UpstreamConfig contains configuration for the upstream Messages API.
type UpstreamConfig struct {
	// BaseURL is the API base URL; "/v1/messages" is appended.
	// Default: "https://api.anthropic.com"
	BaseURL string `yaml:"base_url"`

	// APIKey is the server-held credential. It should come from the
	// ANTHROPIC_API_KEY environment variable rather than the file.
	// Required.
	APIKey string `yaml:"api_key"`

	// APIVersion is sent as the anthropic-version header.
	// Default: "2023-06-01"
	APIVersion string `yaml:"api_version"`

	// BetaHeader is sent as the anthropic-beta header. Empty disables it.
	// Default: "prompt-caching-2024-07-31"
	BetaHeader string `yaml:"beta_header"`

	// ConnectTimeout bounds TCP/TLS connection establishment.
	// Default: 10s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	// Default: 30s
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`

	// IdleTimeout cancels a stream when no upstream bytes arrive for this
	// long. Zero disables the check.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RelayConfig contains request defaults and forwarding behavior.
type RelayConfig struct {
	// ForwardScope selects which upstream events reach the client.
	// Options: "content_delta", "all"
	// Default: "content_delta"
	ForwardScope string `yaml:"forward_scope"`

	// EmitDone appends a "data: [DONE]" frame after a clean end of stream.
	// Default: false
	EmitDone bool `yaml:"emit_done"`

	// MaxBodyBytes limits the size of an inbound chat request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// DefaultModel is used when a request omits model.
	// Default: "claude-3-5-sonnet-20241022"
	DefaultModel string `yaml:"default_model"`

	// DefaultMaxTokens is used when a request omits max_tokens.
	// Default: 4096
	DefaultMaxTokens int `yaml:"default_max_tokens"`

	// DefaultSystemPrompt is used when a request omits systemPrompt.
	// Default: "You are a helpful assistant."
	DefaultSystemPrompt string `yaml:"default_system_prompt"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls Access-Control-Allow-Credentials.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets scrubs API keys from log attributes.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "relay"
	Namespace string `yaml:"namespace"`

	// StreamDurationBuckets defines histogram buckets for stream duration (seconds).
	// Default: [0.5, 1, 2.5, 5, 10, 30, 60, 120, 300]
	StreamDurationBuckets []float64 `yaml:"stream_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as service.name.
	// Default: "claude-relay"
	ServiceName string `yaml:"service_name"`
}

// MetricsEnabled reports whether metrics are on, treating unset as the default.
func (c MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RedactionEnabled reports whether secret redaction is on, treating unset as the default.
func (c LoggingConfig) RedactionEnabled() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}

// CORSEnabled reports whether CORS is on, treating unset as the default.
func (c CORSConfig) CORSEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
