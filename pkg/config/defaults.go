package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenHost        = "0.0.0.0"
	DefaultListenPort        = "3000"
	DefaultListenAddress     = DefaultListenHost + ":" + DefaultListenPort
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// Upstream defaults
	DefaultUpstreamBaseURL               = "https://api.anthropic.com"
	DefaultUpstreamAPIVersion            = "2023-06-01"
	DefaultUpstreamBetaHeader            = "prompt-caching-2024-07-31"
	DefaultUpstreamConnectTimeout        = 10 * time.Second
	DefaultUpstreamResponseHeaderTimeout = 30 * time.Second
	DefaultUpstreamIdleTimeout           = 60 * time.Second

	// Relay defaults
	DefaultForwardScope        = ScopeContentDelta
	DefaultMaxBodyBytes        = int64(1048576)
	DefaultModel               = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens           = 4096
	DefaultSystemPrompt        = "You are a helpful assistant."
	DefaultCORSMaxAge          = 3600
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "relay"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSampleRatio  = 1.0
	DefaultTracingTimeout      = 10 * time.Second
	DefaultTracingServiceName  = "claude-relay"
	DefaultTracingOTLPEndpoint = "localhost:4317"
)

// Forward scopes.
const (
	// ScopeContentDelta forwards only content_block_delta events.
	ScopeContentDelta = "content_delta"

	// ScopeAll forwards every event except pings, each with an event: line.
	ScopeAll = "all"
)

// Default slice values. These are functions so callers never share backing arrays.
func defaultCORSAllowedOrigins() []string { return []string{"*"} }
func defaultCORSAllowedMethods() []string { return []string{"GET", "POST", "OPTIONS"} }
func defaultCORSAllowedHeaders() []string { return []string{"Content-Type", "X-Request-ID"} }
func defaultCORSExposedHeaders() []string { return []string{"X-Request-ID"} }
func defaultStreamDurationBuckets() []float64 {
	return []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}
}

// NewDefaultConfig returns a configuration with all defaults applied.
// The upstream credential is left empty.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field of cfg with its default value.
// Fields that are already set are left untouched.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	// WriteTimeout stays zero: streams are unbounded in length.
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Upstream defaults
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.APIVersion == "" {
		cfg.Upstream.APIVersion = DefaultUpstreamAPIVersion
	}
	if cfg.Upstream.BetaHeader == "" {
		cfg.Upstream.BetaHeader = DefaultUpstreamBetaHeader
	}
	if cfg.Upstream.ConnectTimeout == 0 {
		cfg.Upstream.ConnectTimeout = DefaultUpstreamConnectTimeout
	}
	if cfg.Upstream.ResponseHeaderTimeout == 0 {
		cfg.Upstream.ResponseHeaderTimeout = DefaultUpstreamResponseHeaderTimeout
	}
	if cfg.Upstream.IdleTimeout == 0 {
		cfg.Upstream.IdleTimeout = DefaultUpstreamIdleTimeout
	}

	// Relay defaults
	if cfg.Relay.ForwardScope == "" {
		cfg.Relay.ForwardScope = DefaultForwardScope
	}
	if cfg.Relay.MaxBodyBytes == 0 {
		cfg.Relay.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Relay.DefaultModel == "" {
		cfg.Relay.DefaultModel = DefaultModel
	}
	if cfg.Relay.DefaultMaxTokens == 0 {
		cfg.Relay.DefaultMaxTokens = DefaultMaxTokens
	}
	if cfg.Relay.DefaultSystemPrompt == "" {
		cfg.Relay.DefaultSystemPrompt = DefaultSystemPrompt
	}

	// CORS defaults
	if cfg.CORS.AllowedOrigins == nil {
		cfg.CORS.AllowedOrigins = defaultCORSAllowedOrigins()
	}
	if cfg.CORS.AllowedMethods == nil {
		cfg.CORS.AllowedMethods = defaultCORSAllowedMethods()
	}
	if cfg.CORS.AllowedHeaders == nil {
		cfg.CORS.AllowedHeaders = defaultCORSAllowedHeaders()
	}
	if cfg.CORS.ExposedHeaders == nil {
		cfg.CORS.ExposedHeaders = defaultCORSExposedHeaders()
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.StreamDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.StreamDurationBuckets = defaultStreamDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingOTLPEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
