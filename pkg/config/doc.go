// Package config provides configuration management for the relay.
//
// Configuration is built once at process start and passed by pointer to
// every component that needs it. Nothing in request handling reads the
// environment directly.
//
// # Configuration Loading
//
//	cfg, err := config.Load("relay.yaml") // path may be empty
//
// Load reads the optional YAML file, applies defaults, applies environment
// variable overrides and validates the result.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RELAY_SECTION_FIELD:
//
//   - RELAY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - RELAY_UPSTREAM_BASE_URL overrides upstream.base_url
//   - RELAY_RELAY_FORWARD_SCOPE overrides relay.forward_scope
//   - RELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Two unprefixed variables are honored for compatibility with existing
// deployments:
//
//   - ANTHROPIC_API_KEY (or CLAUDE_API_KEY) sets upstream.api_key
//   - PORT sets the listen port, keeping the configured host
//
// A .env file in the working directory is loaded by LoadDotEnv before Load
// is called; variables already present in the environment win.
//
// # Configuration Precedence
//
//  1. Values from YAML file
//  2. Default values for anything left unset
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// The upstream credential is required. A configuration without one fails
// validation and the process refuses to start.
//
// # Reloading
//
// Watch observes the configuration file with fsnotify and hands freshly
// loaded configurations to a callback. Callers decide which fields are safe
// to apply at runtime; the relay only applies the log level.
package config
