package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// envMap returns a lookup function backed by m.
func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
  read_timeout: "45s"
upstream:
  base_url: "http://localhost:9999"
  idle_timeout: "5s"
relay:
  forward_scope: "all"
  emit_done: true
telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadWithEnv(path, envMap(map[string]string{EnvAPIKey: "sk-ant-test"}))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Upstream.IdleTimeout != 5*time.Second {
		t.Errorf("expected idle timeout 5s, got %v", cfg.Upstream.IdleTimeout)
	}
	if cfg.Relay.ForwardScope != ScopeAll {
		t.Errorf("expected forward scope %q, got %q", ScopeAll, cfg.Relay.ForwardScope)
	}
	if !cfg.Relay.EmitDone {
		t.Error("expected emit_done true")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Upstream.APIKey != "sk-ant-test" {
		t.Errorf("expected API key from environment, got %q", cfg.Upstream.APIKey)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{EnvAPIKey: "sk-ant-test"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"listen address", cfg.Server.ListenAddress, DefaultListenAddress},
		{"write timeout", cfg.Server.WriteTimeout, time.Duration(0)},
		{"base url", cfg.Upstream.BaseURL, DefaultUpstreamBaseURL},
		{"api version", cfg.Upstream.APIVersion, "2023-06-01"},
		{"beta header", cfg.Upstream.BetaHeader, "prompt-caching-2024-07-31"},
		{"connect timeout", cfg.Upstream.ConnectTimeout, 10 * time.Second},
		{"response header timeout", cfg.Upstream.ResponseHeaderTimeout, 30 * time.Second},
		{"idle timeout", cfg.Upstream.IdleTimeout, 60 * time.Second},
		{"forward scope", cfg.Relay.ForwardScope, ScopeContentDelta},
		{"emit done", cfg.Relay.EmitDone, false},
		{"model", cfg.Relay.DefaultModel, "claude-3-5-sonnet-20241022"},
		{"max tokens", cfg.Relay.DefaultMaxTokens, 4096},
		{"system prompt", cfg.Relay.DefaultSystemPrompt, "You are a helpful assistant."},
		{"cors enabled", cfg.CORS.CORSEnabled(), true},
		{"metrics enabled", cfg.Telemetry.Metrics.MetricsEnabled(), true},
		{"redaction enabled", cfg.Telemetry.Logging.RedactionEnabled(), true},
		{"tracing enabled", cfg.Telemetry.Tracing.Enabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingCredential(t *testing.T) {
	_, err := LoadWithEnv("", envMap(nil))
	if err == nil {
		t.Fatal("expected error without credential")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !verr.Has("upstream.api_key") {
		t.Errorf("expected upstream.api_key error, got %v", verr)
	}
}

func TestLoad_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "primary variable",
			env:  map[string]string{EnvAPIKey: "primary"},
			want: "primary",
		},
		{
			name: "fallback variable",
			env:  map[string]string{EnvAPIKeyFallback: "fallback"},
			want: "fallback",
		},
		{
			name: "primary wins over fallback",
			env:  map[string]string{EnvAPIKey: "primary", EnvAPIKeyFallback: "fallback"},
			want: "primary",
		},
		{
			name: "prefixed variable wins",
			env:  map[string]string{"RELAY_UPSTREAM_API_KEY": "prefixed", EnvAPIKey: "primary"},
			want: "prefixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithEnv("", envMap(tt.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Upstream.APIKey != tt.want {
				t.Errorf("expected API key %q, got %q", tt.want, cfg.Upstream.APIKey)
			}
		})
	}
}

func TestLoad_PortOverride(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "default host keeps",
			env:  map[string]string{EnvPort: "8081"},
			want: "0.0.0.0:8081",
		},
		{
			name: "configured host keeps",
			file: "server:\n  listen_address: \"127.0.0.1:3000\"\n",
			env:  map[string]string{EnvPort: "9000"},
			want: "127.0.0.1:9000",
		},
		{
			name: "explicit listen address wins",
			env:  map[string]string{EnvPort: "9000", "RELAY_SERVER_LISTEN_ADDRESS": "127.0.0.1:7000"},
			want: "127.0.0.1:7000",
		},
		{
			name:    "invalid port",
			env:     map[string]string{EnvPort: "http"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			tt.env[EnvAPIKey] = "sk-ant-test"

			cfg, err := LoadWithEnv(path, envMap(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Server.ListenAddress != tt.want {
				t.Errorf("expected listen address %q, got %q", tt.want, cfg.Server.ListenAddress)
			}
		})
	}
}

// Defaults only fill unset fields, so an explicit zero from the environment
// must survive them.
func TestLoad_EnvZeroSurvivesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{
		EnvAPIKey:                     "sk-ant-test",
		"RELAY_UPSTREAM_IDLE_TIMEOUT": "0s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upstream.IdleTimeout != 0 {
		t.Errorf("expected idle timeout disabled, got %v", cfg.Upstream.IdleTimeout)
	}
	if cfg.Upstream.ConnectTimeout != DefaultUpstreamConnectTimeout {
		t.Errorf("expected default connect timeout, got %v", cfg.Upstream.ConnectTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:                          "sk-ant-test",
		"RELAY_UPSTREAM_BASE_URL":          "http://127.0.0.1:1234",
		"RELAY_UPSTREAM_IDLE_TIMEOUT":      "2s",
		"RELAY_RELAY_FORWARD_SCOPE":        "all",
		"RELAY_RELAY_EMIT_DONE":            "true",
		"RELAY_CORS_ENABLED":               "false",
		"RELAY_CORS_ALLOWED_ORIGINS":       "https://a.example, https://b.example",
		"RELAY_TELEMETRY_METRICS_ENABLED":  "false",
		"RELAY_TELEMETRY_LOGGING_LEVEL":    "warn",
		"RELAY_TELEMETRY_TRACING_SAMPLER":  "always",
		"RELAY_TELEMETRY_TRACING_INSECURE": "1",
	}

	cfg, err := LoadWithEnv("", envMap(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Upstream.BaseURL != "http://127.0.0.1:1234" {
		t.Errorf("base url not overridden: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.IdleTimeout != 2*time.Second {
		t.Errorf("idle timeout not overridden: %v", cfg.Upstream.IdleTimeout)
	}
	if cfg.Relay.ForwardScope != ScopeAll || !cfg.Relay.EmitDone {
		t.Errorf("relay overrides not applied: %+v", cfg.Relay)
	}
	if cfg.CORS.CORSEnabled() {
		t.Error("expected CORS disabled")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		t.Error("expected metrics disabled")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected warn level, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Tracing.Sampler != "always" || !cfg.Telemetry.Tracing.Insecure {
		t.Errorf("tracing overrides not applied: %+v", cfg.Telemetry.Tracing)
	}
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:                     "sk-ant-test",
		"RELAY_UPSTREAM_IDLE_TIMEOUT": "forever",
		"RELAY_RELAY_EMIT_DONE":       "maybe",
	}

	_, err := LoadWithEnv("", envMap(env))
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !verr.Has("RELAY_UPSTREAM_IDLE_TIMEOUT") || !verr.Has("RELAY_RELAY_EMIT_DONE") {
		t.Errorf("expected both variables reported, got %v", verr)
	}
}

func TestLoad_FileErrors(t *testing.T) {
	if _, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), envMap(nil)); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeConfig(t, "server: [unterminated")
	if _, err := LoadWithEnv(path, envMap(map[string]string{EnvAPIKey: "k"})); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RELAY_DOTENV_TEST_VALUE=from-file\nRELAY_DOTENV_TEST_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RELAY_DOTENV_TEST_KEEP", "from-env")
	// t.Setenv restores the original state; register cleanup for the new key too.
	t.Setenv("RELAY_DOTENV_TEST_VALUE", "")
	os.Unsetenv("RELAY_DOTENV_TEST_VALUE")

	if err := LoadDotEnv(path, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("RELAY_DOTENV_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected value loaded from file, got %q", got)
	}
	if got := os.Getenv("RELAY_DOTENV_TEST_KEEP"); got != "from-env" {
		t.Errorf("expected existing variable kept, got %q", got)
	}
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing files should be skipped, got %v", err)
	}
}
