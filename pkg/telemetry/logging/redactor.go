package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// Redactor scrubs credentials from log attributes.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Anthropic and OpenAI style secret keys.
			regexp.MustCompile(`sk-[A-Za-z0-9_\-]{8,}`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		},
	}
}

// sensitiveKeys are attribute names whose values are never logged. A key
// matches when it equals one of these or ends with it after '_' or '-'.
var sensitiveKeys = []string{
	"api_key", "apikey", "api-key",
	"authorization", "secret", "password", "token",
}

// IsSensitiveKey reports whether an attribute named key holds a secret.
// "x-api-key" and "access_token" match; "max_tokens" does not.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if lower == s || strings.HasSuffix(lower, "_"+s) || strings.HasSuffix(lower, "-"+s) {
			return true
		}
	}
	return false
}

// RedactString replaces every credential found in s.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, Redacted)
	}
	return s
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, Redacted)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			if red := r.RedactString(s); red != s {
				return slog.String(a.Key, red)
			}
		}
	case slog.KindAny:
		// Errors commonly embed request details.
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if red := r.RedactString(msg); red != msg {
				return slog.String(a.Key, red)
			}
		}
	}
	return a
}
