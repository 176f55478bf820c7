// Package health runs readiness checks for the relay.
//
// Liveness (GET /health) never depends on anything but the process itself.
// Readiness (GET /ready) runs every registered check concurrently, each under
// its own timeout, and answers 503 when any of them fails:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("upstream", health.DialCheck("api.anthropic.com:443"))
//	r.Get("/ready", checker.ReadinessHandler())
//
// Checks must be cheap. The upstream check only opens a TCP connection; it
// never spends tokens.
package health
