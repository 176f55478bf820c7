package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_Check(t *testing.T) {
	c := New(time.Second)
	c.Register("good", func(context.Context) error { return nil })

	report := c.Check(context.Background())
	if !report.Ready() || report.Checks["good"].Status != StatusOK {
		t.Fatalf("unexpected report %+v", report)
	}

	c.Register("bad", func(context.Context) error { return errors.New("down") })
	report = c.Check(context.Background())
	if report.Ready() {
		t.Error("report should not be ready with a failing check")
	}
	if got := report.Checks["bad"]; got.Status != StatusFailed || got.Message != "down" {
		t.Errorf("bad check result %+v", got)
	}
	if names := c.Names(); len(names) != 2 || names[0] != "bad" {
		t.Errorf("Names() = %v", names)
	}
}

func TestChecker_Empty(t *testing.T) {
	if !New(0).Check(context.Background()).Ready() {
		t.Error("checker with no checks should be ready")
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Register("stuck", func(context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	start := time.Now()
	report := c.Check(context.Background())
	if time.Since(start) > 500*time.Millisecond {
		t.Error("check was not abandoned at the timeout")
	}
	if report.Ready() {
		t.Error("timed out check reported ready")
	}
}

func TestDialCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()

	if err := DialCheck(addr)(context.Background()); err != nil {
		t.Errorf("dial to open listener failed: %v", err)
	}

	ln.Close()
	if err := DialCheck(addr)(context.Background()); err == nil {
		t.Error("dial to closed listener succeeded")
	}
}

func TestUpstreamAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://api.anthropic.com", "api.anthropic.com:443", false},
		{"http://localhost", "localhost:80", false},
		{"http://127.0.0.1:8080/base", "127.0.0.1:8080", false},
		{"/relative", "", true},
	}
	for _, tt := range tests {
		got, err := UpstreamAddress(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("UpstreamAddress(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestReadinessHandler(t *testing.T) {
	c := New(time.Second)
	c.Register("upstream", func(context.Context) error { return errors.New("unreachable") })

	w := httptest.NewRecorder()
	c.ReadinessHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusNotReady || report.Checks["upstream"].Message != "unreachable" {
		t.Errorf("unexpected report %+v", report)
	}
}
