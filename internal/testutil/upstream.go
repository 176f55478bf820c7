// Package testutil provides a scriptable stand-in for the Messages API.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse scripts one upstream answer.
type MockResponse struct {
	// StatusCode defaults to 200.
	StatusCode int

	// Body is written as is for non-streaming answers.
	Body string

	Headers map[string]string

	// Chunks are written and flushed one by one, so tests control exactly
	// where the byte stream is split.
	Chunks []string

	// ChunkDelay is slept before each chunk.
	ChunkDelay time.Duration

	// HeaderDelay is slept before the status line is sent.
	HeaderDelay time.Duration

	// Hold keeps the stream open after the last chunk until the client
	// goes away.
	Hold bool
}

// RecordedRequest is a request the mock received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// MockUpstream is an httptest server answering every path with the
// scripted response.
type MockUpstream struct {
	server *httptest.Server

	mu        sync.Mutex
	response  MockResponse
	requests  []RecordedRequest
	cancelled int
	cancelCh  chan struct{}
}

// NewMockUpstream starts a mock answering with resp. Close it when done.
func NewMockUpstream(resp MockResponse) *MockUpstream {
	m := &MockUpstream{response: resp, cancelCh: make(chan struct{}, 16)}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the base URL of the mock.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts the mock down.
func (m *MockUpstream) Close() {
	m.server.CloseClientConnections()
	m.server.Close()
}

// SetResponse replaces the scripted response.
func (m *MockUpstream) SetResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
}

// Requests returns a copy of the requests received so far.
func (m *MockUpstream) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// RequestCount returns the number of requests received.
func (m *MockUpstream) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Cancelled returns how many streams ended because the client went away.
func (m *MockUpstream) Cancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// WaitCancelled blocks until a stream is cancelled or d elapses.
func (m *MockUpstream) WaitCancelled(d time.Duration) bool {
	select {
	case <-m.cancelCh:
		return true
	case <-time.After(d):
		return false
	}
}

func (m *MockUpstream) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp := m.response
	m.mu.Unlock()

	if !sleep(r, resp.HeaderDelay) {
		m.markCancelled()
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if len(resp.Chunks) == 0 && !resp.Hold {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp.Body)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/event-stream")
	}
	w.WriteHeader(status)
	rc := http.NewResponseController(w)
	_ = rc.Flush()

	for _, chunk := range resp.Chunks {
		if !sleep(r, resp.ChunkDelay) {
			m.markCancelled()
			return
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			m.markCancelled()
			return
		}
		if err := rc.Flush(); err != nil {
			m.markCancelled()
			return
		}
	}

	if resp.Hold {
		<-r.Context().Done()
		m.markCancelled()
	}
}

func (m *MockUpstream) markCancelled() {
	m.mu.Lock()
	m.cancelled++
	m.mu.Unlock()
	select {
	case m.cancelCh <- struct{}{}:
	default:
	}
}

// sleep waits d or until the request is cancelled. It reports whether the
// full duration elapsed.
func sleep(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return r.Context().Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.Context().Done():
		return false
	}
}
