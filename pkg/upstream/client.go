package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// messagesPath is appended to the configured base URL.
const messagesPath = "/v1/messages"

// maxErrorBody bounds how much of a non-2xx body is read.
const maxErrorBody = 64 * 1024

// Config configures a Client.
type Config struct {
	BaseURL               string
	APIKey                string
	APIVersion            string
	BetaHeader            string
	ConnectTimeout        time.Duration
	ResponseHeaderTimeout time.Duration
}

// Client opens streaming Messages API calls. It is safe for concurrent use.
type Client struct {
	cfg    Config
	url    string
	client *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithTracer records a span around each Open.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithHTTPClient replaces the underlying HTTP client. Tests use it to route
// requests to a local server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a Client.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		// One connection per call.
		DisableKeepAlives: true,
		ForceAttemptHTTP2: true,
	}

	c := &Client{
		cfg:    cfg,
		url:    strings.TrimRight(cfg.BaseURL, "/") + messagesPath,
		client: &http.Client{Transport: transport},
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Stream is an open upstream event stream. The caller must Close it.
type Stream struct {
	io.ReadCloser

	// RequestID is upstream's request-id header, for correlating logs.
	RequestID string
}

// Open sends req and waits for upstream's response headers. It returns a
// Stream only for a 2xx answer. Cancelling ctx aborts the call, including
// reads from the returned Stream.
func (c *Client) Open(ctx context.Context, req *MessagesRequest) (*Stream, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.open",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.max_tokens", req.MaxTokens),
		),
	)
	defer span.End()

	stream, err := c.open(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("upstream.request_id", stream.RequestID))
	return stream, nil
}

func (c *Client) open(ctx context.Context, req *MessagesRequest) (*Stream, error) {
	body := *req
	body.Stream = true

	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", c.cfg.APIVersion)
	if c.cfg.BetaHeader != "" {
		httpReq.Header.Set("anthropic-beta", c.cfg.BetaHeader)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "text/event-stream")

	c.logger.DebugContext(ctx, "opening upstream stream",
		"url", c.url,
		"model", req.Model,
	)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	requestID := resp.Header.Get("request-id")
	c.logger.DebugContext(ctx, "upstream stream opened",
		"status", resp.StatusCode,
		"upstream_request_id", requestID,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Stream{ReadCloser: resp.Body, RequestID: requestID}, nil
}

// classify maps a transport error to the package's error types. A cancelled
// caller context is returned as is.
func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return &TimeoutError{Phase: "connect", Timeout: c.cfg.ConnectTimeout}
		}
		return &ConnectionError{URL: c.url, Cause: err}
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if strings.Contains(err.Error(), "TLS handshake") {
			return &TimeoutError{Phase: "connect", Timeout: c.cfg.ConnectTimeout}
		}
		return &TimeoutError{Phase: "response_header", Timeout: c.cfg.ResponseHeaderTimeout}
	}

	return &ConnectionError{URL: c.url, Cause: err}
}

// statusError reads the error body of a non-2xx response.
func statusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	se := &StatusError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(raw)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var body apiError
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		se.Type = body.Error.Type
		se.Message = body.Error.Message
	}
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
