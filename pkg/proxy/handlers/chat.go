package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/proxy"
	"hypedigitaly/claude-relay/pkg/proxy/types"
	"hypedigitaly/claude-relay/pkg/relay"
	"hypedigitaly/claude-relay/pkg/sse"
	"hypedigitaly/claude-relay/pkg/telemetry/logging"
	"hypedigitaly/claude-relay/pkg/telemetry/tracing"
	"hypedigitaly/claude-relay/pkg/upstream"

	"go.opentelemetry.io/otel/trace"
)

// systemPromptLogLimit truncates system prompts in debug logs.
const systemPromptLogLimit = 100

// Opener opens one upstream stream. *upstream.Client implements it.
type Opener interface {
	Open(ctx context.Context, req *upstream.MessagesRequest) (*upstream.Stream, error)
}

// StreamRecorder receives stream lifecycle metrics. *metrics.Collector
// implements it.
type StreamRecorder interface {
	StreamStarted()
	StreamFinished(outcome string, duration time.Duration)
	FirstFrame(latency time.Duration)
	RecordUpstreamError(kind string)
}

// ChatHandler relays one chat request to upstream and streams the answer
// back as SSE.
type ChatHandler struct {
	cfg      *config.RelayConfig
	upstream Opener
	relay    *relay.Relay
	metrics  StreamRecorder
	logger   *slog.Logger
}

// NewChatHandler creates a chat handler. A nil recorder disables metrics.
func NewChatHandler(cfg *config.RelayConfig, up Opener, rl *relay.Relay, rec StreamRecorder, logger *slog.Logger) *ChatHandler {
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		cfg:      cfg,
		upstream: up,
		relay:    rl,
		metrics:  rec,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		_ = proxy.WriteError(w, http.StatusMethodNotAllowed, types.MessageMethodNotAllowed)
		return
	}

	req, err := proxy.ParseChatRequest(r, h.cfg)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected chat request", "error", err)
		_ = proxy.WriteErrorResponse(w, err)
		return
	}

	h.logger.DebugContext(ctx, "chat request received",
		"model", req.Model,
		"max_tokens", *req.MaxTokens,
		"temperature", *req.Temperature,
		"system_prompt", truncate(*req.SystemPrompt, systemPromptLogLimit),
		"user_data_length", len(req.UserData),
	)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(tracing.RequestAttributes(logging.RequestID(ctx), req.Model, *req.MaxTokens)...)

	stream, err := h.upstream.Open(ctx, proxy.MessagesRequest(req))
	if err != nil {
		if ctx.Err() != nil {
			h.logger.InfoContext(ctx, "client went away before upstream answered")
			return
		}
		h.metrics.RecordUpstreamError(proxy.UpstreamErrorKind(err))
		h.logger.ErrorContext(ctx, "failed to open upstream stream", "error", err)
		tracing.SetStatus(span, err)
		_ = proxy.WriteErrorResponse(w, err)
		return
	}

	sw := sse.NewWriter(w)
	if err := sw.Commit(); err != nil {
		stream.Close()
		h.logger.ErrorContext(ctx, "failed to commit stream", "error", err)
		return
	}
	h.metrics.StreamStarted()

	sink := &firstFrameSink{Writer: sw, start: start, record: h.metrics.FirstFrame}
	res, err := h.relay.Run(ctx, stream, sink)
	elapsed := time.Since(start)
	h.metrics.StreamFinished(string(res.Outcome), elapsed)

	attrs := []any{
		"outcome", string(res.Outcome),
		"forwarded", res.Forwarded,
		"skipped", res.Skipped,
		"decode_errors", res.DecodeErrors,
		"upstream_bytes", res.Bytes,
		"upstream_request_id", stream.RequestID,
		"duration_ms", elapsed.Milliseconds(),
	}

	switch {
	case err == nil:
		tracing.SetStatus(span, nil)
		h.logger.InfoContext(ctx, "stream completed", attrs...)
	case errors.Is(err, relay.ErrClientGone):
		h.logger.InfoContext(ctx, "client disconnected", attrs...)
	default:
		tracing.SetStatus(span, err)
		h.metrics.RecordUpstreamError(proxy.UpstreamErrorKind(err))
		h.logger.WarnContext(ctx, "stream ended with error", append(attrs, "error", err)...)
	}
}

// firstFrameSink reports the latency of the first frame the client receives.
type firstFrameSink struct {
	*sse.Writer
	start  time.Time
	record func(time.Duration)
	seen   bool
}

func (s *firstFrameSink) WriteEvent(eventType, data string) error {
	if err := s.Writer.WriteEvent(eventType, data); err != nil {
		return err
	}
	if !s.seen {
		s.seen = true
		s.record(time.Since(s.start))
	}
	return nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

type nopRecorder struct{}

func (nopRecorder) StreamStarted()                       {}
func (nopRecorder) StreamFinished(string, time.Duration) {}
func (nopRecorder) FirstFrame(time.Duration)             {}
func (nopRecorder) RecordUpstreamError(string)           {}
