package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"hypedigitaly/claude-relay/pkg/sse"
	"hypedigitaly/claude-relay/pkg/upstream"
)

// readBufferSize is the size of each upstream read.
const readBufferSize = 32 * 1024

// ErrClientGone is returned when the client disconnected or a write to it
// failed. No in-band error is attempted in that case.
var ErrClientGone = errors.New("client disconnected")

// errIdle is the cancellation cause set by the idle watchdog.
var errIdle = errors.New("idle timeout")

// Sink receives frames for one client. *sse.Writer implements it.
type Sink interface {
	WriteEvent(eventType, data string) error
	WriteError(message string) error
	WriteDone() error
}

// Observer receives per-event notifications, typically for metrics. All
// methods must be safe for concurrent use across streams.
type Observer interface {
	EventForwarded(kind Kind)
	EventSkipped(kind Kind)
	DecodeFailed()
}

// Options configures a Relay.
type Options struct {
	// Scope selects forwarded kinds.
	Scope Scope

	// EmitDone writes a "[DONE]" frame after a clean end.
	EmitDone bool

	// IdleTimeout aborts the stream when no upstream bytes arrive for this
	// long. Zero disables it.
	IdleTimeout time.Duration
}

// Outcome summarizes how a stream ended.
type Outcome string

// Stream outcomes.
const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeIdleTimeout   Outcome = "idle_timeout"
	OutcomeStreamError   Outcome = "stream_error"
	OutcomeClientGone    Outcome = "client_gone"
)

// Result describes a finished stream.
type Result struct {
	Outcome      Outcome
	Forwarded    int
	Skipped      int
	DecodeErrors int
	Bytes        int64
}

// Relay forwards classified upstream events to a Sink. A Relay holds no
// per-stream state and may serve any number of concurrent streams.
type Relay struct {
	opts     Options
	logger   *slog.Logger
	observer Observer
}

// New creates a Relay. A nil observer disables notifications.
func New(opts Options, logger *slog.Logger, observer Observer) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Relay{opts: opts, logger: logger, observer: observer}
}

// Options returns the relay's options.
func (r *Relay) Options() Options {
	return r.opts
}

// Run copies events from src to sink until src ends or the stream fails.
// It always closes src. The returned error is nil only for a clean end.
//
// Cancelling ctx closes src, which unblocks any pending read.
func (r *Relay) Run(ctx context.Context, src io.ReadCloser, sink Sink) (Result, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stop := context.AfterFunc(ctx, func() { src.Close() })
	defer func() {
		if stop() {
			src.Close()
		}
	}()

	var watchdog *time.Timer
	if r.opts.IdleTimeout > 0 {
		watchdog = time.AfterFunc(r.opts.IdleTimeout, func() { cancel(errIdle) })
		defer watchdog.Stop()
	}

	s := &stream{relay: r, ctx: ctx, sink: sink}
	s.dec.Malformed = s.malformed
	s.lines.Malformed = s.malformed

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if watchdog != nil {
				watchdog.Reset(r.opts.IdleTimeout)
			}
			s.res.Bytes += int64(n)
			for _, line := range s.lines.Feed(buf[:n]) {
				if err := s.line(line); err != nil {
					return s.res, err
				}
			}
		}

		if readErr == nil {
			continue
		}

		// Cancellation surfaces as a read error from the closed body, so
		// check the context before trusting readErr.
		if ctx.Err() != nil {
			return s.res, s.cancelled(context.Cause(ctx))
		}

		if errors.Is(readErr, io.EOF) {
			return s.res, s.finish()
		}

		return s.res, s.fail(OutcomeStreamError, &upstream.StreamError{
			Message: "failed to read upstream stream",
			Cause:   readErr,
		})
	}
}

// stream is the per-Run state.
type stream struct {
	relay *Relay
	ctx   context.Context
	sink  Sink
	lines sse.LineBuffer
	dec   sse.Decoder
	res   Result
}

// line feeds one line through the decoder and handles any event it completes.
func (s *stream) line(line string) error {
	ev, ok := s.dec.Line(line)
	if !ok {
		return nil
	}
	return s.event(ev)
}

func (s *stream) event(raw sse.Event) error {
	ev, err := Classify(raw)
	if err != nil {
		var de *sse.DecodeError
		if errors.As(err, &de) {
			s.malformed(de)
			return nil
		}
		return err
	}

	if ev.Kind == KindError {
		return s.fail(OutcomeUpstreamError, &upstream.StreamError{
			Type:    ev.Error.Type,
			Message: ev.Error.Message,
		})
	}

	eventLine, forward := s.relay.opts.Scope.Frame(ev)
	if !forward {
		s.res.Skipped++
		s.relay.observer.EventSkipped(ev.Kind)
		return nil
	}

	if err := s.sink.WriteEvent(eventLine, ev.Data); err != nil {
		s.res.Outcome = OutcomeClientGone
		return fmt.Errorf("%w: %v", ErrClientGone, err)
	}
	s.res.Forwarded++
	s.relay.observer.EventForwarded(ev.Kind)
	return nil
}

func (s *stream) malformed(de *sse.DecodeError) {
	s.res.DecodeErrors++
	s.relay.observer.DecodeFailed()
	s.relay.logger.WarnContext(s.ctx, "dropping malformed upstream fragment",
		"reason", de.Reason,
		"fragment", de.Line,
		"error", de.Cause,
	)
}

// finish handles upstream EOF.
func (s *stream) finish() error {
	if line, ok := s.lines.Flush(); ok {
		if err := s.line(line); err != nil {
			return err
		}
	}
	if ev, ok := s.dec.Finish(); ok {
		if err := s.event(ev); err != nil {
			return err
		}
	}

	if s.relay.opts.EmitDone {
		if err := s.sink.WriteDone(); err != nil {
			s.res.Outcome = OutcomeClientGone
			return fmt.Errorf("%w: %v", ErrClientGone, err)
		}
	}

	s.res.Outcome = OutcomeCompleted
	return nil
}

// cancelled maps a context cancellation cause to the stream result.
func (s *stream) cancelled(cause error) error {
	if errors.Is(cause, errIdle) {
		return s.fail(OutcomeIdleTimeout, &upstream.TimeoutError{
			Phase:   "idle",
			Timeout: s.relay.opts.IdleTimeout,
		})
	}
	s.res.Outcome = OutcomeClientGone
	return fmt.Errorf("%w: %v", ErrClientGone, cause)
}

// fail reports err in-band and records the outcome. A failed error write is
// logged only; the stream is over either way.
func (s *stream) fail(outcome Outcome, err error) error {
	s.res.Outcome = outcome
	if werr := s.sink.WriteError(err.Error()); werr != nil {
		s.relay.logger.DebugContext(s.ctx, "could not deliver in-band error", "error", werr)
	}
	return err
}

type nopObserver struct{}

func (nopObserver) EventForwarded(Kind) {}
func (nopObserver) EventSkipped(Kind)   {}
func (nopObserver) DecodeFailed()       {}
