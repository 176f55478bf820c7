// Package relay forwards an upstream Messages API event stream to a client.
//
// Each upstream SSE event is classified into a closed set of kinds before
// any forwarding decision is made. The forwarding Scope then decides which
// kinds reach the client and how they are framed. Events leave in exactly
// the order they arrived; nothing is batched, reordered or coalesced.
//
// Run is an explicit read loop over an io.ReadCloser. It stops when the
// source ends, when the context is cancelled (client gone), when the sink
// refuses a write, or when no bytes arrive for the configured idle timeout.
// Failures after the client stream is committed are reported in-band with
// a single error frame.
package relay
