// Package sse implements the Server-Sent Events wire format in both
// directions.
//
// Reading: upstream delivers an arbitrary byte stream, not pre-split frames.
// LineBuffer turns read chunks into complete lines, keeping any trailing
// partial line until a later read (or EOF) completes it. Decoder folds lines
// into events, dispatching on a blank line. Chunk boundaries never affect the
// decoded event sequence.
//
//	var lb sse.LineBuffer
//	var dec sse.Decoder
//	for _, line := range lb.Feed(chunk) {
//	    if ev, ok := dec.Line(line); ok {
//	        handle(ev)
//	    }
//	}
//
// Writing: Writer commits the streaming headers exactly once and flushes
// every frame as soon as it is written.
package sse
