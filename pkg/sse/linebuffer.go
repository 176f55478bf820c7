package sse

import (
	"bytes"
	"fmt"
)

// DefaultMaxLineBytes caps a single pending line when MaxLineBytes is zero.
const DefaultMaxLineBytes = 1 << 20

// LineBuffer splits a byte stream into lines. A line ends at CRLF, LF or a
// lone CR, so all three decode the same. The zero value is ready to use.
//
// A line longer than MaxLineBytes is reported to Malformed and discarded up
// to its terminator; the lines after it are unaffected.
type LineBuffer struct {
	// MaxLineBytes bounds one line. Zero means DefaultMaxLineBytes.
	MaxLineBytes int

	// Malformed, if set, is called for every discarded line.
	Malformed func(*DecodeError)

	buf []byte

	// skipLF is set after a CR terminator so a following LF is not read as
	// an empty line, even when it arrives in the next chunk.
	skipLF bool

	// discarding is set while dropping the rest of an oversized line.
	discarding bool
}

// Feed appends chunk and returns every line it completes. A partial line at
// the end of chunk is retained for the next call.
func (b *LineBuffer) Feed(chunk []byte) []string {
	var lines []string
	for len(chunk) > 0 {
		if b.skipLF {
			b.skipLF = false
			if chunk[0] == '\n' {
				chunk = chunk[1:]
				continue
			}
		}

		i := bytes.IndexAny(chunk, "\r\n")
		if i < 0 {
			b.hold(chunk)
			break
		}
		b.hold(chunk[:i])
		b.skipLF = chunk[i] == '\r'
		chunk = chunk[i+1:]

		if b.discarding {
			b.discarding = false
			continue
		}
		lines = append(lines, string(b.buf))
		b.buf = b.buf[:0]
	}
	return lines
}

// Flush returns the retained partial line, if any, and resets the buffer.
// Call it once the source reaches EOF.
func (b *LineBuffer) Flush() (string, bool) {
	defer b.reset()
	if b.discarding || len(b.buf) == 0 {
		return "", false
	}
	return string(b.buf), true
}

// Pending reports the number of buffered bytes not yet returned as a line.
func (b *LineBuffer) Pending() int {
	return len(b.buf)
}

func (b *LineBuffer) hold(p []byte) {
	if b.discarding || len(p) == 0 {
		return
	}

	limit := b.MaxLineBytes
	if limit <= 0 {
		limit = DefaultMaxLineBytes
	}
	if len(b.buf)+len(p) <= limit {
		b.buf = append(b.buf, p...)
		return
	}

	if b.Malformed != nil {
		head := b.buf[:min(len(b.buf), maxFragment)]
		if rest := maxFragment - len(head); rest > 0 {
			head = append(head[:len(head):len(head)], p[:min(len(p), rest)]...)
		}
		b.Malformed(NewDecodeError(string(head), fmt.Sprintf("line exceeds %d bytes", limit), nil))
	}
	b.buf = nil
	b.discarding = true
}

func (b *LineBuffer) reset() {
	b.buf = nil
	b.skipLF = false
	b.discarding = false
}
