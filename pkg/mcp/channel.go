package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/entrhq/surf/pkg/logging"
)

// MaxBodySize caps the Content-Length a frame may declare. Anything above
// this is treated as a framing error rather than an allocation request.
const MaxBodySize = 64 << 20 // 64 MiB

// ErrFraming marks a malformed frame: a header block without a parseable
// Content-Length. The message is unrecoverable but the stream may still
// carry later well-formed frames, so callers log and keep reading.
var ErrFraming = errors.New("framing error")

// Channel reads and writes Content-Length framed messages on a byte stream.
//
// Each frame is an ASCII header block of "Key: value" lines terminated by
// CRLF and ended by a blank line, followed by exactly Content-Length bytes
// of UTF-8 encoded JSON. The length counts bytes, not characters.
type Channel struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
	log    *logging.Logger
}

// NewChannel creates a channel over the given reader and writer.
func NewChannel(r io.Reader, w io.Writer, log *logging.Logger) *Channel {
	return &Channel{
		reader: bufio.NewReader(r),
		writer: w,
		log:    log,
	}
}

// ReadMessage consumes one frame and returns its body. It returns io.EOF
// when the peer closes the stream, and an error wrapping ErrFraming when a
// complete header block lacks a usable Content-Length.
func (c *Channel) ReadMessage() (json.RawMessage, error) {
	headers, err := c.readHeaders()
	if err != nil {
		return nil, err
	}

	lengthStr, ok := headers["content-length"]
	if !ok {
		c.log.Warnf("frame missing Content-Length header")
		return nil, fmt.Errorf("%w: missing Content-Length header", ErrFraming)
	}

	length, err := strconv.Atoi(lengthStr)
	if err != nil {
		c.log.Warnf("frame has invalid Content-Length %q", lengthStr)
		return nil, fmt.Errorf("%w: invalid Content-Length %q", ErrFraming, lengthStr)
	}
	if length < 0 || length > MaxBodySize {
		c.log.Warnf("frame declares out-of-range Content-Length %d", length)
		return nil, fmt.Errorf("%w: Content-Length %d out of range", ErrFraming, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	return body, nil
}

// readHeaders consumes header lines up to and including the blank line.
// Keys are lower-cased; unknown headers are kept but unused.
func (c *Channel) readHeaders() (map[string]string, error) {
	headers := make(map[string]string)
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return headers, nil
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			// Tolerate stray lines rather than desynchronizing the stream.
			c.log.Warnf("ignoring malformed header line %q", line)
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
}

// WriteMessage serializes v and emits header plus body as a single write,
// with Content-Length set to the UTF-8 byte length of the encoded body.
func (c *Channel) WriteMessage(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	var frame bytes.Buffer
	frame.Grow(len(body) + 32)
	fmt.Fprintf(&frame, "Content-Length: %d\r\n\r\n", len(body))
	frame.Write(body)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.writer.Write(frame.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
