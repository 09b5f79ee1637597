/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	headerTerminator  = "\r\n\r\n"
	contentLengthName = "content-length:"

	// maxHeaderBytes bounds how much data may accumulate before a complete
	// header terminator must have appeared. A peer that streams this much
	// without one is not speaking the protocol.
	maxHeaderBytes = 4 * 1024

	// maxBodyBytes bounds the declared body size. Value-trace responses can
	// be large, but anything beyond this indicates a corrupt length header.
	maxBodyBytes = 256 * 1024 * 1024
)

var (
	// ErrNeedMore is returned by Decoder.Next when the buffered bytes do not
	// yet contain a complete framed message. It is not a failure; feed more
	// bytes and call Next again.
	ErrNeedMore = errors.New("incomplete message: need more bytes")

	// ErrMalformedHeader is returned when the header section is present but
	// unusable (missing or invalid Content-Length). The stream is no longer
	// trustworthy after this error.
	ErrMalformedHeader = errors.New("malformed Content-Length header")
)

// Encode frames payload as one protocol message: a Content-Length header
// followed by the UTF-8 JSON encoding of payload.
func Encode(payload any) ([]byte, error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal message payload: %w", marshalErr)
	}

	header := fmt.Sprintf("Content-Length: %d%s", len(body), headerTerminator)
	framed := make([]byte, 0, len(header)+len(body))
	framed = append(framed, header...)
	framed = append(framed, body...)
	return framed, nil
}

// Decoder incrementally decodes framed messages from a byte stream. Feed
// appends raw bytes in whatever chunks the transport delivers them; Next
// yields one decoded message at a time and removes the consumed bytes.
//
// The zero value is ready to use. Decoder is not safe for concurrent use.
type Decoder struct {
	buf []byte
}

// Feed appends raw stream bytes to the decode buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes awaiting decoding.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset discards all buffered bytes.
func (d *Decoder) Reset() {
	d.buf = nil
}

// Next decodes the next complete framed message from the buffer. It returns
// ErrNeedMore when more bytes are required, or ErrMalformedHeader (possibly
// wrapped) when the stream is corrupt. The returned bytes are an owned copy;
// they remain valid after further Feed calls.
func (d *Decoder) Next() (json.RawMessage, error) {
	headerEnd := bytes.Index(d.buf, []byte(headerTerminator))
	if headerEnd < 0 {
		if len(d.buf) > maxHeaderBytes {
			return nil, fmt.Errorf("%w: no header terminator within %d bytes", ErrMalformedHeader, maxHeaderBytes)
		}
		return nil, ErrNeedMore
	}

	contentLength, parseErr := parseContentLength(d.buf[:headerEnd])
	if parseErr != nil {
		return nil, parseErr
	}

	bodyStart := headerEnd + len(headerTerminator)
	if len(d.buf)-bodyStart < contentLength {
		return nil, ErrNeedMore
	}

	body := make([]byte, contentLength)
	copy(body, d.buf[bodyStart:bodyStart+contentLength])
	d.buf = d.buf[bodyStart+contentLength:]
	return body, nil
}

// parseContentLength extracts the Content-Length value from the raw header
// section (everything before the blank line). Header field names are matched
// case-insensitively per the base protocol.
func parseContentLength(header []byte) (int, error) {
	for _, line := range strings.Split(string(header), "\r\n") {
		if !strings.HasPrefix(strings.ToLower(line), contentLengthName) {
			continue
		}

		value := strings.TrimSpace(line[len(contentLengthName):])
		contentLength, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedHeader, value)
		}
		if contentLength < 0 {
			return 0, fmt.Errorf("%w: negative length %d", ErrMalformedHeader, contentLength)
		}
		if contentLength > maxBodyBytes {
			return 0, fmt.Errorf("%w: declared length %d exceeds maximum %d", ErrMalformedHeader, contentLength, maxBodyBytes)
		}
		return contentLength, nil
	}

	return 0, fmt.Errorf("%w: header field missing", ErrMalformedHeader)
}
