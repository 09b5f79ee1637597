/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/metacraft-labs/codetracer/internal/wire"
)

// readChunkSize is the transport read granularity. The decoder handles
// messages split across chunks, so the exact size only affects syscall count.
const readChunkSize = 8 * 1024

// Config configures a daemon connection.
type Config struct {
	// SocketPath is the daemon socket to connect to. Empty means the
	// platform default returned by DefaultSocketPath.
	SocketPath string

	// Logger receives protocol-level trace output. Optional.
	Logger logr.Logger
}

// Conn is a connection to the backend-manager daemon: one transport, a
// monotonically increasing sequence counter, and the blocking
// request/response primitive every higher-level operation funnels through.
//
// Conn is not safe for concurrent use; see the package documentation.
type Conn struct {
	socketPath string
	log        logr.Logger

	transport Transport // nil before Connect and after Close
	seq       int64
	decoder   wire.Decoder
}

// New creates an unconnected Conn.
func New(cfg Config) *Conn {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}

	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return &Conn{
		socketPath: socketPath,
		log:        log,
	}
}

// SocketPath returns the daemon socket path this connection targets.
func (c *Conn) SocketPath() string {
	return c.socketPath
}

// Connected reports whether the transport is established.
func (c *Conn) Connected() bool {
	return c.transport != nil
}

// Connect establishes the transport. It is a no-op when already connected.
// A refused or missing socket is reported as ErrUnreachable.
func (c *Conn) Connect(ctx context.Context) error {
	if c.transport != nil {
		return nil
	}

	transport, dialErr := DialUnix(ctx, c.socketPath)
	if dialErr != nil {
		return dialErr
	}

	c.transport = transport
	c.log.V(2).Info("Connected to daemon", "socket", c.socketPath)
	return nil
}

// Send frames and writes one message. The caller is responsible for having
// assigned any sequence number; most callers want Request instead.
func (c *Conn) Send(message any) error {
	if c.transport == nil {
		return ErrNotConnected
	}

	framed, encodeErr := wire.Encode(message)
	if encodeErr != nil {
		return encodeErr
	}

	return c.transport.Write(framed)
}

// Receive blocks until one complete framed message is available and returns
// its decoded JSON payload. A framing error tears the connection down, since
// the stream can no longer be trusted. Cancelling ctx closes the transport
// to unblock the pending read, which also invalidates the connection.
func (c *Conn) Receive(ctx context.Context) (json.RawMessage, error) {
	if c.transport == nil {
		return nil, ErrNotConnected
	}

	transport := c.transport
	stop := context.AfterFunc(ctx, func() {
		_ = transport.Close()
	})
	defer stop()

	chunk := make([]byte, readChunkSize)
	for {
		raw, decodeErr := c.decoder.Next()
		if decodeErr == nil {
			return raw, nil
		}
		if !errors.Is(decodeErr, wire.ErrNeedMore) {
			c.teardown()
			return nil, decodeErr
		}

		n, readErr := c.transport.Read(chunk)
		if readErr != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("receive aborted: %w", ctx.Err())
			}
			return nil, readErr
		}
		c.decoder.Feed(chunk[:n])
	}
}

// Request sends a command and blocks until the matching response arrives.
// The next sequence number is allocated and stamped on the outgoing message;
// incoming messages whose type is not "response" or whose request_seq does
// not match are discarded, since they are asynchronous daemon events that
// this layer has no consumer for.
//
// The response is returned whether or not it carries success; classifying
// failures is the caller's concern.
func (c *Conn) Request(ctx context.Context, command string, arguments any) (*wire.Response, error) {
	seq := c.nextSeq()
	request := wire.Request{
		Type:      wire.TypeRequest,
		Command:   command,
		Seq:       seq,
		Arguments: arguments,
	}

	c.log.V(2).Info("Sending request", "command", command, "seq", seq)
	if sendErr := c.Send(request); sendErr != nil {
		return nil, sendErr
	}

	for {
		raw, receiveErr := c.Receive(ctx)
		if receiveErr != nil {
			return nil, receiveErr
		}

		var response wire.Response
		if unmarshalErr := json.Unmarshal(raw, &response); unmarshalErr != nil {
			// Framed but not valid JSON: the stream is corrupt.
			c.teardown()
			return nil, fmt.Errorf("%w: body is not valid JSON: %v", wire.ErrMalformedHeader, unmarshalErr)
		}

		if !response.IsResponse() || response.RequestSeq != seq {
			c.log.V(2).Info("Discarding unrelated message",
				"type", response.Type, "requestSeq", response.RequestSeq, "awaiting", seq)
			continue
		}

		c.log.V(2).Info("Received response", "command", command, "seq", seq, "success", response.Success)
		return &response, nil
	}
}

// Close closes the transport and clears buffered stream state. Safe to call
// multiple times or before Connect; close-time transport errors are
// swallowed.
func (c *Conn) Close() error {
	c.teardown()
	return nil
}

func (c *Conn) teardown() {
	if c.transport != nil {
		_ = c.transport.Close()
		c.transport = nil
	}
	c.decoder.Reset()
}

func (c *Conn) nextSeq() int64 {
	c.seq++
	return c.seq
}
