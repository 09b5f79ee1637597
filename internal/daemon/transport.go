/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

var (
	// ErrUnreachable is returned when the daemon socket cannot be dialed
	// (refused, missing, or otherwise unavailable).
	ErrUnreachable = errors.New("daemon unreachable")

	// ErrNotConnected is returned when an operation requires an established
	// connection and there is none.
	ErrNotConnected = errors.New("not connected to daemon")

	// ErrTransportClosed is returned when using a transport after Close, or
	// when the daemon closes the stream before a complete message arrives.
	ErrTransportClosed = errors.New("transport closed")
)

// Transport owns a single bidirectional byte stream to the daemon. It has no
// knowledge of message framing; that lives one layer up in Conn.
//
// Individual reads and writes must not be issued concurrently with
// themselves, but Close may be called from any goroutine to unblock a
// pending Read.
type Transport interface {
	// Read fills p with the next available stream bytes, blocking until at
	// least one byte arrives. Returns ErrTransportClosed (wrapped) once the
	// stream is closed from either side.
	Read(p []byte) (int, error)

	// Write sends p in full.
	Write(p []byte) error

	// Close closes the underlying stream. Safe to call multiple times.
	Close() error
}

// unixTransport implements Transport over a Unix domain socket connection.
type unixTransport struct {
	conn net.Conn

	// writeMu serializes writes so a Close racing a Write cannot interleave
	// partial frames.
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewUnixTransport wraps an established Unix socket connection.
func NewUnixTransport(conn net.Conn) Transport {
	return &unixTransport{conn: conn}
}

// DialUnix connects to the daemon socket at the given path. A refused or
// missing socket is reported as ErrUnreachable.
func DialUnix(ctx context.Context, socketPath string) (Transport, error) {
	var d net.Dialer
	conn, dialErr := d.DialContext(ctx, "unix", socketPath)
	if dialErr != nil {
		return nil, fmt.Errorf("%w: cannot connect to daemon at %s: %v", ErrUnreachable, socketPath, dialErr)
	}

	return NewUnixTransport(conn), nil
}

func (t *unixTransport) Read(p []byte) (int, error) {
	if t.isClosed() {
		return 0, fmt.Errorf("failed to read from daemon socket: %w", ErrTransportClosed)
	}

	n, readErr := t.conn.Read(p)
	if readErr != nil {
		if errors.Is(readErr, io.EOF) || t.isClosed() {
			return n, fmt.Errorf("daemon closed the connection: %w", ErrTransportClosed)
		}
		return n, fmt.Errorf("failed to read from daemon socket: %w", readErr)
	}

	return n, nil
}

func (t *unixTransport) Write(p []byte) error {
	if t.isClosed() {
		return fmt.Errorf("failed to write to daemon socket: %w", ErrTransportClosed)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	for len(p) > 0 {
		n, writeErr := t.conn.Write(p)
		if writeErr != nil {
			return fmt.Errorf("failed to write to daemon socket: %w", writeErr)
		}
		p = p[n:]
	}

	return nil
}

func (t *unixTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	return t.conn.Close()
}

func (t *unixTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
