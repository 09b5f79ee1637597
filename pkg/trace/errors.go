/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package trace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTrace is the root of the package error taxonomy. Every error
	// returned by this package matches it with errors.Is.
	ErrTrace = errors.New("trace error")

	// ErrConnection covers daemon reachability and transport failures.
	ErrConnection = fmt.Errorf("%w: connection failed", ErrTrace)

	// ErrFraming covers malformed wire traffic. The connection is no longer
	// usable once it occurs.
	ErrFraming = fmt.Errorf("%w: protocol framing violated", ErrTrace)

	// ErrTraceNotFound is reported when the daemon cannot locate or read the
	// recording at the requested path.
	ErrTraceNotFound = fmt.Errorf("%w: trace not found", ErrTrace)

	// ErrDaemon covers daemon-reported operation failures that have no more
	// specific classification.
	ErrDaemon = fmt.Errorf("%w: daemon reported failure", ErrTrace)

	// ErrNavigation is reported when a navigation request fails outright,
	// as opposed to stopping at a trace boundary.
	ErrNavigation = fmt.Errorf("%w: navigation failed", ErrTrace)

	// ErrExpression is reported when the daemon cannot evaluate an
	// expression in the current trace context.
	ErrExpression = fmt.Errorf("%w: expression evaluation failed", ErrTrace)

	// ErrSessionClosed is reported when using a session after Close.
	ErrSessionClosed = fmt.Errorf("%w: session closed", ErrTrace)
)

// IsConnectionError reports whether err indicates a daemon connectivity or
// transport problem.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTraceNotFound reports whether err indicates the recording could not be
// located or read.
func IsTraceNotFound(err error) bool {
	return errors.Is(err, ErrTraceNotFound)
}

// IsExpressionError reports whether err indicates an expression the daemon
// could not evaluate.
func IsExpressionError(err error) bool {
	return errors.Is(err, ErrExpression)
}

// traceNotFoundMarkers are fragments the daemon is known to include in
// open-trace failure messages caused by a missing or unreadable recording.
// The daemon reports these as plain text, so classification is textual.
var traceNotFoundMarkers = []string{
	"not found",
	"no such file",
	"unreadable",
	"cannot read trace metadata",
	"does not exist",
	"is not a valid trace",
}

// classifyOpenFailure maps a daemon open-trace failure message to the error
// taxonomy.
func classifyOpenFailure(message string) error {
	lowered := strings.ToLower(message)
	for _, marker := range traceNotFoundMarkers {
		if strings.Contains(lowered, marker) {
			return fmt.Errorf("%w: %s", ErrTraceNotFound, message)
		}
	}

	return fmt.Errorf("%w: %s", ErrDaemon, message)
}
