/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package trace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/metacraft-labs/codetracer/internal/daemon"
	"github.com/metacraft-labs/codetracer/internal/wire"
)

// Navigation methods understood by the daemon.
const (
	methodStepOver        = "step_over"
	methodStepIn          = "step_in"
	methodStepOut         = "step_out"
	methodStepBack        = "step_back"
	methodReverseStepIn   = "reverse_step_in"
	methodReverseStepOut  = "reverse_step_out"
	methodContinueForward = "continue_forward"
	methodContinueReverse = "continue_reverse"
	methodGotoTicks       = "goto_ticks"
)

// Value trace modes for ValueTrace.
const (
	// FlowModeCall traces the most recent call through the line.
	FlowModeCall = "call"
	// FlowModeLine traces every recorded visit of the line.
	FlowModeLine = "line"
)

// SessionConfig carries optional session settings.
type SessionConfig struct {
	// DaemonSocket overrides the well-known daemon socket path.
	DaemonSocket string

	// Logger receives session diagnostics. Optional.
	Logger logr.Logger
}

// Session is an open recording being inspected through the backend-manager
// daemon. It tracks the current position on the execution timeline and the
// trace metadata seeded at open time.
//
// A Session issues one request at a time and is not safe for concurrent
// use.
type Session struct {
	conn *daemon.Conn
	log  logr.Logger

	tracePath   string
	language    string
	sourceFiles []string
	totalEvents int
	program     string
	workdir     string

	location        Location
	activeProcessID int
	closed          bool
}

// Open connects to the daemon and opens the recording at path. A path that
// exists locally is resolved to its absolute form; otherwise it is passed
// through verbatim for daemon-side resolution.
func Open(ctx context.Context, path string, cfg SessionConfig) (*Session, error) {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	tracePath := resolveTracePath(path)

	conn := daemon.New(daemon.Config{
		SocketPath: cfg.DaemonSocket,
		Logger:     log,
	})

	if connectErr := conn.Connect(ctx); connectErr != nil {
		return nil, mapTransportError(connectErr)
	}

	session := &Session{
		conn:      conn,
		log:       log,
		tracePath: tracePath,
	}

	body, requestErr := session.roundTrip(ctx, "ct/open-trace", nil, nil)
	if requestErr != nil {
		_ = conn.Close()
		return nil, requestErr
	}

	reply, parseErr := parseOpen(body)
	if parseErr != nil {
		_ = conn.Close()
		return nil, parseErr
	}

	session.language = reply.Language
	session.totalEvents = reply.TotalEvents
	session.sourceFiles = reply.SourceFiles
	session.program = reply.Program
	session.workdir = reply.WorkDir
	session.location = Location{
		Path:   reply.Path,
		Line:   reply.Line,
		Column: reply.Column,
		Ticks:  reply.Ticks,
	}

	log.V(1).Info("Opened trace", "path", tracePath, "language", reply.Language, "totalEvents", reply.TotalEvents)
	return session, nil
}

// resolveTracePath makes a locally existing path absolute.
func resolveTracePath(path string) string {
	if _, statErr := os.Stat(path); statErr != nil {
		return path
	}
	if abs, absErr := filepath.Abs(path); absErr == nil {
		return abs
	}
	return path
}

// Close releases the recording and disconnects. The close-trace request is
// best effort; transport failures at this point are ignored. Close is
// idempotent.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true

	if _, closeErr := s.roundTrip(ctx, "ct/close-trace", nil, nil); closeErr != nil {
		s.log.V(1).Info("close-trace request failed, disconnecting anyway", "error", closeErr.Error())
	}

	return s.conn.Close()
}

// Path returns the trace path as sent to the daemon.
func (s *Session) Path() string { return s.tracePath }

// Language returns the language of the recorded program.
func (s *Session) Language() string { return s.language }

// SourceFiles returns the source files captured in the recording.
func (s *Session) SourceFiles() []string { return s.sourceFiles }

// TotalEvents returns the number of entries in the recorded event log.
func (s *Session) TotalEvents() int { return s.totalEvents }

// Program returns the recorded program's name or path.
func (s *Session) Program() string { return s.program }

// WorkDir returns the working directory the program was recorded in.
func (s *Session) WorkDir() string { return s.workdir }

// CurrentLocation returns the session's position on the execution timeline.
func (s *Session) CurrentLocation() Location { return s.location }

// CurrentTicks returns the tick count of the session's position.
func (s *Session) CurrentTicks() int64 { return s.location.Ticks }

// ActiveProcessID returns the process selected with SelectProcess, or zero.
func (s *Session) ActiveProcessID() int { return s.activeProcessID }

// StepOver moves to the next line in the current frame. The boolean is true
// when the daemon stopped at the end of the recording, in which case the
// position is unchanged.
func (s *Session) StepOver(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodStepOver, nil)
}

// StepIn moves into the next call.
func (s *Session) StepIn(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodStepIn, nil)
}

// StepOut runs to the return of the current frame.
func (s *Session) StepOut(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodStepOut, nil)
}

// StepBack moves to the previous line, traveling backwards in recorded
// time. The boolean is true at the start of the recording.
func (s *Session) StepBack(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodStepBack, nil)
}

// ReverseStepIn steps backwards into the call that most recently returned.
func (s *Session) ReverseStepIn(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodReverseStepIn, nil)
}

// ReverseStepOut steps backwards out of the current frame.
func (s *Session) ReverseStepOut(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodReverseStepOut, nil)
}

// ContinueForward runs forward to the next breakpoint or the end of the
// recording.
func (s *Session) ContinueForward(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodContinueForward, nil)
}

// ContinueReverse runs backwards to the previous breakpoint or the start of
// the recording.
func (s *Session) ContinueReverse(ctx context.Context) (Location, bool, error) {
	return s.navigate(ctx, methodContinueReverse, nil)
}

// GotoTicks jumps directly to a tick count on the execution timeline.
func (s *Session) GotoTicks(ctx context.Context, ticks int64) (Location, bool, error) {
	return s.navigate(ctx, methodGotoTicks, map[string]any{"ticks": ticks})
}

func (s *Session) navigate(ctx context.Context, method string, extra map[string]any) (Location, bool, error) {
	arguments := map[string]any{"method": method}
	for key, value := range extra {
		arguments[key] = value
	}

	body, requestErr := s.roundTrip(ctx, "ct/py-navigate", arguments, ErrNavigation)
	if requestErr != nil {
		return Location{}, false, requestErr
	}

	location, boundary, parseErr := parseNavigation(body)
	if parseErr != nil {
		return Location{}, false, parseErr
	}

	// A boundary stop does not move the session.
	if !boundary {
		s.location = location
	}
	return s.location, boundary, nil
}

// Locals returns the variables visible at the current position. maxDepth
// limits how deep structured values are expanded (1 means scalars only)
// and countBudget caps the total number of variables returned, counted in
// pre-order; zero or negative means no cap.
func (s *Session) Locals(ctx context.Context, maxDepth int, countBudget int) ([]Variable, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-locals", map[string]any{
		"depth":       maxDepth,
		"countBudget": countBudget,
	}, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseVariables(body, maxDepth, countBudget)
}

// Evaluate evaluates an expression at the current position. The result is
// returned as a Variable named after the expression.
func (s *Session) Evaluate(ctx context.Context, expression string) (Variable, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-evaluate", map[string]any{
		"expression": expression,
	}, ErrExpression)
	if requestErr != nil {
		return Variable{}, requestErr
	}
	return parseEvaluation(body, expression)
}

// StackTrace returns the recorded call stack at the current position,
// innermost frame first.
func (s *Session) StackTrace(ctx context.Context) ([]Frame, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-stack-trace", nil, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseFrames(body)
}

// CurrentFrame returns the innermost stack frame, or a frame synthesized
// from the session position when the daemon reports an empty stack.
func (s *Session) CurrentFrame(ctx context.Context) (Frame, error) {
	frames, stackErr := s.StackTrace(ctx)
	if stackErr != nil {
		return Frame{}, stackErr
	}
	if len(frames) == 0 {
		return Frame{Location: s.location}, nil
	}
	return frames[0], nil
}

// Processes lists the processes captured in a multi-process recording.
func (s *Session) Processes(ctx context.Context) ([]Process, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-processes", nil, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseProcesses(body)
}

// SelectProcess switches the session to inspect another recorded process.
func (s *Session) SelectProcess(ctx context.Context, processID int) error {
	_, requestErr := s.roundTrip(ctx, "ct/py-select-process", map[string]any{
		"processId": processID,
	}, nil)
	if requestErr != nil {
		return requestErr
	}
	s.activeProcessID = processID
	return nil
}

// AddBreakpoint registers a breakpoint for ContinueForward and
// ContinueReverse and returns its identifier.
func (s *Session) AddBreakpoint(ctx context.Context, path string, line int) (int64, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-add-breakpoint", map[string]any{
		"path": path,
		"line": line,
	}, nil)
	if requestErr != nil {
		return 0, requestErr
	}
	return parseID(body, "breakpointId")
}

// RemoveBreakpoint removes a breakpoint by identifier.
func (s *Session) RemoveBreakpoint(ctx context.Context, breakpointID int64) error {
	_, requestErr := s.roundTrip(ctx, "ct/py-remove-breakpoint", map[string]any{
		"breakpointId": breakpointID,
	}, nil)
	return requestErr
}

// AddWatchpoint registers an expression watch for ContinueForward and
// ContinueReverse and returns its identifier.
func (s *Session) AddWatchpoint(ctx context.Context, expression string) (int64, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-add-watchpoint", map[string]any{
		"expression": expression,
	}, ErrExpression)
	if requestErr != nil {
		return 0, requestErr
	}
	return parseID(body, "watchpointId")
}

// RemoveWatchpoint removes a watchpoint by identifier.
func (s *Session) RemoveWatchpoint(ctx context.Context, watchpointID int64) error {
	_, requestErr := s.roundTrip(ctx, "ct/py-remove-watchpoint", map[string]any{
		"watchpointId": watchpointID,
	}, nil)
	return requestErr
}

// AddTracepoint registers a logging point at a source line. expressions
// name the values to capture each time execution passes the line during
// RunTracepoints.
func (s *Session) AddTracepoint(ctx context.Context, path string, line int, expressions []string) (int64, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-add-tracepoint", map[string]any{
		"path":        path,
		"line":        line,
		"expressions": expressions,
	}, nil)
	if requestErr != nil {
		return 0, requestErr
	}
	return parseID(body, "tracepointId")
}

// RemoveTracepoint removes a tracepoint by identifier.
func (s *Session) RemoveTracepoint(ctx context.Context, tracepointID int64) error {
	_, requestErr := s.roundTrip(ctx, "ct/py-remove-tracepoint", map[string]any{
		"tracepointId": tracepointID,
	}, nil)
	return requestErr
}

// RunTracepoints replays the recording against the registered tracepoints
// and returns the hits in execution order. stopAfter caps the number of
// hits; zero or negative means no cap.
func (s *Session) RunTracepoints(ctx context.Context, stopAfter int) ([]TracepointHit, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-run-tracepoints", map[string]any{
		"stopAfter": stopAfter,
	}, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseTracepointHits(body)
}

// ValueTrace traces a source line through the recording: every recorded
// visit of the line with surrounding loop structure. mode is FlowModeCall
// or FlowModeLine.
func (s *Session) ValueTrace(ctx context.Context, path string, line int, mode string) (ValueTrace, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-flow", map[string]any{
		"path": path,
		"line": line,
		"mode": mode,
	}, nil)
	if requestErr != nil {
		return ValueTrace{}, requestErr
	}
	return parseValueTrace(body)
}

// Calltrace pages through the recorded call tree starting at index start,
// returning up to count calls expanded to the given depth.
func (s *Session) Calltrace(ctx context.Context, start int, count int, depth int) ([]Call, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-calltrace", map[string]any{
		"start": start,
		"count": count,
		"depth": depth,
	}, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseCalls(body)
}

// SearchCalltrace finds calls whose function name contains query,
// returning up to limit results.
func (s *Session) SearchCalltrace(ctx context.Context, query string, limit int) ([]Call, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-search-calltrace", map[string]any{
		"query": query,
		"limit": limit,
	}, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseCalls(body)
}

// Events pages through the recorded event log starting at index start,
// returning up to count events matching the filter.
func (s *Session) Events(ctx context.Context, start int, count int, filter EventFilter) ([]Event, error) {
	arguments := map[string]any{
		"start": start,
		"count": count,
	}
	if filter.Kind != "" {
		arguments["typeFilter"] = filter.Kind
	}
	if filter.Search != "" {
		arguments["search"] = filter.Search
	}

	body, requestErr := s.roundTrip(ctx, "ct/py-events", arguments, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	return parseEvents(body)
}

// TerminalOutput returns the captured standard stream output by line
// range. endLine -1 means to the end.
func (s *Session) TerminalOutput(ctx context.Context, startLine int, endLine int) (string, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-terminal", map[string]any{
		"startLine": startLine,
		"endLine":   endLine,
	}, nil)
	if requestErr != nil {
		return "", requestErr
	}
	return parseTerminal(body)
}

// ReadSource returns the captured content of a source file from the
// recording.
func (s *Session) ReadSource(ctx context.Context, path string) (string, error) {
	body, requestErr := s.roundTrip(ctx, "ct/py-read-source", map[string]any{
		"path": path,
	}, nil)
	if requestErr != nil {
		return "", requestErr
	}
	return parseSource(body)
}

// roundTrip performs one request/response exchange. The trace path is
// stamped on every request. A daemon failure response becomes failAs when
// given, ErrDaemon otherwise; open-trace failures are classified by
// message content instead.
func (s *Session) roundTrip(ctx context.Context, command string, arguments map[string]any, failAs error) (json.RawMessage, error) {
	if s.closed && command != "ct/close-trace" {
		return nil, ErrSessionClosed
	}

	merged := map[string]any{"tracePath": s.tracePath}
	for key, value := range arguments {
		merged[key] = value
	}

	response, requestErr := s.conn.Request(ctx, command, merged)
	if requestErr != nil {
		return nil, mapTransportError(requestErr)
	}

	if !response.Success {
		if command == "ct/open-trace" {
			return nil, classifyOpenFailure(response.Message)
		}
		if failAs == nil {
			failAs = ErrDaemon
		}
		return nil, fmt.Errorf("%w: %s: %s", failAs, command, response.Message)
	}

	return response.Body, nil
}

// mapTransportError folds connection-layer errors into the package
// taxonomy. Context cancellation passes through untouched.
func mapTransportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, wire.ErrMalformedHeader):
		return fmt.Errorf("%w: %v", ErrFraming, err)
	default:
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
}
