/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package trace is the client API for inspecting CodeTracer recordings
through the backend-manager daemon.

A Session is obtained with Open and holds a position on the recorded
execution timeline. Navigation methods (StepOver, StepBack, GotoTicks and
friends) move that position forwards or backwards in recorded time;
inspection methods (Locals, Evaluate, StackTrace) observe program state at
the position; browsing methods (Calltrace, Events, ValueTrace,
TerminalOutput) query the recording as a whole.

Navigation that reaches an edge of the recording is not an error: the
methods return a boundary flag and leave the position unchanged. Errors
returned by this package all match ErrTrace, with more specific sentinels
(ErrConnection, ErrTraceNotFound, ErrExpression) distinguishable via
errors.Is or the Is* helpers.

All operations are synchronous and block until the daemon responds or the
context is done. A Session is not safe for concurrent use.
*/
package trace
