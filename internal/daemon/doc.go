/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package daemon provides the connection to the CodeTracer backend-manager
daemon: a Unix domain socket transport plus request/response correlation
over the framed protocol implemented by internal/wire.

A Conn serves exactly one logical caller issuing one request at a time.
Correlation matches responses by sequence number rather than arrival order,
because the daemon interleaves unsolicited event messages with responses on
the same stream; under the single in-flight request discipline this reduces
to skipping everything that is not the awaited response. A Conn must not be
shared between goroutines without external synchronization, since interleaved
Request calls would attribute responses to the wrong caller.

There is no reconnect logic here. A failed or closed connection invalidates
the Conn; recovery policy belongs to the caller.
*/
package daemon
