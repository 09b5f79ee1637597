/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package wire implements the base protocol spoken between CodeTracer clients
and the backend-manager daemon.

Messages are JSON values framed with a Content-Length header, the same base
protocol used by the Debug Adapter Protocol:

	Content-Length: <byte-count>\r\n
	\r\n
	<byte-count bytes of UTF-8 JSON>

The package knows nothing about message semantics beyond the three message
shapes (request, response, event). Encode produces one framed message;
Decoder consumes an accumulating byte stream and yields framed messages as
they become complete, tolerating messages split across arbitrary read
boundaries as well as many messages arriving in a single read.

A malformed or missing header is fatal: once Decoder returns an error other
than ErrNeedMore the remaining stream cannot be trusted and the connection
must be torn down.
*/
package wire
