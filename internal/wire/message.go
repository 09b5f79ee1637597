/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package wire

import "encoding/json"

// Message type discriminators used in the "type" field.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Request is an outgoing command message. Seq must be unique per connection
// and strictly increasing; the daemon echoes it back as RequestSeq on the
// matching response.
type Request struct {
	Type      string `json:"type"`
	Command   string `json:"command"`
	Seq       int64  `json:"seq"`
	Arguments any    `json:"arguments,omitempty"`
}

// Response is an incoming reply, correlated to the originating request by
// RequestSeq. The daemon interleaves asynchronous event messages with
// responses on the same stream; unmarshalling any incoming message into
// Response is safe because only the "type" field is needed to tell them
// apart.
type Response struct {
	Type       string          `json:"type"`
	Command    string          `json:"command,omitempty"`
	RequestSeq int64           `json:"request_seq"`
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// IsResponse reports whether this message is a response (as opposed to an
// interleaved event or notification).
func (r *Response) IsResponse() bool {
	return r.Type == TypeResponse
}
