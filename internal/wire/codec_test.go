/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package wire

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeProducesExactFraming(t *testing.T) {
	t.Parallel()

	framed, encodeErr := Encode(map[string]any{"a": 1})
	require.NoError(t, encodeErr)

	body := `{"a":1}`
	assert.Equal(t, fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body), string(framed))
}

func TestDecoderRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := []any{
		map[string]any{"type": "request", "command": "ct/open-trace", "seq": float64(1)},
		map[string]any{"nested": map[string]any{"values": []any{"a", "b", "ü"}}},
		[]any{float64(1), float64(2), float64(3)},
		"just a string",
	}

	t.Run("one chunk per message", func(t *testing.T) {
		var d Decoder
		for _, payload := range payloads {
			framed, encodeErr := Encode(payload)
			require.NoError(t, encodeErr)
			d.Feed(framed)

			raw, nextErr := d.Next()
			require.NoError(t, nextErr)

			var decoded any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, payload, decoded)
		}
		assert.Zero(t, d.Buffered())
	})

	t.Run("all messages in a single read", func(t *testing.T) {
		var d Decoder
		var stream []byte
		for _, payload := range payloads {
			framed, encodeErr := Encode(payload)
			require.NoError(t, encodeErr)
			stream = append(stream, framed...)
		}
		d.Feed(stream)

		for _, payload := range payloads {
			raw, nextErr := d.Next()
			require.NoError(t, nextErr)

			var decoded any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, payload, decoded)
		}

		_, nextErr := d.Next()
		assert.ErrorIs(t, nextErr, ErrNeedMore)
	})

	t.Run("byte by byte delivery", func(t *testing.T) {
		payload := map[string]any{"command": "ct/py-navigate", "ticks": float64(42)}
		framed, encodeErr := Encode(payload)
		require.NoError(t, encodeErr)

		var d Decoder
		for i, b := range framed {
			d.Feed([]byte{b})

			raw, nextErr := d.Next()
			if i < len(framed)-1 {
				require.ErrorIs(t, nextErr, ErrNeedMore, "byte %d of %d", i, len(framed))
				continue
			}

			require.NoError(t, nextErr)
			var decoded any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, payload, decoded)
		}
	})
}

func TestDecoderSplitAcrossReads(t *testing.T) {
	t.Parallel()

	first, encodeErr := Encode(map[string]any{"n": float64(1)})
	require.NoError(t, encodeErr)
	second, encodeErr2 := Encode(map[string]any{"n": float64(2)})
	require.NoError(t, encodeErr2)

	// Split in the middle of the first header and the middle of the second
	// body, with the boundary bytes glued to adjacent chunks.
	stream := append(append([]byte{}, first...), second...)
	chunks := [][]byte{stream[:7], stream[7 : len(first)+3], stream[len(first)+3:]}

	var d Decoder
	var decoded []float64
	for _, chunk := range chunks {
		d.Feed(chunk)
		for {
			raw, nextErr := d.Next()
			if nextErr != nil {
				require.ErrorIs(t, nextErr, ErrNeedMore)
				break
			}
			var msg struct {
				N float64 `json:"n"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			decoded = append(decoded, msg.N)
		}
	}

	assert.Equal(t, []float64{1, 2}, decoded)
}

func TestDecoderMalformedHeader(t *testing.T) {
	t.Parallel()

	t.Run("missing content length field", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte("Content-Type: application/json\r\n\r\n{}"))

		_, nextErr := d.Next()
		assert.ErrorIs(t, nextErr, ErrMalformedHeader)
	})

	t.Run("non numeric length", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte("Content-Length: banana\r\n\r\n{}"))

		_, nextErr := d.Next()
		assert.ErrorIs(t, nextErr, ErrMalformedHeader)
	})

	t.Run("negative length", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte("Content-Length: -5\r\n\r\n{}"))

		_, nextErr := d.Next()
		assert.ErrorIs(t, nextErr, ErrMalformedHeader)
	})

	t.Run("runaway header", func(t *testing.T) {
		var d Decoder
		d.Feed(make([]byte, maxHeaderBytes+1))

		_, nextErr := d.Next()
		assert.ErrorIs(t, nextErr, ErrMalformedHeader)
	})
}

func TestDecoderHeaderCaseInsensitive(t *testing.T) {
	t.Parallel()

	var d Decoder
	d.Feed([]byte("content-length: 2\r\n\r\n{}"))

	raw, nextErr := d.Next()
	require.NoError(t, nextErr)
	assert.Equal(t, "{}", string(raw))
}

func TestDecoderReturnedBytesAreOwned(t *testing.T) {
	t.Parallel()

	framed, encodeErr := Encode("first")
	require.NoError(t, encodeErr)

	var d Decoder
	d.Feed(framed)
	raw, nextErr := d.Next()
	require.NoError(t, nextErr)

	// Feeding more data must not invalidate previously returned messages.
	next, encodeErr2 := Encode("second")
	require.NoError(t, encodeErr2)
	d.Feed(next)

	assert.Equal(t, `"first"`, string(raw))
}
