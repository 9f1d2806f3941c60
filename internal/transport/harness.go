// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport is the reference implementation of the "owning
// transport" the decoder treats as an external collaborator: something
// that reads fragments off a connection, feeds them to a single
// *spdy.Decoder it alone owns, and turns emitted FrameEvents and
// FrameErrors into logs and metrics.
package transport

import (
	"io"

	"go.uber.org/zap"

	"github.com/go-spdy/spdyframe"
)

// readBufferSize bounds how much is read from the connection per Read
// call; it has no relationship to MaxChunkSize, which bounds the
// decoder's own DataFrame emission granularity.
const readBufferSize = 32 * 1024

// Harness owns one Decoder and one connection, end to end. Exactly one
// goroutine may call Run for a given Harness, matching the single-owner
// contract spdy.Decoder documents.
type Harness struct {
	conn    io.Reader
	decoder *spdy.Decoder
	log     *zap.Logger
	handler func(spdy.FrameEvent)

	pending []byte // unconsumed remainder carried across Read calls
}

// New constructs a Harness reading from conn, decoding with cfg, logging
// through log, and invoking handler for every frame event. handler may be
// nil to discard events (metrics and logging still happen).
func New(conn io.Reader, cfg spdy.Config, log *zap.Logger, handler func(spdy.FrameEvent)) (*Harness, error) {
	h := &Harness{conn: conn, log: log, handler: handler}
	dec, err := spdy.NewDecoder(cfg, h.onError)
	if err != nil {
		return nil, err
	}
	h.decoder = dec
	return h, nil
}

// Run drives the read loop until conn returns an error (including
// io.EOF, which finalizes the decoder via DecodeLast rather than
// propagating as a failure). It never returns a nil error: io.EOF
// signals a clean shutdown.
func (h *Harness) Run() error {
	connectionsActive.Inc()
	defer connectionsActive.Dec()

	buf := make([]byte, readBufferSize)
	for {
		n, err := h.conn.Read(buf)
		if n > 0 {
			bytesReadTotal.Add(float64(n))
			h.feed(append(h.pending, buf[:n]...), false)
		}
		if err != nil {
			if err == io.EOF {
				h.feed(h.pending, true)
			} else if h.log != nil {
				h.log.Warn("connection read failed", zap.Error(err))
			}
			return err
		}
	}
}

// feed runs data through the decoder until it reaches a fixed point
// (spec §4.1): no event and no consumed bytes. When final is true (the
// connection is known to be done), one last DecodeLast call follows to
// finalize the header-block decoder even if data is now empty.
func (h *Harness) feed(data []byte, final bool) {
	for {
		event, consumed := h.decoder.Decode(data)
		if event != nil {
			h.dispatch(event)
		}
		if consumed == 0 {
			break
		}
		data = data[consumed:]
	}
	if final {
		event, _ := h.decoder.DecodeLast(data)
		if event != nil {
			h.dispatch(event)
		}
		h.pending = nil
		return
	}
	h.pending = append(h.pending[:0], data...)
}

func (h *Harness) dispatch(event spdy.FrameEvent) {
	framesTotal.WithLabelValues(eventLabel(event)).Inc()
	if h.log != nil {
		h.log.Debug("frame event", zap.String("type", eventLabel(event)))
	}
	if h.handler != nil {
		h.handler(event)
	}
}

func (h *Harness) onError(fe *spdy.FrameError) {
	errorsTotal.WithLabelValues(fe.Kind.String()).Inc()
	if h.log != nil {
		h.log.Warn("frame error",
			zap.String("kind", fe.Kind.String()),
			zap.Uint32("stream_id", fe.StreamID),
			zap.Error(fe),
		)
	}
}

func eventLabel(event spdy.FrameEvent) string {
	switch event.(type) {
	case *spdy.DataFrame:
		return "data"
	case *spdy.SynStreamFrame:
		return "syn_stream"
	case *spdy.SynReplyFrame:
		return "syn_reply"
	case *spdy.RstStreamFrame:
		return "rst_stream"
	case *spdy.SettingsFrame:
		return "settings"
	case *spdy.PingFrame:
		return "ping"
	case *spdy.GoAwayFrame:
		return "goaway"
	case *spdy.HeadersFrame:
		return "headers"
	case *spdy.WindowUpdateFrame:
		return "window_update"
	case *spdy.HeaderBlockChunk:
		return "header_block_chunk"
	case *spdy.HeaderBlockEnd:
		return "header_block_end"
	default:
		return "unknown"
	}
}
