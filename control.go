// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/go-spdy/spdyframe/internal/view"

// readControlFrame parses the four fixed-shape control frames (spec
// §4.4). It stays in stateReadControlFrame, emitting nothing, until the
// whole payload is readable.
func (d *Decoder) readControlFrame(v *view.View) FrameEvent {
	if uint32(v.Readable()) < d.length {
		return nil
	}

	var ev FrameEvent
	switch d.frameType {
	case RstStreamType:
		ev = d.parseRstStream(v)
	case PingType:
		ev = d.parsePing(v)
	case GoAwayType:
		ev = d.parseGoAway(v)
	case WindowUpdateType:
		ev = d.parseWindowUpdate(v)
	default:
		panic("spdy: readControlFrame dispatched for non-control frame type")
	}

	if d.state == stateReadControlFrame {
		d.state = stateReadCommonHeader
	}
	return ev
}

func (d *Decoder) parseRstStream(v *view.View) FrameEvent {
	streamID := v.Uint32At(0)
	status := RSTStatusCode(v.Int32At(4))
	v.Skip(8)

	if streamID == 0 {
		d.fail(newInvalidFrame(0, "RST_STREAM stream id must not be zero"))
		return nil
	}
	if status == 0 {
		d.fail(newInvalidFrame(streamID, "RST_STREAM status code must not be zero"))
		return nil
	}
	return &RstStreamFrame{StreamID: streamID, StatusCode: status}
}

func (d *Decoder) parsePing(v *view.View) FrameEvent {
	id := v.Int32At(0)
	v.Skip(4)

	if id == 0 {
		d.fail(newInvalidFrame(0, "PING id must not be zero"))
		return nil
	}
	return &PingFrame{ID: id}
}

func (d *Decoder) parseGoAway(v *view.View) FrameEvent {
	lastGoodStreamID := v.Uint32At(0)
	statusCode := v.Int32At(4)
	v.Skip(8)
	return &GoAwayFrame{LastGoodStreamID: lastGoodStreamID, StatusCode: statusCode}
}

func (d *Decoder) parseWindowUpdate(v *view.View) FrameEvent {
	streamID := v.Uint32At(0)
	delta := v.Uint32At(4)
	v.Skip(8)
	return &WindowUpdateFrame{StreamID: streamID, Delta: delta}
}
