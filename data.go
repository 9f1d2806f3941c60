// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/go-spdy/spdyframe/internal/view"

// readDataFrame emits a DataFrame for up to MaxChunkSize bytes of the
// current DATA frame's payload per call, per spec §4.8. It waits for a
// full chunk (or the remainder of the frame, whichever is smaller) to be
// readable before emitting anything, unlike SETTINGS/HEADERS which make
// partial progress on whatever is available.
func (d *Decoder) readDataFrame(v *view.View) FrameEvent {
	if d.streamID == 0 {
		d.fail(newInvalidDataFrame())
		return nil
	}

	chunk := d.cfg.MaxChunkSize
	if d.length < chunk {
		chunk = d.length
	}
	if uint32(v.Readable()) < chunk {
		return nil
	}

	payload := v.Bytes(int(chunk))
	v.Skip(int(chunk))
	d.length -= chunk

	last := d.length == 0
	if last {
		d.state = stateReadCommonHeader
	}
	return &DataFrame{
		StreamID: d.streamID,
		Last:     last && d.flags&FlagFin != 0,
		Payload:  payload,
	}
}
