// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/go-spdy/spdyframe/internal/view"

// readCommonHeader parses the 8-byte SPDY frame header and selects the
// next state (spec §4.3). It stays in stateReadCommonHeader, emitting
// nothing, until 8 bytes are readable.
func (d *Decoder) readCommonHeader(v *view.View) FrameEvent {
	if v.Readable() < commonHeaderSize {
		return nil
	}

	control := v.Uint8At(0)&0x80 != 0
	flags := v.Uint8At(4)
	length := v.Uint24At(5)

	var version uint16
	var frameType FrameType
	var streamID uint32
	if control {
		version = v.Uint16At(0) & 0x7fff
		frameType = FrameType(v.Uint16At(2))
	} else {
		version = d.cfg.Version // defaulted, not read from the wire; see spec §9's open question
		frameType = DataFrameType
		streamID = v.Uint32At(0)
	}
	v.Skip(commonHeaderSize)

	d.flags = flags
	d.length = length
	d.version = version
	d.frameType = frameType
	d.streamID = streamID

	if version != d.cfg.Version {
		d.fail(newUnsupportedVersion(version))
		return nil
	}

	if !d.headerValid(frameType, flags, length) {
		d.fail(newInvalidFrame(streamID, "invalid frame header: type=%d flags=%#x length=%d", frameType, flags, length))
		return nil
	}

	next, recognized := nextStateFor(frameType)
	if !recognized {
		if length > 0 {
			d.state = stateDiscardFrame
		} else {
			d.state = stateReadCommonHeader
		}
		return nil
	}

	if length == 0 {
		if next == stateReadDataFrame {
			if streamID == 0 {
				d.fail(newInvalidDataFrame())
				return nil
			}
			d.state = stateReadCommonHeader
			return &DataFrame{StreamID: streamID, Last: flags&FlagFin != 0, Payload: []byte{}}
		}
		// No recognized control frame is legal with length 0 (see the
		// per-type table below), but stay defensive about it.
		d.state = stateReadCommonHeader
		return nil
	}

	d.state = next
	return nil
}

// headerValid runs the per-type well-formedness check spec §4.3's table
// describes. DATA's stream_id != 0 requirement is deliberately NOT
// enforced here: readDataFrame enforces it when the frame's payload is
// processed (and readCommonHeader itself for a zero-length DATA frame),
// which is what produces the InvalidDataFrame-specific error and message
// that scenario S6 requires instead of a generic InvalidFrame.
func (d *Decoder) headerValid(t FrameType, flags uint8, length uint32) bool {
	switch t {
	case DataFrameType:
		return true
	case SynStreamType:
		return length >= 10
	case SynReplyType:
		return length >= 4
	case RstStreamType:
		return flags == 0 && length == 8
	case SettingsType:
		return length >= 4
	case PingType:
		return length == 4
	case GoAwayType:
		return length == 8
	case HeadersType:
		return length >= 4
	case WindowUpdateType:
		return length == 8
	default:
		return true // unknown types are accepted and discarded
	}
}

// nextStateFor maps a recognized frame type to the state that parses its
// payload. recognized is false for any type outside the nine spec §4.3
// names explicitly.
func nextStateFor(t FrameType) (state decoderState, recognized bool) {
	switch t {
	case DataFrameType:
		return stateReadDataFrame, true
	case SynStreamType, SynReplyType, HeadersType:
		return stateReadHeaderBlockFrame, true
	case SettingsType:
		return stateReadSettingsFrame, true
	case RstStreamType, PingType, GoAwayType, WindowUpdateType:
		return stateReadControlFrame, true
	default:
		return stateDiscardFrame, false
	}
}
