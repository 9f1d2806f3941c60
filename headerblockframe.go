// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/go-spdy/spdyframe/internal/view"

const (
	synStreamPrologueSize = 10
	synReplyPrologueSize  = 4
	headersPrologueSize   = 4
)

// readHeaderBlockFrame parses the fixed-shape prologue of a SYN_STREAM,
// SYN_REPLY or HEADERS frame (spec §4.6). It stays in
// stateReadHeaderBlockFrame, emitting nothing, until the whole prologue
// is readable.
func (d *Decoder) readHeaderBlockFrame(v *view.View) FrameEvent {
	switch d.frameType {
	case SynStreamType:
		return d.readSynStreamPrologue(v)
	case SynReplyType:
		return d.readSynReplyPrologue(v)
	case HeadersType:
		return d.readHeadersPrologue(v)
	default:
		panic("spdy: readHeaderBlockFrame dispatched for non-header-block frame type")
	}
}

func (d *Decoder) readSynStreamPrologue(v *view.View) FrameEvent {
	if v.Readable() < synStreamPrologueSize {
		return nil
	}
	streamID := v.Uint32At(0)
	associatedToStreamID := v.Uint32At(4)
	priority := (v.Uint8At(8) >> 5) & 0x07
	v.Skip(synStreamPrologueSize)
	d.length -= synStreamPrologueSize

	if streamID == 0 {
		d.fail(newInvalidFrame(0, "SYN_STREAM stream id must not be zero"))
		return nil
	}

	frame := &SynStreamFrame{
		StreamID:             streamID,
		AssociatedToStreamID: associatedToStreamID,
		Priority:             priority,
		Last:                 d.flags&FlagFin != 0,
		Unidirectional:       d.flags&FlagUnidirectional != 0,
	}
	return d.openHeaderBlock(frame)
}

func (d *Decoder) readSynReplyPrologue(v *view.View) FrameEvent {
	if v.Readable() < synReplyPrologueSize {
		return nil
	}
	streamID := v.Uint32At(0)
	v.Skip(synReplyPrologueSize)
	d.length -= synReplyPrologueSize

	if streamID == 0 {
		d.fail(newInvalidFrame(0, "SYN_REPLY stream id must not be zero"))
		return nil
	}

	frame := &SynReplyFrame{StreamID: streamID, Last: d.flags&FlagFin != 0}
	return d.openHeaderBlock(frame)
}

func (d *Decoder) readHeadersPrologue(v *view.View) FrameEvent {
	if v.Readable() < headersPrologueSize {
		return nil
	}
	streamID := v.Uint32At(0)
	v.Skip(headersPrologueSize)
	d.length -= headersPrologueSize

	if streamID == 0 {
		d.fail(newInvalidFrame(0, "HEADERS stream id must not be zero"))
		return nil
	}

	frame := &HeadersFrame{StreamID: streamID, Last: d.flags&FlagFin != 0}
	return d.openHeaderBlock(frame)
}

// openHeaderBlock emits the just-parsed opening frame event and either
// returns straight to ReadCommonHeader (no header-block body present) or
// arms pendingHeaders and transitions to ReadHeaderBlock, per spec §4.6.
func (d *Decoder) openHeaderBlock(frame HeaderBlockOpener) FrameEvent {
	if d.length == 0 {
		d.state = stateReadCommonHeader
		return frame
	}
	d.pendingHeaders = frame
	d.state = stateReadHeaderBlock
	return frame
}

// readHeaderBlock streams the compressed header block through the
// header-block decoder in bounded slices, per spec §4.7.
//
// Once the block has been terminated by a HeaderBlockEnd (normally or
// because it was flagged invalid/truncated), pendingHeaders is cleared
// immediately even if length hasn't drained yet; a nil pendingHeaders
// while still in stateReadHeaderBlock means "drain the remaining bytes
// of this frame without feeding the header-block decoder again", which
// is what keeps exactly one HeaderBlockEnd on the wire per block
// regardless of how the remainder is fragmented across calls.
func (d *Decoder) readHeaderBlock(v *view.View) FrameEvent {
	if d.pendingHeaders == nil {
		return d.drainTerminatedHeaderBlock(v)
	}

	sliceLen := v.Readable()
	if uint32(sliceLen) > d.length {
		sliceLen = int(d.length)
	}
	isLastSliceOfBlock := uint32(sliceLen) == d.length

	compressed := v.Bytes(sliceLen)
	sub := view.New(compressed)
	invalid, truncated, err := d.hbd.Decode(sub, d.pendingHeaders, isLastSliceOfBlock)
	consumed := sliceLen - sub.Readable()
	v.Skip(consumed)
	d.length -= uint32(consumed)

	if err != nil {
		target := d.pendingHeaders
		d.pendingHeaders = nil
		d.fail(newHeaderBlockDecodeFailure(0, err))
		_ = target
		return nil
	}

	if invalid || truncated {
		target := d.pendingHeaders
		d.pendingHeaders = nil
		if d.length == 0 {
			d.hbd.Reset()
			d.state = stateReadCommonHeader
		}
		// else: remain in ReadHeaderBlock; the next call(s) see
		// pendingHeaders == nil and drain the remainder without
		// re-invoking the header-block decoder.
		return &HeaderBlockEnd{Target: target, Invalid: invalid, Truncated: truncated}
	}

	if d.length == 0 {
		target := d.pendingHeaders
		d.hbd.Reset()
		d.pendingHeaders = nil
		d.state = stateReadCommonHeader
		return &HeaderBlockEnd{Target: target}
	}

	if consumed > 0 {
		return &HeaderBlockChunk{Target: d.pendingHeaders, Compressed: compressed[:consumed]}
	}
	return nil
}

// drainTerminatedHeaderBlock consumes the remaining bytes of a header
// block whose HeaderBlockEnd has already been emitted, without invoking
// the header-block decoder again. It emits nothing.
func (d *Decoder) drainTerminatedHeaderBlock(v *view.View) FrameEvent {
	n := v.Readable()
	if uint32(n) > d.length {
		n = int(d.length)
	}
	v.Skip(n)
	d.length -= uint32(n)
	if d.length == 0 {
		d.hbd.Reset()
		d.state = stateReadCommonHeader
	}
	return nil
}
