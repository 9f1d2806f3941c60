// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import (
	"github.com/pkg/errors"

	"github.com/go-spdy/spdyframe/internal/headerblock"
	"github.com/go-spdy/spdyframe/internal/view"
)

// Config holds a Decoder's construction-time, immutable parameters (spec
// §6).
type Config struct {
	// Version is the single SPDY version this Decoder accepts. Frames
	// whose common header carries any other version trigger an
	// UnsupportedVersion error.
	Version uint16
	// MaxChunkSize bounds the payload size of any emitted DataFrame.
	// Must be strictly positive.
	MaxChunkSize uint32
	// MaxHeaderSize bounds the total decompressed header size per
	// header block; 0 means unbounded.
	MaxHeaderSize int
}

// headerBlockDecoder is the capability spec.md §6 describes abstractly:
// decode/reset/end over the header-block compression state. It is
// satisfied by *headerblock.Decoder; the interface exists so tests can
// substitute a fake that counts Reset/End calls (spec §8 property 8).
//
// target is typed as headerblock.HeaderBlockOpener, not this package's
// own HeaderBlockOpener: Go requires a method's parameter types to match
// exactly for interface satisfaction, and headerblock cannot import this
// package (it would cycle back through here). Callers may still pass a
// HeaderBlockOpener value straight through — its method set is a superset
// of headerblock.HeaderBlockOpener's, which is all Go's assignability
// rules require at the call site.
type headerBlockDecoder interface {
	Decode(v *view.View, target headerblock.HeaderBlockOpener, final bool) (invalid, truncated bool, err error)
	Reset()
	End()
}

// Decoder is a single-owner, non-reentrant streaming SPDY frame decoder.
// It performs no I/O and never blocks: Decode/DecodeLast return promptly
// whether or not they could make progress. See the package doc and spec
// §5 for the full concurrency contract.
type Decoder struct {
	cfg  Config
	hbd  headerBlockDecoder
	sink ErrorSink

	state decoderState

	// Per-frame registers, populated by readCommonHeader and consumed by
	// the payload parsers (spec §3).
	flags     uint8
	length    uint32
	version   uint16
	frameType FrameType
	streamID  uint32

	pendingSettings   *SettingsFrame
	settingsRemaining uint32 // entries left to read, derived from length/8 at entry

	pendingHeaders HeaderBlockOpener

	ended bool
}

// NewDecoder constructs a Decoder for cfg, reporting errors to sink (which
// may be nil to discard them). Construction fails if MaxChunkSize is not
// strictly positive (spec §6).
func NewDecoder(cfg Config, sink ErrorSink) (*Decoder, error) {
	if cfg.MaxChunkSize == 0 {
		return nil, errors.New("spdy: MaxChunkSize must be strictly positive")
	}
	return &Decoder{
		cfg:   cfg,
		hbd:   headerblock.New(headerblock.Dictionary, cfg.MaxHeaderSize),
		sink:  sink,
		state: stateReadCommonHeader,
	}, nil
}

// Decode feeds data to the decoder and returns any event produced along
// with the number of leading bytes of data it consumed. The caller must
// retain the unconsumed remainder (data[consumed:]) and prepend it to the
// next chunk of bytes it supplies.
//
// A call may return an event and/or consume bytes, or neither (spec
// §4.1's "progress fixed point"); callers should keep calling Decode with
// the same data until it reports consumed == 0 and a nil event before
// waiting for more input from the transport.
func (d *Decoder) Decode(data []byte) (event FrameEvent, consumed int) {
	return d.decode(data, false)
}

// DecodeLast behaves like Decode but additionally finalizes the
// header-block decoder (spec §4.7's end() call) on every exit path,
// including when called purely to drain already-buffered input. After
// DecodeLast returns, the Decoder is unusable.
func (d *Decoder) DecodeLast(data []byte) (event FrameEvent, consumed int) {
	event, consumed = d.decode(data, true)
	if !d.ended {
		d.hbd.End()
		d.ended = true
	}
	return event, consumed
}

func (d *Decoder) decode(data []byte, final bool) (FrameEvent, int) {
	if d.ended {
		return nil, 0
	}
	v := view.New(data)
	ev := d.step(v)
	return ev, len(data) - v.Readable()
}

// step dispatches on the current state, running exactly one parser
// invocation (spec §4.10: each state's handler advances as far as the
// currently readable bytes allow and returns).
func (d *Decoder) step(v *view.View) FrameEvent {
	switch d.state {
	case stateReadCommonHeader:
		return d.readCommonHeader(v)
	case stateReadControlFrame:
		return d.readControlFrame(v)
	case stateReadSettingsFrame:
		return d.readSettingsFrame(v)
	case stateReadHeaderBlockFrame:
		return d.readHeaderBlockFrame(v)
	case stateReadHeaderBlock:
		return d.readHeaderBlock(v)
	case stateReadDataFrame:
		return d.readDataFrame(v)
	case stateDiscardFrame:
		return d.discardFrame(v)
	case stateFrameError:
		return d.drainFrameError(v)
	default:
		return nil
	}
}

// fail transitions to the terminal FrameError state and surfaces err to
// the configured sink. At most one error is signaled per Decode call
// (spec §7).
func (d *Decoder) fail(err *FrameError) {
	d.state = stateFrameError
	d.pendingSettings = nil
	d.pendingHeaders = nil
	if d.sink != nil {
		d.sink(err)
	}
}

// drainFrameError consumes and drops all currently readable bytes, per
// spec §4.9. It never emits an event and never transitions: FrameError is
// terminal.
func (d *Decoder) drainFrameError(v *view.View) FrameEvent {
	v.Skip(v.Readable())
	return nil
}

// discardFrame consumes up to length bytes of an unrecognized frame type,
// per spec §4.9.
func (d *Decoder) discardFrame(v *view.View) FrameEvent {
	n := v.Readable()
	if uint32(n) > d.length {
		n = int(d.length)
	}
	v.Skip(n)
	d.length -= uint32(n)
	if d.length == 0 {
		d.state = stateReadCommonHeader
	}
	return nil
}
