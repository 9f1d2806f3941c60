// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spdy implements a streaming decoder for the SPDY/3(.1) frame
// layer described in http://tools.ietf.org/html/draft-ietf-httpbis-http2-00.
//
// Decoder consumes an arbitrarily fragmented byte stream and produces a
// sequence of typed FrameEvent values. It never blocks, never performs
// I/O, and tolerates partial input: a call that cannot make progress
// returns with no event and no cursor advance, and the caller is expected
// to supply more bytes and call again.
package spdy

import "net/http"

// Version is the only SPDY protocol version this package implements on
// the wire (the negotiated version itself is configured per Decoder).
const Version = 3

// FrameType identifies the control-frame type field in a common header,
// or DataFrameType for the data-frame (no type field on the wire) case.
type FrameType uint16

// Frame type constants, bit-exact with the wire values in spec §6.
const (
	DataFrameType    FrameType = 0x0000 // sentinel; never appears on the wire
	SynStreamType    FrameType = 0x0001
	SynReplyType     FrameType = 0x0002
	RstStreamType    FrameType = 0x0003
	SettingsType     FrameType = 0x0004
	PingType         FrameType = 0x0006
	GoAwayType       FrameType = 0x0007
	HeadersType      FrameType = 0x0008
	WindowUpdateType FrameType = 0x0009
)

// Control and data frame flag bits.
const (
	FlagFin            uint8 = 0x01 // control FLAG_FIN and data FLAG_FIN share the bit
	FlagUnidirectional uint8 = 0x02 // SYN_STREAM only
	FlagSettingsClear  uint8 = 0x01 // SETTINGS only
	FlagPersistValue   uint8 = 0x01 // per SETTINGS entry
	FlagPersisted      uint8 = 0x02 // per SETTINGS entry
	DataFlagCompressed uint8 = 0x02 // data frame, used by neither the decoder nor the encoder
)

// MaxDataLength is the largest payload a single frame's 24-bit length
// field can declare.
const MaxDataLength = 1<<24 - 1

// commonHeaderSize is the fixed size, in bytes, of the SPDY common frame
// header (spec §6).
const commonHeaderSize = 8

// settingsEntrySize is the fixed size, in bytes, of one SETTINGS
// flag/ID/value tuple (spec §4.5).
const settingsEntrySize = 8

// RSTStatusCode is the status carried by a RST_STREAM frame. Signed to
// match the wire's 32-bit status_code field (spec §3).
type RSTStatusCode int32

// RST_STREAM status codes (0 is invalid and rejected by the parser).
const (
	StatusProtocolError       RSTStatusCode = 1
	StatusInvalidStream       RSTStatusCode = 2
	StatusRefusedStream       RSTStatusCode = 3
	StatusUnsupportedVersion  RSTStatusCode = 4
	StatusCancel              RSTStatusCode = 5
	StatusInternalError       RSTStatusCode = 6
	StatusFlowControlError    RSTStatusCode = 7
	StatusStreamInUse         RSTStatusCode = 8
	StatusStreamAlreadyClosed RSTStatusCode = 9
	StatusInvalidCredentials  RSTStatusCode = 10
	StatusFrameTooLarge       RSTStatusCode = 11
)

// FrameEvent is the tagged union of values the Decoder emits. Exactly one
// concrete type below implements it per emission.
type FrameEvent interface {
	isFrameEvent()
}

// DataFrame is one chunk of a DATA frame's payload, bounded by the
// Decoder's configured MaxChunkSize.
type DataFrame struct {
	StreamID uint32
	Last     bool // true iff this is the final chunk of the frame (length drained to 0 and FLAG_FIN was set)
	Payload  []byte
}

func (*DataFrame) isFrameEvent() {}

// SynStreamFrame is the prologue of a SYN_STREAM frame; its header block,
// if any, follows as HeaderBlockChunk/HeaderBlockEnd events targeting
// this value.
type SynStreamFrame struct {
	StreamID             uint32
	AssociatedToStreamID uint32
	Priority             uint8 // 3 bits
	Last                 bool
	Unidirectional       bool

	headerBlock http.Header
}

func (*SynStreamFrame) isFrameEvent() {}

// Headers returns the (lazily allocated) header map the header-block
// decoder appends name/value pairs into as the compressed block streams
// in.
func (f *SynStreamFrame) Headers() http.Header {
	if f.headerBlock == nil {
		f.headerBlock = make(http.Header)
	}
	return f.headerBlock
}

// SynReplyFrame is the prologue of a SYN_REPLY frame.
type SynReplyFrame struct {
	StreamID uint32
	Last     bool

	headerBlock http.Header
}

func (*SynReplyFrame) isFrameEvent() {}

// Headers returns the (lazily allocated) header map, see
// SynStreamFrame.Headers.
func (f *SynReplyFrame) Headers() http.Header {
	if f.headerBlock == nil {
		f.headerBlock = make(http.Header)
	}
	return f.headerBlock
}

// HeadersFrame is the prologue of a HEADERS frame.
type HeadersFrame struct {
	StreamID uint32
	Last     bool

	headerBlock http.Header
}

func (*HeadersFrame) isFrameEvent() {}

// Headers returns the (lazily allocated) header map, see
// SynStreamFrame.Headers.
func (f *HeadersFrame) Headers() http.Header {
	if f.headerBlock == nil {
		f.headerBlock = make(http.Header)
	}
	return f.headerBlock
}

// RstStreamFrame is the unpacked representation of a RST_STREAM frame.
type RstStreamFrame struct {
	StreamID   uint32
	StatusCode RSTStatusCode
}

func (*RstStreamFrame) isFrameEvent() {}

// SettingsEntry is one ID/value tuple of a SETTINGS frame.
type SettingsEntry struct {
	Value        int32
	PersistValue bool
	Persisted    bool
}

// SettingsFrame is the unpacked representation of a SETTINGS frame.
// Entries is keyed by the 24-bit setting ID; a repeated ID in the wire
// frame keeps only the first occurrence (spec §4.5, §8 property 7).
type SettingsFrame struct {
	ClearPreviouslyPersisted bool
	Entries                  map[uint32]SettingsEntry
}

func (*SettingsFrame) isFrameEvent() {}

// PingFrame is the unpacked representation of a PING frame. Id is signed
// to preserve the 32-bit value bit-exact for echoing, per spec §4.4.
type PingFrame struct {
	ID int32
}

func (*PingFrame) isFrameEvent() {}

// GoAwayFrame is the unpacked representation of a GOAWAY frame.
type GoAwayFrame struct {
	LastGoodStreamID uint32
	StatusCode       int32
}

func (*GoAwayFrame) isFrameEvent() {}

// WindowUpdateFrame is the unpacked representation of a WINDOW_UPDATE
// frame.
type WindowUpdateFrame struct {
	StreamID uint32
	Delta    uint32
}

func (*WindowUpdateFrame) isFrameEvent() {}

// HeaderBlockOpener is implemented by the three frame types that carry a
// compressed header block: SynStreamFrame, SynReplyFrame, HeadersFrame.
// HeaderBlockChunk and HeaderBlockEnd reference the opening event through
// this interface.
type HeaderBlockOpener interface {
	FrameEvent
	Headers() http.Header
}

// HeaderBlockChunk carries a slice of the still-compressed bytes consumed
// from the wire for the header block belonging to Target, in reception
// order. The decoded name/value pairs are applied to Target.Headers()
// incrementally as chunks are processed; Compressed is retained mainly
// for observability by the owning transport.
type HeaderBlockChunk struct {
	Target     HeaderBlockOpener
	Compressed []byte
}

func (*HeaderBlockChunk) isFrameEvent() {}

// HeaderBlockEnd terminates the HeaderBlockChunk stream for Target.
// Invalid is set when the compressed stream or a decoded name/value pair
// was malformed; Truncated is set when the decompressed size exceeded the
// configured budget. Both may be false for a normally-terminated block.
type HeaderBlockEnd struct {
	Target    HeaderBlockOpener
	Invalid   bool
	Truncated bool
}

func (*HeaderBlockEnd) isFrameEvent() {}
