// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import (
	"compress/zlib"
	"encoding/binary"
	"io"
	"net/http"
	"sort"

	"github.com/pkg/errors"

	"github.com/go-spdy/spdyframe/internal/headerblock"
)

// HeaderBlockEncoder compresses name/value header blocks the way the
// decoder's counterpart decompresses them: zlib seeded with the SPDY
// header dictionary. Each Encode call produces one self-contained zlib
// stream (header through checksum trailer), matching headerblock.Decoder
// re-inflating the whole accumulated block from scratch on every call.
// Tests use it to build frames a Decoder can round-trip.
type HeaderBlockEncoder struct{}

// NewHeaderBlockEncoder returns a HeaderBlockEncoder seeded with the
// package's reconstructed SPDY header dictionary.
func NewHeaderBlockEncoder() *HeaderBlockEncoder {
	return &HeaderBlockEncoder{}
}

type writeBuffer struct {
	b []byte
}

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// Encode compresses h into a single zlib-framed header block.
func (e *HeaderBlockEncoder) Encode(h http.Header) ([]byte, error) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var body writeBuffer
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(names)))
	body.Write(countBuf[:])
	for _, name := range names {
		writeLengthPrefixed(&body, []byte(name))
		writeLengthPrefixed(&body, []byte(joinHeaderValues(h[name])))
	}

	var out writeBuffer
	zw := zlib.NewWriterDict(&out, zlib.DefaultCompression, headerblock.Dictionary)
	if _, err := zw.Write(body.b); err != nil {
		return nil, errors.Wrap(err, "compress header block")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close header block")
	}
	return out.b, nil
}

func joinHeaderValues(values []string) string {
	out := values[0]
	for _, v := range values[1:] {
		out += "\x00" + v
	}
	return out
}

func writeLengthPrefixed(w *writeBuffer, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
}

// EncodeCommonHeader writes the 8-byte control-frame header for type t,
// flags and a payload of the given length.
func EncodeCommonHeader(w io.Writer, t FrameType, flags uint8, length uint32) error {
	var hdr [commonHeaderSize]byte
	binary.BigEndian.PutUint16(hdr[0:2], 0x8000|Version)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(t))
	hdr[4] = flags
	putUint24(hdr[5:8], length)
	_, err := w.Write(hdr[:])
	return err
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// EncodeDataFrame writes a DATA frame's 8-byte header and payload.
func EncodeDataFrame(w io.Writer, streamID uint32, last bool, payload []byte) error {
	var hdr [commonHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], streamID&0x7fffffff)
	if last {
		hdr[4] = FlagFin
	}
	putUint24(hdr[5:8], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// EncodeSynStreamFrame writes a SYN_STREAM frame's header, prologue and
// pre-compressed header block.
func EncodeSynStreamFrame(w io.Writer, f *SynStreamFrame, compressedHeaders []byte) error {
	var flags uint8
	if f.Last {
		flags |= FlagFin
	}
	if f.Unidirectional {
		flags |= FlagUnidirectional
	}
	if err := EncodeCommonHeader(w, SynStreamType, flags, uint32(synStreamPrologueSize+len(compressedHeaders))); err != nil {
		return err
	}
	var prologue [synStreamPrologueSize]byte
	binary.BigEndian.PutUint32(prologue[0:4], f.StreamID&0x7fffffff)
	binary.BigEndian.PutUint32(prologue[4:8], f.AssociatedToStreamID&0x7fffffff)
	prologue[8] = (f.Priority & 0x07) << 5
	if _, err := w.Write(prologue[:]); err != nil {
		return err
	}
	_, err := w.Write(compressedHeaders)
	return err
}

// EncodeSynReplyFrame writes a SYN_REPLY frame's header, prologue and
// pre-compressed header block.
func EncodeSynReplyFrame(w io.Writer, f *SynReplyFrame, compressedHeaders []byte) error {
	var flags uint8
	if f.Last {
		flags |= FlagFin
	}
	if err := EncodeCommonHeader(w, SynReplyType, flags, uint32(synReplyPrologueSize+len(compressedHeaders))); err != nil {
		return err
	}
	var prologue [synReplyPrologueSize]byte
	binary.BigEndian.PutUint32(prologue[0:4], f.StreamID&0x7fffffff)
	if _, err := w.Write(prologue[:]); err != nil {
		return err
	}
	_, err := w.Write(compressedHeaders)
	return err
}

// EncodeHeadersFrame writes a HEADERS frame's header, prologue and
// pre-compressed header block.
func EncodeHeadersFrame(w io.Writer, f *HeadersFrame, compressedHeaders []byte) error {
	var flags uint8
	if f.Last {
		flags |= FlagFin
	}
	if err := EncodeCommonHeader(w, HeadersType, flags, uint32(headersPrologueSize+len(compressedHeaders))); err != nil {
		return err
	}
	var prologue [headersPrologueSize]byte
	binary.BigEndian.PutUint32(prologue[0:4], f.StreamID&0x7fffffff)
	if _, err := w.Write(prologue[:]); err != nil {
		return err
	}
	_, err := w.Write(compressedHeaders)
	return err
}

// EncodeRstStreamFrame writes a RST_STREAM frame.
func EncodeRstStreamFrame(w io.Writer, f *RstStreamFrame) error {
	if err := EncodeCommonHeader(w, RstStreamType, 0, 8); err != nil {
		return err
	}
	var body [8]byte
	binary.BigEndian.PutUint32(body[0:4], f.StreamID&0x7fffffff)
	binary.BigEndian.PutUint32(body[4:8], uint32(f.StatusCode))
	_, err := w.Write(body[:])
	return err
}

// EncodeSettingsFrame writes a SETTINGS frame. Entries are emitted in
// ascending ID order for deterministic output.
func EncodeSettingsFrame(w io.Writer, f *SettingsFrame) error {
	ids := make([]uint32, 0, len(f.Entries))
	for id := range f.Entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var flags uint8
	if f.ClearPreviouslyPersisted {
		flags |= FlagSettingsClear
	}
	length := 4 + uint32(len(ids))*settingsEntrySize
	if err := EncodeCommonHeader(w, SettingsType, flags, length); err != nil {
		return err
	}
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(ids)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, id := range ids {
		e := f.Entries[id]
		var entry [settingsEntrySize]byte
		var entryFlags uint8
		if e.PersistValue {
			entryFlags |= FlagPersistValue
		}
		if e.Persisted {
			entryFlags |= FlagPersisted
		}
		entry[0] = entryFlags
		putUint24(entry[1:4], id)
		binary.BigEndian.PutUint32(entry[4:8], uint32(e.Value))
		if _, err := w.Write(entry[:]); err != nil {
			return err
		}
	}
	return nil
}

// EncodePingFrame writes a PING frame.
func EncodePingFrame(w io.Writer, f *PingFrame) error {
	if err := EncodeCommonHeader(w, PingType, 0, 4); err != nil {
		return err
	}
	var body [4]byte
	binary.BigEndian.PutUint32(body[:], uint32(f.ID))
	_, err := w.Write(body[:])
	return err
}

// EncodeGoAwayFrame writes a GOAWAY frame.
func EncodeGoAwayFrame(w io.Writer, f *GoAwayFrame) error {
	if err := EncodeCommonHeader(w, GoAwayType, 0, 8); err != nil {
		return err
	}
	var body [8]byte
	binary.BigEndian.PutUint32(body[0:4], f.LastGoodStreamID&0x7fffffff)
	binary.BigEndian.PutUint32(body[4:8], uint32(f.StatusCode))
	_, err := w.Write(body[:])
	return err
}

// EncodeWindowUpdateFrame writes a WINDOW_UPDATE frame.
func EncodeWindowUpdateFrame(w io.Writer, f *WindowUpdateFrame) error {
	if err := EncodeCommonHeader(w, WindowUpdateType, 0, 8); err != nil {
		return err
	}
	var body [8]byte
	binary.BigEndian.PutUint32(body[0:4], f.StreamID&0x7fffffff)
	binary.BigEndian.PutUint32(body[4:8], f.Delta&0x7fffffff)
	_, err := w.Write(body[:])
	return err
}
