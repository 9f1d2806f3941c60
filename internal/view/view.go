// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package view provides a non-consuming, cursor-style accessor over a
// readable byte buffer, the primitive the SPDY frame decoder builds on to
// peek at absolute offsets without committing to having consumed them.
package view

import "encoding/binary"

// View is a read-only cursor over the bytes currently buffered for a
// connection. Accessors read at an absolute offset from the cursor and do
// not, by themselves, advance it; only Skip does.
//
// A View is not safe for concurrent use; callers own it exclusively for
// the duration of a single decode call, matching the Decoder's
// single-owner contract.
type View struct {
	buf []byte
}

// New wraps buf as a View. buf is not copied; callers must not mutate it
// while the View is in use.
func New(buf []byte) *View {
	return &View{buf: buf}
}

// Readable reports how many bytes are currently available to read.
func (v *View) Readable() int {
	return len(v.buf)
}

// Uint8At reads an unsigned 8-bit integer at off.
func (v *View) Uint8At(off int) uint8 {
	return v.buf[off]
}

// Uint16At reads a big-endian unsigned 16-bit integer at off.
func (v *View) Uint16At(off int) uint16 {
	return binary.BigEndian.Uint16(v.buf[off : off+2])
}

// Uint24At reads a big-endian unsigned 24-bit integer at off, returned
// widened to uint32.
func (v *View) Uint24At(off int) uint32 {
	return uint32(v.buf[off])<<16 | uint32(v.buf[off+1])<<8 | uint32(v.buf[off+2])
}

// Uint32At reads a big-endian unsigned 32-bit integer at off and masks off
// the top bit, matching SPDY's "C|stream-id" convention where the control
// bit is extracted separately from byte 0 of the common header.
func (v *View) Uint32At(off int) uint32 {
	return binary.BigEndian.Uint32(v.buf[off:off+4]) & 0x7fffffff
}

// RawUint32At reads a big-endian unsigned 32-bit integer at off without
// masking, for callers that need the top bit themselves.
func (v *View) RawUint32At(off int) uint32 {
	return binary.BigEndian.Uint32(v.buf[off : off+4])
}

// Int32At reads a big-endian two's-complement signed 32-bit integer at
// off.
func (v *View) Int32At(off int) int32 {
	return int32(binary.BigEndian.Uint32(v.buf[off : off+4]))
}

// Bytes returns the first n readable bytes without consuming them.
func (v *View) Bytes(n int) []byte {
	return v.buf[:n]
}

// Skip consumes n bytes from the front of the view.
func (v *View) Skip(n int) {
	v.buf = v.buf[n:]
}
