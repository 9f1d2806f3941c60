// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package headerblock implements the SPDY header-block (de)compression
// capability spec.md §6 treats as an external collaborator: a stateful
// decoder that, fed successive slices of a compressed name/value block,
// incrementally populates the owning frame's headers and reports whether
// the block turned out malformed or oversized.
//
// The wire format decompressed here (uint32 pair count, then repeated
// uint32 length-prefixed name and value byte strings) is the one the
// teacher's parseHeaderValueBlock documents in its frame-layout comments;
// the compression is zlib (RFC 1950) seeded with the fixed SPDY header
// dictionary, matching the teacher's zlib.NewReaderDict usage.
package headerblock

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-spdy/spdyframe/internal/view"
)

// HeaderBlockOpener is the minimal shape a frame carrying a header block
// must expose: somewhere to append decoded name/value pairs. The root
// package's SynStreamFrame, SynReplyFrame and HeadersFrame all satisfy
// this without headerblock importing the root package.
type HeaderBlockOpener interface {
	Headers() http.Header
}

// pair is one decoded name/value entry.
type pair struct {
	name  string
	value string
}

// Decoder decompresses one header block at a time. It is exclusively
// owned by a single spdy.Decoder instance and must not be shared.
type Decoder struct {
	dict          []byte
	maxHeaderSize int

	buf   bytes.Buffer // compressed bytes accumulated for the in-progress block
	pairs []pair       // fully decoded pairs applied to the target so far
}

// New returns a Decoder seeded with dict (the SPDY header dictionary) and
// bounded by maxHeaderSize bytes of decompressed output; maxHeaderSize <=
// 0 means unbounded.
func New(dict []byte, maxHeaderSize int) *Decoder {
	return &Decoder{dict: dict, maxHeaderSize: maxHeaderSize}
}

// Decode consumes every byte currently readable in v, accumulates it
// against the in-progress block, and applies any newly-decodable
// name/value pairs to target. final must be true on the call that drains
// the frame's last header-block byte (the owning Decoder knows this from
// the wire length countdown); only then is an incomplete compressed
// stream reported as invalid rather than "wait for more input". A bad
// zlib header, corrupt DEFLATE data or a checksum mismatch is reported as
// invalid on any call.
//
// Decode always consumes everything it is given. Malformed and oversized
// blocks are reported through invalid/truncated, which mirror the
// HeaderBlockEnd fields spec.md §3 describes; the returned error is nil
// on every path.
func (d *Decoder) Decode(v *view.View, target HeaderBlockOpener, final bool) (invalid, truncated bool, err error) {
	if n := v.Readable(); n > 0 {
		d.buf.Write(v.Bytes(n))
		v.Skip(n)
	}

	decoded, complete, zerr := d.inflate()
	if zerr != nil {
		return true, false, nil
	}
	if !complete && !final {
		// Not enough compressed bytes yet; try again once more arrives.
		return false, false, nil
	}

	if d.maxHeaderSize > 0 && len(decoded) > d.maxHeaderSize {
		return false, true, nil
	}

	newPairs, pairsComplete, perr := parsePairs(decoded)
	if perr != nil {
		return true, false, nil
	}
	if final && (!complete || !pairsComplete) {
		// The wire frame ended but the compressed stream or the
		// name/value block inside it never terminated cleanly.
		return true, false, nil
	}

	if len(newPairs) > len(d.pairs) {
		h := target.Headers()
		for _, p := range newPairs[len(d.pairs):] {
			h[p.name] = append(h[p.name], p.value)
		}
		d.pairs = newPairs
	}

	return false, false, nil
}

// Reset prepares the Decoder for the next, independent header block. It
// must be called exactly once per normally-terminated block (spec §4.7).
func (d *Decoder) Reset() {
	d.buf.Reset()
	d.pairs = nil
}

// End releases any resources held across the Decoder's lifetime. It must
// be called exactly once when the owning spdy.Decoder is torn down.
func (d *Decoder) End() {
	d.buf.Reset()
	d.pairs = nil
}

// inflate attempts a full zlib decompression pass over everything
// accumulated so far. Because compress/zlib's Reader cannot be paused and
// resumed once it observes a short read, each call re-opens a fresh
// reader over the whole accumulated buffer; this trades CPU for
// correctness under partial input and is acceptable for SPDY header
// blocks, which are small. complete reports whether the zlib stream
// reached its natural end (final block + checksum) using only the bytes
// seen so far.
func (d *Decoder) inflate() (decoded []byte, complete bool, err error) {
	zr, zerr := zlib.NewReaderDict(bytes.NewReader(d.buf.Bytes()), d.dict)
	if zerr != nil {
		if zerr == io.EOF || zerr == io.ErrUnexpectedEOF {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(zerr, "invalid zlib header")
	}
	defer zr.Close()

	decoded, rerr := io.ReadAll(zr)
	switch rerr {
	case nil:
		return decoded, true, nil
	case io.ErrUnexpectedEOF, io.EOF:
		return decoded, false, nil
	default:
		return nil, false, errors.Wrap(rerr, "corrupt compressed header block")
	}
}

// parsePairs decodes as many complete (name, value) entries as buf
// contains, stopping at the first incomplete entry rather than erroring.
func parsePairs(buf []byte) (pairs []pair, complete bool, err error) {
	if len(buf) < 4 {
		return nil, false, nil
	}
	numPairs := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]

	pairs = make([]pair, 0, numPairs)
	for i := uint32(0); i < numPairs; i++ {
		name, rest, ok := readLengthPrefixed(buf)
		if !ok {
			return pairs, false, nil
		}
		buf = rest

		value, rest, ok := readLengthPrefixed(buf)
		if !ok {
			return pairs, false, nil
		}
		buf = rest

		lowered := strings.ToLower(string(name))
		for _, v := range strings.Split(string(value), "\x00") {
			pairs = append(pairs, pair{name: lowered, value: v})
		}
	}
	return pairs, true, nil
}

func readLengthPrefixed(buf []byte) (data, rest []byte, ok bool) {
	if len(buf) < 4 {
		return nil, buf, false
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, buf, false
	}
	return buf[:n], buf[n:], true
}
