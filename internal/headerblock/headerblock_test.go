// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package headerblock

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spdy/spdyframe/internal/view"
)

type fakeFrame struct {
	h http.Header
}

func (f *fakeFrame) Headers() http.Header {
	if f.h == nil {
		f.h = make(http.Header)
	}
	return f.h
}

func compressPairs(t *testing.T, pairs map[string]string) []byte {
	t.Helper()
	var body bytes.Buffer
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(pairs)))
	body.Write(countBuf[:])
	for name, value := range pairs {
		writeLP(&body, []byte(name))
		writeLP(&body, []byte(value))
	}

	var out bytes.Buffer
	zw := zlib.NewWriterDict(&out, zlib.DefaultCompression, Dictionary)
	_, err := zw.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return out.Bytes()
}

func writeLP(buf *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func TestDecodeWholeBlockAtOnce(t *testing.T) {
	compressed := compressPairs(t, map[string]string{":method": "GET"})
	dec := New(Dictionary, 0)
	target := &fakeFrame{}

	invalid, truncated, err := dec.Decode(view.New(compressed), target, true)
	require.NoError(t, err)
	assert.False(t, invalid)
	assert.False(t, truncated)
	assert.Equal(t, "GET", target.Headers().Get(":method"))
}

func TestDecodeAcrossMultipleCalls(t *testing.T) {
	compressed := compressPairs(t, map[string]string{":path": "/a", ":method": "POST"})
	dec := New(Dictionary, 0)
	target := &fakeFrame{}

	mid := len(compressed) / 2
	invalid, truncated, err := dec.Decode(view.New(compressed[:mid]), target, false)
	require.NoError(t, err)
	assert.False(t, invalid)
	assert.False(t, truncated)

	invalid, truncated, err = dec.Decode(view.New(compressed[mid:]), target, true)
	require.NoError(t, err)
	assert.False(t, invalid)
	assert.False(t, truncated)
	assert.Equal(t, "/a", target.Headers().Get(":path"))
	assert.Equal(t, "POST", target.Headers().Get(":method"))
}

func TestDecodeTruncatedBlockIsInvalid(t *testing.T) {
	compressed := compressPairs(t, map[string]string{":method": "GET"})
	dec := New(Dictionary, 0)
	target := &fakeFrame{}

	invalid, truncated, err := dec.Decode(view.New(compressed[:len(compressed)-2]), target, true)
	require.NoError(t, err)
	assert.True(t, invalid)
	assert.False(t, truncated)
}

func TestDecodeOversizedBlockIsTruncated(t *testing.T) {
	compressed := compressPairs(t, map[string]string{"x-long": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"})
	dec := New(Dictionary, 4) // absurdly small budget
	target := &fakeFrame{}

	_, truncated, err := dec.Decode(view.New(compressed), target, true)
	require.NoError(t, err)
	assert.True(t, truncated)
}

func TestDecodeCorruptZlibHeaderIsInvalid(t *testing.T) {
	dec := New(Dictionary, 0)
	target := &fakeFrame{}

	invalid, _, err := dec.Decode(view.New([]byte{0x00, 0x01, 0x02, 0x03}), target, true)
	require.NoError(t, err)
	assert.True(t, invalid)
}

func TestResetClearsAccumulatedState(t *testing.T) {
	compressed := compressPairs(t, map[string]string{":method": "GET"})
	dec := New(Dictionary, 0)
	target := &fakeFrame{}

	_, _, err := dec.Decode(view.New(compressed), target, true)
	require.NoError(t, err)
	dec.Reset()

	compressed2 := compressPairs(t, map[string]string{":method": "PUT"})
	target2 := &fakeFrame{}
	invalid, truncated, err := dec.Decode(view.New(compressed2), target2, true)
	require.NoError(t, err)
	assert.False(t, invalid)
	assert.False(t, truncated)
	assert.Equal(t, "PUT", target2.Headers().Get(":method"))
}
