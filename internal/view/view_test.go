// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsDoNotConsume(t *testing.T) {
	v := New([]byte{0x80, 0x03, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04})
	assert.Equal(t, uint16(3), v.Uint16At(0)&0x7fff)
	assert.Equal(t, 8, v.Readable(), "accessors must not advance the cursor")
	assert.Equal(t, uint32(0x8003), v.RawUint32At(0)>>16)
}

func TestUint24At(t *testing.T) {
	v := New([]byte{0x12, 0x34, 0x56})
	assert.Equal(t, uint32(0x123456), v.Uint24At(0))
}

func TestUint32AtMasksControlBit(t *testing.T) {
	v := New([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	assert.Equal(t, uint32(0x7fffffff), v.Uint32At(0))
	assert.Equal(t, uint32(0xffffffff), v.RawUint32At(0))
}

func TestInt32AtPreservesSign(t *testing.T) {
	v := New([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	assert.Equal(t, int32(-1), v.Int32At(0))
}

func TestSkipAdvancesCursor(t *testing.T) {
	v := New([]byte{1, 2, 3, 4, 5})
	v.Skip(2)
	assert.Equal(t, 3, v.Readable())
	assert.Equal(t, uint8(3), v.Uint8At(0))
}
