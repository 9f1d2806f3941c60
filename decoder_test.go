// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains a Decoder over input, feeding it as a single contiguous
// chunk, and returns every event emitted plus every error the sink
// observed.
func collect(t *testing.T, cfg Config, input []byte) ([]FrameEvent, []*FrameError) {
	t.Helper()
	var events []FrameEvent
	var errs []*FrameError
	dec, err := NewDecoder(cfg, func(fe *FrameError) { errs = append(errs, fe) })
	require.NoError(t, err)

	data := input
	for {
		ev, consumed := dec.Decode(data)
		if ev != nil {
			events = append(events, ev)
		}
		data = data[consumed:]
		if consumed == 0 {
			break
		}
	}
	return events, errs
}

// collectFragmented behaves like collect but splits input at the given
// offsets across separate Decode calls, feeding the unconsumed remainder
// back in (spec §8's fragmentation invariance property).
func collectFragmented(t *testing.T, cfg Config, input []byte, splits []int) []FrameEvent {
	t.Helper()
	var events []FrameEvent
	dec, err := NewDecoder(cfg, func(fe *FrameError) {})
	require.NoError(t, err)

	var pending []byte
	offset := 0
	feed := func(chunk []byte) {
		pending = append(pending, chunk...)
		for {
			ev, consumed := dec.Decode(pending)
			if ev != nil {
				events = append(events, ev)
			}
			pending = pending[consumed:]
			if consumed == 0 {
				break
			}
		}
	}
	for _, s := range splits {
		feed(input[offset:s])
		offset = s
	}
	feed(input[offset:])
	return events
}

func defaultConfig() Config {
	return Config{Version: Version, MaxChunkSize: 16 * 1024, MaxHeaderSize: 1 << 20}
}

func TestScenarioPing(t *testing.T) {
	input := []byte{0x80, 0x03, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x2A}
	events, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, &PingFrame{ID: 42}, events[0])
}

func TestScenarioWindowUpdate(t *testing.T) {
	input := []byte{0x80, 0x03, 0x00, 0x09, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x64}
	events, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, &WindowUpdateFrame{StreamID: 7, Delta: 100}, events[0])
}

func TestScenarioEmptyDataWithFin(t *testing.T) {
	input := []byte{0x00, 0x00, 0x00, 0x05, 0x01, 0x00, 0x00, 0x00}
	events, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, &DataFrame{StreamID: 5, Last: true, Payload: []byte{}}, events[0])
}

func TestScenarioChunkedData(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxChunkSize = 4
	input := []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x06, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	events, errs := collect(t, cfg, input)
	require.Empty(t, errs)
	require.Len(t, events, 2)
	assert.Equal(t, &DataFrame{StreamID: 1, Last: false, Payload: []byte{0xAA, 0xBB, 0xCC, 0xDD}}, events[0])
	assert.Equal(t, &DataFrame{StreamID: 1, Last: true, Payload: []byte{0xEE, 0xFF}}, events[1])
}

func TestScenarioBadVersion(t *testing.T) {
	input := []byte{0x80, 0x02, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}
	events, errs := collect(t, defaultConfig(), input)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Equal(t, UnsupportedVersion, errs[0].Kind)
	assert.Equal(t, "Unsupported version: 2", errs[0].Error())
}

func TestScenarioDataStreamZero(t *testing.T) {
	input := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0xFF}
	events, errs := collect(t, defaultConfig(), input)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidDataFrame, errs[0].Kind)
	assert.Equal(t, "Received invalid data frame", errs[0].Error())
}

func TestScenarioSettings(t *testing.T) {
	// SETTINGS, 1 entry: flags=0, id=4, value=0x00010000.
	input := []byte{
		0x80, 0x03, 0x00, 0x04, 0x00, 0x00, 0x00, 0x0c,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x04, 0x00, 0x01, 0x00, 0x00,
	}
	events, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	got, ok := events[0].(*SettingsFrame)
	require.True(t, ok)
	assert.False(t, got.ClearPreviouslyPersisted)
	assert.Equal(t, map[uint32]SettingsEntry{
		4: {Value: 65536, PersistValue: false, Persisted: false},
	}, got.Entries)
}

func TestFrameErrorIsTerminal(t *testing.T) {
	bad := []byte{0x80, 0x02, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}
	good := []byte{0x80, 0x03, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x2A}

	var errs []*FrameError
	dec, err := NewDecoder(defaultConfig(), func(fe *FrameError) { errs = append(errs, fe) })
	require.NoError(t, err)

	data := append(append([]byte{}, bad...), good...)
	var events []FrameEvent
	for {
		ev, consumed := dec.Decode(data)
		if ev != nil {
			events = append(events, ev)
		}
		data = data[consumed:]
		if consumed == 0 {
			break
		}
	}
	assert.Empty(t, events)
	assert.Len(t, errs, 1, "the well-formed PING after the bad-version frame must never be parsed")
}

func TestSettingsDuplicateIDFirstWins(t *testing.T) {
	input := []byte{
		0x80, 0x03, 0x00, 0x04, 0x00, 0x00, 0x00, 0x14,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x0A, // id=1 value=10
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x14, // id=1 value=20, ignored
	}
	events, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	got := events[0].(*SettingsFrame)
	assert.Equal(t, int32(10), got.Entries[1].Value)
}

func TestSettingsEntryIDZeroIsInvalid(t *testing.T) {
	input := []byte{
		0x80, 0x03, 0x00, 0x04, 0x00, 0x00, 0x00, 0x0c,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}
	events, errs := collect(t, defaultConfig(), input)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidFrame, errs[0].Kind)
}

func TestRstStreamZeroFieldsAreInvalid(t *testing.T) {
	zeroStream := []byte{0x80, 0x03, 0x00, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	zeroStatus := []byte{0x80, 0x03, 0x00, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}

	events, errs := collect(t, defaultConfig(), zeroStream)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidFrame, errs[0].Kind)

	events, errs = collect(t, defaultConfig(), zeroStatus)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidFrame, errs[0].Kind)
}

func TestUnrecognizedFrameTypeIsDiscarded(t *testing.T) {
	unknownThenPing := []byte{
		0x80, 0x03, 0x00, 0x63, 0x00, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC, // unknown type, 3 bytes discarded
		0x80, 0x03, 0x00, 0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x2A,
	}
	events, errs := collect(t, defaultConfig(), unknownThenPing)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, &PingFrame{ID: 42}, events[0])
}

func TestFragmentationInvariance(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRstStreamFrame(&buf, &RstStreamFrame{StreamID: 9, StatusCode: StatusCancel}))
	require.NoError(t, EncodePingFrame(&buf, &PingFrame{ID: 7}))
	require.NoError(t, EncodeDataFrame(&buf, 3, true, []byte("hello world")))
	input := buf.Bytes()

	whole, errs := collect(t, defaultConfig(), input)
	require.Empty(t, errs)

	for split := 1; split < len(input); split++ {
		fragmented := collectFragmented(t, defaultConfig(), input, []int{split})
		require.Equal(t, whole, fragmented, "split at byte %d produced a different event sequence", split)
	}
}

func TestEncodeDecodeSynStreamHeaderBlockRoundTrip(t *testing.T) {
	enc := NewHeaderBlockEncoder()
	headers := http.Header{
		":method": []string{"GET"},
		":path":   []string{"/index"},
	}
	compressed, err := enc.Encode(headers)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeSynStreamFrame(&buf, &SynStreamFrame{
		StreamID: 1,
		Priority: 2,
		Last:     true,
	}, compressed))

	events, errs := collect(t, defaultConfig(), buf.Bytes())
	require.Empty(t, errs)

	var opener *SynStreamFrame
	var ends int
	for _, ev := range events {
		switch e := ev.(type) {
		case *SynStreamFrame:
			opener = e
		case *HeaderBlockEnd:
			ends++
			assert.False(t, e.Invalid)
			assert.False(t, e.Truncated)
		}
	}
	require.NotNil(t, opener)
	assert.Equal(t, 1, ends)
	assert.Equal(t, "GET", opener.Headers().Get(":method"))
	assert.Equal(t, "/index", opener.Headers().Get(":path"))
}
