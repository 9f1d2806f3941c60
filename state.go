// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

// decoderState is the Decoder's frame-boundary state machine (spec §3,
// §4.10). All states but FrameError return to ReadCommonHeader once their
// frame's payload is fully consumed; FrameError is terminal.
type decoderState int

const (
	stateReadCommonHeader decoderState = iota
	stateReadControlFrame
	stateReadSettingsFrame
	stateReadHeaderBlockFrame
	stateReadHeaderBlock
	stateReadDataFrame
	stateDiscardFrame
	stateFrameError
)

func (s decoderState) String() string {
	switch s {
	case stateReadCommonHeader:
		return "ReadCommonHeader"
	case stateReadControlFrame:
		return "ReadControlFrame"
	case stateReadSettingsFrame:
		return "ReadSettingsFrame"
	case stateReadHeaderBlockFrame:
		return "ReadHeaderBlockFrame"
	case stateReadHeaderBlock:
		return "ReadHeaderBlock"
	case stateReadDataFrame:
		return "ReadDataFrame"
	case stateDiscardFrame:
		return "DiscardFrame"
	case stateFrameError:
		return "FrameError"
	default:
		return "Unknown"
	}
}
