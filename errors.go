// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/pkg/errors"

// ErrorKind classifies a FrameError, independent of its message text.
type ErrorKind int

const (
	// UnsupportedVersion: the common header's version field does not
	// match the Decoder's configured version.
	UnsupportedVersion ErrorKind = iota
	// InvalidFrame: per-type header validity failed, a SETTINGS frame's
	// length/entry-count disagreed, a SETTINGS entry had ID 0, a
	// header-block prologue or control-frame constructor rejected an
	// illegal field.
	InvalidFrame
	// InvalidDataFrame: a DATA frame arrived with stream ID 0.
	InvalidDataFrame
	// HeaderBlockDecodeFailure: the header-block decoder returned an
	// error while decompressing or parsing a header block.
	HeaderBlockDecodeFailure
)

// FrameError is the asynchronous error signal surfaced to a Decoder's
// ErrorSink. It is never returned from Decode/DecodeLast directly, per
// spec §7's "errors are not returned" propagation policy.
type FrameError struct {
	Kind     ErrorKind
	Err      error
	StreamID uint32
}

func (e *FrameError) Error() string {
	return e.Err.Error()
}

// Unwrap lets callers use errors.Is/errors.As against the wrapped cause.
func (e *FrameError) Unwrap() error {
	return e.Err
}

func newUnsupportedVersion(v uint16) *FrameError {
	return &FrameError{Kind: UnsupportedVersion, Err: errors.Errorf("Unsupported version: %d", v)}
}

func newInvalidFrame(streamID uint32, format string, args ...interface{}) *FrameError {
	return &FrameError{Kind: InvalidFrame, Err: errors.Errorf(format, args...), StreamID: streamID}
}

func newInvalidDataFrame() *FrameError {
	return &FrameError{Kind: InvalidDataFrame, Err: errors.New("Received invalid data frame")}
}

func newHeaderBlockDecodeFailure(streamID uint32, cause error) *FrameError {
	return &FrameError{
		Kind:     HeaderBlockDecodeFailure,
		Err:      errors.Wrap(cause, "header block decode failed"),
		StreamID: streamID,
	}
}

// String names k for logging and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedVersion:
		return "unsupported_version"
	case InvalidFrame:
		return "invalid_frame"
	case InvalidDataFrame:
		return "invalid_data_frame"
	case HeaderBlockDecodeFailure:
		return "header_block_decode_failure"
	default:
		return "unknown"
	}
}

// ErrorSink receives FrameError values as the Decoder surfaces them. It is
// called synchronously from within Decode/DecodeLast; implementations
// must not block or call back into the Decoder.
type ErrorSink func(*FrameError)
