package engine

import "errors"

// Engine diagnostics. Every boundary call reports failure through one
// of these fixed-text errors; nil means success. The texts are static
// for the lifetime of the process, so callers may hold them forever.
var (
	// ErrInvalidRate reports a non-positive or non-finite sample rate.
	ErrInvalidRate = errors.New("invalid sample rate")

	// ErrInvalidChannelCount reports a zero channel count.
	ErrInvalidChannelCount = errors.New("invalid channel count")

	// ErrInvalidDatatype reports an io-spec datatype outside the wire
	// tag set.
	ErrInvalidDatatype = errors.New("invalid io datatype")

	// ErrInvalidRatio reports a non-positive or non-finite io ratio.
	ErrInvalidRatio = errors.New("invalid io ratio")

	// ErrInvalidFrameCount reports a negative frame count.
	ErrInvalidFrameCount = errors.New("invalid frame count")

	// ErrInputAfterEOS reports input supplied after the stream end was
	// signalled. Clear the resampler to start a fresh stream.
	ErrInputAfterEOS = errors.New("input supplied after end of stream")

	// ErrDeleted reports use of a deleted resampler.
	ErrDeleted = errors.New("resampler deleted")

	// ErrFilterDesign reports that no filter satisfying the quality
	// recipe could be designed.
	ErrFilterDesign = errors.New("filter design failed")
)
