package soxstream

import (
	"errors"

	"github.com/aatturi/soxstream/internal/engine"
)

// ErrChannelCountTooLarge reports a channel count that cannot be
// represented on the engine boundary. It is checked before the engine
// is ever invoked.
var ErrChannelCountTooLarge = errors.New("channel count exceeds the representable range")

// Conversion diagnostics, re-exported from the engine so callers can
// match them with errors.Is. The texts are static for the lifetime of
// the process.
var (
	ErrInvalidRate     = engine.ErrInvalidRate
	ErrInvalidRatio    = engine.ErrInvalidRatio
	ErrInputAfterDrain = engine.ErrInputAfterEOS
	ErrFilterDesign    = engine.ErrFilterDesign
)
